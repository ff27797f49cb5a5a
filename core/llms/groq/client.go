package groq

import (
	"context"
	"slices"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/helpline-core/core/llms"
)

const (
	url = "https://api.groq.com/openai/v1/chat/completions"

	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

// Client drives Groq's OpenAI-compatible chat completions API.
type Client struct {
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{apiKey: apiKey, model: model}
}

// PromptWithStream prepares a single streaming completion request. The
// request is not sent until the returned stream's chunks are iterated.
func (c *Client) PromptWithStream(_ context.Context, opts ...llms.StreamingPromptOption) llms.Stream {
	options := llms.StreamingPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToStreaming(&options)
	}

	messages := toMessages(options.Instructions, slices.Clone(options.Messages))

	var tools []Tool
	if options.Tools != nil {
		copier.Copy(&tools, options.Tools)
	}

	return &Stream{
		apiKey:   c.apiKey,
		model:    c.model,
		tools:    tools,
		messages: messages,
	}
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters,omitempty"`
}
