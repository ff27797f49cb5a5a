package llms

// StreamingPromptOptions collects everything a streaming completion request
// needs beyond the provider's own configuration.
type StreamingPromptOptions struct {
	Instructions string
	Messages     []Message
	Tools        []Tool
}

type StreamingPromptOption interface {
	ApplyToStreaming(*StreamingPromptOptions)
}

type streamingPromptOptionFunc func(*StreamingPromptOptions)

func (f streamingPromptOptionFunc) ApplyToStreaming(o *StreamingPromptOptions) {
	f(o)
}

// WithInstructions sets the instruction payload attached to the request.
// Repeating this option overwrites the previous payload.
func WithInstructions(instructions string) StreamingPromptOption {
	return streamingPromptOptionFunc(func(o *StreamingPromptOptions) {
		o.Instructions = instructions
	})
}

// WithMessages appends history messages, in conversational order.
func WithMessages(messages ...Message) StreamingPromptOption {
	return streamingPromptOptionFunc(func(o *StreamingPromptOptions) {
		o.Messages = append(o.Messages, messages...)
	})
}

// WithTools appends tool declarations offered to the engine.
func WithTools(tools ...Tool) StreamingPromptOption {
	return streamingPromptOptionFunc(func(o *StreamingPromptOptions) {
		o.Tools = append(o.Tools, tools...)
	})
}
