package llms

import "context"

// Stream is a lazy sequence of completion deltas. It is finite and not
// restartable: Chunks may be iterated at most once.
type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

// StreamContentChunk carries a piece of assistant reply text.
type StreamContentChunk interface {
	StreamChunk
	Content() string
}

// StreamToolCallChunk carries one tool-call fragment.
type StreamToolCallChunk interface {
	StreamChunk
	Fragment() ToolCallFragment
}
