package events

const (
	// KindAssistantResponseSegment identifies a streamed reply text segment.
	KindAssistantResponseSegment Kind = "assistant_response.segment"
	// KindAssistantResponseFinal identifies the end of a reply text stream.
	KindAssistantResponseFinal Kind = "assistant_response.final"
)

// AssistantResponseSegment is one streamed piece of reply text.
type AssistantResponseSegment struct {
	Base
	ReplyID int
	Segment string
}

// NewAssistantResponseSegment creates a response segment event.
func NewAssistantResponseSegment(replyID int, segment string) AssistantResponseSegment {
	return AssistantResponseSegment{Base: NewBase(KindAssistantResponseSegment), ReplyID: replyID, Segment: segment}
}

// AssistantResponseFinal marks the end of the reply text stream.
type AssistantResponseFinal struct {
	Base
	ReplyID int
}

// NewAssistantResponseFinal creates a response final event.
func NewAssistantResponseFinal(replyID int) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal), ReplyID: replyID}
}
