package retell

// Interaction types the gateway sends over the call websocket.
const (
	interactionResponseRequired = "response_required"
	interactionReminderRequired = "reminder_required"
	interactionUpdateOnly       = "update_only"
	interactionPingPong         = "ping_pong"
	interactionCallDetails      = "call_details"
)

// utterance is one transcript entry. Role is "agent" or "user".
type utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// inboundEvent is a message from the gateway. Only response_required and
// reminder_required carry a meaningful ResponseID and transcript.
type inboundEvent struct {
	InteractionType string      `json:"interaction_type"`
	ResponseID      int         `json:"response_id"`
	Transcript      []utterance `json:"transcript"`
	Timestamp       int64       `json:"timestamp,omitempty"`
}

// outboundFragment is one unit of reply content for the gateway to speak.
type outboundFragment struct {
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call,omitempty"`
}

// outboundCancel tells the gateway to stop speaking an abandoned reply.
type outboundCancel struct {
	Type       string `json:"type"`
	ResponseID int    `json:"response_id"`
}

// lastUserUtterance extracts the caller's latest line from the transcript.
func lastUserUtterance(transcript []utterance) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == "user" {
			return transcript[i].Content
		}
	}
	return ""
}
