package events

const (
	// KindUserTurnReceived identifies an inbound response-required event.
	KindUserTurnReceived Kind = "user_input.turn_received"
)

// UserTurnReceived carries the caller's latest utterance and the reply id the
// transport chose for the orchestrator's answer.
type UserTurnReceived struct {
	Base
	ReplyID   int
	Utterance string
}

// NewUserTurnReceived creates a turn received event.
func NewUserTurnReceived(replyID int, utterance string) UserTurnReceived {
	return UserTurnReceived{Base: NewBase(KindUserTurnReceived), ReplyID: replyID, Utterance: utterance}
}
