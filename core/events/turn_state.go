package events

const (
	// KindTurnStarted identifies reply streaming start.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies successful turn completion.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnFailed identifies a turn terminated by an error.
	KindTurnFailed Kind = "turn_state.failed"
	// KindTurnCancelled identifies a turn abandoned by barge-in.
	KindTurnCancelled Kind = "turn_state.cancelled"
)

// TurnStarted marks the start of a reply.
type TurnStarted struct {
	Base
	ReplyID int
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(replyID int) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), ReplyID: replyID}
}

// TurnCompleted marks a reply whose terminal fragment was sent.
type TurnCompleted struct {
	Base
	ReplyID int
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(replyID int) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), ReplyID: replyID}
}

// TurnFailed marks a reply terminated by an unrecoverable error.
type TurnFailed struct {
	Base
	ReplyID int
	Error   string
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(replyID int, err string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), ReplyID: replyID, Error: err}
}

// TurnCancelled marks a reply abandoned because the caller barged in.
type TurnCancelled struct {
	Base
	ReplyID int
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(replyID int) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), ReplyID: replyID}
}
