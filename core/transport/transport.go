// Package transport defines the boundary between the orchestration core and
// the call gateway delivering turn events and accepting reply fragments.
package transport

import "context"

// TurnEvent is one inbound response-required event: the caller's latest
// utterance plus the reply id the gateway chose for the answer.
type TurnEvent struct {
	ReplyID   int
	Utterance string
}

// ReplyFragment is one outbound unit of reply content. The orchestrator
// eventually sends exactly one fragment with IsFinal set per reply id that is
// not cancelled, and nothing for that id afterwards.
type ReplyFragment struct {
	ReplyID int
	Content string
	IsFinal bool
}

// Sender delivers reply fragments to the caller. Fragments for one reply are
// sent in order; implementations must tolerate sends from the session's
// active task and serialize writes themselves if the underlying connection
// requires it.
type Sender interface {
	Send(ctx context.Context, fragment ReplyFragment) error

	// CancelReply notifies the gateway that a reply was abandoned mid-stream
	// and no terminal fragment will follow for it. Best-effort: a failure
	// only means the gateway keeps playing already-delivered content.
	CancelReply(ctx context.Context, replyID int) error
}
