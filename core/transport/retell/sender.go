package retell

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/helpline-core/core/transport"
)

// sender is the outbound half of one call websocket. Gorilla connections
// allow a single concurrent writer, so every write goes through the mutex:
// the greeting, streamed fragments and cancellation notices may come from
// different goroutines.
type sender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newSender(conn *websocket.Conn) *sender {
	return &sender{conn: conn}
}

func (s *sender) Send(_ context.Context, fragment transport.ReplyFragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.conn.WriteJSON(outboundFragment{
		ResponseID:      fragment.ReplyID,
		Content:         fragment.Content,
		ContentComplete: fragment.IsFinal,
	})
	if err != nil {
		return fmt.Errorf("failed to write reply fragment: %w", err)
	}
	return nil
}

func (s *sender) CancelReply(_ context.Context, replyID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.conn.WriteJSON(outboundCancel{
		Type:       "response_cancel",
		ResponseID: replyID,
	})
	if err != nil {
		return fmt.Errorf("failed to write reply cancellation: %w", err)
	}
	return nil
}
