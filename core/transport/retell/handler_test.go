package retell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	orchestration "github.com/koscakluka/helpline-core/core"
	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/transport"
)

type scriptedChunk struct {
	text string
}

func (c scriptedChunk) FinishReason() *string { return nil }
func (c scriptedChunk) Content() string       { return c.text }

type scriptedStream struct {
	chunks []string
}

func (s scriptedStream) Chunks(context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for _, chunk := range s.chunks {
			if !yield(scriptedChunk{text: chunk}, nil) {
				return
			}
		}
	}
}

type scriptedEngine struct {
	chunks []string
}

func (e scriptedEngine) PromptWithStream(context.Context, ...llms.StreamingPromptOption) llms.Stream {
	return scriptedStream{chunks: e.chunks}
}

func dialTestHandler(t *testing.T, handler *Handler, callID string) *websocket.Conn {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/llm-websocket/{call_id}", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/llm-websocket/" + callID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial call websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestCallOpensWithGreetingOnReplyIDZero(t *testing.T) {
	handler := NewHandler(func(callID string, sender transport.Sender) *orchestration.Orchestrator {
		return orchestration.NewOrchestrator(
			orchestration.WithCompletionEngine(scriptedEngine{}),
			orchestration.WithSender(sender),
		)
	}, WithGreeting("Hi, IT helpdesk here!"))

	conn := dialTestHandler(t, handler, "call-1")

	var greeting outboundFragment
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}
	if greeting.ResponseID != 0 {
		t.Fatalf("expected the greeting on reply id 0, got %d", greeting.ResponseID)
	}
	if greeting.Content != "Hi, IT helpdesk here!" || !greeting.ContentComplete {
		t.Fatalf("expected a complete greeting fragment, got %+v", greeting)
	}
}

func TestResponseRequiredStreamsReplyWithMatchingResponseID(t *testing.T) {
	var sessionCallID string
	handler := NewHandler(func(callID string, sender transport.Sender) *orchestration.Orchestrator {
		sessionCallID = callID
		return orchestration.NewOrchestrator(
			orchestration.WithCompletionEngine(scriptedEngine{chunks: []string{"Try a ", "restart."}}),
			orchestration.WithSender(sender),
		)
	})

	conn := dialTestHandler(t, handler, "call-42")

	var greeting outboundFragment
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}

	err := conn.WriteJSON(inboundEvent{
		InteractionType: interactionResponseRequired,
		ResponseID:      1,
		Transcript: []utterance{
			{Role: "agent", Content: "Hello!"},
			{Role: "user", Content: "my laptop is frozen"},
		},
	})
	if err != nil {
		t.Fatalf("failed to send turn event: %v", err)
	}

	var content strings.Builder
	for {
		var fragment outboundFragment
		if err := conn.ReadJSON(&fragment); err != nil {
			t.Fatalf("failed to read reply fragment: %v", err)
		}
		if fragment.ResponseID != 1 {
			t.Fatalf("expected fragments tagged with reply id 1, got %+v", fragment)
		}
		content.WriteString(fragment.Content)
		if fragment.ContentComplete {
			break
		}
	}

	if content.String() != "Try a restart." {
		t.Fatalf("expected the streamed reply reassembled, got %q", content.String())
	}
	if sessionCallID != "call-42" {
		t.Fatalf("expected the call id from the path, got %q", sessionCallID)
	}
}

func TestUpdateOnlyEventsProduceNoReply(t *testing.T) {
	handler := NewHandler(func(callID string, sender transport.Sender) *orchestration.Orchestrator {
		return orchestration.NewOrchestrator(
			orchestration.WithCompletionEngine(scriptedEngine{chunks: []string{"should not happen"}}),
			orchestration.WithSender(sender),
		)
	})

	conn := dialTestHandler(t, handler, "call-1")

	var greeting outboundFragment
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}

	err := conn.WriteJSON(inboundEvent{
		InteractionType: interactionUpdateOnly,
		Transcript:      []utterance{{Role: "user", Content: "still typing..."}},
	})
	if err != nil {
		t.Fatalf("failed to send update event: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var fragment outboundFragment
	if err := conn.ReadJSON(&fragment); err == nil {
		t.Fatalf("expected no reply to an update-only event, got %+v", fragment)
	}
}

func TestLastUserUtterancePicksNewestUserLine(t *testing.T) {
	transcript := []utterance{
		{Role: "user", Content: "first"},
		{Role: "agent", Content: "reply"},
		{Role: "user", Content: "second"},
		{Role: "agent", Content: "partial re"},
	}

	if got := lastUserUtterance(transcript); got != "second" {
		t.Fatalf("expected the newest user line, got %q", got)
	}
	if got := lastUserUtterance(nil); got != "" {
		t.Fatalf("expected an empty utterance for an empty transcript, got %q", got)
	}
}
