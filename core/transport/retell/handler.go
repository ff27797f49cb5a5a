// Package retell adapts the orchestration core to the Retell LLM-websocket
// protocol: one websocket per call, inbound response-required events with the
// running transcript, outbound reply fragments keyed by response id.
package retell

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	orchestration "github.com/koscakluka/helpline-core/core"
	"github.com/koscakluka/helpline-core/core/transport"
)

// Handler upgrades inbound call connections and pumps their events into
// per-call orchestrators.
type Handler struct {
	upgrader websocket.Upgrader

	// newOrchestrator builds the orchestrator for one call. The sender for
	// the call's connection is passed in; the factory adds the engine and
	// workflow providers.
	newOrchestrator func(callID string, sender transport.Sender) *orchestration.Orchestrator

	greeting string
}

type HandlerOption func(*Handler)

// WithGreeting overrides the fixed opening line spoken before any turn.
func WithGreeting(greeting string) HandlerOption {
	return func(h *Handler) {
		h.greeting = greeting
	}
}

func NewHandler(
	newOrchestrator func(callID string, sender transport.Sender) *orchestration.Orchestrator,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		newOrchestrator: newOrchestrator,
		greeting:        orchestration.DefaultGreeting,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles one call. The call id is the last path segment, matching
// the gateway's /llm-websocket/{call_id} convention.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "handle call connection")
	defer span.End()

	callID := r.PathValue("call_id")
	span.SetAttributes(attribute.String("call.id", callID))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorContext(ctx, "websocket upgrade failed", "call_id", callID, "error", err)
		return
	}
	defer conn.Close()

	h.serveCall(ctx, callID, conn)
}

func (h *Handler) serveCall(ctx context.Context, callID string, conn *websocket.Conn) {
	callSender := newSender(conn)
	orchestrator := h.newOrchestrator(callID, callSender)
	defer orchestrator.Close()

	// Reply id 0 is reserved for the greeting; the gateway's first
	// response_required event arrives with id 1.
	greeting := transport.ReplyFragment{ReplyID: 0, Content: h.greeting, IsFinal: true}
	if err := callSender.Send(ctx, greeting); err != nil {
		logger.ErrorContext(ctx, "failed to send greeting", "call_id", callID, "error", err)
		return
	}

	for {
		var event inboundEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnContext(ctx, "call connection closed unexpectedly", "call_id", callID, "error", err)
			}
			return
		}

		switch event.InteractionType {
		case interactionResponseRequired, interactionReminderRequired:
			orchestrator.HandleTurn(ctx, transport.TurnEvent{
				ReplyID:   event.ResponseID,
				Utterance: lastUserUtterance(event.Transcript),
			})

		case interactionUpdateOnly, interactionPingPong, interactionCallDetails:
			// Transcript refreshes and keepalives need no reply.

		default:
			logger.WarnContext(ctx, "ignoring unknown interaction type",
				"call_id", callID, "interaction_type", event.InteractionType)
		}
	}
}
