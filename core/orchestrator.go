package orchestration

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/koscakluka/helpline-core/core/events"
	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/scheduling"
	"github.com/koscakluka/helpline-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
)

// CompletionEngine produces streamed replies over a message history.
type CompletionEngine interface {
	PromptWithStream(ctx context.Context, opts ...llms.StreamingPromptOption) llms.Stream
}

// Orchestrator coordinates the turns of one call session: it owns the
// session's conversation memory, cancels the in-flight reply whenever the
// caller barges in, and routes assembled actions to the scheduling workflows.
//
// Collaborators are injected at construction; an orchestrator holds no
// process-wide state and is destroyed with its transport connection.
type Orchestrator struct {
	id string

	memory  *Memory
	session session

	engine       CompletionEngine
	sender       transport.Sender
	availability scheduling.AvailabilityProvider
	booking      scheduling.BookingProvider

	instructions string
	reminder     string
	tools        []llms.Tool

	emit eventEmitter

	closeOnce sync.Once
}

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		id:           uuid.NewString(),
		memory:       NewMemory(defaultMemoryCapacity),
		session:      newSession(),
		instructions: defaultInstructions(),
		reminder:     defaultReminder,
		tools:        schedulingTools(),
	}

	options := orchestratorOptions{}
	for _, opt := range opts {
		opt(o, &options)
	}

	o.emit = newEventEmitter(options)

	return o
}

// ID identifies this session.
func (o *Orchestrator) ID() string {
	return o.id
}

// History returns a point-in-time snapshot of the conversation memory.
func (o *Orchestrator) History() []llms.Message {
	return o.memory.Snapshot()
}

// HandleTurn processes one inbound response-required event. Any reply still
// in flight is cancelled before the new one starts streaming; this is the
// barge-in contract. The new reply is produced asynchronously.
func (o *Orchestrator) HandleTurn(ctx context.Context, event transport.TurnEvent) {
	ctx, span := tracer.Start(ctx, "handle turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", o.id),
		attribute.Int("reply.id", event.ReplyID),
	)

	if o.engine == nil || o.sender == nil {
		logger.WarnContext(ctx, "orchestrator missing engine or sender, dropping turn",
			"session_id", o.id, "reply_id", event.ReplyID)
		return
	}

	o.emit(events.NewUserTurnReceived(event.ReplyID, event.Utterance))

	instructions := o.reminder
	if o.session.takeFirstTurn() {
		instructions = o.instructions
	}

	next := newResponder(
		context.WithoutCancel(ctx),
		event.ReplyID,
		o.engine,
		o.sender,
		o.memory,
		o.emit,
		instructions,
		o.tools,
		o.dispatchAction,
		o.completeRun,
	)

	if displaced := o.session.activate(next); displaced != nil {
		if displaced.Cancel() {
			o.emit(events.NewTurnCancelled(displaced.replyID))
			// A cancellation notice only matters once the gateway has content
			// it could be speaking.
			if displaced.sentContent.Load() {
				if err := o.sender.CancelReply(ctx, displaced.replyID); err != nil {
					logger.WarnContext(ctx, "failed to send reply cancellation notice",
						"session_id", o.id, "reply_id", displaced.replyID, "error", err)
				}
			}
		}
	}

	o.memory.Append(llms.UserMessage(event.Utterance))
	o.emit(events.NewTurnStarted(event.ReplyID))

	go next.run()
}

func (o *Orchestrator) completeRun(r *responder, err error) {
	o.session.clearActive(r)
	if err != nil {
		logger.Error("reply terminated on error",
			"session_id", o.id, "reply_id", r.replyID, "error", err)
	}
}

// Close tears the session down: the active reply, if any, is cancelled.
// Conversation memory is in-process only and dies with the orchestrator.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		if active := o.session.activeRun(); active != nil {
			active.Cancel()
		}
	})
}
