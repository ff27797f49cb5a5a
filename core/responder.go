package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/koscakluka/helpline-core/core/events"
	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// stateStreaming: consuming deltas from the completion engine.
	stateStreaming int32 = iota
	// stateDispatching: stream exhausted with an action; the dispatcher owns
	// the rest of the turn.
	stateDispatching
	// stateCancelled: abandoned by barge-in; no further memory appends, no
	// terminal marker for this reply id.
	stateCancelled
	// stateDone: terminal marker claimed; cancellation is a no-op from here.
	stateDone
)

// responder drives a single completion engine call for one reply id. It is
// the unit of cancellation: once cancelled it stops consuming deltas, appends
// nothing further to memory and never emits a terminal marker for its reply
// id.
type responder struct {
	replyID int

	engine CompletionEngine
	sender transport.Sender
	memory *Memory
	emit   eventEmitter

	instructions string
	tools        []llms.Tool

	// onAction takes over the turn when the run collected tool-call
	// fragments; it owns the terminal marker from that point on. Nil on
	// follow-up runs.
	onAction func(ctx context.Context, r *responder)
	// onComplete clears session state once the run is over.
	onComplete func(r *responder, err error)

	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	// sentContent records whether any reply text reached the transport. A
	// cancellation notice is only worth sending once it has.
	sentContent atomic.Bool

	buffer strings.Builder
	// fragments collects tool-call deltas in arrival order. Only one logical
	// call per reply is supported; the assembler rejects fragments that turn
	// out to belong to a second call.
	fragments []llms.ToolCallFragment
}

func newResponder(
	ctx context.Context,
	replyID int,
	engine CompletionEngine,
	sender transport.Sender,
	memory *Memory,
	emit eventEmitter,
	instructions string,
	tools []llms.Tool,
	onAction func(context.Context, *responder),
	onComplete func(*responder, error),
) *responder {
	if emit == nil {
		emit = noopEventEmitter
	}
	if onComplete == nil {
		onComplete = func(*responder, error) {}
	}

	ctx, cancel := context.WithCancel(ctx)
	return &responder{
		replyID:      replyID,
		engine:       engine,
		sender:       sender,
		memory:       memory,
		emit:         emit,
		instructions: instructions,
		tools:        tools,
		onAction:     onAction,
		onComplete:   onComplete,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Cancel requests cooperative cancellation. The race with natural completion
// resolves deterministically: once the run has claimed its terminal marker,
// Cancel reports false and is a no-op.
func (r *responder) Cancel() bool {
	for {
		switch state := r.state.Load(); state {
		case stateStreaming, stateDispatching:
			if r.state.CompareAndSwap(state, stateCancelled) {
				r.cancel()
				return true
			}
		default:
			return false
		}
	}
}

func (r *responder) IsCancelled() bool {
	return r.state.Load() == stateCancelled
}

// beginDispatch marks the end of streaming with a pending action. It fails if
// cancellation won the race, in which case nothing may be appended to memory.
func (r *responder) beginDispatch() bool {
	return r.state.CompareAndSwap(stateStreaming, stateDispatching)
}

// claimTerminal reserves the right to send the terminal marker for this reply
// id. At most one caller ever wins; a cancelled run never does.
func (r *responder) claimTerminal() bool {
	return r.state.CompareAndSwap(stateStreaming, stateDone) ||
		r.state.CompareAndSwap(stateDispatching, stateDone)
}

func (r *responder) run() {
	defer r.cancel()

	ctx, span := tracer.Start(r.ctx, "process reply")
	defer span.End()
	span.SetAttributes(attribute.Int("reply.id", r.replyID))

	opts := []llms.StreamingPromptOption{
		llms.WithInstructions(r.instructions),
		llms.WithMessages(r.memory.Snapshot()...),
	}
	if len(r.tools) > 0 {
		opts = append(opts, llms.WithTools(r.tools...))
	}
	stream := r.engine.PromptWithStream(ctx, opts...)

	for chunk, err := range stream.Chunks(ctx) {
		if r.IsCancelled() {
			return
		}
		if err != nil {
			r.failStream(ctx, span, fmt.Errorf("completion stream failed: %w", err))
			return
		}

		switch chunk := chunk.(type) {
		case llms.StreamContentChunk:
			r.buffer.WriteString(chunk.Content())
			r.emit(events.NewAssistantResponseSegment(r.replyID, chunk.Content()))
			if err := r.sender.Send(ctx, transport.ReplyFragment{ReplyID: r.replyID, Content: chunk.Content()}); err != nil {
				r.failTransport(span, fmt.Errorf("fragment send failed: %w", err))
				return
			}
			r.sentContent.Store(true)

		case llms.StreamToolCallChunk:
			r.collectFragment(ctx, chunk.Fragment())
		}
	}

	if len(r.fragments) > 0 && r.onAction != nil {
		if !r.beginDispatch() {
			return
		}
		if content := r.buffer.String(); content != "" {
			r.memory.Append(llms.AssistantMessage(content))
		}
		r.onAction(ctx, r)
		return
	}

	if !r.claimTerminal() {
		return
	}
	if content := r.buffer.String(); content != "" {
		r.memory.Append(llms.AssistantMessage(content))
	}

	r.emit(events.NewAssistantResponseFinal(r.replyID))
	if err := r.sendTerminal(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.onComplete(r, err)
		return
	}
	r.emit(events.NewTurnCompleted(r.replyID))
	r.onComplete(r, nil)
}

func (r *responder) collectFragment(ctx context.Context, fragment llms.ToolCallFragment) {
	if len(r.tools) == 0 || r.onAction == nil {
		// Follow-up runs narrate an outcome; chained actions in the same
		// turn are unsupported.
		logger.WarnContext(ctx, "dropping tool call fragment outside an action-bearing run",
			"reply_id", r.replyID, "function", fragment.Name)
		return
	}
	r.fragments = append(r.fragments, fragment)
}

// failStream handles a completion engine failure: the reply terminates with
// an empty terminal marker and memory stays untouched for this reply.
func (r *responder) failStream(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if !r.claimTerminal() {
		return
	}
	r.emit(events.NewTurnFailed(r.replyID, err.Error()))
	if sendErr := r.sendTerminal(ctx); sendErr != nil {
		span.RecordError(sendErr)
	}
	r.onComplete(r, err)
}

// failTransport handles a send failure. No terminal marker is attempted: the
// transport is gone and the session ends with it.
func (r *responder) failTransport(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if !r.claimTerminal() {
		return
	}
	r.emit(events.NewTurnFailed(r.replyID, err.Error()))
	r.onComplete(r, err)
}

func (r *responder) sendTerminal(ctx context.Context) error {
	return r.sender.Send(ctx, transport.ReplyFragment{ReplyID: r.replyID, IsFinal: true})
}
