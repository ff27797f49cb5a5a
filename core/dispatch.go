package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/koscakluka/helpline-core/core/events"
	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/scheduling"
	"github.com/koscakluka/helpline-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	toolCheckAvailability = "check_availability"
	toolCreateMeeting     = "create_meeting"
)

// bookingArguments mirrors the create_meeting tool schema.
type bookingArguments struct {
	Summary      string `json:"summary" jsonschema_description:"Short meeting subject"`
	StartTimeISO string `json:"start_time_iso" jsonschema_description:"Slot start, RFC 3339"`
	EndTimeISO   string `json:"end_time_iso" jsonschema_description:"Slot end, RFC 3339"`
	Email        string `json:"email" jsonschema_description:"Verified attendee email"`
}

// actionOutcome is what executing (or refusing) one assembled action yields.
type actionOutcome struct {
	// result is the tool-result payload appended to memory. Always set.
	result string
	// clarification, when non-empty, short-circuits the turn with a direct
	// caller-facing prompt; the workflow handler was not invoked.
	clarification string
	// err records an execution failure or rejection, for spans and events.
	// The conversation continues either way.
	err error
}

// dispatchAction executes the action a run assembled and chains the
// follow-up run that narrates its outcome. The intent and result messages
// land in memory as one append, so a concurrent turn can never observe (or
// interleave into) a history where the intent is not immediately followed by
// its result.
func (o *Orchestrator) dispatchAction(ctx context.Context, r *responder) {
	ctx, span := tracer.Start(ctx, "dispatch action")
	defer span.End()

	call, assembleErr := llms.AssembleToolCall(r.fragments)
	if call.Name == "" {
		call.Name = "unknown"
	}
	span.SetAttributes(attribute.String("tool.name", call.Name))

	if assembleErr != nil {
		span.RecordError(assembleErr)
		span.SetStatus(codes.Error, assembleErr.Error())
		o.emit(events.NewToolCallFailed(call.ID, call.Name, assembleErr.Error()))
		// The intent is recorded even when assembly failed, so the engine's
		// view of the history keeps the call/result pairing intact.
		o.memory.Append(
			llms.ToolCallMessage(call),
			llms.ToolResultMessage(call.ID, call.Name, `{"error":"Malformed tool call arguments."}`),
		)
		o.closeTurn(ctx, r, clarifyRepeatPrompt)
		return
	}

	outcome := o.executeAction(ctx, call)

	if outcome.clarification != "" {
		span.RecordError(outcome.err)
		o.emit(events.NewToolCallFailed(call.ID, call.Name, outcome.err.Error()))
	} else if outcome.err != nil {
		span.RecordError(outcome.err)
		o.emit(events.NewToolCallFailed(call.ID, call.Name, outcome.err.Error()))
	} else {
		o.emit(events.NewToolCallCompleted(call.ID, call.Name, outcome.result))
	}

	o.memory.Append(
		llms.ToolCallMessage(call),
		llms.ToolResultMessage(call.ID, call.Name, outcome.result),
	)

	if outcome.clarification != "" {
		o.closeTurn(ctx, r, outcome.clarification)
		return
	}

	o.startFollowUp(ctx, r)
}

func (o *Orchestrator) executeAction(ctx context.Context, call llms.ToolCall) actionOutcome {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", call.Name))

	o.emit(events.NewToolCallStarted(call.ID, call.Name, call.Arguments))

	// The workflow call runs to completion even if the caller barges in
	// mid-execution; abandoning it midway could leave the provider
	// half-committed.
	ctx = context.WithoutCancel(ctx)

	switch call.Name {
	case toolCheckAvailability:
		return o.checkAvailability(ctx)
	case toolCreateMeeting:
		return o.createMeeting(ctx, call)
	default:
		err := fmt.Errorf("%w: %s", ErrUnknownAction, call.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return actionOutcome{result: `{"error":"Unknown tool"}`, err: err}
	}
}

func (o *Orchestrator) checkAvailability(ctx context.Context) actionOutcome {
	if o.availability == nil {
		err := errors.New("no availability provider configured")
		return actionOutcome{result: `{"error":"Scheduling is not available right now."}`, err: err}
	}

	slot, err := o.availability.NextAvailableSlot(ctx)
	if errors.Is(err, scheduling.ErrNoSlot) {
		return actionOutcome{result: `{"error":"No available slots found in the next 7 days."}`}
	}
	if err != nil {
		return actionOutcome{
			result: `{"error":"Could not reach the calendar."}`,
			err:    fmt.Errorf("availability lookup failed: %w", err),
		}
	}
	// A provider returning (nil, nil) is treated as no slot rather than
	// trusted to uphold a non-nil contract.
	if slot == nil {
		return actionOutcome{result: `{"error":"No available slots found in the next 7 days."}`}
	}

	payload, _ := json.Marshal(map[string]string{
		"start_time_iso": slot.Window.Start.Format(time.RFC3339),
		"end_time_iso":   slot.Window.End.Format(time.RFC3339),
		"day":            slot.Day,
		"date":           slot.Date,
		"time":           slot.Time,
	})
	return actionOutcome{result: string(payload)}
}

func (o *Orchestrator) createMeeting(ctx context.Context, call llms.ToolCall) actionOutcome {
	var arguments bookingArguments
	if err := call.UnmarshalArguments(&arguments); err != nil {
		return actionOutcome{
			result:        `{"error":"Malformed tool call arguments."}`,
			clarification: clarifyRepeatPrompt,
			err:           err,
		}
	}

	email := strings.TrimSpace(arguments.Email)
	if email == "" || !strings.Contains(email, "@") {
		return actionOutcome{
			result:        `{"error":"Missing or invalid email."}`,
			clarification: clarifyEmailPrompt,
			err:           fmt.Errorf("%w: email", ErrMissingRequiredField),
		}
	}

	start, startErr := time.Parse(time.RFC3339, arguments.StartTimeISO)
	end, endErr := time.Parse(time.RFC3339, arguments.EndTimeISO)
	if arguments.Summary == "" || startErr != nil || endErr != nil {
		return actionOutcome{
			result:        `{"error":"Missing or invalid meeting details."}`,
			clarification: clarifyDetailsPrompt,
			err:           fmt.Errorf("%w: meeting details", ErrMissingRequiredField),
		}
	}

	if o.booking == nil {
		err := errors.New("no booking provider configured")
		return actionOutcome{result: `{"error":"Booking is not available right now."}`, err: err}
	}

	confirmation, err := o.booking.CreateMeeting(ctx, scheduling.BookingRequest{
		Subject: arguments.Summary,
		Start:   start,
		End:     end,
		Email:   email,
	})
	if err != nil {
		payload, _ := json.Marshal(map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return actionOutcome{result: string(payload), err: fmt.Errorf("booking failed: %w", err)}
	}

	payload, _ := json.Marshal(map[string]string{
		"status":       "success",
		"meeting_link": confirmation.JoinURL,
		"meeting_id":   confirmation.Reference,
	})
	return actionOutcome{result: string(payload)}
}

// closeTurn short-circuits the rest of the turn with a final caller-facing
// message, bypassing the completion engine.
func (o *Orchestrator) closeTurn(ctx context.Context, r *responder, message string) {
	if !r.claimTerminal() {
		return
	}

	o.memory.Append(llms.AssistantMessage(message))
	o.emit(events.NewAssistantResponseFinal(r.replyID))
	if err := o.sender.Send(ctx, transport.ReplyFragment{ReplyID: r.replyID, Content: message, IsFinal: true}); err != nil {
		logger.ErrorContext(ctx, "failed to send clarification fragment",
			"reply_id", r.replyID, "error", err)
		r.onComplete(r, err)
		return
	}
	o.emit(events.NewTurnCompleted(r.replyID))
	r.onComplete(r, nil)
}

// startFollowUp chains the run that narrates the action's outcome. The
// follow-up offers no tool declarations: its purpose is narration, not
// another action in the same turn. It becomes the session's new active run
// and is cancellable by a later inbound event, but is not subject to the
// original run's cancellation.
func (o *Orchestrator) startFollowUp(ctx context.Context, r *responder) {
	next := newResponder(
		context.WithoutCancel(ctx),
		r.replyID,
		o.engine,
		o.sender,
		o.memory,
		o.emit,
		r.instructions,
		nil,
		nil,
		r.onComplete,
	)

	if !o.session.promote(r, next) {
		// Barge-in displaced this turn while the action was executing; the
		// next reply's terminal marker is the authoritative one.
		next.cancel()
		return
	}

	next.run()
}
