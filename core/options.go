package orchestration

import (
	"github.com/koscakluka/helpline-core/core/events"
	"github.com/koscakluka/helpline-core/core/scheduling"
	"github.com/koscakluka/helpline-core/core/transport"
)

type orchestratorOptions struct {
	eventHandler   func(events.Event)
	onResponse     func(replyID int, segment string)
	onResponseEnd  func(replyID int)
	onCancellation func(replyID int)
}

type Option func(*Orchestrator, *orchestratorOptions)

// WithCompletionEngine injects the streaming completion engine client.
func WithCompletionEngine(engine CompletionEngine) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.engine = engine
	}
}

// WithSender injects the outbound side of the call transport.
func WithSender(sender transport.Sender) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.sender = sender
	}
}

// WithAvailabilityProvider injects the availability lookup workflow.
func WithAvailabilityProvider(provider scheduling.AvailabilityProvider) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.availability = provider
	}
}

// WithBookingProvider injects the meeting creation workflow.
func WithBookingProvider(provider scheduling.BookingProvider) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.booking = provider
	}
}

// WithMemoryCapacity bounds the conversation memory. Values below 1 are
// raised to 1.
func WithMemoryCapacity(capacity int) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.memory = NewMemory(capacity)
	}
}

// WithInstructions overrides the instruction payloads: full guidance for the
// first reply, an abbreviated reminder for every reply after it.
func WithInstructions(full, reminder string) Option {
	return func(o *Orchestrator, _ *orchestratorOptions) {
		o.instructions = full
		o.reminder = reminder
	}
}

// WithEventHandler registers a handler receiving every orchestration event.
func WithEventHandler(handler func(events.Event)) Option {
	return func(_ *Orchestrator, options *orchestratorOptions) {
		options.eventHandler = handler
	}
}

// OnResponse registers a callback for streamed reply segments.
func OnResponse(callback func(replyID int, segment string)) Option {
	return func(_ *Orchestrator, options *orchestratorOptions) {
		options.onResponse = callback
	}
}

// OnResponseEnd registers a callback for the end of a reply stream.
func OnResponseEnd(callback func(replyID int)) Option {
	return func(_ *Orchestrator, options *orchestratorOptions) {
		options.onResponseEnd = callback
	}
}

// OnCancellation registers a callback for barge-in cancellations.
func OnCancellation(callback func(replyID int)) Option {
	return func(_ *Orchestrator, options *orchestratorOptions) {
		options.onCancellation = callback
	}
}
