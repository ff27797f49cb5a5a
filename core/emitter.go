package orchestration

import "github.com/koscakluka/helpline-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newEventEmitter fans every orchestration event out to the configured
// handler and to the matching convenience callbacks.
func newEventEmitter(options orchestratorOptions) eventEmitter {
	callbacks := newCallbackEventEmitter(options)
	if options.eventHandler == nil {
		return callbacks
	}

	handler := options.eventHandler
	return func(event events.Event) {
		handler(event)
		callbacks(event)
	}
}

func newCallbackEventEmitter(options orchestratorOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.AssistantResponseSegment:
			if options.onResponse != nil {
				options.onResponse(typedEvent.ReplyID, typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if options.onResponseEnd != nil {
				options.onResponseEnd(typedEvent.ReplyID)
			}
		case events.TurnCancelled:
			if options.onCancellation != nil {
				options.onCancellation(typedEvent.ReplyID)
			}
		}
	}
}
