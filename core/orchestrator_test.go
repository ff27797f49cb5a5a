package orchestration

import (
	"context"
	"testing"

	"github.com/koscakluka/helpline-core/core/events"
	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/transport"
)

func TestDefaultMemoryCapacityAccommodatesToolTurns(t *testing.T) {
	orchestrator := NewOrchestrator()

	if got := orchestrator.memory.Capacity(); got != 10 {
		t.Fatalf("expected a default memory capacity of 10, got %d", got)
	}
}

func TestHandleTurnStreamsFragmentsThenTerminalMarker(t *testing.T) {
	engine := &fakeEngine{streams: []*scriptedStream{
		{chunks: []llms.StreamChunk{
			testContentChunk{text: "Try holding"},
			testContentChunk{text: " the power button."},
		}},
	}}
	sender := &fakeSender{}

	orchestrator := NewOrchestrator(
		WithCompletionEngine(engine),
		WithSender(sender),
	)
	defer orchestrator.Close()

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 1, Utterance: "my laptop is frozen"})

	waitFor(t, "terminal fragment", func() bool { return sender.finalFor(1) != nil })

	fragments := sender.sentFragments()
	if len(fragments) != 3 {
		t.Fatalf("expected 2 content fragments and a terminal marker, got %d fragments", len(fragments))
	}
	if fragments[0].Content != "Try holding" || fragments[1].Content != " the power button." {
		t.Fatalf("expected fragments forwarded in stream order, got %+v", fragments)
	}
	if fragments[0].IsFinal || fragments[1].IsFinal {
		t.Fatalf("expected content fragments to not be terminal, got %+v", fragments)
	}
	if !fragments[2].IsFinal || fragments[2].Content != "" {
		t.Fatalf("expected an empty terminal marker last, got %+v", fragments[2])
	}

	history := orchestrator.History()
	if len(history) != 2 {
		t.Fatalf("expected user and assistant messages in memory, got %d", len(history))
	}
	if history[0].Role != llms.RoleUser || history[0].Content != "my laptop is frozen" {
		t.Fatalf("expected the utterance recorded first, got %+v", history[0])
	}
	if history[1].Role != llms.RoleAssistant || history[1].Content != "Try holding the power button." {
		t.Fatalf("expected the full reply recorded once, got %+v", history[1])
	}
}

func TestFirstTurnGetsFullInstructionsLaterTurnsGetReminder(t *testing.T) {
	engine := &fakeEngine{streams: []*scriptedStream{
		{chunks: []llms.StreamChunk{testContentChunk{text: "first"}}},
		{chunks: []llms.StreamChunk{testContentChunk{text: "second"}}},
	}}
	sender := &fakeSender{}

	orchestrator := NewOrchestrator(
		WithCompletionEngine(engine),
		WithSender(sender),
		WithInstructions("full guidance", "short reminder"),
	)
	defer orchestrator.Close()

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 1, Utterance: "hello"})
	waitFor(t, "first reply", func() bool { return sender.finalFor(1) != nil })

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 2, Utterance: "it broke"})
	waitFor(t, "second reply", func() bool { return sender.finalFor(2) != nil })

	if got := engine.prompt(0).Instructions; got != "full guidance" {
		t.Fatalf("expected full instructions on the first turn, got %q", got)
	}
	if got := engine.prompt(1).Instructions; got != "short reminder" {
		t.Fatalf("expected the reminder on the second turn, got %q", got)
	}
}

func TestBargeInCancelsInFlightReply(t *testing.T) {
	firstStream := &scriptedStream{
		chunks:     []llms.StreamChunk{testContentChunk{text: "Let me walk you through the fi"}},
		blockUntil: make(chan struct{}),
	}
	engine := &fakeEngine{streams: []*scriptedStream{
		firstStream,
		{chunks: []llms.StreamChunk{testContentChunk{text: "Sure, tell me more."}}},
	}}
	sender := &fakeSender{}

	cancelled := make(chan int, 1)
	orchestrator := NewOrchestrator(
		WithCompletionEngine(engine),
		WithSender(sender),
		OnCancellation(func(replyID int) { cancelled <- replyID }),
	)
	defer orchestrator.Close()

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 4, Utterance: "my wifi is down"})
	waitFor(t, "first fragment of reply 4", func() bool { return len(sender.sentFragments()) > 0 })

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 5, Utterance: "wait, actually"})
	waitFor(t, "reply 5 terminal fragment", func() bool { return sender.finalFor(5) != nil })

	select {
	case replyID := <-cancelled:
		if replyID != 4 {
			t.Fatalf("expected reply 4 cancelled, got %d", replyID)
		}
	default:
		t.Fatalf("expected a cancellation callback for reply 4")
	}

	if cancels := sender.sentCancels(); len(cancels) != 1 || cancels[0] != 4 {
		t.Fatalf("expected one cancellation notice for reply 4, got %v", cancels)
	}
	if sender.finalFor(4) != nil {
		t.Fatalf("expected no terminal marker for the cancelled reply")
	}

	history := orchestrator.History()
	for _, message := range history {
		if message.Role == llms.RoleAssistant && message.Content != "Sure, tell me more." {
			t.Fatalf("expected the cancelled partial reply kept out of memory, found %q", message.Content)
		}
	}
	if history[len(history)-1].Content != "Sure, tell me more." {
		t.Fatalf("expected the second reply recorded, got %+v", history[len(history)-1])
	}
}

func TestStreamFailureEndsTurnWithEmptyTerminalMarker(t *testing.T) {
	engine := &fakeEngine{streams: []*scriptedStream{
		{
			chunks: []llms.StreamChunk{testContentChunk{text: "Let me ch"}},
			err:    context.DeadlineExceeded,
		},
	}}
	sender := &fakeSender{}

	var failedReply int
	failed := make(chan struct{})
	orchestrator := NewOrchestrator(
		WithCompletionEngine(engine),
		WithSender(sender),
		WithEventHandler(func(event events.Event) {
			if turnFailed, ok := event.(events.TurnFailed); ok {
				failedReply = turnFailed.ReplyID
				close(failed)
			}
		}),
	)
	defer orchestrator.Close()

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 1, Utterance: "hello"})

	waitFor(t, "turn failure event", func() bool {
		select {
		case <-failed:
			return true
		default:
			return false
		}
	})
	if failedReply != 1 {
		t.Fatalf("expected reply 1 to fail, got %d", failedReply)
	}

	waitFor(t, "terminal fragment", func() bool { return sender.finalFor(1) != nil })
	if terminal := sender.finalFor(1); terminal.Content != "" {
		t.Fatalf("expected an empty terminal marker after a stream failure, got %q", terminal.Content)
	}

	history := orchestrator.History()
	if len(history) != 1 || history[0].Role != llms.RoleUser {
		t.Fatalf("expected only the utterance in memory after a stream failure, got %+v", history)
	}
}

func TestTurnEventsFollowTheTurnLifecycle(t *testing.T) {
	engine := &fakeEngine{streams: []*scriptedStream{
		{chunks: []llms.StreamChunk{testContentChunk{text: "hi"}}},
	}}
	sender := &fakeSender{}

	var recorded []events.Kind
	done := make(chan struct{})
	orchestrator := NewOrchestrator(
		WithCompletionEngine(engine),
		WithSender(sender),
		WithEventHandler(func(event events.Event) {
			recorded = append(recorded, event.Kind())
			if _, ok := event.(events.TurnCompleted); ok {
				close(done)
			}
		}),
	)
	defer orchestrator.Close()

	orchestrator.HandleTurn(context.Background(), transport.TurnEvent{ReplyID: 1, Utterance: "hello"})

	waitFor(t, "turn completion event", func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	})

	expected := []events.Kind{
		events.KindUserTurnReceived,
		events.KindTurnStarted,
		events.KindAssistantResponseSegment,
		events.KindAssistantResponseFinal,
		events.KindTurnCompleted,
	}
	if len(recorded) != len(expected) {
		t.Fatalf("expected %d events, got %v", len(expected), recorded)
	}
	for i, kind := range expected {
		if recorded[i] != kind {
			t.Fatalf("expected %s at position %d, got %v", kind, i, recorded)
		}
	}
}
