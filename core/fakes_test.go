package orchestration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/helpline-core/core/llms"
	"github.com/koscakluka/helpline-core/core/scheduling"
	"github.com/koscakluka/helpline-core/core/transport"
)

type testContentChunk struct {
	text string
}

func (c testContentChunk) FinishReason() *string { return nil }
func (c testContentChunk) Content() string       { return c.text }

type testToolCallChunk struct {
	fragment llms.ToolCallFragment
}

func (c testToolCallChunk) FinishReason() *string           { return nil }
func (c testToolCallChunk) Fragment() llms.ToolCallFragment { return c.fragment }

// scriptedStream yields its chunks in order, then err if set. When blockUntil
// is non-nil the stream stalls after the chunks until the channel closes or
// the iteration context is cancelled, which lets tests hold a reply in
// flight while a barge-in arrives.
type scriptedStream struct {
	chunks     []llms.StreamChunk
	err        error
	blockUntil chan struct{}
}

func (s *scriptedStream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for _, chunk := range s.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if s.blockUntil != nil {
			select {
			case <-s.blockUntil:
			case <-ctx.Done():
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

// fakeEngine pops one scripted stream per prompt and records the resolved
// options of every prompt it served.
type fakeEngine struct {
	mu      sync.Mutex
	streams []*scriptedStream
	prompts []llms.StreamingPromptOptions
}

func (e *fakeEngine) PromptWithStream(_ context.Context, opts ...llms.StreamingPromptOption) llms.Stream {
	e.mu.Lock()
	defer e.mu.Unlock()

	options := llms.StreamingPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToStreaming(&options)
	}
	e.prompts = append(e.prompts, options)

	if len(e.streams) == 0 {
		return &scriptedStream{}
	}
	stream := e.streams[0]
	e.streams = e.streams[1:]
	return stream
}

func (e *fakeEngine) promptCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.prompts)
}

func (e *fakeEngine) prompt(i int) llms.StreamingPromptOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prompts[i]
}

// fakeSender records outbound fragments and cancellation notices.
type fakeSender struct {
	mu        sync.Mutex
	fragments []transport.ReplyFragment
	cancels   []int
	sendErr   error
}

func (s *fakeSender) Send(_ context.Context, fragment transport.ReplyFragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.fragments = append(s.fragments, fragment)
	return nil
}

func (s *fakeSender) CancelReply(_ context.Context, replyID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, replyID)
	return nil
}

func (s *fakeSender) sentFragments() []transport.ReplyFragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transport.ReplyFragment{}, s.fragments...)
}

func (s *fakeSender) sentCancels() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.cancels...)
}

func (s *fakeSender) finalFor(replyID int) *transport.ReplyFragment {
	for _, fragment := range s.sentFragments() {
		if fragment.ReplyID == replyID && fragment.IsFinal {
			return &fragment
		}
	}
	return nil
}

type fakeAvailability struct {
	mu    sync.Mutex
	slot  *scheduling.Slot
	err   error
	calls int
}

func (a *fakeAvailability) NextAvailableSlot(context.Context) (*scheduling.Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return a.slot, a.err
}

type fakeBooking struct {
	mu           sync.Mutex
	confirmation *scheduling.Confirmation
	err          error
	requests     []scheduling.BookingRequest
}

func (b *fakeBooking) CreateMeeting(_ context.Context, request scheduling.BookingRequest) (*scheduling.Confirmation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, request)
	return b.confirmation, b.err
}

func (b *fakeBooking) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// waitFor polls until the condition holds or the test deadline expires.
func waitFor(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
