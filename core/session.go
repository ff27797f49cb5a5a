package orchestration

import "sync"

// session holds per-call reply state: whether a reply is in flight, which
// reply id, and the cancellable run producing it. The coordinator serializes
// every transition through mu; a run is only ever "active" for one session.
type session struct {
	mu sync.Mutex

	replying      bool
	activeReplyID int
	active        *responder

	isFirstTurn bool
}

func newSession() session {
	return session{isFirstTurn: true}
}

// takeFirstTurn reports whether this is the session's first reply and flips
// the flag. The flag never reverts for the lifetime of the session.
func (s *session) takeFirstTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.isFirstTurn
	s.isFirstTurn = false
	return first
}

// activate installs next as the session's active run and returns the run it
// displaced, if any. The caller must request cancellation of the displaced
// run before next reaches its first suspension point.
func (s *session) activate(next *responder) (displaced *responder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displaced = s.active
	s.active = next
	s.replying = true
	s.activeReplyID = next.replyID
	return displaced
}

// promote swaps a follow-up run in for the run that produced it. It fails
// when the session has moved on, i.e. a barge-in displaced the original run
// while its action was being dispatched.
func (s *session) promote(current, next *responder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != current {
		return false
	}
	s.active = next
	return true
}

// clearActive transitions Replying -> Idle, but only if r is still the
// session's active run.
func (s *session) clearActive(r *responder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != r {
		return false
	}
	s.active = nil
	s.replying = false
	s.activeReplyID = 0
	return true
}

func (s *session) activeRun() *responder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
