package orchestration

import (
	"sync"

	"github.com/koscakluka/helpline-core/core/llms"
)

// defaultMemoryCapacity is sized so that a tool turn (intent, result and
// narration riding along with the user/assistant pairs) does not evict the
// context it depends on.
const defaultMemoryCapacity = 10

// Memory is the bounded, ordered conversational history of one call session.
// Appending beyond capacity evicts from the front, oldest first. Messages are
// never reordered or mutated once appended.
type Memory struct {
	mu       sync.RWMutex
	messages []llms.Message
	capacity int
}

func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{capacity: capacity}
}

// Append adds messages at the end, in the given order, evicting the oldest
// retained messages once the capacity is exceeded.
func (m *Memory) Append(messages ...llms.Message) {
	if len(messages) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, messages...)
	if overflow := len(m.messages) - m.capacity; overflow > 0 {
		m.messages = append([]llms.Message(nil), m.messages[overflow:]...)
	}
}

// Snapshot returns every retained message in conversational order. The
// returned slice is a copy; it does not observe later appends.
func (m *Memory) Snapshot() []llms.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]llms.Message, len(m.messages))
	copy(messages, m.messages)
	return messages
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

func (m *Memory) Capacity() int {
	return m.capacity
}
