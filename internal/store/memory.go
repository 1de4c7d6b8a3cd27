package store

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	touchedAt time.Time
}

// MemoryStore keeps per-session values in memory. Entries idle longer than
// the TTL are evicted on access or by Sweep; when the store is full the
// least recently used entry is evicted.
type MemoryStore[T any] struct {
	mu          sync.Mutex
	sessions    map[string]*entry[T]
	ttl         time.Duration
	maxSessions int
	onEvict     func(sessionID string, v T)
	now         func() time.Time
}

// NewMemoryStore creates a store. ttl <= 0 disables expiry, maxSessions <= 0
// disables the size cap. onEvict may be nil; it is called without the lock held.
func NewMemoryStore[T any](ttl time.Duration, maxSessions int, onEvict func(sessionID string, v T)) *MemoryStore[T] {
	return &MemoryStore[T]{
		sessions:    make(map[string]*entry[T]),
		ttl:         ttl,
		maxSessions: maxSessions,
		onEvict:     onEvict,
		now:         time.Now,
	}
}

// GetOrCreate returns the session's value, creating it when absent or expired.
func (m *MemoryStore[T]) GetOrCreate(sessionID string, create func() T) T {
	var evicted []evictedEntry[T]
	defer func() { m.notify(evicted) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.sessions[sessionID]; ok {
		if !m.expiredLocked(e, now) {
			e.touchedAt = now
			return e.value
		}
		delete(m.sessions, sessionID)
		evicted = append(evicted, evictedEntry[T]{sessionID, e.value})
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		if id, e := m.oldestLocked(); e != nil {
			delete(m.sessions, id)
			evicted = append(evicted, evictedEntry[T]{id, e.value})
		}
	}
	v := create()
	m.sessions[sessionID] = &entry[T]{value: v, touchedAt: now}
	return v
}

// Get returns the session's value if present and not expired.
func (m *MemoryStore[T]) Get(sessionID string) (T, bool) {
	var evicted []evictedEntry[T]
	defer func() { m.notify(evicted) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	e, ok := m.sessions[sessionID]
	if !ok {
		return zero, false
	}
	now := m.now()
	if m.expiredLocked(e, now) {
		delete(m.sessions, sessionID)
		evicted = append(evicted, evictedEntry[T]{sessionID, e.value})
		return zero, false
	}
	e.touchedAt = now
	return e.value, true
}

func (m *MemoryStore[T]) Delete(sessionID string) {
	var evicted []evictedEntry[T]
	defer func() { m.notify(evicted) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[sessionID]; ok {
		delete(m.sessions, sessionID)
		evicted = append(evicted, evictedEntry[T]{sessionID, e.value})
	}
}

// Sweep evicts every expired entry and returns how many were removed.
func (m *MemoryStore[T]) Sweep() int {
	var evicted []evictedEntry[T]
	defer func() { m.notify(evicted) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, e := range m.sessions {
		if m.expiredLocked(e, now) {
			delete(m.sessions, id)
			evicted = append(evicted, evictedEntry[T]{id, e.value})
		}
	}
	return len(evicted)
}

func (m *MemoryStore[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type evictedEntry[T any] struct {
	id    string
	value T
}

func (m *MemoryStore[T]) notify(evicted []evictedEntry[T]) {
	if m.onEvict == nil {
		return
	}
	for _, e := range evicted {
		m.onEvict(e.id, e.value)
	}
}

func (m *MemoryStore[T]) expiredLocked(e *entry[T], now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touchedAt) > m.ttl
}

func (m *MemoryStore[T]) oldestLocked() (string, *entry[T]) {
	var (
		oldestID string
		oldest   *entry[T]
	)
	for id, e := range m.sessions {
		if oldest == nil || e.touchedAt.Before(oldest.touchedAt) {
			oldestID, oldest = id, e
		}
	}
	return oldestID, oldest
}
