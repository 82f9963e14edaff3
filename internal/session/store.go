package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store maps opaque session ids to carriers.
type Store interface {
	Create(c *Carrier) (string, time.Time)
	Get(id string) (*Carrier, bool)
	Delete(id string)
}

type entry struct {
	carrier   *Carrier
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory only. Entries expire after
// the configured TTL and are purged lazily.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(c *Carrier) (string, time.Time) {
	id := uuid.New().String()
	now := s.now()
	expires := now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(now)
	s.sessions[id] = entry{carrier: c, expiresAt: expires}
	return id, expires
}

func (s *MemoryStore) Get(id string) (*Carrier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return e.carrier, true
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
