package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-jobform/pkg/form"
)

// entry is one client's form session. mu serialises the requests of a
// single client so a read-modify-render cycle sees its own writes.
type entry struct {
	mu       sync.Mutex
	id       string
	csrf     string
	session  *form.Session
	lastSeen time.Time
}

// sessionStore keeps form sessions in memory and evicts those idle longer than ttl.
type sessionStore struct {
	ttl     time.Duration
	max     int
	factory func(id string) *form.Session
	onSize  func(int)

	mu   sync.Mutex
	byID map[string]*entry
}

func newStore(ttl time.Duration, max int, factory func(id string) *form.Session, onSize func(int)) *sessionStore {
	if onSize == nil {
		onSize = func(int) {}
	}
	return &sessionStore{
		ttl:     ttl,
		max:     max,
		factory: factory,
		onSize:  onSize,
		byID:    make(map[string]*entry),
	}
}

// Get returns the live session for id, or nil when it is unknown or expired.
func (s *sessionStore) Get(id string, now time.Time) *entry {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return nil
	}
	if s.expired(e, now) {
		delete(s.byID, id)
		s.onSize(len(s.byID))
		return nil
	}
	e.lastSeen = now
	return e
}

// Create starts a new session. Expired sessions are swept first; when the
// store is still full ErrTooManySessions is returned.
func (s *sessionStore) Create(now time.Time) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.byID) >= s.max {
		s.sweepLocked(now)
		if len(s.byID) >= s.max {
			return nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	e := &entry{
		id:       id,
		csrf:     uuid.NewString(),
		session:  s.factory(id),
		lastSeen: now,
	}
	s.byID[id] = e
	s.onSize(len(s.byID))
	return e, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *sessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// Len reports the number of stored sessions, expired ones included.
func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *sessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.byID {
		if s.expired(e, now) {
			delete(s.byID, id)
			removed++
		}
	}
	if removed > 0 {
		s.onSize(len(s.byID))
	}
	return removed
}

func (s *sessionStore) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}
