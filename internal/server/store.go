package server

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrUploadNotFound = errors.New("upload not found or expired")

// Upload is a user supplied table held in memory for ad-hoc analysis
type Upload struct {
	ID       string
	Name     string
	Frame    *dataset.Frame
	Uploaded time.Time

	lastUsed time.Time
}

// uploadStore is a thread-safe LRU of uploads. Entries unused for longer than ttl are dropped on
// access.
type uploadStore struct {
	clock    clockwork.Clock
	ttl      time.Duration
	capacity int
	metrics  *observability.Metrics

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

func newUploadStore(clock clockwork.Clock, ttl time.Duration, capacity int, m *observability.Metrics) *uploadStore {
	return &uploadStore{
		clock:    clock,
		ttl:      ttl,
		capacity: capacity,
		metrics:  m,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (s *uploadStore) add(name string, f *dataset.Frame) *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.expireLocked(now)

	u := &Upload{
		ID:       uuid.NewString(),
		Name:     name,
		Frame:    f,
		Uploaded: now,
		lastUsed: now,
	}
	s.entries[u.ID] = s.order.PushFront(u)

	for s.order.Len() > s.capacity {
		s.removeLocked(s.order.Back(), "capacity")
	}
	s.metrics.UploadEntries.Set(float64(s.order.Len()))
	return u
}

func (s *uploadStore) get(id string) (*Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.expireLocked(now)

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%q, %w", id, ErrUploadNotFound)
	}
	u := e.Value.(*Upload)
	u.lastUsed = now
	s.order.MoveToFront(e)
	return u, nil
}

func (s *uploadStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.clock.Now())
	return s.order.Len()
}

// expireLocked drops entries from the least recently used end until one is still fresh
func (s *uploadStore) expireLocked(now time.Time) {
	for e := s.order.Back(); e != nil; e = s.order.Back() {
		if now.Sub(e.Value.(*Upload).lastUsed) < s.ttl {
			break
		}
		s.removeLocked(e, "ttl")
	}
	s.metrics.UploadEntries.Set(float64(s.order.Len()))
}

func (s *uploadStore) removeLocked(e *list.Element, cause string) {
	u := s.order.Remove(e).(*Upload)
	delete(s.entries, u.ID)
	s.metrics.UploadsEvicted.WithLabelValues(cause).Inc()
}
