package memory

import (
	"context"
	"sync"

	audit "chronoledger/pkg/platform/audit"
)

type recordRef struct {
	kind audit.RecordKind
	id   uint64
}

// InMemoryStore is the default audit log. Events are kept in append order
// with a per-record position index, mirroring the (kind, record_id) index of
// the Postgres store.
type InMemoryStore struct {
	mu       sync.RWMutex
	log      []audit.Event
	byRecord map[recordRef][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byRecord: make(map[recordRef][]int)}
}

// Clear drops every event.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	s.byRecord = make(map[recordRef][]int)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := recordRef{kind: event.Kind, id: event.RecordID}
	s.byRecord[ref] = append(s.byRecord[ref], len(s.log))
	s.log = append(s.log, event)
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.log...), nil
}

// ListByRecord returns the trail of one record, oldest first.
func (s *InMemoryStore) ListByRecord(_ context.Context, kind audit.RecordKind, recordID uint64) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := s.byRecord[recordRef{kind: kind, id: recordID}]
	out := make([]audit.Event, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.log[pos])
	}
	return out, nil
}

// ListRecent returns the newest limit events, oldest first. A non-positive
// limit returns everything.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tail := s.log
	if limit > 0 && limit < len(tail) {
		tail = tail[len(tail)-limit:]
	}
	return append([]audit.Event(nil), tail...), nil
}
