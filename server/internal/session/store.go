package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("no session found for the given key")

// Store is the in-memory registry of download sessions. Insert and
// lookup are safe under concurrent access from job goroutines and
// HTTP handlers; per-session fields are guarded by the session itself.
type Store struct {
	table map[string]*Session
	mu    sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		table: make(map[string]*Session),
	}
}

// Create registers a fresh session in the queued state and returns it.
func (m *Store) Create(url, kind, quality string) *Session {
	s := newSession(uuid.NewString(), url, kind, quality)

	m.mu.Lock()
	m.table[s.Id] = s
	m.mu.Unlock()

	return s
}

// Get a session given its id
func (m *Store) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.table[id]
	if !ok {
		return nil, ErrNotFound
	}

	return entry, nil
}

// Delete removes a session, given its id
func (m *Store) Delete(id string) {
	m.mu.Lock()
	delete(m.table, id)
	m.mu.Unlock()
}

func (m *Store) Keys() []string {
	var keys []string

	m.mu.RLock()
	defer m.mu.RUnlock()

	for id := range m.table {
		keys = append(keys, id)
	}

	return keys
}

// All returns a snapshot of every stored session
func (m *Store) All() []Snapshot {
	snapshots := []Snapshot{}

	m.mu.RLock()
	for _, s := range m.table {
		snapshots = append(snapshots, s.Snapshot())
	}
	m.mu.RUnlock()

	return snapshots
}

// Reap removes sessions that reached a terminal state more than ttl
// ago and returns how many were evicted.
func (m *Store) Reap(ttl time.Duration) int {
	var expired []string

	m.mu.RLock()
	for id, s := range m.table {
		if s.reapable(ttl) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		m.Delete(id)
	}

	return len(expired)
}

// Schedule runs the TTL reaper until the context is cancelled.
func (m *Store) Schedule(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Reap(ttl); n > 0 {
				slog.Info("evicted terminal sessions", slog.Int("count", n))
			}
		}
	}
}
