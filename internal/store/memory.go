// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds active matches for the HTTP host; state is lost on restart
// (use SavedGames to persist a snapshot).
//
// Characteristics:
//   - Sessions keyed by Session.ID in a map guarded by an RWMutex.
//   - Each entry carries its own mutex: Update runs fn with exclusive access,
//     so a match has a single writer at a time.
//   - ErrNotFound is returned for unknown IDs.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/battleship/internal/session"
)

// ErrNotFound is returned when no match or save exists for an ID.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for active matches.
type Store interface {
	// Save adds or replaces a match.
	Save(ctx context.Context, s *session.Session) error

	// View runs fn with read access to the match.
	View(ctx context.Context, id string, fn func(*session.Session) error) error

	// Update runs fn with exclusive access to the match.
	Update(ctx context.Context, id string, fn func(*session.Session) error) error

	// Delete forgets a match. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of active matches.
	Len() int
}

type entry struct {
	mu   sync.Mutex
	sess *session.Session
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions map
	sessions map[string]*entry // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry)}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session without id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[s.ID]; ok {
		e.mu.Lock()
		e.sess = s
		e.mu.Unlock()
		return nil
	}
	m.sessions[s.ID] = &entry{sess: s}
	return nil
}

func (m *memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) View(ctx context.Context, id string, fn func(*session.Session) error) error {
	return m.Update(ctx, id, fn)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*session.Session) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
