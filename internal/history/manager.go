package history

import (
	"sort"
	"sync"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
)

// Manager owns the set of sessions and tracks which one is active. It
// is pure state: it performs no event dispatch of its own, so hosts
// pair each mutation with the announcement their runtime requires.
type Manager struct {
	mu       sync.RWMutex
	store    *Store
	log      *logging.Logger
	sessions map[string]*Session
	activeID string
}

// NewManager creates a manager backed by store. A nil store yields an
// in-memory manager, which tests use freely.
func NewManager(store *Store, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Manager{
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Load restores every session found in the store. Sessions that fail
// to load are skipped with a warning rather than aborting startup.
func (m *Manager) Load() error {
	if m.store == nil {
		return nil
	}
	infos, err := m.store.ListSessions()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range infos {
		if _, ok := m.sessions[info.ID]; ok {
			continue
		}
		sess, err := m.store.LoadSession(info.ID)
		if err != nil {
			m.log.Warn("skipping session that failed to load",
				"session_id", info.ID, "error", err)
			continue
		}
		m.sessions[sess.ID] = sess
	}
	return nil
}

// Create makes a new empty session, persists it, and switches to it.
func (m *Manager) Create(name string) (*Session, error) {
	sess := NewSession(name)
	if m.store != nil {
		if err := m.store.CreateSession(sess); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.activeID = sess.ID
	m.mu.Unlock()

	m.log.Debug("session created", "session_id", sess.ID, "name", name)
	return sess, nil
}

// Open returns the session with the given ID.
func (m *Manager) Open(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id).WithCause(errors.ErrSessionNotFound)
	}
	return sess, nil
}

// ByName returns the first session with the given name, in creation
// order.
func (m *Manager) ByName(name string) (*Session, bool) {
	for _, sess := range m.List() {
		if sess.Name == name {
			return sess, true
		}
	}
	return nil, false
}

// List returns all sessions sorted by creation time, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Active returns the active session.
func (m *Manager) Active() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.activeID == "" {
		return nil, errors.ErrNoActiveSession
	}
	sess, ok := m.sessions[m.activeID]
	if !ok {
		return nil, errors.ErrNoActiveSession
	}
	return sess, nil
}

// ActiveID returns the active session's ID, or "" when none is
// active.
func (m *Manager) ActiveID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID
}

// Switch makes the session with the given ID active and returns it.
func (m *Manager) Switch(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id).WithCause(errors.ErrSessionNotFound)
	}
	m.activeID = id
	return sess, nil
}

// Fork copies the active session's branch up to entryID into a new
// session and switches to it. An empty entryID forks at the active
// entry. The fork's name is the source name with a "-fork" suffix.
func (m *Manager) Fork(entryID string) (*Session, error) {
	src, err := m.Active()
	if err != nil {
		return nil, err
	}
	if entryID == "" {
		entryID = src.ActiveID()
	}

	fork, err := src.forkFrom(src.Name+"-fork", entryID)
	if err != nil {
		return nil, err
	}
	if m.store != nil {
		if err := m.store.CreateSession(fork); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[fork.ID] = fork
	m.activeID = fork.ID
	m.mu.Unlock()

	m.log.Debug("session forked",
		"session_id", fork.ID, "forked_from", src.ID, "entry_id", entryID)
	return fork, nil
}

// Compact rewrites a session's file as a minimal replay, squashing
// accumulated state records.
func (m *Manager) Compact(id string) error {
	if m.store == nil {
		return nil
	}
	sess, err := m.Open(id)
	if err != nil {
		return err
	}
	return m.store.Rewrite(sess)
}
