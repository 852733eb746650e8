package history

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
)

// Session holds one conversation tree: a set of entries linked by
// parent pointers plus an active entry marking the current leaf.
// Appending always parents onto the active entry, so the path from the
// root to the active entry is the live branch.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu       sync.RWMutex
	entries  map[string]*Entry
	order    []string // append order, for Entries()
	activeID string

	store *Store // nil for in-memory sessions
}

// NewSession creates an in-memory session that is not backed by a
// store. Sessions managed by a Manager are persisted; this constructor
// exists for embedding and tests.
func NewSession(name string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		entries:   make(map[string]*Entry),
	}
}

// Append adds an entry to the session. The entry is parented onto the
// current active entry and becomes the new active entry. Missing ID
// and CreatedAt fields are filled in.
func (s *Session) Append(e *Entry) error {
	if e == nil {
		return errors.NewValidationError("entry must not be nil")
	}
	if e.Type != EntryMessage && e.Type != EntryCustom {
		return errors.NewValidationError("unknown entry type: " + string(e.Type)).WithField("type")
	}

	s.mu.Lock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.entries[e.ID]; exists {
		s.mu.Unlock()
		return errors.NewAlreadyExistsError("entry", e.ID)
	}
	e.ParentID = s.activeID
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	s.activeID = e.ID
	store := s.store
	s.mu.Unlock()

	if store != nil {
		if err := store.AppendEntry(s.ID, e); err != nil {
			return errors.Wrap(err, "failed to persist entry")
		}
	}
	return nil
}

// AppendMessage appends a message entry with the given role and text.
func (s *Session) AppendMessage(role, text string) (*Entry, error) {
	e := &Entry{Type: EntryMessage, Role: role, Text: text}
	if err := s.Append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// AppendCustom marshals payload and appends a custom entry filed under
// the given tag. Extensions use custom entries to persist their own
// state inside the session history.
func (s *Session) AppendCustom(tag string, payload any) (*Entry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal custom payload")
	}
	e := &Entry{Type: EntryCustom, CustomType: tag, Payload: data}
	if err := s.Append(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Branch returns the entries on the live branch, from the root down to
// the active entry. The slice is ordered oldest first: callers that
// scan for the last matching entry therefore find the most recently
// appended one. This ordering is a documented guarantee.
func (s *Session) Branch() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branchToLocked(s.activeID)
}

// branchToLocked walks parent pointers from entryID to the root and
// returns the path oldest first. Callers must hold s.mu.
func (s *Session) branchToLocked(entryID string) []*Entry {
	var reversed []*Entry
	for id := entryID; id != ""; {
		e, ok := s.entries[id]
		if !ok {
			break
		}
		reversed = append(reversed, e)
		id = e.ParentID
	}
	branch := make([]*Entry, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		branch = append(branch, reversed[i])
	}
	return branch
}

// NavigateTo moves the active entry to an existing entry anywhere in
// the tree. Subsequent appends branch off from that entry.
func (s *Session) NavigateTo(entryID string) error {
	s.mu.Lock()
	if _, ok := s.entries[entryID]; !ok {
		s.mu.Unlock()
		return errors.NewNotFoundError("entry", entryID).WithCause(errors.ErrEntryNotFound)
	}
	s.activeID = entryID
	store := s.store
	s.mu.Unlock()

	if store != nil {
		if err := store.SaveState(s.ID, entryID); err != nil {
			return errors.Wrap(err, "failed to persist active entry")
		}
	}
	return nil
}

// Entry returns the entry with the given ID, if present.
func (s *Session) Entry(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// ActiveID returns the ID of the active entry, or "" for an empty
// session.
func (s *Session) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Entries returns all entries in append order, including entries on
// abandoned branches.
func (s *Session) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// Len returns the number of entries in the session.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// forkFrom copies the branch ending at entryID into a fresh session.
// The copy's active entry is entryID. An empty entryID produces an
// empty session.
func (s *Session) forkFrom(name, entryID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entryID != "" {
		if _, ok := s.entries[entryID]; !ok {
			return nil, errors.NewNotFoundError("entry", entryID).WithCause(errors.ErrEntryNotFound)
		}
	}

	fork := NewSession(name)
	for _, e := range s.branchToLocked(entryID) {
		c := e.clone()
		fork.entries[c.ID] = c
		fork.order = append(fork.order, c.ID)
	}
	fork.activeID = entryID
	return fork, nil
}

// restore inserts an entry during replay from disk without rewriting
// its recorded parent. The entry becomes the active entry, mirroring
// the append that originally produced it.
func (s *Session) restore(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; exists {
		return
	}
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	s.activeID = e.ID
}

// restoreState sets the active entry during replay from disk.
func (s *Session) restoreState(entryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = entryID
}
