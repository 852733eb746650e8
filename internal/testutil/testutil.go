// Package testutil provides testing utilities for gatehouse tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
)

// SetupManager creates a history manager persisted under a temp
// directory that is cleaned up when the test completes.
func SetupManager(t *testing.T) *history.Manager {
	t.Helper()

	store, err := history.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create history store: %v", err)
	}
	return history.NewManager(store, nil)
}

// SetupSession creates a manager with one active session.
func SetupSession(t *testing.T, name string) (*history.Manager, *history.Session) {
	t.Helper()

	mgr := SetupManager(t)
	sess, err := mgr.Create(name)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return mgr, sess
}

// ConfirmCall records one Confirm invocation on the fake surface.
type ConfirmCall struct {
	Title string
	Body  string
}

// Notification records one Notify invocation on the fake surface.
type Notification struct {
	Level ui.Level
	Msg   string
}

// Surface is a scriptable ui.Surface for tests. Confirm answers are
// consumed from a queue; an exhausted queue declines. All interactions
// are recorded.
type Surface struct {
	mu         sync.Mutex
	attached   bool
	answers    []bool
	confirmErr error

	Confirms      []ConfirmCall
	Notifications []Notification
	Status        map[string]string

	// StatusSets counts SetStatus calls, including overwrites of the
	// same key. Ticker tests watch it to see refreshes happen.
	StatusSets int
}

var _ ui.Surface = (*Surface)(nil)

// NewSurface creates a fake surface. Detached surfaces reject Confirm
// with ErrNoUI, mirroring the terminal implementation.
func NewSurface(attached bool) *Surface {
	return &Surface{
		attached: attached,
		Status:   make(map[string]string),
	}
}

// QueueConfirm scripts the answers returned by subsequent Confirm
// calls, in order.
func (s *Surface) QueueConfirm(answers ...bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answers...)
}

// FailConfirm makes every subsequent Confirm call fail with err,
// simulating a prompt torn down mid-confirmation.
func (s *Surface) FailConfirm(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmErr = err
}

// Attached reports the attachment state the surface was built with.
func (s *Surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Confirm records the call and pops the next scripted answer.
func (s *Surface) Confirm(_ context.Context, title, body string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return false, errors.ErrNoUI
	}
	s.Confirms = append(s.Confirms, ConfirmCall{Title: title, Body: body})

	if s.confirmErr != nil {
		return false, s.confirmErr
	}
	if len(s.answers) == 0 {
		return false, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Notify records the notification.
func (s *Surface) Notify(level ui.Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, Notification{Level: level, Msg: msg})
}

// SetStatus records the fragment.
func (s *Surface) SetStatus(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status[key] = text
	s.StatusSets++
}

// ClearStatus removes the fragment.
func (s *Surface) ClearStatus(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Status, key)
}

// StatusLine renders the recorded fragments the way the terminal
// surface does, sorted by key.
func (s *Surface) StatusLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.Status))
	for k := range s.Status {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+s.Status[k])
	}
	return strings.Join(parts, " │ ")
}

// Stylize returns the text unchanged.
func (s *Surface) Stylize(_ ui.StyleName, text string) string {
	return text
}

// LastNotification returns the most recent notification, if any.
func (s *Surface) LastNotification() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Notifications) == 0 {
		return Notification{}, false
	}
	return s.Notifications[len(s.Notifications)-1], true
}

// StatusFragment returns the named fragment under the lock.
func (s *Surface) StatusFragment(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.Status[key]
	return text, ok
}

// StatusSetCount returns the number of SetStatus calls so far.
func (s *Surface) StatusSetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StatusSets
}
