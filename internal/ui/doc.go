// Package ui defines the display surface extensions talk to, plus the
// terminal implementation gatehouse ships with.
//
// Extensions never draw; they ask the [Surface] for a confirmation,
// post a notification, or set a named status fragment, and the host's
// implementation decides how that appears. The terminal surface keeps
// interaction inline with the conversation; a detached surface (stdout
// piped somewhere) degrades gracefully by disabling styling and
// rejecting confirmations with ErrNoUI.
//
// # Main Types
//
//   - [Surface]: What extensions see; confirmations, notifications, status fragments
//   - [TerminalSurface]: Inline terminal implementation backed by huh and lipgloss
//   - [Level]: Notification severity (info, warn, error, success)
//   - [StyleName]: Semantic style selector for [Surface.Stylize]
//
// # Status Fragments
//
// Each extension owns the fragments it sets, identified by key. The
// surface renders all fragments sorted by key into one line, so
// concurrent writers never fight over layout.
//
// # Thread Safety
//
// [TerminalSurface] is safe for concurrent use. Confirm blocks its
// caller until answered; the host serializes dispatch, so at most one
// prompt is on screen at a time.
package ui
