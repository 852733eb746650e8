package ui

import "context"

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Surface is the host's user-facing display as extensions see it. It
// deliberately says nothing about how the display is drawn; a terminal
// REPL, a richer TUI, and the test fake all implement it.
type Surface interface {
	// Attached reports whether an interactive display is present.
	// When false, Confirm fails and extensions must fall back to
	// their non-interactive behavior.
	Attached() bool

	// Confirm presents a binary yes/no prompt and blocks until the
	// user answers. Aborting the prompt counts as declining. Returns
	// ErrNoUI when no display is attached.
	Confirm(ctx context.Context, title, body string) (bool, error)

	// Notify shows a one-shot message classified by level.
	Notify(level Level, msg string)

	// SetStatus sets the named status fragment. Fragments from all
	// extensions are rendered together, sorted by key.
	SetStatus(key, text string)

	// ClearStatus removes the named status fragment.
	ClearStatus(key string)

	// StatusLine renders the current status fragments as a single
	// line, or "" when no fragments are set.
	StatusLine() string

	// Stylize applies a named style to text. Implementations without
	// styling return the text unchanged.
	Stylize(style StyleName, text string) string
}
