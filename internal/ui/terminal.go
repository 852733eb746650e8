package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
)

// TerminalSurface renders to a terminal. Confirmations use an inline
// form; notifications and the status line are plain styled output.
// When stdin or stdout is not a terminal the surface reports itself
// detached, styling is disabled, and Confirm always fails with ErrNoUI.
type TerminalSurface struct {
	out      io.Writer
	attached bool
	log      *logging.Logger

	mu     sync.Mutex
	status map[string]string
}

// NewTerminalSurface creates a surface on stdout. Both stdin and stdout
// must be terminals to count as attached; a piped stdin cannot answer
// confirmation prompts even when stdout renders them.
func NewTerminalSurface(log *logging.Logger) *TerminalSurface {
	attached := isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
	return newSurface(os.Stdout, attached, log)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newSurface(out io.Writer, attached bool, log *logging.Logger) *TerminalSurface {
	if log == nil {
		log = logging.NopLogger()
	}
	return &TerminalSurface{
		out:      out,
		attached: attached,
		log:      log,
		status:   make(map[string]string),
	}
}

// Attached reports whether an interactive terminal is present.
func (t *TerminalSurface) Attached() bool {
	return t.attached
}

// Confirm presents an inline yes/no form. Esc and ctrl+c abort the
// form, which counts as declining.
func (t *TerminalSurface) Confirm(ctx context.Context, title, body string) (bool, error) {
	if !t.attached {
		return false, errors.ErrNoUI
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("ctrl+c/esc", "decline"),
	)

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(body).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithKeyMap(keyMap)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			t.log.Debug("confirmation aborted", "title", title)
			return false, nil
		}
		return false, errors.Wrap(err, "confirmation prompt failed")
	}
	return confirmed, nil
}

// Notify prints a one-line message prefixed with a level glyph.
func (t *TerminalSurface) Notify(level Level, msg string) {
	glyph, ok := levelGlyphs[level]
	if !ok {
		glyph, level = levelGlyphs[LevelInfo], LevelInfo
	}
	if t.attached {
		glyph = levelStyles[level].Render(glyph)
	}
	fmt.Fprintf(t.out, "%s %s\n", glyph, msg)
}

// SetStatus sets the named status fragment.
func (t *TerminalSurface) SetStatus(key, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[key] = text
}

// ClearStatus removes the named status fragment.
func (t *TerminalSurface) ClearStatus(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.status, key)
}

// StatusLine renders all fragments sorted by key, joined with a bar
// separator.
func (t *TerminalSurface) StatusLine() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.status) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.status))
	for k := range t.status {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+t.status[k])
	}
	line := strings.Join(parts, " │ ")
	return t.Stylize(StyleDim, line)
}

// Stylize applies the named style when a terminal is attached; detached
// surfaces return the text unchanged.
func (t *TerminalSurface) Stylize(style StyleName, text string) string {
	if !t.attached {
		return text
	}
	s, ok := styleTable[style]
	if !ok {
		return text
	}
	return s.Render(text)
}
