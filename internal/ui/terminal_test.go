package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
)

func newDetachedSurface() (*TerminalSurface, *bytes.Buffer) {
	var buf bytes.Buffer
	return newSurface(&buf, false, nil), &buf
}

func TestTerminalSurface_Attached(t *testing.T) {
	surface, _ := newDetachedSurface()
	if surface.Attached() {
		t.Error("Attached() = true, want false")
	}
}

func TestTerminalSurface_Confirm_Detached(t *testing.T) {
	surface, _ := newDetachedSurface()

	ok, err := surface.Confirm(context.Background(), "Run tool?", "command: ls")
	if !errors.Is(err, errors.ErrNoUI) {
		t.Errorf("Confirm() error = %v, want ErrNoUI", err)
	}
	if ok {
		t.Error("Confirm() = true, want false")
	}
}

func TestTerminalSurface_Notify(t *testing.T) {
	surface, buf := newDetachedSurface()

	surface.Notify(LevelWarn, "approval mode set to approve-all")

	got := buf.String()
	if got != "! approval mode set to approve-all\n" {
		t.Errorf("Notify() wrote %q", got)
	}
}

func TestTerminalSurface_Notify_UnknownLevel(t *testing.T) {
	surface, buf := newDetachedSurface()

	surface.Notify(Level("bogus"), "hello")

	if !strings.HasPrefix(buf.String(), "•") {
		t.Errorf("Notify() with unknown level wrote %q, want info glyph prefix", buf.String())
	}
}

func TestTerminalSurface_StatusFragments(t *testing.T) {
	surface, _ := newDetachedSurface()

	if got := surface.StatusLine(); got != "" {
		t.Errorf("StatusLine() on empty surface = %q, want empty", got)
	}

	surface.SetStatus("uptime", "00:01:02")
	surface.SetStatus("approval", "mode: allow-all")

	want := "approval: mode: allow-all │ uptime: 00:01:02"
	if got := surface.StatusLine(); got != want {
		t.Errorf("StatusLine() = %q, want %q (sorted by key)", got, want)
	}

	surface.SetStatus("uptime", "00:01:03")
	if got := surface.StatusLine(); !strings.Contains(got, "00:01:03") {
		t.Errorf("StatusLine() = %q, want refreshed uptime", got)
	}

	surface.ClearStatus("uptime")
	if got := surface.StatusLine(); got != "approval: mode: allow-all" {
		t.Errorf("StatusLine() after ClearStatus = %q", got)
	}
}

func TestTerminalSurface_Stylize_Detached(t *testing.T) {
	surface, _ := newDetachedSurface()

	if got := surface.Stylize(StyleError, "blocked"); got != "blocked" {
		t.Errorf("Stylize() detached = %q, want unstyled text", got)
	}
	if got := surface.Stylize(StyleName("bogus"), "text"); got != "text" {
		t.Errorf("Stylize() unknown style = %q, want unchanged text", got)
	}
}
