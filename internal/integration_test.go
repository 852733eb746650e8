// Package internal contains integration tests that verify the packages
// compose correctly: the host pairing history mutations with event
// dispatch, and the bundled extensions observing both through the
// registry.
package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gatehouse-sh/gatehouse/internal/approval"
	"github.com/gatehouse-sh/gatehouse/internal/extension"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/host"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/testutil"
	"github.com/gatehouse-sh/gatehouse/internal/uptime"
)

// buildHost wires a complete host over dir: store, manager, fake
// surface, registry, and both bundled extensions. The uptime interval
// is long enough that the ticker never fires during a test.
func buildHost(t *testing.T, dir string, attached bool) (*host.Host, *testutil.Surface) {
	t.Helper()

	log := logging.NopLogger()
	store, err := history.NewStore(dir, log)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	mgr := history.NewManager(store, log)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	surface := testutil.NewSurface(attached)
	reg := extension.NewRegistry(mgr, surface, log)
	if err := reg.Use(approval.New()); err != nil {
		t.Fatalf("Use(approval) error = %v", err)
	}
	if err := reg.Use(uptime.NewWithInterval(time.Hour)); err != nil {
		t.Fatalf("Use(uptime) error = %v", err)
	}

	return host.New(mgr, reg, surface, log), surface
}

func TestPlaygroundSessionFlow(t *testing.T) {
	ctx := context.Background()
	h, surface := buildHost(t, t.TempDir(), true)
	surface.QueueConfirm(true)

	sess, err := h.StartSession(ctx, "demo")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, ok := surface.StatusFragment("uptime"); !ok {
		t.Error("expected an uptime status fragment after session start")
	}

	if instr, err := h.HandleInput(ctx, "hello"); err != nil || instr != nil {
		t.Fatalf("HandleInput() = %v, %v, want permitted", instr, err)
	}

	// The first input resolves the approval policy: one prompt, and the
	// policy record lands ahead of the user message.
	if len(surface.Confirms) != 1 {
		t.Fatalf("len(Confirms) = %d, want 1", len(surface.Confirms))
	}
	if surface.Confirms[0].Title != "Allow all tools?" {
		t.Errorf("Confirms[0].Title = %q, want %q", surface.Confirms[0].Title, "Allow all tools?")
	}

	if instr, err := h.HandleToolCall(ctx, "bash", map[string]any{"command": "ls"}); err != nil || instr != nil {
		t.Fatalf("HandleToolCall() = %v, %v, want permitted", instr, err)
	}
	if len(surface.Confirms) != 1 {
		t.Errorf("len(Confirms) = %d after tool call, want still 1 under allow-all", len(surface.Confirms))
	}

	if err := h.RunCommand(ctx, "uptime", nil); err != nil {
		t.Fatalf("RunCommand(uptime) error = %v", err)
	}
	if note, ok := surface.LastNotification(); !ok || !strings.HasPrefix(note.Msg, "uptime ") {
		t.Errorf("LastNotification() = %+v, want an uptime report", note)
	}

	branch := sess.Branch()
	if len(branch) != 3 {
		t.Fatalf("len(Branch()) = %d, want 3", len(branch))
	}
	if !branch[0].IsCustom("approval-mode") {
		t.Errorf("branch[0] = %+v, want the policy record first", branch[0])
	}
	if branch[1].Role != history.RoleUser || branch[1].Text != "hello" {
		t.Errorf("branch[1] = %+v, want the user input", branch[1])
	}
	if branch[2].Role != history.RoleTool || !strings.HasPrefix(branch[2].Text, "bash ") {
		t.Errorf("branch[2] = %+v, want the recorded tool call", branch[2])
	}

	if err := h.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, ok := surface.StatusFragment("uptime"); ok {
		t.Error("uptime status fragment should be cleared on shutdown")
	}
}

func TestApprovalSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	h1, s1 := buildHost(t, dir, true)
	s1.QueueConfirm(false)
	if _, err := h1.StartSession(ctx, "demo"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := h1.HandleInput(ctx, "set things up"); err != nil {
		t.Fatalf("HandleInput() error = %v", err)
	}
	if err := h1.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// Same store, fresh process: the recorded policy is restored, so
	// the only prompt is the per-call confirmation.
	h2, s2 := buildHost(t, dir, true)
	s2.QueueConfirm(false)
	if _, err := h2.StartSession(ctx, "demo"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	instr, err := h2.HandleToolCall(ctx, "bash", map[string]any{"command": "make build"})
	if err != nil {
		t.Fatalf("HandleToolCall() error = %v", err)
	}
	if instr == nil || !instr.Block {
		t.Fatal("declined tool call should be blocked")
	}
	if !strings.Contains(instr.Reason, "bash") {
		t.Errorf("Reason = %q, want it to name the tool", instr.Reason)
	}
	if len(s2.Confirms) != 1 {
		t.Fatalf("len(Confirms) = %d, want only the per-call prompt", len(s2.Confirms))
	}
	if s2.Confirms[0].Title != "Run tool bash?" {
		t.Errorf("Confirms[0].Title = %q, want %q", s2.Confirms[0].Title, "Run tool bash?")
	}
	if s2.Confirms[0].Body != "command: make build" {
		t.Errorf("Confirms[0].Body = %q, want the summarized command", s2.Confirms[0].Body)
	}
}

func TestForkInheritsPolicy(t *testing.T) {
	ctx := context.Background()
	h, surface := buildHost(t, t.TempDir(), true)
	surface.QueueConfirm(true)

	if _, err := h.StartSession(ctx, "main"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := h.HandleInput(ctx, "first step"); err != nil {
		t.Fatalf("HandleInput() error = %v", err)
	}

	fork, err := h.Fork(ctx, "")
	if err != nil {
		t.Fatalf("Fork() error = %v", err)
	}
	if fork.Name != "main-fork" {
		t.Errorf("fork.Name = %q, want %q", fork.Name, "main-fork")
	}

	// The fork's branch carries the policy record, so the restored
	// policy permits the call without prompting again.
	if instr, err := h.HandleToolCall(ctx, "read", map[string]any{"path": "notes.txt"}); err != nil || instr != nil {
		t.Fatalf("HandleToolCall() = %v, %v, want permitted", instr, err)
	}
	if len(surface.Confirms) != 1 {
		t.Errorf("len(Confirms) = %d, want 1 (no re-prompt after fork)", len(surface.Confirms))
	}
}

func TestDetachedHostBlocksTools(t *testing.T) {
	ctx := context.Background()
	h, surface := buildHost(t, t.TempDir(), false)

	if _, err := h.StartSession(ctx, "headless"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := h.HandleInput(ctx, "automated input"); err != nil {
		t.Fatalf("HandleInput() error = %v", err)
	}

	instr, err := h.HandleToolCall(ctx, "write", map[string]any{"path": "out.txt"})
	if err != nil {
		t.Fatalf("HandleToolCall() error = %v", err)
	}
	if instr == nil || !instr.Block {
		t.Fatal("tool call without a display should be blocked")
	}
	if instr.Reason != approval.ReasonConfirmationUnavailable {
		t.Errorf("Reason = %q, want %q", instr.Reason, approval.ReasonConfirmationUnavailable)
	}
	if len(surface.Confirms) != 0 {
		t.Errorf("len(Confirms) = %d, want 0 without a display", len(surface.Confirms))
	}
}
