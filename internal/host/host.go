package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/extension"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
)

// Host ties the session manager, the extension registry, and the UI
// surface together. Every session mutation goes through a Host method
// so the matching lifecycle event is dispatched exactly once; code
// that mutates the manager directly bypasses the extension contract.
type Host struct {
	mgr     *history.Manager
	reg     *extension.Registry
	surface ui.Surface
	log     *logging.Logger
}

// New creates a Host over the given collaborators.
func New(mgr *history.Manager, reg *extension.Registry, surface ui.Surface, log *logging.Logger) *Host {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Host{mgr: mgr, reg: reg, surface: surface, log: log}
}

// History returns the session manager.
func (h *Host) History() *history.Manager {
	return h.mgr
}

// Registry returns the extension registry.
func (h *Host) Registry() *extension.Registry {
	return h.reg
}

// Surface returns the UI surface.
func (h *Host) Surface() ui.Surface {
	return h.surface
}

// StartSession activates the session with the given name, creating it
// if needed, and dispatches the session start event.
func (h *Host) StartSession(ctx context.Context, name string) (*history.Session, error) {
	sess, ok := h.mgr.ByName(name)
	if ok {
		if _, err := h.mgr.Switch(sess.ID); err != nil {
			return nil, err
		}
	} else {
		var err error
		sess, err = h.mgr.Create(name)
		if err != nil {
			return nil, err
		}
	}

	h.log.Info("session started", "session_id", sess.ID, "name", sess.Name)
	if _, err := h.reg.Dispatch(ctx, extension.NewSessionStartEvent(sess.ID)); err != nil {
		return nil, err
	}
	return sess, nil
}

// SwitchSession activates another session by ID and dispatches the
// session switch event carrying the previous active ID.
func (h *Host) SwitchSession(ctx context.Context, id string) (*history.Session, error) {
	previous := h.mgr.ActiveID()
	if previous == id {
		return h.mgr.Open(id)
	}

	sess, err := h.mgr.Switch(id)
	if err != nil {
		return nil, err
	}

	h.log.Info("session switched", "session_id", id, "previous_id", previous)
	if _, err := h.reg.Dispatch(ctx, extension.NewSessionSwitchEvent(id, previous)); err != nil {
		return nil, err
	}
	return sess, nil
}

// Fork copies the active session's branch up to entryID into a new
// session, activates it, and dispatches the session fork event. An
// empty entryID forks at the active entry.
func (h *Host) Fork(ctx context.Context, entryID string) (*history.Session, error) {
	src := h.mgr.ActiveID()
	fork, err := h.mgr.Fork(entryID)
	if err != nil {
		return nil, err
	}

	forkedAt := fork.ActiveID()
	h.log.Info("session forked",
		"session_id", fork.ID, "forked_from", src, "entry_id", forkedAt)
	if _, err := h.reg.Dispatch(ctx, extension.NewSessionForkEvent(fork.ID, src, forkedAt)); err != nil {
		return nil, err
	}
	return fork, nil
}

// NavigateTo moves the active session's pointer to an existing entry
// and dispatches the session tree event.
func (h *Host) NavigateTo(ctx context.Context, entryID string) error {
	sess, err := h.mgr.Active()
	if err != nil {
		return err
	}
	if err := sess.NavigateTo(entryID); err != nil {
		return err
	}

	if _, err := h.reg.Dispatch(ctx, extension.NewSessionTreeEvent(sess.ID, entryID)); err != nil {
		return err
	}
	return nil
}

// HandleInput dispatches the input event and, unless a handler blocked
// it, records the text as a user message on the active session. The
// blocking instruction, if any, is returned for the caller to surface.
func (h *Host) HandleInput(ctx context.Context, text string) (*extension.Instruction, error) {
	sess, err := h.mgr.Active()
	if err != nil {
		return nil, err
	}

	instr, err := h.reg.Dispatch(ctx, extension.NewInputEvent(sess.ID, text))
	if err != nil {
		return nil, err
	}
	if instr != nil && instr.Block {
		return instr, nil
	}

	if _, err := sess.AppendMessage(history.RoleUser, text); err != nil {
		return nil, err
	}
	return nil, nil
}

// HandleToolCall dispatches the tool call event. A permitted call is
// recorded as a tool message on the active session; a blocked one is
// not, and the blocking instruction is returned for the caller to
// surface.
func (h *Host) HandleToolCall(ctx context.Context, tool string, input map[string]any) (*extension.Instruction, error) {
	sess, err := h.mgr.Active()
	if err != nil {
		return nil, err
	}

	instr, err := h.reg.Dispatch(ctx, extension.NewToolCallEvent(sess.ID, tool, input))
	if err != nil {
		return nil, err
	}
	if instr != nil && instr.Block {
		h.log.Info("tool call blocked", "session_id", sess.ID, "tool", tool, "reason", instr.Reason)
		return instr, nil
	}

	if _, err := sess.AppendMessage(history.RoleTool, describeToolCall(tool, input)); err != nil {
		return nil, err
	}
	return nil, nil
}

// Shutdown dispatches the session shutdown event for the active
// session and compacts its file. A host with no active session shuts
// down silently.
func (h *Host) Shutdown(ctx context.Context) error {
	sess, err := h.mgr.Active()
	if err != nil {
		if errors.Is(err, errors.ErrNoActiveSession) {
			return nil
		}
		return err
	}

	if _, err := h.reg.Dispatch(ctx, extension.NewSessionShutdownEvent(sess.ID)); err != nil {
		return err
	}

	h.log.Info("session shut down", "session_id", sess.ID)
	return h.mgr.Compact(sess.ID)
}

// RunCommand executes a registered extension command.
func (h *Host) RunCommand(ctx context.Context, name string, args []string) error {
	return h.reg.RunCommand(ctx, name, args)
}

// describeToolCall renders a recorded tool call as one line.
func describeToolCall(tool string, input map[string]any) string {
	if len(input) == 0 {
		return tool
	}
	data, err := json.Marshal(input)
	if err != nil {
		return tool
	}
	return fmt.Sprintf("%s %s", tool, data)
}
