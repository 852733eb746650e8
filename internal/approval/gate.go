package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gatehouse-sh/gatehouse/internal/extension"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
)

const (
	// policyEntryTag is the custom-entry tag policy changes are filed
	// under in the session history.
	policyEntryTag = "approval-mode"

	// statusKey is the status fragment the gate owns.
	statusKey = "approval"

	// commandName is the registered mode-switch command.
	commandName = "approval-mode"
)

// ReasonConfirmationUnavailable is the reason attached to tool calls
// blocked because confirmation is required but no interactive display
// is attached. It is a fixed string so hosts can tell fail-safe
// denials apart from user declines.
const ReasonConfirmationUnavailable = "tool call requires confirmation, but no interactive display is attached"

// policyRecord is the persisted payload of a policy-change entry.
type policyRecord struct {
	Mode string `json:"mode"`
}

// Gate intercepts tool calls behind a per-session approval policy.
//
// The policy is undefined until first needed: the first input or tool
// call in a session with no prior record resolves it, by prompt when a
// display is attached and by the approve-all fallback when not. Every
// change is appended to the session history as a custom entry, and the
// in-memory value is rebuilt from the active branch whenever the
// branch changes.
type Gate struct {
	mu       sync.Mutex
	policies map[string]Policy // keyed by session ID

	api *extension.API
	log *logging.Logger
}

// New creates an unattached Gate.
func New() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Name implements extension.Extension.
func (g *Gate) Name() string {
	return "approval"
}

// Attach implements extension.Extension.
func (g *Gate) Attach(api *extension.API) error {
	g.api = api
	g.log = api.Log()

	api.On(extension.EventSessionStart, g.handleBranchChange)
	api.On(extension.EventSessionSwitch, g.handleBranchChange)
	api.On(extension.EventSessionTree, g.handleBranchChange)
	api.On(extension.EventSessionFork, g.handleBranchChange)
	api.On(extension.EventSessionShutdown, g.handleShutdown)
	api.On(extension.EventInput, g.handleInput)
	api.On(extension.EventToolCall, g.handleToolCall)

	return api.RegisterCommand(commandName,
		"Switch the tool approval mode; pass allow-all or approve-all to skip the prompt",
		g.runModeSwitch)
}

// Policy returns the session's current policy, if set.
func (g *Gate) Policy(sessionID string) (Policy, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.policies[sessionID]
	return p, ok
}

// handleBranchChange rebuilds the session's policy from its active
// branch. Fires on session start, switch, fork, and tree navigation.
func (g *Gate) handleBranchChange(_ context.Context, ev extension.Event) (*extension.Instruction, error) {
	sessionID := sessionIDOf(ev)
	if sessionID == "" {
		return extension.Continue(), nil
	}
	g.restore(sessionID)
	g.refreshStatus(sessionID)
	return extension.Continue(), nil
}

// restore scans the active branch oldest first and adopts the last
// valid policy record seen. Because the branch is chronological, the
// last record in branch order is the most recent choice. When the
// branch holds no record the session's policy is cleared back to
// unset.
func (g *Gate) restore(sessionID string) {
	sess, err := g.api.History().Open(sessionID)
	if err != nil {
		g.log.Warn("cannot restore approval mode", "session_id", sessionID, "error", err)
		return
	}

	var found Policy
	for _, e := range sess.Branch() {
		if !e.IsCustom(policyEntryTag) {
			continue
		}
		var rec policyRecord
		if err := json.Unmarshal(e.Payload, &rec); err != nil {
			g.log.Warn("skipping malformed approval record",
				"session_id", sessionID, "entry_id", e.ID, "error", err)
			continue
		}
		p := Policy(rec.Mode)
		if !p.IsValid() {
			g.log.Warn("skipping approval record with unknown mode",
				"session_id", sessionID, "entry_id", e.ID, "mode", rec.Mode)
			continue
		}
		found = p
	}

	g.mu.Lock()
	if found != "" {
		g.policies[sessionID] = found
	} else {
		delete(g.policies, sessionID)
	}
	g.mu.Unlock()

	if found != "" {
		g.log.Debug("approval mode restored", "session_id", sessionID, "mode", string(found))
	}
}

func (g *Gate) handleShutdown(_ context.Context, ev extension.Event) (*extension.Instruction, error) {
	sessionID := sessionIDOf(ev)
	if sessionID != "" {
		g.mu.Lock()
		delete(g.policies, sessionID)
		g.mu.Unlock()
	}
	g.api.UI().ClearStatus(statusKey)
	return extension.Continue(), nil
}

// handleInput resolves the policy lazily so the user is asked at the
// first sign of activity rather than at an arbitrary later tool call.
func (g *Gate) handleInput(ctx context.Context, ev extension.Event) (*extension.Instruction, error) {
	in, ok := ev.(extension.InputEvent)
	if !ok {
		return extension.Continue(), nil
	}
	if _, err := g.resolve(ctx, in.SessionID); err != nil {
		return nil, err
	}
	return extension.Continue(), nil
}

// handleToolCall gates a tool call on the session policy, resolving it
// first if unset. The gate fails closed: a resolution or confirmation
// that errors out blocks the call rather than letting it through
// unapproved.
func (g *Gate) handleToolCall(ctx context.Context, ev extension.Event) (*extension.Instruction, error) {
	call, ok := ev.(extension.ToolCallEvent)
	if !ok {
		return extension.Continue(), nil
	}

	policy, err := g.resolve(ctx, call.SessionID)
	if err != nil {
		g.log.Warn("cannot resolve approval mode, blocking tool call",
			"session_id", call.SessionID, "tool", call.Tool, "error", err)
		return extension.BlockTool(fmt.Sprintf("approval mode could not be resolved for tool call: %s", call.Tool)), nil
	}
	if policy == PolicyAllowAll {
		return nil, nil
	}

	surface := g.api.UI()
	if !surface.Attached() {
		return extension.BlockTool(ReasonConfirmationUnavailable), nil
	}

	approved, err := surface.Confirm(ctx,
		fmt.Sprintf("Run tool %s?", call.Tool),
		summarize(call.Tool, call.Input))
	if err != nil {
		g.log.Warn("confirmation prompt failed, blocking tool call",
			"session_id", call.SessionID, "tool", call.Tool, "error", err)
		return extension.BlockTool(fmt.Sprintf("confirmation failed for tool call: %s", call.Tool)), nil
	}
	if !approved {
		return extension.BlockTool(fmt.Sprintf("user declined tool call: %s", call.Tool)), nil
	}
	return nil, nil
}

// resolve returns the session's policy, establishing it on first use.
// With a display attached the user chooses; without one the stricter
// approve-all is set and persisted so the choice survives restarts.
func (g *Gate) resolve(ctx context.Context, sessionID string) (Policy, error) {
	if p, ok := g.Policy(sessionID); ok {
		g.refreshStatus(sessionID)
		return p, nil
	}

	if !g.api.UI().Attached() {
		if err := g.setPolicy(sessionID, PolicyApproveAll); err != nil {
			return "", err
		}
		return PolicyApproveAll, nil
	}

	p, err := g.prompt(ctx)
	if err != nil {
		return "", err
	}
	if err := g.setPolicy(sessionID, p); err != nil {
		return "", err
	}
	return p, nil
}

// prompt asks the binary policy question. Yes means every tool runs
// unasked; no means each tool call is confirmed individually.
func (g *Gate) prompt(ctx context.Context) (Policy, error) {
	allowAll, err := g.api.UI().Confirm(ctx,
		"Allow all tools?",
		"Yes runs every tool without asking. No confirms each tool call.")
	if err != nil {
		return "", err
	}
	if allowAll {
		return PolicyAllowAll, nil
	}
	return PolicyApproveAll, nil
}

// setPolicy records the policy in memory, appends the change to the
// session history, and refreshes the status fragment.
func (g *Gate) setPolicy(sessionID string, p Policy) error {
	sess, err := g.api.History().Open(sessionID)
	if err != nil {
		return err
	}
	if _, err := sess.AppendCustom(policyEntryTag, policyRecord{Mode: string(p)}); err != nil {
		return err
	}

	g.mu.Lock()
	g.policies[sessionID] = p
	g.mu.Unlock()

	g.log.Info("approval mode set", "session_id", sessionID, "mode", string(p))
	g.refreshStatus(sessionID)
	return nil
}

// refreshStatus renders the session's policy into the status fragment,
// or clears the fragment when the policy is unset.
func (g *Gate) refreshStatus(sessionID string) {
	surface := g.api.UI()
	p, ok := g.Policy(sessionID)
	if !ok {
		surface.ClearStatus(statusKey)
		return
	}

	style := ui.StyleDim
	if p == PolicyApproveAll {
		style = ui.StyleWarning
	}
	surface.SetStatus(statusKey, surface.Stylize(style, "mode: "+string(p)))
}

// runModeSwitch is the approval-mode command: set the mode named by
// the argument when one is given, otherwise re-prompt regardless of
// the current policy, then persist the answer and announce it.
func (g *Gate) runModeSwitch(ctx context.Context, args []string) error {
	surface := g.api.UI()
	if !surface.Attached() {
		surface.Notify(ui.LevelWarn, "approval mode can only be changed from an interactive display")
		return nil
	}

	sess, err := g.api.History().Active()
	if err != nil {
		return err
	}

	var p Policy
	if len(args) > 0 {
		p, err = ParsePolicy(args[0])
		if err != nil {
			surface.Notify(ui.LevelError,
				fmt.Sprintf("unknown approval mode %q (want %s)", args[0], strings.Join(PolicyNames(), " or ")))
			return nil
		}
	} else {
		p, err = g.prompt(ctx)
		if err != nil {
			return err
		}
	}

	if err := g.setPolicy(sess.ID, p); err != nil {
		return err
	}

	surface.Notify(ui.LevelSuccess, "approval mode set to "+string(p))
	return nil
}

// sessionIDOf extracts the session ID from any session lifecycle
// event.
func sessionIDOf(ev extension.Event) string {
	switch e := ev.(type) {
	case extension.SessionStartEvent:
		return e.SessionID
	case extension.SessionSwitchEvent:
		return e.SessionID
	case extension.SessionShutdownEvent:
		return e.SessionID
	case extension.SessionTreeEvent:
		return e.SessionID
	case extension.SessionForkEvent:
		return e.SessionID
	default:
		return ""
	}
}
