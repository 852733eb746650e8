// Package host pairs session operations with their lifecycle events.
//
// The history manager is pure state and the extension registry is pure
// dispatch; [Host] is the seam between them. Each method performs one
// session mutation and announces it with exactly one event, in a fixed
// order: mutate first for lifecycle moves (start, switch, fork,
// navigate), dispatch first for interceptable operations (input, tool
// calls) so a handler's veto can stop the mutation.
//
// # Basic Usage
//
//	h := host.New(mgr, reg, surface, logger)
//
//	if _, err := h.StartSession(ctx, "default"); err != nil {
//	    return err
//	}
//	instr, err := h.HandleToolCall(ctx, "bash", map[string]any{"command": "ls"})
//	if err != nil {
//	    return err
//	}
//	if instr != nil {
//	    surface.Notify(ui.LevelError, instr.Reason)
//	}
package host
