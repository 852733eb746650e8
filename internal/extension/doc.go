// Package extension provides the host extension API for gatehouse:
// event types, dispatch, and user-invocable commands.
//
// An extension is a pluggable unit of host behavior. It registers event
// handlers and commands once, through the [API] handed to its Attach
// method, and from then on only reacts to what the host dispatches.
// Extensions never call each other; all coordination happens through
// the host's events and the shared session history.
//
// # Main Types
//
//   - [Event]: Interface all events implement, providing EventType() and Timestamp()
//   - [Registry]: Ordered synchronous event dispatcher and command table
//   - [Handler]: Function type for event handlers, optionally returning an [Instruction]
//   - [Instruction]: A handler's verdict; Block vetoes the triggering operation
//   - [Extension]: The unit of registration, attached via [Registry.Use]
//   - [API]: Per-extension facade for registration and host collaborators
//
// # Event Vocabulary
//
// Session lifecycle:
//   - [SessionStartEvent]: a session became active (EventSessionStart)
//   - [SessionSwitchEvent]: the active session changed (EventSessionSwitch)
//   - [SessionShutdownEvent]: the active session is torn down (EventSessionShutdown)
//   - [SessionTreeEvent]: the active branch moved within the tree (EventSessionTree)
//   - [SessionForkEvent]: a session was forked from an entry (EventSessionFork)
//
// Interaction:
//   - [InputEvent]: a line of user input arrived (EventInput)
//   - [ToolCallEvent]: a tool is about to execute (EventToolCall)
//
// # Dispatch Semantics
//
// Dispatch is synchronous and serialized: one event is in flight at a
// time, and handlers run in registration order (concrete subscriptions
// first, then wildcard ones). The first handler returning a blocking
// [Instruction] short-circuits the rest; its instruction is the
// dispatch result. Handler errors and panics are logged and treated as
// "no instruction", so one misbehaving extension cannot block delivery
// to the others.
//
// # Thread Safety
//
// [Registry] is safe for concurrent use. Registration may happen from
// any goroutine; dispatch and command execution share one mutex, so a
// handler may block on user interaction without racing other handlers.
//
// # Basic Usage
//
//	reg := extension.NewRegistry(hist, surface, logger)
//
//	if err := reg.Use(approval.New()); err != nil {
//	    return err
//	}
//
//	instr, err := reg.Dispatch(ctx, extension.NewToolCallEvent(sid, "bash", input))
//	if err != nil {
//	    return err
//	}
//	if instr != nil && instr.Block {
//	    fmt.Println("blocked:", instr.Reason)
//	}
package extension
