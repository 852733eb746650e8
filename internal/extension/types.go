package extension

import "time"

// Event type identifiers dispatched by the host.
const (
	// EventSessionStart is dispatched when a session becomes active at startup
	// or is created fresh.
	EventSessionStart = "session_start"
	// EventSessionSwitch is dispatched when the active session changes.
	EventSessionSwitch = "session_switch"
	// EventSessionShutdown is dispatched when the active session is torn down.
	EventSessionShutdown = "session_shutdown"
	// EventSessionTree is dispatched after navigation to another point in the
	// session's history tree.
	EventSessionTree = "session_tree"
	// EventSessionFork is dispatched when a session is forked from an entry.
	EventSessionFork = "session_fork"
	// EventInput is dispatched for each line of user input.
	EventInput = "input"
	// EventToolCall is dispatched before a tool executes. Handlers may veto
	// the call by returning a blocking Instruction.
	EventToolCall = "tool_call"
)

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns the string identifier for this event type,
	// one of the Event* constants.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// SessionStartEvent is dispatched when a session becomes active.
type SessionStartEvent struct {
	baseEvent
	SessionID string // Identifier of the session that started
}

// NewSessionStartEvent creates a SessionStartEvent.
func NewSessionStartEvent(sessionID string) SessionStartEvent {
	return SessionStartEvent{
		baseEvent: newBaseEvent(EventSessionStart),
		SessionID: sessionID,
	}
}

// SessionSwitchEvent is dispatched when the active session changes.
type SessionSwitchEvent struct {
	baseEvent
	SessionID  string // Identifier of the now-active session
	PreviousID string // Identifier of the previously active session, if any
}

// NewSessionSwitchEvent creates a SessionSwitchEvent.
func NewSessionSwitchEvent(sessionID, previousID string) SessionSwitchEvent {
	return SessionSwitchEvent{
		baseEvent:  newBaseEvent(EventSessionSwitch),
		SessionID:  sessionID,
		PreviousID: previousID,
	}
}

// SessionShutdownEvent is dispatched when the active session is torn down.
type SessionShutdownEvent struct {
	baseEvent
	SessionID string // Identifier of the session shutting down
}

// NewSessionShutdownEvent creates a SessionShutdownEvent.
func NewSessionShutdownEvent(sessionID string) SessionShutdownEvent {
	return SessionShutdownEvent{
		baseEvent: newBaseEvent(EventSessionShutdown),
		SessionID: sessionID,
	}
}

// SessionTreeEvent is dispatched after navigation to another point in the
// session's history tree. The active branch may have changed entirely.
type SessionTreeEvent struct {
	baseEvent
	SessionID string // Session whose active branch changed
	EntryID   string // Entry that is now the active leaf
}

// NewSessionTreeEvent creates a SessionTreeEvent.
func NewSessionTreeEvent(sessionID, entryID string) SessionTreeEvent {
	return SessionTreeEvent{
		baseEvent: newBaseEvent(EventSessionTree),
		SessionID: sessionID,
		EntryID:   entryID,
	}
}

// SessionForkEvent is dispatched when a session is forked from an entry of
// an existing session. The fork becomes the active session.
type SessionForkEvent struct {
	baseEvent
	SessionID  string // Identifier of the new fork
	ForkedFrom string // Identifier of the source session
	EntryID    string // Entry the fork branched from
}

// NewSessionForkEvent creates a SessionForkEvent.
func NewSessionForkEvent(sessionID, forkedFrom, entryID string) SessionForkEvent {
	return SessionForkEvent{
		baseEvent:  newBaseEvent(EventSessionFork),
		SessionID:  sessionID,
		ForkedFrom: forkedFrom,
		EntryID:    entryID,
	}
}

// -----------------------------------------------------------------------------
// Interaction Events
// -----------------------------------------------------------------------------

// InputEvent is dispatched for each line of user input before the host
// processes it.
type InputEvent struct {
	baseEvent
	SessionID string // Session receiving the input
	Text      string // Raw input text
}

// NewInputEvent creates an InputEvent.
func NewInputEvent(sessionID, text string) InputEvent {
	return InputEvent{
		baseEvent: newBaseEvent(EventInput),
		SessionID: sessionID,
		Text:      text,
	}
}

// ToolCallEvent is dispatched before a tool executes. A handler returning
// an Instruction with Block set vetoes the execution.
type ToolCallEvent struct {
	baseEvent
	SessionID string         // Session the tool call belongs to
	Tool      string         // Tool name, e.g. "bash"
	Input     map[string]any // Tool input fields
}

// NewToolCallEvent creates a ToolCallEvent.
func NewToolCallEvent(sessionID, tool string, input map[string]any) ToolCallEvent {
	return ToolCallEvent{
		baseEvent: newBaseEvent(EventToolCall),
		SessionID: sessionID,
		Tool:      tool,
		Input:     input,
	}
}
