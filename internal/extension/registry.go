package extension

import (
	"context"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/history"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
)

// Handler is a function that handles a dispatched event. Returning a
// nil Instruction (or Continue()) lets the host proceed; returning a
// blocking Instruction vetoes the triggering operation. Errors are
// logged by the registry and do not stop dispatch.
type Handler func(ctx context.Context, ev Event) (*Instruction, error)

// CommandFunc is the body of a user-invocable command.
type CommandFunc func(ctx context.Context, args []string) error

// Command is a named, user-invocable command registered by an extension.
type Command struct {
	Name        string
	Description string
	Run         CommandFunc
}

// Extension is a pluggable unit of host behavior. Attach is called once
// when the extension is added to a Registry; it registers the
// extension's event handlers and commands through the provided API.
type Extension interface {
	// Name returns a stable identifier used in logs and error context.
	Name() string

	// Attach wires the extension into the host.
	Attach(api *API) error
}

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType string
	extension string
	handler   Handler
}

// Registry owns event subscriptions and commands for a set of attached
// extensions, and dispatches host events to them.
type Registry struct {
	mu            sync.RWMutex
	subscriptions map[string][]subscription // eventType -> subscriptions
	commands      map[string]Command
	extensions    []string
	nextID        atomic.Uint64

	// dispatchMu serializes Dispatch and RunCommand so handlers never
	// run concurrently with each other, matching the host's cooperative
	// one-event-at-a-time model.
	dispatchMu sync.Mutex

	hist    *history.Manager
	surface ui.Surface
	log     *logging.Logger
}

// NewRegistry creates a Registry whose extensions consume the given
// history manager and UI surface.
func NewRegistry(hist *history.Manager, surface ui.Surface, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Registry{
		subscriptions: make(map[string][]subscription),
		commands:      make(map[string]Command),
		hist:          hist,
		surface:       surface,
		log:           log,
	}
}

// Use attaches an extension. Handlers and commands it registers keep
// the registration order for dispatch.
func (r *Registry) Use(ext Extension) error {
	api := &API{
		extension: ext.Name(),
		registry:  r,
	}

	if err := ext.Attach(api); err != nil {
		return errors.NewExtensionError("attach failed", err).WithExtension(ext.Name())
	}

	r.mu.Lock()
	r.extensions = append(r.extensions, ext.Name())
	r.mu.Unlock()

	r.log.Debug("extension attached", "extension", ext.Name())
	return nil
}

// subscribe registers a handler for a specific event type and returns a
// subscription ID usable with Unsubscribe.
func (r *Registry) subscribe(eventType, extName string, handler Handler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.generateID()
	sub := subscription{
		id:        id,
		eventType: eventType,
		extension: extName,
		handler:   handler,
	}

	r.subscriptions[eventType] = append(r.subscriptions[eventType], sub)
	return id
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (r *Registry) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, subs := range r.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				r.subscriptions[eventType] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Dispatch delivers an event to all registered handlers. Handlers
// subscribed to the concrete event type run first, then wildcard
// handlers, each group in registration order. Dispatch is serialized:
// only one event is in flight at a time.
//
// The first Instruction with Block set short-circuits the remaining
// handlers and is returned. Non-blocking instructions are informational
// and are not aggregated; when no handler blocks, Dispatch returns nil.
// Handler errors and panics are logged and treated as no instruction.
func (r *Registry) Dispatch(ctx context.Context, ev Event) (*Instruction, error) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	r.mu.RLock()
	eventType := ev.EventType()

	specificSubs := make([]subscription, len(r.subscriptions[eventType]))
	copy(specificSubs, r.subscriptions[eventType])

	wildcardSubs := make([]subscription, len(r.subscriptions["*"]))
	copy(wildcardSubs, r.subscriptions["*"])

	r.mu.RUnlock()

	for _, sub := range append(specificSubs, wildcardSubs...) {
		instr := r.safeCall(ctx, sub, ev)
		if instr != nil && instr.Block {
			r.log.Info("event blocked",
				"event", eventType,
				"extension", sub.extension,
				"reason", instr.Reason)
			return instr, nil
		}
	}

	return nil, nil
}

// safeCall invokes a handler and recovers from any panics. Panics are
// logged with stack traces so one misbehaving extension cannot take
// down event delivery for the rest.
func (r *Registry) safeCall(ctx context.Context, sub subscription, ev Event) *Instruction {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event handler panicked",
				"event", ev.EventType(),
				"extension", sub.extension,
				"panic", rec,
				"stack", string(debug.Stack()))
		}
	}()

	instr, err := sub.handler(ctx, ev)
	if err != nil {
		r.log.Error("event handler failed",
			"event", ev.EventType(),
			"extension", sub.extension,
			"error", err)
		return nil
	}
	return instr
}

// registerCommand adds a command to the registry's command table.
func (r *Registry) registerCommand(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return errors.NewAlreadyExistsError("command", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// RunCommand invokes a registered command by name. Command execution is
// serialized with event dispatch.
func (r *Registry) RunCommand(ctx context.Context, name string, args []string) error {
	r.mu.RLock()
	cmd, ok := r.commands[name]
	r.mu.RUnlock()

	if !ok {
		return errors.NewExtensionError("no such command", errors.ErrUnknownCommand).
			WithCommand(name)
	}

	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()

	return cmd.Run(ctx, args)
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Extensions returns the names of attached extensions in attach order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.extensions))
	copy(names, r.extensions)
	return names
}

// SubscriptionCount returns the total number of active subscriptions.
func (r *Registry) SubscriptionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, subs := range r.subscriptions {
		count += len(subs)
	}
	return count
}

// Clear removes all subscriptions, commands, and extension records.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscriptions = make(map[string][]subscription)
	r.commands = make(map[string]Command)
	r.extensions = nil
}

// generateID creates a unique subscription ID. The counter never
// wraps in practice, so IDs are unique for the life of the registry.
func (r *Registry) generateID() string {
	return strconv.FormatUint(r.nextID.Add(1), 10)
}

// API is the per-extension facade handed to Attach. It scopes handler
// and command registration to the owning extension and exposes the host
// collaborators extensions are allowed to use.
type API struct {
	extension string
	registry  *Registry
}

// On registers a handler for a specific event type.
// Returns a subscription ID that can be used with Unsubscribe.
func (a *API) On(eventType string, handler Handler) string {
	return a.registry.subscribe(eventType, a.extension, handler)
}

// OnAll registers a handler for every event type.
// Returns a subscription ID that can be used with Unsubscribe.
func (a *API) OnAll(handler Handler) string {
	return a.registry.subscribe("*", a.extension, handler)
}

// Unsubscribe removes a subscription created by this API.
func (a *API) Unsubscribe(id string) bool {
	return a.registry.Unsubscribe(id)
}

// RegisterCommand registers a named command with a description and a
// handler. The host surfaces it as an interactive command.
func (a *API) RegisterCommand(name, description string, fn CommandFunc) error {
	return a.registry.registerCommand(Command{
		Name:        name,
		Description: description,
		Run:         fn,
	})
}

// History returns the session-history manager.
func (a *API) History() *history.Manager {
	return a.registry.hist
}

// UI returns the UI surface.
func (a *API) UI() ui.Surface {
	return a.registry.surface
}

// Log returns a logger scoped to the extension.
func (a *API) Log() *logging.Logger {
	return a.registry.log.WithExtension(a.extension)
}
