package uptime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatehouse-sh/gatehouse/internal/extension"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
	"github.com/gatehouse-sh/gatehouse/internal/ui"
)

const (
	// statusKey is the status fragment the reporter owns.
	statusKey = "uptime"

	// commandName is the registered one-shot report command.
	commandName = "uptime"

	// defaultInterval is the status refresh period.
	defaultInterval = time.Second
)

// Reporter shows elapsed process runtime in the status bar.
//
// The start timestamp is captured once when the reporter is created
// and never reset: switching sessions restarts the ticking display,
// but elapsed time keeps counting from process start.
type Reporter struct {
	startedAt time.Time
	interval  time.Duration

	mu      sync.Mutex
	running bool
	ticker  *time.Ticker
	done    chan struct{}

	api *extension.API
	log *logging.Logger
}

// New creates a Reporter whose clock starts now.
func New() *Reporter {
	return NewWithInterval(defaultInterval)
}

// NewWithInterval creates a Reporter with a custom refresh period.
// Non-positive intervals fall back to the default.
func NewWithInterval(interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reporter{startedAt: time.Now(), interval: interval}
}

// Name implements extension.Extension.
func (r *Reporter) Name() string {
	return "uptime"
}

// Attach implements extension.Extension.
func (r *Reporter) Attach(api *extension.API) error {
	r.api = api
	r.log = api.Log()

	api.On(extension.EventSessionStart, r.handleStart)
	api.On(extension.EventSessionSwitch, r.handleStart)
	api.On(extension.EventSessionShutdown, r.handleShutdown)

	return api.RegisterCommand(commandName,
		"Show elapsed time since the process started",
		r.runReport)
}

// Elapsed returns the time since process start.
func (r *Reporter) Elapsed() time.Duration {
	return time.Since(r.startedAt)
}

// handleStart restarts the ticking display. The previous ticker is
// always stopped first, so session switches never leave a second
// refresh loop behind.
func (r *Reporter) handleStart(_ context.Context, _ extension.Event) (*extension.Instruction, error) {
	r.stopTicker()
	r.refresh()
	r.startTicker()
	return extension.Continue(), nil
}

// handleShutdown stops the ticker and removes the fragment.
func (r *Reporter) handleShutdown(_ context.Context, _ extension.Event) (*extension.Instruction, error) {
	r.stopTicker()
	r.api.UI().ClearStatus(statusKey)
	return extension.Continue(), nil
}

// runReport is the uptime command: a one-shot notification plus an
// immediate fragment refresh, independent of tick cadence.
func (r *Reporter) runReport(_ context.Context, _ []string) error {
	r.api.UI().Notify(ui.LevelInfo, "uptime "+formatElapsed(r.Elapsed()))
	r.refresh()
	return nil
}

// refresh renders the current elapsed time into the status fragment.
func (r *Reporter) refresh() {
	surface := r.api.UI()
	surface.SetStatus(statusKey, surface.Stylize(ui.StyleDim, formatElapsed(r.Elapsed())))
}

func (r *Reporter) startTicker() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = true
	r.ticker = time.NewTicker(r.interval)
	r.done = make(chan struct{})
	go r.refreshLoop(r.ticker, r.done)
}

func (r *Reporter) stopTicker() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.running = false
	r.ticker.Stop()
	close(r.done)
}

// refreshLoop re-renders the fragment on every tick until done is
// closed. The ticker and channel are captured as arguments so a
// re-armed reporter never races its previous loop.
func (r *Reporter) refreshLoop(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

// formatElapsed renders a duration as zero-padded HH:MM:SS. Hours grow
// past two digits rather than wrapping. Negative durations, as can
// surface after wall-clock adjustments, clamp to zero.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
