package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gatehouse-sh/gatehouse/internal/errors"
	"github.com/gatehouse-sh/gatehouse/internal/logging"
)

// lockFileName is the name of the lock file within a history directory.
const lockFileName = "gatehouse.lock"

// Lock represents an acquired history directory lock. The store's
// append path assumes a single writing process per directory, so
// long-running hosts take a Lock before opening sessions for writing.
type Lock struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`

	path string
	log  *logging.Logger
}

// AcquireLock takes an exclusive lock on the history directory.
// A lock file left behind by a dead process is cleaned up and
// reacquired; a lock held by a live process yields ErrStoreLocked.
func AcquireLock(dir string, log *logging.Logger) (*Lock, error) {
	if log == nil {
		log = logging.NopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	path := filepath.Join(dir, lockFileName)
	if existing, err := readLock(path); err == nil {
		if isProcessAlive(existing.PID) {
			log.Error("failed to acquire history lock", "pid", existing.PID, "hostname", existing.Hostname)
			return nil, fmt.Errorf("%w: PID %d on %s", errors.ErrStoreLocked, existing.PID, existing.Hostname)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", err)
		}
		log.Warn("stale history lock cleaned", "old_pid", existing.PID)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	lock := &Lock{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now().UTC(),
		path:      path,
		log:       log,
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	// O_EXCL fails if the file appeared between the check above and
	// here, so two racing processes cannot both win.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			if existing, readErr := readLock(path); readErr == nil {
				return nil, fmt.Errorf("%w: PID %d on %s", errors.ErrStoreLocked, existing.PID, existing.Hostname)
			}
			return nil, errors.ErrStoreLocked
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	log.Info("history lock acquired", "pid", lock.PID)
	return lock, nil
}

// Release removes the lock file. Safe to call multiple times, and a
// no-op when the file is now owned by a different process.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}

	existing, err := readLock(l.path)
	if err != nil {
		return nil
	}
	if existing.PID != l.PID {
		return nil
	}

	if err := os.Remove(l.path); err != nil {
		return err
	}
	if l.log != nil {
		l.log.Info("history lock released", "pid", l.PID)
	}
	return nil
}

// Holder reports the live lock on a history directory, if any. Locks
// whose owning process has exited are reported as absent.
func Holder(dir string) (*Lock, bool) {
	lock, err := readLock(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, false
	}
	if !isProcessAlive(lock.PID) {
		return nil, false
	}
	return lock, true
}

func readLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("failed to parse lock file: %w", err)
	}
	lock.path = path
	return &lock, nil
}

// isProcessAlive reports whether a process with the given PID exists.
// Signal 0 checks existence without affecting the process.
func isProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
