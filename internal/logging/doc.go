// Package logging provides structured logging for gatehouse.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// attribute propagation for debugging and post-hoc analysis. Logs carry
// the session and extension context they were emitted under, so a
// single log file remains filterable after the fact.
//
// # Features
//
//   - JSON or plain-text structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Attribute propagation (session ID, extension name, command)
//   - Size-based log rotation with a configurable backup count
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger]
// type uses slog internally, which is designed for concurrent access.
// The [RotatingWriter] type uses a mutex to protect file operations
// during rotation. Child loggers created via With* methods share the
// underlying writer safely.
//
// # Basic Usage
//
// Create a logger for a data directory:
//
//	logger, err := logging.New("/path/to/data", "INFO", "json")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("session opened", "session_id", id)
//	logger.Warn("branch scan skipped entry", "entry_id", eid)
//
// # Attribute Propagation
//
// Create child loggers with persistent context attributes:
//
//	sessionLogger := logger.WithSession("b2f1...")
//	gateLogger := sessionLogger.WithExtension("approval-gate")
//
//	// All logs from gateLogger include session_id and extension
//	gateLogger.Info("policy restored", "mode", "approve-all")
//
// # Log Rotation
//
// For long-running hosts, use rotation to bound log growth:
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10, // Rotate past 10MB
//	    MaxBackups: 3,  // Keep 3 rotated files
//	}
//	logger, err := logging.NewWithRotation(dir, "INFO", "json", config)
//
// Rotated files are named gatehouse.log.1, gatehouse.log.2, etc., where
// .1 is the most recent backup.
//
// # Testing
//
// Use [NopLogger] to discard all output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // No files are created
//	}
package logging
