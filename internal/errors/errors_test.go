package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// SessionError Tests
// -----------------------------------------------------------------------------

func TestNewSessionError(t *testing.T) {
	cause := ErrSessionNotFound
	err := NewSessionError("failed to load session", cause)

	if err.message != "failed to load session" {
		t.Errorf("message = %q, want %q", err.message, "failed to load session")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestSessionError_WithMethods(t *testing.T) {
	err := NewSessionError("test", nil).
		WithSessionID("sess-123").
		WithSeverity(SeverityCritical).
		WithRetryable(true)

	if err.SessionID != "sess-123" {
		t.Errorf("SessionID = %q, want %q", err.SessionID, "sess-123")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

func TestSessionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SessionError
		want string
	}{
		{
			name: "basic error",
			err:  NewSessionError("test error", nil),
			want: "session error: test error",
		},
		{
			name: "with cause",
			err:  NewSessionError("test error", ErrSessionNotFound),
			want: "session error: test error: session not found",
		},
		{
			name: "with session ID",
			err:  NewSessionError("test error", nil).WithSessionID("abc123"),
			want: "session error [session=abc123]: test error",
		},
		{
			name: "with session ID and cause",
			err:  NewSessionError("test error", ErrNoActiveSession).WithSessionID("xyz"),
			want: "session error [session=xyz]: test error: no active session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionError_Is(t *testing.T) {
	err := NewSessionError("test", ErrSessionNotFound).WithSessionID("abc")

	if !Is(err, &SessionError{}) {
		t.Error("Is(SessionError{}) = false, want true")
	}
	if !Is(err, ErrSessionNotFound) {
		t.Error("Is(ErrSessionNotFound) = false, want true")
	}
	if Is(err, ErrEntryNotFound) {
		t.Error("Is(ErrEntryNotFound) = true, want false")
	}
}

func TestSessionError_Unwrap(t *testing.T) {
	cause := ErrSessionCorrupted
	err := NewSessionError("test", cause)

	if got := errors.Unwrap(err); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

// -----------------------------------------------------------------------------
// ExtensionError Tests
// -----------------------------------------------------------------------------

func TestNewExtensionError(t *testing.T) {
	cause := New("handler exploded")
	err := NewExtensionError("dispatch failed", cause)

	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
}

func TestExtensionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExtensionError
		want string
	}{
		{
			name: "basic error",
			err:  NewExtensionError("dispatch failed", nil),
			want: "extension error: dispatch failed",
		},
		{
			name: "with extension",
			err:  NewExtensionError("dispatch failed", nil).WithExtension("approval-gate"),
			want: "extension error [extension=approval-gate]: dispatch failed",
		},
		{
			name: "with extension and event",
			err: NewExtensionError("handler failed", nil).
				WithExtension("uptime").
				WithEvent("session_start"),
			want: "extension error [extension=uptime, event=session_start]: handler failed",
		},
		{
			name: "with command and cause",
			err: NewExtensionError("command failed", ErrUnknownCommand).
				WithCommand("uptime"),
			want: "extension error [command=uptime]: command failed: unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtensionError_Is(t *testing.T) {
	err := NewExtensionError("test", ErrUnknownCommand).WithCommand("nope")

	if !Is(err, &ExtensionError{}) {
		t.Error("Is(ExtensionError{}) = false, want true")
	}
	if !Is(err, ErrUnknownCommand) {
		t.Error("Is(ErrUnknownCommand) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("session", "abc123")

	want := "session 'abc123' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}

	withCause := NewNotFoundError("entry", "e1").WithCause(ErrEntryNotFound)
	if !Is(withCause, ErrEntryNotFound) {
		t.Error("Is(ErrEntryNotFound) = false, want true")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("command", "uptime")

	want := "command 'uptime' already exists"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, &AlreadyExistsError{}) {
		t.Error("Is(AlreadyExistsError{}) = false, want true")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "basic",
			err:  NewValidationError("policy cannot be empty"),
			want: "validation error: policy cannot be empty",
		},
		{
			name: "with field",
			err:  NewValidationError("must be a known mode").WithField("policy"),
			want: "validation error [field=policy]: must be a known mode",
		},
		{
			name: "with field and value",
			err: NewValidationError("must be a known mode").
				WithField("policy").
				WithValue("sometimes"),
			want: "validation error [field=policy, value=sometimes]: must be a known mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := NewValidationError("bad input")

	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain error", New("plain"), false},
		{"non-retryable session error", NewSessionError("test", nil), false},
		{"retryable session error", NewSessionError("test", nil).WithRetryable(true), true},
		{"wrapped retryable", fmt.Errorf("outer: %w", NewSessionError("test", nil).WithRetryable(true)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"plain error", New("plain"), false},
		{"session error", NewSessionError("test", nil), true},
		{"extension error", NewExtensionError("test", nil), false},
		{"not found", NewNotFoundError("session", "x"), true},
		{"validation", NewValidationError("bad"), true},
		{"wrapped not found", fmt.Errorf("outer: %w", NewNotFoundError("session", "x")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil error", nil, SeverityDebug},
		{"plain error", New("plain"), SeverityError},
		{"warning-level", NewNotFoundError("session", "x"), SeverityWarning},
		{"critical", NewSessionError("test", nil).WithSeverity(SeverityCritical), SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(NewSessionError("test", nil)) {
		t.Error("SessionError should be a domain error")
	}
	if !IsDomainError(NewExtensionError("test", nil)) {
		t.Error("ExtensionError should be a domain error")
	}
	if IsDomainError(NewNotFoundError("session", "x")) {
		t.Error("NotFoundError should not be a domain error")
	}
	if IsDomainError(nil) {
		t.Error("nil should not be a domain error")
	}
}

func TestIsSemanticError(t *testing.T) {
	if !IsSemanticError(NewNotFoundError("session", "x")) {
		t.Error("NotFoundError should be a semantic error")
	}
	if !IsSemanticError(NewAlreadyExistsError("command", "x")) {
		t.Error("AlreadyExistsError should be a semantic error")
	}
	if !IsSemanticError(NewValidationError("bad")) {
		t.Error("ValidationError should be a semantic error")
	}
	if IsSemanticError(NewSessionError("test", nil)) {
		t.Error("SessionError should not be a semantic error")
	}
}

// -----------------------------------------------------------------------------
// Wrap Tests
// -----------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	t.Run("wraps with message", func(t *testing.T) {
		err := Wrap(ErrSessionNotFound, "failed to restore policy")

		want := "failed to restore policy: session not found"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !Is(err, ErrSessionNotFound) {
			t.Error("wrapped error should match sentinel")
		}
	})

	t.Run("nil returns nil", func(t *testing.T) {
		if err := Wrap(nil, "context"); err != nil {
			t.Errorf("Wrap(nil) = %v, want nil", err)
		}
	})
}

func TestWrapf(t *testing.T) {
	t.Run("wraps with formatted message", func(t *testing.T) {
		err := Wrapf(ErrEntryNotFound, "failed to load session %s", "abc")

		want := "failed to load session abc: history entry not found"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("nil returns nil", func(t *testing.T) {
		if err := Wrapf(nil, "context %d", 1); err != nil {
			t.Errorf("Wrapf(nil) = %v, want nil", err)
		}
	})
}
