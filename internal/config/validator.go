package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "log.level")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"json", "text"}
}

// Validate checks the Config for invalid values and returns all
// validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLog()...)
	errors = append(errors, c.validateUI()...)

	return errors
}

// validateLog validates the LogConfig
func (c *Config) validateLog() []ValidationError {
	var errors []ValidationError

	if c.Log.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Log.Format != "" && !slices.Contains(ValidLogFormats(), strings.ToLower(c.Log.Format)) {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	if c.Log.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "log.max_size_mb",
			Value:   c.Log.MaxSizeMB,
			Message: "must be zero or positive",
		})
	}

	if c.Log.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "log.max_backups",
			Value:   c.Log.MaxBackups,
			Message: "must be zero or positive",
		})
	}

	return errors
}

// validateUI validates the UIConfig
func (c *Config) validateUI() []ValidationError {
	var errors []ValidationError

	if c.UI.StatusIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "ui.status_interval_ms",
			Value:   c.UI.StatusIntervalMs,
			Message: "must be positive",
		})
	}

	return errors
}
