package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type MonitorError struct {
	Message string
	Cause   error
}

func (e *MonitorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MonitorError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds for errors.As checks
type ConfigurationError struct{ MonitorError }
type TransportError struct{ MonitorError }
type PayloadError struct{ MonitorError }
type StorageError struct{ MonitorError }

// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{MonitorError{Message: msg, Cause: cause}}
}

func NewTransportError(msg string, cause error) error {
	return &TransportError{MonitorError{Message: msg, Cause: cause}}
}

func NewPayloadError(msg string, cause error) error {
	return &PayloadError{MonitorError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) error {
	return &StorageError{MonitorError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsPayloadError reports whether err is (or wraps) a PayloadError.
func IsPayloadError(err error) bool {
	var pe *PayloadError
	return errors.As(err, &pe)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// BackoffDelay returns base * 2^attempt capped at max. attempt starts at 0.
// A max below base disables growth and every attempt waits base.
func BackoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if max < base {
		return base
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		return max
	}
	delay := base * (1 << attempt)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}
