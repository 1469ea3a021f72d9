// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrFollowNotFound     = errors.New("follow not found")
	ErrFollowStopped      = errors.New("follow is stopped")
	ErrAlreadyFollowing   = errors.New("already following this wallet")
	ErrExposureExceeded   = errors.New("exposure cap exceeded")
	ErrNoMirroredPosition = errors.New("no mirrored position to exit")
	ErrRateLimited        = errors.New("rate limited")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDataNotFound       = errors.New("data not found")
	ErrDatabaseError      = errors.New("database error")
)

// DataSourceError represents a transient error from the trade history source.
// The poller retries these with backoff; they are never surfaced per trade.
type DataSourceError struct {
	Operation string
	Wallet    string
	Err       error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source error [%s] %s: %v", e.Operation, e.Wallet, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError creates a new DataSourceError.
func NewDataSourceError(operation, wallet string, err error) *DataSourceError {
	return &DataSourceError{
		Operation: operation,
		Wallet:    wallet,
		Err:       err,
	}
}

// ExecutionError represents a failure from the order execution service.
// Terminal for the trade that triggered it; recorded, never retried.
type ExecutionError struct {
	FollowID string
	TradeID  string
	Reason   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execution error [%s] trade %s: %s: %v", e.FollowID, e.TradeID, e.Reason, e.Err)
	}
	return fmt.Sprintf("execution error [%s] trade %s: %s", e.FollowID, e.TradeID, e.Reason)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(followID, tradeID, reason string, err error) *ExecutionError {
	return &ExecutionError{
		FollowID: followID,
		TradeID:  tradeID,
		Reason:   reason,
		Err:      err,
	}
}

// ConfigurationError represents an invalid follow configuration. Rejected at
// follow-creation time; never reaches the decision pipeline.
type ConfigurationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field string, value interface{}, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// InsufficientDataError indicates a wallet had no trades in the scoring
// window. Non-fatal: callers receive a zeroed snapshot instead.
type InsufficientDataError struct {
	Wallet     string
	PeriodDays int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s over %d days", e.Wallet, e.PeriodDays)
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(wallet string, periodDays int) *InsufficientDataError {
	return &InsufficientDataError{
		Wallet:     wallet,
		PeriodDays: periodDays,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
