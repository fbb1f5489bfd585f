package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur at the edges of the engine.
var (
	// ErrRateLimited indicates that a notification was dropped by a rate
	// limiter.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreClosed indicates that a unit of work was attempted on a store
	// that has been closed.
	ErrStoreClosed = errors.New("store closed")

	// ErrCorruptSnapshot indicates that a persisted snapshot could not be
	// decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// StoreError represents an error from a persistence operation.
type StoreError struct {
	// Driver is the storage backend, e.g. "memory" or "sqlite".
	Driver string

	// Operation is the name of the store operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: driver=%s, operation=%s, err=%v", e.Driver, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(driver, operation string, err error) *StoreError {
	return &StoreError{
		Driver:    driver,
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}

// NotifyError represents a failed notification delivery.
type NotifyError struct {
	// Entity and ID identify the subject of the notice.
	Entity string
	ID     string

	// Err is the underlying delivery error.
	Err error
}

// Error implements the error interface for NotifyError.
func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify error: entity=%s, id=%s, err=%v", e.Entity, e.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *NotifyError) Unwrap() error { return e.Err }
