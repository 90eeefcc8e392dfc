package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidState     = errors.New("invalid state parameter")
)

// ConfigError reports every required configuration key that is absent,
// not just the first one found.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing configuration: " + strings.Join(e.Missing, ", ")
}

// UpstreamError is a failed provider call: transport error, non-2xx status,
// or a 2xx response with an unusable body. Payload carries the raw provider
// response so it is never lost on the way back to the caller.
type UpstreamError struct {
	Op      string
	Message string
	Payload string
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Message
}

// StorageError is a failed credential write. It is fatal to the request:
// the user must not see a success page for a credential that did not persist.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "credential storage: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
