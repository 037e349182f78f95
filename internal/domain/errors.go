package domain

import (
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced lead or call does not exist.
// Surfaced to clients as 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigurationError indicates an unknown or unset voice provider selection.
// Fatal at the call site, never retried.
type ConfigurationError struct {
	Provider  string
	Supported []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown voice provider: %q, supported providers: %s",
		e.Provider, strings.Join(e.Supported, ", "))
}

// ProviderError indicates a non-2xx response or transport failure from an
// external voice or search API. StatusCode is 0 for transport-level failures.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Provider, e.Operation, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Provider, e.Operation)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError indicates malformed or conflicting input, such as a
// duplicate phone number on lead creation. Surfaced to clients as 409.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
