package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced through the service layer.
var (
	// ErrEntityNotFound is returned when a delete targets an id that is
	// not present in the collection.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrUnknownCollection is returned when a path names a collection
	// outside companies/opportunities/contacts/activities.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidPayload is returned when a full replace body is not a
	// JSON object.
	ErrInvalidPayload = errors.New("request body must be a JSON object")
)

// StoreUnavailableError wraps any document store failure other than
// not-found: network, auth, corruption. It is surfaced as HTTP 500 with
// the underlying message attached and is never retried.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("document store %s failed: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeBadRequest = "bad_request"
	ErrorTypeNotFound   = "not_found"
	ErrorTypeInternal   = "internal_error"
)
