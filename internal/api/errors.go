// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// Error variables for the failure taxonomy. Every backend call fails
// with exactly one of these kinds regardless of entity type, so callers
// match with errors.Is and never inspect status codes themselves.
var (
	// ErrAuth indicates rejected credentials (login) or a rejected
	// bearer token (any authenticated call answering 401).
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound indicates the mutation target no longer exists
	// server-side, typically a deletion race with another actor.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates the backend rejected the payload shape
	// or a required field.
	ErrValidation = errors.New("validation failed")
)

// APIError is a transport-level failure: the backend answered with an
// unexpected status, or was unreachable. It wraps every non-2xx
// response that does not map to a more specific kind above.
type APIError struct {
	Status  int    // HTTP status code, 0 when the request never completed
	Message string // Server-provided message if one could be parsed
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("backend error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a rejected-payload failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsTransport reports whether err is a transport-level failure rather
// than one of the specific kinds (auth, not-found, validation).
func IsTransport(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
