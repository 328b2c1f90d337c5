// Package apierr defines the failure taxonomy for calls against the
// Novademy API. The request pipeline classifies every non-2xx response (and
// every transport failure) into exactly one of these types; domain services
// may wrap them with friendlier messages but never discard the classification.
package apierr

import (
	"fmt"
	"net/http"
)

// NetworkError means no response reached the client at all (DNS failure,
// connection refused, unreachable host). Recoverable by user retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means the per-request deadline elapsed before a response
// arrived. Timeouts never trigger the refresh flow; only a 401 does.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthExpiredError is a 401 that survived the single refresh-and-retry
// attempt. By the time a caller sees it the local session has been cleared;
// the user must authenticate again. A 401 that was healed by a refresh is
// invisible to callers, who only see the replayed request's outcome.
type AuthExpiredError struct {
	Status int
	Body   []byte
}

func (e *AuthExpiredError) Error() string {
	return "session expired: please log in again"
}

// ForbiddenError is a 403. Authenticated distinguishes "a token was attached
// but lacks privilege" from "no token was present at all".
type ForbiddenError struct {
	Authenticated bool
	Body          []byte
}

func (e *ForbiddenError) Error() string {
	if !e.Authenticated {
		return "please log in to access this resource"
	}
	return "you do not have permission to access this resource"
}

// NotFoundError is a 404. Read paths such as "get current user" map it to an
// absent result instead of propagating it.
type NotFoundError struct {
	Body []byte
}

func (e *NotFoundError) Error() string { return "resource not found" }

// ValidationError is a 400 carrying a server-provided field-error map, kept
// field-by-field so callers can render per-field messages.
type ValidationError struct {
	Message string
	Fields  map[string][]string
	Body    []byte
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return "validation failed"
}

// FieldError returns the first server message for the given field, or "".
func (e *ValidationError) FieldError(field string) string {
	msgs := e.Fields[field]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// ConflictError is a 409, e.g. a duplicate username/email/phone on
// registration.
type ConflictError struct {
	Body []byte
}

func (e *ConflictError) Error() string { return "conflict with existing resource" }

// RateLimitedError is a 429.
type RateLimitedError struct {
	Body []byte
}

func (e *RateLimitedError) Error() string { return "too many requests: try again later" }

// APIError is the catch-all for any other non-2xx status. The payload is
// carried verbatim for the caller to interpret.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.Status)
}

// Classify maps a non-2xx response to its typed error. hadToken reports
// whether the request carried a bearer token, which disambiguates the two
// 403 sub-cases. 401 is intentionally not handled here: the pipeline owns
// the refresh-and-retry decision before a 401 becomes terminal.
func Classify(status int, body []byte, hadToken bool) error {
	switch status {
	case http.StatusBadRequest:
		msg, fields := parseProblemDetails(body)
		return &ValidationError{Message: msg, Fields: fields, Body: body}
	case http.StatusForbidden:
		return &ForbiddenError{Authenticated: hadToken, Body: body}
	case http.StatusNotFound:
		return &NotFoundError{Body: body}
	case http.StatusConflict:
		return &ConflictError{Body: body}
	case http.StatusTooManyRequests:
		return &RateLimitedError{Body: body}
	default:
		return &APIError{Status: status, Body: body}
	}
}
