// Package errors provides structured error types for the claimgraph engine.
//
// Every failure that can reach a user carries a [Code]. The code decides
// the HTTP status the server answers with and, when the error has no
// message of its own, the text shown to the user. Raw transport errors
// never become user text: [UserMessage] falls back to a generic sentence
// for anything that is not an [*Error].
//
// # Error Codes
//
//   - INVALID_*: malformed payloads or request parameters
//   - NOT_FOUND, NODE_NOT_FOUND, VIEW_NOT_FOUND: unknown remote resources,
//     nodes or views
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: fetch failures
//   - EXPANSION_IN_FLIGHT, GRAPH_LIMIT_REACHED, VIEW_CLOSED: exploration guards
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unsupported payload shape: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // reject the payload
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "Could not load more connections.")
//	w.WriteHeader(errors.HTTPStatus(err)) // 502
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeViewNotFound Code = "VIEW_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Exploration errors
	ErrCodeExpansionInFlight Code = "EXPANSION_IN_FLIGHT"
	ErrCodeGraphLimit        Code = "GRAPH_LIMIT_REACHED"
	ErrCodeViewClosed        Code = "VIEW_CLOSED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

const genericMessage = "Something went wrong. Please try again."

type codeInfo struct {
	status  int
	message string // shown when the error has no message of its own
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:      {http.StatusBadRequest, "The request is not valid."},
	ErrCodeInvalidFormat:     {http.StatusBadRequest, "The data could not be read."},
	ErrCodeInvalidLayout:     {http.StatusBadRequest, "Unknown layout."},
	ErrCodeInvalidID:         {http.StatusBadRequest, "The identifier is not valid."},
	ErrCodeNotFound:          {http.StatusNotFound, "Not found."},
	ErrCodeNodeNotFound:      {http.StatusNotFound, "That node is not part of this graph."},
	ErrCodeViewNotFound:      {http.StatusNotFound, "This exploration no longer exists."},
	ErrCodeNetwork:           {http.StatusBadGateway, "Could not reach the claim service. Please try again."},
	ErrCodeTimeout:           {http.StatusGatewayTimeout, "The request timed out. Please try again."},
	ErrCodeRateLimited:       {http.StatusTooManyRequests, "Too many requests. Please try again shortly."},
	ErrCodeExpansionInFlight: {http.StatusConflict, "This node is already loading."},
	ErrCodeGraphLimit:        {http.StatusConflict, "Graph size limit reached."},
	ErrCodeViewClosed:        {http.StatusGone, "This exploration has ended."},
	ErrCodeUnsupported:       {http.StatusNotImplemented, "Not supported."},
	ErrCodeInternal:          {http.StatusInternalServerError, genericMessage},
}

// Status returns the HTTP status for c. Unknown codes map to 500.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message, safe to show to users
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	} else {
		msg = string(e.Code) + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// A *RateLimitedError anywhere in the chain reports ErrCodeRateLimited.
// Returns empty string for any other error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return ErrCodeRateLimited
	}
	return ""
}

// UserMessage returns the text to show a user for err: the message of the
// outermost [*Error], else the default text for its code. Errors without a
// code get a generic sentence so transport details stay in logs.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if info, ok := codes[GetCode(err)]; ok {
		return info.message
	}
	return genericMessage
}

// HTTPStatus maps an error to the HTTP status code the server responds with.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}

// RateLimitedError reports a 429 from the claim API.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
