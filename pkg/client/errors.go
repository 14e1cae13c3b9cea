package client

import (
	"encoding/json"
	"fmt"
)

// SearchError is the single error kind for every search failure: HTTP error
// statuses, transport failures, and undecodable responses all surface as a
// *SearchError so callers have one type to check.
type SearchError struct {
	// StatusCode is the HTTP status of the failing response, or 0 when no
	// response was received.
	StatusCode int

	// Message is the human-readable failure description. For HTTP failures
	// it is the structured message from the response body when one exists.
	Message string

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements the error interface. It returns Message verbatim; status
// and cause stay in their fields.
func (e *SearchError) Error() string {
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SearchError) Unwrap() error {
	return e.Err
}

// newHTTPError builds the SearchError for a non-2xx response. The body is
// expected to be JSON with an optional "message" field; when that field is
// missing or unparseable the error falls back to a generic status message.
func newHTTPError(statusCode int, body []byte) *SearchError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &SearchError{StatusCode: statusCode, Message: payload.Message}
	}

	return &SearchError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP error! status: %d", statusCode),
	}
}

// newNetworkError wraps a transport-level failure (connection error, timeout,
// malformed response body).
func newNetworkError(err error) *SearchError {
	return &SearchError{
		Message: "Network error: " + err.Error(),
		Err:     err,
	}
}

// classifyStatus maps an HTTP status to an error class for observability.
// Status 0 means no HTTP response was received.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 0:
		return ErrorClassNetwork
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
