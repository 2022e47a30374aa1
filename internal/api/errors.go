package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 response. Bad credentials at login and
	// a rejected session token both surface as this error.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession is returned by authenticated calls made without a token.
	// No request is sent.
	ErrNoSession = errors.New("not logged in")
)

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
	// Message is the backend's error message when the body carries one.
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Is makes errors.Is(err, ErrUnauthorized) hold for 401 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func newHTTPError(status int, body []byte) *HTTPError {
	text := strings.TrimSpace(string(body))
	return &HTTPError{
		StatusCode: status,
		Body:       text,
		Message:    errorMessage(body),
	}
}

// errorMessage extracts a message from the common error body shapes:
// {"message": ...}, {"error": "..."} and {"error": {"message": ...}}.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}
