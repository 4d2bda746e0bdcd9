package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoDeals is the backend's expected-absence signal for a restaurant that
// has not published anything yet. It is a valid empty state, never a fault.
// Match it with errors.Is.
var ErrNoDeals = errors.New("restaurant has no deals yet")

const (
	noDealsCode = "no_deals"
	// The pre-redesign backend signalled the empty state only through this
	// message fragment. Kept as a fallback for deployments still running it.
	legacyNoDealsFragment = "no deals"
)

// StatusError is a non-2xx backend response. Message carries the backend's
// error envelope when one could be parsed, otherwise a generic status line.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrNoDeals) recognize the structured no-deals code
// as well as the legacy message fragment.
func (e *StatusError) Is(target error) bool {
	if target != ErrNoDeals {
		return false
	}
	if e.Code == noDealsCode {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), legacyNoDealsFragment)
}

func newStatusError(status int, body []byte) *StatusError {
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &StatusError{Status: status, Code: envelope.Code, Message: envelope.Error}
	}
	return &StatusError{
		Status:  status,
		Message: fmt.Sprintf("Error %d: %s", status, http.StatusText(status)),
	}
}

// IsAuthError reports whether err is the backend rejecting the credential.
// Callers treat it by clearing the stored credential and returning to login.
func IsAuthError(err error) bool {
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Status == http.StatusUnauthorized
	}
	return false
}
