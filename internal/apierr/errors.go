// Package apierr defines the HTTP error taxonomy the proxy surfaces to clients.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a structured error carrying the HTTP status it should render as.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// BadRequest builds a 400 with the given message.
func BadRequest(format string, args ...interface{}) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a 403 with the given message. Handlers name the offending
// entity in the message, per the policy-violation contract.
func Forbidden(format string, args ...interface{}) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a 404 with the given message.
func NotFound(format string, args ...interface{}) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// TooManyRequests builds a 429 with the given message.
func TooManyRequests(format string, args ...interface{}) *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an engine/transport failure as a 500.
func Internal(err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}

// WriteJSON renders err as the engine-compatible {"message": "..."} body.
func WriteJSON(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Message})
}
