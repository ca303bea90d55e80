// Package httperr defines the application's error taxonomy and its JSON
// contract. Every domain failure is a typed *Error carrying an HTTP status;
// the boundary renders it as {"error":true,"message":...} and nothing else
// ever leaks to the client.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a domain failure with an HTTP status code.
type Error struct {
	Status  int
	Message string
	Extra   map[string]any
}

func (e *Error) Error() string { return e.Message }

// New builds an arbitrary taxonomy error.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// NotFound is the generic 404 variant; item names the missing resource.
func NotFound(item string) *Error {
	return &Error{Status: http.StatusNotFound, Message: item + " not found"}
}

func UserNotFound() *Error    { return NotFound("User") }
func OrderNotFound() *Error   { return NotFound("Order") }
func ProductNotFound() *Error { return NotFound("Product") }

// Auth is returned for any authentication failure. The message is fixed so
// callers cannot distinguish a bad signature from an expired token or an
// unknown account.
func Auth() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
}

// Permission is returned when the principal is authenticated but lacks the
// required scope.
func Permission() *Error {
	return &Error{
		Status:  http.StatusForbidden,
		Message: "You do not have permission to perform this action",
	}
}

// Validation is returned for bad input or a failed invariant.
func Validation(message string) *Error {
	if message == "" {
		message = "Invalid data provided"
	}
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// WithExtra attaches additional fields to the rendered body.
func (e *Error) WithExtra(extra map[string]any) *Error {
	e.Extra = extra
	return e
}

// Is lets errors.Is match two taxonomy errors by status and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

// Write renders err to w. Typed taxonomy errors keep their status and
// message; anything else becomes an opaque 500 so internal details
// (SQL errors, stack traces) never reach the client.
func Write(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = New(http.StatusInternalServerError, "Internal Server Error")
	}

	body := map[string]any{
		"error":   true,
		"message": appErr.Message,
	}
	for k, v := range appErr.Extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
