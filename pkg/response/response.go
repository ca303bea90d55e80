// Package response provides JSON response helpers for handlers.
// Error responses go through pkg/httperr so the error contract stays uniform.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK writes v with a 200.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with a 201.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// RateLimited writes the fixed 429 body. Deliberately outside the error
// taxonomy: rate-limit exceedance is transport-level, not a domain failure.
func RateLimited(w http.ResponseWriter) {
	JSON(w, http.StatusTooManyRequests, map[string]interface{}{
		"detail": "Too many requests - slow down and try again in a minute",
	})
}
