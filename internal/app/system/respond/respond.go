// Package respond writes JSON API responses.
//
// Error bodies always carry a human "message" and, for server failures,
// the underlying "error" text:
//
//	{ "message": "Failed to fetch schemes", "error": "…" }
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/jansethu/mysarkar/internal/app/system/limits"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{"message": msg})
}

// Error writes {"message": msg, "error": err} with the given status.
// A nil err writes only the message.
func Error(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	JSON(w, status, body)
}

// Fail writes the community-style {"success": false, "message": msg}.
func Fail(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"success": false, "message": msg}
	if err != nil {
		body["error"] = err.Error()
	}
	JSON(w, status, body)
}

// Decode reads a JSON request body of at most limits.MaxJSONBody bytes
// into dst.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody))
	return dec.Decode(dst)
}
