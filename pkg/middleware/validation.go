package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse is the standard shape for validation errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ValidateRequest rejects malformed bodies before they reach handlers.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				writeValidationError(w, ErrorResponse{Error: "Invalid Content-Type, expected application/json"})
				return
			}

			// Some POST endpoints carry no body at all; only a declared JSON
			// body is required to be non-empty.
			if contentType != "" && r.ContentLength == 0 {
				writeValidationError(w, ErrorResponse{Error: "Request body cannot be empty"})
				return
			}
		}

		const maxSize = 1 << 20 // 1 MB
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}

func writeValidationError(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(resp)
}
