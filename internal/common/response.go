package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents the error payload returned by the API.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// WriteError renders err. AppErrors keep their status and message; anything
// else is reported as an opaque internal error.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		JSONError(w, status, message)
		return
	}
	JSONError(w, http.StatusInternalServerError, "internal error")
}
