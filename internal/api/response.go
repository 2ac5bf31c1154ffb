package api

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessBody acknowledges an update or delete.
type SuccessBody struct {
	Success bool `json:"success"`
}

// WriteError writes {"error": message} with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteSuccess writes {"success": true}.
func WriteSuccess(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, SuccessBody{Success: true})
}
