package httpapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// messageResponse is the {"message": ...} body used by most non-resource
// endpoints.
func messageResponse(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// fieldError is the validation-failure shape the frontend maps to form
// fields: {"message": ..., "errors": {"field": ["..."]}}.
func fieldError(msg, field, detail string) map[string]any {
	return map[string]any{
		"message": msg,
		"errors":  map[string][]string{field: {detail}},
	}
}
