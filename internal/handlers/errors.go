package handlers

import (
	"encoding/json"
	"net/http"
)

// FieldError is one violated validation rule, reported alongside every other
// violation in the same request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// JSONError sends an error response with a single "message" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"message": message})
}

// JSONInternal sends a 500 with a generic message. The underlying error detail
// is attached only in dev mode; production clients never see internals.
func JSONInternal(w http.ResponseWriter, message string, err error, dev bool) {
	out := map[string]interface{}{"message": message}
	if dev && err != nil {
		out["error"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, out)
}

// JSONValidationError sends a 400 listing every violated rule.
func JSONValidationError(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": errs})
}
