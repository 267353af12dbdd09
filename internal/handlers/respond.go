package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"stellarstep/internal/ai"
	"stellarstep/internal/service"
	"stellarstep/internal/validation"
)

// respondJSON writes the success envelope with any extra payload fields
func respondJSON(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError writes the failure envelope. The underlying cause is included
// in the body only for server-side statuses; client errors get the message
// alone.
func respondError(w http.ResponseWriter, status int, userMsg string, err error) {
	body := map[string]any{
		"success": false,
		"message": userMsg,
	}
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
		if status >= http.StatusInternalServerError {
			body["error"] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		log.Printf("Error encoding error response: %v", encErr)
	}
}

// respondServiceError maps domain errors onto the response taxonomy:
// validation failures and unknown ids are client errors, upstream provider
// failures are bad-gateway, everything else is a persistence error.
func respondServiceError(w http.ResponseWriter, userMsg string, err error) {
	var validationErr validation.ValidationError
	var providerErr *ai.ProviderError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Message, nil)
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(w, http.StatusNotFound, "Task not found", nil)
	case errors.Is(err, service.ErrProgressNotFound):
		respondError(w, http.StatusNotFound, "Progress not found", nil)
	case errors.Is(err, service.ErrParentPasswordNotSet):
		respondError(w, http.StatusNotFound, "Parent password not set", nil)
	case errors.As(err, &providerErr), errors.Is(err, ai.ErrNotConfigured):
		respondError(w, http.StatusBadGateway, userMsg, err)
	default:
		respondError(w, http.StatusInternalServerError, userMsg, err)
	}
}

// decodeJSON parses a request body into dst; unknown fields are ignored
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
