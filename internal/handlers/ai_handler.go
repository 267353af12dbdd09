package handlers

import (
	"net/http"

	"stellarstep/internal/ai"
)

// AIHandler exposes the text generation gateway over HTTP
type AIHandler struct {
	gateway *ai.Gateway
}

// NewAIHandler creates a new AI handler
func NewAIHandler(gateway *ai.Gateway) *AIHandler {
	return &AIHandler{gateway: gateway}
}

// Reinforcement handles POST /api/ai/reinforcement
func (h *AIHandler) Reinforcement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Achievement string `json:"achievement"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Achievement == "" {
		respondError(w, http.StatusBadRequest, "achievement is required", nil)
		return
	}

	message, err := h.gateway.Reinforcement(r.Context(), req.Achievement)
	if err != nil {
		respondServiceError(w, "Failed to generate reinforcement message", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": message})
}

// Simplify handles POST /api/ai/simplify
func (h *AIHandler) Simplify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Topic == "" {
		respondError(w, http.StatusBadRequest, "topic is required", nil)
		return
	}

	explanation, err := h.gateway.Simplify(r.Context(), req.Topic)
	if err != nil {
		respondServiceError(w, "Failed to simplify topic", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"topic":       req.Topic,
		"explanation": explanation,
	})
}

// SpaceFact handles GET /api/ai/space-fact
func (h *AIHandler) SpaceFact(w http.ResponseWriter, r *http.Request) {
	fact, err := h.gateway.SpaceFact(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to get space fact", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"fact": fact})
}
