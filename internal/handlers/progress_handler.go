package handlers

import (
	"net/http"

	"stellarstep/internal/service"
)

// ProgressHandler handles progress, badge, and activity log HTTP requests
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Get handles GET /api/progress/{userId}: find-or-create on read
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	progress, err := h.progressService.GetOrCreate(r.PathValue("userId"))
	if err != nil {
		respondServiceError(w, "Failed to get progress", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

// AwardBadge handles POST /api/progress/badge (idempotent per badge name)
func (h *ProgressHandler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		BadgeName string `json:"badgeName"`
		BadgeIcon string `json:"badgeIcon"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	progress, alreadyAwarded, err := h.progressService.AwardBadge(r.Context(), req.UserID, req.BadgeName, req.BadgeIcon)
	if err != nil {
		respondServiceError(w, "Failed to award badge", err)
		return
	}

	if alreadyAwarded {
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Badge already awarded",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "Badge awarded",
		"progress": progress,
	})
}

// GamePlayed handles POST /api/progress/game-played
func (h *ProgressHandler) GamePlayed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		GameName string `json:"gameName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.progressService.RecordGamePlayed(req.UserID, req.GameName); err != nil {
		respondServiceError(w, "Failed to update game stats", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "Game stats updated"})
}

// Logs handles GET /api/progress/logs/{userId}: recent activity, newest first
func (h *ProgressHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.progressService.RecentActivity(r.PathValue("userId"))
	if err != nil {
		respondServiceError(w, "Failed to get activity logs", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
