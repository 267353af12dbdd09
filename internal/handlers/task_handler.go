package handlers

import (
	"net/http"
	"strconv"

	"stellarstep/internal/service"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List handles GET /api/task/{userId}
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.PathValue("userId"))
	if err != nil {
		respondServiceError(w, "Failed to get tasks", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// ListToday handles GET /api/task/{userId}/today
func (h *TaskHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListToday(r.PathValue("userId"))
	if err != nil {
		respondServiceError(w, "Failed to get today's tasks", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// Create handles POST /api/task
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		Title       string `json:"title"`
		PlanetName  string `json:"planetName"`
		PlanetColor string `json:"planetColor"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	task, err := h.taskService.Create(req.UserID, req.Title, req.PlanetName, req.PlanetColor)
	if err != nil {
		respondServiceError(w, "Failed to create task", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created",
		"task":    task,
	})
}

// Update handles PUT /api/task/{taskId}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.PathValue("taskId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID", nil)
		return
	}

	var req struct {
		Title     string `json:"title"`
		Completed *bool  `json:"completed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	task, err := h.taskService.Update(taskID, req.Title, req.Completed)
	if err != nil {
		respondServiceError(w, "Failed to update task", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated",
		"task":    task,
	})
}

// Delete handles DELETE /api/task/{taskId}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := strconv.ParseInt(r.PathValue("taskId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid task ID", nil)
		return
	}

	if err := h.taskService.Delete(taskID); err != nil {
		respondServiceError(w, "Failed to delete task", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "Task deleted"})
}
