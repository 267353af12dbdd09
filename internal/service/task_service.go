package service

import (
	"errors"
	"log"
	"time"

	"stellarstep/internal/models"
	"stellarstep/internal/repository"
	"stellarstep/internal/validation"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService handles task business logic and the completion side effect
type TaskService struct {
	taskRepo        *repository.TaskRepository
	progressService *ProgressService
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo *repository.TaskRepository, progressService *ProgressService) *TaskService {
	return &TaskService{
		taskRepo:        taskRepo,
		progressService: progressService,
	}
}

// List returns all tasks for a user in ascending display order
func (s *TaskService) List(userID string) ([]models.Task, error) {
	return s.taskRepo.ListByUser(userID)
}

// ListToday returns tasks created on or after local midnight, server clock
func (s *TaskService) ListToday(userID string) ([]models.Task, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.taskRepo.ListByUserSince(userID, midnight)
}

// Create appends a new task. The order value is the count of the user's
// existing tasks; concurrent creates for the same user may race and produce
// duplicate order values, which is an accepted weak ordering.
func (s *TaskService) Create(userID, title, planetName, planetColor string) (*models.Task, error) {
	if err := validation.ValidateFirebaseUID(userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateTaskTitle(title); err != nil {
		return nil, err
	}
	if planetName == "" {
		return nil, validation.ValidationError{Field: "planetName", Message: "planetName is required"}
	}
	if planetColor == "" {
		planetColor = models.DefaultPlanetColor
	}

	count, err := s.taskRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	return s.taskRepo.Create(userID, title, planetName, planetColor, count)
}

// Update replaces the title and, optionally, the completion flag. A false to
// true transition stamps the completion time and triggers the progress side
// effect; transitioning away from completed never reverses it.
func (s *TaskService) Update(taskID int64, title string, completed *bool) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if title != "" {
		task.Title = title
	}

	justCompleted := false
	if completed != nil {
		if *completed && !task.Completed {
			now := time.Now().UTC()
			task.CompletedAt = &now
			justCompleted = true
		}
		task.Completed = *completed
	}

	if err := s.taskRepo.Update(task.ID, task.Title, task.Completed, task.CompletedAt); err != nil {
		return nil, err
	}

	if justCompleted {
		// Side effect is best-effort: the task update already succeeded
		if err := s.progressService.RecordTaskCompletion(task.UserID, task.Title, task.ID); err != nil {
			log.Printf("Warning: failed to record completion for task %d: %v", task.ID, err)
		}
	}

	return task, nil
}

// Delete removes a task unconditionally, with no side effects on progress or logs
func (s *TaskService) Delete(taskID int64) error {
	return s.taskRepo.Delete(taskID)
}
