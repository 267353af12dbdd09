package repository

import (
	"database/sql"
	"fmt"
	"time"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db database.DBTX
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, planet_name, planet_color, completed, sort_order, created_at, completed_at`

// Create inserts a new task. The caller supplies the order value, which is
// the count of the user's tasks at creation time.
func (r *TaskRepository) Create(userID, title, planetName, planetColor string, order int) (*models.Task, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO tasks (user_id, title, planet_name, planet_color, completed, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, userID, title, planetName, planetColor, false, order, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &models.Task{
		ID:          id,
		UserID:      userID,
		Title:       title,
		PlanetName:  planetName,
		PlanetColor: planetColor,
		Completed:   false,
		Order:       order,
		CreatedAt:   now,
	}, nil
}

// GetByID retrieves a task by id. Returns nil without error when not found.
func (r *TaskRepository) GetByID(id int64) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = ?
	`
	task, err := scanTask(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByUser retrieves all tasks for a user in ascending display order
func (r *TaskRepository) ListByUser(userID string) ([]models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		ORDER BY sort_order ASC, id ASC
	`
	return r.queryTasks(query, userID)
}

// ListByUserSince retrieves tasks created at or after the given instant,
// in ascending display order
func (r *TaskRepository) ListByUserSince(userID string, since time.Time) ([]models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ? AND created_at >= ?
		ORDER BY sort_order ASC, id ASC
	`
	return r.queryTasks(query, userID, since.UTC())
}

// CountByUser returns the number of tasks a user has
func (r *TaskRepository) CountByUser(userID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM tasks WHERE user_id = ?"
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// Update replaces the title, completion flag, and completion timestamp of a task
func (r *TaskRepository) Update(id int64, title string, completed bool, completedAt *time.Time) error {
	query := `
		UPDATE tasks
		SET title = ?, completed = ?, completed_at = ?
		WHERE id = ?
	`
	var ts interface{}
	if completedAt != nil {
		t := completedAt.UTC()
		ts = t
	}
	_, err := r.db.Exec(query, title, completed, ts, id)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task by id. Deleting an unknown id is not an error.
func (r *TaskRepository) Delete(id int64) error {
	query := "DELETE FROM tasks WHERE id = ?"
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var completedAt sql.NullTime
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.PlanetName,
			&task.PlanetColor,
			&task.Completed,
			&task.Order,
			&task.CreatedAt,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if completedAt.Valid {
			task.CompletedAt = &completedAt.Time
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var completedAt sql.NullTime
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.PlanetName,
		&task.PlanetColor,
		&task.Completed,
		&task.Order,
		&task.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	return task, nil
}
