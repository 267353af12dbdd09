package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
)

// ActivityRepository handles database operations for the append-only activity log
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ActivityRepository) WithTx(tx *database.Tx) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

// Append records a new activity log entry. Entries are immutable once written.
func (r *ActivityRepository) Append(userID string, activityType models.ActivityType, description string, metadata map[string]any) (*models.ActivityLog, error) {
	if !activityType.IsValid() {
		return nil, fmt.Errorf("unknown activity type: %s", activityType)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO activity_logs (user_id, activity_type, description, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, userID, string(activityType), description, string(metadataJSON), now)
	if err != nil {
		return nil, fmt.Errorf("failed to append activity log: %w", err)
	}

	return &models.ActivityLog{
		ID:          id,
		UserID:      userID,
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   now,
	}, nil
}

// RecentByUser retrieves the most recent entries for a user, newest first
func (r *ActivityRepository) RecentByUser(userID string, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, user_id, activity_type, description, metadata, created_at
		FROM activity_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var entry models.ActivityLog
		var metadataJSON string
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Type,
			&entry.Description,
			&metadataJSON,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
			// Metadata is advisory; a corrupt blob shouldn't hide the entry
			entry.Metadata = map[string]any{}
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}
