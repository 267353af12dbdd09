package repository

import (
	"database/sql"
	"fmt"
	"time"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
)

// ProgressRepository handles database operations for progress records and badges
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ProgressRepository) WithTx(tx *database.Tx) *ProgressRepository {
	return &ProgressRepository{db: tx}
}

// Create inserts a zeroed progress record for a user
func (r *ProgressRepository) Create(userID string) (*models.Progress, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO progress (user_id, total_tasks_completed, streak_days, last_activity_at, planet_matcher_plays, alien_emotions_plays)
		VALUES (?, 0, 0, ?, 0, 0)
	`
	id, err := r.db.ExecReturningID(query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	return &models.Progress{
		ID:             id,
		UserID:         userID,
		Badges:         []models.Badge{},
		LastActivityAt: now,
	}, nil
}

// GetByUser retrieves a user's progress record with its badges.
// Returns nil without error when no record exists.
func (r *ProgressRepository) GetByUser(userID string) (*models.Progress, error) {
	query := `
		SELECT id, user_id, total_tasks_completed, streak_days, last_activity_at, planet_matcher_plays, alien_emotions_plays
		FROM progress
		WHERE user_id = ?
	`
	progress := &models.Progress{}
	err := r.db.QueryRow(query, userID).Scan(
		&progress.ID,
		&progress.UserID,
		&progress.TotalTasksCompleted,
		&progress.StreakDays,
		&progress.LastActivityAt,
		&progress.GamesPlayed.PlanetMatcher,
		&progress.GamesPlayed.AlienEmotions,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	badges, err := r.ListBadges(userID)
	if err != nil {
		return nil, err
	}
	progress.Badges = badges

	return progress, nil
}

// ListBadges retrieves a user's badges in award order
func (r *ProgressRepository) ListBadges(userID string) ([]models.Badge, error) {
	query := `
		SELECT name, icon, earned_at
		FROM badges
		WHERE user_id = ?
		ORDER BY earned_at ASC, id ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	badges := []models.Badge{}
	for rows.Next() {
		var badge models.Badge
		if err := rows.Scan(&badge.Name, &badge.Icon, &badge.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, badge)
	}

	return badges, rows.Err()
}

// AddBadge records a badge award. The (user_id, name) pair is unique, so a
// concurrent duplicate insert surfaces as a constraint error.
func (r *ProgressRepository) AddBadge(userID, name, icon string, earnedAt time.Time) error {
	query := `
		INSERT INTO badges (user_id, name, icon, earned_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, userID, name, icon, earnedAt.UTC()); err != nil {
		return fmt.Errorf("failed to add badge: %w", err)
	}
	return nil
}

// IncrementTasksCompleted bumps the completed-task counter and refreshes
// the last-activity timestamp
func (r *ProgressRepository) IncrementTasksCompleted(userID string, at time.Time) error {
	query := `
		UPDATE progress
		SET total_tasks_completed = total_tasks_completed + 1, last_activity_at = ?
		WHERE user_id = ?
	`
	if _, err := r.db.Exec(query, at.UTC(), userID); err != nil {
		return fmt.Errorf("failed to increment completed tasks: %w", err)
	}
	return nil
}

// IncrementGamePlays bumps the play counter for a known game
func (r *ProgressRepository) IncrementGamePlays(userID string, game models.GameName) error {
	var column string
	switch game {
	case models.GamePlanetMatcher:
		column = "planet_matcher_plays"
	case models.GameAlienEmotions:
		column = "alien_emotions_plays"
	default:
		return fmt.Errorf("unknown game: %s", game)
	}

	query := "UPDATE progress SET " + column + " = " + column + " + 1 WHERE user_id = ?"
	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to increment game plays: %w", err)
	}
	return nil
}
