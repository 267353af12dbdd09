package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
	"stellarstep/internal/repository"
	"stellarstep/internal/validation"
)

var ErrProgressNotFound = errors.New("progress not found")

// activityLogLimit bounds the page size of the activity feed
const activityLogLimit = 50

// ProgressService handles progress aggregates, badges, and the activity log
type ProgressService struct {
	db           *database.DB
	progressRepo *repository.ProgressRepository
	activityRepo *repository.ActivityRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
}

// NewProgressService creates a new progress service
func NewProgressService(db *database.DB, progressRepo *repository.ProgressRepository, activityRepo *repository.ActivityRepository, userRepo *repository.UserRepository, emailService *EmailService) *ProgressService {
	return &ProgressService{
		db:           db,
		progressRepo: progressRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// GetOrCreate returns the user's progress record, creating a zeroed one on
// first access. This is also how partial signup failures self-heal.
func (s *ProgressService) GetOrCreate(userID string) (*models.Progress, error) {
	if err := validation.ValidateFirebaseUID(userID); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		return progress, nil
	}

	created, err := s.progressRepo.Create(userID)
	if err != nil {
		// A concurrent request may have created it first; the unique
		// constraint on user_id makes re-reading safe.
		progress, getErr := s.progressRepo.GetByUser(userID)
		if getErr == nil && progress != nil {
			return progress, nil
		}
		return nil, err
	}
	return created, nil
}

// AwardBadge awards a named badge at most once per user. A duplicate name is
// reported via the second return value and performs no mutation. The badge
// insert and its badge_earned log entry commit in one transaction.
func (s *ProgressService) AwardBadge(ctx context.Context, userID, name, icon string) (*models.Progress, bool, error) {
	if err := validation.ValidateBadgeName(name); err != nil {
		return nil, false, err
	}

	progress, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return nil, false, err
	}
	if progress == nil {
		return nil, false, ErrProgressNotFound
	}

	if progress.HasBadge(name) {
		return progress, true, nil
	}

	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.progressRepo.WithTx(tx).AddBadge(userID, name, icon, now); err != nil {
		return nil, false, err
	}
	if _, err := s.activityRepo.WithTx(tx).Append(userID, models.ActivityBadgeEarned,
		fmt.Sprintf("Earned badge: %s", name),
		map[string]any{"badgeName": name, "badgeIcon": icon},
	); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit badge award: %w", err)
	}

	progress.Badges = append(progress.Badges, models.Badge{Name: name, Icon: icon, EarnedAt: now})

	s.notifyBadgeEarned(ctx, userID, name, icon)

	return progress, false, nil
}

// notifyBadgeEarned sends a best-effort notification email; failures are
// logged and never affect the award itself
func (s *ProgressService) notifyBadgeEarned(ctx context.Context, userID, name, icon string) {
	if s.emailService == nil || !s.emailService.IsEnabled() {
		return
	}

	user, err := s.userRepo.GetUserByFirebaseUID(userID)
	if err != nil || user == nil {
		return
	}

	if err := s.emailService.SendBadgeEmail(ctx, user.Email, user.Username, name, icon); err != nil {
		log.Printf("Warning: failed to send badge email for %s: %v", userID, err)
	}
}

// RecordTaskCompletion applies the completion side effect: counter increment,
// last-activity refresh, and a task_completed log entry, in one transaction.
// A missing progress record skips the side effect silently.
func (s *ProgressService) RecordTaskCompletion(userID, taskTitle string, taskID int64) error {
	progress, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if progress == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.progressRepo.WithTx(tx).IncrementTasksCompleted(userID, time.Now()); err != nil {
		return err
	}
	if _, err := s.activityRepo.WithTx(tx).Append(userID, models.ActivityTaskCompleted,
		fmt.Sprintf("Completed task: %s", taskTitle),
		map[string]any{"taskId": taskID},
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

// RecordGamePlayed bumps the matching play counter for a recognized game id.
// Unrecognized ids leave the counters untouched and are not an error. The
// game_played log entry is appended whenever a progress record exists.
func (s *ProgressService) RecordGamePlayed(userID, gameID string) error {
	progress, err := s.progressRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if progress == nil {
		return nil
	}

	game, known := models.ParseGameName(gameID)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if known {
		if err := s.progressRepo.WithTx(tx).IncrementGamePlays(userID, game); err != nil {
			return err
		}
	}
	if _, err := s.activityRepo.WithTx(tx).Append(userID, models.ActivityGamePlayed,
		fmt.Sprintf("Played %s", gameID),
		map[string]any{"gameName": gameID},
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game play: %w", err)
	}
	return nil
}

// RecentActivity returns the most recent activity entries, newest first
func (s *ProgressService) RecentActivity(userID string) ([]models.ActivityLog, error) {
	return s.activityRepo.RecentByUser(userID, activityLogLimit)
}
