package service

import (
	"errors"
	"fmt"
	"log"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
	"stellarstep/internal/repository"
	"stellarstep/internal/security"
	"stellarstep/internal/validation"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrParentPasswordNotSet = errors.New("parent password not set")
)

// UserService handles identity and parent-access business logic
type UserService struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	progressRepo *repository.ProgressRepository
	activityRepo *repository.ActivityRepository
}

// NewUserService creates a new user service
func NewUserService(db *database.DB, userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository, activityRepo *repository.ActivityRepository) *UserService {
	return &UserService{
		db:           db,
		userRepo:     userRepo,
		progressRepo: progressRepo,
		activityRepo: activityRepo,
	}
}

// CreateOrGet implements idempotent signup: an existing external identity id
// returns the stored user unchanged; otherwise the user and its zeroed
// progress record are created in one transaction. The second return value
// reports whether a new user was created.
func (s *UserService) CreateOrGet(firebaseUID, email, username string, avatarID int) (*models.User, bool, error) {
	if err := validation.ValidateFirebaseUID(firebaseUID); err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	if err := validation.ValidateEmail(email); err != nil {
		return nil, false, err
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, false, err
	}
	if avatarID <= 0 {
		avatarID = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := s.userRepo.WithTx(tx).CreateUser(firebaseUID, email, username, avatarID)
	if err != nil {
		// A concurrent signup may have created the user first; the unique
		// constraint on firebase_uid makes re-reading safe.
		tx.Rollback()
		if existing, getErr := s.userRepo.GetUserByFirebaseUID(firebaseUID); getErr == nil && existing != nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	if _, err := s.progressRepo.WithTx(tx).Create(firebaseUID); err != nil {
		return nil, false, fmt.Errorf("failed to create progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit signup: %w", err)
	}

	// Login event is best-effort; signup already succeeded
	if _, err := s.activityRepo.Append(firebaseUID, models.ActivityLogin, "Joined StellarStep", nil); err != nil {
		log.Printf("Warning: failed to record signup activity for %s: %v", firebaseUID, err)
	}

	return user, true, nil
}

// GetByFirebaseUID fetches a profile; unknown ids report ErrUserNotFound
func (s *UserService) GetByFirebaseUID(firebaseUID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update of display name and avatar.
// Role and parent secret are not mutable through this path.
func (s *UserService) UpdateProfile(firebaseUID string, username *string, avatarID *int) (*models.User, error) {
	user, err := s.GetByFirebaseUID(firebaseUID)
	if err != nil {
		return nil, err
	}

	if username != nil {
		if err := validation.ValidateUsername(*username); err != nil {
			return nil, err
		}
		user.Username = *username
	}
	if avatarID != nil && *avatarID > 0 {
		user.AvatarID = *avatarID
	}

	if err := s.userRepo.UpdateProfile(firebaseUID, user.Username, user.AvatarID); err != nil {
		return nil, err
	}

	return user, nil
}

// SetParentPassword hashes the plaintext secret, stores only the hash, and
// flips the role to parent. The plaintext is never logged or returned.
func (s *UserService) SetParentPassword(firebaseUID, password string) error {
	if err := validation.ValidateFirebaseUID(firebaseUID); err != nil {
		return err
	}
	if err := validation.ValidateParentPassword(password); err != nil {
		return err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	rows, err := s.userRepo.SetParentPassword(firebaseUID, hash)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// VerifyParentPassword checks a plaintext candidate against the stored hash.
// A user without a configured secret reports ErrParentPasswordNotSet, which
// callers can distinguish from a plain wrong-secret result.
func (s *UserService) VerifyParentPassword(firebaseUID, password string) (bool, error) {
	user, err := s.userRepo.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		return false, err
	}
	if user == nil || !user.HasParentPassword() {
		return false, ErrParentPasswordNotSet
	}

	return security.CheckPassword(password, user.ParentPasswordHash), nil
}
