package repository

import (
	"database/sql"
	"fmt"
	"time"

	"stellarstep/internal/database"
	"stellarstep/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *UserRepository) WithTx(tx *database.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

const userColumns = `id, firebase_uid, email, username, avatar_id, role, COALESCE(parent_password_hash, ''), created_at`

// CreateUser inserts a new user keyed by its external identity id
func (r *UserRepository) CreateUser(firebaseUID, email, username string, avatarID int) (*models.User, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO users (firebase_uid, email, username, avatar_id, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, firebaseUID, email, username, avatarID, string(models.RoleChild), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:          id,
		FirebaseUID: firebaseUID,
		Email:       email,
		Username:    username,
		AvatarID:    avatarID,
		Role:        models.RoleChild,
		CreatedAt:   now,
	}, nil
}

// GetUserByFirebaseUID retrieves a user by external identity id.
// Returns nil without error when no such user exists.
func (r *UserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE firebase_uid = ?
	`
	user := &models.User{}
	err := r.db.QueryRow(query, firebaseUID).Scan(
		&user.ID,
		&user.FirebaseUID,
		&user.Email,
		&user.Username,
		&user.AvatarID,
		&user.Role,
		&user.ParentPasswordHash,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the display name and avatar of a user
func (r *UserRepository) UpdateProfile(firebaseUID, username string, avatarID int) error {
	query := `
		UPDATE users
		SET username = ?, avatar_id = ?
		WHERE firebase_uid = ?
	`
	_, err := r.db.Exec(query, username, avatarID, firebaseUID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetParentPassword stores the parent secret hash and flips the role to parent.
// Returns the number of rows updated so callers can detect an unknown user.
func (r *UserRepository) SetParentPassword(firebaseUID, passwordHash string) (int64, error) {
	query := `
		UPDATE users
		SET parent_password_hash = ?, role = ?
		WHERE firebase_uid = ?
	`
	result, err := r.db.Exec(query, passwordHash, string(models.RoleParent), firebaseUID)
	if err != nil {
		return 0, fmt.Errorf("failed to set parent password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read update result: %w", err)
	}
	return rows, nil
}
