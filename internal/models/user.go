package models

import "time"

// Role identifies the account type of a user
type Role string

const (
	RoleChild  Role = "child"
	RoleParent Role = "parent"
)

// User represents a child (or parent-upgraded) account. The identity itself
// lives in Firebase; the backend only stores the opaque uid it hands us.
type User struct {
	ID                 int64     `json:"-"`
	FirebaseUID        string    `json:"firebaseUid"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	AvatarID           int       `json:"avatarId"`
	Role               Role      `json:"role"`
	ParentPasswordHash string    `json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
}

// HasParentPassword reports whether a parent access secret has been configured
func (u *User) HasParentPassword() bool {
	return u.ParentPasswordHash != ""
}
