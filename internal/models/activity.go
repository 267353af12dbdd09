package models

import "time"

// ActivityType enumerates the kinds of events recorded in the activity log
type ActivityType string

const (
	ActivityTaskCompleted    ActivityType = "task_completed"
	ActivityGamePlayed       ActivityType = "game_played"
	ActivityBadgeEarned      ActivityType = "badge_earned"
	ActivityLogin            ActivityType = "login"
	ActivitySpaceSchoolVisit ActivityType = "space_school_visit"
)

// IsValid reports whether t is one of the known activity types
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTaskCompleted, ActivityGamePlayed, ActivityBadgeEarned,
		ActivityLogin, ActivitySpaceSchoolVisit:
		return true
	}
	return false
}

// ActivityLog is an immutable timestamped event describing one user action.
// Entries are never mutated or deleted and are read newest-first.
type ActivityLog struct {
	ID          int64          `json:"id"`
	UserID      string         `json:"userId"`
	Type        ActivityType   `json:"activityType"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"timestamp"`
}
