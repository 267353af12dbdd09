package models

import "time"

// Task is a unit of work owned by one user. The order value is assigned as
// the count of the user's tasks at creation time — append-only, never
// reindexed on delete.
type Task struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	PlanetName  string     `json:"planetName"`
	PlanetColor string     `json:"planetColor"`
	Completed   bool       `json:"completed"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"date"`
	CompletedAt *time.Time `json:"completedAt"`
}

// DefaultPlanetColor is used when a task is created without a color
const DefaultPlanetColor = "#6366f1"
