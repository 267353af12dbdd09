package models

import "time"

// GameName identifies one of the built-in mini-games. The set is closed so
// that unrecognized values can be handled exhaustively.
type GameName string

const (
	GamePlanetMatcher GameName = "planetMatcher"
	GameAlienEmotions GameName = "alienEmotions"
)

// ParseGameName maps a wire string onto a known game. Unknown strings return
// ok=false; callers treat them as a no-op, not an error.
func ParseGameName(s string) (GameName, bool) {
	switch GameName(s) {
	case GamePlanetMatcher:
		return GamePlanetMatcher, true
	case GameAlienEmotions:
		return GameAlienEmotions, true
	}
	return "", false
}

// Badge is a named achievement marker, awarded at most once per name per user
type Badge struct {
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	EarnedAt time.Time `json:"earnedAt"`
}

// GameCounts holds per-game play counters
type GameCounts struct {
	PlanetMatcher int `json:"planetMatcher"`
	AlienEmotions int `json:"alienEmotions"`
}

// Progress is the per-user aggregate of badges, counters, and streak state.
// Exactly one exists per user; lookups find-or-create on first access.
// StreakDays has no computation rule anywhere in the system — it is stored
// and reported as-is.
type Progress struct {
	ID                  int64      `json:"-"`
	UserID              string     `json:"userId"`
	Badges              []Badge    `json:"badges"`
	TotalTasksCompleted int        `json:"totalTasksCompleted"`
	StreakDays          int        `json:"streakDays"`
	LastActivityAt      time.Time  `json:"lastActivityDate"`
	GamesPlayed         GameCounts `json:"gamesPlayed"`
}

// HasBadge reports whether a badge with the given name has been awarded
func (p *Progress) HasBadge(name string) bool {
	for _, b := range p.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}
