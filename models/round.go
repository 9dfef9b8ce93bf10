package models

import "time"

type Round struct {
	ID        int       `json:"id" db:"id"`
	Number    int       `json:"number" db:"round_number"`
	Seed      int64     `json:"seed" db:"seed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Teams   []Team  `json:"teams" db:"-"`
	Matches []Match `json:"matches" db:"-"`
	Byes    []Bye   `json:"byes" db:"-"`
}

// Complete reports whether every match of the round has a winner.
func (r *Round) Complete() bool {
	for _, m := range r.Matches {
		if m.WinnerTeamID == nil {
			return false
		}
	}
	return len(r.Matches) > 0
}

// HasResults reports whether at least one match has a winner.
func (r *Round) HasResults() bool {
	for _, m := range r.Matches {
		if m.WinnerTeamID != nil {
			return true
		}
	}
	return false
}

// Bye records a player sitting out a round.
type Bye struct {
	RoundID     int `json:"round_id" db:"round_id"`
	RoundNumber int `json:"round_number" db:"round_number"`
	PlayerID    int `json:"player_id" db:"player_id"`
}
