package model

import "time"

// Race is one AI-driven run around a track.
type Race struct {
	ID         string     `json:"id"`
	TrackName  string     `json:"track_name"`
	Status     string     `json:"status"` // running, finished, cancelled
	Outcome    string     `json:"outcome,omitempty"`
	Turns      int        `json:"turns"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Race outcomes.
const (
	OutcomeFinished  = "finished"
	OutcomeMaxTurns  = "max_turns"
	OutcomeCancelled = "cancelled"
)

// RaceTurn is one committed decision within a race.
type RaceTurn struct {
	ID         string    `json:"id"`
	RaceID     string    `json:"race_id"`
	Turn       int       `json:"turn"`
	PositionX  int       `json:"position_x"`
	PositionY  int       `json:"position_y"`
	VelocityX  int       `json:"velocity_x"`
	VelocityY  int       `json:"velocity_y"`
	Score      float64   `json:"score"`
	Quality    string    `json:"quality"`
	Fallback   bool      `json:"fallback"`
	Expansions int       `json:"expansions"`
	CreatedAt  time.Time `json:"created_at"`
}
