package repository

import (
	"context"
	"encoding/json"

	"github.com/gridrace/api/internal/model"
)

// RaceRepository defines the finished-race archive (Postgres).
type RaceRepository interface {
	Create(ctx context.Context, trackName string) (*model.Race, error)
	FindByID(ctx context.Context, id string) (*model.Race, error)
	ListRecent(ctx context.Context, limit int) ([]model.Race, error)
	Finish(ctx context.Context, raceID, outcome string, turns int) error
	SaveTurn(ctx context.Context, turn *model.RaceTurn) error
	TurnsByRace(ctx context.Context, raceID string) ([]model.RaceTurn, error)
}

// RaceCache defines live race state operations (Redis).
type RaceCache interface {
	SetRaceState(ctx context.Context, raceID string, state json.RawMessage) error
	GetRaceState(ctx context.Context, raceID string) (json.RawMessage, error)
	SetLatestDecision(ctx context.Context, raceID string, decision json.RawMessage) error
	GetLatestDecision(ctx context.Context, raceID string) (json.RawMessage, error)
	DeleteRaceData(ctx context.Context, raceID string) error
}
