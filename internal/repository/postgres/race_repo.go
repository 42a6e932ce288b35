package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridrace/api/internal/model"
)

// RaceRepo handles race and race_turn database operations.
type RaceRepo struct {
	db *sql.DB
}

// NewRaceRepo creates a RaceRepo.
func NewRaceRepo(db *sql.DB) *RaceRepo {
	return &RaceRepo{db: db}
}

// Create inserts a new running race.
func (r *RaceRepo) Create(ctx context.Context, trackName string) (*model.Race, error) {
	var race model.Race
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO races (track_name) VALUES ($1)
		 RETURNING id, track_name, status, turns, created_at`,
		trackName,
	).Scan(&race.ID, &race.TrackName, &race.Status, &race.Turns, &race.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create race: %w", err)
	}
	return &race, nil
}

// FindByID returns a race by ID, or nil if it does not exist.
func (r *RaceRepo) FindByID(ctx context.Context, id string) (*model.Race, error) {
	var race model.Race
	var outcome sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, track_name, status, outcome, turns, created_at, finished_at
		 FROM races WHERE id = $1`, id,
	).Scan(&race.ID, &race.TrackName, &race.Status, &outcome, &race.Turns, &race.CreatedAt, &race.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find race: %w", err)
	}
	race.Outcome = outcome.String
	return &race, nil
}

// ListRecent returns the most recently created races.
func (r *RaceRepo) ListRecent(ctx context.Context, limit int) ([]model.Race, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, track_name, status, outcome, turns, created_at, finished_at
		 FROM races ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	defer rows.Close()

	var races []model.Race
	for rows.Next() {
		var race model.Race
		var outcome sql.NullString
		if err := rows.Scan(&race.ID, &race.TrackName, &race.Status, &outcome, &race.Turns,
			&race.CreatedAt, &race.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan race: %w", err)
		}
		race.Outcome = outcome.String
		races = append(races, race)
	}
	return races, rows.Err()
}

// Finish marks a race finished (or cancelled) with its outcome and final
// turn count.
func (r *RaceRepo) Finish(ctx context.Context, raceID, outcome string, turns int) error {
	status := "finished"
	if outcome == model.OutcomeCancelled {
		status = "cancelled"
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE races SET status = $2, outcome = $3, turns = $4, finished_at = NOW()
		 WHERE id = $1`,
		raceID, status, outcome, turns)
	if err != nil {
		return fmt.Errorf("finish race: %w", err)
	}
	return nil
}

// SaveTurn archives one committed decision.
func (r *RaceRepo) SaveTurn(ctx context.Context, turn *model.RaceTurn) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO race_turns
		   (race_id, turn, position_x, position_y, velocity_x, velocity_y,
		    score, quality, fallback, expansions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		turn.RaceID, turn.Turn, turn.PositionX, turn.PositionY,
		turn.VelocityX, turn.VelocityY, turn.Score, turn.Quality,
		turn.Fallback, turn.Expansions)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// TurnsByRace returns a race's turns in order.
func (r *RaceRepo) TurnsByRace(ctx context.Context, raceID string) ([]model.RaceTurn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, race_id, turn, position_x, position_y, velocity_x, velocity_y,
		        score, quality, fallback, expansions, created_at
		 FROM race_turns WHERE race_id = $1 ORDER BY turn`, raceID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.RaceTurn
	for rows.Next() {
		var t model.RaceTurn
		if err := rows.Scan(&t.ID, &t.RaceID, &t.Turn, &t.PositionX, &t.PositionY,
			&t.VelocityX, &t.VelocityY, &t.Score, &t.Quality, &t.Fallback,
			&t.Expansions, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
