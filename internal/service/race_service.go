package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridrace/api/internal/engine"
	"github.com/gridrace/api/internal/model"
	"github.com/gridrace/api/internal/repository"
	"github.com/gridrace/api/internal/track"
)

var (
	ErrRaceNotFound   = errors.New("race not found")
	ErrRaceNotRunning = errors.New("race is not running")
	ErrUnknownTrack   = errors.New("unknown track")
)

// Event types broadcast over the hub.
const (
	EventRaceStarted   = "race_started"
	EventTurnDecided   = "turn_decided"
	EventRaceFinished  = "race_finished"
	EventRaceCancelled = "race_cancelled"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	defaultMaxTurns      = 200
	listLimit            = 50
)

// RaceOptions carries per-race overrides for the search configuration.
// Nil fields keep the defaults. Durations are milliseconds.
type RaceOptions struct {
	Depth                *int `json:"depth"`
	TargetThinkingTimeMs *int `json:"target_thinking_time_ms"`
	MaxPathsPerFrame     *int `json:"max_paths_per_frame"`
	PostThinkingDelayMs  *int `json:"post_thinking_delay_ms"`
	MaxTurns             *int `json:"max_turns"`
}

// TurnUpdate is the payload broadcast for each committed decision.
type TurnUpdate struct {
	RaceID     string     `json:"race_id"`
	Turn       int        `json:"turn"`
	Position   engine.Vec `json:"position"`
	Velocity   engine.Vec `json:"velocity"`
	Score      float64    `json:"score"`
	Quality    string     `json:"quality"`
	Fallback   bool       `json:"fallback"`
	Expansions int        `json:"expansions"`
}

// raceSnapshot is the live state mirrored into the cache each turn.
type raceSnapshot struct {
	RaceID    string     `json:"race_id"`
	TrackName string     `json:"track_name"`
	Turn      int        `json:"turn"`
	Position  engine.Vec `json:"position"`
	Velocity  engine.Vec `json:"velocity"`
	State     string     `json:"state"`
}

// liveRace is a running race loop.
type liveRace struct {
	id        string
	trackName string
	session   *engine.Session
	target    engine.Vec
	position  engine.Vec
	velocity  engine.Vec
	turn      int
	maxTurns  int
	cancel    context.CancelFunc
	done      chan struct{}
}

// RaceService drives races turn by turn. Each race runs its own frame
// loop goroutine that steps the search session once per tick, commits
// decisions, and archives turns. The repository and cache may be nil,
// in which case the race runs without persistence.
type RaceService struct {
	raceRepo    repository.RaceRepository
	cache       repository.RaceCache
	broadcaster Broadcaster

	frameInterval time.Duration

	mu    sync.RWMutex
	races map[string]*liveRace
}

// NewRaceService creates a RaceService.
func NewRaceService(raceRepo repository.RaceRepository, cache repository.RaceCache, broadcaster Broadcaster) *RaceService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &RaceService{
		raceRepo:      raceRepo,
		cache:         cache,
		broadcaster:   broadcaster,
		frameInterval: defaultFrameInterval,
		races:         make(map[string]*liveRace),
	}
}

// CreateRace starts a new race on the named track and returns its record.
func (s *RaceService) CreateRace(ctx context.Context, trackName string, opts RaceOptions) (*model.Race, error) {
	trk, err := track.ByName(trackName)
	if err != nil {
		return nil, ErrUnknownTrack
	}

	cfg := engine.DefaultConfig()
	maxTurns := defaultMaxTurns
	if opts.Depth != nil {
		cfg.Depth = *opts.Depth
	}
	if opts.TargetThinkingTimeMs != nil {
		cfg.TargetThinkingTime = time.Duration(*opts.TargetThinkingTimeMs) * time.Millisecond
	}
	if opts.MaxPathsPerFrame != nil {
		cfg.MaxPathsPerFrame = *opts.MaxPathsPerFrame
	}
	if opts.PostThinkingDelayMs != nil {
		cfg.PostThinkingDelay = time.Duration(*opts.PostThinkingDelayMs) * time.Millisecond
	}
	if opts.MaxTurns != nil {
		maxTurns = *opts.MaxTurns
	}

	eval := track.NewEvaluator(trk)
	session, err := engine.NewSession(cfg, eval)
	if err != nil {
		return nil, err
	}

	var race *model.Race
	if s.raceRepo != nil {
		race, err = s.raceRepo.Create(ctx, trackName)
		if err != nil {
			return nil, err
		}
	} else {
		race = &model.Race{
			ID:        fmt.Sprintf("local-%d", time.Now().UnixNano()),
			TrackName: trackName,
			Status:    "running",
			CreatedAt: time.Now().UTC(),
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	lr := &liveRace{
		id:        race.ID,
		trackName: trackName,
		session:   session,
		target:    trk.Target(),
		position:  trk.Start(),
		maxTurns:  maxTurns,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.races[race.ID] = lr
	s.mu.Unlock()

	s.broadcaster.BroadcastRaceEvent(race.ID, EventRaceStarted, map[string]any{
		"race_id":    race.ID,
		"track_name": trackName,
		"start":      lr.position,
		"target":     lr.target,
	})
	log.Info().Str("raceId", race.ID).Str("track", trackName).
		Int("depth", cfg.Depth).Int("maxTurns", maxTurns).Msg("Race started")

	go s.run(runCtx, lr)

	return race, nil
}

// GetRace returns a race by ID.
func (s *RaceService) GetRace(ctx context.Context, raceID string) (*model.Race, error) {
	if s.raceRepo == nil {
		return nil, ErrRaceNotFound
	}
	race, err := s.raceRepo.FindByID(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if race == nil {
		return nil, ErrRaceNotFound
	}
	return race, nil
}

// ListRaces returns the most recent races.
func (s *RaceService) ListRaces(ctx context.Context) ([]model.Race, error) {
	if s.raceRepo == nil {
		return nil, nil
	}
	return s.raceRepo.ListRecent(ctx, listLimit)
}

// RaceTurns returns a race's archived turns in order.
func (s *RaceService) RaceTurns(ctx context.Context, raceID string) ([]model.RaceTurn, error) {
	race, err := s.GetRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	return s.raceRepo.TurnsByRace(ctx, race.ID)
}

// LiveState returns the cached live snapshot for a race, nil when absent.
func (s *RaceService) LiveState(ctx context.Context, raceID string) (json.RawMessage, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.GetRaceState(ctx, raceID)
}

// LatestDecision returns the cached payload of a race's most recent
// committed decision, nil when absent.
func (s *RaceService) LatestDecision(ctx context.Context, raceID string) (json.RawMessage, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.GetLatestDecision(ctx, raceID)
}

// CancelRace stops a running race.
func (s *RaceService) CancelRace(ctx context.Context, raceID string) error {
	s.mu.RLock()
	lr, ok := s.races[raceID]
	s.mu.RUnlock()
	if !ok {
		return ErrRaceNotRunning
	}
	lr.cancel()
	<-lr.done
	return nil
}

// Shutdown cancels all running races and waits for their loops to exit.
func (s *RaceService) Shutdown() {
	s.mu.RLock()
	live := make([]*liveRace, 0, len(s.races))
	for _, lr := range s.races {
		live = append(live, lr)
	}
	s.mu.RUnlock()

	for _, lr := range live {
		lr.cancel()
		<-lr.done
	}
}

// run is the per-race frame loop. One frame per tick, matching the
// cooperative scheduler inside the session.
func (s *RaceService) run(ctx context.Context, lr *liveRace) {
	defer close(lr.done)

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lr.session.Cancel()
			s.finishRace(lr, model.OutcomeCancelled)
			return
		case <-ticker.C:
			if finished := s.frame(ctx, lr); finished {
				return
			}
		}
	}
}

// frame advances the race by one host frame. Returns true when the race
// is over.
func (s *RaceService) frame(ctx context.Context, lr *liveRace) bool {
	switch lr.session.State() {
	case engine.StateIdle:
		lr.session.Begin(lr.position, lr.velocity)
		return false
	case engine.StateReadyToExecute:
		return s.executeTurn(ctx, lr)
	default:
		lr.session.Step()
		return false
	}
}

// executeTurn commits the session's decision, archives it, and checks
// for race completion.
func (s *RaceService) executeTurn(ctx context.Context, lr *liveRace) bool {
	expansions := lr.session.Expansions()
	dec, ok := lr.session.Decide()
	if !ok {
		log.Error().Str("raceId", lr.id).Str("state", lr.session.State().String()).Msg("Decision unavailable")
		s.finishRace(lr, model.OutcomeCancelled)
		return true
	}

	lr.position = dec.Position
	lr.velocity = dec.Velocity
	lr.turn++

	update := TurnUpdate{
		RaceID:     lr.id,
		Turn:       lr.turn,
		Position:   lr.position,
		Velocity:   lr.velocity,
		Fallback:   dec.Fallback,
		Expansions: expansions,
		Quality:    dec.Path.Quality.String(),
		Score:      dec.Path.AverageScore,
	}

	s.archiveTurn(ctx, lr, update)
	s.broadcaster.BroadcastRaceEvent(lr.id, EventTurnDecided, update)

	lr.session.ConfirmExecuted()

	if reachedTarget(lr.position, lr.target) {
		s.finishRace(lr, model.OutcomeFinished)
		return true
	}
	if lr.turn >= lr.maxTurns {
		s.finishRace(lr, model.OutcomeMaxTurns)
		return true
	}
	return false
}

// archiveTurn persists the turn to Postgres and mirrors live state to Redis.
func (s *RaceService) archiveTurn(ctx context.Context, lr *liveRace, update TurnUpdate) {
	if s.raceRepo != nil {
		turn := &model.RaceTurn{
			RaceID:     lr.id,
			Turn:       update.Turn,
			PositionX:  update.Position.X,
			PositionY:  update.Position.Y,
			VelocityX:  update.Velocity.X,
			VelocityY:  update.Velocity.Y,
			Score:      update.Score,
			Quality:    update.Quality,
			Fallback:   update.Fallback,
			Expansions: update.Expansions,
		}
		if err := s.raceRepo.SaveTurn(ctx, turn); err != nil {
			log.Error().Err(err).Str("raceId", lr.id).Int("turn", update.Turn).Msg("Failed to save turn")
		}
	}

	if s.cache != nil {
		snap := raceSnapshot{
			RaceID:    lr.id,
			TrackName: lr.trackName,
			Turn:      update.Turn,
			Position:  update.Position,
			Velocity:  update.Velocity,
			State:     "running",
		}
		if data, err := json.Marshal(snap); err == nil {
			if err := s.cache.SetRaceState(ctx, lr.id, data); err != nil {
				log.Warn().Err(err).Str("raceId", lr.id).Msg("Failed to cache race state")
			}
		}
		if data, err := json.Marshal(update); err == nil {
			if err := s.cache.SetLatestDecision(ctx, lr.id, data); err != nil {
				log.Warn().Err(err).Str("raceId", lr.id).Msg("Failed to cache decision")
			}
		}
	}
}

// finishRace records the outcome and removes the race from the live set.
func (s *RaceService) finishRace(lr *liveRace, outcome string) {
	s.mu.Lock()
	delete(s.races, lr.id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.raceRepo != nil {
		if err := s.raceRepo.Finish(ctx, lr.id, outcome, lr.turn); err != nil {
			log.Error().Err(err).Str("raceId", lr.id).Msg("Failed to finish race")
		}
	}
	if s.cache != nil {
		if err := s.cache.DeleteRaceData(ctx, lr.id); err != nil {
			log.Warn().Err(err).Str("raceId", lr.id).Msg("Failed to delete race cache")
		}
	}

	event := EventRaceFinished
	if outcome == model.OutcomeCancelled {
		event = EventRaceCancelled
	}
	s.broadcaster.BroadcastRaceEvent(lr.id, event, map[string]any{
		"race_id": lr.id,
		"outcome": outcome,
		"turns":   lr.turn,
	})
	log.Info().Str("raceId", lr.id).Str("outcome", outcome).Int("turns", lr.turn).Msg("Race over")
}

// reachedTarget reports whether pos is on or adjacent to the target cell.
// Adjacency counts because a fast car can step over the exact cell.
func reachedTarget(pos, target engine.Vec) bool {
	dx := pos.X - target.X
	dy := pos.Y - target.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 1 && dy <= 1
}
