package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gridrace/api/internal/model"
)

type mockRaceRepo struct {
	mu    sync.Mutex
	races map[string]*model.Race
	turns map[string][]model.RaceTurn
}

func newMockRaceRepo() *mockRaceRepo {
	return &mockRaceRepo{
		races: make(map[string]*model.Race),
		turns: make(map[string][]model.RaceTurn),
	}
}

func (m *mockRaceRepo) Create(_ context.Context, trackName string) (*model.Race, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &model.Race{
		ID:        fmt.Sprintf("race-%d", len(m.races)+1),
		TrackName: trackName,
		Status:    "running",
		CreatedAt: time.Now(),
	}
	m.races[r.ID] = r
	return r, nil
}

func (m *mockRaceRepo) FindByID(_ context.Context, id string) (*model.Race, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.races[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockRaceRepo) ListRecent(_ context.Context, limit int) ([]model.Race, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Race
	for _, r := range m.races {
		result = append(result, *r)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockRaceRepo) Finish(_ context.Context, raceID, outcome string, turns int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.races[raceID]
	if !ok {
		return fmt.Errorf("race %s not found", raceID)
	}
	if outcome == model.OutcomeCancelled {
		r.Status = "cancelled"
	} else {
		r.Status = "finished"
	}
	r.Outcome = outcome
	r.Turns = turns
	now := time.Now()
	r.FinishedAt = &now
	return nil
}

func (m *mockRaceRepo) SaveTurn(_ context.Context, turn *model.RaceTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[turn.RaceID] = append(m.turns[turn.RaceID], *turn)
	return nil
}

func (m *mockRaceRepo) TurnsByRace(_ context.Context, raceID string) ([]model.RaceTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RaceTurn(nil), m.turns[raceID]...), nil
}

type mockRaceCache struct {
	mu        sync.Mutex
	states    map[string]json.RawMessage
	decisions map[string]json.RawMessage
}

func newMockRaceCache() *mockRaceCache {
	return &mockRaceCache{
		states:    make(map[string]json.RawMessage),
		decisions: make(map[string]json.RawMessage),
	}
}

func (m *mockRaceCache) SetRaceState(_ context.Context, raceID string, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[raceID] = state
	return nil
}

func (m *mockRaceCache) GetRaceState(_ context.Context, raceID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[raceID], nil
}

func (m *mockRaceCache) SetLatestDecision(_ context.Context, raceID string, decision json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[raceID] = decision
	return nil
}

func (m *mockRaceCache) GetLatestDecision(_ context.Context, raceID string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decisions[raceID], nil
}

func (m *mockRaceCache) DeleteRaceData(_ context.Context, raceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, raceID)
	delete(m.decisions, raceID)
	return nil
}

// recordingBroadcaster captures broadcast events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	raceID    string
	eventType string
	data      any
}

func (b *recordingBroadcaster) BroadcastRaceEvent(raceID string, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{raceID: raceID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.eventType
	}
	return types
}
