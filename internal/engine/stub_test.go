package engine

import "time"

// stubEvaluator is a controllable TerrainEvaluator for tests. Unset
// function fields fall back to a flat, safe track with the target at
// (10, 0).
type stubEvaluator struct {
	target      Vec
	terrain     func(Vec) float64
	center      func(Vec) float64
	exit        func(Vec, Vec) float64
	exitRisk    func(Vec, Vec, int) float64
	turnFactor  func(Vec, Vec) float64
	approaching func(Vec, Vec) bool
	recovery    func(Vec, Vec) float64
}

func newStubEvaluator() *stubEvaluator {
	return &stubEvaluator{target: Vec{X: 10, Y: 0}}
}

func (s *stubEvaluator) EvaluateTerrain(pos Vec) float64 {
	if s.terrain != nil {
		return s.terrain(pos)
	}
	return 1.0
}

func (s *stubEvaluator) EvaluateTrackCenter(pos Vec) float64 {
	if s.center != nil {
		return s.center(pos)
	}
	return 1.0
}

func (s *stubEvaluator) EvaluateTrackExit(pos, vel Vec) float64 {
	if s.exit != nil {
		return s.exit(pos, vel)
	}
	return 1.0
}

func (s *stubEvaluator) TrackExitRisk(pos, vel Vec, lookAheadSteps int) float64 {
	if s.exitRisk != nil {
		return s.exitRisk(pos, vel, lookAheadSteps)
	}
	return 0.0
}

func (s *stubEvaluator) TurnFactor(pos, dir Vec) float64 {
	if s.turnFactor != nil {
		return s.turnFactor(pos, dir)
	}
	if dir.IsZero() {
		return 0.5
	}
	return 0.0
}

func (s *stubEvaluator) IsApproachingTurn(pos, dir Vec) bool {
	if s.approaching != nil {
		return s.approaching(pos, dir)
	}
	return false
}

func (s *stubEvaluator) NearestAsphalt(from Vec, searchRadius int) Vec {
	return from
}

func (s *stubEvaluator) EvaluateReturnToAsphalt(pos, vel Vec) float64 {
	if s.recovery != nil {
		return s.recovery(pos, vel)
	}
	return 1.0
}

func (s *stubEvaluator) Target() Vec { return s.target }

// fakeClock is an injectable time source. Every reading advances it by
// step, so frame budgets can be driven deterministically.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// testConfig is a default config with every pruning rule switched off,
// so tree shape is predictable unless a test opts back in.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EnablePathPruning = false
	cfg.EnableAggressivePruning = false
	cfg.EnableLookAheadPruning = false
	cfg.PruneInefficientMovements = false
	cfg.PruneExcessiveSpeedAtTurns = false
	return cfg
}
