package engine

import (
	"fmt"
	"time"
)

// MaxDepth is the hard ceiling on search depth. Nine branches per node make
// anything deeper combinatorially useless even with aggressive pruning.
const MaxDepth = 15

// Config is the flat, immutable configuration for one search session.
// It is passed in at session creation and never mutated mid-search, so a
// turn's behavior is fully reproducible from (config, evaluator, start state).
type Config struct {
	// Depth is the maximum tree depth (number of moves planned ahead).
	Depth int

	// ManualStepMode gates the ThinkingComplete -> ReadyToExecute
	// transition on an explicit AdvanceStep call instead of the timer.
	ManualStepMode bool

	// TargetThinkingTime is the per-frame time budget for expansion work.
	TargetThinkingTime time.Duration
	// MaxPathsPerFrame caps node expansions per frame regardless of time.
	MaxPathsPerFrame int
	// PostThinkingDelay pauses between ThinkingComplete and execution so an
	// observer can see the finished tree. Purely cosmetic.
	PostThinkingDelay time.Duration

	// EnablePathPruning turns on the off-track tolerance rule.
	EnablePathPruning bool
	// OffTrackTolerance is how many consecutive off-track nodes a branch
	// may accumulate before it is pruned.
	OffTrackTolerance int
	// MinTerrainQuality is the terrain quality below which a node counts
	// as off-track.
	MinTerrainQuality float64

	// EnableAggressivePruning prunes nodes scoring below a depth-scaled
	// threshold.
	EnableAggressivePruning bool
	ScorePruningThreshold   float64
	// DepthPruningFactor scales how sharply the prune threshold rises with
	// depth: 0 keeps it constant, 1 drives it to the maximum at full depth.
	DepthPruningFactor float64

	// EnableLookAheadPruning cuts branches whose projected track-exit risk
	// is already near-certain before any children are generated.
	EnableLookAheadPruning bool
	// LookAheadDistance is the number of steps projected when computing
	// track-exit risk.
	LookAheadDistance int

	// PruneInefficientMovements drops oscillating zig-zag branches.
	PruneInefficientMovements bool
	// PruneExcessiveSpeedAtTurns drops branches carrying too much speed
	// into a detected turn.
	PruneExcessiveSpeedAtTurns bool

	// Scoring weights. Each is independently in [0, maxWeight]; raising the
	// safety weights (exit penalty, return to asphalt) over the progress
	// weights produces a more cautious driver.
	DistanceWeight         float64
	SpeedWeight            float64
	TerrainWeight          float64
	DirectionWeight        float64
	PathWeight             float64
	ReturnToAsphaltWeight  float64
	CenterTrackWeight      float64
	TrackExitPenaltyWeight float64
}

const maxWeight = 10.0

// DefaultConfig returns a balanced configuration suitable for most tracks.
func DefaultConfig() Config {
	return Config{
		Depth:              5,
		TargetThinkingTime: 8 * time.Millisecond,
		MaxPathsPerFrame:   64,
		PostThinkingDelay:  0,

		EnablePathPruning: true,
		OffTrackTolerance: 2,
		MinTerrainQuality: 0.3,

		EnableAggressivePruning: true,
		ScorePruningThreshold:   0.25,
		DepthPruningFactor:      0.5,

		EnableLookAheadPruning: true,
		LookAheadDistance:      3,

		PruneInefficientMovements:  true,
		PruneExcessiveSpeedAtTurns: true,

		DistanceWeight:         1.5,
		SpeedWeight:            1.0,
		TerrainWeight:          2.0,
		DirectionWeight:        1.0,
		PathWeight:             1.0,
		ReturnToAsphaltWeight:  2.0,
		CenterTrackWeight:      0.5,
		TrackExitPenaltyWeight: 1.5,
	}
}

// Validate checks the configuration before any frontier work begins.
// A session constructed with an invalid config never leaves Idle.
func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > MaxDepth {
		return fmt.Errorf("depth must be in [1,%d], got %d", MaxDepth, c.Depth)
	}
	if c.TargetThinkingTime <= 0 {
		return fmt.Errorf("target thinking time must be positive, got %s", c.TargetThinkingTime)
	}
	if c.MaxPathsPerFrame < 1 {
		return fmt.Errorf("max paths per frame must be at least 1, got %d", c.MaxPathsPerFrame)
	}
	if c.PostThinkingDelay < 0 {
		return fmt.Errorf("post thinking delay must not be negative, got %s", c.PostThinkingDelay)
	}
	if c.OffTrackTolerance < 0 {
		return fmt.Errorf("off-track tolerance must not be negative, got %d", c.OffTrackTolerance)
	}
	if c.LookAheadDistance < 1 {
		return fmt.Errorf("look-ahead distance must be at least 1, got %d", c.LookAheadDistance)
	}
	for name, v := range map[string]float64{
		"minTerrainQuality":     c.MinTerrainQuality,
		"scorePruningThreshold": c.ScorePruningThreshold,
		"depthPruningFactor":    c.DepthPruningFactor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, v)
		}
	}
	total := 0.0
	for name, w := range map[string]float64{
		"distanceWeight":         c.DistanceWeight,
		"speedWeight":            c.SpeedWeight,
		"terrainWeight":          c.TerrainWeight,
		"directionWeight":        c.DirectionWeight,
		"pathWeight":             c.PathWeight,
		"returnToAsphaltWeight":  c.ReturnToAsphaltWeight,
		"centerTrackWeight":      c.CenterTrackWeight,
		"trackExitPenaltyWeight": c.TrackExitPenaltyWeight,
	} {
		if w < 0 || w > maxWeight {
			return fmt.Errorf("%s must be in [0,%g], got %g", name, maxWeight, w)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	return nil
}
