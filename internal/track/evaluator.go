package track

import (
	"math"

	"github.com/gridrace/api/internal/engine"
)

// Surface qualities. Gravel and unmapped space are both penalized severely
// relative to asphalt; holes in the tilemap rank just above gravel.
const (
	qualityAsphalt = 1.0
	qualityNone    = 0.2
	qualityGravel  = 0.1
)

const (
	// centerRadius is the Chebyshev radius sampled when measuring how
	// central a position sits on the track.
	centerRadius = 2
	// centerPower compresses the asphalt fraction so near-center
	// positions stand out.
	centerPower = 1.5

	// exitProjectionSteps is how far EvaluateTrackExit looks ahead.
	exitProjectionSteps = 3

	// nearZeroQuality marks terrain bad enough to spike exit risk.
	nearZeroQuality = 0.25
	// exitRiskSpike is the extra risk added per near-zero-quality step.
	exitRiskSpike = 0.5

	// turnAlignmentThreshold: alignment with the target direction below
	// this reads as an approaching turn.
	turnAlignmentThreshold = 0.5

	// recoverySearchRadius bounds the nearest-asphalt spiral search used
	// for off-track recovery scoring.
	recoverySearchRadius = 6
)

// Evaluator derives the bounded quality/risk signals the search engine
// consumes from a static track. Terrain lookups are cached per grid cell;
// all methods are pure functions of their inputs.
type Evaluator struct {
	track   *Track
	terrain map[engine.Vec]float64
}

var _ engine.TerrainEvaluator = (*Evaluator)(nil)

// NewEvaluator creates an evaluator for a track.
func NewEvaluator(t *Track) *Evaluator {
	return &Evaluator{
		track:   t,
		terrain: make(map[engine.Vec]float64),
	}
}

// Target returns the position progress is measured against.
func (e *Evaluator) Target() engine.Vec { return e.track.Target() }

// EvaluateTerrain returns the surface quality at a position.
func (e *Evaluator) EvaluateTerrain(pos engine.Vec) float64 {
	if q, ok := e.terrain[pos]; ok {
		return q
	}
	var q float64
	switch e.track.At(pos) {
	case TileAsphalt:
		q = qualityAsphalt
	case TileGravel:
		q = qualityGravel
	default:
		q = qualityNone
	}
	e.terrain[pos] = q
	return q
}

// EvaluateTrackCenter returns the power-compressed fraction of asphalt
// within a fixed radius, 0 for positions that are off the track entirely.
func (e *Evaluator) EvaluateTrackCenter(pos engine.Vec) float64 {
	if e.track.At(pos) != TileAsphalt {
		return 0
	}
	asphalt, total := 0, 0
	for dy := -centerRadius; dy <= centerRadius; dy++ {
		for dx := -centerRadius; dx <= centerRadius; dx++ {
			total++
			if e.track.At(engine.Vec{X: pos.X + dx, Y: pos.Y + dy}) == TileAsphalt {
				asphalt++
			}
		}
	}
	return math.Pow(float64(asphalt)/float64(total), centerPower)
}

// EvaluateTrackExit projects 1-3 cells along the velocity direction and
// returns a safety value: 1 when everything ahead is asphalt, lower the
// sooner the projection leaves it.
func (e *Evaluator) EvaluateTrackExit(pos, vel engine.Vec) float64 {
	dir := stepDir(vel)
	if dir.IsZero() {
		return 1
	}
	p := pos
	for k := 1; k <= exitProjectionSteps; k++ {
		p = p.Add(dir)
		if e.track.At(p) != TileAsphalt {
			return float64(k-1) / float64(exitProjectionSteps)
		}
	}
	return 1
}

// TrackExitRisk accumulates inverse-terrain-quality risk along the actual
// velocity over a look-ahead window. Each step is weighted by 1/distance,
// with an extra spike when its terrain quality is near zero, and the total
// is normalized into [0,1]. Standing still carries no risk.
func (e *Evaluator) TrackExitRisk(pos, vel engine.Vec, lookAheadSteps int) float64 {
	if vel.IsZero() || lookAheadSteps < 1 {
		return 0
	}
	var risk, norm float64
	p := pos
	for k := 1; k <= lookAheadSteps; k++ {
		p = p.Add(vel)
		w := 1 / float64(k)
		q := e.EvaluateTerrain(p)
		risk += (1 - q) * w
		if q < nearZeroQuality {
			risk += exitRiskSpike * w
		}
		norm += w
	}
	return clamp01(risk / (norm * (1 + exitRiskSpike)))
}

// TurnFactor is 0 when dir points straight at the target, rising toward 1
// as alignment worsens. A zero dir has no heading and reads as neutral.
func (e *Evaluator) TurnFactor(pos, dir engine.Vec) float64 {
	if dir.IsZero() {
		return 0.5
	}
	to := e.track.Target().Sub(pos)
	if to.IsZero() {
		return 0
	}
	align := dir.Dot(to) / (dir.Length() * to.Length())
	return clamp01((1 - align) / 2)
}

// IsApproachingTurn reports whether alignment with the target direction has
// fallen below the turn threshold.
func (e *Evaluator) IsApproachingTurn(pos, dir engine.Vec) bool {
	if dir.IsZero() {
		return false
	}
	to := e.track.Target().Sub(pos)
	if to.IsZero() {
		return false
	}
	align := dir.Dot(to) / (dir.Length() * to.Length())
	return align < turnAlignmentThreshold
}

// NearestAsphalt searches outward ring by ring for the closest asphalt
// cell, returning from unchanged when nothing lies within the radius.
func (e *Evaluator) NearestAsphalt(from engine.Vec, searchRadius int) engine.Vec {
	if e.track.At(from) == TileAsphalt {
		return from
	}
	for r := 1; r <= searchRadius; r++ {
		best := from
		bestDist := math.MaxFloat64
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				// Ring cells only; inner rings were already scanned.
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				p := engine.Vec{X: from.X + dx, Y: from.Y + dy}
				if e.track.At(p) != TileAsphalt {
					continue
				}
				if d := from.Dist(p); d < bestDist {
					best = p
					bestDist = d
				}
			}
		}
		if bestDist < math.MaxFloat64 {
			return best
		}
	}
	return from
}

// EvaluateReturnToAsphalt scores an off-track move by blending its
// alignment with the recovery direction and its proximity to the nearest
// track surface. On-track positions score full; stranded positions with no
// asphalt in range score zero.
func (e *Evaluator) EvaluateReturnToAsphalt(pos, vel engine.Vec) float64 {
	nearest := e.NearestAsphalt(pos, recoverySearchRadius)
	if nearest == pos {
		if e.track.At(pos) == TileAsphalt {
			return 1
		}
		return 0
	}
	toTrack := nearest.Sub(pos)
	proximity := 1 / (1 + toTrack.Length())
	alignment := 0.5
	if !vel.IsZero() {
		alignment = clamp01((1 + vel.Dot(toTrack)/(vel.Length()*toTrack.Length())) / 2)
	}
	return clamp01(0.6*alignment + 0.4*proximity)
}

// stepDir reduces a velocity to its unit direction per axis.
func stepDir(v engine.Vec) engine.Vec {
	return engine.Vec{X: sign(v.X), Y: sign(v.Y)}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
