package engine

// TerrainEvaluator supplies per-position quality and risk signals consumed
// by scoring and pruning. Implementations must behave as pure functions of
// their inputs for the duration of one turn; the search never assumes
// freshness beyond that. Regions with no terrain data must degrade to a
// low/neutral signal rather than fail, so a turn can always complete.
//
// All scalar results are in [0,1].
type TerrainEvaluator interface {
	// EvaluateTerrain returns the surface quality at a position: asphalt
	// near 1, holes and gravel severely penalized.
	EvaluateTerrain(pos Vec) float64

	// EvaluateTrackCenter returns how central the position is on the
	// track, 0 when fully off it.
	EvaluateTrackCenter(pos Vec) float64

	// EvaluateTrackExit projects 1-3 steps along the velocity direction
	// and returns a safety value, lower the sooner the projection leaves
	// the track.
	EvaluateTrackExit(pos, vel Vec) float64

	// TrackExitRisk accumulates inverse-terrain-quality risk over a
	// look-ahead window, weighted down with step distance.
	TrackExitRisk(pos, vel Vec, lookAheadSteps int) float64

	// TurnFactor is 0 when dir points straight at the target and rises
	// toward 1 as alignment worsens. A zero dir reads as neutral (0.5).
	TurnFactor(pos, dir Vec) float64

	// IsApproachingTurn reports whether alignment with the target
	// direction fell below the evaluator's turn threshold.
	IsApproachingTurn(pos, dir Vec) bool

	// NearestAsphalt searches outward for recovery guidance, returning
	// from unchanged if nothing is found within the radius.
	NearestAsphalt(from Vec, searchRadius int) Vec

	// EvaluateReturnToAsphalt scores an off-track move by how well it
	// heads back toward the nearest track surface.
	EvaluateReturnToAsphalt(pos, vel Vec) float64

	// Target is the fixed objective position progress is measured against.
	Target() Vec
}
