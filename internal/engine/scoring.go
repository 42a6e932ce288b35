package engine

// Factor names recorded on every scored node for diagnostics.
const (
	FactorTerrain    = "terrain"
	FactorDistance   = "distance"
	FactorSpeed      = "speed"
	FactorDirection  = "direction"
	FactorCenter     = "center"
	FactorExitSafety = "exitSafety"
	FactorExitRisk   = "exitRisk"
	FactorRecovery   = "recovery"
)

// speedNormalization is the velocity magnitude that maps to a full speed
// sub-score. Faster is still clamped to 1, keeping the score bounded.
const speedNormalization = 8.0

// scorer computes per-node sub-scores and their weighted aggregate.
type scorer struct {
	cfg  Config
	eval TerrainEvaluator
}

// scoreNode fills in the node's cached sub-scores, factors map, and
// aggregate score. Each sub-score is computed exactly once.
//
// The aggregate is a weighted mean normalized by the sum of the weights
// actually applied, so it is monotonic in every sub-score and lands in
// [0,1] regardless of depth. Exit risk participates as its complement
// (1 - risk) under the penalty weight; the recovery score only joins the
// mean for off-track nodes, where steering back matters more than raw
// progress.
func (s scorer) scoreNode(n *PathNode, parentPos Vec) {
	target := s.eval.Target()

	n.TerrainQuality = s.eval.EvaluateTerrain(n.Position)
	n.DistanceScore = distanceScore(parentPos, n.Position, target)
	n.SpeedScore = clamp01(n.Velocity.Length() / speedNormalization)
	n.DirectionScore = clamp01(1 - s.eval.TurnFactor(n.Position, n.Velocity))
	n.TrackExitRisk = clamp01(s.eval.TrackExitRisk(n.Position, n.Velocity, s.cfg.LookAheadDistance))

	center := s.eval.EvaluateTrackCenter(n.Position)
	exitSafety := s.eval.EvaluateTrackExit(n.Position, n.Velocity)
	offTrack := n.TerrainQuality < s.cfg.MinTerrainQuality

	weighted := s.cfg.DistanceWeight*n.DistanceScore +
		s.cfg.SpeedWeight*n.SpeedScore +
		s.cfg.TerrainWeight*n.TerrainQuality +
		s.cfg.DirectionWeight*n.DirectionScore +
		s.cfg.CenterTrackWeight*center +
		s.cfg.PathWeight*exitSafety +
		s.cfg.TrackExitPenaltyWeight*(1-n.TrackExitRisk)
	totalWeight := s.cfg.DistanceWeight + s.cfg.SpeedWeight + s.cfg.TerrainWeight +
		s.cfg.DirectionWeight + s.cfg.CenterTrackWeight + s.cfg.PathWeight +
		s.cfg.TrackExitPenaltyWeight

	n.Factors = map[string]float64{
		FactorTerrain:    n.TerrainQuality,
		FactorDistance:   n.DistanceScore,
		FactorSpeed:      n.SpeedScore,
		FactorDirection:  n.DirectionScore,
		FactorCenter:     center,
		FactorExitSafety: exitSafety,
		FactorExitRisk:   n.TrackExitRisk,
	}

	if offTrack && s.cfg.ReturnToAsphaltWeight > 0 {
		recovery := s.eval.EvaluateReturnToAsphalt(n.Position, n.Velocity)
		weighted += s.cfg.ReturnToAsphaltWeight * recovery
		totalWeight += s.cfg.ReturnToAsphaltWeight
		n.Factors[FactorRecovery] = recovery
	}

	if totalWeight > 0 {
		n.Score = clamp01(weighted / totalWeight)
	}
}

// distanceScore maps per-step progress toward the target into [0,1], with
// 0.5 neutral. Progress is normalized by the step length so scores stay
// comparable between slow and fast nodes.
func distanceScore(from, to, target Vec) float64 {
	progress := from.Dist(target) - to.Dist(target)
	step := to.Dist(from)
	return clamp01(0.5 + 0.5*progress/(step+1))
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
