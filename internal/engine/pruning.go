package engine

// Prune reasons recorded on rejected nodes.
const (
	PruneOffTrackTolerance = "offTrackTolerance"
	PruneScoreThreshold    = "scoreThreshold"
	PruneLookAheadRisk     = "lookAheadRisk"
	PruneZigZag            = "zigzag"
	PruneTurnSpeed         = "turnSpeed"
)

// lookAheadRiskCutoff is the projected exit risk above which a branch is cut
// pre-emptively. Only near-certain exits are cut here; anything softer is
// left for scoring to weigh.
const lookAheadRiskCutoff = 0.85

// pruner applies the independently toggleable pruning rules to freshly
// scored nodes. A node failing any active rule is marked non-viable and
// never enters the frontier, but stays in the tree for diagnostics.
type pruner struct {
	cfg  Config
	eval TerrainEvaluator
}

// evaluate runs the rules in their conceptual order against a scored node
// at the given depth. prefix is the already-committed path down to the
// node's parent. Returns the name of the failing rule, or "" if viable.
func (p pruner) evaluate(n *PathNode, prefix []*PathNode, depth int) string {
	if p.cfg.EnablePathPruning && n.OffTrackCount > p.cfg.OffTrackTolerance {
		return PruneOffTrackTolerance
	}
	if p.cfg.EnableAggressivePruning && n.Score < p.scoreThreshold(depth) {
		return PruneScoreThreshold
	}
	if p.cfg.EnableLookAheadPruning && n.TrackExitRisk > lookAheadRiskCutoff {
		return PruneLookAheadRisk
	}
	if p.cfg.PruneInefficientMovements && isZigZag(prefix, n) {
		return PruneZigZag
	}
	if p.cfg.PruneExcessiveSpeedAtTurns && p.excessiveTurnSpeed(n) {
		return PruneTurnSpeed
	}
	return ""
}

// scoreThreshold raises the aggressive-pruning cutoff with depth: broad
// exploration near the root, narrow deep in the tree where the
// combinatorial cost is highest. Non-decreasing in depth; constant when the
// depth factor is 0, reaching 1 at max depth when the factor is 1.
func (p pruner) scoreThreshold(depth int) float64 {
	t := p.cfg.ScorePruningThreshold
	f := p.cfg.DepthPruningFactor
	if f <= 0 {
		return t
	}
	eff := t + f*(1-t)*float64(depth)/float64(p.cfg.Depth)
	if eff > 1 {
		eff = 1
	}
	return eff
}

// isZigZag detects oscillation: the heading flipped both between the last
// two committed moves and again into the candidate node.
func isZigZag(prefix []*PathNode, n *PathNode) bool {
	if len(prefix) < 2 {
		return false
	}
	grand := prefix[len(prefix)-2]
	parent := prefix[len(prefix)-1]
	return directionChanged(grand.Velocity, parent.Velocity) &&
		directionChanged(parent.Velocity, n.Velocity)
}

// excessiveTurnSpeed rejects nodes carrying too much speed into a detected
// turn. The allowance shrinks as the turn factor grows: a gentle bend
// tolerates up to ~5 cells/turn, a hairpin barely more than 1.
func (p pruner) excessiveTurnSpeed(n *PathNode) bool {
	if n.Velocity.IsZero() {
		return false
	}
	if !p.eval.IsApproachingTurn(n.Position, n.Velocity) {
		return false
	}
	factor := p.eval.TurnFactor(n.Position, n.Velocity)
	allowed := 1 + (1-factor)*4
	return n.Velocity.Length() > allowed
}
