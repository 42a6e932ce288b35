package engine

// PathNode is one candidate position/velocity pair at a given search depth.
// A node exclusively owns its children; the tree is a strict hierarchy with
// no back references, traversed root-to-leaf during generation and
// materialized into Paths for aggregate computation.
type PathNode struct {
	Position Vec `json:"position"`
	Velocity Vec `json:"velocity"`

	// Score is the weighted aggregate of the sub-scores, in [0,1].
	Score float64 `json:"score"`

	// Factors maps sub-score name to value, kept for diagnostics and
	// visualization.
	Factors map[string]float64 `json:"factors,omitempty"`

	Children []*PathNode `json:"children,omitempty"`

	// OffTrackCount is the number of consecutive nodes up to and including
	// this one classified as off-track; 0 once back on track.
	OffTrackCount int `json:"offTrackCount"`

	// Viable is false once a pruning rule rejects the node. Pruned nodes
	// stay in the tree for diagnostics but are never expanded.
	Viable bool `json:"viable"`
	// PruneReason names the rule that rejected the node, empty if viable.
	PruneReason string `json:"pruneReason,omitempty"`

	// Cached sub-scores, populated once during scoring.
	TerrainQuality float64 `json:"terrainQuality"`
	DistanceScore  float64 `json:"distanceScore"`
	SpeedScore     float64 `json:"speedScore"`
	DirectionScore float64 `json:"directionScore"`
	TrackExitRisk  float64 `json:"trackExitRisk"`
}

// Quality classifies a finished path from its aggregate scores.
type Quality int

const (
	QualityUnknown Quality = iota
	QualityBad
	QualityMedium
	QualityGood
	QualityBest
)

func (q Quality) String() string {
	switch q {
	case QualityBad:
		return "bad"
	case QualityMedium:
		return "medium"
	case QualityGood:
		return "good"
	case QualityBest:
		return "best"
	default:
		return "unknown"
	}
}

// Quality band boundaries. The min-score gate on Best is the weakest-link
// rule: a path that averages well but passes through one disastrous node
// never classifies as Best.
const (
	bestAverageFloor = 0.75
	bestMinFloor     = 0.50
	goodAverageFloor = 0.60
	mediumAvgFloor   = 0.40
)

func classifyQuality(average, minScore float64) Quality {
	switch {
	case average >= bestAverageFloor && minScore >= bestMinFloor:
		return QualityBest
	case average >= goodAverageFloor:
		return QualityGood
	case average >= mediumAvgFloor:
		return QualityMedium
	default:
		return QualityBad
	}
}

// Path is one root-to-leaf move sequence. Nodes excludes the root: index 0
// is the first move from the current state.
type Path struct {
	Nodes []*PathNode `json:"nodes"`

	TotalScore   float64 `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
	MinNodeScore float64 `json:"minNodeScore"`
	Quality      Quality `json:"quality"`

	OffTrackNodeCount     int     `json:"offTrackNodeCount"`
	AverageTerrainQuality float64 `json:"averageTerrainQuality"`
	TrackExitRisk         float64 `json:"trackExitRisk"`
	DirectionChanges      int     `json:"directionChanges"`
	HasDeadEnd            bool    `json:"hasDeadEnd"`
	AverageSpeed          float64 `json:"averageSpeed"`
}

// newPath materializes a node sequence into a Path with its aggregates.
// Quality is derived from the aggregates here and never mutated afterwards.
func newPath(nodes []*PathNode, hasDeadEnd bool) Path {
	p := Path{Nodes: nodes, HasDeadEnd: hasDeadEnd}
	if len(nodes) == 0 {
		return p
	}

	p.MinNodeScore = nodes[0].Score
	var terrain, speed float64
	for i, n := range nodes {
		p.TotalScore += n.Score
		if n.Score < p.MinNodeScore {
			p.MinNodeScore = n.Score
		}
		if n.OffTrackCount > 0 {
			p.OffTrackNodeCount++
		}
		if n.TrackExitRisk > p.TrackExitRisk {
			p.TrackExitRisk = n.TrackExitRisk
		}
		terrain += n.TerrainQuality
		speed += n.Velocity.Length()
		if i > 0 && directionChanged(nodes[i-1].Velocity, n.Velocity) {
			p.DirectionChanges++
		}
	}
	count := float64(len(nodes))
	p.AverageScore = p.TotalScore / count
	p.AverageTerrainQuality = terrain / count
	p.AverageSpeed = speed / count
	p.Quality = classifyQuality(p.AverageScore, p.MinNodeScore)
	return p
}

// directionChanged reports whether the heading flipped sign on either axis
// between two consecutive velocities.
func directionChanged(prev, cur Vec) bool {
	return prev.X*cur.X < 0 || prev.Y*cur.Y < 0
}
