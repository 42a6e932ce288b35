package engine

import (
	"math"
	"testing"
)

func TestScoreNodeBounds(t *testing.T) {
	s := scorer{cfg: DefaultConfig(), eval: newStubEvaluator()}

	velocities := []Vec{{0, 0}, {1, 0}, {3, 2}, {-8, -8}, {0, 9}}
	for _, vel := range velocities {
		n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: vel}
		s.scoreNode(n, Vec{X: 1, Y: 0})
		if n.Score < 0 || n.Score > 1 {
			t.Errorf("score %g out of [0,1] for velocity %v", n.Score, vel)
		}
		for name, v := range n.Factors {
			if v < 0 || v > 1 {
				t.Errorf("factor %s = %g out of [0,1]", name, v)
			}
		}
	}
}

func TestScoreNodeFactors(t *testing.T) {
	s := scorer{cfg: DefaultConfig(), eval: newStubEvaluator()}
	n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: Vec{X: 1, Y: 0}}
	s.scoreNode(n, Vec{X: 1, Y: 0})

	for _, name := range []string{
		FactorTerrain, FactorDistance, FactorSpeed, FactorDirection,
		FactorCenter, FactorExitSafety, FactorExitRisk,
	} {
		if _, ok := n.Factors[name]; !ok {
			t.Errorf("missing factor %s", name)
		}
	}
	if _, ok := n.Factors[FactorRecovery]; ok {
		t.Error("recovery factor should be absent on-track")
	}
}

func TestScoreRecoveryOnlyWhenOffTrack(t *testing.T) {
	eval := newStubEvaluator()
	eval.terrain = func(Vec) float64 { return 0.1 }
	eval.recovery = func(Vec, Vec) float64 { return 0.9 }
	s := scorer{cfg: DefaultConfig(), eval: eval}

	n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: Vec{X: 1, Y: 0}}
	s.scoreNode(n, Vec{X: 1, Y: 0})

	if got, ok := n.Factors[FactorRecovery]; !ok || got != 0.9 {
		t.Errorf("expected recovery factor 0.9 off-track, got %g (present=%v)", got, ok)
	}
}

func TestScoreMonotonicInTerrain(t *testing.T) {
	quality := 1.0
	eval := newStubEvaluator()
	eval.terrain = func(Vec) float64 { return quality }
	s := scorer{cfg: DefaultConfig(), eval: eval}

	score := func(q float64) float64 {
		quality = q
		n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: Vec{X: 1, Y: 0}}
		s.scoreNode(n, Vec{X: 1, Y: 0})
		return n.Score
	}

	// Stay above MinTerrainQuality so the factor mix does not change.
	lo, hi := score(0.5), score(1.0)
	if hi <= lo {
		t.Errorf("better terrain must score higher: %g vs %g", lo, hi)
	}
}

func TestScoreMonotonicInExitRisk(t *testing.T) {
	risk := 0.0
	eval := newStubEvaluator()
	eval.exitRisk = func(Vec, Vec, int) float64 { return risk }
	s := scorer{cfg: DefaultConfig(), eval: eval}

	score := func(r float64) float64 {
		risk = r
		n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: Vec{X: 1, Y: 0}}
		s.scoreNode(n, Vec{X: 1, Y: 0})
		return n.Score
	}

	if safe, risky := score(0.0), score(0.9); risky >= safe {
		t.Errorf("higher exit risk must score lower: %g vs %g", risky, safe)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := scorer{cfg: DefaultConfig(), eval: newStubEvaluator()}

	a := &PathNode{Position: Vec{X: 3, Y: 1}, Velocity: Vec{X: 2, Y: 1}}
	b := &PathNode{Position: Vec{X: 3, Y: 1}, Velocity: Vec{X: 2, Y: 1}}
	s.scoreNode(a, Vec{X: 1, Y: 0})
	s.scoreNode(b, Vec{X: 1, Y: 0})

	if a.Score != b.Score {
		t.Errorf("identical inputs scored differently: %g vs %g", a.Score, b.Score)
	}
}

func TestDistanceScore(t *testing.T) {
	target := Vec{X: 10, Y: 0}

	toward := distanceScore(Vec{X: 0, Y: 0}, Vec{X: 2, Y: 0}, target)
	if toward <= 0.5 {
		t.Errorf("progress toward target should exceed 0.5, got %g", toward)
	}

	away := distanceScore(Vec{X: 2, Y: 0}, Vec{X: 0, Y: 0}, target)
	if away >= 0.5 {
		t.Errorf("moving away should score below 0.5, got %g", away)
	}

	still := distanceScore(Vec{X: 2, Y: 0}, Vec{X: 2, Y: 0}, target)
	if math.Abs(still-0.5) > 1e-9 {
		t.Errorf("standing still should be neutral 0.5, got %g", still)
	}
}

func TestSpeedScoreClamped(t *testing.T) {
	s := scorer{cfg: DefaultConfig(), eval: newStubEvaluator()}
	n := &PathNode{Position: Vec{X: 2, Y: 0}, Velocity: Vec{X: 20, Y: 0}}
	s.scoreNode(n, Vec{X: 1, Y: 0})
	if n.SpeedScore != 1 {
		t.Errorf("speed beyond normalization should clamp to 1, got %g", n.SpeedScore)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {1.5, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}
