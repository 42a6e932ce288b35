package track

import (
	"testing"

	"github.com/gridrace/api/internal/engine"
)

// A two-lane straight with gravel shoulders. Start (1,2), target (8,2).
const straightLayout = `
..........
.~~~~~~~~.
.S######F.
.########.
.~~~~~~~~.
..........
`

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	return NewEvaluator(mustParse(t, straightLayout))
}

func TestEvaluateTerrainRanking(t *testing.T) {
	e := newTestEvaluator(t)

	asphalt := e.EvaluateTerrain(engine.Vec{X: 4, Y: 2})
	none := e.EvaluateTerrain(engine.Vec{X: 0, Y: 0})
	gravel := e.EvaluateTerrain(engine.Vec{X: 4, Y: 1})

	if !(asphalt > none && none > gravel) {
		t.Errorf("expected asphalt > none > gravel, got %g / %g / %g", asphalt, none, gravel)
	}
	if asphalt != 1.0 {
		t.Errorf("asphalt quality = %g, want 1.0", asphalt)
	}
	for _, q := range []float64{asphalt, none, gravel} {
		if q < 0 || q > 1 {
			t.Errorf("terrain quality %g out of [0,1]", q)
		}
	}
}

func TestEvaluateTrackCenter(t *testing.T) {
	e := newTestEvaluator(t)

	if got := e.EvaluateTrackCenter(engine.Vec{X: 4, Y: 1}); got != 0 {
		t.Errorf("off-asphalt center = %g, want 0", got)
	}

	interior := e.EvaluateTrackCenter(engine.Vec{X: 4, Y: 2})
	edge := e.EvaluateTrackCenter(engine.Vec{X: 1, Y: 2})
	if interior <= 0 || interior > 1 {
		t.Errorf("interior center %g out of (0,1]", interior)
	}
	if interior <= edge {
		t.Errorf("interior (%g) should beat the track edge (%g)", interior, edge)
	}
}

func TestEvaluateTrackExit(t *testing.T) {
	e := newTestEvaluator(t)
	pos := engine.Vec{X: 4, Y: 2}

	if got := e.EvaluateTrackExit(pos, engine.Vec{}); got != 1 {
		t.Errorf("zero velocity exit safety = %g, want 1", got)
	}
	if got := e.EvaluateTrackExit(pos, engine.Vec{X: 3, Y: 0}); got != 1 {
		t.Errorf("straight-ahead exit safety = %g, want 1", got)
	}
	if got := e.EvaluateTrackExit(pos, engine.Vec{X: 0, Y: -2}); got != 0 {
		t.Errorf("immediate exit safety = %g, want 0", got)
	}
	// One asphalt cell below, then gravel.
	want := 1.0 / 3.0
	if got := e.EvaluateTrackExit(pos, engine.Vec{X: 0, Y: 1}); got != want {
		t.Errorf("one-step exit safety = %g, want %g", got, want)
	}
}

func TestTrackExitRisk(t *testing.T) {
	e := newTestEvaluator(t)
	pos := engine.Vec{X: 1, Y: 2}

	if got := e.TrackExitRisk(pos, engine.Vec{}, 3); got != 0 {
		t.Errorf("standing still risk = %g, want 0", got)
	}
	if got := e.TrackExitRisk(pos, engine.Vec{X: 1, Y: 0}, 0); got != 0 {
		t.Errorf("zero look-ahead risk = %g, want 0", got)
	}

	along := e.TrackExitRisk(pos, engine.Vec{X: 1, Y: 0}, 3)
	off := e.TrackExitRisk(pos, engine.Vec{X: 0, Y: -1}, 3)

	if along != 0 {
		t.Errorf("risk along asphalt = %g, want 0", along)
	}
	if off <= along {
		t.Errorf("heading off track (%g) must out-risk staying on (%g)", off, along)
	}
	if off < 0 || off > 1 {
		t.Errorf("risk %g out of [0,1]", off)
	}
}

func TestTurnFactor(t *testing.T) {
	e := newTestEvaluator(t)
	pos := engine.Vec{X: 1, Y: 2} // target dead ahead at (8,2)

	if got := e.TurnFactor(pos, engine.Vec{X: 1, Y: 0}); got != 0 {
		t.Errorf("aligned heading factor = %g, want 0", got)
	}
	if got := e.TurnFactor(pos, engine.Vec{X: -1, Y: 0}); got != 1 {
		t.Errorf("opposed heading factor = %g, want 1", got)
	}
	if got := e.TurnFactor(pos, engine.Vec{}); got != 0.5 {
		t.Errorf("zero heading factor = %g, want neutral 0.5", got)
	}
	if got := e.TurnFactor(engine.Vec{X: 8, Y: 2}, engine.Vec{X: 1, Y: 0}); got != 0 {
		t.Errorf("factor at the target = %g, want 0", got)
	}
}

func TestIsApproachingTurn(t *testing.T) {
	e := newTestEvaluator(t)
	pos := engine.Vec{X: 1, Y: 2}

	if e.IsApproachingTurn(pos, engine.Vec{X: 1, Y: 0}) {
		t.Error("aligned heading is not a turn")
	}
	if !e.IsApproachingTurn(pos, engine.Vec{X: 0, Y: 1}) {
		t.Error("perpendicular heading should read as a turn")
	}
	if e.IsApproachingTurn(pos, engine.Vec{}) {
		t.Error("zero heading never approaches a turn")
	}
}

func TestNearestAsphalt(t *testing.T) {
	e := newTestEvaluator(t)

	on := engine.Vec{X: 4, Y: 2}
	if got := e.NearestAsphalt(on, 6); got != on {
		t.Errorf("on-asphalt search moved to %v", got)
	}

	gravel := engine.Vec{X: 4, Y: 4}
	if got := e.NearestAsphalt(gravel, 6); got != (engine.Vec{X: 4, Y: 3}) {
		t.Errorf("nearest asphalt from %v = %v, want (4,3)", gravel, got)
	}

	stranded := engine.Vec{X: 40, Y: 40}
	if got := e.NearestAsphalt(stranded, 6); got != stranded {
		t.Errorf("hopeless search should return the origin, got %v", got)
	}
}

func TestEvaluateReturnToAsphalt(t *testing.T) {
	e := newTestEvaluator(t)

	if got := e.EvaluateReturnToAsphalt(engine.Vec{X: 4, Y: 2}, engine.Vec{X: 1, Y: 0}); got != 1 {
		t.Errorf("on-asphalt recovery = %g, want 1", got)
	}
	if got := e.EvaluateReturnToAsphalt(engine.Vec{X: 40, Y: 40}, engine.Vec{X: 1, Y: 0}); got != 0 {
		t.Errorf("stranded recovery = %g, want 0", got)
	}

	gravel := engine.Vec{X: 4, Y: 4}
	toward := e.EvaluateReturnToAsphalt(gravel, engine.Vec{X: 0, Y: -1})
	away := e.EvaluateReturnToAsphalt(gravel, engine.Vec{X: 0, Y: 1})
	if toward <= away {
		t.Errorf("steering back (%g) must beat driving away (%g)", toward, away)
	}
	for _, v := range []float64{toward, away} {
		if v < 0 || v > 1 {
			t.Errorf("recovery score %g out of [0,1]", v)
		}
	}
}
