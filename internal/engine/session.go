package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the externally visible lifecycle of one decision turn.
type State int

const (
	StateIdle State = iota
	StateReadyToThink
	StateThinking
	StateThinkingComplete
	StateReadyToExecute
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReadyToThink:
		return "ready_to_think"
	case StateThinking:
		return "thinking"
	case StateThinkingComplete:
		return "thinking_complete"
	case StateReadyToExecute:
		return "ready_to_execute"
	case StateExecuting:
		return "executing"
	default:
		return "invalid"
	}
}

// Decision is the chosen move handed to the movement collaborator: the
// first move of the winning path. The full path rides along for
// diagnostics only.
type Decision struct {
	Velocity Vec  `json:"velocity"`
	Position Vec  `json:"position"`
	Path     Path `json:"path"`
	// Fallback is true when every branch was pruned and the least-bad
	// pruned path was used. The agent must move every turn.
	Fallback bool `json:"fallback"`
}

// Session runs one agent's turn-based search. It is single-threaded and
// cooperative: the host calls Step once per frame, and work proceeds only
// inside those calls. A Session is owned by one agent and must not be
// shared.
type Session struct {
	cfg  Config
	eval TerrainEvaluator
	log  zerolog.Logger
	now  func() time.Time

	state    State
	root     *PathNode
	frontier frontier
	score    scorer
	prune    pruner

	expansions  int
	thinkStart  time.Time
	completedAt time.Time
	decision    *Decision
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger to the session.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock injects a time source, used by tests to drive the frame budget
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession validates the configuration and creates an idle session.
// Configuration errors fail here, before any frontier work.
func NewSession(cfg Config, eval TerrainEvaluator, opts ...Option) (*Session, error) {
	if eval == nil {
		return nil, fmt.Errorf("terrain evaluator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	s := &Session{
		cfg:   cfg,
		eval:  eval,
		log:   log.Logger,
		now:   time.Now,
		score: scorer{cfg: cfg, eval: eval},
		prune: pruner{cfg: cfg, eval: eval},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Expansions returns the number of node expansions performed this turn.
func (s *Session) Expansions() int { return s.expansions }

// FrontierLen returns the number of pending generation tasks.
func (s *Session) FrontierLen() int { return s.frontier.len() }

// Begin starts a turn from the agent's current position and velocity,
// seeding the tree root and the frontier. Calling Begin while a turn is
// already in progress is a no-op.
func (s *Session) Begin(position, velocity Vec) {
	if s.state != StateIdle {
		return
	}
	root := &PathNode{Position: position, Velocity: velocity, Viable: true}
	root.TerrainQuality = s.eval.EvaluateTerrain(position)
	if root.TerrainQuality < s.cfg.MinTerrainQuality {
		root.OffTrackCount = 1
	}
	s.root = root
	s.frontier.reset()
	s.frontier.push(GenerationTask{Prefix: []*PathNode{root}, Parent: root, Depth: 0})
	s.expansions = 0
	s.decision = nil
	s.state = StateReadyToThink
	s.log.Debug().
		Int("x", position.X).Int("y", position.Y).
		Int("vx", velocity.X).Int("vy", velocity.Y).
		Msg("Turn started")
}

// Step performs one frame of cooperative work: it drains the frontier until
// the frame's time budget or expansion cap is hit, then yields. It returns
// true while more frames are needed. Calling Step in any settled state is a
// no-op.
func (s *Session) Step() bool {
	switch s.state {
	case StateReadyToThink:
		s.state = StateThinking
		s.thinkStart = s.now()
		return s.runChunk()
	case StateThinking:
		return s.runChunk()
	case StateThinkingComplete:
		return s.maybeRelease()
	default:
		return false
	}
}

// runChunk processes frontier tasks for one frame.
func (s *Session) runChunk() bool {
	deadline := s.now().Add(s.cfg.TargetThinkingTime)
	processed := 0
	for s.frontier.len() > 0 && processed < s.cfg.MaxPathsPerFrame {
		// Always make progress: the time check only applies after the
		// first expansion of the frame.
		if processed > 0 && !s.now().Before(deadline) {
			break
		}
		task, _ := s.frontier.pop()
		stepStart := s.now()
		s.expand(task)
		processed++
		s.expansions++
		if took := s.now().Sub(stepStart); took > s.cfg.TargetThinkingTime {
			s.log.Warn().
				Dur("took", took).
				Dur("budget", s.cfg.TargetThinkingTime).
				Int("depth", task.Depth).
				Msg("Single expansion exceeded frame budget")
		}
	}
	if s.frontier.len() == 0 {
		s.state = StateThinkingComplete
		s.completedAt = s.now()
		s.log.Debug().
			Int("expansions", s.expansions).
			Dur("elapsed", s.completedAt.Sub(s.thinkStart)).
			Msg("Thinking complete")
		return s.maybeRelease()
	}
	return true
}

// maybeRelease moves ThinkingComplete toward ReadyToExecute once the
// post-thinking delay has passed, unless manual stepping gates it.
func (s *Session) maybeRelease() bool {
	if s.cfg.ManualStepMode {
		return false
	}
	if s.now().Sub(s.completedAt) < s.cfg.PostThinkingDelay {
		return true
	}
	s.state = StateReadyToExecute
	return false
}

// AdvanceStep releases the manual gate: ThinkingComplete -> ReadyToExecute.
// No-op in any other state.
func (s *Session) AdvanceStep() {
	if s.state == StateThinkingComplete {
		s.state = StateReadyToExecute
	}
}

// expand generates the children of one frontier task: nine candidates,
// scored, then filtered by the pruning rules. Viable children below the
// depth limit are queued for expansion; pruned children stay in the tree
// for diagnostics.
func (s *Session) expand(task GenerationTask) {
	depth := task.Depth + 1
	for _, c := range candidateMoves(task.Parent.Position, task.Parent.Velocity) {
		child := &PathNode{Position: c.position, Velocity: c.velocity, Viable: true}
		s.score.scoreNode(child, task.Parent.Position)
		if child.TerrainQuality < s.cfg.MinTerrainQuality {
			child.OffTrackCount = task.Parent.OffTrackCount + 1
		}
		if reason := s.prune.evaluate(child, task.Prefix, depth); reason != "" {
			child.Viable = false
			child.PruneReason = reason
		}
		task.Parent.Children = append(task.Parent.Children, child)

		if child.Viable && depth < s.cfg.Depth {
			prefix := make([]*PathNode, len(task.Prefix)+1)
			copy(prefix, task.Prefix)
			prefix[len(task.Prefix)] = child
			s.frontier.push(GenerationTask{Prefix: prefix, Parent: child, Depth: depth})
		}
	}
}

// Decide runs the best-path selector and hands out the chosen first move.
// Only valid in ReadyToExecute; the session moves to Executing.
func (s *Session) Decide() (Decision, bool) {
	if s.state != StateReadyToExecute {
		return Decision{}, false
	}

	viable, pruned := collectPaths(s.root)
	var d Decision
	switch {
	case len(viable) > 0:
		d.Path = selectBest(viable)
	case len(pruned) > 0:
		// Every branch was pruned: take the least-bad one rather than
		// producing no move.
		d.Path = selectFallback(pruned)
		d.Fallback = true
	default:
		// No children at all (cancelled mid-seed); coast on the current
		// velocity.
		d.Velocity = s.root.Velocity
		d.Position = s.root.Position.Add(s.root.Velocity)
		d.Fallback = true
		s.decision = &d
		s.state = StateExecuting
		return d, true
	}
	first := d.Path.Nodes[0]
	d.Velocity = first.Velocity
	d.Position = first.Position

	s.decision = &d
	s.state = StateExecuting
	s.log.Info().
		Str("quality", d.Path.Quality.String()).
		Float64("avgScore", d.Path.AverageScore).
		Float64("minScore", d.Path.MinNodeScore).
		Int("pathLen", len(d.Path.Nodes)).
		Int("viablePaths", len(viable)).
		Int("expansions", s.expansions).
		Bool("fallback", d.Fallback).
		Msg("Move selected")
	return d, true
}

// ConfirmExecuted signals that the movement collaborator committed the
// move: Executing -> Idle. The finished tree stays readable for
// diagnostics until the next Begin.
func (s *Session) ConfirmExecuted() {
	if s.state == StateExecuting {
		s.state = StateIdle
	}
}

// Cancel invalidates the turn from any state: the tree and frontier are
// discarded and the session returns to Idle. No partial move is ever
// committed.
func (s *Session) Cancel() {
	s.root = nil
	s.frontier.reset()
	s.decision = nil
	s.state = StateIdle
}

// Root exposes the search tree for read-only diagnostics. It returns nil
// while thinking is still in progress; consumers may only read a stable
// tree.
func (s *Session) Root() *PathNode {
	switch s.state {
	case StateReadyToThink, StateThinking:
		return nil
	default:
		return s.root
	}
}

// Decision returns the move chosen this turn, nil before Decide.
func (s *Session) Decision() *Decision {
	return s.decision
}

// Paths returns the viable leaf paths of a stable tree for diagnostics,
// nil while thinking is in progress.
func (s *Session) Paths() []Path {
	root := s.Root()
	if root == nil {
		return nil
	}
	viable, _ := collectPaths(root)
	return viable
}
