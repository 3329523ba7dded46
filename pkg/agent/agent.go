package agent

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boristopalov/wumpus/pkg/core"
	"github.com/boristopalov/wumpus/pkg/memory"
)

const (
	WinReward    = 1000
	DeathPenalty = 1000
	ActionCost   = 1
)

var ErrInvalidAgentParams = errors.New("invalid agent parameters")

// ExplorerAgent walks a wumpus world one turn at a time, keeping a private belief grid
// built only from the percepts it has observed.
type ExplorerAgent struct {
	id          string
	start       core.Vec
	position    core.Vec
	orientation core.Direction
	phase       core.Phase
	score       int
	turn        int
	arrows      int
	beliefs     *core.Grid[core.Belief]
	hunt        hunt
	memory      *memory.Memory[core.Turn]
	rng         *rand.Rand
	logger      *zap.Logger
}

// hunt tracks the deduced wumpus location until it is shot or ruled out.
type hunt struct {
	located bool
	cell    core.Vec
	prior   core.Belief
	scream  bool
}

type AgentParams struct {
	AgentID        string
	Rand           *rand.Rand
	Arrows         int
	MemoryCapacity int
	Logger         *zap.Logger
}

type AgentOption func(*AgentParams)

func WithAgentID(id string) AgentOption {
	return func(p *AgentParams) {
		p.AgentID = id
	}
}

// WithRand injects the source for every policy roll.
func WithRand(rng *rand.Rand) AgentOption {
	return func(p *AgentParams) {
		p.Rand = rng
	}
}

func WithSeed(seed int64) AgentOption {
	return func(p *AgentParams) {
		p.Rand = rand.New(rand.NewSource(seed))
	}
}

func WithArrows(n int) AgentOption {
	return func(p *AgentParams) {
		p.Arrows = n
	}
}

func WithMemoryCapacity(n int) AgentOption {
	return func(p *AgentParams) {
		p.MemoryCapacity = n
	}
}

func WithLogger(l *zap.Logger) AgentOption {
	return func(p *AgentParams) {
		p.Logger = l
	}
}

func defaultAgentParams() *AgentParams {
	return &AgentParams{
		AgentID:        "agent-" + uuid.New().String(),
		Arrows:         1,
		MemoryCapacity: 100,
		Logger:         zap.NewNop(),
	}
}

// NewExplorerAgent places an agent on the start cell of env, facing east.
func NewExplorerAgent(env core.Environment, opts ...AgentOption) (*ExplorerAgent, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil environment", ErrInvalidAgentParams)
	}
	params := defaultAgentParams()
	for _, opt := range opts {
		opt(params)
	}
	if params.Arrows < 0 {
		return nil, fmt.Errorf("%w: arrows must be non-negative, got %d", ErrInvalidAgentParams, params.Arrows)
	}
	if params.Rand == nil {
		params.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}

	w, h := env.GetSize()
	start := env.GetStart()
	beliefs := core.NewGrid(w, h, core.Unknown)
	if !beliefs.Set(start, core.Safe) {
		return nil, fmt.Errorf("start %v: %w", start, core.ErrOutOfBounds)
	}

	return &ExplorerAgent{
		id:          params.AgentID,
		start:       start,
		position:    start,
		orientation: core.East,
		phase:       core.Exploring,
		arrows:      params.Arrows,
		beliefs:     beliefs,
		memory:      memory.NewMemory[core.Turn](params.MemoryCapacity),
		rng:         params.Rand,
		logger:      params.Logger.With(zap.String("agent", params.AgentID)),
	}, nil
}

// Advance runs one turn against env and returns the resulting phase.
// Terminal phases are returned unchanged without touching any state.
func (a *ExplorerAgent) Advance(env core.Environment) (core.Phase, error) {
	if a.phase.Terminal() {
		return a.phase, nil
	}

	percepts, err := env.Percepts(a.position)
	if err != nil {
		return a.phase, fmt.Errorf("agent %s turn %d: %w", a.id, a.turn, err)
	}

	if percepts.Died {
		a.phase = core.Died
		a.score -= DeathPenalty
		a.logger.Info("agent died",
			zap.Stringer("position", a.position),
			zap.Int("turn", a.turn),
			zap.Int("score", a.score))
		return a.phase, nil
	}

	if a.phase == core.Retrieving && a.position.Equals(env.GetStart()) {
		a.phase = core.Won
		a.score += WinReward
		a.logger.Info("agent won",
			zap.Int("turn", a.turn),
			zap.Int("score", a.score))
		return a.phase, nil
	}

	if a.phase == core.Exploring {
		a.updateBeliefs(percepts)
		a.deduceWumpus()
	}

	action := a.chooseAction(percepts)
	scream := a.applyAction(env, action)
	a.turn++

	turn := core.Turn{
		Number:      a.turn,
		Percepts:    percepts,
		Action:      action,
		Position:    a.position,
		Orientation: a.orientation,
		Score:       a.score,
		Phase:       a.phase,
		Scream:      scream,
		Timestamp:   time.Now(),
	}
	if err := a.memory.Store(turn); err != nil {
		return a.phase, fmt.Errorf("storing turn %d: %w", a.turn, err)
	}

	a.logger.Debug("turn",
		zap.Int("turn", a.turn),
		zap.Stringer("action", action),
		zap.Stringer("position", a.position),
		zap.Stringer("orientation", a.orientation),
		zap.Stringer("percepts", percepts),
		zap.Int("score", a.score))

	return a.phase, nil
}

func (a *ExplorerAgent) GetID() string {
	return a.id
}

func (a *ExplorerAgent) GetPosition() core.Vec {
	return a.position
}

func (a *ExplorerAgent) GetOrientation() core.Direction {
	return a.orientation
}

// GetBeliefs returns a copy of the belief grid.
func (a *ExplorerAgent) GetBeliefs() *core.Grid[core.Belief] {
	return a.beliefs.Clone()
}

func (a *ExplorerAgent) GetBelief(cell core.Vec) (core.Belief, bool) {
	return a.beliefs.Get(cell)
}

func (a *ExplorerAgent) GetScore() int {
	return a.score
}

func (a *ExplorerAgent) GetPhase() core.Phase {
	return a.phase
}

func (a *ExplorerAgent) GetTurn() int {
	return a.turn
}

func (a *ExplorerAgent) GetArrows() int {
	return a.arrows
}

// WumpusLocated returns the deduced wumpus cell, if any.
func (a *ExplorerAgent) WumpusLocated() (core.Vec, bool) {
	return a.hunt.cell, a.hunt.located
}

func (a *ExplorerAgent) ScreamHeard() bool {
	return a.hunt.scream
}

// LastTurn returns the most recent executed turn.
func (a *ExplorerAgent) LastTurn() (core.Turn, bool) {
	last := a.memory.Last(1)
	if len(last) == 0 {
		return core.Turn{}, false
	}
	return last[0], true
}

func (a *ExplorerAgent) GetMemory() *memory.Memory[core.Turn] {
	return a.memory
}
