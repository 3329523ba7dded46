package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boristopalov/wumpus/pkg/agent"
	"github.com/boristopalov/wumpus/pkg/core"
	"github.com/boristopalov/wumpus/pkg/messaging"
)

type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeDied    Outcome = "died"
	OutcomeTimeout Outcome = "timeout"
)

// World is what an episode needs from an environment beyond the agent's query surface.
type World interface {
	core.Environment
	Cells() *core.Grid[core.CellContent]
	Count(content core.CellContent) int
	GoldDistance() float64
}

type EpisodeResult struct {
	EpisodeID    string
	Seed         int64
	Outcome      Outcome
	Score        int
	Turns        int
	WumpusKilled bool
	GoldGrabbed  bool
	GoldDistance float64
}

// Episode drives one agent through one world until it wins, dies or runs out of turns.
type Episode struct {
	id           string
	seed         int64
	world        World
	agent        *agent.ExplorerAgent
	broker       messaging.Broker
	stepInterval time.Duration
	maxTurns     int
	logger       *zap.Logger
	mu           sync.RWMutex
	status       core.ExperimentStatus
}

type EpisodeParams struct {
	EpisodeID    string
	Seed         int64
	Broker       messaging.Broker
	StepInterval time.Duration
	MaxTurns     int
	Logger       *zap.Logger
}

type EpisodeOption func(*EpisodeParams)

func WithEpisodeID(id string) EpisodeOption {
	return func(p *EpisodeParams) {
		p.EpisodeID = id
	}
}

// WithEpisodeSeed labels the result with the seed the world was generated from.
func WithEpisodeSeed(seed int64) EpisodeOption {
	return func(p *EpisodeParams) {
		p.Seed = seed
	}
}

// WithBroker publishes a frame after every turn.
func WithBroker(b messaging.Broker) EpisodeOption {
	return func(p *EpisodeParams) {
		p.Broker = b
	}
}

func WithStepInterval(d time.Duration) EpisodeOption {
	return func(p *EpisodeParams) {
		p.StepInterval = d
	}
}

func WithMaxTurns(n int) EpisodeOption {
	return func(p *EpisodeParams) {
		p.MaxTurns = n
	}
}

func WithEpisodeLogger(l *zap.Logger) EpisodeOption {
	return func(p *EpisodeParams) {
		p.Logger = l
	}
}

func defaultEpisodeParams() *EpisodeParams {
	return &EpisodeParams{
		EpisodeID: "episode-" + uuid.New().String(),
		MaxTurns:  1000,
		Logger:    zap.NewNop(),
	}
}

func NewEpisode(world World, a *agent.ExplorerAgent, opts ...EpisodeOption) (*Episode, error) {
	if world == nil || a == nil {
		return nil, fmt.Errorf("episode needs both a world and an agent")
	}
	params := defaultEpisodeParams()
	for _, opt := range opts {
		opt(params)
	}
	if params.MaxTurns < 1 {
		return nil, fmt.Errorf("max turns must be positive, got %d", params.MaxTurns)
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}

	return &Episode{
		id:           params.EpisodeID,
		seed:         params.Seed,
		world:        world,
		agent:        a,
		broker:       params.Broker,
		stepInterval: params.StepInterval,
		maxTurns:     params.MaxTurns,
		logger:       params.Logger.With(zap.String("episode", params.EpisodeID)),
	}, nil
}

func (e *Episode) GetID() string {
	return e.id
}

func (e *Episode) GetAgent() *agent.ExplorerAgent {
	return e.agent
}

func (e *Episode) GetStatus() core.ExperimentStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	status := e.status
	status.Errors = append([]error(nil), e.status.Errors...)
	return status
}

// Step advances the agent by one turn and publishes the resulting frame.
func (e *Episode) Step(ctx context.Context) (core.Phase, error) {
	if err := ctx.Err(); err != nil {
		return e.agent.GetPhase(), err
	}

	before := e.agent.GetTurn()
	phase, err := e.agent.Advance(e.world)
	if err != nil {
		e.mu.Lock()
		e.status.Errors = append(e.status.Errors, err)
		e.mu.Unlock()
		return phase, fmt.Errorf("episode %s: %w", e.id, err)
	}

	evt := e.event(messaging.TurnPlayed)
	if e.agent.GetTurn() != before {
		if turn, ok := e.agent.LastTurn(); ok {
			evt.Turn = &turn
		}
	}
	e.publish(evt)
	return phase, nil
}

// Run steps until the agent reaches a terminal phase or the turn cap.
// On cancellation it returns the partial result with ctx.Err().
func (e *Episode) Run(ctx context.Context) (EpisodeResult, error) {
	e.mu.Lock()
	e.status.Running = true
	e.status.StartTime = time.Now()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.status.Running = false
		e.status.EndTime = time.Now()
		e.mu.Unlock()
	}()

	e.logger.Debug("episode started", zap.Int64("seed", e.seed), zap.Strings("layout", layoutOf(e.world)))
	e.publish(e.event(messaging.EpisodeStarted))

	var tick <-chan time.Time
	if e.stepInterval > 0 {
		ticker := time.NewTicker(e.stepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	phase := e.agent.GetPhase()
	for !phase.Terminal() && !e.capReached() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return e.result(), ctx.Err()
			case <-tick:
			}
		}

		var err error
		if phase, err = e.Step(ctx); err != nil {
			return e.result(), err
		}
	}

	result := e.result()
	evt := e.event(messaging.EpisodeFinished)
	evt.Outcome = string(result.Outcome)
	e.publish(evt)

	e.logger.Info("episode finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("score", result.Score),
		zap.Int("turns", result.Turns),
		zap.Bool("wumpus_killed", result.WumpusKilled))
	return result, nil
}

// capReached reports whether the turn cap stops the episode. A retrieving agent on the start cell
// still gets the advance that wins, since winning takes no turn.
func (e *Episode) capReached() bool {
	if e.agent.GetTurn() < e.maxTurns {
		return false
	}
	home := e.agent.GetPosition().Equals(e.world.GetStart())
	return !(e.agent.GetPhase() == core.Retrieving && home)
}

func (e *Episode) result() EpisodeResult {
	outcome := OutcomeTimeout
	switch e.agent.GetPhase() {
	case core.Won:
		outcome = OutcomeWon
	case core.Died:
		outcome = OutcomeDied
	}
	return EpisodeResult{
		EpisodeID:    e.id,
		Seed:         e.seed,
		Outcome:      outcome,
		Score:        e.agent.GetScore(),
		Turns:        e.agent.GetTurn(),
		WumpusKilled: e.agent.ScreamHeard(),
		GoldGrabbed:  e.world.Count(core.Gold) == 0,
		GoldDistance: e.world.GoldDistance(),
	}
}

// Frame snapshots the world and the agent.
func (e *Episode) Frame() *core.Frame {
	percepts, _ := e.world.Percepts(e.agent.GetPosition())
	return &core.Frame{
		Cells:       e.world.Cells(),
		Beliefs:     e.agent.GetBeliefs(),
		Position:    e.agent.GetPosition(),
		Orientation: e.agent.GetOrientation(),
		Percepts:    percepts,
		Phase:       e.agent.GetPhase(),
		Score:       e.agent.GetScore(),
		Turn:        e.agent.GetTurn(),
		Arrows:      e.agent.GetArrows(),
	}
}

func (e *Episode) event(kind messaging.EventKind) messaging.Event {
	evt := messaging.Event{
		Kind:      kind,
		EpisodeID: e.id,
		Phase:     e.agent.GetPhase(),
		Score:     e.agent.GetScore(),
		From:      e.id,
		Timestamp: time.Now(),
	}
	if e.broker != nil {
		evt.Frame = e.Frame()
	}
	return evt
}

func (e *Episode) publish(evt messaging.Event) {
	if e.broker == nil {
		return
	}
	if err := e.broker.Publish(evt); err != nil {
		e.logger.Warn("dropped event", zap.String("kind", string(evt.Kind)), zap.Error(err))
	}
}

type layouter interface {
	Layout() []string
}

func layoutOf(w World) []string {
	if l, ok := w.(layouter); ok {
		return l.Layout()
	}
	return nil
}
