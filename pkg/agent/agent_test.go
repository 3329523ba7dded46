package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boristopalov/wumpus/pkg/core"
	"github.com/boristopalov/wumpus/pkg/environment"
)

func newFixture(t *testing.T, seed int64, rows ...string) (*environment.WumpusEnvironment, *ExplorerAgent) {
	t.Helper()
	env, err := environment.NewWumpusEnvironmentFromLayout(rows)
	require.NoError(t, err)
	a, err := NewExplorerAgent(env,
		WithAgentID("test-agent"),
		WithSeed(seed),
		WithMemoryCapacity(50000))
	require.NoError(t, err)
	return env, a
}

func TestNewExplorerAgent(t *testing.T) {
	env, a := newFixture(t, 1,
		"...",
		"S..",
	)

	assert.Equal(t, "test-agent", a.GetID())
	assert.Equal(t, env.GetStart(), a.GetPosition())
	assert.Equal(t, core.East, a.GetOrientation())
	assert.Equal(t, core.Exploring, a.GetPhase())
	assert.Equal(t, 0, a.GetScore())
	assert.Equal(t, 0, a.GetTurn())
	assert.Equal(t, 1, a.GetArrows())
	_, located := a.WumpusLocated()
	assert.False(t, located)
	_, ok := a.LastTurn()
	assert.False(t, ok)

	beliefs := a.GetBeliefs()
	assert.Equal(t, 1, beliefs.Count(func(b core.Belief) bool { return b == core.Safe }))
	b, ok := a.GetBelief(core.V(0, 0))
	require.True(t, ok)
	assert.Equal(t, core.Safe, b)

	t.Run("default id", func(t *testing.T) {
		other, err := NewExplorerAgent(env)
		require.NoError(t, err)
		assert.Contains(t, other.GetID(), "agent-")
	})

	t.Run("invalid params", func(t *testing.T) {
		_, err := NewExplorerAgent(nil)
		assert.ErrorIs(t, err, ErrInvalidAgentParams)
		_, err = NewExplorerAgent(env, WithArrows(-1))
		assert.ErrorIs(t, err, ErrInvalidAgentParams)
	})
}

func TestInferBelief(t *testing.T) {
	tests := []struct {
		name   string
		in     core.Belief
		stench bool
		breeze bool
		want   core.Belief
	}{
		{"stench on unknown", core.Unknown, true, false, core.PossibleWumpus},
		{"stench on pit candidate", core.PossiblePit, true, false, core.PossibleBoth},
		{"stench keeps wumpus candidate", core.PossibleWumpus, true, false, core.PossibleWumpus},
		{"breeze on unknown", core.Unknown, false, true, core.PossiblePit},
		{"breeze on wumpus candidate", core.PossibleWumpus, false, true, core.PossibleBoth},
		{"breeze keeps both", core.PossibleBoth, false, true, core.PossibleBoth},
		{"both cues on unknown", core.Unknown, true, true, core.PossibleBoth},
		{"both cues on pit candidate", core.PossiblePit, true, true, core.PossibleBoth},
		{"safe is never downgraded", core.Safe, true, true, core.Safe},
		{"confirmed stays confirmed", core.ConfirmedWumpus, false, true, core.ConfirmedWumpus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferBelief(tt.in, tt.stench, tt.breeze))
		})
	}
}

func TestUpdateBeliefs(t *testing.T) {
	t.Run("quiet cell clears every neighbor", func(t *testing.T) {
		_, a := newFixture(t, 1,
			"...",
			"...",
			".S.",
		)
		a.beliefs.Set(core.V(0, 0), core.PossiblePit)
		a.beliefs.Set(core.V(1, 1), core.PossibleBoth)
		a.updateBeliefs(core.Percepts{})

		for _, n := range []core.Vec{core.V(0, 0), core.V(2, 0), core.V(1, 1)} {
			b, _ := a.GetBelief(n)
			assert.Equal(t, core.Safe, b, "neighbor %v", n)
		}
		b, _ := a.GetBelief(core.V(1, 2))
		assert.Equal(t, core.Unknown, b)
	})

	t.Run("quiet cell drops a hunt on a neighbor", func(t *testing.T) {
		_, a := newFixture(t, 1, "S..")
		a.beliefs.Set(core.V(1, 0), core.ConfirmedWumpus)
		a.hunt = hunt{located: true, cell: core.V(1, 0), prior: core.PossibleWumpus}
		a.updateBeliefs(core.Percepts{})

		_, located := a.WumpusLocated()
		assert.False(t, located)
		b, _ := a.GetBelief(core.V(1, 0))
		assert.Equal(t, core.Safe, b)
	})

	t.Run("cues leave safe neighbors alone", func(t *testing.T) {
		_, a := newFixture(t, 1,
			"..",
			"S.",
		)
		a.beliefs.Set(core.V(1, 0), core.Safe)
		a.updateBeliefs(core.Percepts{Stench: true, Breeze: true})

		b, _ := a.GetBelief(core.V(1, 0))
		assert.Equal(t, core.Safe, b)
		b, _ = a.GetBelief(core.V(0, 1))
		assert.Equal(t, core.PossibleBoth, b)
		b, _ = a.GetBelief(core.V(1, 1))
		assert.Equal(t, core.Unknown, b)
	})
}

func TestDeduceWumpus(t *testing.T) {
	resolved := func(t *testing.T) *ExplorerAgent {
		_, a := newFixture(t, 1,
			"..",
			"S.",
		)
		a.beliefs.Set(core.V(0, 1), core.Safe)
		a.beliefs.Set(core.V(1, 0), core.PossiblePit)
		a.beliefs.Set(core.V(1, 1), core.PossibleBoth)
		return a
	}

	t.Run("single candidate on a resolved grid is confirmed", func(t *testing.T) {
		a := resolved(t)
		a.deduceWumpus()

		cell, located := a.WumpusLocated()
		require.True(t, located)
		assert.Equal(t, core.V(1, 1), cell)
		assert.Equal(t, core.PossibleBoth, a.hunt.prior)
		b, _ := a.GetBelief(cell)
		assert.Equal(t, core.ConfirmedWumpus, b)
	})

	t.Run("unknown cells block deduction", func(t *testing.T) {
		a := resolved(t)
		a.beliefs.Set(core.V(1, 0), core.Unknown)
		a.deduceWumpus()
		_, located := a.WumpusLocated()
		assert.False(t, located)
	})

	t.Run("two candidates are ambiguous", func(t *testing.T) {
		a := resolved(t)
		a.beliefs.Set(core.V(1, 0), core.PossibleWumpus)
		a.deduceWumpus()
		_, located := a.WumpusLocated()
		assert.False(t, located)
		b, _ := a.GetBelief(core.V(1, 1))
		assert.Equal(t, core.PossibleBoth, b)
	})

	t.Run("resolved grid without candidates", func(t *testing.T) {
		a := resolved(t)
		a.beliefs.Set(core.V(1, 1), core.PossiblePit)
		a.deduceWumpus()
		_, located := a.WumpusLocated()
		assert.False(t, located)
		assert.Zero(t, a.GetBeliefs().Count(func(b core.Belief) bool { return b == core.ConfirmedWumpus }))
	})

	t.Run("only while exploring", func(t *testing.T) {
		a := resolved(t)
		a.phase = core.Retrieving
		a.deduceWumpus()
		_, located := a.WumpusLocated()
		assert.False(t, located)
	})
}

// Scenario: no hazards, gold next to the start cell. The agent must grab it, walk back and win,
// paying one point per rotation, successful step and shot.
func TestAdvanceWinsHazardFreeWorld(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		env, a := newFixture(t, seed,
			"....",
			"....",
			"....",
			"SG..",
		)

		phase := a.GetPhase()
		for i := 0; i < 20000 && !phase.Terminal(); i++ {
			var err error
			phase, err = a.Advance(env)
			require.NoError(t, err)
		}
		require.Equal(t, core.Won, phase, "seed %d", seed)
		assert.Equal(t, 0, env.Count(core.Gold))
		assert.Equal(t, env.GetStart(), a.GetPosition())

		cost := 0
		prev := env.GetStart()
		grabs := 0
		for _, turn := range a.GetMemory().GetAll() {
			switch turn.Action {
			case core.Right, core.Left, core.Shoot:
				cost++
			case core.Forward:
				if !turn.Position.Equals(prev) {
					cost++
				}
			case core.Grab:
				grabs++
			}
			prev = turn.Position
		}
		assert.Equal(t, 1, grabs)
		assert.Equal(t, WinReward-cost, a.GetScore(), "seed %d", seed)
		assert.Equal(t, len(a.GetMemory().GetAll()), a.GetTurn())

		// terminal phases are sticky
		phase, err := a.Advance(env)
		require.NoError(t, err)
		assert.Equal(t, core.Won, phase)
		assert.Equal(t, WinReward-cost, a.GetScore())
	}
}

func TestAdvanceDiesOnHazard(t *testing.T) {
	env, a := newFixture(t, 1,
		"....",
		"....",
		"....",
		"SP..",
	)
	a.position = core.V(1, 0)
	a.score = -7
	before := a.GetBeliefs()

	phase, err := a.Advance(env)
	require.NoError(t, err)
	assert.Equal(t, core.Died, phase)
	assert.Equal(t, -7-DeathPenalty, a.GetScore())
	assert.Equal(t, core.V(1, 0), a.GetPosition())
	assert.Equal(t, core.East, a.GetOrientation())
	assert.Equal(t, 0, a.GetTurn())
	assert.Equal(t, before, a.GetBeliefs())
	assert.Equal(t, 0, a.GetMemory().Len())

	phase, err = a.Advance(env)
	require.NoError(t, err)
	assert.Equal(t, core.Died, phase)
	assert.Equal(t, -7-DeathPenalty, a.GetScore())
}

func TestAdvanceOutOfBounds(t *testing.T) {
	env, a := newFixture(t, 1, "S.")
	a.position = core.V(5, 5)
	_, err := a.Advance(env)
	assert.ErrorIs(t, err, core.ErrOutOfBounds)
}

func TestHunt(t *testing.T) {
	setup := func(t *testing.T, prior core.Belief, target core.Vec, rows ...string) (*environment.WumpusEnvironment, *ExplorerAgent) {
		env, a := newFixture(t, 1, rows...)
		a.orientation = core.West
		a.beliefs.Set(target, core.ConfirmedWumpus)
		a.hunt = hunt{located: true, cell: target, prior: prior}
		return env, a
	}

	t.Run("aligned but facing away turns right until facing, then shoots", func(t *testing.T) {
		env, a := setup(t, core.PossibleWumpus, core.V(3, 0),
			"....",
			"....",
			"....",
			"S..W",
		)

		var actions []core.Action
		for i := 0; i < 3; i++ {
			_, err := a.Advance(env)
			require.NoError(t, err)
			last, ok := a.LastTurn()
			require.True(t, ok)
			actions = append(actions, last.Action)
		}
		assert.Equal(t, []core.Action{core.Right, core.Right, core.Shoot}, actions)
		assert.Equal(t, core.East, a.GetOrientation())

		last, _ := a.LastTurn()
		assert.True(t, last.Scream)
		assert.True(t, a.ScreamHeard())
		assert.Equal(t, 0, a.GetArrows())
		assert.Equal(t, -3, a.GetScore())
		assert.Equal(t, 1, env.Count(core.DeadWumpus))
		b, _ := a.GetBelief(core.V(3, 0))
		assert.Equal(t, core.Safe, b)
	})

	t.Run("pit candidate stays suspect after the scream", func(t *testing.T) {
		env, a := setup(t, core.PossibleBoth, core.V(0, 3),
			"W...",
			"....",
			"....",
			"S...",
		)
		a.orientation = core.North

		_, err := a.Advance(env)
		require.NoError(t, err)
		last, _ := a.LastTurn()
		assert.Equal(t, core.Shoot, last.Action)
		assert.True(t, last.Scream)
		b, _ := a.GetBelief(core.V(0, 3))
		assert.Equal(t, core.PossiblePit, b)
	})

	t.Run("a hit while retrieving leaves the beliefs frozen", func(t *testing.T) {
		env, a := setup(t, core.PossibleWumpus, core.V(3, 0),
			"....",
			"....",
			"....",
			"S..W",
		)
		a.position = core.V(1, 0)
		a.orientation = core.East
		a.phase = core.Retrieving
		before := a.GetBeliefs()

		phase, err := a.Advance(env)
		require.NoError(t, err)
		assert.Equal(t, core.Retrieving, phase)
		last, _ := a.LastTurn()
		assert.Equal(t, core.Shoot, last.Action)
		assert.True(t, last.Scream)
		assert.True(t, a.ScreamHeard())
		assert.Equal(t, 1, env.Count(core.DeadWumpus))
		assert.Equal(t, before, a.GetBeliefs())
		b, _ := a.GetBelief(core.V(3, 0))
		assert.Equal(t, core.ConfirmedWumpus, b)
	})

	t.Run("a miss abandons the hunt", func(t *testing.T) {
		env, a := setup(t, core.PossibleWumpus, core.V(3, 0),
			"...W",
			"....",
			"....",
			"S...",
		)
		a.orientation = core.East

		_, err := a.Advance(env)
		require.NoError(t, err)
		last, _ := a.LastTurn()
		assert.Equal(t, core.Shoot, last.Action)
		assert.False(t, last.Scream)
		assert.Equal(t, 0, a.GetArrows())
		assert.Equal(t, 1, env.Count(core.Wumpus))

		for i := 0; i < 50 && !a.GetPhase().Terminal(); i++ {
			_, err := a.Advance(env)
			require.NoError(t, err)
			last, _ := a.LastTurn()
			assert.NotEqual(t, core.Shoot, last.Action)
		}
	})

	t.Run("unaligned wumpus falls through to exploration", func(t *testing.T) {
		_, a := setup(t, core.PossibleWumpus, core.V(2, 2),
			"....",
			"....",
			"....",
			"S...",
		)
		for i := 0; i < 20; i++ {
			action := a.chooseAction(core.Percepts{})
			assert.NotEqual(t, core.Shoot, action)
		}
	})
}

func TestChooseActionGlitterFirst(t *testing.T) {
	_, a := newFixture(t, 1, "SG")
	a.hunt = hunt{located: true, cell: core.V(1, 0)}
	assert.Equal(t, core.Grab, a.chooseAction(core.Percepts{Glitter: true, Stench: true}))
}

func TestChooseActionNeverEntersConfirmedWumpus(t *testing.T) {
	_, a := newFixture(t, 1, "S.")
	a.beliefs.Set(core.V(1, 0), core.ConfirmedWumpus)
	a.arrows = 0
	for i := 0; i < 200; i++ {
		assert.NotEqual(t, core.Forward, a.chooseAction(core.Percepts{}))
	}
}

func TestSafeCellsStaySafe(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		env, err := environment.NewWumpusEnvironment(environment.DefaultWorldParams(), rng)
		require.NoError(t, err)
		a, err := NewExplorerAgent(env, WithSeed(seed^0x5eed))
		require.NoError(t, err)

		for i := 0; i < 300 && !a.GetPhase().Terminal(); i++ {
			before := a.GetBeliefs()
			wasExploring := a.GetPhase() == core.Exploring

			_, err := a.Advance(env)
			require.NoError(t, err)

			after := a.GetBeliefs()
			before.Each(func(v core.Vec, b core.Belief) {
				now, _ := after.Get(v)
				if b == core.Safe {
					assert.Equal(t, core.Safe, now, "seed %d turn %d cell %v", seed, a.GetTurn(), v)
				}
				if !wasExploring {
					assert.Equal(t, b, now, "beliefs changed after exploring, seed %d cell %v", seed, v)
				}
			})
			if !a.GetPhase().Terminal() {
				here, _ := after.Get(a.GetPosition())
				assert.Equal(t, core.Safe, here)
			}
		}
	}
}
