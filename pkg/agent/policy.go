package agent

import (
	"go.uber.org/zap"

	"github.com/boristopalov/wumpus/pkg/core"
)

const (
	safeForwardChance  = 60 // roll below this walks into a known-safe cell
	riskyForwardChance = 80 // roll above this walks into an unresolved cell
)

// chooseAction picks the next action. Rolls are drawn in a fixed order: the forward roll first,
// then the turn roll only when no forward move was taken.
func (a *ExplorerAgent) chooseAction(p core.Percepts) core.Action {
	if p.Glitter {
		return core.Grab
	}

	if a.hunt.located && !a.hunt.scream && a.arrows > 0 {
		offset := a.hunt.cell.Sub(a.position)
		aligned := (offset.X == 0) != (offset.Y == 0)
		if aligned {
			if offset.Dot(a.orientation.Vec()) > 0 {
				return core.Shoot
			}
			return core.Right
		}
	}

	d := a.rng.Intn(100)
	faced := a.position.Add(a.orientation.Vec())
	if b, ok := a.beliefs.Get(faced); ok {
		if b == core.Safe && d < safeForwardChance {
			return core.Forward
		}
		if b != core.Safe && b != core.ConfirmedWumpus && d > riskyForwardChance && a.phase == core.Exploring {
			return core.Forward
		}
	}

	if a.rng.Intn(100)%2 == 0 {
		return core.Right
	}
	return core.Left
}

// applyAction executes action against env and reports whether a shot was answered by a scream.
func (a *ExplorerAgent) applyAction(env core.Environment, action core.Action) bool {
	switch action {
	case core.Forward:
		target := a.position.Add(a.orientation.Vec())
		if !env.TryMove(target) {
			return false
		}
		a.position = target
		a.beliefs.Set(target, core.Safe)
		a.score -= ActionCost
	case core.Right:
		a.orientation = a.orientation.Right()
		a.score -= ActionCost
	case core.Left:
		a.orientation = a.orientation.Left()
		a.score -= ActionCost
	case core.Grab:
		if env.RemoveGold(a.position) {
			a.logger.Info("gold grabbed", zap.Stringer("position", a.position), zap.Int("turn", a.turn))
		}
		a.phase = core.Retrieving
	case core.Shoot:
		a.arrows--
		a.score -= ActionCost
		if !env.TryShoot(a.position, a.orientation) {
			a.logger.Info("arrow missed",
				zap.Stringer("target", a.hunt.cell),
				zap.Stringer("orientation", a.orientation))
			return false
		}
		a.resolveScream()
		a.logger.Info("wumpus killed", zap.Stringer("cell", a.hunt.cell), zap.Int("turn", a.turn))
		return true
	}
	return false
}
