package agent

import (
	"go.uber.org/zap"

	"github.com/boristopalov/wumpus/pkg/core"
)

// updateBeliefs refines the tags of the cells around the agent from what it perceives here.
func (a *ExplorerAgent) updateBeliefs(p core.Percepts) {
	a.beliefs.Set(a.position, core.Safe)

	quiet := !p.Stench && !p.Breeze
	for _, n := range core.Neighbors(a.position) {
		b, ok := a.beliefs.Get(n)
		if !ok {
			continue
		}
		if quiet {
			a.beliefs.Set(n, core.Safe)
			if a.hunt.located && !a.hunt.scream && a.hunt.cell.Equals(n) {
				a.logger.Debug("hunted cell ruled out", zap.Stringer("cell", n))
				a.hunt = hunt{}
			}
			continue
		}
		a.beliefs.Set(n, inferBelief(b, p.Stench, p.Breeze))
	}
}

// inferBelief is the tag a neighbor gets when at least one hazard cue is present.
// Safe and confirmed cells keep their tag.
func inferBelief(b core.Belief, stench, breeze bool) core.Belief {
	if b == core.Safe || b == core.ConfirmedWumpus {
		return b
	}
	switch {
	case stench && breeze:
		return core.PossibleBoth
	case stench:
		switch b {
		case core.Unknown:
			return core.PossibleWumpus
		case core.PossiblePit:
			return core.PossibleBoth
		}
	case breeze:
		switch b {
		case core.Unknown:
			return core.PossiblePit
		case core.PossibleWumpus:
			return core.PossibleBoth
		}
	}
	return b
}

// deduceWumpus confirms the wumpus once the grid is fully resolved and a single candidate remains.
func (a *ExplorerAgent) deduceWumpus() {
	if a.phase != core.Exploring || a.hunt.located {
		return
	}

	unknown := 0
	var candidates []core.Vec
	a.beliefs.Each(func(v core.Vec, b core.Belief) {
		switch {
		case b == core.Unknown:
			unknown++
		case b.WumpusCandidate():
			candidates = append(candidates, v)
		}
	})
	if unknown > 0 || len(candidates) != 1 {
		return
	}

	cell := candidates[0]
	prior, _ := a.beliefs.Get(cell)
	a.beliefs.Set(cell, core.ConfirmedWumpus)
	a.hunt = hunt{
		located: true,
		cell:    cell,
		prior:   prior,
	}
	a.logger.Info("wumpus located",
		zap.Stringer("cell", cell),
		zap.Stringer("prior", prior),
		zap.Int("turn", a.turn))
}

// resolveScream clears the confirmed tag after a hit. A cell that could also hold a pit stays suspect.
// Outside exploring the belief grid is frozen, so only the scream is recorded.
func (a *ExplorerAgent) resolveScream() {
	a.hunt.scream = true
	if a.phase != core.Exploring {
		return
	}
	next := core.Safe
	if a.hunt.prior == core.PossibleBoth {
		next = core.PossiblePit
	}
	a.beliefs.Set(a.hunt.cell, next)
}
