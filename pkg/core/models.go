package core

import (
	"errors"
	"strings"
	"time"
)

var ErrOutOfBounds = errors.New("cell is outside the grid")

// CellContent is the ground truth held by one environment cell.
type CellContent int

const (
	Empty CellContent = iota
	Start
	Wumpus
	Pit
	Gold
	DeadWumpus
)

func (c CellContent) String() string {
	switch c {
	case Empty:
		return "empty"
	case Start:
		return "start"
	case Wumpus:
		return "wumpus"
	case Pit:
		return "pit"
	case Gold:
		return "gold"
	case DeadWumpus:
		return "dead-wumpus"
	}
	return "invalid"
}

// Lethal reports whether entering a cell with this content kills the agent.
func (c CellContent) Lethal() bool {
	return c == Wumpus || c == Pit
}

// Belief is the agent's private tag for a cell.
type Belief int

const (
	Unknown Belief = iota
	Safe
	PossibleWumpus
	PossiblePit
	PossibleBoth
	ConfirmedWumpus
)

func (b Belief) String() string {
	switch b {
	case Unknown:
		return "unknown"
	case Safe:
		return "safe"
	case PossibleWumpus:
		return "possible-wumpus"
	case PossiblePit:
		return "possible-pit"
	case PossibleBoth:
		return "possible-both"
	case ConfirmedWumpus:
		return "confirmed-wumpus"
	}
	return "invalid"
}

// WumpusCandidate reports whether the tag leaves room for a live wumpus.
func (b Belief) WumpusCandidate() bool {
	return b == PossibleWumpus || b == PossibleBoth
}

// Cue names understood by Percepts.Has.
const (
	CueStench  = "stench"
	CueBreeze  = "breeze"
	CueGlitter = "glitter"
	CueDied    = "died"
)

// Percepts is the set of local cues observed at one cell.
type Percepts struct {
	Stench  bool
	Breeze  bool
	Glitter bool
	Died    bool
}

// Has reports whether the named cue is present.
func (p Percepts) Has(cue string) bool {
	switch cue {
	case CueStench:
		return p.Stench
	case CueBreeze:
		return p.Breeze
	case CueGlitter:
		return p.Glitter
	case CueDied:
		return p.Died
	}
	return false
}

// Cues lists the present cues. A died signal hides every other cue.
func (p Percepts) Cues() []string {
	if p.Died {
		return []string{CueDied}
	}
	cues := make([]string, 0, 3)
	if p.Stench {
		cues = append(cues, CueStench)
	}
	if p.Breeze {
		cues = append(cues, CueBreeze)
	}
	if p.Glitter {
		cues = append(cues, CueGlitter)
	}
	return cues
}

func (p Percepts) String() string {
	return strings.Join(p.Cues(), ", ")
}

// Phase is the agent's macro objective.
type Phase int

const (
	Exploring Phase = iota
	Retrieving
	Won
	Died
)

func (p Phase) String() string {
	switch p {
	case Exploring:
		return "exploring"
	case Retrieving:
		return "retrieving"
	case Won:
		return "won"
	case Died:
		return "died"
	}
	return "invalid"
}

// Goal is the text shown to a viewer for the phase.
func (p Phase) Goal() string {
	switch p {
	case Exploring:
		return "look"
	case Retrieving:
		return "go back"
	case Won:
		return "agent won"
	case Died:
		return "agent died"
	}
	return ""
}

func (p Phase) Terminal() bool {
	return p == Won || p == Died
}

type Action int

const (
	NoAction Action = iota
	Forward
	Right
	Left
	Grab
	Shoot
)

func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Right:
		return "right"
	case Left:
		return "left"
	case Grab:
		return "grab"
	case Shoot:
		return "shoot"
	}
	return "none"
}

// Turn records one executed agent turn.
type Turn struct {
	Number      int
	Percepts    Percepts
	Action      Action
	Position    Vec
	Orientation Direction
	Score       int
	Phase       Phase
	Scream      bool
	Timestamp   time.Time
}

type ExperimentStatus struct {
	Running   bool
	StartTime time.Time
	EndTime   time.Time
	Errors    []error
}
