package environment

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/boristopalov/wumpus/pkg/core"
)

var (
	ErrInvalidParams    = errors.New("invalid world parameters")
	ErrLayoutDoesNotFit = errors.New("hazards and gold do not fit in the grid")
	ErrInvalidLayout    = errors.New("invalid layout")
)

// WorldParams are the knobs of a generated world.
type WorldParams struct {
	Width  int
	Height int
	Wumpus int
	Pits   int
}

func DefaultWorldParams() WorldParams {
	return WorldParams{
		Width:  4,
		Height: 4,
		Wumpus: 1,
		Pits:   2,
	}
}

// Validate checks that generation can terminate: start, gold and every hazard need their own cell.
func (p WorldParams) Validate() error {
	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidParams, p.Width, p.Height)
	}
	if p.Wumpus < 0 || p.Pits < 0 {
		return fmt.Errorf("%w: negative hazard count (wumpus=%d, pits=%d)", ErrInvalidParams, p.Wumpus, p.Pits)
	}
	if p.Wumpus+p.Pits+2 > p.Width*p.Height {
		return fmt.Errorf("%w: %d wumpus + %d pits + start + gold need more than %dx%d cells",
			ErrLayoutDoesNotFit, p.Wumpus, p.Pits, p.Width, p.Height)
	}
	return nil
}

// WumpusEnvironment owns the ground truth of one world.
type WumpusEnvironment struct {
	grid    *core.Grid[core.CellContent]
	start   core.Vec
	gold    core.Vec
	hasGold bool
	mu      sync.RWMutex
}

// NewWumpusEnvironment generates a random world. A nil rng falls back to a time-seeded source.
func NewWumpusEnvironment(params WorldParams, rng *rand.Rand) (*WumpusEnvironment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	grid := core.NewGrid(params.Width, params.Height, core.Empty)

	// the start cell sits on the west column or the south row
	x := rng.Intn(params.Width)
	y := rng.Intn(params.Height)
	start := core.V(0, y)
	if rng.Intn(2) == 1 {
		start = core.V(x, 0)
	}
	grid.Set(start, core.Start)

	place := func(content core.CellContent) core.Vec {
		for {
			cell := core.V(rng.Intn(params.Width), rng.Intn(params.Height))
			if c, _ := grid.Get(cell); c == core.Empty {
				grid.Set(cell, content)
				return cell
			}
		}
	}

	for i := 0; i < params.Wumpus; i++ {
		place(core.Wumpus)
	}
	for i := 0; i < params.Pits; i++ {
		place(core.Pit)
	}
	gold := place(core.Gold)

	return &WumpusEnvironment{
		grid:    grid,
		start:   start,
		gold:    gold,
		hasGold: true,
	}, nil
}

// NewWumpusEnvironmentFromLayout builds a world from text rows, northernmost row first.
// Symbols: '.' empty, 'S' start, 'W' wumpus, 'X' dead wumpus, 'P' pit, 'G' gold.
func NewWumpusEnvironmentFromLayout(rows []string) (*WumpusEnvironment, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	height := len(rows)
	width := len(rows[0])
	grid := core.NewGrid(width, height, core.Empty)

	env := &WumpusEnvironment{grid: grid}
	starts := 0
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, i, len(row), width)
		}
		y := height - 1 - i
		for x, sym := range row {
			cell := core.V(x, y)
			var content core.CellContent
			switch sym {
			case '.':
				content = core.Empty
			case 'S':
				content = core.Start
				env.start = cell
				starts++
			case 'W':
				content = core.Wumpus
			case 'X':
				content = core.DeadWumpus
			case 'P':
				content = core.Pit
			case 'G':
				if env.hasGold {
					return nil, fmt.Errorf("%w: more than one gold cell", ErrInvalidLayout)
				}
				content = core.Gold
				env.gold = cell
				env.hasGold = true
			default:
				return nil, fmt.Errorf("%w: unknown symbol %q at %v", ErrInvalidLayout, sym, cell)
			}
			grid.Set(cell, content)
		}
	}
	if starts != 1 {
		return nil, fmt.Errorf("%w: need exactly one start cell, got %d", ErrInvalidLayout, starts)
	}
	return env, nil
}

func (e *WumpusEnvironment) GetSize() (int, int) {
	return e.grid.Width(), e.grid.Height()
}

func (e *WumpusEnvironment) GetStart() core.Vec {
	return e.start
}

// Percepts returns the cues observable at cell.
func (e *WumpusEnvironment) Percepts(cell core.Vec) (core.Percepts, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	content, ok := e.grid.Get(cell)
	if !ok {
		return core.Percepts{}, fmt.Errorf("percepts at %v: %w", cell, core.ErrOutOfBounds)
	}
	if content.Lethal() {
		return core.Percepts{Died: true}, nil
	}

	var p core.Percepts
	for _, n := range core.Neighbors(cell) {
		neighbor, ok := e.grid.Get(n)
		if !ok {
			continue
		}
		switch neighbor {
		case core.Wumpus:
			p.Stench = true
		case core.Pit:
			p.Breeze = true
		}
	}
	p.Glitter = content == core.Gold
	return p, nil
}

func (e *WumpusEnvironment) TryMove(target core.Vec) bool {
	return e.grid.InBounds(target)
}

// RemoveGold clears the gold from cell. It reports false when there was nothing to pick up.
func (e *WumpusEnvironment) RemoveGold(cell core.Vec) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.grid.Get(cell); !ok || c != core.Gold {
		return false
	}
	e.grid.Set(cell, core.Empty)
	return true
}

// TryShoot sends an arrow from origin along dir until it leaves the grid.
// The first live wumpus on the way dies and the call reports a hit.
func (e *WumpusEnvironment) TryShoot(origin core.Vec, dir core.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	step := dir.Vec()
	for cell := origin.Add(step); e.grid.InBounds(cell); cell = cell.Add(step) {
		if c, _ := e.grid.Get(cell); c == core.Wumpus {
			e.grid.Set(cell, core.DeadWumpus)
			return true
		}
	}
	return false
}

// GetCell returns the content of one cell.
func (e *WumpusEnvironment) GetCell(cell core.Vec) (core.CellContent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.grid.Get(cell)
	if !ok {
		return core.Empty, fmt.Errorf("cell %v: %w", cell, core.ErrOutOfBounds)
	}
	return c, nil
}

// Cells returns a copy of the whole grid for display.
func (e *WumpusEnvironment) Cells() *core.Grid[core.CellContent] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Clone()
}

// Count returns how many cells currently hold content.
func (e *WumpusEnvironment) Count(content core.CellContent) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Count(func(c core.CellContent) bool { return c == content })
}

// GoldDistance is the straight-line distance from start to where the gold was placed.
func (e *WumpusEnvironment) GoldDistance() float64 {
	if !e.hasGold {
		return 0
	}
	return e.start.Dist(e.gold)
}

// Layout renders the grid with the symbols accepted by NewWumpusEnvironmentFromLayout.
func (e *WumpusEnvironment) Layout() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	w, h := e.grid.Width(), e.grid.Height()
	rows := make([]string, 0, h)
	for y := h - 1; y >= 0; y-- {
		row := make([]byte, w)
		for x := 0; x < w; x++ {
			c, _ := e.grid.Get(core.V(x, y))
			row[x] = layoutSymbols[c]
		}
		rows = append(rows, string(row))
	}
	return rows
}

var layoutSymbols = map[core.CellContent]byte{
	core.Empty:      '.',
	core.Start:      'S',
	core.Wumpus:     'W',
	core.DeadWumpus: 'X',
	core.Pit:        'P',
	core.Gold:       'G',
}
