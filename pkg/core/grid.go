package core

// Grid is a fixed-size rectangular array of cells covering [0,width) x [0,height).
type Grid[T any] struct {
	width  int
	height int
	cells  []T
}

func NewGrid[T any](width, height int, fill T) *Grid[T] {
	cells := make([]T, width*height)
	for i := range cells {
		cells[i] = fill
	}
	return &Grid[T]{
		width:  width,
		height: height,
		cells:  cells,
	}
}

func (g *Grid[T]) Width() int {
	return g.width
}

func (g *Grid[T]) Height() int {
	return g.height
}

func (g *Grid[T]) InBounds(v Vec) bool {
	return v.X >= 0 && v.X < g.width && v.Y >= 0 && v.Y < g.height
}

// Get returns the value at v and false when v is outside the grid.
func (g *Grid[T]) Get(v Vec) (T, bool) {
	if !g.InBounds(v) {
		var zero T
		return zero, false
	}
	return g.cells[v.X*g.height+v.Y], true
}

// Set stores value at v and reports whether v was inside the grid.
func (g *Grid[T]) Set(v Vec, value T) bool {
	if !g.InBounds(v) {
		return false
	}
	g.cells[v.X*g.height+v.Y] = value
	return true
}

// Each visits every cell, columns first.
func (g *Grid[T]) Each(fn func(v Vec, value T)) {
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			fn(Vec{X: x, Y: y}, g.cells[x*g.height+y])
		}
	}
}

func (g *Grid[T]) Count(pred func(T) bool) int {
	n := 0
	for _, c := range g.cells {
		if pred(c) {
			n++
		}
	}
	return n
}

func (g *Grid[T]) Clone() *Grid[T] {
	cells := make([]T, len(g.cells))
	copy(cells, g.cells)
	return &Grid[T]{
		width:  g.width,
		height: g.height,
		cells:  cells,
	}
}
