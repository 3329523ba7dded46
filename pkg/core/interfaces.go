package core

// Environment is the query surface an agent is allowed to use.
// It never reveals hazard locations except through percepts.
type Environment interface {
	// GetSize returns the grid width and height
	GetSize() (int, int)
	// GetStart returns the designated start cell
	GetStart() Vec
	// Percepts returns the cues at cell, or ErrOutOfBounds
	Percepts(cell Vec) (Percepts, error)
	// TryMove reports whether target is inside the grid
	TryMove(target Vec) bool
	// RemoveGold clears gold from cell and reports whether there was any
	RemoveGold(cell Vec) bool
	// TryShoot fires from origin along dir and reports whether a wumpus was hit
	TryShoot(origin Vec, dir Direction) bool
}
