package core

// Frame is a read-only snapshot of a world and its agent, taken between turns for display.
type Frame struct {
	Cells       *Grid[CellContent]
	Beliefs     *Grid[Belief]
	Position    Vec
	Orientation Direction
	Percepts    Percepts
	Phase       Phase
	Score       int
	Turn        int
	Arrows      int
}
