package core

// Direction is a compass heading. The declaration order is the clockwise cycle.
type Direction int

const (
	East Direction = iota
	South
	West
	North
)

var directionNames = [...]string{"east", "south", "west", "north"}

var directionSteps = [...]Vec{
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: -1},
	West:  {X: -1, Y: 0},
	North: {X: 0, Y: 1},
}

func (d Direction) String() string {
	if d < East || d > North {
		return "unknown"
	}
	return directionNames[d]
}

// Right turns clockwise by one step.
func (d Direction) Right() Direction {
	return (d + 1) % 4
}

// Left turns counter-clockwise by one step.
func (d Direction) Left() Direction {
	return (d + 3) % 4
}

// Vec returns the unit step for d.
func (d Direction) Vec() Vec {
	return directionSteps[d]
}

// DirectionOf maps a unit axis vector back to its direction.
func DirectionOf(v Vec) (Direction, bool) {
	for d, step := range directionSteps {
		if step.Equals(v) {
			return Direction(d), true
		}
	}
	return East, false
}

// Bearing returns the direction from one cell to another when both share a row or a column.
func Bearing(from, to Vec) (Direction, bool) {
	offset := to.Sub(from)
	if (offset.X != 0 && offset.Y != 0) || offset.LengthSq() == 0 {
		return East, false
	}
	ux, uy := offset.Normalize()
	return DirectionOf(Vec{X: int(ux), Y: int(uy)})
}
