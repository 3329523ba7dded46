package core

import (
	"fmt"
	"math"
)

// Vec is a grid coordinate (column, row). Rows grow northwards.
type Vec struct {
	X int
	Y int
}

func V(x, y int) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec) Scale(k int) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y}
}

func (v Vec) Equals(o Vec) bool {
	return v.X == o.X && v.Y == o.Y
}

// LengthSq returns the squared magnitude.
func (v Vec) LengthSq() int {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec) Magnitude() float64 {
	return math.Sqrt(float64(v.LengthSq()))
}

// Less orders vectors by squared magnitude.
func (v Vec) Less(o Vec) bool {
	return v.LengthSq() < o.LengthSq()
}

// Normalize returns the unit vector pointing the same way as v.
// The zero vector normalizes to itself.
func (v Vec) Normalize() (float64, float64) {
	m := v.Magnitude()
	if m == 0 {
		return 0, 0
	}
	return float64(v.X) / m, float64(v.Y) / m
}

func (v Vec) Dot(o Vec) int {
	return v.X*o.X + v.Y*o.Y
}

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return v.Sub(o).Magnitude()
}

func (v Vec) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

// Neighbors returns the four orthogonal neighbors of v in north, south, east, west order.
// Bounds are not checked.
func Neighbors(v Vec) []Vec {
	return []Vec{
		v.Add(North.Vec()),
		v.Add(South.Vec()),
		v.Add(East.Vec()),
		v.Add(West.Vec()),
	}
}
