package world

// Position is a tile coordinate. Z selects the map layer; range queries
// never cross layers.
type Position struct {
	X int
	Y int
	Z int
}

// Direction of a single-tile step.
type Direction int

const (
	North Direction = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest
)

const (
	minDirection = North
	maxDirection = Northwest
)

var dirDX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
var dirDY = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}

// Moved returns the position one step in the given direction.
func (p Position) Moved(d Direction) Position {
	p.X += dirDX[d]
	p.Y += dirDY[d]
	return p
}

// Chebyshev returns the L-inf distance between two positions on the plane.
// Z is ignored; callers filter by layer themselves.
func Chebyshev(a, b Position) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// MirrorX flips the horizontal component of a direction. Mirroring at the
// spawn area border keeps a leashed monster in range under the L-inf metric.
func (d Direction) MirrorX() Direction {
	switch d {
	case Northeast:
		return Northwest
	case East:
		return West
	case Southeast:
		return Southwest
	case Southwest:
		return Southeast
	case West:
		return East
	case Northwest:
		return Northeast
	}
	return d
}

// MirrorY flips the vertical component of a direction.
func (d Direction) MirrorY() Direction {
	switch d {
	case North:
		return South
	case Northeast:
		return Southeast
	case Southeast:
		return Northeast
	case South:
		return North
	case Southwest:
		return Northwest
	case Northwest:
		return Southwest
	}
	return d
}

// TowardDirection returns the step direction from one position toward
// another, reducing each axis delta to its sign.
func TowardDirection(from, to Position) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if dx > 0 {
		dx = 1
	} else if dx < 0 {
		dx = -1
	}
	if dy > 0 {
		dy = 1
	} else if dy < 0 {
		dy = -1
	}
	for d := minDirection; d <= maxDirection; d++ {
		if dirDX[d] == dx && dirDY[d] == dy {
			return d
		}
	}
	return North
}

// Terrain answers whether a position has a walkable backing field.
// Implemented by the map layer; a missing field is reported as not walkable.
type Terrain interface {
	Walkable(pos Position) bool
}
