package world

// Route is an ordered waypoint path an actor follows autonomously.
type Route struct {
	waypoints []Position
	cursor    int
}

// NewRoute builds a route over the given waypoints.
func NewRoute(waypoints []Position) *Route {
	return &Route{waypoints: waypoints}
}

// Remaining returns the number of waypoints not yet reached.
func (r *Route) Remaining() int {
	if r == nil {
		return 0
	}
	return len(r.waypoints) - r.cursor
}

// MakeMove advances the character one step toward the current waypoint.
// Returns false when the route is exhausted or the step is blocked; the
// caller exits routing state and fires the abort hook.
func (r *Route) MakeMove(c *Character, t Terrain) bool {
	if r == nil {
		return false
	}
	for r.cursor < len(r.waypoints) && r.waypoints[r.cursor] == c.Pos {
		r.cursor++
	}
	if r.cursor >= len(r.waypoints) {
		return false
	}
	d := TowardDirection(c.Pos, r.waypoints[r.cursor])
	return c.Move(d, t)
}
