package domain

// Driving path as an ordered sequence of (lat, lng) coordinates.
// An empty path means no route is available.
type RoutePath []Coordinate

// Empty reports whether the path carries no drawable geometry.
func (p RoutePath) Empty() bool { return len(p) == 0 }

// Clone returns an independent copy of the path. A nil path clones to an empty one.
func (p RoutePath) Clone() RoutePath {
	out := make(RoutePath, len(p))
	copy(out, p)
	return out
}
