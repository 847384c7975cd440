/*package geom contains the planar primitives shared by the spatial indices:
axis-aligned rectangles and integer grid cells.
*/
package geom

// Rect is an axis-aligned rectangle with its lowermost corner at (X, Y).
type Rect struct {
	X, Y, Width, Height float64
}

// Quadrant names the four children of a subdivided Rect.
type Quadrant int

const (
	NW Quadrant = iota
	NE
	SW
	SE
)

// MaxX returns the x coordinate of the rectangle's right edge.
func (r *Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the y coordinate of the rectangle's upper edge.
func (r *Rect) MaxY() float64 { return r.Y + r.Height }

// ContainsCircle returns true if the circle of radius rad centered on (x, y)
// lies entirely within r. A circle touching an edge is still contained.
func (r *Rect) ContainsCircle(x, y, rad float64) bool {
	return x-rad >= r.X && x+rad <= r.MaxX() &&
		y-rad >= r.Y && y+rad <= r.MaxY()
}

// IntersectsCircle returns true if the circle of radius rad centered on
// (x, y) overlaps r. The test uses the point in r closest to the center, so
// circles that exactly touch r do not count.
func (r *Rect) IntersectsCircle(x, y, rad float64) bool {
	cx, cy := clamp(x, r.X, r.MaxX()), clamp(y, r.Y, r.MaxY())
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy < rad*rad
}

// IntersectsRect returns true if r overlaps the box [minX, maxX] x
// [minY, maxY]. Shared edges count as overlap.
func (r *Rect) IntersectsRect(minX, minY, maxX, maxY float64) bool {
	return !(r.MaxX() < minX || r.X > maxX || r.MaxY() < minY || r.Y > maxY)
}

// Quadrants splits r in half along both axes. The result is indexed by
// Quadrant.
func (r *Rect) Quadrants() [4]Rect {
	hw, hh := r.Width*0.5, r.Height*0.5
	mx, my := r.X+hw, r.Y+hh
	return [4]Rect{
		NW: {r.X, r.Y, hw, hh},
		NE: {mx, r.Y, hw, hh},
		SW: {r.X, my, hw, hh},
		SE: {mx, my, hw, hh},
	}
}

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
