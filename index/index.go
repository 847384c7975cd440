/*package index contains the broad-phase spatial indices used to find bodies
which might be colliding: a quadtree over the simulation box and an
open-addressed spatial hash.

Both indices hold copies of Entry values, not references to bodies, and are
meant to be cleared and rebuilt from scratch after every position update.
*/
package index

// Entry is the snapshot of a body that is stored in an index.
type Entry struct {
	ID      int
	X, Y, R float64
}

// Index is a broad-phase spatial index.
type Index interface {
	// Clear removes every entry from the index.
	Clear()
	// Insert adds an entry to the index.
	Insert(e Entry)
	// Query appends to out[:0] the IDs of every entry whose circle overlaps
	// the circle of radius r centered on (x, y) and returns the result.
	Query(x, y, r float64, out []int) []int
}

// overlaps returns true if e overlaps the circle of radius r centered on
// (x, y).
func (e *Entry) overlaps(x, y, r float64) bool {
	dx, dy := e.X-x, e.Y-y
	rSum := e.R + r
	return dx*dx+dy*dy < rSum*rSum
}

// overlapsRect returns true if e's bounding box overlaps the box
// (minX, maxX) x (minY, maxY).
func (e *Entry) overlapsRect(minX, minY, maxX, maxY float64) bool {
	return e.X-e.R < maxX && e.X+e.R > minX &&
		e.Y-e.R < maxY && e.Y+e.R > minY
}

var (
	_ Index = &Tree{}
	_ Index = &Hash{}
)
