/*package particle contains the store of circular bodies that every other
package reads and mutates.

A body's ID is its index in the store. The pair deduplication in the narrow
phase depends on this, so a Store only hands out IDs sequentially and never
reorders its bodies.
*/
package particle

import (
	"fmt"
)

// Body is the mutable state of one simulated circle.
type Body struct {
	X, Y   float64
	VX, VY float64
	R      float64
	ID     int

	// Collided is set if the body bounced off a wall or another body during
	// the most recent step.
	Collided bool
}

// Store is an ordered collection of bodies.
type Store struct {
	Bodies []Body
}

// NewStore returns an empty Store with room for n bodies.
func NewStore(n int) *Store {
	return &Store{Bodies: make([]Body, 0, n)}
}

// Add appends a body to the store and returns its ID.
func (s *Store) Add(x, y, vx, vy, r float64) int {
	id := len(s.Bodies)
	s.Bodies = append(s.Bodies, Body{
		X: x, Y: y, VX: vx, VY: vy, R: r, ID: id,
	})
	return id
}

// Len returns the number of bodies in the store.
func (s *Store) Len() int { return len(s.Bodies) }

// Copy returns a deep copy of s.
func (s *Store) Copy() *Store {
	out := &Store{Bodies: make([]Body, len(s.Bodies))}
	copy(out.Bodies, s.Bodies)
	return out
}

// CheckIdentities returns an error naming the first body whose ID does not
// match its index.
func (s *Store) CheckIdentities() error {
	for i := range s.Bodies {
		if s.Bodies[i].ID != i {
			return fmt.Errorf(
				"Body at index %d has ID %d. IDs must equal store indices.",
				i, s.Bodies[i].ID,
			)
		}
	}
	return nil
}
