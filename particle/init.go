package particle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/phil-mansfield/table"
)

const (
	// Number of positions tried for each body before giving up on finding
	// one that doesn't overlap an earlier body.
	maxPlacementAttempts = 1000

	minSpeed, maxSpeed = 400.0, 600.0
)

// Random fills a new Store with n bodies of radius r placed uniformly inside
// a box of width boxW and height boxH, each moving in a uniformly random
// direction. Positions are redrawn until a body does not overlap any earlier
// body. If that fails maxPlacementAttempts times the last position is kept
// anyway; the number of bodies for which this happened is returned as
// overlaps.
func Random(
	n int, boxW, boxH, r float64, seed int64,
) (s *Store, overlaps int) {
	gen := rand.New(rand.NewSource(seed))
	s = NewStore(n)

	for i := 0; i < n; i++ {
		var x, y float64
		valid := false
		for attempt := 0; !valid && attempt < maxPlacementAttempts; attempt++ {
			x = uniform(gen, r, boxW-r)
			y = uniform(gen, r, boxH-r)
			valid = !overlapsAny(s.Bodies, x, y, r)
		}
		if !valid {
			overlaps++
		}

		speed := uniform(gen, minSpeed, maxSpeed)
		angle := uniform(gen, 0, 2*math.Pi)
		s.Add(x, y, speed*math.Cos(angle), speed*math.Sin(angle), r)
	}

	return s, overlaps
}

func uniform(gen *rand.Rand, low, high float64) float64 {
	return low + gen.Float64()*(high-low)
}

func overlapsAny(bodies []Body, x, y, r float64) bool {
	for i := range bodies {
		dx, dy := x-bodies[i].X, y-bodies[i].Y
		rSum := r + bodies[i].R
		if dx*dx+dy*dy < rSum*rSum {
			return true
		}
	}
	return false
}

// ReadTable reads bodies of radius r from a whitespace-separated text table.
// The first four columns are x, y, vx and vy. Bodies are given IDs in row
// order.
func ReadTable(fname string, r float64) (*Store, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, err
	}

	xs, ys, vxs, vys := cols[0], cols[1], cols[2], cols[3]
	if len(xs) == 0 {
		return nil, fmt.Errorf("No bodies found in table '%s'.", fname)
	}

	s := NewStore(len(xs))
	for i := range xs {
		s.Add(xs[i], ys[i], vxs[i], vys[i], r)
	}
	return s, nil
}
