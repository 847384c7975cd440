/*package engine runs simulation steps: it moves bodies, bounces them off the
walls of the box, rebuilds a broad-phase index and resolves every collision
the index reports.

Two variants exist, one for each index in package index. They run the same
pipeline and make the same narrow-phase decisions given the same bodies; only
the number of candidates they examine differs.

Step requires that bodies[i].ID == i for every body.
*/
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phil-mansfield/collide/geom"
	"github.com/phil-mansfield/collide/index"
	"github.com/phil-mansfield/collide/particle"
	"github.com/phil-mansfield/collide/physics"
)

// Method is the broad-phase strategy used by an Engine.
type Method int

const (
	Quadtree Method = iota
	Hash
)

// MethodFromString parses a method name. Names are case-insensitive.
func MethodFromString(s string) (m Method, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadtree", "tree":
		return Quadtree, true
	case "hash", "grid":
		return Hash, true
	}
	return Quadtree, false
}

func (m Method) String() string {
	switch m {
	case Quadtree:
		return "quadtree"
	case Hash:
		return "hash"
	}
	panic(fmt.Sprintf("Unknown Method %d.", int(m)))
}

// Options tunes an Engine. The zero value of each field selects its default.
type Options struct {
	TreeCapacity, TreeMaxDepth int
	// Epsilon is passed to physics.PositionalCorrection.
	Epsilon float64
	// LogPairs makes the engine remember every pair it tests during a step.
	LogPairs bool
}

// DefaultOptions returns the Options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TreeCapacity: index.DefaultTreeCapacity,
		TreeMaxDepth: index.DefaultTreeMaxDepth,
		Epsilon:      physics.DefaultEpsilon,
	}
}

func (opts *Options) fillDefaults() {
	def := DefaultOptions()
	if opts.TreeCapacity <= 0 {
		opts.TreeCapacity = def.TreeCapacity
	}
	if opts.TreeMaxDepth <= 0 {
		opts.TreeMaxDepth = def.TreeMaxDepth
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
}

// Stats are the counters for a single step.
type Stats struct {
	// Candidates is the total number of IDs returned by broad-phase queries.
	Candidates int
	// Collisions is the number of pairs resolved.
	Collisions int
}

// Pair is an unordered pair of body IDs with I < J.
type Pair struct {
	I, J     int
	Collided bool
}

// Engine advances a set of bodies in a box of fixed size.
type Engine struct {
	method     Method
	boxW, boxH float64
	r          float64
	opts       Options
	idx        index.Index

	stats    Stats
	cands    []int
	resolved map[Pair]bool
	pairs    []Pair
	hits     []Pair
}

// New returns an Engine using the given broad-phase method for bodies of
// radius r in a box of width boxW and height boxH.
func New(method Method, boxW, boxH, r float64, opts Options) *Engine {
	opts.fillDefaults()
	e := &Engine{
		method: method, boxW: boxW, boxH: boxH, r: r, opts: opts,
		resolved: map[Pair]bool{},
	}

	switch method {
	case Quadtree:
		e.idx = index.NewTree(
			geom.Rect{X: 0, Y: 0, Width: boxW, Height: boxH},
			opts.TreeCapacity, opts.TreeMaxDepth,
		)
	case Hash:
		e.idx = index.NewHash(2 * r)
	default:
		panic(fmt.Sprintf("Unknown Method %d.", int(method)))
	}
	return e
}

// NewTree returns a quadtree-backed Engine.
func NewTree(boxW, boxH, r float64, opts Options) *Engine {
	return New(Quadtree, boxW, boxH, r, opts)
}

// NewHash returns a spatial-hash-backed Engine.
func NewHash(boxW, boxH, r float64, opts Options) *Engine {
	return New(Hash, boxW, boxH, r, opts)
}

// Method returns the engine's broad-phase method.
func (e *Engine) Method() Method { return e.method }

// Index returns the engine's broad-phase index as built by the last Step.
func (e *Engine) Index() index.Index { return e.idx }

// CandidatesChecked returns the number of broad-phase candidates seen during
// the last step.
func (e *Engine) CandidatesChecked() int { return e.stats.Candidates }

// CollisionsThisStep returns the number of collisions resolved during the
// last step.
func (e *Engine) CollisionsThisStep() int { return e.stats.Collisions }

// ResetMetrics zeroes the step counters.
func (e *Engine) ResetMetrics() { e.stats = Stats{} }

// Pairs returns every pair tested during the last step, in the order they
// were tested. It is empty unless Options.LogPairs was set. The slice is
// reused by the next call to Step.
func (e *Engine) Pairs() []Pair { return e.pairs }

// Resolved returns the pairs resolved during the last step, in the order they
// were resolved. The slice is reused by the next call to Step.
func (e *Engine) Resolved() []Pair { return e.hits }

// Step advances bodies by dt and resolves all collisions. The returned Stats
// are also available through CandidatesChecked and CollisionsThisStep until
// the next call.
func (e *Engine) Step(bodies []particle.Body, dt float64) Stats {
	e.ResetMetrics()
	e.pairs = e.pairs[:0]
	e.hits = e.hits[:0]
	for k := range e.resolved {
		delete(e.resolved, k)
	}

	for i := range bodies {
		bodies[i].Collided = false
	}

	physics.Integrate(bodies, dt)
	physics.HandleWalls(bodies, e.boxW, e.boxH, e.r)

	e.buildBroadPhase(bodies)
	e.narrowPhase(bodies)

	return e.stats
}

func (e *Engine) buildBroadPhase(bodies []particle.Body) {
	e.idx.Clear()
	for i := range bodies {
		b := &bodies[i]
		e.idx.Insert(index.Entry{ID: b.ID, X: b.X, Y: b.Y, R: b.R})
	}
}

func (e *Engine) narrowPhase(bodies []particle.Body) {
	for i := range bodies {
		p := &bodies[i]

		e.cands = e.idx.Query(p.X, p.Y, 2*e.r, e.cands)
		// Visiting candidates in ID order makes every index resolve pairs in
		// the same sequence.
		sort.Ints(e.cands)
		e.stats.Candidates += len(e.cands)

		for _, q := range e.cands {
			if q <= p.ID || q >= len(bodies) {
				continue
			}
			key := Pair{I: p.ID, J: q}
			if e.resolved[key] {
				continue
			}

			other := &bodies[q]
			collided := physics.CircleOverlap(p, other)
			if collided {
				physics.ResolveCollision(p, other)
				physics.PositionalCorrection(p, other, e.opts.Epsilon)
				e.resolved[key] = true
				e.hits = append(e.hits, Pair{I: p.ID, J: q, Collided: true})
				e.stats.Collisions++
			}

			if e.opts.LogPairs {
				e.pairs = append(e.pairs, Pair{I: p.ID, J: q, Collided: collided})
			}
		}
	}
}
