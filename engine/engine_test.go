package engine

import (
	"math"
	"testing"

	"github.com/phil-mansfield/collide/particle"
	"github.com/phil-mansfield/collide/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var methods = []Method{Quadtree, Hash}

func headOn() []particle.Body {
	s := particle.NewStore(2)
	s.Add(100, 100, 50, 0, 5)
	s.Add(108, 100, -50, 0, 5)
	return s.Bodies
}

func TestMethodFromString(t *testing.T) {
	table := []struct {
		s  string
		m  Method
		ok bool
	}{
		{"quadtree", Quadtree, true},
		{"QuadTree", Quadtree, true},
		{"hash", Hash, true},
		{" Hash ", Hash, true},
		{"grid", Hash, true},
		{"kdtree", Quadtree, false},
	}

	for i, test := range table {
		m, ok := MethodFromString(test.s)
		if ok != test.ok || (ok && m != test.m) {
			t.Errorf("%d) MethodFromString(%q) = %v, %v", i+1, test.s, m, ok)
		}
	}

	for _, m := range methods {
		parsed, ok := MethodFromString(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
	}
}

func TestStepHeadOn(t *testing.T) {
	for _, m := range methods {
		bodies := headOn()
		e := New(m, 800, 600, 5, DefaultOptions())
		stats := e.Step(bodies, 0)

		assert.Equal(t, 1, stats.Collisions, m.String())
		assert.Equal(t, 4, stats.Candidates, m.String())
		assert.Equal(t, stats.Collisions, e.CollisionsThisStep())
		assert.Equal(t, stats.Candidates, e.CandidatesChecked())
		assert.Equal(t, []Pair{{0, 1, true}}, e.Resolved())

		assert.InDelta(t, -50, bodies[0].VX, 1e-9, m.String())
		assert.InDelta(t, 50, bodies[1].VX, 1e-9, m.String())
		assert.True(t, bodies[0].Collided)
		assert.True(t, bodies[1].Collided)

		// Overlap of 2 is corrected by 2 * 0.5 * 0.01 on each side.
		assert.InDelta(t, 99.99, bodies[0].X, 1e-9, m.String())
		assert.InDelta(t, 108.01, bodies[1].X, 1e-9, m.String())
	}
}

func TestStepWall(t *testing.T) {
	for _, m := range methods {
		s := particle.NewStore(1)
		s.Add(3, 300, -20, 0, 5)
		e := New(m, 800, 600, 5, DefaultOptions())
		stats := e.Step(s.Bodies, 0)

		b := s.Bodies[0]
		assert.Equal(t, 5.0, b.X, m.String())
		assert.Equal(t, 20.0, b.VX, m.String())
		assert.True(t, b.Collided, m.String())
		assert.Equal(t, 0, stats.Collisions, m.String())
		assert.Equal(t, 1, stats.Candidates, m.String())
	}
}

func TestStepResetsFlags(t *testing.T) {
	for _, m := range methods {
		s := particle.NewStore(2)
		s.Add(100, 100, 1, 0, 5)
		s.Add(300, 100, 0, 1, 5)
		s.Bodies[0].Collided = true
		s.Bodies[1].Collided = true

		e := New(m, 800, 600, 5, DefaultOptions())
		e.Step(s.Bodies, 0.01)

		assert.False(t, s.Bodies[0].Collided, m.String())
		assert.False(t, s.Bodies[1].Collided, m.String())
		assert.InDelta(t, 100.01, s.Bodies[0].X, 1e-9)
		assert.InDelta(t, 100.01, s.Bodies[1].Y, 1e-9)
	}
}

func TestCounters(t *testing.T) {
	for _, m := range methods {
		bodies := headOn()
		e := New(m, 800, 600, 5, DefaultOptions())
		e.Step(bodies, 0)
		require.Equal(t, 1, e.CollisionsThisStep())

		// Move the bodies apart; the next step must not remember the
		// previous collision.
		bodies[1].X = 300
		stats := e.Step(bodies, 0)
		assert.Equal(t, 0, stats.Collisions)
		assert.Equal(t, 2, stats.Candidates)
		assert.Len(t, e.Resolved(), 0)

		e.ResetMetrics()
		assert.Equal(t, 0, e.CandidatesChecked())
		assert.Equal(t, 0, e.CollisionsThisStep())
	}
}

func TestLogPairs(t *testing.T) {
	for _, m := range methods {
		s := particle.NewStore(3)
		s.Add(100, 100, 50, 0, 5)
		s.Add(108, 100, -50, 0, 5)
		s.Add(100, 112, 0, 0, 5)

		opts := DefaultOptions()
		opts.LogPairs = true
		e := New(m, 800, 600, 5, opts)
		e.Step(s.Bodies, 0)

		// 2 is a candidate of both 0 and 1 but overlaps neither.
		assert.Equal(t, []Pair{{0, 1, true}, {0, 2, false}, {1, 2, false}},
			e.Pairs(), m.String())

		quiet := New(m, 800, 600, 5, DefaultOptions())
		quiet.Step(headOn(), 0)
		assert.Len(t, quiet.Pairs(), 0)
	}
}

func TestOptionsDefaults(t *testing.T) {
	e := New(Quadtree, 100, 100, 1, Options{})
	assert.Equal(t, DefaultOptions(), e.opts)

	opts := Options{TreeCapacity: 2, TreeMaxDepth: 3, Epsilon: 0.2}
	e = New(Hash, 100, 100, 1, opts)
	assert.Equal(t, opts, e.opts)
	assert.Equal(t, Hash, e.Method())
}

func TestEnginesAgree(t *testing.T) {
	boxW, boxH, r, dt := 400.0, 300.0, 5.0, 0.002
	init, _ := particle.Random(120, boxW, boxH, r, 1337)
	treeBodies, hashBodies := init.Copy().Bodies, init.Copy().Bodies

	tree := NewTree(boxW, boxH, r, DefaultOptions())
	hash := NewHash(boxW, boxH, r, DefaultOptions())

	e0 := physics.TotalEnergy(treeBodies)
	total := 0
	for step := 0; step < 100; step++ {
		ts := tree.Step(treeBodies, dt)
		hs := hash.Step(hashBodies, dt)

		require.Equal(t, ts.Collisions, hs.Collisions, "step %d", step)
		require.Equal(t, tree.Resolved(), hash.Resolved(), "step %d", step)
		require.Equal(t, treeBodies, hashBodies, "step %d", step)
		total += ts.Collisions

		for i := range treeBodies {
			b := &treeBodies[i]
			if b.X < r-0.1 || b.X > boxW-r+0.1 ||
				b.Y < r-0.1 || b.Y > boxH-r+0.1 {
				t.Errorf("%d) Body %d escaped to (%g, %g).", step, i, b.X, b.Y)
			}
		}
	}

	assert.True(t, total > 0, "no collisions happened")
	e1 := physics.TotalEnergy(treeBodies)
	assert.True(t, math.Abs(e1-e0) < 1e-9*e0, "energy %g -> %g", e0, e1)
}

func TestResolvedPairsUnique(t *testing.T) {
	// A tight cluster where every body overlaps several others.
	s := particle.NewStore(9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.Add(100+7*float64(i), 100+7*float64(j), float64(i), float64(j), 5)
		}
	}

	for _, m := range methods {
		bodies := s.Copy().Bodies
		e := New(m, 800, 600, 5, DefaultOptions())
		e.Step(bodies, 0)

		seen := map[Pair]bool{}
		for _, p := range e.Resolved() {
			assert.True(t, p.I < p.J)
			assert.False(t, seen[p], "pair %v resolved twice", p)
			seen[p] = true
		}
		// Horizontal, vertical and diagonal neighbors all overlap.
		assert.Equal(t, 20, len(seen), m.String())
	}
}

func BenchmarkTreeStep(b *testing.B) { benchmarkStep(b, Quadtree) }
func BenchmarkHashStep(b *testing.B) { benchmarkStep(b, Hash) }

func benchmarkStep(b *testing.B, m Method) {
	s, _ := particle.Random(2000, 1200, 800, 3, 1337)
	e := New(m, 1200, 800, 3, DefaultOptions())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(s.Bodies, 0.002)
	}
}
