package index

import (
	"github.com/phil-mansfield/collide/geom"
)

const (
	DefaultTreeCapacity = 8
	DefaultTreeMaxDepth = 12

	leaf = -1
)

// Tree is a quadtree over a fixed rectangle. Nodes live in a single arena
// and refer to their children by index, so Clear is O(1) and rebuilding the
// tree reuses all previously allocated memory.
type Tree struct {
	bounds             geom.Rect
	capacity, maxDepth int
	nodes              []node
}

type node struct {
	bounds geom.Rect
	// Leaves hold all their entries here. Subdivided nodes hold only the
	// entries which don't fit into a single child.
	entries []Entry
	// Index of the NW child in the arena. The other three follow it in
	// geom.Quadrant order. leaf if the node hasn't been subdivided.
	children int
}

// NewTree returns an empty quadtree covering bounds. A leaf holding capacity
// entries is subdivided when another entry arrives unless it is already
// maxDepth levels below the root.
func NewTree(bounds geom.Rect, capacity, maxDepth int) *Tree {
	t := &Tree{}
	t.Init(bounds, capacity, maxDepth)
	return t
}

// Init initializes a Tree instance.
func (t *Tree) Init(bounds geom.Rect, capacity, maxDepth int) {
	t.bounds = bounds
	t.capacity = capacity
	t.maxDepth = maxDepth
	t.nodes = t.nodes[:0]
	t.newNode(bounds)
}

// Bounds returns the rectangle covered by the root of the tree.
func (t *Tree) Bounds() geom.Rect { return t.bounds }

// NodeCount returns the number of nodes in the tree, including the root.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Clear discards every node and leaves an empty root with the same bounds.
func (t *Tree) Clear() {
	t.nodes = t.nodes[:0]
	t.newNode(t.bounds)
}

// newNode appends a leaf to the arena and returns its index. Entry buffers
// left behind by earlier builds are reused.
func (t *Tree) newNode(bounds geom.Rect) int {
	i := len(t.nodes)
	if i < cap(t.nodes) {
		t.nodes = t.nodes[:i+1]
		n := &t.nodes[i]
		n.bounds, n.children = bounds, leaf
		n.entries = n.entries[:0]
	} else {
		t.nodes = append(t.nodes, node{bounds: bounds, children: leaf})
	}
	return i
}

// Insert adds e to the deepest node which fully contains it. Entries which
// don't fit inside the tree's bounds at all are kept at the root.
func (t *Tree) Insert(e Entry) {
	if !t.insert(0, e, 0) {
		t.nodes[0].entries = append(t.nodes[0].entries, e)
	}
}

// insert tries to place e in the subtree rooted at node i and returns false
// if that node doesn't contain e.
func (t *Tree) insert(i int, e Entry, depth int) bool {
	if !t.nodes[i].bounds.ContainsCircle(e.X, e.Y, e.R) {
		return false
	}

	if t.nodes[i].children == leaf {
		n := &t.nodes[i]
		if len(n.entries) < t.capacity || depth >= t.maxDepth {
			n.entries = append(n.entries, e)
			return true
		}
		t.subdivide(i)
	}

	first := t.nodes[i].children
	for c := 0; c < 4; c++ {
		if t.insert(first+c, e, depth+1) {
			return true
		}
	}

	// Straddles a quadrant boundary.
	t.nodes[i].entries = append(t.nodes[i].entries, e)
	return true
}

// subdivide splits the leaf i into four children and moves every entry that
// fits in a single child down into it.
func (t *Tree) subdivide(i int) {
	quads := t.nodes[i].bounds.Quadrants()
	first := t.newNode(quads[geom.NW])
	t.newNode(quads[geom.NE])
	t.newNode(quads[geom.SW])
	t.newNode(quads[geom.SE])

	n := &t.nodes[i]
	n.children = first

	kept := n.entries[:0]
	for _, e := range n.entries {
		placed := false
		for c := first; c < first+4; c++ {
			child := &t.nodes[c]
			if child.bounds.ContainsCircle(e.X, e.Y, e.R) {
				child.entries = append(child.entries, e)
				placed = true
				break
			}
		}
		if !placed {
			kept = append(kept, e)
		}
	}
	n.entries = kept
}

// Query appends to out[:0] the IDs of every entry overlapping the circle of
// radius r centered on (x, y). Subtrees whose bounds don't touch the circle
// are skipped.
func (t *Tree) Query(x, y, r float64, out []int) []int {
	return t.query(0, x, y, r, out[:0])
}

// The root is always visited because it also keeps entries which lie outside
// the tree's bounds.
func (t *Tree) query(i int, x, y, r float64, out []int) []int {
	n := &t.nodes[i]
	if !n.bounds.IntersectsCircle(x, y, r) && i != 0 {
		return out
	}

	for j := range n.entries {
		if n.entries[j].overlaps(x, y, r) {
			out = append(out, n.entries[j].ID)
		}
	}

	if n.children != leaf {
		first := n.children
		for c := first; c < first+4; c++ {
			out = t.query(c, x, y, r, out)
		}
	}
	return out
}

// QueryAABB appends to out[:0] the IDs of every entry whose bounding box
// overlaps the box (minX, maxX) x (minY, maxY).
func (t *Tree) QueryAABB(minX, minY, maxX, maxY float64, out []int) []int {
	return t.queryAABB(0, minX, minY, maxX, maxY, out[:0])
}

func (t *Tree) queryAABB(
	i int, minX, minY, maxX, maxY float64, out []int,
) []int {
	n := &t.nodes[i]
	if !n.bounds.IntersectsRect(minX, minY, maxX, maxY) && i != 0 {
		return out
	}

	for j := range n.entries {
		if n.entries[j].overlapsRect(minX, minY, maxX, maxY) {
			out = append(out, n.entries[j].ID)
		}
	}

	if n.children != leaf {
		first := n.children
		for c := first; c < first+4; c++ {
			out = t.queryAABB(c, minX, minY, maxX, maxY, out)
		}
	}
	return out
}
