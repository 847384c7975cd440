package index

import (
	"sort"

	"github.com/phil-mansfield/collide/geom"
)

const (
	initialTableSize = 256
	maxLoadFactor    = 0.75
	minCellWidth     = 1.0
)

// Hash is a spatial hash over an unbounded grid of square cells. It is an
// open-addressed table keyed on cell coordinates with linear probing. Each
// entry is stored in the single cell that contains its center.
//
// Queries only examine the 3x3 block of cells around the query point, so
// query radii must not exceed the cell width.
type Hash struct {
	grid     geom.CellGrid
	table    []cell
	occupied int
	resizes  int
}

type cell struct {
	key      geom.CellKey
	occupied bool
	entries  []Entry
}

// NewHash returns an empty Hash with the given cell width. Widths below 1 are
// raised to 1.
func NewHash(cellWidth float64) *Hash {
	h := &Hash{}
	h.Init(cellWidth)
	return h
}

// Init initializes a Hash instance.
func (h *Hash) Init(cellWidth float64) {
	if cellWidth < minCellWidth {
		cellWidth = minCellWidth
	}
	h.grid.Init(cellWidth)
	h.table = make([]cell, initialTableSize)
	h.occupied = 0
	h.resizes = 0
}

// CellWidth returns the width of the hash's cells.
func (h *Hash) CellWidth() float64 { return h.grid.CellWidth }

// TableSize returns the number of slots in the table.
func (h *Hash) TableSize() int { return len(h.table) }

// Occupied returns the number of slots holding a cell.
func (h *Hash) Occupied() int { return h.occupied }

// Resizes returns the number of times the table has grown since Init.
func (h *Hash) Resizes() int { return h.resizes }

// Clear empties every slot. The table keeps its size.
func (h *Hash) Clear() {
	for i := range h.table {
		h.table[i].occupied = false
		h.table[i].entries = h.table[i].entries[:0]
	}
	h.occupied = 0
}

// Insert adds e to the cell containing its center. The table doubles in size
// once three quarters of its slots are occupied.
func (h *Hash) Insert(e Entry) {
	if float64(h.occupied) >= float64(len(h.table))*maxLoadFactor {
		h.resize()
	}

	key := h.grid.Key(e.X, e.Y)
	slot := h.findSlot(key)
	if slot < 0 {
		h.resize()
		slot = h.findSlot(key)
	}

	c := &h.table[slot]
	if !c.occupied {
		c.key, c.occupied = key, true
		h.occupied++
	}
	c.entries = append(c.entries, e)
}

// findSlot returns the slot holding key or, if key isn't in the table, the
// first empty slot on its probe chain. -1 is returned if the chain covers the
// whole table without finding either.
func (h *Hash) findSlot(key geom.CellKey) int {
	n := len(h.table)
	start := int(hashKey(key) % uint64(n))
	slot := start
	for h.table[slot].occupied {
		if h.table[slot].key == key {
			return slot
		}
		slot = (slot + 1) % n
		if slot == start {
			return -1
		}
	}
	return slot
}

// lookup returns the slot holding key, or -1 if there isn't one.
func (h *Hash) lookup(key geom.CellKey) int {
	slot := h.findSlot(key)
	if slot < 0 || !h.table[slot].occupied {
		return -1
	}
	return slot
}

// resize moves every cell into a fresh table twice the size of the old one.
func (h *Hash) resize() {
	old := h.table
	h.table = make([]cell, 2*len(old))
	h.occupied = 0
	h.resizes++

	for i := range old {
		if !old[i].occupied {
			continue
		}
		slot := h.findSlot(old[i].key)
		h.table[slot] = old[i]
		h.occupied++
	}
}

// Query appends to out[:0] the IDs of every entry overlapping the circle of
// radius r centered on (x, y), in ascending order and without repeats.
func (h *Hash) Query(x, y, r float64, out []int) []int {
	out = out[:0]

	var nbrs [9]geom.CellKey
	h.grid.Neighborhood(h.grid.Key(x, y), &nbrs)
	for _, key := range nbrs {
		slot := h.lookup(key)
		if slot < 0 {
			continue
		}
		c := &h.table[slot]
		for j := range c.entries {
			if c.entries[j].overlaps(x, y, r) {
				out = append(out, c.entries[j].ID)
			}
		}
	}

	return unique(out)
}

// unique sorts ids and removes repeated values in place.
func unique(ids []int) []int {
	if len(ids) < 2 {
		return ids
	}
	sort.Ints(ids)
	n := 1
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[n-1] {
			ids[n] = ids[i]
			n++
		}
	}
	return ids[:n]
}

// hashKey interleaves the bits of a cell's coordinates into a Morton code
// and scrambles it with the splitmix64 finalizer so that neighboring cells
// land far apart in the table. Both steps are bijective on the low 32 bits of
// each coordinate, so distinct cells only share a slot through the modulus.
func hashKey(key geom.CellKey) uint64 {
	x := spreadBits(uint32(key.I))
	y := spreadBits(uint32(key.J))
	return splitmix64((x << 1) | y)
}

// spreadBits moves bit k of x to bit 2k of the result.
func spreadBits(x uint32) uint64 {
	v := uint64(x)
	v = (v | (v << 16)) & 0x0000FFFF0000FFFF
	v = (v | (v << 8)) & 0x00FF00FF00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F0F0F0F0F
	v = (v | (v << 2)) & 0x3333333333333333
	v = (v | (v << 1)) & 0x5555555555555555
	return v
}

func splitmix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
