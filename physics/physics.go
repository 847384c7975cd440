/*package physics advances and collides equal-mass circular bodies.

Every body has unit mass, so collisions exchange the normal component of
velocity completely. There is no restitution parameter.
*/
package physics

import (
	"math"

	"github.com/phil-mansfield/collide/particle"
)

const (
	// DefaultEpsilon is the positional correction parameter used by the
	// engines when none is configured.
	DefaultEpsilon = 0.01

	// Squared separations below this are treated as coincident centers.
	coincidentDist2 = 1e-10
)

// Integrate advances every body by one explicit Euler step of length dt.
func Integrate(bodies []particle.Body, dt float64) {
	for i := range bodies {
		b := &bodies[i]
		b.X += b.VX * dt
		b.Y += b.VY * dt
	}
}

// HandleWalls reflects bodies of radius r off the edges of the box
// [0, boxW] x [0, boxH]. A body crossing an edge is clamped to it and the
// velocity component normal to that edge is negated. Each edge is checked
// independently, so a body in a corner bounces off both walls.
func HandleWalls(bodies []particle.Body, boxW, boxH, r float64) {
	for i := range bodies {
		b := &bodies[i]
		if b.X-r < 0 {
			b.X, b.VX, b.Collided = r, -b.VX, true
		}
		if b.X+r > boxW {
			b.X, b.VX, b.Collided = boxW-r, -b.VX, true
		}
		if b.Y-r < 0 {
			b.Y, b.VY, b.Collided = r, -b.VY, true
		}
		if b.Y+r > boxH {
			b.Y, b.VY, b.Collided = boxH-r, -b.VY, true
		}
	}
}

// CircleOverlap returns true if a and b overlap. Tangent circles do not.
func CircleOverlap(a, b *particle.Body) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	rSum := a.R + b.R
	return dx*dx+dy*dy < rSum*rSum
}

// Normal returns the unit vector pointing from a's center to b's center. If
// the centers coincide, (1, 0) is returned.
func Normal(a, b *particle.Body) (nx, ny float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist2 := dx*dx + dy*dy
	if dist2 < coincidentDist2 {
		return 1, 0
	}
	dist := math.Sqrt(dist2)
	return dx / dist, dy / dist
}

// ResolveCollision applies a perfectly elastic impulse between a and b along
// the line joining their centers and marks both as collided. The relative
// normal velocity is applied in full, which for unit masses swaps the two
// bodies' normal velocity components.
func ResolveCollision(a, b *particle.Body) {
	nx, ny := Normal(a, b)
	dvn := (b.VX-a.VX)*nx + (b.VY-a.VY)*ny

	a.VX += dvn * nx
	a.VY += dvn * ny
	b.VX -= dvn * nx
	b.VY -= dvn * ny

	a.Collided = true
	b.Collided = true
}

// PositionalCorrection pushes overlapping bodies apart along their normal.
// Nothing happens unless the overlap depth exceeds epsilon, and then each
// body moves by overlap * 0.5 * epsilon. Coincident bodies are left alone.
func PositionalCorrection(a, b *particle.Body, epsilon float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist2 := dx*dx + dy*dy
	rSum := a.R + b.R
	if dist2 >= rSum*rSum || dist2 <= coincidentDist2 {
		return
	}

	dist := math.Sqrt(dist2)
	overlap := rSum - dist
	if overlap <= epsilon {
		return
	}

	nx, ny := dx/dist, dy/dist
	corr := overlap * 0.5 * epsilon
	a.X -= corr * nx
	a.Y -= corr * ny
	b.X += corr * nx
	b.Y += corr * ny
}

// TotalEnergy returns the kinetic energy of all bodies, taking every mass
// to be 1.
func TotalEnergy(bodies []particle.Body) float64 {
	e := 0.0
	for i := range bodies {
		b := &bodies[i]
		e += 0.5 * (b.VX*b.VX + b.VY*b.VY)
	}
	return e
}
