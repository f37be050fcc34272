package panopaint

import "math"

// RulerMode selects the perspective ruler's candidate set.
type RulerMode uint8

const (
	RulerOff       RulerMode = iota
	RulerAxes                // 3 primary vanishing axes
	RulerDiagonals           // 6 inter-axis bisectors (45° diagonals)
)

// rulerLockThreshold is the angular movement from the stroke anchor that
// triggers axis locking.
const rulerLockThreshold = 0.005

// Ruler constrains stroke direction to perspective lines: once a stroke's
// initial movement picks a vanishing axis, every subsequent point snaps
// onto the great circle through the stroke anchor and that axis, the
// spherical analogue of snapping to a 2D line.
type Ruler struct {
	Mode RulerMode

	// orientation rotates the candidate axes to match the perspective
	// grid. Identity aligns the grid with the world axes.
	orientation Mat3

	anchor Vec3
	axis   Vec3
	active bool
	locked bool
}

// NewRuler creates a ruler with an identity grid orientation.
func NewRuler() *Ruler {
	return &Ruler{Mode: RulerOff, orientation: mat3Identity}
}

// SetGridOrientation rotates the vanishing axes by the given Euler angles
// in radians.
func (r *Ruler) SetGridOrientation(yaw, pitch, roll float64) {
	r.orientation = rotationYawPitchRoll(yaw, pitch, roll)
}

// Begin records the stroke anchor and clears any previous lock.
func (r *Ruler) Begin(anchor Vec3) {
	r.anchor = anchor.Normalize()
	r.active = true
	r.locked = false
}

// End releases the lock. The lock never outlives a stroke.
func (r *Ruler) End() {
	r.active = false
	r.locked = false
}

// Locked reports whether an axis has been chosen for the current stroke.
func (r *Ruler) Locked() bool {
	return r.locked
}

// LockedAxis returns the vanishing direction chosen for the current
// stroke. Only meaningful while Locked.
func (r *Ruler) LockedAxis() Vec3 {
	return r.axis
}

// Constrain maps a stroke point onto the locked great circle. Before the
// first sufficiently large movement the point passes through unchanged;
// that movement picks the candidate axis whose tangent at the anchor best
// aligns with the observed stroke direction.
func (r *Ruler) Constrain(p Vec3) Vec3 {
	if !r.active || r.Mode == RulerOff {
		return p
	}
	p = p.Normalize()

	if !r.locked {
		if r.anchor.AngleTo(p) < rulerLockThreshold {
			return p
		}
		axis, ok := r.pickAxis(p)
		if !ok {
			return p
		}
		r.axis = axis
		r.locked = true
	}

	// Orthogonal projection onto the plane through (anchor, axis, origin),
	// then back onto the sphere.
	n := r.anchor.Cross(r.axis)
	if n.Norm() < geomEpsilon {
		return p
	}
	n = n.Normalize()
	q := p.Sub(n.Scale(p.Dot(n)))
	if q.Norm() < geomEpsilon {
		return p
	}
	return q.Normalize()
}

// pickAxis scores every candidate vanishing direction by how well the
// tangent-on-sphere from the anchor toward it aligns with the observed
// movement, and returns the best.
func (r *Ruler) pickAxis(p Vec3) (Vec3, bool) {
	// Movement direction in the anchor's tangent plane.
	move := p.Sub(r.anchor.Scale(r.anchor.Dot(p)))
	if move.Norm() < geomEpsilon {
		return Vec3{}, false
	}
	move = move.Normalize()

	best := Vec3{}
	bestScore := -1.0
	for _, axis := range r.candidates() {
		// Tangent at the anchor pointing toward the vanishing direction.
		t := axis.Sub(r.anchor.Scale(r.anchor.Dot(axis)))
		if t.Norm() < geomEpsilon {
			continue // axis coincides with the anchor
		}
		score := math.Abs(t.Normalize().Dot(move))
		if score > bestScore {
			bestScore = score
			best = axis
		}
	}
	if bestScore < 0 {
		return Vec3{}, false
	}
	return best, true
}

// candidates returns the vanishing directions for the current mode,
// rotated by the grid orientation.
func (r *Ruler) candidates() []Vec3 {
	x := r.orientation.Apply(Vec3{1, 0, 0})
	y := r.orientation.Apply(Vec3{0, 1, 0})
	z := r.orientation.Apply(Vec3{0, 0, 1})

	if r.Mode == RulerDiagonals {
		return []Vec3{
			x.Add(y).Normalize(),
			x.Sub(y).Normalize(),
			y.Add(z).Normalize(),
			y.Sub(z).Normalize(),
			x.Add(z).Normalize(),
			x.Sub(z).Normalize(),
		}
	}
	return []Vec3{x, y, z}
}
