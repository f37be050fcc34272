package panopaint

import "math"

// Projection holds the camera parameters that map viewport points to
// directions on the view sphere. The zero value is not useful; use
// DefaultProjection or build one from a View.
//
// Perspective is a lens strength in [1, 100] interpolating between the
// MinFov and MaxFov bounds. Fisheye is a blend amount in [0, 100] between
// a rectilinear and a stereographic mapping. Yaw, Pitch, and Roll are the
// camera orientation in radians.
type Projection struct {
	Perspective float64
	Fisheye     float64
	MinFov      float64 // radians
	MaxFov      float64 // radians
	Aspect      float64 // viewport width / height
	Yaw         float64
	Pitch       float64
	Roll        float64
}

// Default projection bounds: 20 degrees at full zoom-in, 150 degrees at
// full zoom-out.
const (
	DefaultMinFov = 20 * math.Pi / 180
	DefaultMaxFov = 150 * math.Pi / 180
)

// DefaultProjection returns a neutral projection: mid perspective, no
// fisheye, identity orientation, square aspect.
func DefaultProjection() Projection {
	return Projection{
		Perspective: 50,
		Fisheye:     0,
		MinFov:      DefaultMinFov,
		MaxFov:      DefaultMaxFov,
		Aspect:      1,
	}
}

// tanHalf returns the blended perspective scale: the tangent of the half
// field-of-view implied by Perspective within the [MinFov, MaxFov] bounds.
func (p Projection) tanHalf() float64 {
	t := clampf((p.Perspective-1)/99, 0, 1)
	return lerp(math.Tan(p.MinFov/2), math.Tan(p.MaxFov/2), t)
}

// fisheyeWeight returns the smoothstep-shaped blend weight in [0, 1].
func (p Projection) fisheyeWeight() float64 {
	return smoothstep(0, 1, clampf(p.Fisheye, 0, 100)/100)
}

// lensAngle converts a lens-plane radius s into the ray angle from the
// view axis: a blend of the rectilinear mapping atan(s) and the
// stereographic mapping 2*atan(s/2).
func lensAngle(s, w float64) float64 {
	return (1-w)*math.Atan(s) + w*2*math.Atan(s/2)
}

// lensAngleDeriv is the derivative of lensAngle with respect to s.
func lensAngleDeriv(s, w float64) float64 {
	return (1-w)/(1+s*s) + w/(1+s*s/4)
}

// lensRadius inverts lensAngle for a fixed blend weight using Newton
// iteration. theta must be below the mapping's limit angle.
func lensRadius(theta, w float64) float64 {
	if theta <= 0 {
		return 0
	}
	// Initial guess from whichever pure mapping dominates.
	var s float64
	if w < 0.5 {
		if theta < math.Pi/2-geomEpsilon {
			s = math.Tan(theta)
		} else {
			s = 1e6
		}
	} else {
		s = 2 * math.Tan(theta/2)
	}
	for i := 0; i < 16; i++ {
		f := lensAngle(s, w) - theta
		d := lensAngleDeriv(s, w)
		if d < geomEpsilon {
			break
		}
		step := f / d
		s -= step
		if s < 0 {
			s = 0
		}
		if math.Abs(step) < 1e-14 {
			break
		}
	}
	return s
}

// limitAngle returns the largest ray angle representable by the blended
// lens mapping: pi/2 for pure rectilinear, pi for pure stereographic.
func limitAngle(w float64) float64 {
	return (1-w)*math.Pi/2 + w*math.Pi
}

// orientation returns the camera-to-world rotation for p.
func (p Projection) orientation() Mat3 {
	return rotationYawPitchRoll(p.Yaw, p.Pitch, p.Roll)
}

// ScreenToDirection maps a viewport-normalized point (u, v in [-1, 1],
// +u right, +v up) to a world-space unit direction. This is the exact
// inverse of DirectionToScreen for any direction inside the frustum.
func (p Projection) ScreenToDirection(u, v float64) Vec3 {
	x := u * p.Aspect
	y := v
	r := math.Hypot(x, y)

	th := p.tanHalf()
	w := p.fisheyeWeight()
	theta := lensAngle(r*th, w)

	var dir Vec3
	if r < geomEpsilon {
		dir = Vec3{0, 0, 1}
	} else {
		sinTheta := math.Sin(theta)
		dir = Vec3{
			X: sinTheta * x / r,
			Y: sinTheta * y / r,
			Z: math.Cos(theta),
		}
	}
	return p.orientation().Apply(dir)
}

// DirectionToScreen maps a world-space unit direction back to
// viewport-normalized coordinates. ok is false when the direction lies
// outside the lens mapping's limit angle (e.g. behind a rectilinear
// camera).
func (p Projection) DirectionToScreen(dir Vec3) (u, v float64, ok bool) {
	d := p.orientation().ApplyTransposed(dir.Normalize())

	rd := math.Hypot(d.X, d.Y)
	theta := math.Atan2(rd, d.Z)

	w := p.fisheyeWeight()
	if theta >= limitAngle(w)-1e-6 {
		return 0, 0, false
	}
	if rd < geomEpsilon {
		return 0, 0, true
	}

	s := lensRadius(theta, w)
	r := s / p.tanHalf()
	x := r * d.X / rd
	y := r * d.Y / rd
	return x / p.Aspect, y, true
}

// VerticalFOV returns the analytic vertical field of view in radians for
// the current perspective/fisheye blend (the angle subtended by v in
// [-1, 1] at u = 0).
func (p Projection) VerticalFOV() float64 {
	return 2 * lensAngle(p.tanHalf(), p.fisheyeWeight())
}

// HorizontalFOV returns the analytic horizontal field of view in radians.
func (p Projection) HorizontalFOV() float64 {
	return 2 * lensAngle(p.Aspect*p.tanHalf(), p.fisheyeWeight())
}

// BrushFOVScale is the heuristic factor that keeps the visual brush width
// roughly constant across FOV changes: current vertical FOV over 90
// degrees. The formula is preserved from long-standing behavior and is
// not derived from first principles.
func (p Projection) BrushFOVScale() float64 {
	return p.VerticalFOV() / (math.Pi / 2)
}

// DirectionToUV maps a unit direction to equirectangular UV: u is
// longitude in [0, 1) wrapping at the ±pi seam, v is latitude in [0, 1]
// with v = 0 at the north pole.
func DirectionToUV(dir Vec3) (u, v float64) {
	d := dir.Normalize()
	lon := math.Atan2(d.X, d.Z)
	lat := math.Asin(clampf(d.Y, -1, 1))
	u = lon/(2*math.Pi) + 0.5
	if u >= 1 {
		u -= 1
	}
	if u < 0 {
		u += 1
	}
	v = 0.5 - lat/math.Pi
	return u, clampf(v, 0, 1)
}

// UVToDirection maps equirectangular UV back to a unit direction.
func UVToDirection(u, v float64) Vec3 {
	lon := (u - 0.5) * 2 * math.Pi
	lat := (0.5 - clampf(v, 0, 1)) * math.Pi
	sinLon, cosLon := math.Sincos(lon)
	sinLat, cosLat := math.Sincos(lat)
	return Vec3{
		X: cosLat * sinLon,
		Y: sinLat,
		Z: cosLat * cosLon,
	}
}

// Latitude returns the latitude in radians for an equirectangular v
// coordinate: +pi/2 at v = 0 (north pole), -pi/2 at v = 1.
func Latitude(v float64) float64 {
	return (0.5 - clampf(v, 0, 1)) * math.Pi
}
