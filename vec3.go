package panopaint

import "math"

// Vec3 is a 3D vector. Directions on the view sphere are unit Vec3 values
// with +Z forward and +Y up.
type Vec3 struct {
	X, Y, Z float64
}

// Dot returns the dot product of a and b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product of a and b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a scaled by s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Norm returns the Euclidean length of a.
func (a Vec3) Norm() float64 {
	return math.Sqrt(a.Dot(a))
}

// Normalize returns a scaled to unit length. A zero-length input returns
// the forward direction rather than propagating NaN.
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n < geomEpsilon {
		return Vec3{0, 0, 1}
	}
	return a.Scale(1 / n)
}

// AngleTo returns the angle between unit vectors a and b in radians.
func (a Vec3) AngleTo(b Vec3) float64 {
	return math.Acos(clampf(a.Dot(b), -1, 1))
}

// Slerp interpolates between unit vectors a and b along the great circle
// connecting them. Falls back to normalized linear interpolation when the
// vectors are nearly parallel.
func Slerp(a, b Vec3, t float64) Vec3 {
	cosAngle := clampf(a.Dot(b), -1, 1)
	angle := math.Acos(cosAngle)
	if angle < geomEpsilon {
		return a.Add(b.Sub(a).Scale(t)).Normalize()
	}
	sinAngle := math.Sin(angle)
	wa := math.Sin((1-t)*angle) / sinAngle
	wb := math.Sin(t*angle) / sinAngle
	return a.Scale(wa).Add(b.Scale(wb)).Normalize()
}

// Mat3 is a row-major 3x3 rotation matrix.
type Mat3 [9]float64

// mat3Identity is the identity rotation.
var mat3Identity = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Apply transforms v by the matrix.
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// ApplyTransposed transforms v by the matrix transpose. For rotation
// matrices this is the inverse transform.
func (m Mat3) ApplyTransposed(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		Y: m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		Z: m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Mul returns m * o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] = m[row*3]*o[col] + m[row*3+1]*o[3+col] + m[row*3+2]*o[6+col]
		}
	}
	return r
}

// rotationYawPitchRoll builds the camera-to-world rotation for the given
// Euler angles in radians: yaw about world Y, then pitch about camera X,
// then roll about the view axis.
func rotationYawPitchRoll(yaw, pitch, roll float64) Mat3 {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	sr, cr := math.Sincos(roll)

	ry := Mat3{cy, 0, sy, 0, 1, 0, -sy, 0, cy}
	rx := Mat3{1, 0, 0, 0, cp, -sp, 0, sp, cp}
	rz := Mat3{cr, -sr, 0, sr, cr, 0, 0, 0, 1}

	return ry.Mul(rx).Mul(rz)
}

// geomEpsilon guards divide-by-zero and acos domain errors in the
// spherical math. Degenerate inputs clamp instead of propagating NaN.
const geomEpsilon = 1e-9

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothstep is the standard cubic ease between edge0 and edge1.
func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clampf((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
