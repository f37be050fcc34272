package panopaint

import (
	"math"
	"sort"
)

// CurveChannel identifies one of the five keyframed camera channels.
type CurveChannel uint8

const (
	ChannelPitch CurveChannel = iota
	ChannelYaw
	ChannelRoll
	ChannelPerspective
	ChannelFisheye

	CurveChannelCount = 5
)

// Angular reports whether the channel holds an angle in degrees. Angular
// channels unwrap recorded values so interpolation never spins the long
// way around.
func (c CurveChannel) Angular() bool {
	return c <= ChannelRoll
}

// defaultChannelValue is the value an unkeyed channel evaluates to.
func (c CurveChannel) defaultValue() float64 {
	if c == ChannelPerspective {
		return 50
	}
	return 0
}

// String returns the channel tag used in project files.
func (c CurveChannel) String() string {
	switch c {
	case ChannelPitch:
		return "pitch"
	case ChannelYaw:
		return "yaw"
	case ChannelRoll:
		return "roll"
	case ChannelPerspective:
		return "perspective"
	case ChannelFisheye:
		return "fisheye"
	}
	return "unknown"
}

// TangentMode selects how a key's tangents are computed.
type TangentMode uint8

const (
	TangentSmooth TangentMode = iota // auto-computed, symmetric
	TangentLinear                    // slope from neighboring keys
	TangentHold                      // infinite tangent, step function
)

// CurveKey is one keyframe: a (time, value) pair with in/out tangent
// slopes and the mode they were derived under. Keys are unique by time
// and sorted by time.
type CurveKey struct {
	Time       float64
	Value      float64
	InTangent  float64
	OutTangent float64
	Mode       TangentMode
}

// Curve is a keyframed scalar channel evaluated with cubic Hermite
// interpolation.
type Curve struct {
	keys    []CurveKey
	angular bool
}

// NewCurve creates an empty curve. Angular curves unwrap recorded values
// relative to the curve's prior value at the record time.
func NewCurve(angular bool) *Curve {
	return &Curve{angular: angular}
}

// Len returns the number of keys.
func (c *Curve) Len() int {
	return len(c.keys)
}

// Key returns the key at the given index.
func (c *Curve) Key(i int) CurveKey {
	return c.keys[i]
}

// Keys returns a copy of the key list.
func (c *Curve) Keys() []CurveKey {
	out := make([]CurveKey, len(c.keys))
	copy(out, c.keys)
	return out
}

// Angular reports whether the curve unwraps recorded values.
func (c *Curve) Angular() bool {
	return c.angular
}

// SetKey records a key at the given time, replacing any existing key at
// exactly that time. On angular curves the value is unwrapped to within
// ±180 of the curve's current value at that time. Returns the key index.
func (c *Curve) SetKey(time, value float64) int {
	if c.angular && len(c.keys) > 0 {
		if prior, ok := c.Evaluate(time); ok {
			value = unwrapDegrees(value, prior)
		}
	}

	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time >= time })
	if i < len(c.keys) && c.keys[i].Time == time {
		c.keys[i].Value = value
	} else {
		c.keys = append(c.keys, CurveKey{})
		copy(c.keys[i+1:], c.keys[i:])
		c.keys[i] = CurveKey{Time: time, Value: value, Mode: TangentSmooth}
	}
	c.refreshAround(i)
	return i
}

// RemoveKey deletes the key at the given index.
func (c *Curve) RemoveKey(i int) {
	if i < 0 || i >= len(c.keys) {
		panic("panopaint: curve key index out of range")
	}
	copy(c.keys[i:], c.keys[i+1:])
	c.keys = c.keys[:len(c.keys)-1]
	if i > 0 {
		c.refreshAround(i - 1)
	} else if len(c.keys) > 0 {
		c.refreshAround(0)
	}
}

// SetKeyMode changes a key's tangent mode and recomputes its tangents.
// Neighboring keys in linear mode are refreshed too, since linear
// tangents are defined relative to adjacent key values.
func (c *Curve) SetKeyMode(i int, mode TangentMode) {
	if i < 0 || i >= len(c.keys) {
		panic("panopaint: curve key index out of range")
	}
	c.keys[i].Mode = mode
	c.refreshTangents(i)
	if i > 0 && c.keys[i-1].Mode == TangentLinear {
		c.refreshTangents(i - 1)
	}
	if i < len(c.keys)-1 && c.keys[i+1].Mode == TangentLinear {
		c.refreshTangents(i + 1)
	}
}

// refreshAround recomputes tangents for key i and its neighbors.
func (c *Curve) refreshAround(i int) {
	if i > 0 {
		c.refreshTangents(i - 1)
	}
	c.refreshTangents(i)
	if i < len(c.keys)-1 {
		c.refreshTangents(i + 1)
	}
}

// refreshTangents recomputes the tangents of key i from its mode and
// neighboring key values.
func (c *Curve) refreshTangents(i int) {
	k := &c.keys[i]
	switch k.Mode {
	case TangentHold:
		k.InTangent = math.Inf(1)
		k.OutTangent = math.Inf(1)
	case TangentLinear:
		k.InTangent = c.slopeToPrev(i)
		k.OutTangent = c.slopeToNext(i)
	default: // TangentSmooth
		var m float64
		switch {
		case i > 0 && i < len(c.keys)-1:
			prev, next := c.keys[i-1], c.keys[i+1]
			if dt := next.Time - prev.Time; dt > 0 {
				m = (next.Value - prev.Value) / dt
			}
		case i > 0:
			m = c.slopeToPrev(i)
		case i < len(c.keys)-1:
			m = c.slopeToNext(i)
		}
		k.InTangent = m
		k.OutTangent = m
	}
}

func (c *Curve) slopeToPrev(i int) float64 {
	if i == 0 {
		return 0
	}
	prev := c.keys[i-1]
	dt := c.keys[i].Time - prev.Time
	if dt <= 0 {
		return 0
	}
	return (c.keys[i].Value - prev.Value) / dt
}

func (c *Curve) slopeToNext(i int) float64 {
	if i == len(c.keys)-1 {
		return 0
	}
	next := c.keys[i+1]
	dt := next.Time - c.keys[i].Time
	if dt <= 0 {
		return 0
	}
	return (next.Value - c.keys[i].Value) / dt
}

// Evaluate returns the curve value at time t. ok is false when the curve
// has no keys. Times outside the keyed range clamp to the end values.
func (c *Curve) Evaluate(t float64) (value float64, ok bool) {
	n := len(c.keys)
	if n == 0 {
		return 0, false
	}
	if t <= c.keys[0].Time {
		return c.keys[0].Value, true
	}
	if t >= c.keys[n-1].Time {
		return c.keys[n-1].Value, true
	}

	// Segment whose start key has the greatest time <= t.
	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t }) - 1
	k0, k1 := c.keys[i], c.keys[i+1]

	// A hold key holds its value until the next key.
	if k0.Mode == TangentHold || math.IsInf(k0.OutTangent, 0) {
		return k0.Value, true
	}

	dt := k1.Time - k0.Time
	s := (t - k0.Time) / dt
	m1 := k1.InTangent
	if math.IsInf(m1, 0) {
		m1 = 0
	}

	// Cubic Hermite basis with tangents expressed as slopes.
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*k0.Value + h10*dt*k0.OutTangent + h01*k1.Value + h11*dt*m1, true
}

// unwrapDegrees returns value shifted by whole turns so it lies within
// ±180 degrees of ref.
func unwrapDegrees(value, ref float64) float64 {
	d := math.Mod(value-ref, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return ref + d
}

// CameraState is the evaluated set of projection parameters driven by a
// camera layer. Angles are in degrees.
type CameraState struct {
	Pitch       float64
	Yaw         float64
	Roll        float64
	Perspective float64
	Fisheye     float64
}

// DefaultCameraState returns the values unkeyed channels evaluate to.
func DefaultCameraState() CameraState {
	return CameraState{Perspective: ChannelPerspective.defaultValue()}
}

// EvaluateCamera samples all five channels of a camera layer at a
// (possibly fractional) frame. Unkeyed channels keep their defaults.
// Panics on non-camera layers.
func (l *Layer) EvaluateCamera(frame float64) CameraState {
	if l.Type != LayerCamera {
		panic("panopaint: EvaluateCamera on non-camera layer")
	}
	st := DefaultCameraState()
	if v, ok := l.curves[ChannelPitch].Evaluate(frame); ok {
		st.Pitch = v
	}
	if v, ok := l.curves[ChannelYaw].Evaluate(frame); ok {
		st.Yaw = v
	}
	if v, ok := l.curves[ChannelRoll].Evaluate(frame); ok {
		st.Roll = v
	}
	if v, ok := l.curves[ChannelPerspective].Evaluate(frame); ok {
		st.Perspective = v
	}
	if v, ok := l.curves[ChannelFisheye].Evaluate(frame); ok {
		st.Fisheye = v
	}
	return st
}
