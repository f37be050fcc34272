package panopaint

import "math"

// StampMode selects how brush stamps are rasterized.
type StampMode uint8

const (
	// StampAnalyticMode evaluates a per-pixel spherical falloff in a
	// shader pass: resolution-independent and distortion-correct by
	// construction.
	StampAnalyticMode StampMode = iota
	// StampQuadMode rasterizes a fixed pre-rendered soft mask as a
	// UV-aligned quad (legacy mode).
	StampQuadMode
)

// Brush holds the stroke parameters. Radius is an angular radius in
// radians on the view sphere; Spacing is the stamp spacing as a fraction
// of the radius.
type Brush struct {
	Radius   float64
	Color    Color
	Hardness float64
	Spacing  float64
	Erase    bool
	Mode     StampMode
}

// DefaultBrush returns a medium soft round brush.
func DefaultBrush() Brush {
	return Brush{
		Radius:   0.02,
		Color:    ColorWhite,
		Hardness: 0.5,
		Spacing:  0.25,
		Mode:     StampAnalyticMode,
	}
}

// spacing returns the effective stamp spacing in radians.
func (br Brush) spacing() float64 {
	f := br.Spacing
	if f <= 0 {
		f = 0.25
	}
	return math.Max(br.Radius*f, geomEpsilon)
}

// StampAt emits a single stamp centered on the given unit direction.
func (br Brush) StampAt(dst StampSurface, dir Vec3) {
	u, v := DirectionToUV(dir)
	if br.Mode == StampQuadMode {
		halfW, halfH, full := stampHalfExtents(br.Radius, v)
		dst.StampQuad(QuadStamp{
			U: u, V: v,
			HalfW: halfW, HalfH: halfH, FullStrip: full,
			Color: br.Color, Erase: br.Erase,
		})
		return
	}
	dst.StampAnalytic(Stamp{
		Center: dir, U: u, V: v,
		Radius:   br.Radius,
		Hardness: br.Hardness,
		Color:    br.Color,
		Erase:    br.Erase,
	})
}

// StrokeSegment stamps along the great circle from a to b at fixed
// arc-length spacing. Interpolation is spherical, never linear in UV,
// which would cut the wrong path near the poles. At least one stamp is
// always emitted, so a zero-length segment still marks the canvas.
// Returns the number of stamps emitted.
func (br Brush) StrokeSegment(dst StampSurface, a, b Vec3) int {
	angle := a.AngleTo(b)
	steps := int(math.Ceil(angle / br.spacing()))
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		br.StampAt(dst, Slerp(a, b, float64(i)/float64(steps)))
	}
	return steps
}

// --- Stamp footprint geometry ---

// poleClampLatitude is the latitude above which quad stamps widen to a
// full-width strip instead of a degenerate thin sliver.
const poleClampLatitude = 69 * math.Pi / 180

// stampHalfExtents returns the UV-space half extents of a stamp of the
// given angular radius centered at equirectangular v. The horizontal
// extent is widened by 1/cos(latitude) to compensate for east-west
// compression away from the equator.
func stampHalfExtents(radius, v float64) (halfW, halfH float64, fullStrip bool) {
	halfH = radius / math.Pi
	lat := Latitude(v)
	if math.Abs(lat) >= poleClampLatitude {
		return 0.5, halfH, true
	}
	halfW = radius / (2 * math.Pi * math.Cos(lat))
	if halfW >= 0.5 {
		return 0.5, halfH, true
	}
	return halfW, halfH, false
}

// uvRect is an axis-aligned UV rectangle.
type uvRect struct {
	u0, v0, u1, v1 float64
}

// stampRects returns the UV rectangle(s) a stamp covers. A stamp that
// straddles the horizontal wraparound seam is duplicated with a ±1.0
// u offset so the mark paints continuously on both sides. The vertical
// extent clamps at the poles.
func stampRects(u, v, halfW, halfH float64, fullStrip bool) []uvRect {
	v0 := clampf(v-halfH, 0, 1)
	v1 := clampf(v+halfH, 0, 1)
	if fullStrip {
		return []uvRect{{0, v0, 1, v1}}
	}
	rects := []uvRect{{u - halfW, v0, u + halfW, v1}}
	if u-halfW < 0 {
		rects = append(rects, uvRect{u - halfW + 1, v0, u + halfW + 1, v1})
	}
	if u+halfW > 1 {
		rects = append(rects, uvRect{u - halfW - 1, v0, u + halfW - 1, v1})
	}
	return rects
}
