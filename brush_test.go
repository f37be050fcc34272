package panopaint

import (
	"math"
	"testing"
)

// recordingSurface captures stamps instead of rasterizing them.
type recordingSurface struct {
	analytic []Stamp
	quads    []QuadStamp
}

func (r *recordingSurface) StampAnalytic(s Stamp) { r.analytic = append(r.analytic, s) }
func (r *recordingSurface) StampQuad(q QuadStamp) { r.quads = append(r.quads, q) }

// --- Single stamps ---

func TestStampAtAnalytic(t *testing.T) {
	rec := &recordingSurface{}
	br := DefaultBrush()
	dir := Vec3{0, 0, 1}
	br.StampAt(rec, dir)

	if len(rec.analytic) != 1 {
		t.Fatalf("got %d stamps, want 1", len(rec.analytic))
	}
	s := rec.analytic[0]
	vecApproxEq(t, s.Center, dir, testEps, "stamp center")
	approxEq(t, s.U, 0.5, testEps, "stamp u")
	approxEq(t, s.V, 0.5, testEps, "stamp v")
	if s.Radius != br.Radius || s.Hardness != br.Hardness {
		t.Errorf("stamp params = (%v, %v), want (%v, %v)", s.Radius, s.Hardness, br.Radius, br.Hardness)
	}
}

func TestStampAtQuadMode(t *testing.T) {
	rec := &recordingSurface{}
	br := DefaultBrush()
	br.Mode = StampQuadMode
	br.StampAt(rec, Vec3{0, 0, 1})

	if len(rec.quads) != 1 || len(rec.analytic) != 0 {
		t.Fatalf("got %d quads / %d analytic, want 1 / 0", len(rec.quads), len(rec.analytic))
	}
	q := rec.quads[0]
	approxEq(t, q.HalfH, br.Radius/math.Pi, testEps, "quad half height")
	approxEq(t, q.HalfW, br.Radius/(2*math.Pi), testEps, "quad half width at equator")
}

func TestEraseFlagPropagates(t *testing.T) {
	rec := &recordingSurface{}
	br := DefaultBrush()
	br.Erase = true
	br.StampAt(rec, Vec3{0, 0, 1})
	if !rec.analytic[0].Erase {
		t.Error("erase flag not carried to stamp")
	}
}

// --- Stroke sampling ---

func TestStrokeSegmentZeroLength(t *testing.T) {
	rec := &recordingSurface{}
	br := DefaultBrush()
	dir := Vec3{0, 0, 1}
	n := br.StrokeSegment(rec, dir, dir)
	if n != 1 || len(rec.analytic) != 1 {
		t.Errorf("zero-length segment emitted %d stamps, want 1", len(rec.analytic))
	}
}

func TestStrokeSegmentSpacing(t *testing.T) {
	rec := &recordingSurface{}
	br := DefaultBrush()
	br.Radius = 0.1
	br.Spacing = 0.5 // 0.05 rad between stamps

	a := Vec3{0, 0, 1}
	b := Vec3{math.Sin(0.3), 0, math.Cos(0.3)}
	n := br.StrokeSegment(rec, a, b)

	want := int(math.Ceil(0.3 / 0.05))
	if n != want {
		t.Errorf("stamp count = %d, want %d", n, want)
	}
	// Stamps are evenly spaced along the great circle and end exactly at b.
	prev := a
	for i, s := range rec.analytic {
		step := prev.AngleTo(s.Center)
		approxEq(t, step, 0.3/float64(want), 1e-9, "stamp spacing")
		prev = s.Center
		if i == len(rec.analytic)-1 {
			vecApproxEq(t, s.Center, b, 1e-9, "final stamp")
		}
	}
}

func TestStrokeSegmentFollowsGreatCircle(t *testing.T) {
	// A segment between two points at the same high latitude must cut
	// across the sphere, not follow the distorted UV row.
	rec := &recordingSurface{}
	br := DefaultBrush()
	br.Radius = 0.05

	lat := 1.2 // about 69 degrees north
	a := UVToDirection(0.25, 0.5-lat/math.Pi)
	b := UVToDirection(0.75, 0.5-lat/math.Pi)
	br.StrokeSegment(rec, a, b)

	// The great circle between antipodal-longitude points at high latitude
	// passes near the pole, far above the endpoints' latitude.
	maxY := 0.0
	for _, s := range rec.analytic {
		if s.Center.Y > maxY {
			maxY = s.Center.Y
		}
	}
	if maxY <= math.Sin(lat)+1e-6 {
		t.Errorf("stroke max latitude %v did not rise above endpoints %v", maxY, math.Sin(lat))
	}
}

// --- Footprint geometry ---

func TestStampHalfExtentsEquator(t *testing.T) {
	halfW, halfH, full := stampHalfExtents(0.1, 0.5)
	if full {
		t.Fatal("equator stamp should not be a full strip")
	}
	approxEq(t, halfH, 0.1/math.Pi, testEps, "half height")
	approxEq(t, halfW, 0.1/(2*math.Pi), testEps, "half width")
}

func TestStampHalfExtentsWidenTowardPole(t *testing.T) {
	wEquator, _, _ := stampHalfExtents(0.02, 0.5)
	wMid, _, _ := stampHalfExtents(0.02, 0.25)
	if wMid <= wEquator {
		t.Errorf("width at v=0.25 (%v) should exceed equator width (%v)", wMid, wEquator)
	}
}

func TestStampHalfExtentsPoleClamp(t *testing.T) {
	// Above the clamp latitude every stamp covers the full strip.
	v := 0.5 - (poleClampLatitude+0.01)/math.Pi
	halfW, _, full := stampHalfExtents(0.02, v)
	if !full || halfW != 0.5 {
		t.Errorf("near-pole stamp = (halfW=%v, full=%v), want full strip", halfW, full)
	}
}

func TestStampRectsSeamDuplication(t *testing.T) {
	rects := stampRects(0.01, 0.5, 0.05, 0.02, false)
	if len(rects) != 2 {
		t.Fatalf("got %d rects, want 2 for a seam-straddling stamp", len(rects))
	}
	// The duplicate sits one full texture width to the right.
	approxEq(t, rects[1].u0-rects[0].u0, 1, testEps, "seam duplicate offset")

	rects = stampRects(0.99, 0.5, 0.05, 0.02, false)
	if len(rects) != 2 {
		t.Fatalf("got %d rects, want 2 near the right seam", len(rects))
	}
	approxEq(t, rects[1].u0-rects[0].u0, -1, testEps, "right seam duplicate offset")
}

func TestStampRectsInteriorNoDuplicate(t *testing.T) {
	rects := stampRects(0.5, 0.5, 0.05, 0.02, false)
	if len(rects) != 1 {
		t.Errorf("got %d rects, want 1 for an interior stamp", len(rects))
	}
}

func TestStampRectsClampAtPoles(t *testing.T) {
	rects := stampRects(0.5, 0.005, 0.05, 0.02, false)
	for _, r := range rects {
		if r.v0 < 0 || r.v1 > 1 {
			t.Errorf("rect %v extends past the pole", r)
		}
	}
}

func TestStampRectsFullStrip(t *testing.T) {
	rects := stampRects(0.3, 0.02, 0.5, 0.02, true)
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1 full strip", len(rects))
	}
	if rects[0].u0 != 0 || rects[0].u1 != 1 {
		t.Errorf("full strip = %v, want u spanning [0, 1]", rects[0])
	}
}

// --- Spacing defaults ---

func TestBrushSpacingFallback(t *testing.T) {
	br := DefaultBrush()
	br.Spacing = 0
	approxEq(t, br.spacing(), br.Radius*0.25, testEps, "zero spacing falls back to quarter radius")
}
