package panopaint

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Stamp is one analytic brush stamp: a circular mark of the given angular
// radius centered on a direction, with hardness controlling where the
// falloff curve starts. Distance is evaluated on the sphere, so the mark
// stays round regardless of equirectangular distortion.
type Stamp struct {
	Center   Vec3    // unit direction of the brush center
	U, V     float64 // equirectangular UV of the center
	Radius   float64 // angular radius in radians
	Hardness float64 // falloff start as a fraction of Radius, in [0, 1)
	Color    Color   // brush color; alpha is flow (erase strength when erasing)
	Erase    bool
}

// QuadStamp is one quad-mode stamp: a fixed soft circular mask rasterized
// as a UV-aligned quad. HalfW has already been widened by 1/cos(latitude);
// FullStrip marks stamps near the poles that cover the full texture width.
type QuadStamp struct {
	U, V      float64
	HalfW     float64 // half width in UV units
	HalfH     float64 // half height in UV units
	FullStrip bool
	Color     Color
	Erase     bool
}

// StampSurface receives brush stamps. PaintBuffer implements it against a
// GPU image; tests inject a recording implementation so path sampling and
// stamp placement are verified without a GPU.
type StampSurface interface {
	StampAnalytic(Stamp)
	StampQuad(QuadStamp)
}

// PaintBuffer is the GPU-resident RGBA image a paint layer owns. The
// underlying image is allocated lazily on the first stamp or save, never
// at construction, to bound memory for documents with many layers.
type PaintBuffer struct {
	w, h  int
	image *ebiten.Image
}

func newPaintBuffer(w, h int) *PaintBuffer {
	return &PaintBuffer{w: w, h: h}
}

// Width returns the buffer width in pixels.
func (b *PaintBuffer) Width() int { return b.w }

// Height returns the buffer height in pixels.
func (b *PaintBuffer) Height() int { return b.h }

// Allocated reports whether the GPU image exists yet.
func (b *PaintBuffer) Allocated() bool { return b.image != nil }

// Image returns the underlying image, or nil if never painted.
func (b *PaintBuffer) Image() *ebiten.Image { return b.image }

// ensure allocates the GPU image on demand.
func (b *PaintBuffer) ensure() *ebiten.Image {
	if b.image == nil {
		b.image = ebiten.NewImage(b.w, b.h)
	}
	return b.image
}

// Dispose releases the GPU image.
func (b *PaintBuffer) Dispose() {
	if b.image != nil {
		b.image.Deallocate()
		b.image = nil
	}
}

// Clear resets the buffer to transparent. No-op if never allocated.
func (b *PaintBuffer) Clear() {
	if b.image != nil {
		b.image.Clear()
	}
}

// stampBlend returns the blend for paint vs erase stamps. Erasing scales
// the destination toward zero by the stamp's alpha instead of blending
// the source over it.
func stampBlend(erase bool) ebiten.Blend {
	if erase {
		return BlendErase.EbitenBlend()
	}
	return BlendNormal.EbitenBlend()
}

// StampAnalytic draws one analytic stamp. The shader pass covers only the
// stamp's UV footprint (widened and seam-duplicated like quad mode) but
// evaluates the spherical falloff per pixel.
func (b *PaintBuffer) StampAnalytic(s Stamp) {
	img := b.ensure()
	shader := ensureBrushStampShader()

	c := s.Color
	uniforms := map[string]any{
		"Center":     []float32{float32(s.Center.X), float32(s.Center.Y), float32(s.Center.Z)},
		"Radius":     float32(s.Radius),
		"Hardness":   float32(clampf(s.Hardness, 0, 0.999)),
		"BrushColor": []float32{float32(c.R * c.A), float32(c.G * c.A), float32(c.B * c.A), float32(c.A)},
		"TexSize":    []float32{float32(b.w), float32(b.h)},
	}
	op := &ebiten.DrawTrianglesShaderOptions{Uniforms: uniforms}
	op.Blend = stampBlend(s.Erase)

	halfW, halfH, fullStrip := stampHalfExtents(s.Radius, s.V)
	for _, r := range stampRects(s.U, s.V, halfW, halfH, fullStrip) {
		x0 := float32(r.u0 * float64(b.w))
		y0 := float32(r.v0 * float64(b.h))
		x1 := float32(r.u1 * float64(b.w))
		y1 := float32(r.v1 * float64(b.h))
		verts := []ebiten.Vertex{
			{DstX: x0, DstY: y0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
			{DstX: x1, DstY: y0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
			{DstX: x0, DstY: y1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
			{DstX: x1, DstY: y1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		}
		img.DrawTrianglesShader(verts, []uint16{0, 1, 2, 1, 2, 3}, shader, op)
	}
}

// StampQuad draws one quad-mode stamp using the pre-rendered soft mask.
func (b *PaintBuffer) StampQuad(q QuadStamp) {
	img := b.ensure()
	mask := ensureBrushMask()

	for _, r := range stampRects(q.U, q.V, q.HalfW, q.HalfH, q.FullStrip) {
		var op ebiten.DrawImageOptions
		w := (r.u1 - r.u0) * float64(b.w)
		h := (r.v1 - r.v0) * float64(b.h)
		if w <= 0 || h <= 0 {
			continue
		}
		op.GeoM.Scale(w/brushMaskSize, h/brushMaskSize)
		op.GeoM.Translate(r.u0*float64(b.w), r.v0*float64(b.h))
		c := q.Color
		op.ColorScale.Scale(
			float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A),
		)
		op.Blend = stampBlend(q.Erase)
		img.DrawImage(mask, &op)
	}
}

// --- Snapshots ---

// Snapshot is an opaque captured buffer state held by the undo history.
type Snapshot interface {
	// Release frees any resources the snapshot owns.
	Release()
}

// bufferSnapshot captures a PaintBuffer. A nil image means the buffer had
// never been allocated, so restoring returns the layer to its unpainted
// lazy state.
type bufferSnapshot struct {
	image *ebiten.Image
}

func (s *bufferSnapshot) Release() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}

// Snapshot captures the current buffer contents.
func (b *PaintBuffer) Snapshot() Snapshot {
	if b.image == nil {
		return &bufferSnapshot{}
	}
	copyImg := ebiten.NewImage(b.w, b.h)
	var op ebiten.DrawImageOptions
	op.Blend = BlendCopy.EbitenBlend()
	copyImg.DrawImage(b.image, &op)
	return &bufferSnapshot{image: copyImg}
}

// Restore replaces the buffer contents with a previously captured
// snapshot. Panics if the snapshot was not produced by a PaintBuffer.
func (b *PaintBuffer) Restore(snap Snapshot) {
	bs, ok := snap.(*bufferSnapshot)
	if !ok {
		panic("panopaint: snapshot was not captured from a paint buffer")
	}
	if bs.image == nil {
		b.Dispose()
		return
	}
	img := b.ensure()
	var op ebiten.DrawImageOptions
	op.Blend = BlendCopy.EbitenBlend()
	img.DrawImage(bs.image, &op)
}

// Pixels reads back the buffer as premultiplied RGBA bytes. Returns nil
// for a never-allocated buffer. The readback waits for pending GPU work.
func (b *PaintBuffer) Pixels() []byte {
	if b.image == nil {
		return nil
	}
	pix := make([]byte, 4*b.w*b.h)
	b.image.ReadPixels(pix)
	return pix
}

// SetPixels replaces the buffer contents with premultiplied RGBA bytes,
// allocating on demand.
func (b *PaintBuffer) SetPixels(pix []byte) {
	if len(pix) != 4*b.w*b.h {
		panic("panopaint: pixel data does not match buffer dimensions")
	}
	b.ensure().WritePixels(pix)
}
