package panopaint

import "github.com/hajimehoshi/ebiten/v2"

// OnionSkin configures the tinted overlay of neighboring animation cels.
type OnionSkin struct {
	Enabled bool
	Before  int // cels shown before the current one (by keyframe order)
	After   int // cels shown after
	Opacity float64
	Wrap    bool // step past the ends back around the cel key list

	BeforeTint Color
	AfterTint  Color
}

// DefaultOnionSkin shows one neighbor each way with the conventional
// red/green tinting.
func DefaultOnionSkin() OnionSkin {
	return OnionSkin{
		Before:     1,
		After:      1,
		Opacity:    0.35,
		BeforeTint: Color{1, 0.35, 0.35, 1},
		AfterTint:  Color{0.35, 1, 0.35, 1},
	}
}

// compositeOp is a single planned blend of a paint buffer into the
// composite. Ops are collected during traversal and submitted in order,
// which keeps the traversal logic testable without a GPU.
type compositeOp struct {
	buffer *PaintBuffer
	alpha  float64
	tint   Color
}

// Compositor flattens the layer tree into a single composite image. The
// composite is never partially updated: any mutation marks it dirty and
// the next Render performs a full top-down re-render, trading throughput
// for correctness.
type Compositor struct {
	w, h  int
	image *ebiten.Image
	dirty bool
	ops   []compositeOp

	Onion OnionSkin
}

// NewCompositor creates a compositor for a canvas of the given size.
func NewCompositor(w, h int) *Compositor {
	return &Compositor{
		w:     w,
		h:     h,
		dirty: true,
		Onion: DefaultOnionSkin(),
	}
}

// MarkDirty schedules a full re-render on the next Render call.
func (c *Compositor) MarkDirty() {
	c.dirty = true
}

// Dirty reports whether the composite is stale.
func (c *Compositor) Dirty() bool {
	return c.dirty
}

// Dispose releases the composite image.
func (c *Compositor) Dispose() {
	if c.image != nil {
		c.image.Deallocate()
		c.image = nil
	}
	c.dirty = true
}

// Render returns the composite, re-rendering the whole tree if dirty.
func (c *Compositor) Render(doc *Document) *ebiten.Image {
	if c.image == nil {
		c.image = ebiten.NewImage(c.w, c.h)
		c.dirty = true
	}
	if !c.dirty {
		return c.image
	}
	c.plan(doc)
	c.submit()
	c.dirty = false
	return c.image
}

// plan rebuilds the op list: the base pass over the tree, then the onion
// skin overlay.
func (c *Compositor) plan(doc *Document) {
	c.ops = c.ops[:0]
	c.emit(doc.Root(), 1.0, doc.Frame(), ColorWhite)
	c.planOnionSkin(doc)
}

// emit walks one layer, accumulating the effective opacity product.
// Invisible layers and layers below the opacity epsilon are skipped along
// with their whole subtree.
func (c *Compositor) emit(l *Layer, parentAlpha float64, frame int, tint Color) {
	if !l.Visible {
		return
	}
	alpha := parentAlpha * l.Opacity
	if alpha <= alphaEpsilon {
		return
	}
	switch l.Type {
	case LayerPaint:
		if l.buffer != nil && l.buffer.Allocated() {
			c.ops = append(c.ops, compositeOp{buffer: l.buffer, alpha: alpha, tint: tint})
		}
	case LayerCamera:
		// Camera layers are never painted.
	case LayerAnimation:
		if idx, ok := l.CelForFrame(frame); ok {
			c.emit(l.ChildAt(idx), alpha, frame, tint)
		}
	default: // LayerGroup
		for _, child := range l.Children() {
			c.emit(child, alpha, frame, tint)
		}
	}
}

// planOnionSkin overlays neighboring cels of the animation layer
// enclosing the active selection, tinted so "before" and "after" frames
// read apart from the real artwork, with opacity falling off by distance.
func (c *Compositor) planOnionSkin(doc *Document) {
	if !c.Onion.Enabled {
		return
	}
	anim := doc.ActiveAnimationLayer()
	if anim == nil || !anim.Visible {
		return
	}
	keys := anim.CelKeys()
	if len(keys) < 2 {
		return
	}
	cur := anim.CelKeyIndex(doc.Frame())
	if cur < 0 {
		return
	}
	curCel, _ := anim.CelForFrame(doc.Frame())

	c.emitNeighbors(anim, keys, cur, curCel, -1, c.Onion.Before, c.Onion.BeforeTint)
	c.emitNeighbors(anim, keys, cur, curCel, +1, c.Onion.After, c.Onion.AfterTint)
}

// emitNeighbors steps away from the current cel key in one direction,
// emitting each neighboring cel's subtree at a falling opacity.
func (c *Compositor) emitNeighbors(anim *Layer, keys []int, cur, curCel, dir, count int, tint Color) {
	cels := anim.Cels()
	for k := 1; k <= count; k++ {
		i := cur + dir*k
		if c.Onion.Wrap {
			i = ((i % len(keys)) + len(keys)) % len(keys)
		} else if i < 0 || i >= len(keys) {
			return
		}
		idx, ok := cels[keys[i]]
		if !ok || idx == curCel || idx >= anim.NumChildren() {
			continue
		}
		falloff := c.Onion.Opacity * float64(count-k+1) / float64(count+1)
		c.emit(anim.ChildAt(idx), falloff, keys[i], tint)
	}
}

// submit clears the composite and blends the planned ops in order using
// standard source-over with premultiplied alpha accumulation.
func (c *Compositor) submit() {
	c.image.Clear()
	for _, planned := range c.ops {
		img := planned.buffer.Image()
		if img == nil {
			continue
		}
		var op ebiten.DrawImageOptions
		a := float32(planned.alpha)
		op.ColorScale.Scale(
			float32(planned.tint.R)*a,
			float32(planned.tint.G)*a,
			float32(planned.tint.B)*a,
			a,
		)
		c.image.DrawImage(img, &op)
	}
}
