package panopaint

import "github.com/hajimehoshi/ebiten/v2"

// Document is the top-level object that owns the layer tree, the current
// timeline frame, the active selection, and the compositor. All mutation
// entry points either change state and mark the composition dirty, or are
// pure queries.
type Document struct {
	w, h   int
	root   *Layer
	active *Layer
	frame  int
	comp   *Compositor
}

// NewDocument creates a document with an empty root group and a canvas of
// the given equirectangular dimensions (width should be twice the height
// for a full sphere).
func NewDocument(w, h int) *Document {
	root := NewGroupLayer("root")
	return &Document{
		w:    w,
		h:    h,
		root: root,
		comp: NewCompositor(w, h),
	}
}

// Width returns the canvas width in pixels.
func (d *Document) Width() int { return d.w }

// Height returns the canvas height in pixels.
func (d *Document) Height() int { return d.h }

// Root returns the designated root group that owns the whole tree.
func (d *Document) Root() *Layer { return d.root }

// Compositor returns the document's compositor (for onion-skin settings).
func (d *Document) Compositor() *Compositor { return d.comp }

// AddLayer creates a layer of the given type and inserts it under parent
// at index. A nil parent targets the root; index -1 appends (topmost).
func (d *Document) AddLayer(t LayerType, parent *Layer, index int) *Layer {
	if parent == nil {
		parent = d.root
	}
	var l *Layer
	switch t {
	case LayerPaint:
		l = NewPaintLayer("Layer", d.w, d.h)
	case LayerGroup:
		l = NewGroupLayer("Group")
	case LayerAnimation:
		l = NewAnimationLayer("Animation")
	case LayerCamera:
		l = NewCameraLayer("Camera")
	default:
		panic("panopaint: unknown layer type")
	}
	if index < 0 {
		parent.AddChild(l)
	} else {
		parent.AddChildAt(l, index)
	}
	d.MarkDirty()
	return l
}

// DeleteLayer removes a layer from the tree and releases its resources.
// Deleting the root is a contract violation.
func (d *Document) DeleteLayer(l *Layer) {
	if l == d.root {
		panic("panopaint: cannot delete the root layer")
	}
	if d.active != nil && isAncestorLayer(l, d.active) {
		d.active = nil
	}
	l.Dispose()
	d.MarkDirty()
}

// MoveLayer reparents l under newParent at index (or appends for -1).
func (d *Document) MoveLayer(l *Layer, newParent *Layer, index int) {
	if l == d.root {
		panic("panopaint: cannot move the root layer")
	}
	if newParent == nil {
		newParent = d.root
	}
	if l.Parent == newParent {
		if index < 0 {
			index = newParent.NumChildren() - 1
		}
		newParent.MoveChild(l, index)
	} else if index < 0 {
		newParent.AddChild(l)
	} else {
		newParent.AddChildAt(l, index)
	}
	d.MarkDirty()
}

// SetActiveLayer changes the selection. Passing nil clears it.
func (d *Document) SetActiveLayer(l *Layer) {
	d.active = l
}

// ActiveLayer returns the current selection, or nil.
func (d *Document) ActiveLayer() *Layer { return d.active }

// ActivePaintLayer returns the selection if it is a paint layer.
func (d *Document) ActivePaintLayer() *Layer {
	if d.active != nil && d.active.Type == LayerPaint && !d.active.IsDisposed() {
		return d.active
	}
	return nil
}

// ActiveAnimationLayer returns the nearest animation layer enclosing the
// selection, or nil. Used by onion skinning.
func (d *Document) ActiveAnimationLayer() *Layer {
	for p := d.active; p != nil; p = p.Parent {
		if p.Type == LayerAnimation {
			return p
		}
	}
	return nil
}

// SetFrame moves the timeline to the given frame.
func (d *Document) SetFrame(frame int) {
	if d.frame == frame {
		return
	}
	d.frame = frame
	d.MarkDirty()
}

// Frame returns the current timeline frame.
func (d *Document) Frame() int { return d.frame }

// MarkDirty flags the composition for a full re-render on the next
// Composite call. Recomputation is debounced: no matter how many
// mutations accumulate, the tree is flattened once per displayed frame.
func (d *Document) MarkDirty() {
	d.comp.MarkDirty()
}

// Composite returns the flattened composite image, re-rendering it if
// anything changed since the last call.
func (d *Document) Composite() *ebiten.Image {
	return d.comp.Render(d)
}

// Undo restores the active paint layer's previous buffer state. Returns
// false when there is nothing to undo or no paint layer is active.
func (d *Document) Undo() bool {
	l := d.ActivePaintLayer()
	if l == nil || !l.history.Undo(l.buffer) {
		return false
	}
	d.MarkDirty()
	return true
}

// Redo is the mirror of Undo.
func (d *Document) Redo() bool {
	l := d.ActivePaintLayer()
	if l == nil || !l.history.Redo(l.buffer) {
		return false
	}
	d.MarkDirty()
	return true
}

// FirstCameraLayer returns the first camera layer in paint order, or nil.
func (d *Document) FirstCameraLayer() *Layer {
	return findCameraLayer(d.root)
}

func findCameraLayer(l *Layer) *Layer {
	if l.Type == LayerCamera {
		return l
	}
	for _, c := range l.Children() {
		if found := findCameraLayer(c); found != nil {
			return found
		}
	}
	return nil
}
