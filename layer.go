package panopaint

import (
	"github.com/google/uuid"
)

// LayerType identifies the kind of layer.
type LayerType uint8

const (
	LayerPaint     LayerType = iota // owns a paintable GPU buffer
	LayerGroup                      // owns ordered children
	LayerAnimation                  // group whose visible child follows the cel map
	LayerCamera                     // group carrying keyframed projection curves; never painted
)

// String returns the type tag used in project files.
func (t LayerType) String() string {
	switch t {
	case LayerPaint:
		return "paint"
	case LayerGroup:
		return "group"
	case LayerAnimation:
		return "animation"
	case LayerCamera:
		return "camera"
	}
	return "unknown"
}

// layerIDCounter is a plain counter; panopaint is single-threaded.
var layerIDCounter uint32

func nextLayerID() uint32 {
	layerIDCounter++
	return layerIDCounter
}

// Layer is the fundamental element of the layer tree. A single flat struct
// is used for all layer types to avoid interface dispatch during
// composition; the Type discriminant selects which fields are meaningful.
type Layer struct {
	// Identity. ID is unique within the process; UUID is the stable
	// identity used by project files.
	ID   uint32
	UUID uuid.UUID
	Name string
	Type LayerType

	// Hierarchy
	Parent   *Layer
	children []*Layer

	// Shared state
	Visible  bool
	Opacity  float64
	Expanded bool // UI-only: whether the layer row is unfolded

	// Paint fields (LayerPaint). buffer is allocated lazily on first
	// paint or save, never at construction.
	buffer  *PaintBuffer
	history *History

	// Animation fields (LayerAnimation): sparse frame -> child index map
	// with a lazily rebuilt sorted-key cache.
	cels         map[int]int
	celKeys      []int
	celKeysDirty bool

	// Camera fields (LayerCamera): one curve per projection channel.
	curves [CurveChannelCount]*Curve

	disposed bool
}

// layerDefaults sets the common default field values shared by all
// constructors.
func layerDefaults(l *Layer) {
	l.ID = nextLayerID()
	l.UUID = uuid.New()
	l.Visible = true
	l.Opacity = 1
	l.Expanded = true
}

// NewPaintLayer creates a paint layer. Its GPU buffer is not allocated
// until the first stamp or save touches it.
func NewPaintLayer(name string, w, h int) *Layer {
	l := &Layer{Name: name, Type: LayerPaint}
	layerDefaults(l)
	l.buffer = newPaintBuffer(w, h)
	l.history = NewHistory(HistoryDepthFor(w, h))
	return l
}

// NewGroupLayer creates an empty group layer.
func NewGroupLayer(name string) *Layer {
	l := &Layer{Name: name, Type: LayerGroup}
	layerDefaults(l)
	return l
}

// NewAnimationLayer creates an animation layer with an empty cel map.
func NewAnimationLayer(name string) *Layer {
	l := &Layer{Name: name, Type: LayerAnimation}
	layerDefaults(l)
	l.cels = make(map[int]int)
	return l
}

// NewCameraLayer creates a camera layer. The pitch, yaw, and roll curves
// use angular unwrapping when keys are recorded.
func NewCameraLayer(name string) *Layer {
	l := &Layer{Name: name, Type: LayerCamera}
	layerDefaults(l)
	for ch := range l.curves {
		l.curves[ch] = NewCurve(CurveChannel(ch).Angular())
	}
	return l
}

// IsGroup reports whether the layer can hold children. Animation and
// camera layers are group layers.
func (l *Layer) IsGroup() bool {
	return l.Type != LayerPaint
}

// Buffer returns the paint buffer, or nil for non-paint layers.
func (l *Layer) Buffer() *PaintBuffer {
	return l.buffer
}

// History returns the undo history, or nil for non-paint layers.
func (l *Layer) History() *History {
	return l.history
}

// Curve returns the keyframe curve for a camera channel, or nil for
// non-camera layers.
func (l *Layer) Curve(ch CurveChannel) *Curve {
	if l.Type != LayerCamera {
		return nil
	}
	return l.curves[ch]
}

// --- Tree manipulation ---
//
// Mutations that would corrupt tree invariants (stale parent pointers,
// cycles, children under non-group layers) are programming errors and
// panic rather than silently no-op.

// AddChild appends child to this layer's children (topmost position).
// If child already has a parent it is removed from that parent first,
// repairing any cel mappings there.
func (l *Layer) AddChild(child *Layer) {
	l.AddChildAt(child, len(l.children))
}

// AddChildAt inserts child at the given index. Index 0 is the bottommost
// child; the last index is topmost. Cel mappings at or above the insert
// position shift up by one.
func (l *Layer) AddChildAt(child *Layer, index int) {
	if child == nil {
		panic("panopaint: cannot add nil child")
	}
	if !l.IsGroup() {
		panic("panopaint: paint layers cannot have children")
	}
	if l.disposed || child.disposed {
		panic("panopaint: operation on disposed layer")
	}
	if isAncestorLayer(child, l) {
		panic("panopaint: adding child would create a cycle")
	}
	if index < 0 || index > len(l.children) {
		panic("panopaint: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
		if index > len(l.children) {
			index = len(l.children)
		}
	}
	child.Parent = l
	l.children = append(l.children, nil)
	copy(l.children[index+1:], l.children[index:])
	l.children[index] = child
	l.shiftCelsForInsert(index)
}

// RemoveChild detaches child from this layer, repairing cel mappings.
// Panics if child.Parent != l.
func (l *Layer) RemoveChild(child *Layer) {
	if child == nil || child.Parent != l {
		panic("panopaint: child's parent is not this layer")
	}
	for i, c := range l.children {
		if c == child {
			l.RemoveChildAt(i)
			return
		}
	}
	panic("panopaint: child missing from parent's child list")
}

// RemoveChildAt removes and returns the child at the given index. Cel
// mappings pointing at the removed index are dropped; mappings above it
// shift down by one.
func (l *Layer) RemoveChildAt(index int) *Layer {
	if index < 0 || index >= len(l.children) {
		panic("panopaint: child index out of range")
	}
	child := l.children[index]
	copy(l.children[index:], l.children[index+1:])
	l.children[len(l.children)-1] = nil
	l.children = l.children[:len(l.children)-1]
	child.Parent = nil
	l.shiftCelsForRemove(index)
	return child
}

// MoveChild moves child to a new index among its siblings, remapping cel
// entries so each mapping keeps following the same child.
func (l *Layer) MoveChild(child *Layer, index int) {
	if child == nil || child.Parent != l {
		panic("panopaint: child's parent is not this layer")
	}
	if index < 0 || index >= len(l.children) {
		panic("panopaint: child index out of range")
	}
	oldIndex := -1
	for i, c := range l.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(l.children[oldIndex:], l.children[oldIndex+1:index+1])
	} else {
		copy(l.children[index+1:], l.children[index:oldIndex])
	}
	l.children[index] = child
	l.remapCelsForMove(oldIndex, index)
}

// Children returns the child list. The returned slice MUST NOT be mutated
// by the caller.
func (l *Layer) Children() []*Layer {
	return l.children
}

// NumChildren returns the number of children.
func (l *Layer) NumChildren() int {
	return len(l.children)
}

// ChildAt returns the child at the given index.
func (l *Layer) ChildAt(index int) *Layer {
	return l.children[index]
}

// ChildIndex returns the index of child among l's children, or -1.
func (l *Layer) ChildIndex(child *Layer) int {
	for i, c := range l.children {
		if c == child {
			return i
		}
	}
	return -1
}

// --- Disposal ---

// Dispose removes this layer from its parent, releases any GPU buffers it
// owns, and recursively disposes all descendants.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	if l.Parent != nil {
		l.Parent.RemoveChild(l)
	}
	l.dispose()
}

func (l *Layer) dispose() {
	l.disposed = true
	for _, child := range l.children {
		child.Parent = nil
		child.dispose()
	}
	l.children = nil
	l.Parent = nil
	if l.buffer != nil {
		l.buffer.Dispose()
		l.buffer = nil
	}
	if l.history != nil {
		l.history.Clear()
		l.history = nil
	}
	l.cels = nil
	l.celKeys = nil
	for ch := range l.curves {
		l.curves[ch] = nil
	}
}

// IsDisposed returns true if this layer has been disposed.
func (l *Layer) IsDisposed() bool {
	return l.disposed
}

// --- Helpers ---

// isAncestorLayer reports whether candidate is an ancestor of layer.
func isAncestorLayer(candidate, layer *Layer) bool {
	for p := layer; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// EffectiveOpacity returns the layer's opacity multiplied by all ancestor
// opacities, or 0 if the layer or any ancestor is invisible.
func (l *Layer) EffectiveOpacity() float64 {
	opacity := 1.0
	for p := l; p != nil; p = p.Parent {
		if !p.Visible {
			return 0
		}
		opacity *= p.Opacity
	}
	return opacity
}
