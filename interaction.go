package panopaint

// Tool identifies the interaction mode a stroke runs under.
type Tool uint8

const (
	ToolPaint Tool = iota
	ToolErase
	ToolLine // straight-line tool: one great-circle segment per stroke
	ToolPan
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
)

// Owner identifies which interaction currently holds pointer focus.
// Exactly one owner is allowed at a time: a stroke cannot start while a
// pan is in progress, and vice versa.
type Owner uint8

const (
	OwnerNone Owner = iota
	OwnerPaint
	OwnerPan
	OwnerWidget // reserved by the UI layer
)

// InteractionState is the explicit per-update interaction value: the
// current tool, held modifiers, and the exclusive pointer owner. Passing
// it around (instead of polling input globals) keeps the constraint
// resolution testable without simulating input devices.
type InteractionState struct {
	Tool      Tool
	Modifiers Modifiers
	Owner     Owner
}

// EffectiveTool resolves modifier-driven tool overrides: Shift turns a
// paint stroke into the straight-line tool, Alt into the eraser.
func (s InteractionState) EffectiveTool() Tool {
	if s.Tool == ToolPaint {
		if s.Modifiers&ModShift != 0 {
			return ToolLine
		}
		if s.Modifiers&ModAlt != 0 {
			return ToolErase
		}
	}
	return s.Tool
}

// StrokeController ties projection, ruler, brush, and history together
// into the paint interaction: Begin snapshots the layer and anchors the
// ruler, Move constrains and stamps, End releases the lock.
type StrokeController struct {
	State InteractionState
	Brush Brush
	Ruler *Ruler

	// FOVScaling applies the heuristic brush scale (vertical FOV / 90°)
	// so the visual brush width stays roughly constant across zoom.
	FOVScaling bool

	doc  *Document
	view *View

	stroke      bool
	tool        Tool
	target      *Layer
	active      Brush // brush resolved at stroke start
	startDir    Vec3
	lastDir     Vec3
	panLastU    float64
	panLastV    float64
	panDragging bool
}

// NewStrokeController creates a controller for the given document and view.
func NewStrokeController(doc *Document, view *View) *StrokeController {
	return &StrokeController{
		Brush: DefaultBrush(),
		Ruler: NewRuler(),
		doc:   doc,
		view:  view,
	}
}

// StrokeActive reports whether a stroke is in progress.
func (c *StrokeController) StrokeActive() bool {
	return c.stroke
}

// Begin starts an interaction at viewport-normalized (u, v). Returns
// false when another interaction owns the pointer or no paintable target
// exists. For paint tools, the target layer's history is snapshotted
// before the first stamp so the whole stroke undoes as one step.
func (c *StrokeController) Begin(u, v float64) bool {
	if c.State.Owner != OwnerNone {
		return false
	}
	tool := c.State.EffectiveTool()

	if tool == ToolPan {
		c.State.Owner = OwnerPan
		c.panDragging = true
		c.panLastU, c.panLastV = u, v
		return true
	}

	layer := c.doc.ActivePaintLayer()
	if layer == nil {
		return false
	}

	dir := c.view.Projection().ScreenToDirection(u, v)

	layer.History().Mark(layer.Buffer())
	c.Ruler.Begin(dir)

	c.State.Owner = OwnerPaint
	c.stroke = true
	c.tool = tool
	c.target = layer
	c.active = c.resolveBrush(tool)
	c.startDir = dir
	c.lastDir = dir

	// Freehand strokes mark the canvas immediately; the line tool defers
	// to End so the segment tracks the pointer.
	if tool != ToolLine {
		c.active.StampAt(layer.Buffer(), dir)
		c.doc.MarkDirty()
	}
	return true
}

// Move continues the current interaction at (u, v).
func (c *StrokeController) Move(u, v float64) {
	if c.State.Owner == OwnerPan && c.panDragging {
		c.view.Drag(u-c.panLastU, v-c.panLastV)
		c.panLastU, c.panLastV = u, v
		return
	}
	if !c.stroke {
		return
	}
	dir := c.view.Projection().ScreenToDirection(u, v)
	dir = c.Ruler.Constrain(dir)

	if c.tool == ToolLine {
		c.lastDir = dir
		return
	}
	c.active.StrokeSegment(c.target.Buffer(), c.lastDir, dir)
	c.lastDir = dir
	c.doc.MarkDirty()
}

// End finishes the current interaction. Releasing the pointer is the only
// cancellation path; stamps already issued stay issued.
func (c *StrokeController) End() {
	if c.State.Owner == OwnerPan {
		c.panDragging = false
		c.State.Owner = OwnerNone
		return
	}
	if !c.stroke {
		return
	}
	if c.tool == ToolLine {
		c.active.StrokeSegment(c.target.Buffer(), c.startDir, c.lastDir)
		c.doc.MarkDirty()
	}
	c.Ruler.End()
	c.stroke = false
	c.target = nil
	c.State.Owner = OwnerNone
}

// Undo delegates to the document unless a stroke is in progress.
func (c *StrokeController) Undo() bool {
	if c.stroke {
		return false
	}
	return c.doc.Undo()
}

// Redo delegates to the document unless a stroke is in progress.
func (c *StrokeController) Redo() bool {
	if c.stroke {
		return false
	}
	return c.doc.Redo()
}

// resolveBrush copies the brush, applying the erase tool and FOV scaling.
func (c *StrokeController) resolveBrush(tool Tool) Brush {
	br := c.Brush
	if tool == ToolErase {
		br.Erase = true
	}
	if c.FOVScaling {
		br.Radius *= c.view.Projection().BrushFOVScale()
	}
	return br
}
