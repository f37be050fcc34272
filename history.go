package panopaint

// Canvas is the restorable surface the undo history snapshots. PaintBuffer
// implements it; tests inject CPU-backed fakes for bit-for-bit checks.
type Canvas interface {
	Snapshot() Snapshot
	Restore(Snapshot)
}

// History is a bounded-depth snapshot stack pair for one paint layer.
// Branching history is not supported: any new stroke after an undo
// discards forward history.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	depth int
}

// DefaultHistoryDepth is the undo depth for ordinary canvas sizes.
const DefaultHistoryDepth = 30

// HistoryDepthFor returns the undo depth bound for a canvas of the given
// dimensions. Larger canvases get a shallower history to cap worst-case
// snapshot memory.
func HistoryDepthFor(w, h int) int {
	switch px := w * h; {
	case px > 4096*2048:
		return 10
	case px > 2048*1024:
		return 20
	default:
		return DefaultHistoryDepth
	}
}

// NewHistory creates a history with the given depth bound.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{depth: depth}
}

// Depth returns the depth bound.
func (h *History) Depth() int { return h.depth }

// CanUndo reports whether an undo snapshot is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Mark pushes a snapshot of the canvas's current state onto the undo
// stack and clears the redo stack. Call before the first stamp of a
// stroke. If the stack exceeds its bound the oldest entry is freed.
func (h *History) Mark(c Canvas) {
	h.undo = append(h.undo, c.Snapshot())
	if len(h.undo) > h.depth {
		h.undo[0].Release()
		copy(h.undo, h.undo[1:])
		h.undo[len(h.undo)-1] = nil
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.releaseAll(&h.redo)
}

// Undo pops the top undo snapshot, pushes the current state onto the redo
// stack, and restores the popped snapshot. Popping an empty stack is a
// silent no-op; returns whether anything changed.
func (h *History) Undo(c Canvas) bool {
	if len(h.undo) == 0 {
		return false
	}
	h.redo = append(h.redo, c.Snapshot())
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	c.Restore(top)
	top.Release()
	return true
}

// Redo is the mirror of Undo.
func (h *History) Redo(c Canvas) bool {
	if len(h.redo) == 0 {
		return false
	}
	h.undo = append(h.undo, c.Snapshot())
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	c.Restore(top)
	top.Release()
	return true
}

// Clear releases every snapshot on both stacks.
func (h *History) Clear() {
	h.releaseAll(&h.undo)
	h.releaseAll(&h.redo)
}

func (h *History) releaseAll(stack *[]Snapshot) {
	for i, s := range *stack {
		s.Release()
		(*stack)[i] = nil
	}
	*stack = (*stack)[:0]
}
