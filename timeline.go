package panopaint

import "sort"

// Cel operations on animation layers. A cel map is a sparse mapping from
// frame number to child index; lookups between keys resolve to the
// mapping at the greatest key <= the queried frame (hold-last-value).

// SetCel maps a frame to a child index. Panics on non-animation layers
// or when the index does not reference an existing child.
func (l *Layer) SetCel(frame, childIndex int) {
	if l.Type != LayerAnimation {
		panic("panopaint: SetCel on non-animation layer")
	}
	if childIndex < 0 || childIndex >= len(l.children) {
		panic("panopaint: cel child index out of range")
	}
	l.cels[frame] = childIndex
	l.celKeysDirty = true
}

// RemoveCel deletes the mapping for a frame. No-op if the frame has no
// mapping.
func (l *Layer) RemoveCel(frame int) {
	if l.Type != LayerAnimation {
		panic("panopaint: RemoveCel on non-animation layer")
	}
	if _, ok := l.cels[frame]; !ok {
		return
	}
	delete(l.cels, frame)
	l.celKeysDirty = true
}

// Cels returns a copy of the cel map.
func (l *Layer) Cels() map[int]int {
	out := make(map[int]int, len(l.cels))
	for f, i := range l.cels {
		out[f] = i
	}
	return out
}

// CelForFrame resolves the child index showing at the given frame:
// a direct hit if the frame has an explicit mapping, otherwise the
// mapping at the greatest key <= frame. ok is false when the frame
// precedes every mapping or the map is empty.
func (l *Layer) CelForFrame(frame int) (childIndex int, ok bool) {
	if idx, hit := l.cels[frame]; hit {
		return idx, true
	}
	keys := l.sortedCelKeys()
	// Greatest key <= frame.
	i := sort.SearchInts(keys, frame+1) - 1
	if i < 0 {
		return 0, false
	}
	return l.cels[keys[i]], true
}

// CelKeyIndex returns the position of the cel key governing frame within
// the sorted key list, or -1 when no key is at or before frame. Used by
// onion skinning to step to neighboring cels in keyframe order.
func (l *Layer) CelKeyIndex(frame int) int {
	keys := l.sortedCelKeys()
	return sort.SearchInts(keys, frame+1) - 1
}

// CelKeys returns the sorted cel key frames. The returned slice MUST NOT
// be mutated by the caller.
func (l *Layer) CelKeys() []int {
	return l.sortedCelKeys()
}

// sortedCelKeys rebuilds the sorted key cache if the cel map changed
// since the last query.
func (l *Layer) sortedCelKeys() []int {
	if l.celKeysDirty || l.celKeys == nil {
		l.celKeys = l.celKeys[:0]
		for f := range l.cels {
			l.celKeys = append(l.celKeys, f)
		}
		sort.Ints(l.celKeys)
		l.celKeysDirty = false
	}
	return l.celKeys
}

// --- Cel repair on tree mutation ---
//
// Tree mutations must atomically repair cel mappings whose child indices
// they invalidate, so a mapping always references an existing child.

// shiftCelsForInsert bumps mappings at or above the inserted slot.
func (l *Layer) shiftCelsForInsert(index int) {
	if l.Type != LayerAnimation {
		return
	}
	for f, i := range l.cels {
		if i >= index {
			l.cels[f] = i + 1
		}
	}
	l.celKeysDirty = true
}

// shiftCelsForRemove drops mappings pointing at the removed slot and
// decrements mappings above it.
func (l *Layer) shiftCelsForRemove(index int) {
	if l.Type != LayerAnimation {
		return
	}
	for f, i := range l.cels {
		switch {
		case i == index:
			delete(l.cels, f)
		case i > index:
			l.cels[f] = i - 1
		}
	}
	l.celKeysDirty = true
}

// remapCelsForMove rewrites mappings after a child moved from oldIndex to
// newIndex so each mapping keeps following the same child.
func (l *Layer) remapCelsForMove(oldIndex, newIndex int) {
	if l.Type != LayerAnimation {
		return
	}
	for f, i := range l.cels {
		switch {
		case i == oldIndex:
			l.cels[f] = newIndex
		case oldIndex < newIndex && i > oldIndex && i <= newIndex:
			l.cels[f] = i - 1
		case newIndex < oldIndex && i >= newIndex && i < oldIndex:
			l.cels[f] = i + 1
		}
	}
	l.celKeysDirty = true
}
