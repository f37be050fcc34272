package panopaint

import "testing"

func animWithChildren(t *testing.T, n int) *Layer {
	t.Helper()
	anim := NewAnimationLayer("anim")
	for i := 0; i < n; i++ {
		anim.AddChild(NewGroupLayer("cel"))
	}
	return anim
}

// --- Hold-last lookup ---

func TestCelForFrameHoldsLastValue(t *testing.T) {
	anim := animWithChildren(t, 3)
	anim.SetCel(0, 0)
	anim.SetCel(5, 1)
	anim.SetCel(12, 2)

	cases := []struct {
		frame, want int
	}{
		{0, 0}, {3, 0}, {5, 1}, {9, 1}, {12, 2}, {20, 2},
	}
	for _, tc := range cases {
		got, ok := anim.CelForFrame(tc.frame)
		if !ok || got != tc.want {
			t.Errorf("CelForFrame(%d) = (%d, %v), want (%d, true)", tc.frame, got, ok, tc.want)
		}
	}
}

func TestCelForFrameBeforeFirstKey(t *testing.T) {
	anim := animWithChildren(t, 2)
	anim.SetCel(5, 1)
	if _, ok := anim.CelForFrame(3); ok {
		t.Error("frame before every key should resolve to nothing")
	}
}

func TestCelForFrameEmptyMap(t *testing.T) {
	anim := animWithChildren(t, 1)
	if _, ok := anim.CelForFrame(0); ok {
		t.Error("empty cel map should resolve to nothing")
	}
}

func TestRemoveCel(t *testing.T) {
	anim := animWithChildren(t, 2)
	anim.SetCel(0, 0)
	anim.SetCel(5, 1)
	anim.RemoveCel(5)
	if got, _ := anim.CelForFrame(10); got != 0 {
		t.Errorf("CelForFrame(10) = %d after removal, want 0", got)
	}
	anim.RemoveCel(99) // no mapping: silent no-op
}

func TestCelKeysSorted(t *testing.T) {
	anim := animWithChildren(t, 1)
	anim.SetCel(12, 0)
	anim.SetCel(0, 0)
	anim.SetCel(5, 0)
	keys := anim.CelKeys()
	want := []int{0, 5, 12}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestCelKeyIndex(t *testing.T) {
	anim := animWithChildren(t, 1)
	anim.SetCel(0, 0)
	anim.SetCel(5, 0)
	anim.SetCel(12, 0)
	cases := []struct {
		frame, want int
	}{
		{-1, -1}, {0, 0}, {4, 0}, {5, 1}, {11, 1}, {12, 2}, {100, 2},
	}
	for _, tc := range cases {
		if got := anim.CelKeyIndex(tc.frame); got != tc.want {
			t.Errorf("CelKeyIndex(%d) = %d, want %d", tc.frame, got, tc.want)
		}
	}
}

// --- Contract violations ---

func TestSetCelOnNonAnimationPanics(t *testing.T) {
	g := NewGroupLayer("g")
	expectPanic(t, "SetCel on group layer", func() {
		g.SetCel(0, 0)
	})
}

func TestSetCelIndexOutOfRangePanics(t *testing.T) {
	anim := animWithChildren(t, 2)
	expectPanic(t, "cel index past children", func() {
		anim.SetCel(0, 2)
	})
	expectPanic(t, "negative cel index", func() {
		anim.SetCel(0, -1)
	})
}

// --- Repair on tree mutation ---

func TestCelRepairOnRemove(t *testing.T) {
	anim := animWithChildren(t, 3)
	anim.SetCel(0, 0)
	anim.SetCel(5, 1)
	anim.SetCel(12, 2)

	// Deleting the middle child drops its mapping and shifts the one above.
	anim.RemoveChildAt(1)

	cels := anim.Cels()
	if len(cels) != 2 {
		t.Fatalf("cels = %v, want 2 entries", cels)
	}
	if cels[0] != 0 || cels[12] != 1 {
		t.Errorf("cels = %v, want {0:0, 12:1}", cels)
	}
	if _, ok := cels[5]; ok {
		t.Error("mapping to the removed child should be dropped")
	}
}

func TestCelRepairOnInsert(t *testing.T) {
	anim := animWithChildren(t, 2)
	anim.SetCel(0, 0)
	anim.SetCel(5, 1)

	// Inserting at the bottom shifts every mapping up by one.
	anim.AddChildAt(NewGroupLayer("new"), 0)

	cels := anim.Cels()
	if cels[0] != 1 || cels[5] != 2 {
		t.Errorf("cels = %v, want {0:1, 5:2}", cels)
	}
}

func TestCelRepairOnMove(t *testing.T) {
	anim := animWithChildren(t, 3)
	a, b, c := anim.ChildAt(0), anim.ChildAt(1), anim.ChildAt(2)
	anim.SetCel(0, 0)
	anim.SetCel(5, 1)
	anim.SetCel(12, 2)

	// Move the bottom child to the top; every mapping keeps following the
	// same child.
	anim.MoveChild(a, 2)

	cels := anim.Cels()
	if anim.ChildAt(cels[0]) != a {
		t.Error("cel 0 no longer follows its child after move")
	}
	if anim.ChildAt(cels[5]) != b {
		t.Error("cel 5 no longer follows its child after move")
	}
	if anim.ChildAt(cels[12]) != c {
		t.Error("cel 12 no longer follows its child after move")
	}
}
