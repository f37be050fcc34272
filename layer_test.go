package panopaint

import "testing"

func expectPanic(t *testing.T, label string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", label)
		}
	}()
	fn()
}

// --- Constructor defaults ---

func TestNewPaintLayerDefaults(t *testing.T) {
	l := NewPaintLayer("ink", 64, 32)
	assertLayerDefaults(t, l, "ink", LayerPaint)
	if l.Buffer() == nil {
		t.Fatal("paint layer has no buffer")
	}
	if l.Buffer().Allocated() {
		t.Error("buffer should not be allocated before the first stamp")
	}
	if l.History() == nil {
		t.Error("paint layer has no history")
	}
}

func TestNewGroupLayerDefaults(t *testing.T) {
	l := NewGroupLayer("grp")
	assertLayerDefaults(t, l, "grp", LayerGroup)
	if l.Buffer() != nil || l.History() != nil {
		t.Error("group layers carry no paint state")
	}
}

func TestNewAnimationLayerDefaults(t *testing.T) {
	l := NewAnimationLayer("anim")
	assertLayerDefaults(t, l, "anim", LayerAnimation)
	if l.cels == nil {
		t.Error("animation layer has no cel map")
	}
}

func TestNewCameraLayerDefaults(t *testing.T) {
	l := NewCameraLayer("cam")
	assertLayerDefaults(t, l, "cam", LayerCamera)
	for ch := CurveChannel(0); ch < CurveChannelCount; ch++ {
		if l.Curve(ch) == nil {
			t.Errorf("camera layer missing %s curve", ch)
		}
	}
	if !l.Curve(ChannelYaw).Angular() || l.Curve(ChannelPerspective).Angular() {
		t.Error("angular flag wrong on camera curves")
	}
}

func assertLayerDefaults(t *testing.T, l *Layer, name string, typ LayerType) {
	t.Helper()
	if l.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if l.UUID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("UUID should be assigned")
	}
	if l.Name != name {
		t.Errorf("Name = %q, want %q", l.Name, name)
	}
	if l.Type != typ {
		t.Errorf("Type = %v, want %v", l.Type, typ)
	}
	if !l.Visible {
		t.Error("Visible should default to true")
	}
	if l.Opacity != 1 {
		t.Errorf("Opacity = %v, want 1", l.Opacity)
	}
}

func TestUniqueLayerIDs(t *testing.T) {
	a := NewGroupLayer("a")
	b := NewGroupLayer("b")
	if a.ID == b.ID {
		t.Error("layer IDs must be unique")
	}
	if a.UUID == b.UUID {
		t.Error("layer UUIDs must be unique")
	}
}

func TestIsGroup(t *testing.T) {
	if NewPaintLayer("p", 4, 4).IsGroup() {
		t.Error("paint layers are not groups")
	}
	for _, l := range []*Layer{NewGroupLayer("g"), NewAnimationLayer("a"), NewCameraLayer("c")} {
		if !l.IsGroup() {
			t.Errorf("%v should be a group type", l.Type)
		}
	}
}

// --- Tree manipulation ---

func TestAddChildOrdering(t *testing.T) {
	g := NewGroupLayer("g")
	a := NewGroupLayer("a")
	b := NewGroupLayer("b")
	g.AddChild(a)
	g.AddChild(b)
	// AddChild appends: last added is topmost.
	if g.ChildAt(0) != a || g.ChildAt(1) != b {
		t.Error("AddChild ordering wrong")
	}
	if a.Parent != g || b.Parent != g {
		t.Error("parent pointers not set")
	}
}

func TestAddChildAt(t *testing.T) {
	g := NewGroupLayer("g")
	a := NewGroupLayer("a")
	b := NewGroupLayer("b")
	c := NewGroupLayer("c")
	g.AddChild(a)
	g.AddChild(b)
	g.AddChildAt(c, 1)
	if g.ChildAt(0) != a || g.ChildAt(1) != c || g.ChildAt(2) != b {
		t.Error("AddChildAt insertion order wrong")
	}
}

func TestAddChildReparents(t *testing.T) {
	g1 := NewGroupLayer("g1")
	g2 := NewGroupLayer("g2")
	a := NewGroupLayer("a")
	g1.AddChild(a)
	g2.AddChild(a)
	if g1.NumChildren() != 0 {
		t.Error("child not removed from old parent")
	}
	if a.Parent != g2 {
		t.Error("parent not updated")
	}
}

func TestRemoveChildAtReturnsChild(t *testing.T) {
	g := NewGroupLayer("g")
	a := NewGroupLayer("a")
	g.AddChild(a)
	got := g.RemoveChildAt(0)
	if got != a || a.Parent != nil || g.NumChildren() != 0 {
		t.Error("RemoveChildAt did not detach the child")
	}
}

func TestMoveChild(t *testing.T) {
	g := NewGroupLayer("g")
	kids := []*Layer{NewGroupLayer("a"), NewGroupLayer("b"), NewGroupLayer("c")}
	for _, k := range kids {
		g.AddChild(k)
	}
	g.MoveChild(kids[0], 2)
	if g.ChildAt(0) != kids[1] || g.ChildAt(1) != kids[2] || g.ChildAt(2) != kids[0] {
		t.Error("MoveChild up ordering wrong")
	}
	g.MoveChild(kids[0], 0)
	if g.ChildAt(0) != kids[0] || g.ChildAt(1) != kids[1] || g.ChildAt(2) != kids[2] {
		t.Error("MoveChild down ordering wrong")
	}
}

func TestChildIndex(t *testing.T) {
	g := NewGroupLayer("g")
	a := NewGroupLayer("a")
	g.AddChild(a)
	if g.ChildIndex(a) != 0 {
		t.Error("ChildIndex wrong")
	}
	if g.ChildIndex(NewGroupLayer("x")) != -1 {
		t.Error("ChildIndex of non-child should be -1")
	}
}

// --- Contract violations ---

func TestAddChildPanics(t *testing.T) {
	g := NewGroupLayer("g")
	expectPanic(t, "nil child", func() { g.AddChild(nil) })

	p := NewPaintLayer("p", 4, 4)
	expectPanic(t, "child under paint layer", func() { p.AddChild(NewGroupLayer("x")) })

	a := NewGroupLayer("a")
	g.AddChild(a)
	expectPanic(t, "cycle", func() { a.AddChild(g) })
	expectPanic(t, "self cycle", func() { a.AddChild(a) })

	expectPanic(t, "index out of range", func() { g.AddChildAt(NewGroupLayer("y"), 5) })
}

func TestRemoveChildStaleParentPanics(t *testing.T) {
	g := NewGroupLayer("g")
	other := NewGroupLayer("other")
	a := NewGroupLayer("a")
	other.AddChild(a)
	expectPanic(t, "stale parent", func() { g.RemoveChild(a) })
}

func TestDisposedLayerPanics(t *testing.T) {
	g := NewGroupLayer("g")
	a := NewGroupLayer("a")
	g.AddChild(a)
	a.Dispose()
	expectPanic(t, "add disposed child", func() { g.AddChild(a) })
}

// --- Disposal ---

func TestDisposeDetachesAndRecurses(t *testing.T) {
	g := NewGroupLayer("g")
	child := NewGroupLayer("child")
	grandchild := NewPaintLayer("leaf", 8, 8)
	g.AddChild(child)
	child.AddChild(grandchild)

	child.Dispose()
	if g.NumChildren() != 0 {
		t.Error("disposed layer still attached to parent")
	}
	if !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("disposal did not recurse")
	}
	if grandchild.Buffer() != nil {
		t.Error("disposed paint layer kept its buffer")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	l := NewGroupLayer("g")
	l.Dispose()
	l.Dispose()
}

// --- Effective opacity ---

func TestEffectiveOpacityMultipliesAncestors(t *testing.T) {
	a := NewGroupLayer("a")
	b := NewGroupLayer("b")
	c := NewPaintLayer("c", 4, 4)
	a.AddChild(b)
	b.AddChild(c)
	a.Opacity = 0.5
	b.Opacity = 0.5
	c.Opacity = 0.8
	approxEq(t, c.EffectiveOpacity(), 0.2, testEps, "effective opacity")
}

func TestEffectiveOpacityInvisibleAncestor(t *testing.T) {
	a := NewGroupLayer("a")
	b := NewPaintLayer("b", 4, 4)
	a.AddChild(b)
	a.Visible = false
	approxEq(t, b.EffectiveOpacity(), 0, testEps, "opacity under invisible ancestor")
}
