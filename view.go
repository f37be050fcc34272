package panopaint

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// orientAnim holds active orient-to tweens for view yaw and pitch.
type orientAnim struct {
	tweenYaw   *gween.Tween
	tweenPitch *gween.Tween
	doneYaw    bool
	donePitch  bool
}

// View is the interactive camera into the panorama: orientation, lens
// parameters, and viewport aspect. The camera-animation evaluator and the
// interaction layer both read and write it every frame.
type View struct {
	// Yaw, Pitch, and Roll are the camera orientation in radians.
	Yaw, Pitch, Roll float64
	// Perspective is the lens strength in [1, 100]; Fisheye the blend
	// amount in [0, 100].
	Perspective float64
	Fisheye     float64
	// MinFov and MaxFov bound the field of view in radians.
	MinFov float64
	MaxFov float64
	// Aspect is viewport width over height.
	Aspect float64

	orientTween *orientAnim
	zoomTween   *gween.Tween
}

// NewView creates a view with neutral defaults.
func NewView() *View {
	return &View{
		Perspective: 50,
		MinFov:      DefaultMinFov,
		MaxFov:      DefaultMaxFov,
		Aspect:      1,
	}
}

// Projection returns the projection parameters for the current view state.
func (v *View) Projection() Projection {
	return Projection{
		Perspective: v.Perspective,
		Fisheye:     v.Fisheye,
		MinFov:      v.MinFov,
		MaxFov:      v.MaxFov,
		Aspect:      v.Aspect,
		Yaw:         v.Yaw,
		Pitch:       v.Pitch,
		Roll:        v.Roll,
	}
}

// ApplyCameraState drives the view from an evaluated camera layer sample.
// CameraState angles are in degrees.
func (v *View) ApplyCameraState(st CameraState) {
	v.Pitch = st.Pitch * math.Pi / 180
	v.Yaw = st.Yaw * math.Pi / 180
	v.Roll = st.Roll * math.Pi / 180
	v.Perspective = clampf(st.Perspective, 1, 100)
	v.Fisheye = clampf(st.Fisheye, 0, 100)
}

// Drag pans the view by a viewport-normalized pointer delta, scaled so
// dragging across the viewport sweeps the visible field of view.
func (v *View) Drag(du, dv float64) {
	p := v.Projection()
	v.Yaw -= du * p.HorizontalFOV() / 2
	v.Pitch -= dv * p.VerticalFOV() / 2
	v.Pitch = clampf(v.Pitch, -math.Pi/2, math.Pi/2)
}

// OrientTo animates yaw and pitch to the given angles over duration
// seconds. The yaw target is unwrapped to the nearest representation so
// the view never spins the long way around.
func (v *View) OrientTo(yaw, pitch float64, duration float32, easeFn ease.TweenFunc) {
	yaw = v.Yaw + math.Remainder(yaw-v.Yaw, 2*math.Pi)
	v.orientTween = &orientAnim{
		tweenYaw:   gween.New(float32(v.Yaw), float32(yaw), duration, easeFn),
		tweenPitch: gween.New(float32(v.Pitch), float32(pitch), duration, easeFn),
	}
}

// ZoomTo animates the perspective parameter toward the target value.
func (v *View) ZoomTo(perspective float64, duration float32, easeFn ease.TweenFunc) {
	v.zoomTween = gween.New(float32(v.Perspective), float32(clampf(perspective, 1, 100)), duration, easeFn)
}

// Update advances orient and zoom animations. Call once per frame.
func (v *View) Update(dt float32) {
	if v.orientTween != nil {
		if !v.orientTween.doneYaw {
			val, done := v.orientTween.tweenYaw.Update(dt)
			v.Yaw = float64(val)
			v.orientTween.doneYaw = done
		}
		if !v.orientTween.donePitch {
			val, done := v.orientTween.tweenPitch.Update(dt)
			v.Pitch = float64(val)
			v.orientTween.donePitch = done
		}
		if v.orientTween.doneYaw && v.orientTween.donePitch {
			v.orientTween = nil
		}
	}
	if v.zoomTween != nil {
		val, done := v.zoomTween.Update(dt)
		v.Perspective = float64(val)
		if done {
			v.zoomTween = nil
		}
	}
}

// DrawComposite renders the equirectangular composite through the
// perspective camera onto dst: the inverse viewport pass of the painting
// data flow.
func (v *View) DrawComposite(dst, composite *ebiten.Image) {
	p := v.Projection()
	rot := p.orientation()

	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()

	shader := ensureViewProjectShader()
	op := &ebiten.DrawTrianglesShaderOptions{
		Uniforms: map[string]any{
			"ViewSize": []float32{float32(w), float32(h)},
			"Aspect":   float32(p.Aspect),
			"TanHalf":  float32(p.tanHalf()),
			"FisheyeW": float32(p.fisheyeWeight()),
			"RotX":     []float32{float32(rot[0]), float32(rot[1]), float32(rot[2])},
			"RotY":     []float32{float32(rot[3]), float32(rot[4]), float32(rot[5])},
			"RotZ":     []float32{float32(rot[6]), float32(rot[7]), float32(rot[8])},
		},
	}
	op.Images[0] = composite
	op.Blend = BlendCopy.EbitenBlend()

	// Source coordinates span the whole composite so the shader's source
	// region covers the full equirectangular texture.
	sb := composite.Bounds()
	sw, sh := float32(sb.Dx()), float32(sb.Dy())
	fw, fh := float32(w), float32(h)
	verts := []ebiten.Vertex{
		{DstX: 0, DstY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: fw, DstY: 0, SrcX: sw, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 0, DstY: fh, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: fw, DstY: fh, SrcX: sw, SrcY: sh, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst.DrawTrianglesShader(verts, []uint16{0, 1, 2, 1, 2, 3}, shader, op)
}
