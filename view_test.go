package panopaint

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

// --- Camera state application ---

func TestApplyCameraStateConvertsDegrees(t *testing.T) {
	v := NewView()
	v.ApplyCameraState(CameraState{Yaw: 90, Pitch: -45, Roll: 180, Perspective: 60, Fisheye: 25})
	approxEq(t, v.Yaw, math.Pi/2, 1e-9, "yaw radians")
	approxEq(t, v.Pitch, -math.Pi/4, 1e-9, "pitch radians")
	approxEq(t, v.Roll, math.Pi, 1e-9, "roll radians")
	approxEq(t, v.Perspective, 60, testEps, "perspective")
	approxEq(t, v.Fisheye, 25, testEps, "fisheye")
}

func TestApplyCameraStateClampsRanges(t *testing.T) {
	v := NewView()
	v.ApplyCameraState(CameraState{Perspective: 400, Fisheye: -10})
	approxEq(t, v.Perspective, 100, testEps, "perspective clamp")
	approxEq(t, v.Fisheye, 0, testEps, "fisheye clamp")
}

// --- Dragging ---

func TestDragPansAgainstPointer(t *testing.T) {
	v := NewView()
	yaw, pitch := v.Yaw, v.Pitch
	v.Drag(0.5, 0)
	if v.Yaw >= yaw {
		t.Error("dragging right should decrease yaw (grab-the-world panning)")
	}
	v.Drag(0, 0.5)
	if v.Pitch >= pitch {
		t.Error("dragging up should decrease pitch")
	}
}

func TestDragScalesWithFOV(t *testing.T) {
	wide := NewView()
	wide.Perspective = 100
	narrow := NewView()
	narrow.Perspective = 1

	wide.Drag(0.5, 0)
	narrow.Drag(0.5, 0)
	if math.Abs(wide.Yaw) <= math.Abs(narrow.Yaw) {
		t.Error("the same drag should sweep more yaw at a wider FOV")
	}
}

func TestDragClampsPitch(t *testing.T) {
	v := NewView()
	for i := 0; i < 100; i++ {
		v.Drag(0, -1)
	}
	approxEq(t, v.Pitch, math.Pi/2, testEps, "pitch clamped at the pole")
}

// --- Animated transitions ---

func TestOrientToReachesTarget(t *testing.T) {
	v := NewView()
	v.OrientTo(1.2, 0.4, 1, ease.Linear)
	for i := 0; i < 70; i++ {
		v.Update(1.0 / 60)
	}
	approxEq(t, v.Yaw, 1.2, 1e-5, "yaw after orient")
	approxEq(t, v.Pitch, 0.4, 1e-5, "pitch after orient")
}

func TestOrientToTakesShortWayAround(t *testing.T) {
	v := NewView()
	v.Yaw = 3.0
	v.OrientTo(-3.1, 0, 1, ease.Linear)
	for i := 0; i < 70; i++ {
		v.Update(1.0 / 60)
	}
	// The unwrapped target is just past pi, not a near-full turn backwards.
	approxEq(t, v.Yaw, 3.0+math.Remainder(-3.1-3.0, 2*math.Pi), 1e-5, "unwrapped yaw target")
	if math.Abs(v.Yaw-3.0) > 0.5 {
		t.Errorf("orient swept %v radians, expected the short way", math.Abs(v.Yaw-3.0))
	}
}

func TestZoomToClampsTarget(t *testing.T) {
	v := NewView()
	v.ZoomTo(500, 0.5, ease.Linear)
	for i := 0; i < 40; i++ {
		v.Update(1.0 / 60)
	}
	approxEq(t, v.Perspective, 100, 1e-4, "perspective clamped")
}

func TestUpdateWithoutTweensIsStable(t *testing.T) {
	v := NewView()
	v.Yaw = 0.3
	v.Update(1.0 / 60)
	approxEq(t, v.Yaw, 0.3, testEps, "idle update must not drift")
}

// --- Projection wiring ---

func TestViewProjectionCarriesState(t *testing.T) {
	v := NewView()
	v.Yaw = 0.5
	v.Fisheye = 30
	v.Aspect = 1.5
	p := v.Projection()
	if p.Yaw != 0.5 || p.Fisheye != 30 || p.Aspect != 1.5 {
		t.Error("projection does not mirror the view state")
	}
	if p.MinFov != DefaultMinFov || p.MaxFov != DefaultMaxFov {
		t.Error("projection FOV bounds wrong")
	}
}
