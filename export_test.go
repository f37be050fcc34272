package panopaint

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"
)

// --- Frame iteration ---

func TestExportFramesVisitsRangeInOrder(t *testing.T) {
	doc := NewDocument(8, 4)
	var frames []int
	err := doc.ExportFrames(2, 5, func(frame int, img *image.NRGBA) error {
		frames = append(frames, frame)
		if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
			t.Errorf("frame %d image = %v, want 8x4", frame, img.Bounds())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []int{2, 3, 4, 5}
	if len(frames) != len(want) {
		t.Fatalf("visited %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("visited %v, want %v", frames, want)
		}
	}
}

func TestExportFramesRestoresTimeline(t *testing.T) {
	doc := NewDocument(8, 4)
	doc.SetFrame(42)
	err := doc.ExportFrames(0, 2, func(int, *image.NRGBA) error { return nil })
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Frame() != 42 {
		t.Errorf("frame = %d after export, want 42", doc.Frame())
	}
}

func TestExportFramesEmptyRange(t *testing.T) {
	doc := NewDocument(8, 4)
	if err := doc.ExportFrames(5, 2, func(int, *image.NRGBA) error { return nil }); err == nil {
		t.Error("empty range accepted")
	}
}

func TestExportFramesStopsOnCallbackError(t *testing.T) {
	doc := NewDocument(8, 4)
	calls := 0
	err := doc.ExportFrames(0, 9, func(frame int, _ *image.NRGBA) error {
		calls++
		if frame == 1 {
			return fmt.Errorf("disk full")
		}
		return nil
	})
	if err == nil {
		t.Fatal("callback error swallowed")
	}
	if calls != 2 {
		t.Errorf("callback ran %d times after the error, want 2", calls)
	}
	if doc.Frame() != 0 {
		t.Errorf("frame = %d, want the pre-export frame restored", doc.Frame())
	}
}

// --- PNG sequence ---

func TestWritePNGSequence(t *testing.T) {
	doc := NewDocument(8, 4)
	dir := t.TempDir()
	if err := doc.WritePNGSequence(dir, "frame", 0, 2); err != nil {
		t.Fatalf("write sequence: %v", err)
	}
	for f := 0; f <= 2; f++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", f))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}
}
