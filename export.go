package panopaint

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// ExportFrames renders the composite for every frame in [from, to] and
// hands the readback to fn. The timeline frame is overridden per exported
// frame and restored afterwards, and each readback completes before the
// next frame is composited so GPU latency never queues unbounded.
func (d *Document) ExportFrames(from, to int, fn func(frame int, img *image.NRGBA) error) error {
	if to < from {
		return fmt.Errorf("export: frame range %d..%d is empty", from, to)
	}
	prev := d.frame
	defer func() {
		d.frame = prev
		d.MarkDirty()
	}()

	for f := from; f <= to; f++ {
		d.SetFrame(f)
		d.MarkDirty()
		img := readNRGBA(d.Composite())
		if err := fn(f, img); err != nil {
			return fmt.Errorf("export frame %d: %w", f, err)
		}
	}
	return nil
}

// WritePNGSequence exports frames as numbered PNG files in dir.
func (d *Document) WritePNGSequence(dir, prefix string, from, to int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	return d.ExportFrames(from, to, func(frame int, img *image.NRGBA) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%04d.png", prefix, frame))
		return writePNG(path, img)
	})
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// readNRGBA reads an image back from the GPU and converts premultiplied
// RGBA to straight-alpha NRGBA. The ReadPixels call waits for pending
// draws, so the bytes reflect every submitted stamp and composite pass.
func readNRGBA(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}
