package panopaint

import "github.com/hajimehoshi/ebiten/v2"

// Color represents an RGBA color with components in [0, 1]. Not
// premultiplied. Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default brush color.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns the color with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// BlendMode selects a compositing operation. Each maps to a specific
// ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over (standard alpha blending)
	BlendErase                   // destination-out (scale destination toward zero)
	BlendCopy                    // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendCopy:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// alphaEpsilon is the effective-opacity threshold below which a layer is
// skipped entirely during composition.
const alphaEpsilon = 1e-3
