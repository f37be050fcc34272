package panopaint

import "github.com/hajimehoshi/ebiten/v2"

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine works in premultiplied alpha; shader outputs are
// premultiplied.

// brushStampShaderSrc evaluates the analytic spherical brush falloff per
// destination pixel. The pixel's equirectangular UV is converted back to
// a unit direction and the falloff is driven by the angular distance to
// the brush center, so the stamp is round on the sphere regardless of
// how distorted its UV footprint is.
const brushStampShaderSrc = `//kage:unit pixels
package main

var Center vec3
var Radius float
var Hardness float
var BrushColor vec4
var TexSize vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	pos := dst.xy - imageDstOrigin()
	u := pos.x / TexSize.x
	v := pos.y / TexSize.y
	lon := (u - 0.5) * 6.283185307179586
	lat := (0.5 - v) * 3.141592653589793
	dir := vec3(cos(lat)*sin(lon), sin(lat), cos(lat)*cos(lon))
	d := acos(clamp(dot(dir, Center), -1.0, 1.0))
	a := 1.0 - smoothstep(Hardness*Radius, Radius, d)
	return BrushColor * a
}
`

// viewProjectShaderSrc renders the equirectangular composite through the
// perspective camera: each viewport pixel is mapped to a ray via the
// blended lens model, rotated into world space, and sampled from the
// composite at its equirectangular UV.
const viewProjectShaderSrc = `//kage:unit pixels
package main

var ViewSize vec2
var Aspect float
var TanHalf float
var FisheyeW float
var RotX vec3
var RotY vec3
var RotZ vec3

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	pos := dst.xy - imageDstOrigin()
	u := (pos.x/ViewSize.x)*2.0 - 1.0
	v := 1.0 - (pos.y/ViewSize.y)*2.0

	x := u * Aspect
	y := v
	r := sqrt(x*x + y*y)
	s := r * TanHalf
	theta := (1.0-FisheyeW)*atan(s) + FisheyeW*2.0*atan(s/2.0)

	var d vec3
	if r < 1e-6 {
		d = vec3(0.0, 0.0, 1.0)
	} else {
		st := sin(theta)
		d = vec3(st*x/r, st*y/r, cos(theta))
	}
	world := vec3(dot(RotX, d), dot(RotY, d), dot(RotZ, d))

	lon := atan2(world.x, world.z)
	lat := asin(clamp(world.y, -1.0, 1.0))
	tu := lon/6.283185307179586 + 0.5
	tv := 0.5 - lat/3.141592653589793

	origin := imageSrc0Origin()
	size := imageSrc0Size()
	return imageSrc0At(origin + vec2(fract(tu), clamp(tv, 0.0, 1.0))*size)
}
`

// --- Lazy shader compilation (no sync.Once; panopaint is single-threaded) ---

var (
	brushStampShader  *ebiten.Shader
	viewProjectShader *ebiten.Shader
)

func ensureBrushStampShader() *ebiten.Shader {
	if brushStampShader == nil {
		s, err := ebiten.NewShader([]byte(brushStampShaderSrc))
		if err != nil {
			panic("panopaint: failed to compile brush stamp shader: " + err.Error())
		}
		brushStampShader = s
	}
	return brushStampShader
}

func ensureViewProjectShader() *ebiten.Shader {
	if viewProjectShader == nil {
		s, err := ebiten.NewShader([]byte(viewProjectShaderSrc))
		if err != nil {
			panic("panopaint: failed to compile view projection shader: " + err.Error())
		}
		viewProjectShader = s
	}
	return viewProjectShader
}

// --- Legacy quad-mode brush mask ---

// brushMaskSize is the side length of the pre-rendered soft circular
// alpha mask used by quad-mode stamping.
const brushMaskSize = 128

var brushMaskImage *ebiten.Image

// ensureBrushMask builds the fixed soft circular alpha mask: white with
// alpha falling from the center to the rim.
func ensureBrushMask() *ebiten.Image {
	if brushMaskImage != nil {
		return brushMaskImage
	}
	pix := make([]byte, 4*brushMaskSize*brushMaskSize)
	half := float64(brushMaskSize) / 2
	for py := 0; py < brushMaskSize; py++ {
		for px := 0; px < brushMaskSize; px++ {
			dx := (float64(px) + 0.5 - half) / half
			dy := (float64(py) + 0.5 - half) / half
			d := dx*dx + dy*dy
			a := 1 - smoothstep(0.25, 1, d)
			b := byte(clampf(a, 0, 1) * 255)
			i := 4 * (py*brushMaskSize + px)
			pix[i] = b
			pix[i+1] = b
			pix[i+2] = b
			pix[i+3] = b
		}
	}
	brushMaskImage = ebiten.NewImage(brushMaskSize, brushMaskSize)
	brushMaskImage.WritePixels(pix)
	return brushMaskImage
}
