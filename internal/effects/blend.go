package effects

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/scrollscene/internal/scene"
)

// blendFunc combines a base channel b with a source channel s, all 0..1
type blendFunc func(b, s float64) float64

var channelBlends = map[scene.BlendFunction]blendFunc{
	scene.BlendNormal:     func(b, s float64) float64 { return s },
	scene.BlendAdd:        func(b, s float64) float64 { return b + s },
	scene.BlendAverage:    func(b, s float64) float64 { return (b + s) / 2 },
	scene.BlendDarken:     math.Min,
	scene.BlendLighten:    math.Max,
	scene.BlendDifference: func(b, s float64) float64 { return math.Abs(b - s) },
	scene.BlendExclusion:  func(b, s float64) float64 { return b + s - 2*b*s },
	scene.BlendMultiply:   func(b, s float64) float64 { return b * s },
	scene.BlendScreen:     func(b, s float64) float64 { return b + s - b*s },
	scene.BlendSubtract:   func(b, s float64) float64 { return b + s - 1 },
	scene.BlendOverlay: func(b, s float64) float64 {
		if b < 0.5 {
			return 2 * b * s
		}
		return 1 - 2*(1-b)*(1-s)
	},
}

// Composite blends the glyph layer src into dst in place. The layer's
// transparent parts count as black, except for the alpha blend, which lays
// the glyphs over the frame. opacity mixes the blended result with dst.
func Composite(dst, src *image.RGBA, fn scene.BlendFunction, opacity float64) error {
	if fn == scene.BlendSkip {
		return nil
	}
	if dst.Bounds() != src.Bounds() {
		return fmt.Errorf("layer bounds %v differ from frame %v", src.Bounds(), dst.Bounds())
	}
	opacity = math.Max(0, math.Min(1, opacity))

	channel, perChannel := channelBlends[fn]
	if !perChannel && fn != scene.BlendAlpha && fn != scene.BlendColor {
		return fmt.Errorf("unsupported blend function: %s", fn)
	}

	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		di := dst.PixOffset(b.Min.X, y)
		si := src.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			base := [3]float64{
				float64(dst.Pix[di]) / 255,
				float64(dst.Pix[di+1]) / 255,
				float64(dst.Pix[di+2]) / 255,
			}
			// src is premultiplied: over black it is the stored value
			over := [3]float64{
				float64(src.Pix[si]) / 255,
				float64(src.Pix[si+1]) / 255,
				float64(src.Pix[si+2]) / 255,
			}
			alpha := float64(src.Pix[si+3]) / 255

			var out [3]float64
			switch fn {
			case scene.BlendAlpha:
				for c := 0; c < 3; c++ {
					out[c] = over[c] + base[c]*(1-alpha)
				}
			case scene.BlendColor:
				out = colorBlend(base, over)
			default:
				for c := 0; c < 3; c++ {
					out[c] = channel(base[c], over[c])
				}
			}

			for c := 0; c < 3; c++ {
				v := base[c] + (clamp01(out[c])-base[c])*opacity
				dst.Pix[di+c] = uint8(clamp01(v)*255 + 0.5)
			}
			dst.Pix[di+3] = 255
			di += 4
			si += 4
		}
	}
	return nil
}

// colorBlend keeps the base lightness and takes hue and saturation from s
func colorBlend(base, s [3]float64) [3]float64 {
	bc := colorful.Color{R: base[0], G: base[1], B: base[2]}
	sc := colorful.Color{R: s[0], G: s[1], B: s[2]}
	h, sat, _ := sc.Hsl()
	_, _, l := bc.Hsl()
	out := colorful.Hsl(h, sat, l).Clamped()
	return [3]float64{out.R, out.G, out.B}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
