package strip

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Pixel is the color of a single strip position.
type Pixel struct {
	R, G, B uint8
}

var (
	Black = Pixel{}
	White = Pixel{R: 255, G: 255, B: 255}
)

func RGB(r, g, b uint8) Pixel { return Pixel{R: r, G: g, B: b} }

func (p Pixel) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.R, p.G, p.B)
}

// Hue returns the pixel's hue in degrees [0,360).
func (p Pixel) Hue() float64 {
	h, _, _ := p.color().Hsv()
	return WrapHue(h)
}

func (p Pixel) color() colorful.Color {
	return colorful.Color{
		R: float64(p.R) / 255.0,
		G: float64(p.G) / 255.0,
		B: float64(p.B) / 255.0,
	}
}

// HSV is a hue (degrees) with saturation and value in [0,1].
type HSV struct {
	Hue float64
	Sat float64
	Val float64
}

// Hue returns a fully saturated, full value color at hue h.
func Hue(h float64) HSV { return HSV{Hue: WrapHue(h), Sat: 1, Val: 1} }

func (c HSV) Pixel() Pixel {
	r, g, b := colorful.Hsv(WrapHue(c.Hue), clamp01(c.Sat), clamp01(c.Val)).RGB255()
	return Pixel{R: r, G: g, B: b}
}

// WrapHue folds h into [0,360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
