// Package pattern composes one frame of a fill-count animation into a strip
// buffer.
package pattern

import (
	"fmt"
	"time"

	"github.com/coreman2200/ledfill/internal/strip"
	"github.com/coreman2200/ledfill/internal/trail"
)

// MarkerColor is painted at the trail peak.
var MarkerColor = strip.White

// Settings tune the animations.
type Settings struct {
	// RainbowStep is the hue increment in degrees between neighbouring pixels.
	RainbowStep float64
	// TrailCadence is the number of ticks between peak decrements.
	TrailCadence uint8
	// TrailDelay is an extra inter-frame wait applied by trail variants.
	TrailDelay time.Duration
}

// Colors are the user-settable colors.
type Colors struct {
	Base    strip.Pixel
	SeedHue float64
}

type fillKind uint8

const (
	fillSolid fillKind = iota
	fillRainbow
)

type strategy struct {
	fill    fillKind
	seed    bool // rainbow starts at Colors.SeedHue instead of the base color hue
	middle  bool
	markers int
}

var strategies = [numVariants]strategy{
	Rainbow:                       {fill: fillRainbow},
	RainbowCycle:                  {fill: fillRainbow, seed: true},
	RainbowMiddle:                 {fill: fillRainbow, middle: true},
	RainbowMiddleCycle:            {fill: fillRainbow, seed: true, middle: true},
	SolidTrail:                    {fill: fillSolid, markers: 1},
	SolidTrailDouble:              {fill: fillSolid, markers: 2},
	SolidTrailMiddle:              {fill: fillSolid, middle: true, markers: 1},
	SolidTrailMiddleDouble:        {fill: fillSolid, middle: true, markers: 2},
	RainbowTrail:                  {fill: fillRainbow, markers: 1},
	RainbowTrailMiddle:            {fill: fillRainbow, middle: true, markers: 1},
	RainbowTrailMiddleCycle:       {fill: fillRainbow, seed: true, middle: true, markers: 1},
	RainbowTrailMiddleDoubleCycle: {fill: fillRainbow, seed: true, middle: true, markers: 2},
}

// extent is the computed geometry of one frame before anything is painted.
type extent struct {
	start   int
	count   int
	markers []int
}

// Render clears buf and paints variant v for the given progress. Trail
// variants advance st once per call. progress is clipped to [0, len(buf)].
//
// An unknown variant leaves buf cleared and returns ErrUnknownVariant.
func Render(v Variant, progress int, s Settings, c Colors, st *trail.State, buf strip.Buffer) error {
	buf.Clear()
	if !v.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownVariant, uint8(v))
	}
	n := len(buf)
	progress = Clip(progress, n)
	sg := strategies[v]

	peak := 0
	if sg.markers > 0 {
		trail.Advance(progress, s.TrailCadence, st)
		peak = st.Peak
	}

	e := measure(sg, n, progress, peak)

	switch sg.fill {
	case fillSolid:
		buf.FillRange(e.start, e.start+e.count, c.Base)
	case fillRainbow:
		hue := c.Base.Hue()
		if sg.seed {
			hue = c.SeedHue
		}
		buf.Rainbow(e.start, e.count, hue, s.RainbowStep)
	}
	for _, m := range e.markers {
		buf[m] = MarkerColor
	}

	if sg.middle {
		strip.Mirror(buf)
	}
	return nil
}

func measure(sg strategy, n, progress, peak int) extent {
	if !sg.middle {
		e := extent{start: 0, count: progress}
		if peak >= 1 && peak < n {
			for i := 0; i < sg.markers; i++ {
				e.markers = append(e.markers, peak-i)
			}
		}
		return e
	}

	// Middle variants work in half-strip units measured from the center.
	center := strip.Center(n)
	e := extent{start: center, count: half(progress)}
	if e.count > n-center {
		e.count = n - center
	}
	hp := half(peak)
	if hp >= 1 && center+hp < n {
		for i := 0; i < sg.markers; i++ {
			e.markers = append(e.markers, center+hp-i)
		}
	}
	return e
}

// half rounds x up to even and halves it.
func half(x int) int {
	if x%2 != 0 {
		x++
	}
	return x / 2
}

// Clip bounds progress to [0, n].
func Clip(progress, n int) int {
	if progress < 0 {
		return 0
	}
	if progress > n {
		return n
	}
	return progress
}
