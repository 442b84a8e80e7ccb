package pattern

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledfill/internal/strip"
	"github.com/coreman2200/ledfill/internal/trail"
)

var red = strip.RGB(255, 0, 0)

func settings(step float64, cadence uint8) Settings {
	return Settings{RainbowStep: step, TrailCadence: cadence}
}

func TestEveryVariantHasNameAndStrategy(t *testing.T) {
	seen := map[string]bool{}
	for _, v := range Variants() {
		name := v.String()
		require.NotEmpty(t, name, "variant %d", uint8(v))
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true

		got, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.Len(t, Variants(), 12)
	assert.Equal(t, len(Variants()), len(Names()))
}

func TestLookup(t *testing.T) {
	v, err := Lookup(" Solid_Trail_Double ")
	require.NoError(t, err)
	assert.Equal(t, SolidTrailDouble, v)

	_, err = Lookup("sparkle")
	assert.True(t, errors.Is(err, ErrUnknownVariant))

	assert.Equal(t, "variant(200)", Variant(200).String())
	assert.False(t, Variant(200).Trail())
}

func TestVariantFamilies(t *testing.T) {
	assert.False(t, Rainbow.Trail())
	assert.False(t, RainbowMiddleCycle.Trail())
	assert.True(t, SolidTrail.Trail())
	assert.True(t, RainbowTrailMiddleDoubleCycle.Trail())
	assert.True(t, RainbowMiddle.Middle())
	assert.False(t, RainbowTrail.Middle())
}

func TestZeroProgressNonTrailIsBlank(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, v := range []Variant{Rainbow, RainbowCycle, RainbowMiddle, RainbowMiddleCycle} {
		for _, n := range []int{1, 2, 9, 10, 64} {
			buf := strip.NewBuffer(n)
			buf.Fill(strip.White)
			c := Colors{
				Base:    strip.RGB(uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))),
				SeedHue: float64(rng.Intn(360)),
			}
			require.NoError(t, Render(v, 0, settings(10, 1), c, &trail.State{}, buf))
			assert.Equal(t, 0, buf.Lit(), "%s n=%d", v, n)
		}
	}
}

func TestRainbowGradient(t *testing.T) {
	buf := strip.NewBuffer(10)
	c := Colors{Base: red}
	require.NoError(t, Render(Rainbow, 5, settings(10, 1), c, &trail.State{}, buf))

	for i := 0; i < 5; i++ {
		assert.Equal(t, strip.Hue(float64(i*10)).Pixel(), buf[i], "pixel %d", i)
		assert.InDelta(t, float64(i*10), buf[i].Hue(), 1.0)
	}
	for i := 5; i < 10; i++ {
		assert.Equal(t, strip.Black, buf[i], "pixel %d", i)
	}
}

func TestRainbowCycleUsesSeedHue(t *testing.T) {
	buf := strip.NewBuffer(6)
	c := Colors{Base: red, SeedHue: 200}
	require.NoError(t, Render(RainbowCycle, 3, settings(20, 1), c, &trail.State{}, buf))
	assert.Equal(t, strip.Hue(200).Pixel(), buf[0])
	assert.Equal(t, strip.Hue(220).Pixel(), buf[1])
	assert.Equal(t, strip.Hue(240).Pixel(), buf[2])
	assert.Equal(t, strip.Black, buf[3])
}

func TestProgressIsClipped(t *testing.T) {
	buf := strip.NewBuffer(10)
	require.NoError(t, Render(Rainbow, 50, settings(5, 1), Colors{Base: red}, &trail.State{}, buf))
	assert.Equal(t, 10, buf.Lit())

	require.NoError(t, Render(Rainbow, -3, settings(5, 1), Colors{Base: red}, &trail.State{}, buf))
	assert.Equal(t, 0, buf.Lit())
}

func TestRainbowMiddleEven(t *testing.T) {
	buf := strip.NewBuffer(8)
	c := Colors{Base: red}
	for _, p := range []int{3, 4} {
		require.NoError(t, Render(RainbowMiddle, p, settings(30, 1), c, &trail.State{}, buf))
		want := strip.Buffer{
			strip.Black, strip.Black,
			strip.Hue(30).Pixel(), strip.Hue(0).Pixel(),
			strip.Hue(0).Pixel(), strip.Hue(30).Pixel(),
			strip.Black, strip.Black,
		}
		assert.Equal(t, want, buf, "progress %d", p)
	}

	require.NoError(t, Render(RainbowMiddle, 8, settings(30, 1), c, &trail.State{}, buf))
	assert.Equal(t, 8, buf.Lit())
	assert.True(t, strip.Symmetric(buf))
}

func TestRainbowMiddleOdd(t *testing.T) {
	buf := strip.NewBuffer(7)
	c := Colors{Base: red}
	require.NoError(t, Render(RainbowMiddle, 3, settings(30, 1), c, &trail.State{}, buf))
	want := strip.Buffer{
		strip.Black, strip.Black,
		strip.Hue(30).Pixel(), strip.Hue(0).Pixel(), strip.Hue(30).Pixel(),
		strip.Black, strip.Black,
	}
	assert.Equal(t, want, buf)

	require.NoError(t, Render(RainbowMiddleCycle, 7, settings(30, 1), Colors{SeedHue: 90}, &trail.State{}, buf))
	assert.Equal(t, 7, buf.Lit())
	assert.Equal(t, strip.Hue(90).Pixel(), buf[3])
	assert.Equal(t, strip.Hue(180).Pixel(), buf[0])
	assert.Equal(t, strip.Hue(120).Pixel(), buf[2])
}

func TestSolidTrailScenario(t *testing.T) {
	buf := strip.NewBuffer(8)
	st := &trail.State{}
	c := Colors{Base: red}
	progress := []int{3, 3, 1, 1, 1, 1}
	wantPeaks := []int{3, 3, 2, 2, 1, 1}

	for i, p := range progress {
		require.NoError(t, Render(SolidTrail, p, settings(0, 2), c, st, buf))
		require.Equal(t, wantPeaks[i], st.Peak, "tick %d", i)
		for j, px := range buf {
			switch {
			case j == st.Peak:
				assert.Equal(t, strip.White, px, "tick %d pixel %d", i, j)
			case j < p:
				assert.Equal(t, red, px, "tick %d pixel %d", i, j)
			default:
				assert.Equal(t, strip.Black, px, "tick %d pixel %d", i, j)
			}
		}
	}
}

func TestTrailMarkerSurvivesZeroProgress(t *testing.T) {
	buf := strip.NewBuffer(8)
	st := &trail.State{Peak: 5, Step: 1}
	require.NoError(t, Render(SolidTrail, 0, settings(0, 200), Colors{Base: red}, st, buf))
	assert.Equal(t, 5, st.Peak)
	assert.Equal(t, 1, buf.Lit())
	assert.Equal(t, strip.White, buf[5])
}

func TestTrailDoubleMarker(t *testing.T) {
	buf := strip.NewBuffer(8)
	st := &trail.State{}
	require.NoError(t, Render(SolidTrailDouble, 4, settings(0, 1), Colors{Base: red}, st, buf))
	want := strip.Buffer{red, red, red, strip.White, strip.White, strip.Black, strip.Black, strip.Black}
	assert.Equal(t, want, buf)
}

func TestTrailMarkerHiddenAtEnds(t *testing.T) {
	buf := strip.NewBuffer(6)
	st := &trail.State{}
	require.NoError(t, Render(SolidTrail, 6, settings(0, 1), Colors{Base: red}, st, buf))
	assert.Equal(t, 6, st.Peak)
	for _, px := range buf {
		assert.Equal(t, red, px)
	}

	st = &trail.State{}
	require.NoError(t, Render(SolidTrailDouble, 0, settings(0, 1), Colors{Base: red}, st, buf))
	assert.Equal(t, 0, buf.Lit())
}

func TestRainbowTrail(t *testing.T) {
	buf := strip.NewBuffer(8)
	st := &trail.State{}
	require.NoError(t, Render(RainbowTrail, 3, settings(15, 1), Colors{Base: red}, st, buf))
	assert.Equal(t, strip.Hue(0).Pixel(), buf[0])
	assert.Equal(t, strip.Hue(30).Pixel(), buf[2])
	assert.Equal(t, strip.White, buf[3])
	assert.Equal(t, 4, buf.Lit())
}

func TestSolidTrailMiddle(t *testing.T) {
	buf := strip.NewBuffer(10)
	c := Colors{Base: red}
	W, B := strip.White, strip.Black

	require.NoError(t, Render(SolidTrailMiddle, 4, settings(0, 1), c, &trail.State{}, buf))
	assert.Equal(t, strip.Buffer{B, B, W, red, red, red, red, W, B, B}, buf)

	require.NoError(t, Render(SolidTrailMiddleDouble, 4, settings(0, 1), c, &trail.State{}, buf))
	assert.Equal(t, strip.Buffer{B, B, W, W, red, red, W, W, B, B}, buf)
}

func TestMiddleTrailMarkerAtZeroProgress(t *testing.T) {
	buf := strip.NewBuffer(10)
	st := &trail.State{Peak: 6, Step: 1}
	require.NoError(t, Render(RainbowTrailMiddleCycle, 0, settings(10, 100), Colors{SeedHue: 40}, st, buf))
	W, B := strip.White, strip.Black
	assert.Equal(t, strip.Buffer{B, W, B, B, B, B, B, B, W, B}, buf)
}

func TestMiddleVariantsAreSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, v := range Variants() {
		if !v.Middle() {
			continue
		}
		for _, n := range []int{5, 8, 13, 30} {
			st := &trail.State{}
			buf := strip.NewBuffer(n)
			for i := 0; i < 50; i++ {
				require.NoError(t, Render(v, rng.Intn(n+1), settings(12, 2), Colors{Base: red, SeedHue: 100}, st, buf))
				require.True(t, strip.Symmetric(buf), "%s n=%d tick %d", v, n, i)
			}
		}
	}
}

func TestUnknownVariantLeavesBufferCleared(t *testing.T) {
	buf := strip.NewBuffer(4)
	buf.Fill(strip.White)
	st := &trail.State{Peak: 2}
	err := Render(Variant(42), 3, settings(10, 1), Colors{Base: red}, st, buf)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
	assert.Equal(t, 0, buf.Lit())
	assert.Equal(t, 2, st.Peak)
}

func TestSwitchingVariantClearsStalePixels(t *testing.T) {
	buf := strip.NewBuffer(8)
	st := &trail.State{}
	require.NoError(t, Render(SolidTrail, 8, settings(0, 1), Colors{Base: red}, st, buf))
	require.Equal(t, 8, buf.Lit())

	require.NoError(t, Render(RainbowMiddle, 0, settings(0, 1), Colors{Base: red}, st, buf))
	assert.Equal(t, 0, buf.Lit())
	assert.Equal(t, 8, st.Peak, "trail state is not touched by non-trail variants")
}
