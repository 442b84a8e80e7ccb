package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledfill/internal/led"
	"github.com/coreman2200/ledfill/internal/pattern"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	o, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, 60, o.Count)
	assert.Equal(t, led.GRB, o.Order)
	assert.Equal(t, pattern.Rainbow, o.Animation)
	assert.Equal(t, uint8(4), o.Settings.TrailCadence)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
count: 144
color_order: rgb
frame_delay: 20ms
animation:
  variant: solid_trail_middle
  trail_cadence: 2
  trail_delay: 5ms
color: {r: 0, g: 0, b: 255}
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sim", c.Driver, "unset keys keep defaults")
	assert.Equal(t, 144, c.Count)
	assert.Equal(t, Color{B: 255}, c.Color)

	o, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, led.RGB, o.Order)
	assert.Equal(t, pattern.SolidTrailMiddle, o.Animation)
	assert.Equal(t, 20*time.Millisecond, o.FrameDelay)
	assert.Equal(t, 5*time.Millisecond, o.Settings.TrailDelay)
	assert.Equal(t, uint8(2), o.Settings.TrailCadence)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	c := Default()
	c.Driver = "opc"
	c.OPC.Channel = 2
	c.Animation.Variant = pattern.RainbowTrailMiddleDoubleCycle.String()
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"driver":        func(c *Config) { c.Driver = "dmx" },
		"brightness":    func(c *Config) { c.Brightness = 300 },
		"zero cadence":  func(c *Config) { c.Animation.TrailCadence = 0 },
		"wide cadence":  func(c *Config) { c.Animation.TrailCadence = 256 },
		"color order":   func(c *Config) { c.ColorOrder = "RGBW" },
		"count":         func(c *Config) { c.Count = 0 },
		"pin":           func(c *Config) { c.Pin = 999 },
		"negative amps": func(c *Config) { c.Power.Milliamps = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.True(t, errors.Is(c.Validate(), ErrInvalid))
		})
	}

	c := Default()
	c.Animation.Variant = "sparkle"
	assert.True(t, errors.Is(c.Validate(), pattern.ErrUnknownVariant))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 0\n"), 0644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestOverlayKeepsBaseForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brightness: 200\n"), 0644))

	base := Default()
	base.Driver = "term"
	base.Count = 30
	c, err := Overlay(path, base)
	require.NoError(t, err)
	assert.Equal(t, "term", c.Driver)
	assert.Equal(t, 30, c.Count)
	assert.Equal(t, 200, c.Brightness)
}
