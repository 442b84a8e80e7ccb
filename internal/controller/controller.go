// Package controller drives one strip: it owns the frame buffer and trail
// state, composes a frame per Tick and hands it to the pixel driver.
//
// A Controller is not safe for concurrent use; callers that share one across
// goroutines must serialize access.
package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/led"
	"github.com/coreman2200/ledfill/internal/pattern"
	"github.com/coreman2200/ledfill/internal/strip"
	"github.com/coreman2200/ledfill/internal/trail"
)

// ErrInvalidConfig reports options that would make rendering meaningless.
var ErrInvalidConfig = errors.New("invalid configuration")

const MaxPin = 255

// Options are supplied once at construction.
type Options struct {
	Count      int
	Pin        int
	Order      led.ColorOrder
	Brightness uint8
	FrameDelay time.Duration
	Animation  pattern.Variant
	Settings   pattern.Settings

	Volts     float64
	Milliamps int
}

// DefaultOptions mirror a 60 pixel WS2812 strip on GPIO 18.
func DefaultOptions() Options {
	return Options{
		Count:      60,
		Pin:        18,
		Order:      led.GRB,
		Brightness: 128,
		Animation:  pattern.Rainbow,
		Settings: pattern.Settings{
			RainbowStep:  7,
			TrailCadence: 4,
		},
		Volts:     5,
		Milliamps: 500,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if o.Count <= 0 {
		return fmt.Errorf("%w: strip length must be positive, got %d", ErrInvalidConfig, o.Count)
	}
	if o.Pin < 0 || o.Pin > MaxPin {
		return fmt.Errorf("%w: pin %d out of range [0,%d]", ErrInvalidConfig, o.Pin, MaxPin)
	}
	if o.Settings.TrailCadence == 0 {
		return fmt.Errorf("%w: trail cadence must be at least 1", ErrInvalidConfig)
	}
	if o.FrameDelay < 0 || o.Settings.TrailDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}
	if o.Volts < 0 || o.Milliamps < 0 {
		return fmt.Errorf("%w: power limits must not be negative", ErrInvalidConfig)
	}
	if !o.Animation.Valid() {
		return fmt.Errorf("%w: %v", pattern.ErrUnknownVariant, o.Animation)
	}
	return nil
}

type Controller struct {
	drv        led.Driver
	count      int
	brightness uint8
	frameDelay time.Duration
	settings   pattern.Settings

	base    strip.Pixel
	seedHue float64
	variant pattern.Variant

	buf     strip.Buffer
	trail   trail.State
	frameID uint64
}

// New validates opts and initializes drv: strip setup, power limit and
// brightness, in that order.
func New(drv led.Driver, opts Options) (*Controller, error) {
	if drv == nil {
		return nil, errors.New("nil pixel driver")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := drv.Init(opts.Pin, opts.Count, opts.Order); err != nil {
		return nil, fmt.Errorf("driver init: %w", err)
	}
	if err := drv.SetPowerLimit(opts.Volts, opts.Milliamps); err != nil {
		return nil, fmt.Errorf("driver power limit: %w", err)
	}
	if err := drv.SetBrightness(opts.Brightness); err != nil {
		return nil, fmt.Errorf("driver brightness: %w", err)
	}
	return &Controller{
		drv:        drv,
		count:      opts.Count,
		brightness: opts.Brightness,
		frameDelay: opts.FrameDelay,
		settings:   opts.Settings,
		base:       strip.RGB(255, 0, 0),
		variant:    opts.Animation,
		buf:        strip.NewBuffer(opts.Count),
	}, nil
}

func (c *Controller) SetBaseColor(r, g, b uint8) { c.base = strip.RGB(r, g, b) }

func (c *Controller) BaseColor() strip.Pixel { return c.base }

// SetRainbowSeedHue sets the start hue (degrees) of the cycle variants.
func (c *Controller) SetRainbowSeedHue(hue float64) { c.seedHue = strip.WrapHue(hue) }

func (c *Controller) RainbowSeedHue() float64 { return c.seedHue }

// SelectAnimation switches variants. Unknown tags are rejected and the
// current variant is kept. The trail state carries over.
func (c *Controller) SelectAnimation(v pattern.Variant) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %v", pattern.ErrUnknownVariant, v)
	}
	c.variant = v
	return nil
}

func (c *Controller) Animation() pattern.Variant { return c.variant }

// SetBrightness stores level and re-applies it to the driver.
func (c *Controller) SetBrightness(level uint8) error {
	if err := c.drv.SetBrightness(level); err != nil {
		return fmt.Errorf("driver brightness: %w", err)
	}
	c.brightness = level
	return nil
}

func (c *Controller) Brightness() uint8 { return c.brightness }

func (c *Controller) Count() int { return c.count }

func (c *Controller) Settings() pattern.Settings { return c.settings }

// Trail returns the current trail state.
func (c *Controller) Trail() trail.State { return c.trail }

// FrameID counts frames handed to the driver.
func (c *Controller) FrameID() uint64 { return c.frameID }

// Snapshot copies the last composed frame.
func (c *Controller) Snapshot() strip.Buffer { return c.buf.Clone() }

// Tick renders one frame for progress and transmits it. Progress outside
// [0, Count] is clamped. Trail variants add the trail delay, then the frame
// delay follows when set.
func (c *Controller) Tick(progress int) error {
	if p := pattern.Clip(progress, c.count); p != progress {
		log.Debug().Int("progress", progress).Int("clamped", p).Msg("progress out of range")
		progress = p
	}

	colors := pattern.Colors{Base: c.base, SeedHue: c.seedHue}
	if err := pattern.Render(c.variant, progress, c.settings, colors, &c.trail, c.buf); err != nil {
		return err
	}
	if err := c.drv.Transmit(c.buf); err != nil {
		return fmt.Errorf("transmit: %w", err)
	}
	c.frameID++

	if c.variant.Trail() && c.settings.TrailDelay > 0 {
		c.drv.Delay(c.settings.TrailDelay)
	}
	if c.frameDelay > 0 {
		c.drv.Delay(c.frameDelay)
	}
	return nil
}

// Level converts a fraction of the strip in [0,1] to a progress value.
func (c *Controller) Level(f float64) int {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return c.count
	}
	return int(f*float64(c.count) + 0.5)
}

// Close blanks the strip and releases the driver.
func (c *Controller) Close() error {
	c.buf.Clear()
	if err := c.drv.Transmit(c.buf); err != nil {
		log.Debug().Err(err).Msg("blank on close")
	}
	return c.drv.Close()
}
