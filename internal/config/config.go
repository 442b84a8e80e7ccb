package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledfill/internal/controller"
	"github.com/coreman2200/ledfill/internal/led"
	"github.com/coreman2200/ledfill/internal/pattern"
)

// ErrInvalid is returned, wrapped, for any rejected configuration.
var ErrInvalid = controller.ErrInvalidConfig

type Animation struct {
	Variant      string        `yaml:"variant"`
	RainbowStep  float64       `yaml:"rainbow_step"`
	TrailCadence int           `yaml:"trail_cadence"` // ticks per one-pixel decay
	TrailDelay   time.Duration `yaml:"trail_delay"`
}

type Power struct {
	Volts     float64 `yaml:"volts"`
	Milliamps int     `yaml:"milliamps"`
}

type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	FreqKHz int    `yaml:"freq_khz"` // e.g. 2500
}

type OPC struct {
	Addr    string `yaml:"addr"` // host:port of an fcserver
	Channel uint8  `yaml:"channel"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Driver     string        `yaml:"driver"` // "sim" | "spi" | "opc" | "term"
	Pin        int           `yaml:"pin"`
	Count      int           `yaml:"count"`
	ColorOrder string        `yaml:"color_order"`
	Brightness int           `yaml:"brightness"`
	FrameDelay time.Duration `yaml:"frame_delay"`

	Animation Animation `yaml:"animation"`
	Power     Power     `yaml:"power"`
	Color     Color     `yaml:"color"`
	SeedHue   float64   `yaml:"seed_hue"`

	SPI  SPI  `yaml:"spi,omitempty"`
	OPC  OPC  `yaml:"opc,omitempty"`
	HTTP HTTP `yaml:"http,omitempty"`
}

// Default matches controller.DefaultOptions on the simulator driver.
func Default() *Config {
	o := controller.DefaultOptions()
	return &Config{
		Driver:     "sim",
		Pin:        o.Pin,
		Count:      o.Count,
		ColorOrder: string(o.Order),
		Brightness: int(o.Brightness),
		Animation: Animation{
			Variant:      o.Animation.String(),
			RainbowStep:  o.Settings.RainbowStep,
			TrailCadence: int(o.Settings.TrailCadence),
		},
		Power: Power{Volts: o.Volts, Milliamps: o.Milliamps},
		Color: Color{R: 255},
		SPI:   SPI{FreqKHz: 2500},
		OPC:   OPC{Addr: "127.0.0.1:7890"},
		HTTP:  HTTP{Addr: ":8080"},
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	return Overlay(path, Default())
}

// Overlay reads path over base: keys present in the file win, everything
// else keeps base's value. base is modified and returned.
func Overlay(path string, base *Config) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the fields the controller cannot check itself and then
// the resulting controller options.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sim", "spi", "opc", "term":
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalid, c.Driver)
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("%w: brightness %d out of range [0,255]", ErrInvalid, c.Brightness)
	}
	if c.Animation.TrailCadence < 1 || c.Animation.TrailCadence > 255 {
		return fmt.Errorf("%w: trail cadence %d out of range [1,255]", ErrInvalid, c.Animation.TrailCadence)
	}
	o, err := c.Options()
	if err != nil {
		return err
	}
	return o.Validate()
}

// Options converts c into controller options. Call Validate first for
// range checks.
func (c *Config) Options() (controller.Options, error) {
	order, err := led.ParseColorOrder(c.ColorOrder)
	if err != nil {
		return controller.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	v, err := pattern.Lookup(c.Animation.Variant)
	if err != nil {
		return controller.Options{}, err
	}
	return controller.Options{
		Count:      c.Count,
		Pin:        c.Pin,
		Order:      order,
		Brightness: uint8(c.Brightness),
		FrameDelay: c.FrameDelay,
		Animation:  v,
		Settings: pattern.Settings{
			RainbowStep:  c.Animation.RainbowStep,
			TrailCadence: uint8(c.Animation.TrailCadence),
			TrailDelay:   c.Animation.TrailDelay,
		},
		Volts:     c.Power.Volts,
		Milliamps: c.Power.Milliamps,
	}, nil
}
