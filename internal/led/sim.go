package led

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/strip"
)

// Sim is an in-memory driver. It keeps the last frame and a tally of the
// requested delays, and never sleeps. Useful for headless runs and tests.
type Sim struct {
	mu sync.Mutex

	Pin    int
	Count  int
	Order  ColorOrder
	Scaler *Scaler

	Frames int
	Last   strip.Buffer
	Wire   []byte
	// LastDelay is the most recent Delay request; Delays counts them and
	// Slept sums them.
	LastDelay time.Duration
	Delays    int
	Slept     time.Duration

	// Fail makes Transmit return this error when set.
	Fail error

	closed bool
}

func NewSim() *Sim { return &Sim{Scaler: NewScaler(RGB)} }

func (s *Sim) Init(pin, count int, order ColorOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count <= 0 {
		return errors.New("invalid LED count")
	}
	s.Pin, s.Count, s.Order = pin, count, order
	s.Scaler.Order = order
	log.Debug().Str("driver", "sim").Int("count", count).Str("order", string(order)).Msg("init")
	return nil
}

func (s *Sim) SetBrightness(level uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scaler.Brightness = level
	return nil
}

func (s *Sim) SetPowerLimit(volts float64, milliamps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scaler.SetPowerLimit(volts, milliamps)
	return nil
}

func (s *Sim) Transmit(buf strip.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sim closed")
	}
	if s.Fail != nil {
		return s.Fail
	}
	s.Frames++
	s.Last = buf.Clone()
	s.Wire = s.Scaler.Encode(buf)
	return nil
}

func (s *Sim) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastDelay = d
	s.Delays++
	s.Slept += d
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frame returns a copy of the last transmitted buffer.
func (s *Sim) Frame() strip.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Last.Clone()
}
