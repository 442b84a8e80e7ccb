package led

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledfill/internal/strip"
)

// DefaultSPIFreq drives WS2812 strips at their 800kHz bit rate with three
// SPI bits per NRZ bit, plus headroom.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// SPI drives a WS2812 strip wired to a SPI MOSI line through periph's nrzled
// encoder.
type SPI struct {
	mu     sync.Mutex
	port   spi.Port
	dev    *nrzled.Dev
	freq   physic.Frequency
	scaler *Scaler
	count  int
}

// NewSPI initializes the host and opens the named SPI port ("" picks the
// first one available).
func NewSPI(name string, freq physic.Frequency) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", name, err)
	}
	return NewSPIPort(p, freq), nil
}

// NewSPIPort wraps an already opened port.
func NewSPIPort(p spi.Port, freq physic.Frequency) *SPI {
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	return &SPI{port: p, freq: freq, scaler: NewScaler(RGB)}
}

// Init configures the NRZ encoder. nrzled emits the WS2812 GRB wire order
// itself, so the frame is always handed over as RGB.
func (s *SPI) Init(pin, count int, order ColorOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count <= 0 {
		return fmt.Errorf("invalid LED count: %d", count)
	}
	if order != "" && order != GRB {
		log.Warn().Str("driver", "spi").Str("order", string(order)).Msg("nrzled always sends GRB; ignoring color order")
	}
	d, err := nrzled.NewSPI(s.port, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      s.freq,
	})
	if err != nil {
		return fmt.Errorf("nrzled: %w", err)
	}
	s.dev = d
	s.count = count
	log.Info().Str("driver", "spi").Str("dev", d.String()).Int("count", count).Int("pin", pin).Msg("init")
	return nil
}

func (s *SPI) SetBrightness(level uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scaler.Brightness = level
	return nil
}

func (s *SPI) SetPowerLimit(volts float64, milliamps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scaler.SetPowerLimit(volts, milliamps)
	return nil
}

func (s *SPI) Transmit(buf strip.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return fmt.Errorf("spi driver not initialized")
	}
	if len(buf) != s.count {
		return fmt.Errorf("frame length %d does not match count %d", len(buf), s.count)
	}
	if _, err := s.dev.Write(s.scaler.Encode(buf)); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPI) Delay(d time.Duration) { time.Sleep(d) }

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.dev != nil {
		err = s.dev.Halt()
		s.dev = nil
	}
	if c, ok := s.port.(spi.PortCloser); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
