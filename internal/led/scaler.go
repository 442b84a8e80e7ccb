package led

import (
	"github.com/coreman2200/ledfill/internal/strip"
)

const (
	// DefaultChannelMilliamps is the draw of one WS2812 channel at full scale.
	DefaultChannelMilliamps = 20.0
	// DefaultKnee is the fraction of the power budget where soft limiting begins.
	DefaultKnee = 0.9

	ledVolts = 5.0
)

// Scaler turns a composed buffer into wire bytes: global brightness, power
// limiting and channel order. Drivers share it so the
// core never deals with power or color order.
type Scaler struct {
	Brightness uint8
	Order      ColorOrder

	Volts            float64
	Milliamps        int
	ChannelMilliamps float64
	Knee             float64

	// LastScale is the power limiter factor applied to the last frame.
	LastScale float64
}

func NewScaler(order ColorOrder) *Scaler {
	if order == "" {
		order = RGB
	}
	return &Scaler{
		Brightness:       255,
		Order:            order,
		ChannelMilliamps: DefaultChannelMilliamps,
		Knee:             DefaultKnee,
		LastScale:        1,
	}
}

// SetPowerLimit sets the supply budget. A zero value disables limiting.
func (s *Scaler) SetPowerLimit(volts float64, milliamps int) {
	s.Volts = volts
	s.Milliamps = milliamps
}

// BudgetMilliamps is the budget expressed as current at the strip's 5V.
func (s *Scaler) BudgetMilliamps() float64 {
	if s.Volts <= 0 || s.Milliamps <= 0 {
		return 0
	}
	return s.Volts * float64(s.Milliamps) / ledVolts
}

// Estimate returns the modelled draw of buf in mA.
func (s *Scaler) Estimate(buf strip.Buffer) float64 {
	chanmA := s.ChannelMilliamps
	if chanmA <= 0 {
		chanmA = DefaultChannelMilliamps
	}
	var total float64
	for _, p := range buf {
		total += (float64(p.R) + float64(p.G) + float64(p.B)) / 255.0 * chanmA
	}
	return total
}

// Apply returns a scaled copy of buf. buf is not modified.
func (s *Scaler) Apply(buf strip.Buffer) strip.Buffer {
	out := make(strip.Buffer, len(buf))
	for i, p := range buf {
		out[i] = scale8(p, s.Brightness)
	}

	s.LastScale = s.limit(out)
	if s.LastScale < 1 {
		for i := range out {
			out[i] = scalef(out[i], s.LastScale)
		}
	}
	return out
}

// Encode applies the scaler and packs the result in wire channel order.
func (s *Scaler) Encode(buf strip.Buffer) []byte {
	scaled := s.Apply(buf)
	rgb := make([]byte, len(scaled)*3)
	for i, p := range scaled {
		s.Order.put(p, rgb[i*3:i*3+3])
	}
	return rgb
}

// limit returns the global factor that keeps buf under budget. Below the knee
// nothing is scaled; between the knee and the budget the factor eases toward
// budget/total; above the budget the frame is scaled hard.
func (s *Scaler) limit(buf strip.Buffer) float64 {
	budget := s.BudgetMilliamps()
	if budget <= 0 {
		return 1
	}
	total := s.Estimate(buf)
	if total <= 0 {
		return 1
	}
	knee := s.Knee
	if knee <= 0 || knee >= 1 {
		knee = DefaultKnee
	}

	ratio := total / budget
	if ratio <= knee {
		return 1
	}
	minS := budget / total
	if ratio <= 1.0 {
		t := (ratio - knee) / (1.0 - knee)
		return 1.0 - t*(1.0-minS)
	}
	return minS
}

func scale8(p strip.Pixel, level uint8) strip.Pixel {
	if level == 255 {
		return p
	}
	l := uint16(level) + 1
	return strip.Pixel{
		R: uint8(uint16(p.R) * l >> 8),
		G: uint8(uint16(p.G) * l >> 8),
		B: uint8(uint16(p.B) * l >> 8),
	}
}

func scalef(p strip.Pixel, f float64) strip.Pixel {
	return strip.Pixel{
		R: uint8(float64(p.R) * f),
		G: uint8(float64(p.G) * f),
		B: uint8(float64(p.B) * f),
	}
}
