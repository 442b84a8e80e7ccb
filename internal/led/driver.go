package led

import (
	"fmt"
	"strings"
	"time"

	"github.com/coreman2200/ledfill/internal/strip"
)

// Driver abstracts the pixel output sink. The controller calls Init once,
// then Transmit once per tick with the composed buffer. Implementations must
// copy the buffer if they keep it past Transmit.
type Driver interface {
	Init(pin, count int, order ColorOrder) error
	SetBrightness(level uint8) error
	SetPowerLimit(volts float64, milliamps int) error
	Transmit(buf strip.Buffer) error
	// Delay blocks for d. It is the only blocking call in a tick.
	Delay(d time.Duration)
	Close() error
}

// ColorOrder is the channel order the strip expects on the wire, e.g. "GRB".
type ColorOrder string

const (
	RGB ColorOrder = "RGB"
	GRB ColorOrder = "GRB"
	BRG ColorOrder = "BRG"
)

// ParseColorOrder validates a three letter permutation of R, G and B.
func ParseColorOrder(s string) (ColorOrder, error) {
	o := ColorOrder(strings.ToUpper(strings.TrimSpace(s)))
	if len(o) != 3 {
		return "", fmt.Errorf("invalid color order %q", s)
	}
	var seen [3]bool
	for i := 0; i < 3; i++ {
		switch o[i] {
		case 'R':
			seen[0] = true
		case 'G':
			seen[1] = true
		case 'B':
			seen[2] = true
		default:
			return "", fmt.Errorf("invalid color order %q", s)
		}
	}
	if !seen[0] || !seen[1] || !seen[2] {
		return "", fmt.Errorf("invalid color order %q", s)
	}
	return o, nil
}

// put writes p into dst[0:3] following the order.
func (o ColorOrder) put(p strip.Pixel, dst []byte) {
	if len(o) != 3 {
		o = RGB
	}
	for i := 0; i < 3; i++ {
		switch o[i] {
		case 'R':
			dst[i] = p.R
		case 'G':
			dst[i] = p.G
		case 'B':
			dst[i] = p.B
		}
	}
}
