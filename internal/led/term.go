package led

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/coreman2200/ledfill/internal/strip"
)

const termGlyph = '█'

// Term previews the strip on a terminal row using tcell. Pixels wrap onto
// following rows when the strip is wider than the screen.
type Term struct {
	mu     sync.Mutex
	screen tcell.Screen
	scaler *Scaler
	count  int
}

// NewTerm wraps a screen. Pass nil to open the controlling terminal.
func NewTerm(s tcell.Screen) *Term {
	return &Term{screen: s, scaler: NewScaler(RGB)}
}

func (t *Term) Init(pin, count int, order ColorOrder) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if count <= 0 {
		return fmt.Errorf("invalid LED count: %d", count)
	}
	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating screen: %w", err)
		}
		t.screen = s
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	t.screen.HideCursor()
	t.screen.Clear()
	t.count = count
	return nil
}

func (t *Term) SetBrightness(level uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scaler.Brightness = level
	return nil
}

func (t *Term) SetPowerLimit(volts float64, milliamps int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scaler.SetPowerLimit(volts, milliamps)
	return nil
}

func (t *Term) Transmit(buf strip.Buffer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screen == nil {
		return fmt.Errorf("terminal driver not initialized")
	}
	width, _ := t.screen.Size()
	if width <= 0 {
		width = len(buf)
	}
	for i, p := range t.scaler.Apply(buf) {
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B)))
		t.screen.SetContent(i%width, i/width, termGlyph, nil, style)
	}
	t.screen.Show()
	return nil
}

func (t *Term) Delay(d time.Duration) { time.Sleep(d) }

func (t *Term) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}
