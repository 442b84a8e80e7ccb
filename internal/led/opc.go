package led

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledfill/internal/strip"
)

const opcSetPixels = 0x00

// OPC streams frames to an Open Pixel Control server such as a fadecandy
// fcserver or the gl_server simulator.
type OPC struct {
	mu      sync.Mutex
	addr    string
	channel uint8
	timeout time.Duration
	conn    net.Conn
	scaler  *Scaler
	count   int
}

func NewOPC(addr string, channel uint8) *OPC {
	return &OPC{addr: addr, channel: channel, timeout: 2 * time.Second, scaler: NewScaler(RGB)}
}

// Init connects to the server. OPC carries RGB regardless of order.
func (o *OPC) Init(pin, count int, order ColorOrder) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if count <= 0 {
		return fmt.Errorf("invalid LED count: %d", count)
	}
	if count*3 > 0xFFFF {
		return fmt.Errorf("LED count %d exceeds one OPC message", count)
	}
	if order != "" && order != RGB {
		log.Warn().Str("driver", "opc").Str("order", string(order)).Msg("OPC pixel data is RGB; the server reorders per strip")
	}
	o.count = count
	return o.dial()
}

func (o *OPC) dial() error {
	c, err := net.DialTimeout("tcp", o.addr, o.timeout)
	if err != nil {
		return fmt.Errorf("opc connect %s: %w", o.addr, err)
	}
	o.conn = c
	log.Info().Str("driver", "opc").Str("addr", o.addr).Uint8("channel", o.channel).Msg("connected")
	return nil
}

func (o *OPC) SetBrightness(level uint8) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scaler.Brightness = level
	return nil
}

func (o *OPC) SetPowerLimit(volts float64, milliamps int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scaler.SetPowerLimit(volts, milliamps)
	return nil
}

// Transmit sends one set-pixel-colors message. A dropped connection is
// redialed once per frame.
func (o *OPC) Transmit(buf strip.Buffer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		if err := o.dial(); err != nil {
			return err
		}
	}
	data := o.scaler.Encode(buf)
	msg := make([]byte, 4+len(data))
	msg[0] = o.channel
	msg[1] = opcSetPixels
	binary.BigEndian.PutUint16(msg[2:4], uint16(len(data)))
	copy(msg[4:], data)

	_ = o.conn.SetWriteDeadline(time.Now().Add(o.timeout))
	if _, err := o.conn.Write(msg); err != nil {
		o.conn.Close()
		o.conn = nil
		return fmt.Errorf("opc write: %w", err)
	}
	return nil
}

func (o *OPC) Delay(d time.Duration) { time.Sleep(d) }

func (o *OPC) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn == nil {
		return nil
	}
	err := o.conn.Close()
	o.conn = nil
	return err
}
