package emu

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrClosed is returned by a bus or port used after Close.
var ErrClosed = errors.New("emu: closed")

// Control byte bits of an I²C transfer.
const (
	controlCo = 0x80 // another control byte follows the next byte
	controlDC = 0x40 // data, not command
)

// I2C is an I²C bus with the controller answering at Addr.
type I2C struct {
	C      *Controller
	Addr   uint16
	Closed bool
}

// NewI2C returns a bus with c at addr.
func NewI2C(c *Controller, addr uint16) *I2C {
	return &I2C{C: c, Addr: addr}
}

func (b *I2C) String() string {
	return fmt.Sprintf("emu-i2c(%#x)", b.Addr)
}

// Tx implements i2c.Bus. Reads are not supported.
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	if b.Closed {
		return ErrClosed
	}
	if addr != b.Addr {
		return fmt.Errorf("emu: no device at address %#x", addr)
	}
	if len(r) != 0 {
		return errors.New("emu: read not supported")
	}
	if len(w) == 0 {
		return errors.New("emu: empty transfer")
	}
	for len(w) > 0 {
		control := w[0]
		w = w[1:]
		n := len(w)
		if control&controlCo != 0 && n > 1 {
			n = 1
		}
		var err error
		if control&controlDC != 0 {
			err = b.C.Data(w[:n])
		} else {
			err = b.C.Command(w[:n])
		}
		if err != nil {
			return err
		}
		w = w[n:]
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *I2C) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (b *I2C) Close() error {
	if b.Closed {
		return ErrClosed
	}
	b.Closed = true
	return nil
}

// SPI is a 4-wire SPI port to the controller. The Data/Command level is read
// from DC at every transfer.
type SPI struct {
	C      *Controller
	DC     gpio.PinIn
	Closed bool

	// Connect parameters of the last connection.
	Freq physic.Frequency
	Mode spi.Mode
	Bits int
}

// NewSPI returns a port to c with dc as the Data/Command line.
func NewSPI(c *Controller, dc gpio.PinIn) *SPI {
	return &SPI{C: c, DC: dc}
}

func (p *SPI) String() string {
	return "emu-spi"
}

// Connect implements spi.Port.
func (p *SPI) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.Closed {
		return nil, ErrClosed
	}
	if bits != 8 {
		return nil, fmt.Errorf("emu: unsupported word size %d", bits)
	}
	p.Freq, p.Mode, p.Bits = f, mode, bits
	return &spiConn{p: p}, nil
}

// LimitSpeed implements spi.Port.
func (p *SPI) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Close implements spi.PortCloser.
func (p *SPI) Close() error {
	if p.Closed {
		return ErrClosed
	}
	p.Closed = true
	return nil
}

type spiConn struct {
	p *SPI
}

func (c *spiConn) String() string {
	return c.p.String()
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *spiConn) Tx(w, r []byte) error {
	if c.p.Closed {
		return ErrClosed
	}
	if len(r) != 0 {
		return errors.New("emu: read not supported")
	}
	if c.p.DC.Read() == gpio.High {
		return c.p.C.Data(w)
	}
	return c.p.C.Command(w)
}

func (c *spiConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ i2c.BusCloser  = &I2C{}
	_ spi.PortCloser = &SPI{}
	_ spi.Conn       = &spiConn{}
)
