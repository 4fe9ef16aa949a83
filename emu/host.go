package emu

import (
	"errors"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// Host hands out buses and pins wired to one Controller, the way a board's
// registries hand out real ones.
//
// The controller answers on every I²C bus name at Addr and on every SPI port
// name. The output named DC is its Data/Command line and the output named
// Reset its reset line.
type Host struct {
	C     *Controller
	Addr  uint16
	DC    string
	Reset string

	// Inits counts Init calls. InitErr, when set, is returned by Init.
	Inits   int
	InitErr error

	// Last opened bus and port.
	I2C *I2C
	SPI *SPI

	pins map[string]*gpiotest.Pin
}

// NewHost returns a host with a fresh w×h controller at I²C address 0x3C.
func NewHost(w, h int) *Host {
	return &Host{
		C:     New(w, h),
		Addr:  0x3C,
		DC:    "DC",
		Reset: "RST",
		pins:  map[string]*gpiotest.Pin{},
	}
}

// Init counts the call and returns InitErr.
func (h *Host) Init() error {
	h.Inits++
	return h.InitErr
}

// OpenI2C returns a new bus to the controller.
func (h *Host) OpenI2C(name string) (i2c.BusCloser, error) {
	h.I2C = NewI2C(h.C, h.Addr)
	return h.I2C, nil
}

// OpenSPI returns a new port to the controller.
func (h *Host) OpenSPI(name string) (spi.PortCloser, error) {
	h.SPI = NewSPI(h.C, h.pin(h.DC))
	return h.SPI, nil
}

// Output returns the named pin set to l.
func (h *Host) Output(name string, l gpio.Level) (gpio.PinOut, error) {
	if name == "" {
		return nil, errors.New("emu: pin name required")
	}
	var p gpio.PinOut = h.pin(name)
	if name == h.Reset {
		p = &resetPin{Pin: h.pin(name), c: h.C}
	}
	if err := p.Out(l); err != nil {
		return nil, err
	}
	return p, nil
}

// Pin returns the named pin, or nil when it was never used.
func (h *Host) Pin(name string) *gpiotest.Pin {
	return h.pins[name]
}

func (h *Host) pin(name string) *gpiotest.Pin {
	p, ok := h.pins[name]
	if !ok {
		p = &gpiotest.Pin{N: name}
		h.pins[name] = p
	}
	return p
}

// resetPin resets the controller on a falling edge.
type resetPin struct {
	*gpiotest.Pin
	c *Controller
}

func (p *resetPin) Out(l gpio.Level) error {
	if l == gpio.Low && p.Pin.Read() == gpio.High {
		p.c.Reset()
	}
	return p.Pin.Out(l)
}
