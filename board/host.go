package board

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Host is the hardware access a Display needs.
type Host interface {
	// Init prepares the host drivers. It may be called more than once.
	Init() error
	OpenI2C(name string) (i2c.BusCloser, error)
	OpenSPI(name string) (spi.PortCloser, error)
	// Output returns the named pin configured as an output at level l.
	Output(name string, l gpio.Level) (gpio.PinOut, error)
}

// Periph is the Host backed by the periph.io registries.
type Periph struct{}

// Init loads the periph.io host drivers.
func (Periph) Init() error {
	_, err := host.Init()
	return err
}

func (Periph) OpenI2C(name string) (i2c.BusCloser, error) {
	return i2creg.Open(name)
}

func (Periph) OpenSPI(name string) (spi.PortCloser, error) {
	return spireg.Open(name)
}

func (Periph) Output(name string, l gpio.Level) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("board: GPIO pin %s not found", name)
	}
	if err := p.Out(l); err != nil {
		return nil, fmt.Errorf("board: registering pin %s as an output: %w", name, err)
	}
	return p, nil
}
