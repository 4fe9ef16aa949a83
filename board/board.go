// Package board opens a SSD1306 display on a host's I²C or SPI bus.
//
// A Display bundles the bus handle, the control lines and the driver session
// behind a single Init and Shutdown:
//
//	d := board.New(board.Periph{})
//	if err := d.Init(board.DefaultConfig); err != nil {
//		log.Fatal(err)
//	}
//	defer d.Shutdown()
//	d.Fill(0)
//	d.WriteString(0, 0, "Hello", false)
//
// Every drawing call fails with ssd1306.ErrNotActive before Init succeeds and
// after Shutdown.
package board

import (
	"errors"
	"fmt"
	"io"

	"github.com/flavioheleno/ssd1306"
	"periph.io/x/conn/v3/gpio"
)

// Display is a display session owned by the caller. Create it with New; the
// zero value has no host and only Init, Shutdown and Close are safe on it.
type Display struct {
	*ssd1306.Dev

	h   Host
	bus io.Closer
}

// New returns an uninitialized display on h.
func New(h Host) *Display {
	return &Display{Dev: &ssd1306.Dev{}, h: h}
}

// Init opens the bus described by cfg and initializes the panel.
//
// On failure the display stays inactive and anything opened is released.
func (d *Display) Init(cfg Config) error {
	if d.h == nil {
		return errors.New("board: display has no host, use New")
	}
	if d.Dev != nil && d.State() == ssd1306.Active {
		return errors.New("board: display already initialized")
	}
	if err := d.h.Init(); err != nil {
		return fmt.Errorf("board: unable to initialize host: %w", err)
	}
	opts := &ssd1306.Opts{
		W:          cfg.Width,
		H:          cfg.Height,
		Flip:       cfg.Flip,
		Invert:     cfg.Invert,
		Sequential: cfg.Sequential,
		Addr:       cfg.Address,
	}
	var (
		dev *ssd1306.Dev
		bus io.Closer
		err error
	)
	if cfg.SPI {
		dev, bus, err = d.openSPI(cfg, opts)
	} else {
		dev, bus, err = d.openI2C(cfg, opts)
	}
	if err != nil {
		return err
	}
	d.Dev = dev
	d.bus = bus
	return nil
}

func (d *Display) openI2C(cfg Config, opts *ssd1306.Opts) (*ssd1306.Dev, io.Closer, error) {
	b, err := d.h.OpenI2C(cfg.Channel)
	if err != nil {
		return nil, nil, fmt.Errorf("board: opening I²C bus %q: %w", cfg.Channel, err)
	}
	dev, err := ssd1306.NewI2C(b, opts)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return dev, b, nil
}

func (d *Display) openSPI(cfg Config, opts *ssd1306.Opts) (*ssd1306.Dev, io.Closer, error) {
	if cfg.DC == "" {
		return nil, nil, errors.New("board: SPI needs a DC pin")
	}
	dc, err := d.h.Output(cfg.DC, gpio.Low)
	if err != nil {
		return nil, nil, err
	}
	var rst gpio.PinOut
	if cfg.Reset != "" {
		if rst, err = d.h.Output(cfg.Reset, gpio.High); err != nil {
			return nil, nil, err
		}
	}
	p, err := d.h.OpenSPI(cfg.Channel)
	if err != nil {
		return nil, nil, fmt.Errorf("board: opening SPI port %q: %w", cfg.Channel, err)
	}
	dev, err := ssd1306.NewSPI(p, dc, rst, opts)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return dev, p, nil
}

// Shutdown turns the panel off and releases the bus. It does nothing when
// the display is not active.
func (d *Display) Shutdown() error {
	if d.Dev == nil || d.State() != ssd1306.Active {
		return nil
	}
	err := d.Halt()
	if cerr := d.release(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the bus and leaves the panel showing its last content. The
// display can be initialized again afterwards.
func (d *Display) Close() error {
	if d.bus == nil {
		return nil
	}
	d.Dev = &ssd1306.Dev{}
	return d.release()
}

func (d *Display) release() error {
	if d.bus == nil {
		return nil
	}
	err := d.bus.Close()
	d.bus = nil
	return err
}
