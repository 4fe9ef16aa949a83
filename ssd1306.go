// Package ssd1306 controls a SSD1306 OLED display via I²C or SPI.
//
// The SSD1306 is a 1-bit monochrome OLED controller driving up to 128x64
// pixels. The driver runs the controller in page addressing mode and keeps a
// local copy of the display RAM so single pixels can be changed without
// reading back from the controller.
//
// See the examples for how to use this package.
package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/flavioheleno/ssd1306/glyph"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	_CHARGEPUMP          = 0x8D
	_COMSCANDEC          = 0xC8
	_COMSCANINC          = 0xC0
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SEGREMAP            = 0xA0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
)

// Control bytes leading every I²C transfer.
const (
	ControlCommand = 0x00 // the rest of the transfer is command bytes
	ControlData    = 0x40 // the rest of the transfer is display data
)

var (
	// ErrNotActive is returned by every operation on a display that was
	// never initialized or has been halted.
	ErrNotActive = errors.New("ssd1306: display not active")
	// ErrOutOfBounds is returned when a coordinate lies outside the panel.
	ErrOutOfBounds = errors.New("ssd1306: coordinates out of range")
	// ErrNoRoom is returned when not a single character of a string fits.
	ErrNoRoom = errors.New("ssd1306: no room for text")
)

// State is the lifecycle state of a Dev.
type State int

// Lifecycle states. The zero Dev is Uninitialized.
const (
	Uninitialized State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Opts is the configuration for the SSD1306 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, multiple of 8, ≤128)
	H int // Height (default: 64, multiple of 8, 16 to 64)

	Flip   bool // 180° rotation
	Invert bool // Lit pixels for 0 bits

	// Sequential COM pin configuration. Try toggling this if every other row
	// is missing, typically on 32 pixel high panels.
	Sequential bool

	// The I²C address of the display (default: 0x3C)
	Addr uint16
}

// DefaultOpts is the configuration used when nil Opts are passed.
var DefaultOpts = Opts{
	W:    128,
	H:    64,
	Addr: 0x3C,
}

// resolve fills in defaults and validates the options. The caller's Opts are
// never modified.
func resolve(opts *Opts) (Opts, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.W == 0 {
		o.W = DefaultOpts.W
	}
	if o.H == 0 {
		o.H = DefaultOpts.H
	}
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.W < 8 || o.W > 128 || o.W%8 != 0 {
		return o, fmt.Errorf("ssd1306: invalid width %d", o.W)
	}
	if o.H < 16 || o.H > 64 || o.H%8 != 0 {
		return o, fmt.Errorf("ssd1306: invalid height %d", o.H)
	}
	return o, nil
}

// Dev is an open session with the display controller.
//
// Dev is not safe for concurrent use.
type Dev struct {
	t Transport

	// Display geometry
	rect image.Rectangle

	// buffer mirrors the controller's display RAM: one byte per column per
	// page, bit 0 at the top. It is only ever written, never read back from
	// the controller.
	buffer *image1bit.VerticalLSB
	// cursor is the buffer offset the next data byte lands at.
	cursor int

	glyphs *glyph.Set
	state  State
}

// NewI2C returns a Dev that talks to the controller over I²C.
//
// The bus must stay open for the lifetime of the Dev.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return New(I2CTransport(&i2c.Dev{Bus: b, Addr: o.Addr}), &o)
}

// NewSPI returns a Dev that talks to the controller over 4-wire SPI.
//
// dc is the Data/Command line and is required. rst is optional: when given,
// the controller is reset (RST low for 10ms) before the port is connected.
// The port runs at 5MHz, Mode0, 8-bit words.
func NewSPI(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil {
		return nil, errors.New("ssd1306: dc pin is required")
	}
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if rst != nil {
		if err := reset(rst); err != nil {
			return nil, err
		}
	}
	c, err := p.Connect(5*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: connect: %w", err)
	}
	return New(SPITransport(c, dc), &o)
}

// reset pulses the controller's RST line.
func reset(rst gpio.PinOut) error {
	if err := rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("ssd1306: failed to pull RST low: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := rst.Out(gpio.High); err != nil {
		return fmt.Errorf("ssd1306: failed to pull RST high: %w", err)
	}
	return nil
}

// New initializes the controller behind t and returns an active Dev.
//
// The controller is put in page addressing mode. The display RAM is not
// cleared; call Fill(0) for a known starting state.
func New(t Transport, opts *Opts) (*Dev, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, o.W, o.H)
	d := &Dev{
		t:      t,
		rect:   rect,
		buffer: image1bit.NewVerticalLSB(rect),
		state:  Active,
	}
	if err := d.sendCommand(initCmd(&o)); err != nil {
		return nil, fmt.Errorf("ssd1306: init: %w", err)
	}
	d.glyphs = glyph.Oriented()
	if o.Invert {
		if err := d.sendCommand([]byte{_INVERTDISPLAY}); err != nil {
			return nil, err
		}
	}
	if o.Flip {
		if err := d.sendCommand([]byte{_SEGREMAP}); err != nil {
			return nil, err
		}
		if err := d.sendCommand([]byte{_COMSCANINC}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// initCmd returns the controller initialization sequence.
func initCmd(o *Opts) []byte {
	comPins := byte(0x12)
	if o.Sequential {
		comPins = 0x02
	}
	return []byte{
		_DISPLAYOFF,
		_SETMULTIPLEX, byte(o.H - 1), // Multiplex ratio (number of lines to display)
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE,        // Start line 0
		_SETSEGMENTREMAP,     // Column 127 is SEG0
		_COMSCANDEC,          // Scan from COM[N-1] to COM0
		_SETCOMPINS, comPins, // COM pins hardware configuration
		_SETCONTRAST, 0xFF,
		_DISPLAYALLON_RESUME, // Output follows RAM content
		_NORMALDISPLAY,
		_SETDISPLAYCLOCKDIV, 0x80, // Power on reset value
		_CHARGEPUMP, 0x14, // Enable charge pump
		_DISPLAYON,
		_MEMORYMODE, 0x02, // Page addressing mode
	}
}

func (d *Dev) active() error {
	if d.state != Active {
		return ErrNotActive
	}
	return nil
}

// sendCommand sends a slice of command bytes.
func (d *Dev) sendCommand(cmds []byte) error {
	return d.t.Command(cmds)
}

// sendData sends display data and mirrors it into the buffer at the cursor.
// The cursor advances by len(data), as the controller's column address does.
func (d *Dev) sendData(data []byte) error {
	if err := d.t.Data(data); err != nil {
		return err
	}
	if d.cursor < len(d.buffer.Pix) {
		copy(d.buffer.Pix[d.cursor:], data)
	}
	d.cursor += len(data)
	return nil
}

// setCursor moves the controller's write address to column col of page.
func (d *Dev) setCursor(col, page int) error {
	cmds := [3]byte{
		_PAGESTARTADDRESS | byte(page),
		_SETLOWCOLUMN | byte(col&0x0F),
		_SETHIGHCOLUMN | byte((col>>4)&0x0F),
	}
	// One command per transfer.
	for i := range cmds {
		if err := d.sendCommand(cmds[i : i+1]); err != nil {
			return err
		}
	}
	d.cursor = page*d.rect.Dx() + col
	return nil
}

// State returns the lifecycle state of the session.
func (d *Dev) State() State {
	return d.state
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(level byte) error {
	if err := d.active(); err != nil {
		return err
	}
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// Invert inverts the display colors (black on white vs white on black).
func (d *Dev) Invert(invert bool) error {
	if err := d.active(); err != nil {
		return err
	}
	mode := byte(_NORMALDISPLAY)
	if invert {
		mode = _INVERTDISPLAY
	}
	return d.sendCommand([]byte{mode})
}

// Halt turns the display off and ends the session.
//
// Every later operation fails with ErrNotActive; a new Dev is needed to use
// the display again. Halt on a session that is not active does nothing.
func (d *Dev) Halt() error {
	if d.state != Active {
		return nil
	}
	d.state = Closed
	return d.sendCommand([]byte{_DISPLAYOFF})
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
