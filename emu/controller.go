// Package emu is a software SSD1306 controller.
//
// A Controller decodes the same command and data streams a real panel
// receives and keeps the resulting display RAM. It plugs in below the driver
// either directly as a ssd1306.Transport, or one level further down as an
// I²C bus or SPI port (see I2C, SPI and Host) so the bus framing is exercised
// too.
package emu

import (
	"fmt"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Addressing modes, as set by command 0x20.
const (
	Horizontal = 0
	Vertical   = 1
	Page       = 2
)

// argCount is the number of parameter bytes following each multi-byte
// command. Commands not listed take none.
var argCount = map[byte]int{
	0x20: 1, // memory addressing mode
	0x21: 2, // column address
	0x22: 2, // page address
	0x26: 6, // right horizontal scroll
	0x27: 6, // left horizontal scroll
	0x29: 5, // vertical and right scroll
	0x2A: 5, // vertical and left scroll
	0x81: 1, // contrast
	0x8D: 1, // charge pump
	0xA3: 2, // vertical scroll area
	0xA8: 1, // multiplex ratio
	0xD3: 1, // display offset
	0xD5: 1, // clock divide
	0xD9: 1, // pre-charge period
	0xDA: 1, // COM pins
	0xDB: 1, // VCOMH deselect level
}

// Controller is the emulated controller state.
//
// The zero value is not usable; use New.
type Controller struct {
	w, h  int
	ram   []byte
	page  int
	col   int
	cmd   []byte // command waiting for parameters
	Stats Stats

	Mode       int
	Contrast   byte
	On         bool
	Inverted   bool
	AllOn      bool
	SegRemap   bool // column W-1 is SEG0
	ComRemap   bool // scan from COM[N-1] to COM0
	Multiplex  int
	Offset     int
	StartLine  int
	ChargePump bool
	ComPins    byte

	colStart, colEnd   int
	pageStart, pageEnd int
}

// Stats counts the traffic a Controller received.
type Stats struct {
	Commands  int // command bytes, parameters included
	Data      int // display data bytes
	Transfers int
}

// New returns a controller for a w×h panel in its power-on state.
func New(w, h int) *Controller {
	c := &Controller{w: w, h: h, ram: make([]byte, w*h/8)}
	c.Reset()
	return c
}

// Reset puts the controller back in its power-on state. Display RAM is
// left alone, as on the real part.
func (c *Controller) Reset() {
	c.page, c.col = 0, 0
	c.cmd = nil
	c.Mode = Page
	c.Contrast = 0x7F
	c.On = false
	c.Inverted = false
	c.AllOn = false
	c.SegRemap = false
	c.ComRemap = false
	c.Multiplex = 63
	c.Offset = 0
	c.StartLine = 0
	c.ChargePump = false
	c.ComPins = 0x12
	c.colStart, c.colEnd = 0, c.w-1
	c.pageStart, c.pageEnd = 0, c.h/8-1
}

func (c *Controller) String() string {
	return fmt.Sprintf("emu.Controller{%dx%d}", c.w, c.h)
}

// Command feeds command bytes to the controller. A command's parameters may
// arrive in a later transfer.
func (c *Controller) Command(b []byte) error {
	c.Stats.Transfers++
	c.Stats.Commands += len(b)
	for _, v := range b {
		c.cmd = append(c.cmd, v)
		if len(c.cmd) <= argCount[c.cmd[0]] {
			continue
		}
		err := c.exec(c.cmd)
		c.cmd = c.cmd[:0]
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) exec(cmd []byte) error {
	op := cmd[0]
	switch {
	case op <= 0x0F:
		c.col = c.col&0xF0 | int(op)
	case op <= 0x1F:
		c.col = c.col&0x0F | int(op&0x0F)<<4
	case op == 0x20:
		if cmd[1] > Page {
			return fmt.Errorf("emu: invalid addressing mode %#02x", cmd[1])
		}
		c.Mode = int(cmd[1])
	case op == 0x21:
		c.colStart, c.colEnd = int(cmd[1]), int(cmd[2])
		c.col = c.colStart
	case op == 0x22:
		c.pageStart, c.pageEnd = int(cmd[1]&7), int(cmd[2]&7)
		c.page = c.pageStart
	case op >= 0x26 && op <= 0x2F, op == 0xA3:
		// Scrolling is accepted and ignored.
	case op >= 0x40 && op <= 0x7F:
		c.StartLine = int(op & 0x3F)
	case op == 0x81:
		c.Contrast = cmd[1]
	case op == 0x8D:
		c.ChargePump = cmd[1]&0x04 != 0
	case op == 0xA0, op == 0xA1:
		c.SegRemap = op == 0xA1
	case op == 0xA4, op == 0xA5:
		c.AllOn = op == 0xA5
	case op == 0xA6, op == 0xA7:
		c.Inverted = op == 0xA7
	case op == 0xA8:
		c.Multiplex = int(cmd[1] & 0x3F)
	case op == 0xAE, op == 0xAF:
		c.On = op == 0xAF
	case op >= 0xB0 && op <= 0xB7:
		c.page = int(op & 0x07)
	case op == 0xC0, op == 0xC8:
		c.ComRemap = op == 0xC8
	case op == 0xD3:
		c.Offset = int(cmd[1] & 0x3F)
	case op == 0xDA:
		c.ComPins = cmd[1]
	case op == 0xD5, op == 0xD9, op == 0xDB, op == 0xE3:
	default:
		return fmt.Errorf("emu: unknown command %#02x", op)
	}
	return nil
}

// Data writes display data at the current address, advancing it the way the
// selected addressing mode does.
func (c *Controller) Data(b []byte) error {
	c.Stats.Transfers++
	c.Stats.Data += len(b)
	for _, v := range b {
		if c.page < c.h/8 && c.col < c.w {
			c.ram[c.page*c.w+c.col] = v
		}
		c.advance()
	}
	return nil
}

func (c *Controller) advance() {
	switch c.Mode {
	case Page:
		c.col++
		if c.col >= c.w {
			c.col = 0
		}
	case Horizontal:
		c.col++
		if c.col > c.colEnd {
			c.col = c.colStart
			c.page++
			if c.page > c.pageEnd {
				c.page = c.pageStart
			}
		}
	case Vertical:
		c.page++
		if c.page > c.pageEnd {
			c.page = c.pageStart
			c.col++
			if c.col > c.colEnd {
				c.col = c.colStart
			}
		}
	}
}

// Address returns the current write address.
func (c *Controller) Address() (col, page int) {
	return c.col, c.page
}

// RAM returns a copy of the display RAM, one byte per column per page.
func (c *Controller) RAM() []byte {
	return append([]byte(nil), c.ram...)
}

// Bounds returns the panel rectangle.
func (c *Controller) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.w, c.h)
}

// Render returns the image the panel shows: RAM seen through the remap,
// inversion, entire-display-on and power state.
//
// The driver's standard setup (segment remap and reverse COM scan) shows RAM
// upright. Clearing either mirrors the picture along that axis.
func (c *Controller) Render() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(c.Bounds())
	if !c.On {
		return img
	}
	for y := 0; y < c.h; y++ {
		sy := y
		if !c.ComRemap {
			sy = c.h - 1 - y
		}
		for x := 0; x < c.w; x++ {
			sx := x
			if !c.SegRemap {
				sx = c.w - 1 - x
			}
			on := c.ram[(sy>>3)*c.w+sx]&(1<<uint(sy&7)) != 0
			if c.AllOn {
				on = true
			}
			if c.Inverted {
				on = !on
			}
			img.SetBit(x, y, image1bit.Bit(on))
		}
	}
	return img
}
