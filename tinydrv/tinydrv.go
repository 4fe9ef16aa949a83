// Package tinydrv runs the ssd1306 driver on TinyGo buses.
//
// I2C and SPI adapt tinygo.org/x/drivers buses to ssd1306.Transport, so the
// same Dev drives a panel from a microcontroller:
//
//	machine.I2C0.Configure(machine.I2CConfig{})
//	dev, err := ssd1306.New(tinydrv.I2C(machine.I2C0, 0x3C), nil)
//
// Device turns a Dev into a drivers.Displayer for the tinygo graphics
// packages.
package tinydrv

import (
	"image/color"

	"github.com/flavioheleno/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
)

// Pin is an output line such as machine.Pin.
type Pin interface {
	High()
	Low()
}

// I2C returns a Transport to the controller at addr on bus.
func I2C(bus drivers.I2C, addr uint16) ssd1306.Transport {
	return &i2cTransport{bus: bus, addr: addr}
}

type i2cTransport struct {
	bus  drivers.I2C
	addr uint16
	buf  []byte
}

func (t *i2cTransport) Command(b []byte) error {
	return t.tx(ssd1306.ControlCommand, b)
}

func (t *i2cTransport) Data(b []byte) error {
	return t.tx(ssd1306.ControlData, b)
}

func (t *i2cTransport) tx(control byte, b []byte) error {
	t.buf = append(t.buf[:0], control)
	t.buf = append(t.buf, b...)
	return t.bus.Tx(t.addr, t.buf, nil)
}

// SPI returns a Transport over bus with dc as the Data/Command line.
func SPI(bus drivers.SPI, dc Pin) ssd1306.Transport {
	return &spiTransport{bus: bus, dc: dc}
}

type spiTransport struct {
	bus drivers.SPI
	dc  Pin
}

func (t *spiTransport) Command(b []byte) error {
	t.dc.Low()
	return t.bus.Tx(b, nil)
}

func (t *spiTransport) Data(b []byte) error {
	t.dc.High()
	return t.bus.Tx(b, nil)
}

// Device is a drivers.Displayer backed by a Dev.
//
// SetPixel only changes a local frame; Display sends the whole frame.
type Device struct {
	dev   *ssd1306.Dev
	frame *image1bit.VerticalLSB
}

// NewDevice returns a Displayer drawing on dev. The local frame starts as a
// copy of the display content.
func NewDevice(dev *ssd1306.Dev) *Device {
	frame := image1bit.NewVerticalLSB(dev.Bounds())
	copy(frame.Pix, dev.Shadow())
	return &Device{dev: dev, frame: frame}
}

// Size returns the panel size in pixels.
func (d *Device) Size() (x, y int16) {
	r := d.frame.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

// SetPixel sets a pixel of the local frame. Colors are reduced to on or off
// by luminance. Points outside the panel are ignored.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	d.frame.Set(int(x), int(y), c)
}

// Display sends the local frame to the panel.
func (d *Device) Display() error {
	_, err := d.dev.Write(d.frame.Pix)
	return err
}

var _ drivers.Displayer = &Device{}
