package ssd1306

import (
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Transport carries bytes to the controller, framed either as commands or as
// display data. Calls block until the transfer completes.
type Transport interface {
	Command(b []byte) error
	Data(b []byte) error
}

// I2CTransport returns a Transport that marks every transfer with a leading
// control byte, ControlCommand or ControlData.
func I2CTransport(c conn.Conn) Transport {
	return &i2cTransport{c: c}
}

type i2cTransport struct {
	c   conn.Conn
	buf []byte
}

func (t *i2cTransport) Command(b []byte) error {
	return t.tx(ControlCommand, b)
}

func (t *i2cTransport) Data(b []byte) error {
	return t.tx(ControlData, b)
}

func (t *i2cTransport) tx(control byte, b []byte) error {
	t.buf = append(t.buf[:0], control)
	t.buf = append(t.buf, b...)
	return t.c.Tx(t.buf, nil)
}

func (t *i2cTransport) String() string {
	return t.c.String()
}

// SPITransport returns a Transport that drives the Data/Command line before
// every transfer: low for commands, high for display data.
func SPITransport(c conn.Conn, dc gpio.PinOut) Transport {
	return &spiTransport{c: c, dc: dc}
}

type spiTransport struct {
	c  conn.Conn
	dc gpio.PinOut
}

func (t *spiTransport) Command(b []byte) error {
	return t.tx(gpio.Low, b)
}

func (t *spiTransport) Data(b []byte) error {
	return t.tx(gpio.High, b)
}

func (t *spiTransport) tx(l gpio.Level, b []byte) error {
	if err := t.dc.Out(l); err != nil {
		return err
	}
	return t.c.Tx(b, nil)
}

func (t *spiTransport) String() string {
	return t.c.String() + ", " + t.dc.String()
}
