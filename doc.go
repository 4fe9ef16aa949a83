// Package ssd1306 controls a SSD1306 OLED display via I²C or SPI.
//
// The SSD1306 is a monochrome OLED controller driving up to 128×64 pixels.
// This driver implements the display.Drawer interface from periph.io and adds
// the character and pixel operations of a text console.
//
// # Display Characteristics
//
// - 1 bit per pixel
// - 128×64 pixels (other multiples of 8 up to 128×64 are supported)
// - Page addressing: 8 pages of 8 pixel high strips, one byte per column
// - Adjustable contrast (0-255)
// - Display inversion and 180° rotation
//
// # Hardware Connection
//
// Over I²C, connect SDA and SCL; the controller usually answers at 0x3C.
//
// Over SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	D0/CLK      → SPI Clock (SCLK)
//	D1/MOSI     → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select
//	RES         → GPIO for hardware reset (optional)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/ssd1306"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//		b, err := i2creg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer b.Close()
//
//		dev, err := ssd1306.NewI2C(b, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.Fill(0x00)
//		dev.WriteString(0, 0, "Hello", false)
//		dev.WriteString(0, 2, "OLED", true)
//		dev.SetPixel(127, 63, true)
//	}
//
// The board package wraps bus and pin setup behind a single Init call.
//
// # Local Frame Copy
//
// The controller's display RAM cannot be read over every bus, so the driver
// keeps its own copy. Each data write lands in the copy at the current write
// address, and the address advances by the number of bytes written, just as
// the controller's column address does. SetPixel uses the copy to compute the
// new byte and skips the bus entirely when the pixel already has the
// requested value.
//
// # Text
//
// Two fonts are built in: 8×8 with 256 codes and a 16 pixel wide font with
// 128 codes whose glyphs cover three pages. See the glyph package.
//
// # Concurrency
//
// A Dev is owned by one goroutine. Calls block until the bus transfer ends.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package ssd1306
