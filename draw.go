package ssd1306

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is always {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

func (d *Dev) pages() int {
	return d.rect.Dy() / 8
}

// Fill writes the byte pattern to every column of every page, e.g. 0x00 for
// all pixels off or 0xFF for all on.
func (d *Dev) Fill(pattern byte) error {
	if err := d.active(); err != nil {
		return err
	}
	line := bytes.Repeat([]byte{pattern}, d.rect.Dx())
	for page := 0; page < d.pages(); page++ {
		if err := d.setCursor(0, page); err != nil {
			return err
		}
		if err := d.sendData(line); err != nil {
			return err
		}
	}
	return nil
}

// SetPixel turns the pixel at (x, y) on or off.
//
// Nothing is sent when the pixel already has the requested value.
func (d *Dev) SetPixel(x, y int, on bool) error {
	if err := d.active(); err != nil {
		return err
	}
	if !(image.Point{X: x, Y: y}.In(d.rect)) {
		return fmt.Errorf("%w: pixel (%d,%d)", ErrOutOfBounds, x, y)
	}
	i := (y>>3)*d.rect.Dx() + x
	old := d.buffer.Pix[i]
	b := old &^ (1 << uint(y&7))
	if on {
		b |= 1 << uint(y&7)
	}
	if b == old {
		return nil
	}
	if err := d.setCursor(x, y>>3); err != nil {
		return err
	}
	return d.sendData([]byte{b})
}

// Pixel reports whether the pixel at (x, y) was last written as on.
func (d *Dev) Pixel(x, y int) bool {
	if d.buffer == nil {
		return false
	}
	return bool(d.buffer.BitAt(x, y))
}

// Shadow returns a copy of the local display RAM mirror, one byte per column
// per page with bit 0 at the top.
func (d *Dev) Shadow() []byte {
	if d.buffer == nil {
		return nil
	}
	return append([]byte(nil), d.buffer.Pix...)
}

// WriteString draws text at the character cell (col, row).
//
// The small font is 8x8: a 128 pixel wide panel has 16 cells per row and row
// is a page, 0-7. The large font is 16 pixels wide and spans three pages
// starting at row, so a 128 pixel panel has 8 cells per row.
//
// Text running past the right edge is cut. ErrNoRoom is returned when no
// character fits at all. Runes outside printable ASCII are drawn as '?'.
func (d *Dev) WriteString(col, row int, text string, large bool) error {
	if err := d.active(); err != nil {
		return err
	}
	s := printable(text)
	if large {
		return d.writeLarge(col, row, s)
	}
	return d.writeSmall(col, row, s)
}

func (d *Dev) writeSmall(col, row int, s []byte) error {
	if col < 0 || row < 0 || row >= d.pages() {
		return fmt.Errorf("%w: cell (%d,%d)", ErrOutOfBounds, col, row)
	}
	n := fit(len(s), col, d.rect.Dx()/8)
	if n <= 0 {
		return ErrNoRoom
	}
	// The column address auto-increments across characters.
	if err := d.setCursor(col*8, row); err != nil {
		return err
	}
	for _, c := range s[:n] {
		g := d.glyphs.Small(c)
		if err := d.sendData(g[:]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) writeLarge(col, row int, s []byte) error {
	if col < 0 || row < 0 || row > d.pages()-3 {
		return fmt.Errorf("%w: cell (%d,%d)", ErrOutOfBounds, col, row)
	}
	n := fit(len(s), col, d.rect.Dx()/16)
	if n <= 0 {
		return ErrNoRoom
	}
	x := col * 16
	for i, c := range s[:n] {
		g := d.glyphs.Large(c)
		// Only the top three of the four page strips are drawn.
		for strip := 0; strip < 3; strip++ {
			if err := d.setCursor(x+i*16, row+strip); err != nil {
				return err
			}
			if err := d.sendData(g[strip*16 : (strip+1)*16]); err != nil {
				return err
			}
		}
	}
	return nil
}

// fit clamps a string of n characters starting at cell col to a row of cells.
func fit(n, col, cells int) int {
	if col >= cells {
		return 0
	}
	if n > cells-col {
		n = cells - col
	}
	return n
}

// printable maps text to one byte per rune. Runes the small font has no glyph
// for become '?'.
func printable(text string) []byte {
	s := make([]byte, 0, len(text))
	for _, r := range text {
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		s = append(s, byte(r))
	}
	return s
}

// Write writes a full frame of raw pixels to the display.
//
// The format is the controller's: horizontal bands of 8 pixels high, one byte
// per column with bit 0 at the top. This is the content of
// image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.active(); err != nil {
		return 0, err
	}
	if len(pixels) != len(d.buffer.Pix) {
		return 0, fmt.Errorf("ssd1306: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.buffer.Pix), len(pixels))
	}
	if err := d.writeFrame(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw implements display.Drawer.
//
// src is composed over the current content and the whole frame is sent.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.active(); err != nil {
		return err
	}
	next := image1bit.NewVerticalLSB(d.rect)
	copy(next.Pix, d.buffer.Pix)
	draw.Src.Draw(next, r, src, sp)
	return d.writeFrame(next.Pix)
}

// writeFrame sends pixels page by page.
func (d *Dev) writeFrame(pixels []byte) error {
	w := d.rect.Dx()
	for page := 0; page < d.pages(); page++ {
		if err := d.setCursor(0, page); err != nil {
			return err
		}
		if err := d.sendData(pixels[page*w : (page+1)*w]); err != nil {
			return err
		}
	}
	return nil
}

var _ display.Drawer = &Dev{}
