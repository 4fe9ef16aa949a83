package glyph

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const (
	largeTop  = 6  // blank rows above the glyph in a 16x32 cell
	largeRows = 24 // visible rows
)

// largeSource rasterizes Inconsolata 8x16 into row-major 16x32 cells, doubled
// horizontally and stretched to 24 rows. The slice carries largeSkip bytes of
// padding so the last glyph can be read at its offset.
func largeSource() []byte {
	face := inconsolata.Regular8x16
	src := make([]byte, LargeCount*largeSize+largeSkip)
	cell := image.NewGray(image.Rect(0, 0, 8, 16))
	for c := 0x20; c < 0x7F; c++ {
		draw.Draw(cell, cell.Bounds(), image.Black, image.Point{}, draw.Src)
		d := font.Drawer{
			Dst:  cell,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P(0, face.Ascent),
		}
		d.DrawString(string(rune(c)))

		g := src[c*largeSize:]
		for y := 0; y < largeRows; y++ {
			w := widen(cellRow(cell, y*16/largeRows))
			off := (largeTop + y) * 2
			g[off] = byte(w >> 8)
			g[off+1] = byte(w)
		}
	}
	return src
}

// cellRow packs row y of an 8 pixel wide cell into a byte, MSB leftmost.
func cellRow(img *image.Gray, y int) byte {
	var b byte
	for x := 0; x < 8; x++ {
		if img.GrayAt(x, y).Y >= 0x80 {
			b |= 0x80 >> uint(x)
		}
	}
	return b
}

// widen doubles every pixel of b horizontally.
func widen(b byte) uint16 {
	var w uint16
	for x := 0; x < 8; x++ {
		if b&(0x80>>uint(x)) != 0 {
			w |= 0xC000 >> uint(2*x)
		}
	}
	return w
}
