// Package glyph holds the bitmap fonts used by the ssd1306 text renderer.
//
// The fonts are kept in row-major order, one bit per pixel with the MSB as the
// leftmost pixel. The controller's page addressing wants the opposite: each
// byte is a vertical strip of 8 pixels with bit 0 at the top. The tables are
// rotated once into that layout the first time Oriented is called.
package glyph

import "sync"

const (
	// SmallCount is the number of glyphs in the 8x8 font.
	SmallCount = 256
	// LargeCount is the number of glyphs in the 16x32 font.
	LargeCount = 128

	smallSize = 8  // 8 rows of 1 byte
	largeSize = 64 // 32 rows of 2 bytes

	// largeSkip is the read offset applied when rotating a large glyph. The
	// large cells carry six blank rows above the glyph, skipping them puts the
	// visible 24 rows in the first three page strips.
	largeSkip = 12
)

// Set is a pair of fonts in controller page order.
//
// A small glyph is 8 column bytes. A large glyph is four 16-byte page strips,
// top to bottom, each holding 16 column bytes.
type Set struct {
	small []byte
	large []byte
}

// Small returns the rotated 8x8 glyph for c.
func (s *Set) Small(c byte) [smallSize]byte {
	var g [smallSize]byte
	copy(g[:], s.small[int(c)*smallSize:])
	return g
}

// Large returns the rotated 16x32 glyph for c. Codes past the end of the
// large font render as '?'.
func (s *Set) Large(c byte) [largeSize]byte {
	if int(c) >= LargeCount {
		c = '?'
	}
	var g [largeSize]byte
	copy(g[:], s.large[int(c)*largeSize:])
	return g
}

var (
	once     sync.Once
	oriented *Set
)

// Oriented returns the process-wide rotated font set. The rotation runs once;
// later calls return the same tables.
func Oriented() *Set {
	once.Do(func() {
		oriented = &Set{
			small: RotateSmall(smallSource()),
			large: RotateLarge(largeSource(), LargeCount),
		}
	})
	return oriented
}
