package glyph

// RotateSmall turns a row-major 8x8 font into page order. src holds one byte
// per row, 8 rows per glyph; any trailing partial glyph is ignored. The result
// is a new slice, src is left untouched.
func RotateSmall(src []byte) []byte {
	n := len(src) / smallSize
	dst := make([]byte, n*smallSize)
	for i := 0; i < n; i++ {
		rotate8(dst[i*smallSize:], src[i*smallSize:], 1)
	}
	return dst
}

// RotateLarge turns n row-major 16x32 glyphs into page order. Each source
// glyph is 32 rows of two bytes, left half first. Glyph i is read starting 12
// bytes into its cell, so src must hold n*64+12 bytes.
//
// Each output glyph is four 16-byte page strips. Within a strip the first 8
// bytes are the left half columns and the next 8 the right half.
func RotateLarge(src []byte, n int) []byte {
	dst := make([]byte, n*largeSize)
	for i := 0; i < n; i++ {
		for j := 0; j < 4; j++ {
			s := src[i*largeSize+largeSkip+j*16:]
			d := dst[i*largeSize+j*16:]
			rotate8(d, s, 2)
			rotate8(d[8:], s[1:], 2)
		}
	}
	return dst
}

// rotate8 rotates the 8x8 bit matrix whose rows are src[0], src[stride], ...
// into dst[0:8]. Bit y of every row becomes column 7-y, with row 0 in bit 0.
func rotate8(dst, src []byte, stride int) {
	mask := byte(1)
	for y := 0; y < 8; y++ {
		var c byte
		for x := 0; x < 8; x++ {
			c >>= 1
			if src[x*stride]&mask != 0 {
				c |= 0x80
			}
		}
		mask <<= 1
		dst[7-y] = c
	}
}
