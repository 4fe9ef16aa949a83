package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// preview prints img with one character cell per two pixel rows. Wide panels
// are sampled down to fit the terminal.
func preview(w io.Writer, img *image1bit.VerticalLSB) error {
	cols := 0
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			cols = width - 2
		}
	}
	return render(w, img, cols)
}

// render writes img framed by a border. cols limits the width in cells; 0
// means no limit.
func render(w io.Writer, img *image1bit.VerticalLSB, cols int) error {
	r := img.Bounds()
	step := 1
	if cols > 0 {
		for r.Dx()/step > cols {
			step++
		}
	}
	n := (r.Dx() + step - 1) / step
	bw := bufio.NewWriter(w)
	border := `+` + strings.Repeat(`-`, n) + "+\n"
	bw.WriteString(border)
	for y := r.Min.Y; y < r.Max.Y; y += 2 {
		bw.WriteByte('|')
		for x := r.Min.X; x < r.Max.X; x += step {
			top := bool(img.BitAt(x, y))
			bottom := y+1 < r.Max.Y && bool(img.BitAt(x, y+1))
			switch {
			case top && bottom:
				bw.WriteString(`█`)
			case top:
				bw.WriteString(`▀`)
			case bottom:
				bw.WriteString(`▄`)
			default:
				bw.WriteByte(' ')
			}
		}
		bw.WriteString("|\n")
	}
	bw.WriteString(border)
	return bw.Flush()
}
