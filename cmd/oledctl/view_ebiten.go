//go:build !headless

package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/flavioheleno/ssd1306/emu"
)

// panelView shows the emulated panel until the window is closed or Escape
// is pressed.
type panelView struct {
	c   *emu.Controller
	pix []byte
}

func (v *panelView) Update() error {
	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (v *panelView) Draw(screen *ebiten.Image) {
	img := v.c.Render()
	r := img.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := ((y-r.Min.Y)*r.Dx() + (x - r.Min.X)) * 4
			// Lit pixels in the usual OLED blue-white.
			var c [4]byte
			if img.BitAt(x, y) {
				c = [4]byte{0xC8, 0xE6, 0xFF, 0xFF}
			} else {
				c = [4]byte{0x08, 0x08, 0x10, 0xFF}
			}
			copy(v.pix[i:], c[:])
		}
	}
	screen.WritePixels(v.pix)
}

func (v *panelView) Layout(_, _ int) (int, int) {
	r := v.c.Bounds()
	return r.Dx(), r.Dy()
}

func showWindow(c *emu.Controller, scale int) error {
	r := c.Bounds()
	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowSize(r.Dx()*scale, r.Dy()*scale)
	ebiten.SetWindowTitle(c.String())
	ebiten.SetWindowClosingHandled(true)
	return ebiten.RunGame(&panelView{c: c, pix: make([]byte, r.Dx()*r.Dy()*4)})
}
