//go:build headless

package main

import (
	"errors"

	"github.com/flavioheleno/ssd1306/emu"
)

func showWindow(c *emu.Controller, scale int) error {
	return errors.New("window preview not available in headless builds")
}
