package board

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config selects the bus and panel settings of a Display.
type Config struct {
	// Channel is the bus name passed to the host registry; empty selects
	// the first bus.
	Channel string `yaml:"channel"`
	// Address is the I²C address, ignored over SPI.
	Address uint16 `yaml:"address"`

	Flip   bool `yaml:"flip"`
	Invert bool `yaml:"invert"`

	// SPI selects 4-wire SPI instead of I²C. DC names the Data/Command
	// output and is required. Reset names the reset output and is optional.
	SPI   bool   `yaml:"spi"`
	DC    string `yaml:"dc"`
	Reset string `yaml:"reset"`

	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Sequential bool `yaml:"sequential"`
}

// DefaultConfig is a 128x64 panel on the first I²C bus at 0x3C.
var DefaultConfig = Config{
	Address: 0x3C,
	Width:   128,
	Height:  64,
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("board: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("board: parsing %s: %w", path, err)
	}
	return cfg, nil
}
