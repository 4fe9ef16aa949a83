package board

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/flavioheleno/ssd1306"
	"github.com/flavioheleno/ssd1306/emu"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

func checkNotActive(t *testing.T, d *Display) {
	t.Helper()
	ops := map[string]func() error{
		"Fill":        func() error { return d.Fill(0) },
		"WriteString": func() error { return d.WriteString(0, 0, "x", false) },
		"SetPixel":    func() error { return d.SetPixel(0, 0, true) },
		"SetContrast": func() error { return d.SetContrast(1) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ssd1306.ErrNotActive) {
			t.Errorf("%s() = %v, want ErrNotActive", name, err)
		}
	}
}

func TestDisplayBeforeInit(t *testing.T) {
	h := emu.NewHost(128, 64)
	d := New(h)
	if d.State() != ssd1306.Uninitialized {
		t.Errorf("State() = %v, want uninitialized", d.State())
	}
	checkNotActive(t, d)
	if err := d.Shutdown(); err != nil {
		t.Errorf("Shutdown() before Init = %v", err)
	}
	if h.C.Stats.Transfers != 0 {
		t.Errorf("inactive display sent %d transfers", h.C.Stats.Transfers)
	}
}

func TestDisplayI2C(t *testing.T) {
	h := emu.NewHost(128, 64)
	d := New(h)
	if err := d.Init(DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if h.Inits != 1 {
		t.Errorf("host initialized %d times", h.Inits)
	}
	if d.State() != ssd1306.Active || !h.C.On {
		t.Fatalf("State() = %v, panel on = %v", d.State(), h.C.On)
	}
	if err := d.Fill(0); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteString(0, 0, "OLED 96 Library!", false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 48; i++ {
		if err := d.SetPixel(i, 16+i, true); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(h.C.RAM(), d.Shadow()) {
		t.Error("RAM and shadow differ")
	}

	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if h.C.On {
		t.Error("panel still on after Shutdown")
	}
	if !h.I2C.Closed {
		t.Error("bus not released after Shutdown")
	}
	if d.State() != ssd1306.Closed {
		t.Errorf("State() = %v, want closed", d.State())
	}
	checkNotActive(t, d)
	if err := d.Shutdown(); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
}

// tracedHost logs every transfer and the close on the I²C bus it opens.
type tracedHost struct {
	*emu.Host
	log [][]byte // nil marks Close
}

func (h *tracedHost) OpenI2C(name string) (i2c.BusCloser, error) {
	b, err := h.Host.OpenI2C(name)
	if err != nil {
		return nil, err
	}
	return &tracedBus{BusCloser: b, h: h}, nil
}

type tracedBus struct {
	i2c.BusCloser
	h *tracedHost
}

func (b *tracedBus) Tx(addr uint16, w, r []byte) error {
	b.h.log = append(b.h.log, append([]byte(nil), w...))
	return b.BusCloser.Tx(addr, w, r)
}

func (b *tracedBus) Close() error {
	b.h.log = append(b.h.log, nil)
	return b.BusCloser.Close()
}

func TestDisplayEndToEnd(t *testing.T) {
	h := &tracedHost{Host: emu.NewHost(128, 64)}
	d := New(h)
	if err := d.Init(DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if err := d.Fill(0x00); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteString(0, 0, "HI", false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.C.RAM(), d.Shadow()) {
		t.Error("RAM and shadow differ")
	}
	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}

	cmd := func(b ...byte) []byte { return append([]byte{ssd1306.ControlCommand}, b...) }
	data := func(b ...byte) []byte { return append([]byte{ssd1306.ControlData}, b...) }

	want := [][]byte{cmd(
		0xAE, 0xA8, 0x3F, 0xD3, 0x00, 0x40, 0xA1, 0xC8, 0xDA, 0x12, 0x81,
		0xFF, 0xA4, 0xA6, 0xD5, 0x80, 0x8D, 0x14, 0xAF, 0x20, 0x02,
	)}
	for page := byte(0); page < 8; page++ {
		want = append(want, cmd(0xB0|page), cmd(0x00), cmd(0x10), data(make([]byte, 128)...))
	}
	want = append(want,
		cmd(0xB0), cmd(0x00), cmd(0x10),
		data(0x7F, 0x7F, 0x08, 0x08, 0x7F, 0x7F, 0x00, 0x00), // H
		data(0x00, 0x41, 0x7F, 0x7F, 0x41, 0x00, 0x00, 0x00), // I
		cmd(0xAE),
		nil, // bus closed
	)

	if len(h.log) != len(want) {
		t.Fatalf("got %d bus events, want %d", len(h.log), len(want))
	}
	for i, w := range h.log {
		if (w == nil) != (want[i] == nil) || !bytes.Equal(w, want[i]) {
			t.Errorf("event %d = % X\nwant % X", i, w, want[i])
		}
	}
	if h.C.On {
		t.Error("panel still on after Shutdown")
	}
	if !h.I2C.Closed {
		t.Error("bus not released after Shutdown")
	}
	if d.State() != ssd1306.Closed {
		t.Errorf("State() = %v, want closed", d.State())
	}
}

func TestZeroDisplay(t *testing.T) {
	var d Display
	if err := d.Shutdown(); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := d.Init(DefaultConfig); err == nil {
		t.Error("Init() without a host should fail")
	}
}

func TestDisplaySPI(t *testing.T) {
	h := emu.NewHost(128, 64)
	d := New(h)
	cfg := DefaultConfig
	cfg.SPI = true
	cfg.DC = h.DC
	cfg.Reset = h.Reset
	cfg.Flip = true
	if err := d.Init(cfg); err != nil {
		t.Fatal(err)
	}
	if h.SPI == nil || h.SPI.Bits != 8 {
		t.Fatalf("SPI port not connected with 8 bit words")
	}
	if h.C.SegRemap || h.C.ComRemap {
		t.Error("flip not applied")
	}
	if err := d.WriteString(0, 2, "Hi", true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.C.RAM(), d.Shadow()) {
		t.Error("RAM and shadow differ")
	}
	if h.Pin(h.Reset).L != gpio.High {
		t.Error("reset line left asserted")
	}
	if h.Pin(h.DC).L != gpio.High {
		t.Error("DC line not high after data")
	}
	if err := d.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !h.SPI.Closed {
		t.Error("port not released after Shutdown")
	}
}

func TestDisplayInitFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *emu.Host, cfg *Config)
	}{
		{"host init", func(h *emu.Host, cfg *Config) { h.InitErr = errors.New("no gpio driver") }},
		{"spi without dc", func(h *emu.Host, cfg *Config) { cfg.SPI = true }},
		{"bad width", func(h *emu.Host, cfg *Config) { cfg.Width = 100 }},
		{"wrong address", func(h *emu.Host, cfg *Config) { cfg.Address = 0x3D }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := emu.NewHost(128, 64)
			cfg := DefaultConfig
			tt.setup(h, &cfg)
			d := New(h)
			if err := d.Init(cfg); err == nil {
				t.Fatal("Init() should fail")
			}
			if d.State() != ssd1306.Uninitialized {
				t.Errorf("State() = %v, want uninitialized", d.State())
			}
			if h.I2C != nil && !h.I2C.Closed {
				t.Error("bus left open after failed Init")
			}
			checkNotActive(t, d)
		})
	}
}

func TestDisplayDoubleInit(t *testing.T) {
	d := New(emu.NewHost(128, 64))
	if err := d.Init(DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if err := d.Init(DefaultConfig); err == nil {
		t.Error("second Init() should fail")
	}
}

func TestDisplayClose(t *testing.T) {
	h := emu.NewHost(128, 64)
	d := New(h)
	if err := d.Init(DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if err := d.Fill(0xFF); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if !h.C.On {
		t.Error("Close turned the panel off")
	}
	if !h.I2C.Closed {
		t.Error("bus not released after Close")
	}
	checkNotActive(t, d)

	// The panel keeps its content and can be picked up again.
	if err := d.Init(DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.C.RAM(), bytes.Repeat([]byte{0xFF}, 1024)) {
		t.Error("RAM lost across Close and Init")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oled.yaml")
	data := []byte("channel: \"1\"\nspi: true\ndc: GPIO25\nreset: GPIO24\nflip: true\nheight: 32\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Channel: "1",
		Address: 0x3C,
		Flip:    true,
		SPI:     true,
		DC:      "GPIO25",
		Reset:   "GPIO24",
		Width:   128,
		Height:  32,
	}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("width: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("malformed YAML should fail")
	}
}
