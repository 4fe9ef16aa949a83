package ssd1306

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var wantInit = []byte{
	0xAE, 0xA8, 0x3F, 0xD3, 0x00, 0x40, 0xA1, 0xC8, 0xDA, 0x12, 0x81,
	0xFF, 0xA4, 0xA6, 0xD5, 0x80, 0x8D, 0x14, 0xAF, 0x20, 0x02,
}

type op struct {
	cmd bool
	b   []byte
}

// recorder is a Transport that keeps every transfer.
type recorder struct {
	ops []op
	err error
}

func (r *recorder) Command(b []byte) error { return r.add(true, b) }
func (r *recorder) Data(b []byte) error    { return r.add(false, b) }

func (r *recorder) add(cmd bool, b []byte) error {
	if r.err != nil {
		return r.err
	}
	r.ops = append(r.ops, op{cmd: cmd, b: append([]byte(nil), b...)})
	return nil
}

func (r *recorder) count(cmd bool) int {
	n := 0
	for _, o := range r.ops {
		if o.cmd == cmd {
			n++
		}
	}
	return n
}

// newTestDev returns an active Dev with the init traffic discarded.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *recorder) {
	t.Helper()
	r := &recorder{}
	d, err := New(r, opts)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	r.ops = nil
	return d, r
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 128x64", &Opts{W: 128, H: 64}, false},
		{"valid 128x32", &Opts{W: 128, H: 32}, false},
		{"valid 64x48", &Opts{W: 64, H: 48}, false},
		{"zero fields take defaults", &Opts{}, false},
		{"width not multiple of 8", &Opts{W: 100, H: 64}, true},
		{"width > 128", &Opts{W: 136, H: 64}, true},
		{"negative width", &Opts{W: -8, H: 64}, true},
		{"height too small", &Opts{W: 128, H: 8}, true},
		{"height > 64", &Opts{W: 128, H: 72}, true},
		{"height not multiple of 8", &Opts{W: 128, H: 60}, true},
		{"flip (valid)", &Opts{W: 128, H: 64, Flip: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolve(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			_, err = New(&recorder{}, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveDoesNotModifyOpts(t *testing.T) {
	opts := &Opts{}
	o, err := resolve(opts)
	if err != nil {
		t.Fatal(err)
	}
	if *opts != (Opts{}) {
		t.Errorf("resolve modified its input: %+v", *opts)
	}
	if o.W != 128 || o.H != 64 || o.Addr != 0x3C {
		t.Errorf("resolve() = %+v, want defaults", o)
	}
}

func TestNewSendsInitSequence(t *testing.T) {
	r := &recorder{}
	d, err := New(r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.ops) != 1 || !r.ops[0].cmd {
		t.Fatalf("ops = %+v, want a single command transfer", r.ops)
	}
	if !bytes.Equal(r.ops[0].b, wantInit) {
		t.Errorf("init = % X\nwant   % X", r.ops[0].b, wantInit)
	}
	if d.State() != Active {
		t.Errorf("State() = %s, want active", d.State())
	}
}

func TestNewInitGeometry(t *testing.T) {
	r := &recorder{}
	if _, err := New(r, &Opts{W: 128, H: 32, Sequential: true}); err != nil {
		t.Fatal(err)
	}
	init := r.ops[0].b
	if init[2] != 31 {
		t.Errorf("multiplex = %d, want 31", init[2])
	}
	if init[9] != 0x02 {
		t.Errorf("COM pins = 0x%02X, want 0x02", init[9])
	}
}

func TestNewInvertAndFlip(t *testing.T) {
	tests := []struct {
		name string
		opts Opts
		want [][]byte
	}{
		{"plain", Opts{}, nil},
		{"invert", Opts{Invert: true}, [][]byte{{0xA7}}},
		{"flip", Opts{Flip: true}, [][]byte{{0xA0}, {0xC0}}},
		{"both", Opts{Invert: true, Flip: true}, [][]byte{{0xA7}, {0xA0}, {0xC0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			if _, err := New(r, &tt.opts); err != nil {
				t.Fatal(err)
			}
			got := r.ops[1:]
			if len(got) != len(tt.want) {
				t.Fatalf("got %d extra commands, want %d", len(got), len(tt.want))
			}
			for i, o := range got {
				if !o.cmd || !bytes.Equal(o.b, tt.want[i]) {
					t.Errorf("command %d = % X, want % X", i, o.b, tt.want[i])
				}
			}
		})
	}
}

func TestNewTransportFailure(t *testing.T) {
	busErr := errors.New("bus gone")
	d, err := New(&recorder{err: busErr}, nil)
	if d != nil {
		t.Error("New() returned a Dev on failure")
	}
	if !errors.Is(err, busErr) {
		t.Errorf("New() error = %v, want %v", err, busErr)
	}
}

func TestDevBounds(t *testing.T) {
	dev, _ := newTestDev(t, nil)
	want := image.Rect(0, 0, 128, 64)
	if got := dev.Bounds(); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestDevColorModel(t *testing.T) {
	dev := &Dev{}
	if dev.ColorModel() != image1bit.BitModel {
		t.Error("ColorModel() did not return BitModel")
	}
}

func TestDevString(t *testing.T) {
	dev := &Dev{
		rect: image.Rect(0, 0, 128, 64),
	}
	want := "ssd1306.Dev{128x64}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Uninitialized, "uninitialized"},
		{Active, "active"},
		{Closed, "closed"},
		{State(7), "State(7)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.s), got, tt.want)
		}
	}
}

// checkNotActive verifies that every operation fails on dev.
func checkNotActive(t *testing.T, dev *Dev) {
	t.Helper()
	checks := []struct {
		name string
		err  error
	}{
		{"Fill", dev.Fill(0xFF)},
		{"SetPixel", dev.SetPixel(1, 1, true)},
		{"WriteString", dev.WriteString(0, 0, "x", false)},
		{"SetContrast", dev.SetContrast(100)},
		{"Invert", dev.Invert(true)},
		{"Draw", dev.Draw(image.Rect(0, 0, 128, 64), image.NewGray(image.Rect(0, 0, 128, 64)), image.Point{})},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrNotActive) {
			t.Errorf("%s error = %v, want ErrNotActive", c.name, c.err)
		}
	}
	if _, err := dev.Write(make([]byte, 1024)); !errors.Is(err, ErrNotActive) {
		t.Errorf("Write error = %v, want ErrNotActive", err)
	}
}

func TestUninitializedDev(t *testing.T) {
	dev := &Dev{}
	if dev.State() != Uninitialized {
		t.Errorf("State() = %s, want uninitialized", dev.State())
	}
	checkNotActive(t, dev)
	if err := dev.Halt(); err != nil {
		t.Errorf("Halt() on uninitialized Dev = %v, want nil", err)
	}
	if dev.Pixel(0, 0) {
		t.Error("Pixel() on uninitialized Dev = true")
	}
	if dev.Shadow() != nil {
		t.Error("Shadow() on uninitialized Dev is not nil")
	}
}

func TestDevHalt(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if len(r.ops) != 1 || !r.ops[0].cmd || !bytes.Equal(r.ops[0].b, []byte{0xAE}) {
		t.Fatalf("Halt sent %+v, want display off", r.ops)
	}
	if dev.State() != Closed {
		t.Errorf("State() = %s, want closed", dev.State())
	}

	r.ops = nil
	checkNotActive(t, dev)
	if err := dev.Halt(); err != nil {
		t.Errorf("second Halt() = %v", err)
	}
	if len(r.ops) != 0 {
		t.Errorf("operations after Halt sent %d transfers", len(r.ops))
	}
}

func TestSetContrast(t *testing.T) {
	dev, r := newTestDev(t, nil)
	for _, level := range []byte{0, 0x7F, 0xFF} {
		r.ops = nil
		if err := dev.SetContrast(level); err != nil {
			t.Fatal(err)
		}
		if len(r.ops) != 1 || !bytes.Equal(r.ops[0].b, []byte{0x81, level}) {
			t.Errorf("SetContrast(%d) sent %+v", level, r.ops)
		}
	}
}

func TestInvert(t *testing.T) {
	dev, r := newTestDev(t, nil)
	if err := dev.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Invert(false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r.ops[0].b, []byte{0xA7}) || !bytes.Equal(r.ops[1].b, []byte{0xA6}) {
		t.Errorf("Invert sent %+v", r.ops)
	}
}

func TestSetCursor(t *testing.T) {
	dev, r := newTestDev(t, nil)
	if err := dev.setCursor(0x5A, 3); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{{0xB3}, {0x0A}, {0x15}}
	if len(r.ops) != 3 {
		t.Fatalf("setCursor sent %d transfers, want 3", len(r.ops))
	}
	for i, o := range r.ops {
		if !o.cmd || !bytes.Equal(o.b, want[i]) {
			t.Errorf("transfer %d = % X, want % X", i, o.b, want[i])
		}
	}
	if dev.cursor != 3*128+0x5A {
		t.Errorf("cursor = %d, want %d", dev.cursor, 3*128+0x5A)
	}
}

func TestSendDataAdvancesCursor(t *testing.T) {
	dev, _ := newTestDev(t, nil)
	if err := dev.setCursor(10, 1); err != nil {
		t.Fatal(err)
	}
	if err := dev.sendData([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := dev.sendData([]byte{4}); err != nil {
		t.Fatal(err)
	}
	if dev.cursor != 128+14 {
		t.Errorf("cursor = %d, want %d", dev.cursor, 128+14)
	}
	if got := dev.buffer.Pix[128+10 : 128+14]; !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("shadow = % X, want 01 02 03 04", got)
	}
}

func TestSendDataClipsShadow(t *testing.T) {
	dev, _ := newTestDev(t, nil)
	if err := dev.setCursor(126, 7); err != nil {
		t.Fatal(err)
	}
	if err := dev.sendData([]byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if got := dev.buffer.Pix[1022:]; !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("shadow tail = % X, want 01 02", got)
	}
}

func TestCommandsLeaveShadowAlone(t *testing.T) {
	dev, _ := newTestDev(t, nil)
	before := dev.Shadow()
	cursor := dev.cursor
	if err := dev.SetContrast(0x10); err != nil {
		t.Fatal(err)
	}
	if err := dev.Invert(true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, dev.Shadow()) || dev.cursor != cursor {
		t.Error("commands changed the shadow or cursor")
	}
}

func TestFailedDataWriteKeepsShadow(t *testing.T) {
	dev, r := newTestDev(t, nil)
	r.err = errors.New("nack")
	if err := dev.sendData([]byte{0xFF}); err == nil {
		t.Fatal("sendData() succeeded on a failing transport")
	}
	if dev.buffer.Pix[0] != 0 || dev.cursor != 0 {
		t.Error("failed write changed the shadow or cursor")
	}
}

func TestEndToEndI2C(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, err := NewI2C(bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Fill(0x00); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteString(0, 0, "HI", false); err != nil {
		t.Fatal(err)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}

	cmd := func(b ...byte) []byte { return append([]byte{ControlCommand}, b...) }
	data := func(b ...byte) []byte { return append([]byte{ControlData}, b...) }

	want := [][]byte{cmd(wantInit...)}
	for page := byte(0); page < 8; page++ {
		want = append(want, cmd(0xB0|page), cmd(0x00), cmd(0x10), data(make([]byte, 128)...))
	}
	want = append(want,
		cmd(0xB0), cmd(0x00), cmd(0x10),
		data(0x7F, 0x7F, 0x08, 0x08, 0x7F, 0x7F, 0x00, 0x00), // H
		data(0x00, 0x41, 0x7F, 0x7F, 0x41, 0x00, 0x00, 0x00), // I
		cmd(0xAE),
	)

	if len(bus.Ops) != len(want) {
		t.Fatalf("got %d transfers, want %d", len(bus.Ops), len(want))
	}
	for i, io := range bus.Ops {
		if io.Addr != 0x3C {
			t.Errorf("transfer %d addressed 0x%02X, want 0x3C", i, io.Addr)
		}
		if !bytes.Equal(io.W, want[i]) {
			t.Errorf("transfer %d = % X\nwant % X", i, io.W, want[i])
		}
	}
}

func TestNewI2CAddress(t *testing.T) {
	bus := &i2ctest.Record{}
	if _, err := NewI2C(bus, &Opts{Addr: 0x3D}); err != nil {
		t.Fatal(err)
	}
	if len(bus.Ops) == 0 || bus.Ops[0].Addr != 0x3D {
		t.Errorf("init not sent to 0x3D: %+v", bus.Ops)
	}
}
