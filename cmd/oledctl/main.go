// Command oledctl draws on a SSD1306 OLED display from the shell.
//
// Every subcommand opens the display, draws and leaves the panel showing the
// result. With --sim the display is emulated and the result is printed to the
// terminal, or shown in a window with --window.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/flavioheleno/ssd1306/board"
	"github.com/flavioheleno/ssd1306/emu"
)

var rootCmd = &cobra.Command{
	Use:          "oledctl",
	Short:        "oledctl draws on a SSD1306 OLED display",
	Long:         "oledctl draws on a SSD1306 OLED display over I²C or SPI",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

var (
	debug      bool
	configPath string
	simulate   bool
	window     bool
	scale      int

	flagCfg = board.DefaultConfig
)

func init() {
	cobra.EnablePrefixMatching = true
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debug, `debug`, false, `debug errors`)
	pf.StringVarP(&configPath, `config`, `c`, ``, `YAML configuration file`)
	pf.StringVar(&flagCfg.Channel, `channel`, ``, `bus name (empty for the first bus)`)
	pf.Uint16Var(&flagCfg.Address, `addr`, flagCfg.Address, `I²C address`)
	pf.BoolVar(&flagCfg.SPI, `spi`, false, `use SPI instead of I²C`)
	pf.StringVar(&flagCfg.DC, `dc`, `GPIO25`, `Data/Command pin name (SPI)`)
	pf.StringVar(&flagCfg.Reset, `reset`, ``, `reset pin name (SPI, optional)`)
	pf.BoolVar(&flagCfg.Flip, `flip`, false, `rotate the display 180°`)
	pf.BoolVar(&flagCfg.Invert, `invert`, false, `invert the display`)
	pf.IntVar(&flagCfg.Width, `width`, flagCfg.Width, `display width in pixels`)
	pf.IntVar(&flagCfg.Height, `height`, flagCfg.Height, `display height in pixels`)
	pf.BoolVar(&flagCfg.Sequential, `sequential`, false, `sequential COM pin configuration`)
	pf.BoolVar(&simulate, `sim`, false, `emulate the display and print the result`)
	pf.BoolVar(&window, `window`, false, `with --sim, show the result in a window`)
	pf.IntVar(&scale, `scale`, 4, `window scale factor`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(fn func() error) {
	err := fn()
	if err != nil {
		if stackFramer, ok := err.(interface{ ErrorStack() string }); debug && ok {
			fmt.Println(stackFramer.ErrorStack())
			os.Exit(1)
		} else {
			log.Fatal(err)
		}
	}
}

// wrap attaches a stack trace to err.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, 1)
}

// config merges the configuration file with the flags set on the command
// line. Flags win.
func config(cmd *cobra.Command) (board.Config, error) {
	cfg := board.DefaultConfig
	if configPath != `` {
		var err error
		if cfg, err = board.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}
	set := map[string]func(){
		`channel`:    func() { cfg.Channel = flagCfg.Channel },
		`addr`:       func() { cfg.Address = flagCfg.Address },
		`spi`:        func() { cfg.SPI = flagCfg.SPI },
		`dc`:         func() { cfg.DC = flagCfg.DC },
		`reset`:      func() { cfg.Reset = flagCfg.Reset },
		`flip`:       func() { cfg.Flip = flagCfg.Flip },
		`invert`:     func() { cfg.Invert = flagCfg.Invert },
		`width`:      func() { cfg.Width = flagCfg.Width },
		`height`:     func() { cfg.Height = flagCfg.Height },
		`sequential`: func() { cfg.Sequential = flagCfg.Sequential },
	}
	flags := cmd.Flags()
	for name, apply := range set {
		if flags.Changed(name) {
			apply()
		}
	}
	if cfg.SPI && cfg.DC == `` {
		cfg.DC = flagCfg.DC
	}
	return cfg, nil
}

// session is an open display, real or emulated.
type session struct {
	*board.Display
	sim *emu.Host
}

func open(cmd *cobra.Command) (*session, error) {
	cfg, err := config(cmd)
	if err != nil {
		return nil, wrap(err)
	}
	s := &session{}
	var h board.Host = board.Periph{}
	if simulate {
		s.sim = emu.NewHost(cfg.Width, cfg.Height)
		s.sim.Addr = cfg.Address
		s.sim.DC = cfg.DC
		s.sim.Reset = cfg.Reset
		h = s.sim
	}
	s.Display = board.New(h)
	if err := s.Init(cfg); err != nil {
		return nil, wrap(err)
	}
	return s, nil
}

// finish ends the session. Unless halt is set, a real panel keeps showing
// what was drawn.
func (s *session) finish(halt bool) error {
	var err error
	if halt {
		err = s.Shutdown()
	} else {
		err = s.Close()
	}
	if err != nil {
		return wrap(err)
	}
	if s.sim == nil {
		return nil
	}
	if window {
		return wrap(showWindow(s.sim.C, scale))
	}
	return wrap(preview(os.Stdout, s.sim.C.Render()))
}

// with opens a session, calls fn and finishes the session.
func with(cmd *cobra.Command, halt bool, fn func(s *session) error) func() error {
	return func() error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			s.Close()
			return wrap(err)
		}
		return s.finish(halt)
	}
}
