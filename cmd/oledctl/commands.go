package main

import (
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
)

var (
	textLarge  bool
	pixelClear bool
)

func init() {
	textCmd.Flags().BoolVarP(&textLarge, `large`, `l`, false, `use the 16 pixel wide font`)
	pixelCmd.Flags().BoolVar(&pixelClear, `clear`, false, `turn the pixel off`)
	rootCmd.AddCommand(fillCmd, textCmd, pixelCmd, contrastCmd, invertCmd, offCmd)
}

var fillCmd = &cobra.Command{
	Use:   `fill <pattern>`,
	Short: `fill every page with a byte pattern`,
	Long: `fill every page with a byte pattern

The pattern is one byte, e.g. 0 to clear the display, 0xff to light every
pixel or 0xaa for horizontal stripes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			pattern, err := parseByte(args[0])
			if err != nil {
				return err
			}
			return with(cmd, false, func(s *session) error {
				return s.Fill(pattern)
			})()
		})
	},
}

var textCmd = &cobra.Command{
	Use:   `text <col> <row> <text>...`,
	Short: `write text at a character cell`,
	Long: `write text at a character cell

With the 8x8 font a row is one page (0-7) and a 128 pixel wide display has
16 columns. With --large characters are 16 pixels wide and cover three
pages starting at row.`,
	Args: cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			col, row, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			text := strings.Join(args[2:], ` `)
			return with(cmd, false, func(s *session) error {
				return s.WriteString(col, row, text, textLarge)
			})()
		})
	},
}

var pixelCmd = &cobra.Command{
	Use:   `pixel <x> <y>`,
	Short: `turn a pixel on or off`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			x, y, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			return with(cmd, false, func(s *session) error {
				return s.SetPixel(x, y, !pixelClear)
			})()
		})
	},
}

var contrastCmd = &cobra.Command{
	Use:   `contrast <level>`,
	Short: `set the contrast (0-255)`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			level, err := parseByte(args[0])
			if err != nil {
				return err
			}
			return with(cmd, false, func(s *session) error {
				return s.SetContrast(level)
			})()
		})
	},
}

var invertCmd = &cobra.Command{
	Use:   `invert <on|off>`,
	Short: `invert the display colors`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func() error {
			on, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			return with(cmd, false, func(s *session) error {
				return s.Invert(on)
			})()
		})
	},
}

var offCmd = &cobra.Command{
	Use:   `off`,
	Short: `turn the display off`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(with(cmd, true, func(s *session) error {
			return nil
		}))
	},
}

// parseByte accepts decimal, 0x hex, 0o octal and 0b binary.
func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Errorf(`invalid byte value %q`, s)
	}
	return byte(v), nil
}

func parsePoint(xs, ys string) (x, y int, err error) {
	if x, err = strconv.Atoi(xs); err != nil {
		return 0, 0, errors.Errorf(`invalid coordinate %q`, xs)
	}
	if y, err = strconv.Atoi(ys); err != nil {
		return 0, 0, errors.Errorf(`invalid coordinate %q`, ys)
	}
	return x, y, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case `on`, `yes`:
		return true, nil
	case `off`, `no`:
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Errorf(`expected on or off, got %q`, s)
	}
	return v, nil
}
