package main

import (
	"time"

	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"

	"github.com/flavioheleno/ssd1306/board"
)

func init() { rootCmd.AddCommand(scriptCmd) }

var scriptCmd = &cobra.Command{
	Use:   `script <file.lua>`,
	Short: `run a Lua drawing script`,
	Long: `run a Lua drawing script

The script sees these functions:

    fill(pattern)                 fill every page with a byte pattern
    text(col, row, s [, large])   write text at a character cell
    pixel(x, y [, on])            turn a pixel on (default) or off
    contrast(level)               set the contrast (0-255)
    invert(on)                    invert the display colors
    sleep(ms)                     wait
    width(), height()             display size in pixels`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(with(cmd, false, func(s *session) error {
			L := newScriptState(s.Display)
			defer L.Close()
			return L.DoFile(args[0])
		}))
	},
}

// newScriptState returns a Lua state whose globals draw on d. Drawing errors
// are raised as Lua errors.
func newScriptState(d *board.Display) *lua.LState {
	L := lua.NewState()
	check := func(L *lua.LState, err error) int {
		if err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
	checkByte := func(L *lua.LState, n int) byte {
		v := L.CheckInt(n)
		if v < 0 || v > 0xFF {
			L.ArgError(n, "value out of range 0-255")
		}
		return byte(v)
	}
	funcs := map[string]lua.LGFunction{
		`fill`: func(L *lua.LState) int {
			return check(L, d.Fill(checkByte(L, 1)))
		},
		`text`: func(L *lua.LState) int {
			return check(L, d.WriteString(L.CheckInt(1), L.CheckInt(2), L.CheckString(3), L.OptBool(4, false)))
		},
		`pixel`: func(L *lua.LState) int {
			return check(L, d.SetPixel(L.CheckInt(1), L.CheckInt(2), L.OptBool(3, true)))
		},
		`contrast`: func(L *lua.LState) int {
			return check(L, d.SetContrast(checkByte(L, 1)))
		},
		`invert`: func(L *lua.LState) int {
			return check(L, d.Invert(L.CheckBool(1)))
		},
		`sleep`: func(L *lua.LState) int {
			time.Sleep(time.Duration(L.CheckInt(1)) * time.Millisecond)
			return 0
		},
		`width`: func(L *lua.LState) int {
			L.Push(lua.LNumber(d.Bounds().Dx()))
			return 1
		},
		`height`: func(L *lua.LState) int {
			L.Push(lua.LNumber(d.Bounds().Dy()))
			return 1
		},
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return L
}
