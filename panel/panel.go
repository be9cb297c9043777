/*
 * microsim360 - operator's panel facade.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package panel is the operator's console: a liner REPL standing in for
// the 2030's physical panel switches and lamps, grounded on the
// teacher's command/reader.ConsoleReader loop. It only exposes the
// handful of controls a real front panel has -- START, STOP, IPL, and a
// register/PSW display -- rather than the teacher's full command
// language (SET/ATTACH/DETACH file-level device management), which
// belongs to a device-provisioning front end, not a panel.
package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/microengine"
)

var commands = []string{"start", "stop", "continue", "ipl", "show", "quit", "help"}

// Run drives the console REPL until the operator quits or aborts with
// Ctrl-C. eng is the engine the panel's switches act on; ctl is only
// needed so a future IPL-from-device hook has somewhere to reach.
func Run(eng *microengine.Engine, ctl *channel.Controller) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, partial) {
				out = append(out, c)
			}
		}
		return out
	})

	for {
		cmd, err := line.Prompt("2030> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("panel: error reading console line: " + err.Error())
			return
		}
		line.AppendHistory(cmd)

		quit, err := dispatch(strings.TrimSpace(cmd), eng)
		if err != nil {
			fmt.Println("Error:", err)
		}
		if quit {
			return
		}
	}
}

func dispatch(cmd string, eng *microengine.Engine) (bool, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Println(strings.Join(commands, " "))
		return false, nil

	case "start", "continue":
		eng.Resume()
		return false, nil

	case "stop":
		eng.Stop()
		return false, nil

	case "ipl":
		if len(fields) < 2 {
			return false, errors.New("ipl requires a device address, e.g. ipl 0c0")
		}
		addr, err := strconv.ParseUint(fields[1], 16, 16)
		if err != nil {
			return false, fmt.Errorf("ipl: bad device address %q", fields[1])
		}
		return false, eng.IPL(uint16(addr))

	case "show":
		p := eng.PSW()
		fmt.Printf("PSW: IA=%06x CC=%d Key=%x AMWP=%x IntCode=%04x\n",
			p.IA, p.CC, p.Key, p.AMWP, p.IntCode)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}
