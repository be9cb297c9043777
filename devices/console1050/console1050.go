/*
 * microsim360 - IBM 1050 inquiry console.
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

// Package console1050 implements the 1050/1052 inquiry console against
// the generic channel handshake in internal/channel, the same per-cycle
// BusFunc shape as devices/printer1443. The command set (Write, Write
// Auto-Carriage-Return, Read, Alarm) is grounded on the teacher's
// emu/model1052.Model1052ctx.StartCmd, but the teacher drives a real
// terminal over telnet; this console instead reads/writes one line at a
// time through a plain io.Reader/io.Writer, since this simulator runs as
// a single local session rather than a multi-terminal remote host.
package console1050

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/util/xlat"
)

// Console commands, matching the teacher's 1052 command set.
const (
	cmdWrite    uint8 = 0x01
	cmdWriteACR uint8 = 0x09
	cmdRead     uint8 = 0x0a
	cmdAlarm    uint8 = 0x0b
)

const maxLine = 256

// Debug options.
const (
	debugCmd int = 1 << iota
	debugLine
)

var debugOption = map[string]int{"CMD": debugCmd, "LINE": debugLine}

// Console is one 1050 unit.
type Console struct {
	addr    uint16
	events  *event.Queue
	in      *bufio.Reader
	out     io.Writer
	outFile *os.File // non-nil only when Attach redirected output to a file

	selected   bool
	cmdLatched bool
	statusSent bool
	completing bool
	ready      bool
	cmd        uint8
	sense      uint8
	initStatus uint8

	buf     [maxLine]uint8
	pos     int
	readLen int // bytes staged in buf by a Read command's pre-fetch

	debugMsk int
}

// New constructs a 1050 at addr reading from in and writing to out.
// events schedules the completion delay the way a real console's
// keystroke/print cycle takes physical time to run out.
func New(addr uint16, events *event.Queue, in io.Reader, out io.Writer) *Console {
	return &Console{addr: addr, events: events, in: bufio.NewReader(in), out: out}
}

// Addr implements device.Device.
func (c *Console) Addr() uint16 { return c.addr }

// Attach redirects the console's output to a transcript file per the DEV
// directive's FILE= option; with no FILE= given it keeps writing to the
// io.Writer New was constructed with.
func (c *Console) Attach(opts []configparser.Option) error {
	name, ok := configparser.Get(opts, "file")
	if !ok || name == "" {
		return nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	c.out = f
	c.outFile = f
	return nil
}

// Shutdown implements device.Device.
func (c *Console) Shutdown() {
	c.events.CancelAllFor(c)
	if c.outFile != nil {
		_ = c.outFile.Close()
		c.outFile = nil
	}
}

// Debug implements device.Device.
func (c *Console) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("console1050: unknown debug option %q", opt)
	}
	c.debugMsk |= flag
	return nil
}

// BusFunc answers one macro-cycle of the generic channel handshake:
// select, latch the command, report initial status, transfer a line's
// worth of bytes, then report ending status once the scheduled
// completion delay has run out.
func (c *Console) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
	switch {
	case !c.selected && *tags&bustag.SelOut != 0 && *tags&bustag.AdrOut != 0 && busOut == uint8(c.addr):
		c.selected = true
		*tags &^= bustag.SelOut
		*tags |= bustag.OprIn | bustag.AdrIn
		*busIn = uint8(c.addr)

	case c.selected && !c.cmdLatched && *tags&bustag.CmdOut != 0:
		c.cmdLatched = true
		c.cmd = busOut
		c.pos = 0
		c.sense = 0
		c.initStatus = c.commandAccepted()

	case c.selected && c.cmdLatched && !c.statusSent && *tags&bustag.CmdOut == 0 && *tags&bustag.SrvOut != 0:
		c.statusSent = true
		*tags |= bustag.StaIn
		*busIn = c.initStatus

	case c.selected && c.statusSent && c.initStatus == 0 && *tags&bustag.SrvOut != 0 && c.pos < c.transferLen():
		*tags |= bustag.SrvIn
		switch c.cmd {
		case device.CmdSense:
			*busIn = c.sense
		case cmdRead:
			*busIn = c.buf[c.pos]
		default: // cmdWrite, cmdWriteACR
			c.buf[c.pos] = busOut
		}
		c.pos++

	case c.selected && c.statusSent && !c.completing:
		c.completing = true
		c.ready = false
		c.events.Add(c, func(int) { c.ready = true }, c.completionDelay(), 0)

	case c.selected && c.statusSent && c.completing && !c.ready:
		// Waiting on the scheduled completion event; assert nothing.

	case c.selected && c.statusSent && c.completing && c.ready:
		*tags |= bustag.StaIn
		*busIn = c.endStatus()
		c.finish()
		c.selected = false
		c.cmdLatched = false
		c.statusSent = false
		c.completing = false
		c.ready = false
	}
}

// completionDelay charges one tick per character moved; the alarm takes a
// fixed, longer interval the way a bell's physical ring does in the
// teacher's 1000-tick callback requeue for cmdAlarm.
func (c *Console) completionDelay() int {
	switch c.cmd {
	case cmdAlarm:
		return 100
	case device.CmdSense:
		return 1
	default:
		if c.pos == 0 {
			return 1
		}
		return c.pos
	}
}

// commandAccepted validates the latched command, for Read pulling the
// next line of operator input and translating it to EBCDIC up front so
// the data phase only needs to hand bytes across.
func (c *Console) commandAccepted() uint8 {
	switch c.cmd {
	case cmdRead:
		line, err := c.in.ReadString('\n')
		if line == "" && err != nil {
			c.sense = device.SenseINTVENT
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusExcept
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) > maxLine {
			line = line[:maxLine]
		}
		for i := 0; i < len(line); i++ {
			c.buf[i] = xlat.ASCIIToEBCDIC[line[i]]
		}
		c.pos = 0
		c.readLen = len(line)
		return 0
	case cmdWrite, cmdWriteACR:
		return 0
	case cmdAlarm:
		fmt.Fprint(c.out, "\a")
		return 0
	case device.CmdSense:
		return 0
	case device.CmdCTL:
		return device.StatusChnEnd | device.StatusDevEnd
	default:
		c.sense = device.SenseCMDREJ
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// transferLen bounds how many bytes this command's data phase accepts:
// one sense byte, the pre-read input line's length, or a full output
// line buffer.
func (c *Console) transferLen() int {
	switch c.cmd {
	case device.CmdSense:
		return 1
	case cmdRead:
		return c.readLen
	case cmdWrite, cmdWriteACR:
		return maxLine
	default:
		return 0
	}
}

func (c *Console) endStatus() uint8 {
	if c.sense != 0 {
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
	return device.StatusChnEnd | device.StatusDevEnd
}

// finish prints the line just written by the channel; Read's input was
// already consumed in commandAccepted.
func (c *Console) finish() {
	switch c.cmd {
	case cmdWrite, cmdWriteACR:
		line := make([]byte, c.pos)
		for i := 0; i < c.pos; i++ {
			line[i] = xlat.EBCDICToASCII[c.buf[i]]
		}
		if c.cmd == cmdWriteACR {
			fmt.Fprintf(c.out, "%s\r\n", line)
		} else {
			fmt.Fprintf(c.out, "%s\n", line)
		}
	}
}
