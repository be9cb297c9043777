/*
 * microsim360 - IBM 1443 line printer.
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

// Package printer1443 implements the IBM 1443 line printer against the
// generic channel handshake in internal/channel, answering select/
// command/data/status through BusFunc the same way model1443_dev does in
// original_source, but as one small per-cycle state machine rather than a
// StartIO/StartCmd pair.
//
// Carriage control is reduced to two cases compared to the teacher's full
// 12-channel, 66-line forms-control tape (legacy/std1/none in
// emu/model1403): space N lines (N is the control byte's low nibble, a
// zero nibble counting as one; counts above three are not clamped) and
// skip-to-top-of-form (the control byte's high bit). A real
// FCB tape is out of scope for this spec's printer coverage.
package printer1443

import (
	"fmt"
	"os"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/util/xlat"
)

const maxLine = 132

// Debug options.
const (
	debugCmd int = 1 << iota
	debugData
)

var debugOption = map[string]int{"CMD": debugCmd, "DATA": debugData}

// Printer is one 1443 unit.
type Printer struct {
	addr   uint16
	file   *os.File
	events *event.Queue

	lpp     int // lines per page
	lineNum int

	selected   bool
	cmdLatched bool
	statusSent bool
	completing bool // ending status is scheduled, waiting on events
	ready      bool // the scheduled completion event has fired
	cmd        uint8
	sense      uint8
	initStatus uint8

	buf [maxLine]uint8
	pos int

	debugMsk int
}

// New constructs a 1443 at addr. file may be nil; Attach binds the output
// file from configuration. events schedules the completion delay between
// a command's last data byte and its ending status, the way a real 1443's
// print or carriage-motion cycle takes physical time to run out; it must
// not be nil.
func New(addr uint16, events *event.Queue) *Printer {
	return &Printer{addr: addr, lpp: 66, events: events}
}

// Addr implements device.Device.
func (p *Printer) Addr() uint16 { return p.addr }

// Attach opens the printer's output file per the DEV directive's FILE=
// and LPP= options.
func (p *Printer) Attach(opts []configparser.Option) error {
	name, ok := configparser.Get(opts, "file")
	if !ok || name == "" {
		return fmt.Errorf("printer1443: FILE option required")
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	p.file = f

	if lpp, ok := configparser.Get(opts, "lpp"); ok {
		var n int
		if _, err := fmt.Sscanf(lpp, "%d", &n); err == nil && n > 0 {
			p.lpp = n
		}
	}
	return nil
}

// Shutdown implements device.Device.
func (p *Printer) Shutdown() {
	p.events.CancelAllFor(p)
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
}

// Debug implements device.Device.
func (p *Printer) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("printer1443: unknown debug option %q", opt)
	}
	p.debugMsk |= flag
	return nil
}

// BusFunc answers one macro-cycle of the generic channel handshake: select,
// latch the command, report initial status, accept print/carriage-control
// data a byte at a time, then report ending status.
func (p *Printer) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
	switch {
	case !p.selected && *tags&bustag.SelOut != 0 && *tags&bustag.AdrOut != 0 && busOut == uint8(p.addr):
		p.selected = true
		*tags &^= bustag.SelOut
		*tags |= bustag.OprIn | bustag.AdrIn
		*busIn = uint8(p.addr)

	case p.selected && !p.cmdLatched && *tags&bustag.CmdOut != 0:
		p.cmdLatched = true
		p.cmd = busOut
		p.pos = 0
		p.sense = 0
		p.initStatus = p.commandAccepted()

	case p.selected && p.cmdLatched && !p.statusSent && *tags&bustag.CmdOut == 0 && *tags&bustag.SrvOut != 0:
		p.statusSent = true
		*tags |= bustag.StaIn
		*busIn = p.initStatus

	case p.selected && p.statusSent && p.initStatus == 0 && *tags&bustag.SrvOut != 0 && p.pos < p.transferLen():
		*tags |= bustag.SrvIn
		if p.cmd == device.CmdSense {
			*busIn = p.sense
		} else {
			p.buf[p.pos] = busOut
		}
		p.pos++

	// The channel has latched the last data byte (or there was none to
	// take, for a short command); schedule the physical print/carriage
	// motion this command actually takes and withhold ending status
	// until that event fires. The subchannel simply stays in its ending-
	// status wait across as many Cycle calls as that takes, the
	// generic channel handshake already tolerates that.
	case p.selected && p.statusSent && !p.completing:
		p.completing = true
		p.ready = false
		p.events.Add(p, func(int) { p.ready = true }, p.completionDelay(), 0)

	case p.selected && p.statusSent && p.completing && !p.ready:
		// Waiting on the scheduled completion event; assert nothing.

	case p.selected && p.statusSent && p.completing && p.ready:
		*tags |= bustag.StaIn
		*busIn = p.endStatus()
		p.finish()
		p.selected = false
		p.cmdLatched = false
		p.statusSent = false
		p.completing = false
		p.ready = false
	}
}

// completionDelay estimates the ticks a command's physical motion takes:
// proportional to the number of print positions struck for CmdWrite, to
// the number of lines spaced for CmdCTL, and immediate for everything
// else (sense, or a command rejected before any data phase).
func (p *Printer) completionDelay() int {
	switch p.cmd {
	case device.CmdWrite:
		if p.pos == 0 {
			return 1
		}
		return p.pos
	case device.CmdCTL:
		n := int(p.buf[0] & 0x0f)
		if p.buf[0]&0x80 != 0 {
			n = p.lpp
		} else if n == 0 {
			n = 1
		}
		return n
	default:
		return 1
	}
}

// commandAccepted validates the latched command and returns the initial
// status byte (nonzero short-circuits straight to ending status).
func (p *Printer) commandAccepted() uint8 {
	switch p.cmd {
	case device.CmdWrite, device.CmdCTL, device.CmdSense:
		if p.cmd != device.CmdSense && p.file == nil {
			p.sense = device.SenseINTVENT
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
		}
		return 0
	default:
		p.sense = device.SenseCMDREJ
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// transferLen bounds how many bytes this command's data phase accepts:
// one carriage-control byte, one sense byte, or a full print line.
func (p *Printer) transferLen() int {
	switch p.cmd {
	case device.CmdCTL, device.CmdSense:
		return 1
	default:
		return maxLine
	}
}

func (p *Printer) endStatus() uint8 {
	if p.sense != 0 {
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
	return device.StatusChnEnd | device.StatusDevEnd
}

// finish applies the completed command: print the buffered line or
// advance the carriage.
func (p *Printer) finish() {
	if p.file == nil {
		return
	}
	switch p.cmd {
	case device.CmdWrite:
		line := make([]byte, p.pos)
		for i := 0; i < p.pos; i++ {
			line[i] = xlat.EBCDICToASCII[p.buf[i]]
		}
		fmt.Fprintln(p.file, string(line))
		p.lineNum++
	case device.CmdCTL:
		p.advanceCarriage(p.buf[0])
	}
}

// advanceCarriage interprets the control byte: bit 0x80 skips to the top
// of the next form, else the low nibble spaces that many lines (minimum
// one), wrapping the line count at lpp.
func (p *Printer) advanceCarriage(ctl uint8) {
	if ctl&0x80 != 0 {
		fmt.Fprint(p.file, "\f")
		p.lineNum = 0
		return
	}
	n := int(ctl & 0x0f)
	if n == 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		fmt.Fprintln(p.file)
		p.lineNum++
		if p.lineNum >= p.lpp {
			fmt.Fprint(p.file, "\f")
			p.lineNum = 0
		}
	}
}
