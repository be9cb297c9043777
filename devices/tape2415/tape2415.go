/*
 * microsim360 - IBM 2415 magnetic tape unit.
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

// Package tape2415 implements the IBM 2415 magnetic tape unit against the
// generic channel handshake in internal/channel, the same per-cycle
// BusFunc state machine shape as devices/printer1443, but built for
// tape's wider command set: read forward, write, a handful of control
// (rewind, rewind-unload, backspace, write tape mark, erase gap) and
// sense. util/tape.Context supplies the host-side container format and
// frame-at-a-time positioning; this file's job is entirely the
// bus/tag protocol and command-to-record-boundary bookkeeping around it.
//
// A whole record is staged in buf at command-latch time (read: pulled
// from tape immediately so the data phase only copies out of memory
// already in hand; write: accumulated as the channel hands over bytes,
// then pushed to tape once the channel stops offering service out) and
// the real tape.Context methods that do the file I/O are only called at
// the command's edges, mirroring how util/tape.ReadRecord/WriteRecord
// were written to be driven from exactly one record boundary at a time.
package tape2415

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/util/tape"
)

const maxRecord = 32 * 1024

// Control-order command codes the 2415 answers. Unlike the 1443's
// CmdCTL (a generic "control, one data byte follows" marker), a real
// tape control order is fully specified by the command byte itself, so
// these sit alongside device.CmdRead/CmdWrite/CmdSense rather than
// behind a shared CmdCTL case.
const (
	ctlRewind       uint8 = 0x07
	ctlRewindUnload uint8 = 0x0f
	ctlWriteMark    uint8 = 0x1f
	ctlBackspace    uint8 = 0x27
	ctlErase        uint8 = 0x17
)

// Debug options.
const (
	debugCmd int = 1 << iota
	debugData
)

var debugOption = map[string]int{"CMD": debugCmd, "DATA": debugData}

// Tape is one 2415 drive.
type Tape struct {
	addr   uint16
	ctx    *tape.Context
	events *event.Queue

	selected   bool
	cmdLatched bool
	statusSent bool
	completing bool
	ready      bool
	cmd        uint8
	sense      uint8
	initStatus uint8

	buf [maxRecord]uint8
	pos int // bytes transferred this command
	len int // bytes staged in buf (read: record length; write: grows with pos)

	debugMsk int
}

// New constructs a 2415 at addr. events schedules the completion delay
// between a command's data phase ending and its ending status, the way
// a real drive's record motion or rewind takes physical time to run out.
func New(addr uint16, events *event.Queue) *Tape {
	return &Tape{addr: addr, ctx: tape.NewContext(), events: events}
}

// Addr implements device.Device.
func (t *Tape) Addr() uint16 { return t.addr }

// Attach opens the tape image per the DEV directive's FILE=, FORMAT=
// and RING= options.
func (t *Tape) Attach(opts []configparser.Option) error {
	name, ok := configparser.Get(opts, "file")
	if !ok || name == "" {
		return fmt.Errorf("tape2415: FILE option required")
	}
	if fmtName, ok := configparser.Get(opts, "format"); ok {
		if err := t.ctx.SetFormat(fmtName); err != nil {
			return err
		}
	}
	if ring, ok := configparser.Get(opts, "ring"); ok && !strings.EqualFold(ring, "no") {
		t.ctx.SetRing()
	}
	return t.ctx.Attach(name)
}

// Shutdown implements device.Device.
func (t *Tape) Shutdown() {
	t.events.CancelAllFor(t)
	if t.ctx.Attached() {
		_ = t.ctx.Detach()
	}
}

// Debug implements device.Device.
func (t *Tape) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("tape2415: unknown debug option %q", opt)
	}
	t.debugMsk |= flag
	return nil
}

// BusFunc answers one macro-cycle of the generic channel handshake:
// select, latch the command, report initial status, move a record's
// worth of bytes a byte at a time, then report ending status once the
// record's physical motion has had time to run out.
func (t *Tape) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
	switch {
	case !t.selected && *tags&bustag.SelOut != 0 && *tags&bustag.AdrOut != 0 && busOut == uint8(t.addr):
		t.selected = true
		*tags &^= bustag.SelOut
		*tags |= bustag.OprIn | bustag.AdrIn
		*busIn = uint8(t.addr)

	case t.selected && !t.cmdLatched && *tags&bustag.CmdOut != 0:
		t.cmdLatched = true
		t.cmd = busOut
		t.pos = 0
		t.sense = 0
		t.initStatus = t.commandAccepted()

	case t.selected && t.cmdLatched && !t.statusSent && *tags&bustag.CmdOut == 0 && *tags&bustag.SrvOut != 0:
		t.statusSent = true
		*tags |= bustag.StaIn
		*busIn = t.initStatus

	case t.selected && t.statusSent && t.initStatus == 0 && *tags&bustag.SrvOut != 0 && t.pos < t.transferLen():
		*tags |= bustag.SrvIn
		switch t.cmd {
		case device.CmdSense:
			*busIn = t.sense
		case device.CmdRead, device.CmdRDBWD:
			*busIn = t.buf[t.pos]
		case device.CmdWrite:
			t.buf[t.pos] = busOut
			t.len = t.pos + 1
		}
		t.pos++

	case t.selected && t.statusSent && !t.completing:
		t.completing = true
		t.ready = false
		t.events.Add(t, func(int) { t.ready = true }, t.completionDelay(), 0)

	case t.selected && t.statusSent && t.completing && !t.ready:
		// Waiting on the scheduled completion event; assert nothing.

	case t.selected && t.statusSent && t.completing && t.ready:
		*tags |= bustag.StaIn
		*busIn = t.endStatus()
		t.finish()
		t.selected = false
		t.cmdLatched = false
		t.statusSent = false
		t.completing = false
		t.ready = false
	}
}

// completionDelay estimates the ticks a command's physical tape motion
// takes: proportional to the record length for read/write, a fixed
// longer charge for rewind (worse for rewind-unload), immediate for
// everything else.
func (t *Tape) completionDelay() int {
	switch t.cmd {
	case device.CmdRead, device.CmdRDBWD, device.CmdWrite:
		if t.len == 0 {
			return 1
		}
		return t.len
	case ctlRewind:
		return 500
	case ctlRewindUnload:
		return 1000
	case ctlWriteMark, ctlBackspace, ctlErase:
		return 10
	default:
		return 1
	}
}

// commandAccepted validates the latched command, pulling a record off
// tape immediately for a read so the data phase has it in hand, and
// returns the initial status byte (nonzero short-circuits straight to
// ending status).
func (t *Tape) commandAccepted() uint8 {
	if t.cmd != device.CmdSense && !t.ctx.Attached() {
		t.sense = device.SenseINTVENT
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}

	switch t.cmd {
	case device.CmdRead:
		n, err := t.ctx.ReadRecord(t.buf[:])
		t.len = n
		if err != nil {
			return t.readError(err)
		}
		return 0

	case device.CmdRDBWD:
		if err := t.ctx.ReadBackStart(); err != nil {
			return t.readError(err)
		}
		n := 0
		for n < len(t.buf) {
			b, err := t.ctx.ReadFrame()
			if errors.Is(err, tape.ErrEOR) {
				break
			}
			if err != nil {
				return t.readError(err)
			}
			t.buf[n] = b
			n++
		}
		t.len = n
		if err := t.ctx.FinishRecord(); err != nil {
			return t.readError(err)
		}
		return 0

	case device.CmdWrite:
		t.len = 0
		return 0

	case device.CmdSense:
		return 0

	// Control orders are fully specified by the command byte; the
	// actual motion (rewind reset, tape mark write) happens in finish
	// once ending status's completion delay has run, except for
	// StartRewind's dirty-buffer flush, which must run now so a
	// following command sees a clean tape.
	case ctlRewind, ctlRewindUnload:
		if err := t.ctx.StartRewind(); err != nil {
			t.sense = device.SenseEQUCHK
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
		}
		return 0

	case ctlWriteMark, ctlBackspace, ctlErase:
		return 0

	default:
		t.sense = device.SenseCMDREJ
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// readError maps a util/tape read error to sense/status: a tape mark
// sets the unit-exception bit over channel/device end rather than a
// check, end of tape likewise but distinguishable by sense.
func (t *Tape) readError(err error) uint8 {
	switch {
	case errors.Is(err, tape.ErrMark):
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusExcept
	case errors.Is(err, tape.ErrEOT):
		t.sense = device.SenseEQUCHK
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusExcept
	default:
		t.sense = device.SenseDATCHK
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// transferLen bounds how many bytes this command's data phase moves:
// one sense byte, the staged record for read, up to a full record
// buffer for write, nothing for a control order (its motion is
// scheduled, not byte-transferred).
func (t *Tape) transferLen() int {
	switch t.cmd {
	case device.CmdSense:
		return 1
	case device.CmdRead, device.CmdRDBWD:
		return t.len
	case device.CmdWrite:
		return len(t.buf)
	default:
		return 0
	}
}

func (t *Tape) endStatus() uint8 {
	if t.sense != 0 {
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
	return device.StatusChnEnd | device.StatusDevEnd
}

// finish applies a completed command's deferred, non-byte-at-a-time
// motion: flush a staged write record to tape, or run the rest of a
// control order.
func (t *Tape) finish() {
	switch t.cmd {
	case device.CmdWrite:
		if t.sense == 0 {
			if err := t.ctx.WriteRecord(t.buf[:t.len]); err != nil {
				t.sense = device.SenseDATCHK
			}
		}
	case ctlRewind, ctlRewindUnload:
		_ = t.ctx.Rewind()
	case ctlWriteMark:
		if err := t.ctx.WriteMark(); err != nil {
			t.sense = device.SenseDATCHK
		}
	case ctlBackspace:
		t.ctx.RewindFrames(1)
	case ctlErase:
		// Erase gap has no representation in the container format;
		// nothing to do once the delay has been charged.
	}
}
