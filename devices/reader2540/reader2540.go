/*
 * microsim360 - IBM 2540 card reader.
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

// Package reader2540 implements the card reader side of the IBM 2540
// card read/punch against the generic channel handshake in
// internal/channel, the same per-cycle BusFunc shape as
// devices/printer1443. util/card.Reader supplies the host-side hopper
// file; this file pulls one card at a time off it (at command-latch
// time, the way devices/tape2415 stages a whole record) and feeds its
// 80 columns out through Read's data phase.
package reader2540

import (
	"errors"
	"fmt"
	"io"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/util/card"
)

// Debug options.
const (
	debugCmd int = 1 << iota
	debugData
)

var debugOption = map[string]int{"CMD": debugCmd, "DATA": debugData}

// Reader is one 2540 reader unit (the hopper side).
type Reader struct {
	addr   uint16
	hopper *card.Reader
	events *event.Queue

	selected   bool
	cmdLatched bool
	statusSent bool
	completing bool
	ready      bool
	cmd        uint8
	sense      uint8
	initStatus uint8

	buf card.Card
	pos int

	debugMsk int
}

// New constructs a 2540 reader at addr. events schedules the completion
// delay between a card's last column and its ending status, the way a
// real reader's feed cycle takes physical time to run out.
func New(addr uint16, events *event.Queue) *Reader {
	return &Reader{addr: addr, events: events}
}

// Addr implements device.Device.
func (r *Reader) Addr() uint16 { return r.addr }

// Attach opens the hopper file per the DEV directive's FILE= and
// FORMAT= options.
func (r *Reader) Attach(opts []configparser.Option) error {
	name, ok := configparser.Get(opts, "file")
	if !ok || name == "" {
		return fmt.Errorf("reader2540: FILE option required")
	}
	mode := card.ModeAuto
	if fmtName, ok := configparser.Get(opts, "format"); ok {
		m, ok := card.LookupFormat(fmtName)
		if !ok {
			return fmt.Errorf("reader2540: unknown FORMAT= %q", fmtName)
		}
		mode = m
	}
	h, err := card.NewReader(name, mode)
	if err != nil {
		return err
	}
	r.hopper = h
	return nil
}

// Shutdown implements device.Device.
func (r *Reader) Shutdown() {
	r.events.CancelAllFor(r)
	if r.hopper != nil {
		_ = r.hopper.Close()
		r.hopper = nil
	}
}

// Debug implements device.Device.
func (r *Reader) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("reader2540: unknown debug option %q", opt)
	}
	r.debugMsk |= flag
	return nil
}

// BusFunc answers one macro-cycle of the generic channel handshake:
// select, latch the command, pull the next card off the hopper, report
// initial status, offer the card's 80 columns a byte at a time, then
// report ending status once the feed cycle's delay has run out.
func (r *Reader) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
	switch {
	case !r.selected && *tags&bustag.SelOut != 0 && *tags&bustag.AdrOut != 0 && busOut == uint8(r.addr):
		r.selected = true
		*tags &^= bustag.SelOut
		*tags |= bustag.OprIn | bustag.AdrIn
		*busIn = uint8(r.addr)

	case r.selected && !r.cmdLatched && *tags&bustag.CmdOut != 0:
		r.cmdLatched = true
		r.cmd = busOut
		r.pos = 0
		r.sense = 0
		r.initStatus = r.commandAccepted()

	case r.selected && r.cmdLatched && !r.statusSent && *tags&bustag.CmdOut == 0 && *tags&bustag.SrvOut != 0:
		r.statusSent = true
		*tags |= bustag.StaIn
		*busIn = r.initStatus

	case r.selected && r.statusSent && r.initStatus == 0 && *tags&bustag.SrvOut != 0 && r.pos < r.transferLen():
		*tags |= bustag.SrvIn
		if r.cmd == device.CmdSense {
			*busIn = r.sense
		} else {
			*busIn = r.buf.Image[r.pos]
		}
		r.pos++

	case r.selected && r.statusSent && !r.completing:
		r.completing = true
		r.ready = false
		r.events.Add(r, func(int) { r.ready = true }, r.completionDelay(), 0)

	case r.selected && r.statusSent && r.completing && !r.ready:
		// Waiting on the scheduled completion event; assert nothing.

	case r.selected && r.statusSent && r.completing && r.ready:
		*tags |= bustag.StaIn
		*busIn = r.endStatus()
		r.selected = false
		r.cmdLatched = false
		r.statusSent = false
		r.completing = false
		r.ready = false
	}
}

// completionDelay charges one tick per column fed, the way tape2415 and
// printer1443 scale their delay to the data actually moved.
func (r *Reader) completionDelay() int {
	if r.cmd == device.CmdSense {
		return 1
	}
	return len(r.buf.Image)
}

// commandAccepted validates the latched command, pulling the next card
// off the hopper immediately for a read so the data phase has it in
// hand, and returns the initial status byte.
func (r *Reader) commandAccepted() uint8 {
	switch r.cmd {
	case device.CmdRead:
		if r.hopper == nil {
			r.sense = device.SenseINTVENT
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
		}
		c, err := r.hopper.ReadCard()
		switch {
		case errors.Is(err, io.EOF):
			r.sense = device.SenseINTVENT
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusExcept
		case err != nil:
			r.sense = device.SenseDATCHK
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
		}
		r.buf = *c
		return 0

	case device.CmdSense:
		return 0

	default:
		r.sense = device.SenseCMDREJ
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// transferLen bounds how many bytes this command's data phase offers:
// one sense byte, or the card's 80 columns.
func (r *Reader) transferLen() int {
	if r.cmd == device.CmdSense {
		return 1
	}
	return len(r.buf.Image)
}

func (r *Reader) endStatus() uint8 {
	if r.sense != 0 {
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusExcept
	}
	return device.StatusChnEnd | device.StatusDevEnd
}
