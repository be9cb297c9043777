/*
 * microsim360 - IBM 2540 card punch.
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

// Package punch2540 implements the punch side of the IBM 2540 card
// read/punch against the generic channel handshake in internal/channel,
// the same per-cycle BusFunc shape as devices/printer1443.
// util/card.Punch supplies the host-side stacker file; a card image is
// accumulated a column at a time during Write's data phase and handed
// to the stacker whole once the channel stops offering service out.
package punch2540

import (
	"fmt"

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

// Punch is one 2540 punch unit (the stacker side).
type Punch struct {
	addr    uint16
	stacker *card.Punch
	events  *event.Queue

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

// New constructs a 2540 punch at addr. events schedules the completion
// delay between a card's last column and its ending status, the way a
// real punch's stacking cycle takes physical time to run out.
func New(addr uint16, events *event.Queue) *Punch {
	return &Punch{addr: addr, events: events}
}

// Addr implements device.Device.
func (p *Punch) Addr() uint16 { return p.addr }

// Attach opens the stacker file per the DEV directive's FILE= and
// FORMAT= options.
func (p *Punch) Attach(opts []configparser.Option) error {
	name, ok := configparser.Get(opts, "file")
	if !ok || name == "" {
		return fmt.Errorf("punch2540: FILE option required")
	}
	mode := card.ModeText
	if fmtName, ok := configparser.Get(opts, "format"); ok {
		m, ok := card.LookupFormat(fmtName)
		if !ok {
			return fmt.Errorf("punch2540: unknown FORMAT= %q", fmtName)
		}
		mode = m
	}
	s, err := card.NewPunch(name, mode)
	if err != nil {
		return err
	}
	p.stacker = s
	return nil
}

// Shutdown implements device.Device.
func (p *Punch) Shutdown() {
	p.events.CancelAllFor(p)
	if p.stacker != nil {
		_ = p.stacker.Close()
		p.stacker = nil
	}
}

// Debug implements device.Device.
func (p *Punch) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return fmt.Errorf("punch2540: unknown debug option %q", opt)
	}
	p.debugMsk |= flag
	return nil
}

// BusFunc answers one macro-cycle of the generic channel handshake:
// select, latch the command, report initial status, accept a card's 80
// columns a byte at a time, then report ending status once the
// stacking cycle's delay has run out.
func (p *Punch) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
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
		for i := range p.buf.Image {
			p.buf.Image[i] = 0x40 // EBCDIC blank
		}
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
			p.buf.Image[p.pos] = busOut
		}
		p.pos++

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

// completionDelay charges one tick per column struck; immediate for
// sense, which moves no card.
func (p *Punch) completionDelay() int {
	if p.cmd == device.CmdSense {
		return 1
	}
	return len(p.buf.Image)
}

// commandAccepted validates the latched command and returns the initial
// status byte.
func (p *Punch) commandAccepted() uint8 {
	switch p.cmd {
	case device.CmdWrite:
		if p.stacker == nil {
			p.sense = device.SenseINTVENT
			return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
		}
		return 0
	case device.CmdSense:
		return 0
	default:
		p.sense = device.SenseCMDREJ
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
}

// transferLen bounds how many bytes this command's data phase accepts:
// one sense byte, or a full card's 80 columns.
func (p *Punch) transferLen() int {
	if p.cmd == device.CmdSense {
		return 1
	}
	return len(p.buf.Image)
}

func (p *Punch) endStatus() uint8 {
	if p.sense != 0 {
		return device.StatusChnEnd | device.StatusDevEnd | device.StatusCheck
	}
	return device.StatusChnEnd | device.StatusDevEnd
}

// finish stacks the completed card image.
func (p *Punch) finish() {
	if p.cmd != device.CmdWrite || p.stacker == nil {
		return
	}
	if err := p.stacker.WriteCard(&p.buf); err != nil {
		p.sense = device.SenseDATCHK
	}
}
