/*
 * microsim360 - bus/tag device registry.
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

// Package device defines the Device interface every peripheral state
// machine implements, and an owned per-channel registry that the channel
// subsystem polls in insertion order each macro-cycle. This mirrors the
// original simulator's add_chan/find_chan device list, made an owned
// value rather than a package-level global.
package device

// NoDev marks the absence of a device address in configuration processing.
const NoDev uint16 = 0xffff

// Common channel status byte bits, carried in the CSW and device sense.
const (
	StatusAttn   uint8 = 0x80
	StatusSMS    uint8 = 0x40
	StatusCtlEnd uint8 = 0x20
	StatusBusy   uint8 = 0x10
	StatusChnEnd uint8 = 0x08
	StatusDevEnd uint8 = 0x04
	StatusCheck  uint8 = 0x02
	StatusExcept uint8 = 0x01
)

// CCW command codes (low 2 bits plus the modifier forms channels decode).
const (
	CmdWrite uint8 = 0x1
	CmdRead  uint8 = 0x2
	CmdCTL   uint8 = 0x3
	CmdSense uint8 = 0x4
	CmdTIC   uint8 = 0x8
	CmdRDBWD uint8 = 0xc
)

// Basic sense byte 0 bits, common to every device family.
const (
	SenseCMDREJ  uint8 = 0x80
	SenseINTVENT uint8 = 0x40
	SenseBUSCHK  uint8 = 0x20
	SenseEQUCHK  uint8 = 0x10
	SenseDATCHK  uint8 = 0x08
	SenseOVRRUN  uint8 = 0x02
	SenseOPRCHK  uint8 = 0x01
)

// Device is one unit on the bus/tag interface. BusFunc is called once per
// macro-cycle with the tag lines and bus-out value the channel is driving
// this cycle; it updates tagsInOut with the lines the device asserts and
// busIn with the byte it drives back. The channel reads busIn and the
// in-tags back in the same cycle, once every device's BusFunc has run;
// they are not held over to the following cycle.
type Device interface {
	Addr() uint16
	BusFunc(tagsInOut *uint16, busOut uint8, busIn *uint8)
	Debug(opt string) error
	Shutdown()
}

// entry pairs a device with the address mask the channel matches it on,
// recorded in registration order.
type entry struct {
	dev  Device
	addr uint16
	mask uint16
}

// Registry is an owned collection of devices for one channel, polled in
// insertion order. Matches the iteration order of the original simulator's
// singly linked per-channel device list, which the REQ_IN priority
// decision in DESIGN.md depends on.
type Registry struct {
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers dev at addr, matched by subsequent lookups using mask.
// Channel unit addresses are three hex digits; mask 0xfff matches a single
// unit, 0xf00 matches every unit on a channel.
func (r *Registry) Add(dev Device, addr uint16, mask uint16) {
	r.entries = append(r.entries, entry{dev: dev, addr: addr, mask: mask})
}

// Remove drops dev from the registry, preserving the order of the rest.
func (r *Registry) Remove(dev Device) {
	for i, e := range r.entries {
		if e.dev == dev {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Find returns the first registered device whose masked address matches
// addr, in insertion order, as the hardware's daisy-chained SEL_OUT
// propagation would.
func (r *Registry) Find(addr uint16) (Device, bool) {
	for _, e := range r.entries {
		if e.addr&e.mask == addr&e.mask {
			return e.dev, true
		}
	}
	return nil, false
}

// All returns every registered device in insertion order, used to drive
// each device's BusFunc once per macro-cycle regardless of addressing.
func (r *Registry) All() []Device {
	devs := make([]Device, len(r.entries))
	for i, e := range r.entries {
		devs[i] = e.dev
	}
	return devs
}

func (r *Registry) Len() int {
	return len(r.entries)
}
