/*
 * microsim360 - bus/tag line definitions.
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

// Package bustag defines the sixteen bus/tag lines of the channel
// interface and a double-buffered Latch that carries them one cycle at a
// time, the way the physical cable's out-tags settle before a device's
// in-tags are sampled on the following tick.
package bustag

// Tag bits, MSB-first in a 16-bit word exactly as the reference
// simulator's print_tags table lays them out. Bit 7 and bits 13-15 are
// unused spares on the real cable.
const (
	SelOut uint16 = 0x8000 >> iota
	AdrOut
	CmdOut
	SrvOut
	SupOut
	HldOut
	OprOut
	_spare7

	OprIn
	AdrIn
	StaIn
	SrvIn
	ReqIn
)

// OutMask is every tag line the CPU/channel drives.
const OutMask = SelOut | AdrOut | CmdOut | SrvOut | SupOut | HldOut | OprOut

// InMask is every tag line a device drives back.
const InMask = OprIn | AdrIn | StaIn | SrvIn | ReqIn

// Latch holds the current and next cycle's tag/bus state. Writers this
// cycle set Next*; Swap makes Next the visible Cur for the following
// cycle, matching the channel/device double buffering described for the
// per-macro-cycle bus/tag protocol.
type Latch struct {
	CurTags uint16
	CurBus  uint8

	NextTags uint16
	NextBus  uint8
}

// Swap commits the pending cycle's tags/bus as current and clears the
// pending state for the next cycle's writers to fill in.
func (l *Latch) Swap() {
	l.CurTags = l.NextTags
	l.CurBus = l.NextBus
	l.NextTags = 0
	l.NextBus = 0
}

// Assert ORs tags into the pending cycle's tag state.
func (l *Latch) Assert(tags uint16) {
	l.NextTags |= tags
}

// Drop clears tags from the pending cycle's tag state.
func (l *Latch) Drop(tags uint16) {
	l.NextTags &^= tags
}

// Has reports whether every bit in tags is set in the current (settled)
// tag state.
func (l *Latch) Has(tags uint16) bool {
	return l.CurTags&tags == tags
}
