/*
 * microsim360 - local store register file.
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

// Package localstore implements the small 8-bit-wide register file that
// holds the architectural GPRs and FPRs plus microcode scratch, addressed
// by the dynamically computed LSA described for the data path's WS field.
// Each byte carries its own odd-parity bit the way the 2030's LS array
// does, checked on every read.
package localstore

import "errors"

// Size is the number of addressable bytes in the 2030's local store.
// Every model in internal/microengine/models.go builds its local store
// with this same Size.
const Size = 256

// GPRStride is the byte distance between consecutive general registers;
// GPR n lives at n*GPRStride, its paired FPR half (when n is even/odd FPR
// pair) at n*GPRStride+FPROffset.
const GPRStride = 16

// FPROffset is the byte offset of the floating-point register half within
// a GPR's 16-byte slot.
const FPROffset = 8

// Well-known scratch byte offsets used by the control program, grounded on
// the reference simulator's test harness accessors (get_key/set_cc etc).
const (
	StorageKeyOffset = 0x8c // PSW storage-protection key nibble, bit 3 set
	SysMaskOffset    = 0xb9 // low/high nibble system-mask scratch byte
	CCOffset         = 0xbb // low two bits hold the condition code
)

// ErrParity reports an odd-parity check failure on a local-store byte,
// the software-visible signal of model 4.x's "ROS-parity... memory
// protection key parity" machine check class.
var ErrParity = errors.New("local store parity check")

// oddParity[b] is true when b has an odd number of set bits; ORed into
// the stored value's parity flag so that a correctly written byte and its
// parity bit together always carry an odd number of set bits.
var oddParity [256]bool

func init() {
	for i := 0; i < 256; i++ {
		bits := 0
		for b := i; b != 0; b >>= 1 {
			bits += b & 1
		}
		oddParity[i] = bits%2 == 1
	}
}

// cell is one local-store byte: the data value plus its parity bit.
type cell struct {
	data   uint8
	parity bool
}

// LocalStore is an owned register file of Size bytes, replacing the
// reference simulator's global cpu_2030.LS array.
type LocalStore struct {
	cells []cell
}

// New allocates a LocalStore of n bytes.
func New(n int) *LocalStore {
	return &LocalStore{cells: make([]cell, n)}
}

// SetByte stores value at addr and computes its parity bit.
func (l *LocalStore) SetByte(addr int, value uint8) {
	l.cells[addr] = cell{data: value, parity: !oddParity[value]}
}

// GetByte returns the data byte at addr, ignoring parity.
func (l *LocalStore) GetByte(addr int) uint8 {
	return l.cells[addr].data
}

// CheckByte returns the data byte at addr and ErrParity if the stored
// parity bit no longer matches the data (a local-store parity failure).
func (l *LocalStore) CheckByte(addr int) (uint8, error) {
	c := l.cells[addr]
	if c.parity != !oddParity[c.data] {
		return c.data, ErrParity
	}
	return c.data, nil
}

// GetWord reads the big-endian 32-bit register at addr (addr should be a
// GPR base such as n*GPRStride).
func (l *LocalStore) GetWord(addr int) uint32 {
	return uint32(l.GetByte(addr))<<24 | uint32(l.GetByte(addr+1))<<16 |
		uint32(l.GetByte(addr+2))<<8 | uint32(l.GetByte(addr+3))
}

// SetWord writes a big-endian 32-bit register at addr.
func (l *LocalStore) SetWord(addr int, data uint32) {
	l.SetByte(addr, uint8(data>>24))
	l.SetByte(addr+1, uint8(data>>16))
	l.SetByte(addr+2, uint8(data>>8))
	l.SetByte(addr+3, uint8(data))
}

// GetDouble reads the big-endian 64-bit value at addr (used for FPR
// long format and doubleword scratch).
func (l *LocalStore) GetDouble(addr int) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(l.GetByte(addr+i))
	}
	return v
}

// SetDouble writes a big-endian 64-bit value at addr.
func (l *LocalStore) SetDouble(addr int, data uint64) {
	for i := 7; i >= 0; i-- {
		l.SetByte(addr+i, uint8(data))
		data >>= 8
	}
}

// GPRAddr returns the LSA of general register r.
func GPRAddr(r int) int {
	return r * GPRStride
}

// FPRAddr returns the LSA of floating-point register r's value (short
// format reads/writes the first 4 bytes, long format all 8).
func FPRAddr(r int) int {
	base := r * GPRStride
	if r&1 != 0 {
		base += 4
	}
	return base + FPROffset
}

// GetGPR reads general register r.
func (l *LocalStore) GetGPR(r int) uint32 {
	return l.GetWord(GPRAddr(r))
}

// SetGPR writes general register r.
func (l *LocalStore) SetGPR(r int, data uint32) {
	l.SetWord(GPRAddr(r), data)
}

// GetFPRShort reads floating-point register r in short (32-bit) format.
func (l *LocalStore) GetFPRShort(r int) uint32 {
	return l.GetWord(FPRAddr(r))
}

// SetFPRShort writes floating-point register r in short (32-bit) format.
func (l *LocalStore) SetFPRShort(r int, data uint32) {
	l.SetWord(FPRAddr(r), data)
}

// GetFPRLong reads floating-point register r in long (64-bit) format.
func (l *LocalStore) GetFPRLong(r int) uint64 {
	return l.GetDouble(r * GPRStride + FPROffset)
}

// SetFPRLong writes floating-point register r in long (64-bit) format.
func (l *LocalStore) SetFPRLong(r int, data uint64) {
	l.SetDouble(r*GPRStride+FPROffset, data)
}

// CC returns the two-bit condition code held in the scratch byte.
func (l *LocalStore) CC() uint8 {
	return l.GetByte(CCOffset) & 0x3
}

// SetCC stores the two-bit condition code, preserving the rest of the
// scratch byte.
func (l *LocalStore) SetCC(cc uint8) {
	b := l.GetByte(CCOffset)
	l.SetByte(CCOffset, (b & 0xfc) | (cc & 0x3))
}
