/*
 * microsim360 - main store with protection keys.
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

// Package store implements main storage: a byte-addressable array up to
// 16 MiB, with a parallel array of 4-bit protection keys, one per 2048-byte
// block. Unlike the original simulator's package-level mem global, Store is
// an owned value constructed with a fixed size so multiple machine
// instances (and tests) never share state.
package store

import "errors"

// AMASK is the 24-bit address mask S/360 storage addressing is limited to.
const AMASK uint32 = 0x00ffffff

const blockShift = 11 // 2048-byte protection-key blocks

// Exceptions raised by out-of-range or misaligned accesses. The caller
// (micro-engine) is responsible for turning these into the architectural
// addressing/specification program interrupt.
var (
	ErrAddressing   = errors.New("addressing exception")
	ErrSpecification = errors.New("specification exception")
	ErrProtection   = errors.New("protection exception")
)

// Store is one machine's main memory plus its protection-key array.
type Store struct {
	mem  []byte
	key  []uint8
	size uint32
}

// New allocates a Store of size bytes, rounded down to a word boundary.
func New(size uint32) *Store {
	size &= ^uint32(3)
	blocks := (size + (1 << blockShift) - 1) >> blockShift
	return &Store{
		mem:  make([]byte, size),
		key:  make([]uint8, blocks),
		size: size,
	}
}

// Size returns the configured storage size in bytes.
func (s *Store) Size() uint32 {
	return s.size
}

// CheckAddr reports whether addr is a valid byte address in this store.
func (s *Store) CheckAddr(addr uint32) bool {
	return addr < s.size
}

// GetKey returns the 4-bit protection key (plus fetch-protect/reference/
// change bits as stored) for the 2K block containing addr.
func (s *Store) GetKey(addr uint32) uint8 {
	return s.key[addr>>blockShift]
}

// PutKey sets the protection key for the 2K block containing addr.
func (s *Store) PutKey(addr uint32, key uint8) {
	s.key[addr>>blockShift] = key
}

// checkProtect enforces the storage-key vs PSW-key comparison: a reference
// with a nonzero access key that does not match the block's key is a
// protection exception. A block's key byte holds the storage key in its
// high nibble, then the fetch-protect (0x8), reference (0x4) and change
// (0x2) bits. Fetch-protect additionally blocks reads when the block's
// fetch-protect bit is set and the keys mismatch.
func (s *Store) checkProtect(addr uint32, accessKey uint8, fetch bool) bool {
	if accessKey == 0 {
		return true
	}
	blockKey := s.key[addr>>blockShift]
	storageKey := blockKey >> 4
	if storageKey == accessKey {
		return true
	}
	if fetch && blockKey&0x8 == 0 {
		return true
	}
	return false
}

// GetByte fetches one byte, checked against accessKey's storage protection.
func (s *Store) GetByte(addr uint32, accessKey uint8) (uint8, error) {
	if !s.CheckAddr(addr) {
		return 0, ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, true) {
		return 0, ErrProtection
	}
	s.key[addr>>blockShift] |= 0x4
	return s.mem[addr], nil
}

// PutByte stores one byte, checked against accessKey's storage protection.
func (s *Store) PutByte(addr uint32, data uint8, accessKey uint8) error {
	if !s.CheckAddr(addr) {
		return ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, false) {
		return ErrProtection
	}
	s.mem[addr] = data
	s.key[addr>>blockShift] |= 0x6
	return nil
}

// GetHalf fetches a big-endian halfword. addr must be 2-byte aligned.
func (s *Store) GetHalf(addr uint32, accessKey uint8) (uint16, error) {
	if addr&1 != 0 {
		return 0, ErrSpecification
	}
	if !s.CheckAddr(addr + 1) {
		return 0, ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, true) {
		return 0, ErrProtection
	}
	s.key[addr>>blockShift] |= 0x4
	return uint16(s.mem[addr])<<8 | uint16(s.mem[addr+1]), nil
}

// PutHalf stores a big-endian halfword. addr must be 2-byte aligned.
func (s *Store) PutHalf(addr uint32, data uint16, accessKey uint8) error {
	if addr&1 != 0 {
		return ErrSpecification
	}
	if !s.CheckAddr(addr + 1) {
		return ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, false) {
		return ErrProtection
	}
	s.mem[addr] = uint8(data >> 8)
	s.mem[addr+1] = uint8(data)
	s.key[addr>>blockShift] |= 0x6
	return nil
}

// GetWord fetches a big-endian word. addr must be 4-byte aligned.
func (s *Store) GetWord(addr uint32, accessKey uint8) (uint32, error) {
	if addr&3 != 0 {
		return 0, ErrSpecification
	}
	if !s.CheckAddr(addr + 3) {
		return 0, ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, true) {
		return 0, ErrProtection
	}
	s.key[addr>>blockShift] |= 0x4
	return uint32(s.mem[addr])<<24 | uint32(s.mem[addr+1])<<16 |
		uint32(s.mem[addr+2])<<8 | uint32(s.mem[addr+3]), nil
}

// PutWord stores a big-endian word. addr must be 4-byte aligned.
func (s *Store) PutWord(addr uint32, data uint32, accessKey uint8) error {
	if addr&3 != 0 {
		return ErrSpecification
	}
	if !s.CheckAddr(addr + 3) {
		return ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, false) {
		return ErrProtection
	}
	s.mem[addr] = uint8(data >> 24)
	s.mem[addr+1] = uint8(data >> 16)
	s.mem[addr+2] = uint8(data >> 8)
	s.mem[addr+3] = uint8(data)
	s.key[addr>>blockShift] |= 0x6
	return nil
}

// PutWordMask stores the bytes of data selected by mask (one bit per byte,
// MSB first), leaving the others untouched. Used by partial-word TR/ex
// style micro-orders in the data path.
func (s *Store) PutWordMask(addr uint32, data uint32, mask uint8, accessKey uint8) error {
	if addr&3 != 0 {
		return ErrSpecification
	}
	if !s.CheckAddr(addr + 3) {
		return ErrAddressing
	}
	if !s.checkProtect(addr, accessKey, false) {
		return ErrProtection
	}
	bytes := [4]uint8{uint8(data >> 24), uint8(data >> 16), uint8(data >> 8), uint8(data)}
	for i := 0; i < 4; i++ {
		if mask&(0x8>>uint(i)) != 0 {
			s.mem[addr+uint32(i)] = bytes[i]
		}
	}
	s.key[addr>>blockShift] |= 0x6
	return nil
}

// GetWordUnchecked fetches a word bypassing alignment, bounds and
// protection checks, for microcode paths (e.g. ROS bump-store shadow
// reads) that are known by construction to be in range and aligned.
func (s *Store) GetWordUnchecked(addr uint32) uint32 {
	addr &= ^uint32(3)
	return uint32(s.mem[addr])<<24 | uint32(s.mem[addr+1])<<16 |
		uint32(s.mem[addr+2])<<8 | uint32(s.mem[addr+3])
}

// SetWordUnchecked stores a word bypassing alignment, bounds and
// protection checks; sets the reference and change bits as a normal
// store would.
func (s *Store) SetWordUnchecked(addr uint32, data uint32) {
	addr &= ^uint32(3)
	s.mem[addr] = uint8(data >> 24)
	s.mem[addr+1] = uint8(data >> 16)
	s.mem[addr+2] = uint8(data >> 8)
	s.mem[addr+3] = uint8(data)
	s.key[addr>>blockShift] |= 0x6
}
