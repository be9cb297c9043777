/*
 * microsim360 - micro-engine data path.
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

package microengine

import "github.com/rcornwell/microsim360/internal/ros"

// Status latches (STAA..STAH), set by the SS field's enumerated actions
// and read back by the AB/BB condition test selectors.
type statLatches struct {
	A, B, C, D, E, F, G, H bool
}

// datapath holds the working registers the per-cycle sequence in spec
// §4.1 names: the parallel/serial adder operands and result, the mover
// inputs/output, and the addressable scratch registers A/B/S/T/D/F/G/L/H.
type datapath struct {
	A, B, IC uint32
	S, T     uint32
	D, F     uint32
	G        uint32
	L, R     uint32
	M, Q     uint32
	H        uint32
	SAR      uint32
	SDR      uint32

	CAR bool // saved adder carry latch
	AUX bool // decimal auxiliary carry latch

	stat statLatches

	lsa int // local-store address computed this cycle by the WS field
}

// busValue resolves a ros bus selector to its current value, the Go
// equivalent of the per-cycle LX/RY bus-gating decode.
func (d *datapath) busValue(sel int, ls *localStoreView) uint32 {
	switch sel {
	case ros.BusA:
		return d.A
	case ros.BusB:
		return d.B
	case ros.BusIC:
		return d.IC
	case ros.BusS:
		return d.S
	case ros.BusT:
		return d.T
	case ros.BusD:
		return d.D
	case ros.BusF:
		return d.F
	case ros.BusG:
		return d.G
	case ros.BusL:
		return d.L
	case ros.BusR:
		return d.R
	case ros.BusM:
		return d.M
	case ros.BusQ:
		return d.Q
	case ros.BusH:
		return d.H
	case ros.BusSAR:
		return d.SAR
	case ros.BusSDR:
		return d.SDR
	case ros.BusLS:
		return ls.read(d.lsa)
	case ros.BusMem:
		return d.SDR
	default:
		return 0
	}
}

// localStoreView is the narrow interface datapath needs from the owning
// engine's LocalStore, kept small so the data path stays unit-testable
// without constructing a full Engine.
type localStoreView struct {
	read  func(addr int) uint32
	write func(addr int, v uint32)
}

// mover combines the left and right mover inputs per the MV field.
func mover(fn int, left, right uint8) uint8 {
	switch fn {
	case ros.MoverOr:
		return left | right
	case ros.MoverAnd:
		return left & right
	case ros.MoverXor:
		return left ^ right
	case ros.MoverNumeric:
		return right & 0x0f
	case ros.MoverZone:
		return right & 0xf0
	case ros.MoverCharSelect:
		return right
	case ros.MoverCross, ros.MoverNone:
		fallthrough
	default:
		return left
	}
}

// adderResult is the parallel adder's full result: sum, carry-out and
// fixed-point overflow (XOR of carry into and out of the sign bit).
type adderResult struct {
	sum      uint32
	carryOut bool
	overflow bool
}

// addWords computes left + right + carryIn, detecting fixed-point
// overflow as the reference architecture defines it (carry into the sign
// bit position differs from carry out of it).
func addWords(left, right uint32, carryIn bool) adderResult {
	var carry uint64
	if carryIn {
		carry = 1
	}
	full := uint64(left) + uint64(right) + carry
	sum := uint32(full)

	signCarryIn := (uint64(left&0x7fffffff) + uint64(right&0x7fffffff) + carry) >= (1 << 31)
	carryOut := full >= (1 << 32)

	return adderResult{
		sum:      sum,
		carryOut: carryOut,
		overflow: signCarryIn != carryOut,
	}
}

// shift applies the AL field's shift/merge pattern to v.
func shift(pattern int, v uint32) uint32 {
	switch pattern {
	case ros.ShiftLeft1:
		return v << 1
	case ros.ShiftRight1:
		return v >> 1
	case ros.ShiftLeft4:
		return v << 4
	case ros.ShiftRight4:
		return v >> 4
	default:
		return v
	}
}
