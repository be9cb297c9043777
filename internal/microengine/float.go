/*
 * microsim360 - hexadecimal floating-point instructions.
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

// This file gives the 2030 its four floating-point registers (0, 2, 4, 6)
// and the subset of the architected hexadecimal floating-point instruction
// set this repo wires up: LD/STD/LE/STE (pure bit load/store, no rounding
// involved) and AD/SD/AE/SE (add/subtract). The retrieved material has no
// micro-order-level hex-float adder to port, so arithmetic here converts
// the IBM characteristic/fraction bit pattern to a Go float64, computes in
// that, and renormalizes back to hex float form, rather than emulating the
// real guard-digit-by-guard-digit hex adder. Close enough to exercise the
// opcodes and drive the condition code; not bit-exact with real 360
// rounding behavior.
package microengine

import "math"

// fpIndex maps an architected floating-point register number (must be
// even: 0, 2, 4 or 6) to this engine's fpr slot.
func fpIndex(r int) int {
	return (r >> 1) & 0x3
}

// hexFloatLongToFloat64 decodes a 64-bit long hex-float bit pattern.
func hexFloatLongToFloat64(bits uint64) float64 {
	if bits == 0 {
		return 0
	}
	sign := bits>>63 != 0
	exp := int((bits >> 56) & 0x7f)
	frac := bits & 0x00ffffffffffffff
	v := float64(frac) / float64(1<<56)
	v *= math.Pow(16, float64(exp-64))
	if sign {
		v = -v
	}
	return v
}

// float64ToHexFloatLong renormalizes a Go float64 into a 64-bit long
// hex-float bit pattern (characteristic excess-64, 56-bit fraction).
func float64ToHexFloatLong(v float64) uint64 {
	if v == 0 {
		return 0
	}
	sign := uint64(0)
	if v < 0 {
		sign = 1
		v = -v
	}
	exp := 64
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	frac := uint64(v * float64(1<<56))
	return sign<<63 | (uint64(exp)&0x7f)<<56 | (frac & 0x00ffffffffffffff)
}

func hexFloatShortToFloat64(bits uint32) float64 {
	return hexFloatLongToFloat64(uint64(bits) << 32)
}

func float64ToHexFloatShort(v float64) uint32 {
	return uint32(float64ToHexFloatLong(v) >> 32)
}

func hookLD(e *Engine) bool {
	addr := effectiveAddr(e)
	hi, err := e.Store.GetWord(addr, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	lo, err := e.Store.GetWord(addr+4, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.fpr[fpIndex(e.r1)] = uint64(hi)<<32 | uint64(lo)
	return false
}

func hookSTD(e *Engine) bool {
	addr := effectiveAddr(e)
	v := e.fpr[fpIndex(e.r1)]
	if err := e.Store.PutWord(addr, uint32(v>>32), e.psw.Key); err != nil {
		e.reportStoreErr(err)
		return false
	}
	if err := e.Store.PutWord(addr+4, uint32(v), e.psw.Key); err != nil {
		e.reportStoreErr(err)
	}
	return false
}

func hookLE(e *Engine) bool {
	addr := effectiveAddr(e)
	w, err := e.Store.GetWord(addr, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.fpr[fpIndex(e.r1)] = uint64(w) << 32
	return false
}

func hookSTE(e *Engine) bool {
	addr := effectiveAddr(e)
	v := uint32(e.fpr[fpIndex(e.r1)] >> 32)
	if err := e.Store.PutWord(addr, v, e.psw.Key); err != nil {
		e.reportStoreErr(err)
	}
	return false
}

// fpArithLong implements AD/SD: add (or, with sub set, subtract) the
// doubleword at the RX operand address into FP register r1.
func fpArithLong(e *Engine, sub bool) bool {
	addr := effectiveAddr(e)
	hi, err := e.Store.GetWord(addr, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	lo, err := e.Store.GetWord(addr+4, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	op := hexFloatLongToFloat64(uint64(hi)<<32 | uint64(lo))
	idx := fpIndex(e.r1)
	acc := hexFloatLongToFloat64(e.fpr[idx])
	if sub {
		acc -= op
	} else {
		acc += op
	}
	e.fpr[idx] = float64ToHexFloatLong(acc)
	e.psw.CC = fpCC(acc)
	return false
}

func fpArithShort(e *Engine, sub bool) bool {
	addr := effectiveAddr(e)
	w, err := e.Store.GetWord(addr, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	op := hexFloatShortToFloat64(w)
	idx := fpIndex(e.r1)
	acc := hexFloatShortToFloat64(uint32(e.fpr[idx] >> 32))
	if sub {
		acc -= op
	} else {
		acc += op
	}
	e.fpr[idx] = uint64(float64ToHexFloatShort(acc)) << 32
	e.psw.CC = fpCC(acc)
	return false
}

func hookAD(e *Engine) bool { return fpArithLong(e, false) }
func hookSD(e *Engine) bool { return fpArithLong(e, true) }
func hookAE(e *Engine) bool { return fpArithShort(e, false) }
func hookSE(e *Engine) bool { return fpArithShort(e, true) }

// fpCC sets CC per a floating-point arithmetic result: 0 zero, 1
// negative, 2 positive (the architecture has no CC 3 for floating point;
// exponent overflow/underflow route through their own program checks,
// which this simplified adder does not detect).
func fpCC(v float64) uint8 {
	switch {
	case v == 0:
		return 0
	case v < 0:
		return 1
	default:
		return 2
	}
}
