/*
 * microsim360 - packed-decimal arithmetic (ZAP/AP/SP).
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

import "math/big"

// ZAP/AP/SP are SS-format with independent operand lengths (ssLen1 for
// operand 1, ssLen2 for operand 2, each a byte count minus one, up to 16
// bytes/31 digits) rather than the single shared ssLen of MVC-family
// instructions. A full operand can carry more digits than fit in a
// uint64 (CVB/CVD's approach), so this file works in math/big instead.

// loadPacked decodes length packed-decimal bytes at addr into a magnitude
// and a negative flag. A non-decimal digit or sign nibble reports ok=false
// so the caller can raise a data exception.
func loadPacked(e *Engine, addr uint32, length int) (mag *big.Int, negative bool, ok bool) {
	mag = new(big.Int)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		b, err := e.Store.GetByte(addr+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return nil, false, false
		}
		hi := b >> 4
		lo := b & 0xf
		if i == length-1 {
			if hi > 9 {
				return nil, false, false
			}
			mag.Mul(mag, ten)
			mag.Add(mag, big.NewInt(int64(hi)))
			switch lo {
			case 0xb, 0xd:
				negative = true
			case 0xa, 0xc, 0xe, 0xf:
				negative = false
			default:
				return nil, false, false
			}
			continue
		}
		if hi > 9 || lo > 9 {
			return nil, false, false
		}
		mag.Mul(mag, ten)
		mag.Add(mag, big.NewInt(int64(hi)))
		mag.Mul(mag, ten)
		mag.Add(mag, big.NewInt(int64(lo)))
	}
	return mag, negative, true
}

// storePacked encodes mag/negative into length packed-decimal bytes at
// addr, truncating from the high-order end if mag needs more digits than
// length holds (reported as overflow). Digit position 0 is the units
// digit, living next to the sign nibble in the rightmost byte; position
// 2*length-2 is the leftmost (most significant) digit slot.
func storePacked(e *Engine, addr uint32, length int, mag *big.Int, negative bool) (overflow bool) {
	digits := make([]uint8, 0, 2*length)
	m := new(big.Int).Set(mag)
	ten := big.NewInt(10)
	mod := new(big.Int)
	for m.Sign() != 0 {
		m.DivMod(m, ten, mod)
		digits = append(digits, uint8(mod.Int64()))
	}
	capacity := 2*length - 1
	if len(digits) > capacity {
		overflow = true
		digits = digits[:capacity]
	}

	sign := uint8(0xc)
	if negative {
		sign = 0xd
	}

	buf := make([]uint8, length)
	buf[length-1] = sign
	for k := 0; k < capacity; k++ {
		var d uint8
		if k < len(digits) {
			d = digits[k]
		}
		nibble := 2*length - 2 - k
		bi := nibble / 2
		if nibble%2 == 0 {
			buf[bi] |= d << 4
		} else {
			buf[bi] |= d
		}
	}

	for i, b := range buf {
		if err := e.Store.PutByte(addr+uint32(i), b, e.psw.Key); err != nil {
			e.reportStoreErr(err)
			return overflow
		}
	}
	return overflow
}

func hookZAP(e *Engine) bool {
	l1 := e.ssLen1 + 1
	l2 := e.ssLen2 + 1
	a1 := ssAddr1(e)
	a2 := ssAddr2(e)

	mag, neg, ok := loadPacked(e, a2, l2)
	if !ok {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
		return false
	}
	overflow := storePacked(e, a1, l1, mag, neg)
	e.psw.CC = decimalCC(mag, neg)
	if overflow && maskAllows(e.psw.ProgMask, irqDecOver) {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqDecOver)
	}
	return false
}

func decimalArith(e *Engine, sub bool) bool {
	l1 := e.ssLen1 + 1
	l2 := e.ssLen2 + 1
	a1 := ssAddr1(e)
	a2 := ssAddr2(e)

	m1, n1, ok := loadPacked(e, a1, l1)
	if !ok {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
		return false
	}
	m2, n2, ok := loadPacked(e, a2, l2)
	if !ok {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
		return false
	}
	if n1 {
		m1.Neg(m1)
	}
	if n2 {
		m2.Neg(m2)
	}
	if sub {
		m2.Neg(m2)
	}
	sum := new(big.Int).Add(m1, m2)
	neg := sum.Sign() < 0
	mag := new(big.Int).Abs(sum)

	overflow := storePacked(e, a1, l1, mag, neg)
	e.psw.CC = decimalCC(mag, neg)
	if overflow && maskAllows(e.psw.ProgMask, irqDecOver) {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqDecOver)
	}
	return false
}

func hookAP(e *Engine) bool { return decimalArith(e, false) }
func hookSP(e *Engine) bool { return decimalArith(e, true) }

// decimalCC sets CC per a decimal arithmetic/zero-and-add result: 0 zero,
// 1 negative, 2 positive (overflow, when masked in, supersedes this at
// the call site the way fixed-point arithmetic's CC 3 does).
func decimalCC(mag *big.Int, negative bool) uint8 {
	switch {
	case mag.Sign() == 0:
		return 0
	case negative:
		return 1
	default:
		return 2
	}
}
