/*
 * microsim360 - shift instructions.
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

// SLL/SRL/SLA/SRA are RS-format: R1 names the shifted register, the
// effective address's low 6 bits (not its full 24) give the shift count.
// Decoded through the same RX path as everything else in rxOpcodes; R3/X2
// go unused the way effectiveAddr already ignores GPR 0 as base/index.
func shiftCount(e *Engine) uint {
	return uint(effectiveAddr(e) & 0x3f)
}

func hookSLL(e *Engine) bool {
	n := shiftCount(e)
	v := e.LS.GetGPR(e.r1)
	if n >= 32 {
		v = 0
	} else {
		v <<= n
	}
	e.LS.SetGPR(e.r1, v)
	return false
}

func hookSRL(e *Engine) bool {
	n := shiftCount(e)
	v := e.LS.GetGPR(e.r1)
	if n >= 32 {
		v = 0
	} else {
		v >>= n
	}
	e.LS.SetGPR(e.r1, v)
	return false
}

// hookSLA shifts the 31-bit magnitude left, preserving the sign bit, and
// signals fixed-point overflow if a significant bit is shifted out past
// the sign.
func hookSLA(e *Engine) bool {
	n := shiftCount(e)
	v := e.LS.GetGPR(e.r1)
	sign := v & 0x80000000
	mag := v &^ 0x80000000

	overflow := false
	for i := uint(0); i < n; i++ {
		if mag&0x40000000 != 0 {
			overflow = true
		}
		mag = (mag << 1) & 0x7fffffff
	}

	res := sign | mag
	e.LS.SetGPR(e.r1, res)
	e.psw.CC = ccFromArith(res, false)
	if overflow {
		e.psw.CC = 3
		if maskAllows(e.psw.ProgMask, irqFixOver) {
			e.triggerInterrupt(progOldPSW, progNewPSW, irqFixOver)
		}
	}
	return false
}

// hookSRA shifts the 31-bit magnitude right arithmetically; the sign bit
// is preserved and replicated into vacated high bits, matching the
// architected algebraic right shift.
func hookSRA(e *Engine) bool {
	n := shiftCount(e)
	v := int32(e.LS.GetGPR(e.r1))
	if n > 31 {
		n = 31
	}
	res := v >> n
	e.LS.SetGPR(e.r1, uint32(res))
	e.psw.CC = ccFromArith(uint32(res), false)
	return false
}
