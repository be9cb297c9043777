/*
 * microsim360 - binary/packed-decimal conversion.
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

// hookCVB implements CVB: a doubleword of packed decimal at the RX
// operand address converts to a 32-bit binary value in r1.
func hookCVB(e *Engine) bool {
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

	sign := lo & 0xf
	if sign < 0xa {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
		return false
	}

	var v uint64
	for i := 28; i >= 0; i -= 4 {
		d := (hi >> i) & 0xf
		if d > 9 {
			e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
			return false
		}
		v = v*10 + uint64(d)
	}
	for i := 28; i > 0; i -= 4 {
		d := (lo >> i) & 0xf
		if d > 9 {
			e.triggerInterrupt(progOldPSW, progNewPSW, irqData)
			return false
		}
		v = v*10 + uint64(d)
	}

	negative := sign == 0xb || sign == 0xd
	overflow := v > 1<<31
	if negative {
		v = uint64(-int64(v))
	} else {
		overflow = overflow || v == 1<<31
	}

	e.LS.SetGPR(e.r1, uint32(v))
	if overflow && maskAllows(e.psw.ProgMask, irqFixDiv) {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqFixDiv)
	}
	return false
}

// hookCVD implements CVD: r1's binary value converts to a doubleword of
// packed decimal stored at the RX operand address.
func hookCVD(e *Engine) bool {
	v := e.LS.GetGPR(e.r1)

	negative := v&0x80000000 != 0
	mag := uint64(v)
	if negative {
		mag = uint64(-int32(v))
	}

	var packed uint64
	shift := uint(4)
	for mag != 0 {
		packed |= (mag % 10) << shift
		mag /= 10
		shift += 4
	}
	if negative {
		packed |= 0xd
	} else {
		packed |= 0xc
	}

	addr := effectiveAddr(e)
	if err := e.Store.PutWord(addr, uint32(packed>>32), e.psw.Key); err != nil {
		e.reportStoreErr(err)
		return false
	}
	if err := e.Store.PutWord(addr+4, uint32(packed), e.psw.Key); err != nil {
		e.reportStoreErr(err)
	}
	return false
}
