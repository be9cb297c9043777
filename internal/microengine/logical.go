/*
 * microsim360 - SS-format logical instructions.
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

// MVC/CLC/NC/OC/XC/TR/TRT all carry a single length byte (ssLen, length
// minus one, up to 256 bytes) and two SS operand addresses. MVC moves
// byte-by-byte left to right rather than through a host memmove, so an
// overlapping destination replicates the way the architecture defines
// (e.g. propagating one byte across the whole field).
func hookMVC(e *Engine) bool {
	n := int(e.ssLen) + 1
	dst := ssAddr1(e)
	src := ssAddr2(e)
	for i := 0; i < n; i++ {
		b, err := e.Store.GetByte(src+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		if err := e.Store.PutByte(dst+uint32(i), b, e.psw.Key); err != nil {
			e.reportStoreErr(err)
			return false
		}
	}
	return false
}

func hookCLC(e *Engine) bool {
	n := int(e.ssLen) + 1
	a1 := ssAddr1(e)
	a2 := ssAddr2(e)
	for i := 0; i < n; i++ {
		b1, err := e.Store.GetByte(a1+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		b2, err := e.Store.GetByte(a2+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		if b1 != b2 {
			if b1 < b2 {
				e.psw.CC = 1
			} else {
				e.psw.CC = 2
			}
			return false
		}
	}
	e.psw.CC = 0
	return false
}

// logicalOp applies fn byte-by-byte across the two SS operands, storing
// the result at operand 1 and setting CC to 1 if any result byte is
// nonzero, 0 otherwise, the shared shape of NC/OC/XC.
func logicalOp(e *Engine, fn func(a, b uint8) uint8) bool {
	n := int(e.ssLen) + 1
	dst := ssAddr1(e)
	src := ssAddr2(e)
	nonzero := false
	for i := 0; i < n; i++ {
		b1, err := e.Store.GetByte(dst+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		b2, err := e.Store.GetByte(src+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		r := fn(b1, b2)
		if r != 0 {
			nonzero = true
		}
		if err := e.Store.PutByte(dst+uint32(i), r, e.psw.Key); err != nil {
			e.reportStoreErr(err)
			return false
		}
	}
	if nonzero {
		e.psw.CC = 1
	} else {
		e.psw.CC = 0
	}
	return false
}

func hookNC(e *Engine) bool { return logicalOp(e, func(a, b uint8) uint8 { return a & b }) }
func hookOC(e *Engine) bool { return logicalOp(e, func(a, b uint8) uint8 { return a | b }) }
func hookXC(e *Engine) bool { return logicalOp(e, func(a, b uint8) uint8 { return a ^ b }) }

// hookTR translates the bytes at operand 1 in place, each one replaced by
// the byte at operand2[byte], the architected table-lookup semantics.
func hookTR(e *Engine) bool {
	n := int(e.ssLen) + 1
	dst := ssAddr1(e)
	table := ssAddr2(e)
	for i := 0; i < n; i++ {
		b, err := e.Store.GetByte(dst+uint32(i), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		v, err := e.Store.GetByte(table+uint32(b), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		if err := e.Store.PutByte(dst+uint32(i), v, e.psw.Key); err != nil {
			e.reportStoreErr(err)
			return false
		}
	}
	return false
}

// hookTRT scans operand 1 for the first byte whose entry in the operand2
// function table is nonzero. On a match, GPR1's low byte takes the
// function byte and GPR2's low 24 bits take the matched byte's address;
// CC is 2 if the match was the field's last byte, 1 otherwise, 0 if the
// whole field scanned clean.
func hookTRT(e *Engine) bool {
	n := int(e.ssLen) + 1
	src := ssAddr1(e)
	table := ssAddr2(e)
	for i := 0; i < n; i++ {
		addr := src + uint32(i)
		b, err := e.Store.GetByte(addr, e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		fn, err := e.Store.GetByte(table+uint32(b), e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}
		if fn == 0 {
			continue
		}
		r1 := e.LS.GetGPR(1) &^ 0xff
		e.LS.SetGPR(1, r1|uint32(fn))
		e.LS.SetGPR(2, addr&AMASK)
		if i == n-1 {
			e.psw.CC = 2
		} else {
			e.psw.CC = 1
		}
		return false
	}
	e.psw.CC = 0
	return false
}
