/*
 * microsim360 - ED/EDMK editing instructions.
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

// ED/EDMK walk a pattern at operand 1 (ssLen+1 bytes) left to right,
// pulling digit nibbles from the packed-decimal source at operand 2 a
// nibble at a time. 0x20 (digit select) and 0x21 (significance start,
// EDMK's hook for capturing the first significant digit's address) pull
// the next source nibble; any other pattern byte before significance is
// replaced by the pattern's own first byte (the fill character), and
// passed through unchanged once significance has started. The source's
// trailing sign nibble is consumed but not displayed.
const (
	patDigitSelect   = 0x20
	patSignificance  = 0x21
	patFieldSep      = 0x22
)

func runEdit(e *Engine, markGPR1 bool) bool {
	length := int(e.ssLen) + 1
	patAddr := ssAddr1(e)
	srcAddr := ssAddr2(e)

	fill, err := e.Store.GetByte(patAddr, e.psw.Key)
	if err != nil {
		e.reportStoreErr(err)
		return false
	}

	significant := false
	negative := false
	highNibble := true
	var curByte uint8
	markedAddr := uint32(0)
	marked := false

	for i := 0; i < length; i++ {
		pos := patAddr + uint32(i)
		b, err := e.Store.GetByte(pos, e.psw.Key)
		if err != nil {
			e.reportStoreErr(err)
			return false
		}

		switch b {
		case patDigitSelect, patSignificance:
			var nibble uint8
			if highNibble {
				curByte, err = e.Store.GetByte(srcAddr, e.psw.Key)
				if err != nil {
					e.reportStoreErr(err)
					return false
				}
				nibble = curByte >> 4
			} else {
				nibble = curByte & 0xf
				srcAddr++
			}
			highNibble = !highNibble

			startSig := b == patSignificance
			show := significant || nibble != 0 || startSig
			if show && !significant {
				significant = true
				if markGPR1 && !marked {
					markedAddr = pos
					marked = true
				}
			}
			if significant {
				e.Store.PutByte(pos, 0xf0|nibble, e.psw.Key)
			} else {
				e.Store.PutByte(pos, fill, e.psw.Key)
			}

		case patFieldSep:
			significant = false

		default:
			if !significant {
				e.Store.PutByte(pos, fill, e.psw.Key)
			}
		}

		if !highNibble && i == length-1 {
			// Final nibble position reached with the sign not yet read;
			// consume it so CC reflects the source's actual sign.
			sign := curByte & 0xf
			negative = sign == 0xb || sign == 0xd
		}
	}

	if markGPR1 && marked {
		e.LS.SetGPR(1, markedAddr&AMASK)
	}

	switch {
	case !significant:
		e.psw.CC = 0
	case negative:
		e.psw.CC = 1
	default:
		e.psw.CC = 2
	}
	return false
}

func hookED(e *Engine) bool   { return runEdit(e, false) }
func hookEDMK(e *Engine) bool { return runEdit(e, true) }
