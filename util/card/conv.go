/*
 * microsim360 - card code conversion routines.
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

package card

// EbcdicToHol converts an EBCDIC byte to its 12-bit Hollerith punch pattern.
func EbcdicToHol(v uint8) uint16 {
	return ebcdicToHolTable[v]
}

// HolToEbcdic converts a 12-bit Hollerith punch pattern to an EBCDIC byte.
func HolToEbcdic(v uint16) uint8 {
	return uint8(holToEBCDICTable[v&0xfff])
}

// HolToASCII converts a Hollerith punch pattern to its ASCII character
// under the IBM 029 keypunch code set.
func HolToASCII(v uint16) uint8 {
	return holToASCIITable[v&0xfff]
}

// ASCIIToHol converts an ASCII character to its Hollerith punch pattern
// under the IBM 029 keypunch code set. Returns 0xf000 if unpunchable.
func ASCIIToHol(v uint8) uint16 {
	if v >= 128 {
		return 0xf000
	}
	return asciiToHol29[v]
}
