/*
 * microsim360 - EBCDIC/ASCII translation tables.
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

// Package xlat holds the EBCDIC <-> ASCII code page tables shared by the
// card, printer and console devices.
package xlat

// EBCDICToASCII converts an EBCDIC byte to its printable ASCII equivalent.
// Unassigned code points map to a period, matching how the line printer and
// console devices render untranslatable bytes.
var EBCDICToASCII [256]byte

// ASCIIToEBCDIC is the inverse of EBCDICToASCII.
var ASCIIToEBCDIC [256]byte

// table lists the printable EBCDIC code points and their ASCII character.
// Built from the standard IBM EBCDIC (code page 037) printable subset used
// by 1403/1443 printers and 1050/1052 consoles of the period.
var table = []struct {
	ebcdic byte
	ascii  byte
}{
	{0x40, ' '}, {0x4b, '.'}, {0x4c, '<'}, {0x4d, '('}, {0x4e, '+'}, {0x4f, '|'},
	{0x50, '&'}, {0x5a, '!'}, {0x5b, '$'}, {0x5c, '*'}, {0x5d, ')'}, {0x5e, ';'},
	{0x5f, '~'}, {0x60, '-'}, {0x61, '/'}, {0x6b, ','}, {0x6c, '%'}, {0x6d, '_'},
	{0x6e, '>'}, {0x6f, '?'}, {0x7a, ':'}, {0x7b, '#'}, {0x7c, '@'}, {0x7d, '\''},
	{0x7e, '='}, {0x7f, '"'},
	{0x81, 'a'}, {0x82, 'b'}, {0x83, 'c'}, {0x84, 'd'}, {0x85, 'e'}, {0x86, 'f'},
	{0x87, 'g'}, {0x88, 'h'}, {0x89, 'i'}, {0x91, 'j'}, {0x92, 'k'}, {0x93, 'l'},
	{0x94, 'm'}, {0x95, 'n'}, {0x96, 'o'}, {0x97, 'p'}, {0x98, 'q'}, {0x99, 'r'},
	{0xa2, 's'}, {0xa3, 't'}, {0xa4, 'u'}, {0xa5, 'v'}, {0xa6, 'w'}, {0xa7, 'x'},
	{0xa8, 'y'}, {0xa9, 'z'},
	{0xc1, 'A'}, {0xc2, 'B'}, {0xc3, 'C'}, {0xc4, 'D'}, {0xc5, 'E'}, {0xc6, 'F'},
	{0xc7, 'G'}, {0xc8, 'H'}, {0xc9, 'I'}, {0xd1, 'J'}, {0xd2, 'K'}, {0xd3, 'L'},
	{0xd4, 'M'}, {0xd5, 'N'}, {0xd6, 'O'}, {0xd7, 'P'}, {0xd8, 'Q'}, {0xd9, 'R'},
	{0xe2, 'S'}, {0xe3, 'T'}, {0xe4, 'U'}, {0xe5, 'V'}, {0xe6, 'W'}, {0xe7, 'X'},
	{0xe8, 'Y'}, {0xe9, 'Z'},
	{0xf0, '0'}, {0xf1, '1'}, {0xf2, '2'}, {0xf3, '3'}, {0xf4, '4'}, {0xf5, '5'},
	{0xf6, '6'}, {0xf7, '7'}, {0xf8, '8'}, {0xf9, '9'},
}

func init() {
	for i := range EBCDICToASCII {
		EBCDICToASCII[i] = '.'
	}
	for i := range ASCIIToEBCDIC {
		ASCIIToEBCDIC[i] = 0x40 // blank
	}
	for _, e := range table {
		EBCDICToASCII[e.ebcdic] = e.ascii
		ASCIIToEBCDIC[e.ascii] = e.ebcdic
	}
}
