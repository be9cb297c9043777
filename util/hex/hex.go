/*
 * microsim360 - hex formatting helpers for trace output.
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

// Package hex formats register, memory and bus/tag values for trace logs
// without pulling in fmt's reflection-based formatting on every cycle.
package hex

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatWord appends each 32-bit word as 8 hex digits, space separated.
func FormatWord(str *strings.Builder, word []uint32) {
	for _, full := range word {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatHalf appends each 16-bit half word as 4 hex digits.
func FormatHalf(str *strings.Builder, space bool, half []uint16) {
	for _, word := range half {
		shift := 12
		for range 4 {
			str.WriteByte(hexMap[(word>>shift)&0xf])
			shift -= 4
		}
		if space {
			str.WriteByte(' ')
		}
	}
	if !space {
		str.WriteByte(' ')
	}
}

// FormatBytes appends each byte as 2 hex digits, optionally space separated.
func FormatBytes(str *strings.Builder, space bool, data []uint8) {
	for _, by := range data {
		str.WriteByte(hexMap[(by>>4)&0xf])
		str.WriteByte(hexMap[by&0xf])
		if space {
			str.WriteByte(' ')
		}
	}
}

func FormatByte(str *strings.Builder, data byte) {
	str.WriteByte(hexMap[(data>>4)&0xf])
	str.WriteByte(hexMap[data&0xf])
}

func FormatDigit(str *strings.Builder, data byte) {
	str.WriteByte(hexMap[data&0xf])
}

// FormatDecimal renders a byte 0-255 as decimal digits, used for sense
// byte counts and record position traces.
func FormatDecimal(str *strings.Builder, num byte) {
	if num >= 100 {
		str.WriteByte(hexMap[num/100])
		num %= 100
	}
	if num >= 10 {
		str.WriteByte(hexMap[num/10])
		num %= 10
	}
	str.WriteByte(hexMap[num])
}

// FormatBits renders a bitset as a string of '1'/'0' characters, most
// significant bit first, used to trace bus/tag lines and ROS status
// registers where individual bit positions matter more than the hex value.
func FormatBits(str *strings.Builder, value uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		if value&(1<<uint(i)) != 0 {
			str.WriteByte('1')
		} else {
			str.WriteByte('0')
		}
	}
}

// Word8 formats a single 32-bit value as 8 hex digits (no trailing space).
func Word8(v uint32) string {
	var b strings.Builder
	shift := 28
	for range 8 {
		b.WriteByte(hexMap[(v>>shift)&0xf])
		shift -= 4
	}
	return b.String()
}

// Byte2 formats a single byte as 2 hex digits.
func Byte2(v byte) string {
	return string([]byte{hexMap[(v>>4)&0xf], hexMap[v&0xf]})
}
