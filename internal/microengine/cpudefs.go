/*
 * microsim360 - micro-engine CPU definitions.
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

// PSW system-mask / program-mask bits.
const (
	extEnable uint8 = 0x01
	irqEnable uint8 = 0x02
	datEnable uint8 = 0x04
	perEnable uint8 = 0x40

	progMachineCheck uint8 = 0x04
	progWait         uint8 = 0x02
	progProblem      uint8 = 0x01

	maskFixOver  uint8 = 0x08
	maskDecOver  uint8 = 0x04
	maskExpUnder uint8 = 0x02
	maskSignif   uint8 = 0x01
)

// Fixed low-core interrupt-vector and old/new PSW addresses, identical
// across every model.
const (
	extOldPSW  uint32 = 0x18
	svcOldPSW  uint32 = 0x20
	progOldPSW uint32 = 0x28
	mcOldPSW   uint32 = 0x30
	ioOldPSW   uint32 = 0x38
	extNewPSW  uint32 = 0x58
	svcNewPSW  uint32 = 0x60
	progNewPSW uint32 = 0x68
	mcNewPSW   uint32 = 0x70
	ioNewPSW   uint32 = 0x78
)

// Program-interrupt codes (directed through progOldPSW/progNewPSW).
const (
	irqOper     uint16 = 0x0001
	irqPriv     uint16 = 0x0002
	irqExec     uint16 = 0x0003
	irqProt     uint16 = 0x0004
	irqAddr     uint16 = 0x0005
	irqSpec     uint16 = 0x0006
	irqData     uint16 = 0x0007
	irqFixOver  uint16 = 0x0008
	irqFixDiv   uint16 = 0x0009
	irqDecOver  uint16 = 0x000a
	irqDecDiv   uint16 = 0x000b
	irqExpOver  uint16 = 0x000c
	irqExpUnder uint16 = 0x000d
	irqSignif   uint16 = 0x000e
	irqFPDiv    uint16 = 0x000f
)

// AMASK masks an address to the architected 24 bits.
const AMASK uint32 = 0x00ffffff

// PSW is the architected program status word, held split out for direct
// access by the data path; Pack/Unpack move it to/from its 8-byte main
// store or local-store resident form.
type PSW struct {
	SysMask  uint8
	Key      uint8
	AMWP     uint8
	IntCode  uint16
	ILC      uint8
	CC       uint8
	ProgMask uint8
	IA       uint32
}

// Pack renders the PSW in its architected 8-byte big-endian form.
func (p PSW) Pack() [8]byte {
	var b [8]byte
	b[0] = p.SysMask
	b[1] = (p.Key << 4) | (p.AMWP & 0xf)
	b[2] = uint8(p.IntCode >> 8)
	b[3] = uint8(p.IntCode)
	b[4] = (p.ILC << 6) | (p.CC << 4) | (p.ProgMask & 0xf)
	b[5] = uint8(p.IA >> 16)
	b[6] = uint8(p.IA >> 8)
	b[7] = uint8(p.IA)
	return b
}

// Unpack decodes an architected 8-byte PSW.
func Unpack(b [8]byte) PSW {
	return PSW{
		SysMask:  b[0],
		Key:      b[1] >> 4,
		AMWP:     b[1] & 0xf,
		IntCode:  uint16(b[2])<<8 | uint16(b[3]),
		ILC:      b[4] >> 6,
		CC:       (b[4] >> 4) & 0x3,
		ProgMask: b[4] & 0xf,
		IA:       uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
	}
}

// maskAllows reports whether the given program-check class is masked in
// (i.e. will actually trap) by the current program mask.
func maskAllows(progMask uint8, class uint16) bool {
	switch class {
	case irqFixOver:
		return progMask&maskFixOver != 0
	case irqDecOver:
		return progMask&maskDecOver != 0
	case irqExpOver, irqExpUnder:
		return progMask&maskExpUnder != 0
	case irqSignif:
		return progMask&maskSignif != 0
	default:
		return true // unmaskable classes always trap
	}
}
