/*
 * microsim360 - system-control I/O instructions.
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

// SIO/TIO/HIO/TCH are S-format: opcode, an ignored byte, then B2/D2 giving
// the device (SIO/TIO/HIO) or channel (TCH) address, decoded through the
// RX path in hookFetchDecode since the byte layout of B2/D2 is identical;
// R1/X2 simply go unused. All four are privileged: problem-state programs
// take a privileged-operation program check instead of running them,
// mirroring opSIO/opTIO/opHIO/opTCH in cpu_system.go.
func privCheck(e *Engine) bool {
	if e.psw.AMWP&progProblem != 0 {
		e.triggerInterrupt(progOldPSW, progNewPSW, irqPriv)
		return true
	}
	return false
}

func hookSIO(e *Engine) bool {
	if privCheck(e) {
		return false
	}
	addr := effectiveAddr(e) & 0xfff
	if e.Chan == nil {
		e.psw.CC = 3
		return false
	}
	ch, err := e.Chan.Channel(int((addr >> 8) & 0xf))
	if err != nil {
		e.psw.CC = 3
		return false
	}
	cc, err := ch.StartIO(uint16(addr))
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.psw.CC = cc
	return false
}

func hookTIO(e *Engine) bool {
	if privCheck(e) {
		return false
	}
	addr := effectiveAddr(e) & 0xfff
	if e.Chan == nil {
		e.psw.CC = 3
		return false
	}
	cc, err := e.Chan.TestIO(uint16(addr))
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.psw.CC = cc
	return false
}

func hookHIO(e *Engine) bool {
	if privCheck(e) {
		return false
	}
	addr := effectiveAddr(e) & 0xfff
	if e.Chan == nil {
		e.psw.CC = 3
		return false
	}
	cc, err := e.Chan.HaltIO(uint16(addr))
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.psw.CC = cc
	return false
}

func hookTCH(e *Engine) bool {
	if privCheck(e) {
		return false
	}
	addr := effectiveAddr(e) & 0xfff
	if e.Chan == nil {
		e.psw.CC = 3
		return false
	}
	cc, err := e.Chan.TestChan(uint16(addr))
	if err != nil {
		e.reportStoreErr(err)
		return false
	}
	e.psw.CC = cc
	return false
}
