/*
 * microsim360 - micro-engine status and interrupt actions.
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

import "github.com/rcornwell/microsim360/internal/ros"

// applyStatus implements action 9, the SS field: the single point where a
// micro-cycle reaches out past the data path and touches architected
// machine state (condition code, masks, or a full PSW swap).
func (e *Engine) applyStatus(ss int, add adderResult, aob uint32) {
	switch ss {
	case ros.SSSetCRAlg:
		e.psw.CC = ccFromArith(aob, add.overflow)
	case ros.SSSetCRLog:
		e.psw.CC = ccFromCompare(add)
	case ros.SSToggleAMWP:
		e.psw.AMWP ^= 0x8
	case ros.SSSVCInterrupt:
		e.triggerInterrupt(svcOldPSW, svcNewPSW, e.psw.IntCode)
	case ros.SSTimerInterrupt:
		e.triggerInterrupt(extOldPSW, extNewPSW, 0x0080)
	case ros.SSSetMask:
		e.psw.SysMask |= irqEnable
	case ros.SSClearMask:
		e.psw.SysMask &^= irqEnable
	case ros.SSReloadPSW:
		e.reloadPSW(e.dp.SAR)
	}
}

// ccFromArith sets CC per a fixed-point arithmetic result: 0 zero,
// 1 negative, 2 positive, 3 overflow (overflow always wins, since it
// means the other three no longer describe the true result).
func ccFromArith(result uint32, overflow bool) uint8 {
	switch {
	case overflow:
		return 3
	case result == 0:
		return 0
	case int32(result) < 0:
		return 1
	default:
		return 2
	}
}

// ccFromCompare sets CC per a logical comparison/add: 0 zero-and-no-carry,
// 1 nonzero-and-no-carry, 2 zero-and-carry, 3 nonzero-and-carry.
func ccFromCompare(add adderResult) uint8 {
	cc := uint8(0)
	if add.sum != 0 {
		cc |= 1
	}
	if add.carryOut {
		cc |= 2
	}
	return cc
}

// triggerInterrupt stores the current PSW at oldAddr, sets the interrupt
// code, and loads the new PSW from newAddr, the same old/new PSW swap
// every interrupt class uses.
func (e *Engine) triggerInterrupt(oldAddr, newAddr uint32, code uint16) {
	e.psw.IntCode = code
	e.psw.IA = e.dp.IC & AMASK
	old := e.psw.Pack()
	e.Store.SetWordUnchecked(oldAddr, packWord(old[0:4]))
	e.Store.SetWordUnchecked(oldAddr+4, packWord(old[4:8]))
	e.reloadPSW(newAddr)
	e.irqPending = false
}

// reloadPSW loads and activates the 8-byte PSW resident at addr.
func (e *Engine) reloadPSW(addr uint32) {
	w0 := e.Store.GetWordUnchecked(addr)
	w1 := e.Store.GetWordUnchecked(addr + 4)
	var b [8]byte
	unpackWord(w0, b[0:4])
	unpackWord(w1, b[4:8])
	e.psw = Unpack(b)
	e.dp.IC = e.psw.IA & AMASK
}

func packWord(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func unpackWord(w uint32, b []byte) {
	b[0] = uint8(w >> 24)
	b[1] = uint8(w >> 16)
	b[2] = uint8(w >> 8)
	b[3] = uint8(w)
}
