/*
 * microsim360 - ROS word field definitions.
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

// Package ros holds the decoded micro-instruction word: one entry per
// sheet letter (A/B/C/D/.../W), each an enumerated selector into a small
// closed set of micro-operations, plus the ROS table type indexed by the
// micro-program counter (ROAR). Entries are authored directly as decoded
// Word values rather than unpacked from a raw bit vector: the retrieved
// reference material documents the field semantics (model2065.h's ROS_2065
// struct, read bit by bit off the physical sheets) but not the literal
// 2030 ROS card-image encoding, so there is nothing to unpack from.
package ros

// Next-address fields (ZP/ZN), decoded per micro-cycle per-field action 2.
const (
	ZPNone = iota // no base contribution beyond the condition bits
)

// A/B condition test selectors (AB/BB fields), decoded per action 3.
const (
	TestNone = iota
	TestRegZero
	TestRegSign
	TestCarry
	TestOverflow
	TestSLatch
	TestChanStatus
	TestProblemState
	TestRefetch
)

// ZN combiner selects how the A-test and B-test results gate the next
// two ROAR bits.
const (
	CombineNone = iota
	CombineAAndBZero  // A & (B=0) -> A
	CombineAAndBOne   // A & (B=1) -> A
	CombineBAndAZero  // B & (A=0) -> B
	CombineBAndAOne   // B & (A=1) -> B
)

// WS field: selects the sub-field driving the local-store address.
const (
	WSNone = iota
	WSFromJ
	WSFromMD
	WSFromConst
)

// Bus-gating selectors (LX/RY left/right adder operands, LU/MV mover
// operands).
const (
	BusNone = iota
	BusA
	BusB
	BusIC
	BusS
	BusT
	BusD
	BusF
	BusG
	BusL
	BusR
	BusM
	BusQ
	BusH
	BusSAR
	BusSDR
	BusLS  // local-store read output
	BusMem // main-store SDR
)

// Mover function codes (combine left/right mover inputs onto the W-bus).
const (
	MoverCross = iota
	MoverOr
	MoverAnd
	MoverXor
	MoverNumeric
	MoverZone
	MoverCharSelect
	MoverNone
)

// Adder decimal-correction selectors (AD field).
const (
	AdderBinary = iota
	AdderDHL
	AdderDC0
	AdderDDC0
	AdderDHH
	AdderDCBS
)

// Shifter patterns (AL field).
const (
	ShiftNone = iota
	ShiftLeft1
	ShiftRight1
	ShiftLeft4
	ShiftRight4
	ShiftMergeQ
)

// Status-setting actions (SS field) — the architectural side-effect
// commit point.
const (
	SSNone = iota
	SSSetCRAlg  // set CC from arithmetic/logical result
	SSSetCRLog  // set CC from logical compare
	SSToggleAMWP
	SSSVCInterrupt
	SSTimerInterrupt
	SSSetMask
	SSClearMask
	SSReloadPSW
)

// Destination selectors (TR field).
const (
	TRNone = iota
	TRT // T register
	TRR // R register
	TRM // M register
	TRD // D register
	TRL // L register
	TRH // H register
	TRIA
	TRSAR // address register — alignment checked by model 1050/2030
	TRSDR
	TRRA // R, plus initiate a memory read
)

// W-bus store destinations (WM field) — where the mover's W-bus output
// is latched.
const (
	WMNone = iota
	WMMB
	WMLB
	WMPSW
	WMGHigh
	WMGLow
	WMBumpAddr
	WMMD
	WMF
	WMChanCtl
)

// Local-store commit actions (SF field), decoded per action 13.
const (
	SFNone = iota
	SFWriteR   // R -> LS[LSA]
	SFReadL    // LS[LSA] -> L
	SFReadR    // LS[LSA] -> R
	SFSwap     // L <-> LS[LSA], prefetch R
	SFWriteL   // L -> LS[LSA]
)

// Word is one fully decoded ROS entry.
type Word struct {
	Note string // mnemonic label, for traces and tests only

	ZN int // next-address combiner
	AB int // A-test selector
	BB int // B-test selector
	WS int // LSA source
	LX int // left adder/mover bus
	RY int // right adder/mover bus
	MV int // mover function
	AD int // decimal-correction mode
	AL int // shifter pattern
	SS int // status action
	TR int // destination
	WM int // W-bus store destination
	SF int // local-store commit action

	ZP   int  // literal next-address base (low bits contributed by ZN combiner)
	Next int  // unconditional next ROAR when ZN/AB/BB don't branch
	Stop bool // halts the engine (used by diagnostic entries)
}

// Table is the micro-program, indexed by ROAR.
type Table []Word
