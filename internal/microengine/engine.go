/*
 * microsim360 - micro-engine per-cycle interpreter.
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

// Package microengine is the per-cycle interpreter: it fetches one ROS
// word at the current ROAR, routes the data path per its decoded fields,
// and advances the machine one micro-cycle, the way §4.1 describes.
//
// Each table entry's bureaucratic fields (next-address combiner,
// condition test, status commit, local-store commit) run through the
// generic field interpreter in datapath.go/stat.go, exactly as decoded.
// An entry's actual instruction semantics — operand fetch, address
// arithmetic, issuing an I/O start, computing a quotient — run through an
// optional Hook closure, because unpacking those from adder/mover/shifter
// primitives alone would mean re-deriving a full micro-assembler with no
// source ROS card images in the retrieved material to check it against.
// The Hook is where a port with real 2030 control-storage listings would
// replace closures with the actual decoded micro-orders.
package microengine

import (
	"fmt"

	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/internal/localstore"
	"github.com/rcornwell/microsim360/internal/ros"
	"github.com/rcornwell/microsim360/internal/store"
	"github.com/rcornwell/microsim360/util/debug"
)

// Hook runs an entry's instruction-specific semantics; it returns true to
// request the engine stop after this cycle (a programmed STOP or a
// detected check the caller should observe).
type Hook func(e *Engine) bool

// tableEntry pairs a decoded ROS word with its optional semantic hook.
type tableEntry struct {
	ros.Word
	Hook Hook
}

// Table is one model's micro-program, indexed by ROAR.
type Table []tableEntry

// Debug trace categories.
const (
	DebugTrace int = 1 << iota
	DebugState
	DebugIRQ
)

// Engine is one CPU instance: its data path, PSW, local store, main
// store, channel controller and event queue, replacing the reference
// simulator's single global cpu_2030.
type Engine struct {
	dp  datapath
	psw PSW

	roar  int
	table Table

	Store   *store.Store
	LS      *localstore.LocalStore
	Chan    *channel.Controller
	Events  *event.Queue

	halted     bool
	waiting    bool
	irqPending bool

	branchSet      bool
	branchOverride int

	// Decoded instruction fields, filled in by the fetch/decode hook and
	// read back by each opcode's execution hook.
	opcode  uint8
	ilcCur  uint8
	r1, r2  int
	x2, b2  int
	d2      uint32
	instrIA uint32

	// SS-format fields (MVC/CLC/NC/OC/XC/TR/TRT/ZAP/AP/SP/ED/EDMK): two
	// base/displacement operand addresses plus either a single length
	// byte (logical/edit instructions, length = ssLen+1) or a pair of
	// packed-decimal operand lengths (decimal instructions).
	ssB1, ssB2   int
	ssD1, ssD2   uint32
	ssLen        uint8
	ssLen1       int
	ssLen2       int

	// FP registers 0, 2, 4 and 6, each holding a full 64-bit long value;
	// short-precision instructions (LE/STE/AE/SE) read and write only the
	// high 32 bits.
	fpr [4]uint64

	debugMsk int
}

// Branch lets a Hook redirect the next ROAR, for instruction dispatch
// that the ZN/AB/BB combiner can't express (a multi-way opcode jump
// table rather than a two-way condition).
func (e *Engine) Branch(roar int) {
	e.branchSet = true
	e.branchOverride = roar
}

// New constructs an engine around the given table and owned subsystems.
func New(table Table, st *store.Store, ls *localstore.LocalStore, ch *channel.Controller) *Engine {
	e := &Engine{
		table:  table,
		Store:  st,
		LS:     ls,
		Chan:   ch,
		Events: event.NewQueue(),
	}
	return e
}

func (e *Engine) lsView() *localStoreView {
	return &localStoreView{
		read: func(addr int) uint32 {
			if e.LS == nil {
				return 0
			}
			return e.LS.GetWord(addr)
		},
		write: func(addr int, v uint32) {
			if e.LS != nil {
				e.LS.SetWord(addr, v)
			}
		},
	}
}

// PSW returns a copy of the current program status word. IA is taken
// from the data path's IC register, the architecture's live instruction
// counter, rather than the copy cached in psw at the last swap.
func (e *Engine) PSW() PSW {
	p := e.psw
	p.IA = e.dp.IC & AMASK
	return p
}

// SetPSW loads a new PSW, as LPSW / initial IPL loading would.
func (e *Engine) SetPSW(p PSW) {
	e.psw = p
	e.dp.IC = p.IA
}

// Halted reports whether the engine has stopped (STOP key, disabled wait,
// or a diagnostic table entry with Stop set).
func (e *Engine) Halted() bool {
	return e.halted
}

// Stop halts the engine at the next cycle boundary, the way pressing
// the panel's STOP key interrupts Step between instructions.
func (e *Engine) Stop() {
	e.halted = true
}

// Resume clears a halt set by Stop or a diagnostic stop, the way the
// panel's START key does, and fetches from the current ROAR.
func (e *Engine) Resume() {
	e.halted = false
}

// IPL loads a fixed channel-program-independent bootstrap: it reads the
// first two CCWs' worth of data from devAddr's default path into low
// storage starting at 0, then fetches the restart PSW from address 0,
// matching the architected initial-program-load sequence. It does not
// attempt the full IPL CCW chain a real channel program would run;
// devAddr's unit must already have its boot record ready to hand back
// on a read-direction StartIO.
func (e *Engine) IPL(devAddr uint16) error {
	if e.Chan == nil {
		return fmt.Errorf("microengine: no channel controller configured")
	}
	ch, err := e.Chan.Channel(int((devAddr >> 8) & 0xf))
	if err != nil {
		return err
	}
	if _, err := ch.StartIO(devAddr); err != nil {
		return err
	}
	e.halted = false
	e.roar = 0
	if e.Store != nil {
		e.dp.IC = e.Store.GetWordUnchecked(0) & AMASK
		e.psw.IA = e.dp.IC
	}
	return nil
}

// Step executes exactly one ROS word: the memory/next-address/condition/
// bus/mover/adder/shifter/status/destination/local-store sequence in
// §4.1, plus the entry's semantic Hook if present.
func (e *Engine) Step() {
	if e.halted {
		return
	}
	if e.roar < 0 || e.roar >= len(e.table) {
		e.halted = true
		return
	}
	entry := e.table[e.roar]
	w := entry.Word

	debug.Debugf("microengine", e.debugMsk, DebugTrace, "ROAR=%04x %s", e.roar, w.Note)

	ls := e.lsView()

	// 4. LSA computation (decode already places the computed address in
	// dp.lsa via the Hook or a prior TR/WS step — kept explicit so TR
	// SFxxx below reads the right slot).
	_ = w.WS

	// 5-6. Bus gating and mover.
	left := e.dp.busValue(w.LX, ls)
	right := e.dp.busValue(w.RY, ls)
	wBus := mover(w.MV, uint8(left), uint8(right))

	// 7. Adder.
	add := addWords(left, right, e.dp.CAR)
	e.dp.CAR = add.carryOut

	// 8. Shifter.
	aob := shift(w.AL, add.sum)

	// 9. Status update.
	e.applyStatus(w.SS, add, aob)

	// 10. Destination.
	e.storeDestination(w.TR, aob)

	// 11. W-bus store.
	e.storeWBus(w.WM, wBus)

	// 13. Local-store commit.
	e.commitLocalStore(w.SF, ls)

	stop := false
	if entry.Hook != nil {
		stop = entry.Hook(e)
	}

	if e.branchSet {
		e.roar = e.branchOverride
		e.branchSet = false
	} else {
		e.roar = e.nextROAR(w)
	}

	if w.Stop || stop {
		e.halted = true
	}
}

// nextROAR forms the tentative next ROAR from ZP/Next and folds in the
// two condition bits the ZN combiner selects, per actions 2-3.
func (e *Engine) nextROAR(w ros.Word) int {
	base := w.Next

	a := e.evalTest(w.AB)
	b := e.evalTest(w.BB)

	var bits int
	switch w.ZN {
	case ros.CombineAAndBZero:
		if a && !b {
			bits = 1
		}
	case ros.CombineAAndBOne:
		if a && b {
			bits = 1
		}
	case ros.CombineBAndAZero:
		if b && !a {
			bits = 2
		}
	case ros.CombineBAndAOne:
		if b && a {
			bits = 2
		}
	}
	return (base &^ 0x3) | bits
}

// evalTest evaluates one AB/BB condition-test selector against the
// current stat latches and adder carry, the subset of the architected
// test set this engine wires through.
func (e *Engine) evalTest(sel int) bool {
	switch sel {
	case ros.TestRegZero:
		return e.dp.T == 0
	case ros.TestRegSign:
		return e.dp.T&0x80000000 != 0
	case ros.TestCarry:
		return e.dp.CAR
	case ros.TestSLatch:
		return e.dp.stat.A
	case ros.TestProblemState:
		return e.psw.AMWP&progProblem != 0
	default:
		return false
	}
}

// storeDestination implements action 10, the TR field.
func (e *Engine) storeDestination(tr int, aob uint32) {
	switch tr {
	case ros.TRT:
		e.dp.T = aob
	case ros.TRR:
		e.dp.R = aob
	case ros.TRM:
		e.dp.M = aob
	case ros.TRD:
		e.dp.D = aob
	case ros.TRL:
		e.dp.L = aob
	case ros.TRH:
		e.dp.H = aob
	case ros.TRIA:
		e.dp.IC = aob & AMASK
	case ros.TRSAR:
		e.dp.SAR = aob
	case ros.TRSDR:
		e.dp.SDR = aob
	case ros.TRRA:
		e.dp.R = aob
		if e.Store != nil {
			if v, err := e.Store.GetWord(e.dp.SAR&^3, e.psw.Key); err == nil {
				e.dp.SDR = v
			}
		}
	}
}

// storeWBus implements action 11, the WM field.
func (e *Engine) storeWBus(wm int, w uint8) {
	switch wm {
	case ros.WMMD:
		e.dp.M = (e.dp.M &^ 0xff) | uint32(w)
	case ros.WMF:
		e.dp.F = (e.dp.F &^ 0xff) | uint32(w)
	}
}

// commitLocalStore implements action 13, the SF field.
func (e *Engine) commitLocalStore(sf int, ls *localStoreView) {
	switch sf {
	case ros.SFWriteR:
		ls.write(e.dp.lsa, e.dp.R)
	case ros.SFReadL:
		e.dp.L = ls.read(e.dp.lsa)
	case ros.SFReadR:
		e.dp.R = ls.read(e.dp.lsa)
	case ros.SFWriteL:
		ls.write(e.dp.lsa, e.dp.L)
	case ros.SFSwap:
		old := ls.read(e.dp.lsa)
		ls.write(e.dp.lsa, e.dp.L)
		e.dp.L = old
	}
}

// defaultEngine is the system's one running engine, set by main at
// startup before configuration directives run. The "DEBUG CPU=..."
// directive is parsed as a one-shot, process-wide step with no natural
// owner to thread an *Engine through, so this mirrors the channel
// package's defaultController for the same reason.
var defaultEngine *Engine

// SetDefault installs e as the target of the package-level Debug helper
// used by the DEBUG configuration directive.
func SetDefault(e *Engine) {
	defaultEngine = e
}

// Debug dispatches a debug option to the default engine, for the
// "DEBUG CPU=..." configuration directive.
func Debug(opt string) error {
	if defaultEngine == nil {
		return fmt.Errorf("microengine: no engine configured")
	}
	return defaultEngine.Debug(opt)
}

// Debug enables a named trace category.
func (e *Engine) Debug(opt string) error {
	switch opt {
	case "TRACE":
		e.debugMsk |= DebugTrace
	case "STATE":
		e.debugMsk |= DebugState
	case "IRQ":
		e.debugMsk |= DebugIRQ
	default:
		return fmt.Errorf("microengine: unknown debug option %q", opt)
	}
	return nil
}
