package microengine

import (
	"math/big"
	"testing"
)

func TestZAPCopiesValue(t *testing.T) {
	e := newTestEngine()
	storePacked(e, 0x900, 3, big.NewInt(12345), false)
	putSS(e, 0x400, opZAP, 0x22, 0, 0x800, 0, 0x900) // ssLen1=2,ssLen2=2: both 3 bytes

	e.Step()
	e.Step()

	mag, neg, ok := loadPacked(e, 0x800, 3)
	if !ok {
		t.Fatal("loadPacked reported a bad result field")
	}
	if neg {
		t.Error("want positive")
	}
	if mag.Cmp(big.NewInt(12345)) != 0 {
		t.Errorf("mag = %s, want 12345", mag)
	}
	if e.psw.CC != 2 {
		t.Errorf("CC = %d, want 2 (positive)", e.psw.CC)
	}
}

func TestZAPZeroSetsCC0(t *testing.T) {
	e := newTestEngine()
	storePacked(e, 0x900, 2, big.NewInt(0), false)
	putSS(e, 0x400, opZAP, 0x11, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0", e.psw.CC)
	}
}

func TestAP(t *testing.T) {
	e := newTestEngine()
	storePacked(e, 0x800, 2, big.NewInt(5), false)
	storePacked(e, 0x900, 2, big.NewInt(3), false)
	putSS(e, 0x400, opAP, 0x11, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	mag, neg, ok := loadPacked(e, 0x800, 2)
	if !ok || neg || mag.Cmp(big.NewInt(8)) != 0 {
		t.Errorf("result = %s neg=%v ok=%v, want 8 positive", mag, neg, ok)
	}
	if e.psw.CC != 2 {
		t.Errorf("CC = %d, want 2", e.psw.CC)
	}
}

func TestSPNegativeResult(t *testing.T) {
	e := newTestEngine()
	storePacked(e, 0x800, 2, big.NewInt(5), false)
	storePacked(e, 0x900, 2, big.NewInt(8), false)
	putSS(e, 0x400, opSP, 0x11, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	mag, neg, ok := loadPacked(e, 0x800, 2)
	if !ok || !neg || mag.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("result = %s neg=%v ok=%v, want -3", mag, neg, ok)
	}
	if e.psw.CC != 1 {
		t.Errorf("CC = %d, want 1 (negative)", e.psw.CC)
	}
}

func TestAPOverflowTrapsWhenMasked(t *testing.T) {
	e := newTestEngine()
	e.psw.ProgMask = maskDecOver
	storePacked(e, 0x800, 1, big.NewInt(5), false)
	storePacked(e, 0x900, 1, big.NewInt(7), false)
	putSS(e, 0x400, opAP, 0x00, 0, 0x800, 0, 0x900) // both operands 1 byte, 1 digit

	e.Step()
	e.Step()

	// The trap swaps in the new PSW; CC and interruption code ride in the
	// old PSW stored at progOldPSW.
	w0, _ := e.Store.GetWord(progOldPSW, 0)
	w1, _ := e.Store.GetWord(progOldPSW+4, 0)
	if cc := uint8(w1>>28) & 0x3; cc != 2 {
		t.Errorf("old PSW CC = %d, want 2 (true sum 12 is positive)", cc)
	}
	if uint16(w0) != irqDecOver {
		t.Errorf("old PSW interrupt code = %#x, want irqDecOver", uint16(w0))
	}
}

func TestAPOverflowNotTrappedWhenUnmasked(t *testing.T) {
	e := newTestEngine()
	storePacked(e, 0x800, 1, big.NewInt(5), false)
	storePacked(e, 0x900, 1, big.NewInt(7), false)
	putSS(e, 0x400, opAP, 0x00, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.IntCode != 0 {
		t.Errorf("IntCode = %#x, want 0 (overflow masked off)", e.psw.IntCode)
	}
}
