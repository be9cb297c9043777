package microengine

import "testing"

func TestSLL(t *testing.T) {
	e := newTestEngine()
	e.LS.SetGPR(3, 0x00000001)
	putRX(e, 0x400, opSLL, 3, 0, 0, 4)

	e.Step()
	e.Step()

	if got := e.LS.GetGPR(3); got != 0x10 {
		t.Errorf("GPR3 = %#x, want 0x10", got)
	}
}

func TestSLLCountTruncatesTo6Bits(t *testing.T) {
	e := newTestEngine()
	e.LS.SetGPR(3, 0x1)
	// effective address 0x44 has low 6 bits 4, so shift is 4 not 0x44.
	putRX(e, 0x400, opSLL, 3, 0, 0, 0x44)

	e.Step()
	e.Step()

	if got := e.LS.GetGPR(3); got != 0x10 {
		t.Errorf("GPR3 = %#x, want 0x10", got)
	}
}

func TestSRL(t *testing.T) {
	e := newTestEngine()
	e.LS.SetGPR(3, 0xff000000)
	putRX(e, 0x400, opSRL, 3, 0, 0, 8)

	e.Step()
	e.Step()

	if got := e.LS.GetGPR(3); got != 0x00ff0000 {
		t.Errorf("GPR3 = %#x, want 0x00ff0000", got)
	}
}

func TestSRLCountOf32ClearsRegister(t *testing.T) {
	e := newTestEngine()
	e.LS.SetGPR(3, 0xffffffff)
	putRX(e, 0x400, opSRL, 3, 0, 0, 32)

	e.Step()
	e.Step()

	if got := e.LS.GetGPR(3); got != 0 {
		t.Errorf("GPR3 = %#x, want 0", got)
	}
}

func TestSLAPreservesSign(t *testing.T) {
	e := newTestEngine()
	e.LS.SetGPR(3, 0x00000001)
	putRX(e, 0x400, opSLA, 3, 0, 0, 4)

	e.Step()
	e.Step()

	if got := e.LS.GetGPR(3); got != 0x10 {
		t.Errorf("GPR3 = %#x, want 0x10", got)
	}
	if e.psw.CC != 2 {
		t.Errorf("CC = %d, want 2 (positive)", e.psw.CC)
	}
}

func TestSLAOverflowSetsCC3AndTraps(t *testing.T) {
	e := newTestEngine()
	e.psw.ProgMask = maskFixOver
	e.LS.SetGPR(3, 0x60000000)
	putRX(e, 0x400, opSLA, 3, 0, 0, 1)

	e.Step()
	e.Step()

	// The trap swaps in the new PSW; CC and interruption code ride in the
	// old PSW stored at progOldPSW.
	w0, _ := e.Store.GetWord(progOldPSW, 0)
	w1, _ := e.Store.GetWord(progOldPSW+4, 0)
	if cc := uint8(w1>>28) & 0x3; cc != 3 {
		t.Errorf("old PSW CC = %d, want 3 (overflow)", cc)
	}
	if uint16(w0) != irqFixOver {
		t.Errorf("old PSW interrupt code = %#x, want irqFixOver", uint16(w0))
	}
}

func TestSRANegativeReplicatesSign(t *testing.T) {
	e := newTestEngine()
	neg := int32(-8)
	e.LS.SetGPR(3, uint32(neg))
	putRX(e, 0x400, opSRA, 3, 0, 0, 1)

	e.Step()
	e.Step()

	if got := int32(e.LS.GetGPR(3)); got != -4 {
		t.Errorf("GPR3 = %d, want -4", got)
	}
	if e.psw.CC != 1 {
		t.Errorf("CC = %d, want 1 (negative)", e.psw.CC)
	}
}
