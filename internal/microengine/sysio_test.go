package microengine

import "testing"

func TestSIOPrivilegedCheckTraps(t *testing.T) {
	e := newTestEngine()
	e.psw.AMWP = progProblem
	// New PSW resident at progNewPSW (0x68): jump to 0x700 on the trap.
	e.Store.PutWord(progNewPSW, 0x00000000, 0)
	e.Store.PutWord(progNewPSW+4, 0x00000700, 0)
	putRX(e, 0x400, opSIO, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	// The interruption code rides in the old PSW stored at progOldPSW.
	if w0, _ := e.Store.GetWord(progOldPSW, 0); uint16(w0) != irqPriv {
		t.Errorf("old PSW interrupt code = %#x, want irqPriv", uint16(w0))
	}
	if e.psw.IA != 0x700 {
		t.Errorf("IA = %#x, want 0x700 (new PSW loaded)", e.psw.IA)
	}
}

func TestSIOWithNoChannelControllerReportsCC3(t *testing.T) {
	e := newTestEngine()
	putRX(e, 0x400, opSIO, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	if e.psw.CC != 3 {
		t.Errorf("CC = %d, want 3 (not operational)", e.psw.CC)
	}
}

func TestTIOWithNoChannelControllerReportsCC3(t *testing.T) {
	e := newTestEngine()
	putRX(e, 0x400, opTIO, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	if e.psw.CC != 3 {
		t.Errorf("CC = %d, want 3 (not operational)", e.psw.CC)
	}
}

func TestHIOWithNoChannelControllerReportsCC3(t *testing.T) {
	e := newTestEngine()
	putRX(e, 0x400, opHIO, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	if e.psw.CC != 3 {
		t.Errorf("CC = %d, want 3 (not operational)", e.psw.CC)
	}
}

func TestTCHWithNoChannelControllerReportsCC3(t *testing.T) {
	e := newTestEngine()
	putRX(e, 0x400, opTCH, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	if e.psw.CC != 3 {
		t.Errorf("CC = %d, want 3 (not operational)", e.psw.CC)
	}
}

func TestTIOPrivilegedCheckTraps(t *testing.T) {
	e := newTestEngine()
	e.psw.AMWP = progProblem
	e.Store.PutWord(progNewPSW, 0x00000000, 0)
	e.Store.PutWord(progNewPSW+4, 0x00000704, 0)
	putRX(e, 0x400, opTIO, 0, 0, 0, 0xc0)

	e.Step()
	e.Step()

	// The interruption code rides in the old PSW stored at progOldPSW.
	if w0, _ := e.Store.GetWord(progOldPSW, 0); uint16(w0) != irqPriv {
		t.Errorf("old PSW interrupt code = %#x, want irqPriv", uint16(w0))
	}
}
