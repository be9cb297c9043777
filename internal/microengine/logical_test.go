package microengine

import "testing"

// putSS lays down a 6-byte SS-format instruction: opcode, a length/format
// byte, then two base+displacement operand fields.
func putSS(e *Engine, addr uint32, op, lenByte uint8, b1 int, d1 uint32, b2 int, d2 uint32) {
	e.Store.PutByte(addr, op, 0)
	e.Store.PutByte(addr+1, lenByte, 0)
	e.Store.PutByte(addr+2, uint8(b1<<4|int((d1>>8)&0xf)), 0)
	e.Store.PutByte(addr+3, uint8(d1), 0)
	e.Store.PutByte(addr+4, uint8(b2<<4|int((d2>>8)&0xf)), 0)
	e.Store.PutByte(addr+5, uint8(d2), 0)
}

func storeBytes(e *Engine, addr uint32, data string) {
	for i := 0; i < len(data); i++ {
		e.Store.PutByte(addr+uint32(i), data[i], 0)
	}
}

func loadBytes(e *Engine, addr uint32, n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i], _ = e.Store.GetByte(addr+uint32(i), 0)
	}
	return string(b)
}

func TestMVC(t *testing.T) {
	e := newTestEngine()
	storeBytes(e, 0x800, "HELLO")
	putSS(e, 0x400, opMVC, 4, 0, 0x900, 0, 0x800) // length 5

	e.Step()
	e.Step()

	if got := loadBytes(e, 0x900, 5); got != "HELLO" {
		t.Errorf("dst = %q, want %q", got, "HELLO")
	}
}

func TestMVCOverlapPropagatesOneByte(t *testing.T) {
	e := newTestEngine()
	storeBytes(e, 0x800, "A")
	// Destination one byte past source: left-to-right copy replicates the
	// first byte across the whole field instead of doing a host memmove.
	putSS(e, 0x400, opMVC, 3, 0, 0x801, 0, 0x800)

	e.Step()
	e.Step()

	if got := loadBytes(e, 0x800, 4); got != "AAAA" {
		t.Errorf("field = %q, want %q", got, "AAAA")
	}
}

func TestCLCEqual(t *testing.T) {
	e := newTestEngine()
	storeBytes(e, 0x800, "SAME")
	storeBytes(e, 0x900, "SAME")
	putSS(e, 0x400, opCLC, 3, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0", e.psw.CC)
	}
}

func TestCLCLowHigh(t *testing.T) {
	e := newTestEngine()
	storeBytes(e, 0x800, "ABC")
	storeBytes(e, 0x900, "ABD")
	putSS(e, 0x400, opCLC, 2, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 1 {
		t.Errorf("CC = %d, want 1 (operand1 low)", e.psw.CC)
	}
}

func TestNC(t *testing.T) {
	e := newTestEngine()
	e.Store.PutByte(0x800, 0xf0, 0)
	e.Store.PutByte(0x900, 0x0f, 0)
	putSS(e, 0x400, opNC, 0, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	got, _ := e.Store.GetByte(0x800, 0)
	if got != 0 {
		t.Errorf("result = %#x, want 0", got)
	}
	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0", e.psw.CC)
	}
}

func TestOC(t *testing.T) {
	e := newTestEngine()
	e.Store.PutByte(0x800, 0xf0, 0)
	e.Store.PutByte(0x900, 0x0f, 0)
	putSS(e, 0x400, opOC, 0, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	got, _ := e.Store.GetByte(0x800, 0)
	if got != 0xff {
		t.Errorf("result = %#x, want 0xff", got)
	}
	if e.psw.CC != 1 {
		t.Errorf("CC = %d, want 1 (nonzero result)", e.psw.CC)
	}
}

func TestXC(t *testing.T) {
	e := newTestEngine()
	e.Store.PutByte(0x800, 0xff, 0)
	e.Store.PutByte(0x900, 0xff, 0)
	putSS(e, 0x400, opXC, 0, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	got, _ := e.Store.GetByte(0x800, 0)
	if got != 0 {
		t.Errorf("result = %#x, want 0", got)
	}
	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0", e.psw.CC)
	}
}

func TestTR(t *testing.T) {
	e := newTestEngine()
	// Table at 0x900 maps every byte to 'X' except entry 'A' -> 'Z'.
	for i := 0; i < 256; i++ {
		e.Store.PutByte(0x900+uint32(i), 'X', 0)
	}
	e.Store.PutByte(0x900+'A', 'Z', 0)
	storeBytes(e, 0x800, "AAB")
	putSS(e, 0x400, opTR, 2, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if got := loadBytes(e, 0x800, 3); got != "ZZX" {
		t.Errorf("dst = %q, want %q", got, "ZZX")
	}
}

func TestTRTFindsFirstNonzeroEntry(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 256; i++ {
		e.Store.PutByte(0x900+uint32(i), 0, 0)
	}
	e.Store.PutByte(0x900+'B', 0x55, 0)
	storeBytes(e, 0x800, "ABC")
	putSS(e, 0x400, opTRT, 2, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 1 {
		t.Errorf("CC = %d, want 1 (match before last byte)", e.psw.CC)
	}
	if got := e.LS.GetGPR(1) & 0xff; got != 0x55 {
		t.Errorf("GPR1 low byte = %#x, want 0x55", got)
	}
	if got := e.LS.GetGPR(2); got != 0x801 {
		t.Errorf("GPR2 = %#x, want 0x801", got)
	}
}

func TestTRTNoMatch(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 256; i++ {
		e.Store.PutByte(0x900+uint32(i), 0, 0)
	}
	storeBytes(e, 0x800, "ABC")
	putSS(e, 0x400, opTRT, 2, 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0", e.psw.CC)
	}
}
