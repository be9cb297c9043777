package microengine

import "testing"

func TestLDThenSTDRoundTrips(t *testing.T) {
	e := newTestEngine()
	e.Store.PutWord(0x900, 0x41200000, 0) // characteristic 0x41, fraction 0x200000
	e.Store.PutWord(0x904, 0x00000000, 0)
	putRX(e, 0x400, opLD, 2, 0, 0, 0x900)

	e.Step()
	e.Step()

	if e.fpr[fpIndex(2)] != 0x4120000000000000 {
		t.Fatalf("fpr = %#x, want 0x4120000000000000", e.fpr[fpIndex(2)])
	}

	e.dp.IC = 0x500
	e.psw.IA = 0x500
	putRX(e, 0x500, opSTD, 2, 0, 0, 0xa00)
	e.Step()
	e.Step()

	hi, _ := e.Store.GetWord(0xa00, 0)
	lo, _ := e.Store.GetWord(0xa04, 0)
	if hi != 0x41200000 || lo != 0 {
		t.Errorf("stored = %#x %#x, want 0x41200000 0x0", hi, lo)
	}
}

func TestLEStoresOnlyHighWord(t *testing.T) {
	e := newTestEngine()
	e.Store.PutWord(0x900, 0x41100000, 0)
	putRX(e, 0x400, opLE, 4, 0, 0, 0x900)

	e.Step()
	e.Step()

	if e.fpr[fpIndex(4)] != 0x4110000000000000 {
		t.Errorf("fpr = %#x, want 0x4110000000000000", e.fpr[fpIndex(4)])
	}

	e.dp.IC = 0x500
	e.psw.IA = 0x500
	putRX(e, 0x500, opSTE, 4, 0, 0, 0xa00)
	e.Step()
	e.Step()

	got, _ := e.Store.GetWord(0xa00, 0)
	if got != 0x41100000 {
		t.Errorf("stored = %#x, want 0x41100000", got)
	}
}

func TestADAddsTwoPositives(t *testing.T) {
	e := newTestEngine()
	e.fpr[fpIndex(0)] = float64ToHexFloatLong(2.5)
	e.Store.PutWord(0x900, uint32(float64ToHexFloatLong(1.5)>>32), 0)
	e.Store.PutWord(0x904, uint32(float64ToHexFloatLong(1.5)), 0)
	putRX(e, 0x400, opAD, 0, 0, 0, 0x900)

	e.Step()
	e.Step()

	got := hexFloatLongToFloat64(e.fpr[fpIndex(0)])
	if got < 3.999 || got > 4.001 {
		t.Errorf("AD result = %v, want ~4.0", got)
	}
	if e.psw.CC != 2 {
		t.Errorf("CC = %d, want 2 (positive)", e.psw.CC)
	}
}

func TestSDSubtractToZero(t *testing.T) {
	e := newTestEngine()
	e.fpr[fpIndex(0)] = float64ToHexFloatLong(3.0)
	e.Store.PutWord(0x900, uint32(float64ToHexFloatLong(3.0)>>32), 0)
	e.Store.PutWord(0x904, uint32(float64ToHexFloatLong(3.0)), 0)
	putRX(e, 0x400, opSD, 0, 0, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0 (zero result)", e.psw.CC)
	}
}

func TestAEShortPrecisionRoundTrip(t *testing.T) {
	e := newTestEngine()
	e.fpr[fpIndex(6)] = uint64(float64ToHexFloatShort(1.0)) << 32
	e.Store.PutWord(0x900, float64ToHexFloatShort(1.0), 0)
	putRX(e, 0x400, opAE, 6, 0, 0, 0x900)

	e.Step()
	e.Step()

	got := hexFloatShortToFloat64(uint32(e.fpr[fpIndex(6)] >> 32))
	if got < 1.999 || got > 2.001 {
		t.Errorf("AE result = %v, want ~2.0", got)
	}
}
