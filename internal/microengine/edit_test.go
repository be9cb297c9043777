package microengine

import (
	"math/big"
	"testing"
)

// Pattern bytes below use a fill character plus digit-select (0x20) marks;
// the source's digit count must match the number of digit-select bytes,
// since the sign nibble rides along with the pattern's final digit slot
// rather than needing a pattern byte of its own.

func TestEDSuppressesLeadingZeros(t *testing.T) {
	e := newTestEngine()
	pattern := []byte{0x40, 0x20, 0x20, 0x20} // fill + 3 digit selects
	for i, b := range pattern {
		e.Store.PutByte(0x800+uint32(i), b, 0)
	}
	storePacked(e, 0x900, 2, big.NewInt(25), false) // 3-digit field: 0,2,5
	putSS(e, 0x400, opED, uint8(len(pattern)-1), 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	got := loadBytes(e, 0x800, len(pattern))
	want := "\x40\x40\xf2\xf5"
	if got != want {
		t.Errorf("pattern = %q, want %q", got, want)
	}
	if e.psw.CC != 2 {
		t.Errorf("CC = %d, want 2 (positive nonzero)", e.psw.CC)
	}
}

func TestEDAllZeroFieldSetsCC0(t *testing.T) {
	e := newTestEngine()
	pattern := []byte{0x40, 0x20} // fill + 1 digit select
	for i, b := range pattern {
		e.Store.PutByte(0x800+uint32(i), b, 0)
	}
	storePacked(e, 0x900, 1, big.NewInt(0), false)
	putSS(e, 0x400, opED, uint8(len(pattern)-1), 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	if e.psw.CC != 0 {
		t.Errorf("CC = %d, want 0 (all-zero field)", e.psw.CC)
	}
	got := loadBytes(e, 0x800, len(pattern))
	want := "\x40\x40"
	if got != want {
		t.Errorf("pattern = %q, want %q (fully suppressed)", got, want)
	}
}

func TestEDMKMarksFirstSignificantDigit(t *testing.T) {
	e := newTestEngine()
	pattern := []byte{0x40, 0x20, 0x20, 0x20} // fill + 3 digit selects
	for i, b := range pattern {
		e.Store.PutByte(0x800+uint32(i), b, 0)
	}
	storePacked(e, 0x900, 2, big.NewInt(5), false) // 3-digit field: 0,0,5
	putSS(e, 0x400, opEDMK, uint8(len(pattern)-1), 0, 0x800, 0, 0x900)

	e.Step()
	e.Step()

	// Only the last digit (5) is significant; GPR1 should hold its address.
	if got := e.LS.GetGPR(1); got != 0x803 {
		t.Errorf("GPR1 = %#x, want 0x803", got)
	}
}
