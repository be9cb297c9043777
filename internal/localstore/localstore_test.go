package localstore

import "testing"

func TestGPRRoundTrip(t *testing.T) {
	l := New(Size)
	l.SetGPR(5, 0x12345678)
	if got := l.GetGPR(5); got != 0x12345678 {
		t.Errorf("GetGPR(5) = %#x, want 0x12345678", got)
	}
	if got := l.GetGPR(6); got != 0 {
		t.Errorf("GetGPR(6) = %#x, want 0 (registers must not alias)", got)
	}
}

func TestFPRShortRoundTrip(t *testing.T) {
	l := New(Size)
	l.SetFPRShort(4, 0xcafebabe)
	if got := l.GetFPRShort(4); got != 0xcafebabe {
		t.Errorf("GetFPRShort(4) = %#x, want 0xcafebabe", got)
	}
}

func TestFPRLongRoundTrip(t *testing.T) {
	l := New(Size)
	l.SetFPRLong(6, 0x0102030405060708)
	if got := l.GetFPRLong(6); got != 0x0102030405060708 {
		t.Errorf("GetFPRLong(6) = %#x, want 0x0102030405060708", got)
	}
}

func TestParityDetection(t *testing.T) {
	l := New(Size)
	l.SetByte(0x10, 0x55)
	if _, err := l.CheckByte(0x10); err != nil {
		t.Errorf("freshly written byte should carry valid parity: %v", err)
	}
	l.cells[0x10].parity = !l.cells[0x10].parity
	if _, err := l.CheckByte(0x10); err != ErrParity {
		t.Errorf("flipped parity bit should fail check, got %v", err)
	}
}

func TestCC(t *testing.T) {
	l := New(Size)
	l.SetByte(CCOffset, 0xf0)
	l.SetCC(2)
	if got := l.CC(); got != 2 {
		t.Errorf("CC() = %d, want 2", got)
	}
	if l.GetByte(CCOffset)&0xfc != 0xf0 {
		t.Error("SetCC must not disturb the rest of the scratch byte")
	}
}

func TestGPRAddrStride(t *testing.T) {
	if GPRAddr(0) != 0 || GPRAddr(1) != GPRStride {
		t.Errorf("GPRAddr stride mismatch: GPRAddr(1)=%d, want %d", GPRAddr(1), GPRStride)
	}
}
