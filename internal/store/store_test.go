package store

import "testing"

func TestWordRoundTrip(t *testing.T) {
	s := New(64 * 1024)
	if err := s.PutWord(0x100, 0xdeadbeef, 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetWord(0x100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xdeadbeef {
		t.Errorf("GetWord = %#x, want 0xdeadbeef", got)
	}
}

func TestHalfRoundTrip(t *testing.T) {
	s := New(4096)
	if err := s.PutHalf(0x10, 0x1234, 0); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetHalf(0x10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1234 {
		t.Errorf("GetHalf = %#x, want 0x1234", got)
	}
}

func TestAddressingException(t *testing.T) {
	s := New(4096)
	if _, err := s.GetWord(4096, 0); err != ErrAddressing {
		t.Errorf("GetWord past end = %v, want ErrAddressing", err)
	}
	if err := s.PutByte(4096, 1, 0); err != ErrAddressing {
		t.Errorf("PutByte past end = %v, want ErrAddressing", err)
	}
}

func TestSpecificationException(t *testing.T) {
	s := New(4096)
	if _, err := s.GetWord(0x101, 0); err != ErrSpecification {
		t.Errorf("unaligned GetWord = %v, want ErrSpecification", err)
	}
	if _, err := s.GetHalf(0x101, 0); err != ErrSpecification {
		t.Errorf("unaligned GetHalf = %v, want ErrSpecification", err)
	}
}

func TestSpecificationLeavesStateUnchanged(t *testing.T) {
	s := New(4096)
	if err := s.PutWord(0x100, 0x11111111, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.PutWord(0x101, 0x22222222, 0); err != ErrSpecification {
		t.Fatalf("want ErrSpecification, got %v", err)
	}
	got, _ := s.GetWord(0x100, 0)
	if got != 0x11111111 {
		t.Errorf("state changed on failed unaligned store: %#x", got)
	}
}

func TestProtectionException(t *testing.T) {
	s := New(4096)
	s.PutKey(0x800, 0x30) // storage key 3, fetch-protect off

	if err := s.PutWord(0x800, 1, 5); err != ErrProtection {
		t.Errorf("mismatched write key = %v, want ErrProtection", err)
	}
	if err := s.PutWord(0x800, 1, 3); err != nil {
		t.Errorf("matching write key should succeed, got %v", err)
	}
	if err := s.PutWord(0x800, 1, 0); err != nil {
		t.Errorf("master key 0 should bypass protection, got %v", err)
	}
}

func TestFetchProtect(t *testing.T) {
	s := New(4096)
	s.PutKey(0x800, 0x38) // storage key 3, fetch-protect bit set

	if _, err := s.GetWord(0x800, 5); err != ErrProtection {
		t.Errorf("fetch-protected mismatched read = %v, want ErrProtection", err)
	}
	if _, err := s.GetWord(0x800, 3); err != nil {
		t.Errorf("matching key read should succeed, got %v", err)
	}
}

func TestPutWordMask(t *testing.T) {
	s := New(4096)
	s.PutWord(0x200, 0x11223344, 0)
	if err := s.PutWordMask(0x200, 0xaabbccdd, 0xa, 0); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetWord(0x200, 0)
	if got != 0xaa22cc44 {
		t.Errorf("PutWordMask = %#x, want 0xaa22cc44", got)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	s := New(4096)
	s.PutKey(0x0, 0x9)
	if got := s.GetKey(0x0); got != 0x9 {
		t.Errorf("GetKey = %#x, want 0x9", got)
	}
}
