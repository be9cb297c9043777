package microengine

import (
	"testing"

	"github.com/rcornwell/microsim360/internal/ros"
)

func TestAddWordsOverflow(t *testing.T) {
	// Two large positive numbers whose sum flips the sign bit: classic
	// fixed-point overflow, no carry out of bit 0.
	res := addWords(0x7fffffff, 0x00000001, false)
	if !res.overflow {
		t.Errorf("overflow = false, want true for 0x7fffffff+1")
	}
	if res.sum != 0x80000000 {
		t.Errorf("sum = %#x, want 0x80000000", res.sum)
	}
}

func TestAddWordsNoOverflow(t *testing.T) {
	res := addWords(1, 1, false)
	if res.overflow {
		t.Errorf("overflow = true, want false for 1+1")
	}
	if res.sum != 2 {
		t.Errorf("sum = %d, want 2", res.sum)
	}
}

func TestAddWordsCarryOut(t *testing.T) {
	res := addWords(0xffffffff, 0x00000001, false)
	if !res.carryOut {
		t.Errorf("carryOut = false, want true")
	}
	if res.sum != 0 {
		t.Errorf("sum = %#x, want 0", res.sum)
	}
}

func TestMover(t *testing.T) {
	cases := []struct {
		fn          int
		left, right uint8
		want        uint8
	}{
		{ros.MoverOr, 0x0f, 0xf0, 0xff},
		{ros.MoverAnd, 0xff, 0x0f, 0x0f},
		{ros.MoverXor, 0xff, 0x0f, 0xf0},
		{ros.MoverNumeric, 0xab, 0xcd, 0x0d},
		{ros.MoverZone, 0xab, 0xcd, 0xc0},
		{ros.MoverCharSelect, 0x11, 0x22, 0x22},
		{ros.MoverCross, 0x11, 0x22, 0x11},
	}
	for _, c := range cases {
		if got := mover(c.fn, c.left, c.right); got != c.want {
			t.Errorf("mover(%d, %#x, %#x) = %#x, want %#x", c.fn, c.left, c.right, got, c.want)
		}
	}
}

func TestShift(t *testing.T) {
	if got := shift(ros.ShiftLeft4, 0x00000001); got != 0x00000010 {
		t.Errorf("ShiftLeft4 = %#x, want 0x10", got)
	}
	if got := shift(ros.ShiftRight4, 0x00000010); got != 0x00000001 {
		t.Errorf("ShiftRight4 = %#x, want 0x1", got)
	}
	if got := shift(ros.ShiftNone, 0x12345678); got != 0x12345678 {
		t.Errorf("ShiftNone changed value: %#x", got)
	}
}
