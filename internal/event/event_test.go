package event

import "testing"

type fakeDevice struct{ addr uint16 }

func (f *fakeDevice) Addr() uint16                                       { return f.addr }
func (f *fakeDevice) BusFunc(tagsInOut *uint16, busOut uint8, busIn *uint8) {}
func (f *fakeDevice) Debug(opt string) error                             { return nil }
func (f *fakeDevice) Shutdown()                                           {}

func TestZeroDelayRunsImmediately(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Add(&fakeDevice{}, func(iarg int) { ran = true }, 0, 0)
	if !ran {
		t.Error("zero-delay event must run synchronously")
	}
	if q.Pending() {
		t.Error("zero-delay event must not be queued")
	}
}

func TestOrderingAndRelativeTimes(t *testing.T) {
	q := NewQueue()
	var order []int
	d := &fakeDevice{}
	q.Add(d, func(iarg int) { order = append(order, iarg) }, 10, 1)
	q.Add(d, func(iarg int) { order = append(order, iarg) }, 5, 2)
	q.Add(d, func(iarg int) { order = append(order, iarg) }, 20, 3)

	q.Advance(5)
	if len(order) != 1 || order[0] != 2 {
		t.Fatalf("after advance(5): %v, want [2]", order)
	}
	q.Advance(5)
	if len(order) != 2 || order[1] != 1 {
		t.Fatalf("after advance(5): %v, want [2 1]", order)
	}
	q.Advance(10)
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("after advance(10): %v, want [2 1 3]", order)
	}
}

func TestCancel(t *testing.T) {
	q := NewQueue()
	d := &fakeDevice{}
	fired := false
	q.Add(d, func(iarg int) { fired = true }, 5, 1)
	q.Cancel(d, 1)
	q.Advance(10)
	if fired {
		t.Error("cancelled event must not fire")
	}
}

func TestCancelAllFor(t *testing.T) {
	q := NewQueue()
	d1 := &fakeDevice{addr: 1}
	d2 := &fakeDevice{addr: 2}
	var fired []uint16
	q.Add(d1, func(iarg int) { fired = append(fired, 1) }, 5, 0)
	q.Add(d2, func(iarg int) { fired = append(fired, 2) }, 6, 0)
	q.Add(d1, func(iarg int) { fired = append(fired, 1) }, 7, 0)

	q.CancelAllFor(d1)
	q.Advance(20)
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("fired = %v, want only d2's event", fired)
	}
}

func TestCancelCreditsRemainingDelay(t *testing.T) {
	q := NewQueue()
	d := &fakeDevice{}
	var order []int
	q.Add(d, func(iarg int) { order = append(order, iarg) }, 5, 1)
	q.Add(d, func(iarg int) { order = append(order, iarg) }, 5, 2) // also due 5 ticks from now
	q.Cancel(d, 1)
	q.Advance(10)
	if len(order) != 1 || order[0] != 2 {
		t.Errorf("order = %v, want [2] firing at original absolute time", order)
	}
}
