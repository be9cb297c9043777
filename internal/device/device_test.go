package device

import "testing"

type fakeDevice struct {
	addr uint16
}

func (f *fakeDevice) Addr() uint16 { return f.addr }
func (f *fakeDevice) BusFunc(tagsInOut *uint16, busOut uint8, busIn *uint8) {}
func (f *fakeDevice) Debug(opt string) error { return nil }
func (f *fakeDevice) Shutdown()              {}

func TestRegistryFindInsertionOrder(t *testing.T) {
	r := NewRegistry()
	d1 := &fakeDevice{addr: 0x0c0}
	d2 := &fakeDevice{addr: 0x0c0} // same address, should lose to d1
	r.Add(d1, 0x0c0, 0xfff)
	r.Add(d2, 0x0c0, 0xfff)

	found, ok := r.Find(0x0c0)
	if !ok || found != Device(d1) {
		t.Errorf("Find returned %v, want d1 (insertion order)", found)
	}
}

func TestRegistryMaskLookup(t *testing.T) {
	r := NewRegistry()
	d := &fakeDevice{addr: 0x0c0}
	r.Add(d, 0x000, 0xf00) // matches any unit on channel 0

	found, ok := r.Find(0x0c5)
	if !ok || found != Device(d) {
		t.Errorf("channel-wide mask lookup failed: %v, %v", found, ok)
	}

	if _, ok := r.Find(0x1c5); ok {
		t.Error("lookup on different channel should fail")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	d1 := &fakeDevice{addr: 0x0c0}
	d2 := &fakeDevice{addr: 0x0c1}
	r.Add(d1, 0x0c0, 0xfff)
	r.Add(d2, 0x0c1, 0xfff)

	r.Remove(d1)
	if r.Len() != 1 {
		t.Fatalf("Len after remove = %d, want 1", r.Len())
	}
	if _, ok := r.Find(0x0c0); ok {
		t.Error("removed device should no longer be found")
	}
	if _, ok := r.Find(0x0c1); !ok {
		t.Error("remaining device should still be found")
	}
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry()
	d1 := &fakeDevice{addr: 0x0c0}
	d2 := &fakeDevice{addr: 0x0c1}
	r.Add(d1, 0x0c0, 0xfff)
	r.Add(d2, 0x0c1, 0xfff)

	all := r.All()
	if len(all) != 2 || all[0] != Device(d1) || all[1] != Device(d2) {
		t.Errorf("All() = %v, want insertion order [d1 d2]", all)
	}
}
