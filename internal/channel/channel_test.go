package channel

import (
	"testing"

	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/store"
)

// testDevice is a minimal device that answers the generic select/command/
// data/status handshake for a single 3-byte read, mirroring the spec's
// "SIO + read 3 bytes + device-end + CSW" scenario.
type testDevice struct {
	addr      uint16
	data      []byte
	pos       int
	selected  bool
	cmdDone   bool
	statusSent bool
}

func (d *testDevice) Addr() uint16 { return d.addr }

func (d *testDevice) BusFunc(tags *uint16, busOut uint8, busIn *uint8) {
	switch {
	case !d.selected && *tags&bustag.SelOut != 0 && *tags&bustag.AdrOut != 0 && busOut == uint8(d.addr):
		d.selected = true
		*tags &^= bustag.SelOut
		*tags |= bustag.OprIn | bustag.AdrIn
		*busIn = uint8(d.addr)

	case d.selected && !d.cmdDone && *tags&bustag.CmdOut != 0:
		d.cmdDone = true

	case d.selected && d.cmdDone && !d.statusSent && *tags&bustag.CmdOut == 0 && *tags&bustag.SrvOut != 0:
		d.statusSent = true
		*tags |= bustag.StaIn
		*busIn = 0 // initial status: not done yet, data phase follows

	case d.selected && d.statusSent && d.pos < len(d.data) && *tags&bustag.SrvOut != 0:
		*tags |= bustag.SrvIn
		*busIn = d.data[d.pos]
		d.pos++

	case d.selected && d.statusSent && d.pos >= len(d.data):
		*tags |= bustag.StaIn
		*busIn = device.StatusChnEnd | device.StatusDevEnd
		d.selected = false
	}
}

func (d *testDevice) Debug(opt string) error { return nil }
func (d *testDevice) Shutdown()              {}

func TestSIOReadThreeBytes(t *testing.T) {
	st := store.New(4096)
	ch := NewChannel(0, TypeSelector, st)
	dev := &testDevice{addr: 0x0b, data: []byte{0x11, 0x22, 0x33}}
	ch.AddDevice(dev, 0x0b, 0xfff)

	// CAW at 0x48: key=0, CCW at 0x200.
	st.PutWord(0x48, 0x00000200, 0)
	// CCW: command=Read(0x2), data addr=0x300, flags=0, count=3.
	st.PutWord(0x200, (uint32(device.CmdRead)<<24)|0x300, 0)
	st.PutWord(0x204, 3, 0)

	cc, err := ch.StartIO(0x0b)
	if err != nil {
		t.Fatal(err)
	}
	if cc != 0 {
		t.Fatalf("StartIO cc = %d, want 0", cc)
	}

	for i := 0; i < 40; i++ {
		ch.Cycle()
	}

	b0, _ := st.GetByte(0x300, 0)
	b1, _ := st.GetByte(0x301, 0)
	b2, _ := st.GetByte(0x302, 0)
	if b0 != 0x11 || b1 != 0x22 || b2 != 0x33 {
		t.Errorf("data = %02x %02x %02x, want 11 22 33", b0, b1, b2)
	}

	cswWord2, _ := st.GetWord(cswAddr+4, 0)
	status := uint16(cswWord2 >> 16)
	if status&statusChnEnd == 0 || status&statusDevEnd == 0 {
		t.Errorf("CSW status = %#04x, want ChnEnd|DevEnd set", status)
	}
	if uint16(cswWord2) != 0 {
		t.Errorf("CSW residual count = %d, want 0", uint16(cswWord2))
	}
}

func TestStartIOUnknownDevice(t *testing.T) {
	st := store.New(4096)
	ch := NewChannel(0, TypeSelector, st)
	cc, err := ch.StartIO(0x0f)
	if err != nil {
		t.Fatal(err)
	}
	if cc != 3 {
		t.Errorf("StartIO to absent device cc = %d, want 3", cc)
	}
}

func TestStartIOBusyWhileActive(t *testing.T) {
	st := store.New(4096)
	ch := NewChannel(0, TypeSelector, st)
	dev := &testDevice{addr: 0x0c, data: []byte{0x01}}
	ch.AddDevice(dev, 0x0c, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(device.CmdRead)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)

	if cc, _ := ch.StartIO(0x0c); cc != 0 {
		t.Fatalf("first StartIO cc = %d, want 0", cc)
	}
	if cc, _ := ch.StartIO(0x0c); cc != 2 {
		t.Errorf("StartIO while active cc = %d, want 2", cc)
	}
}
