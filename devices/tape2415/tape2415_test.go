package tape2415

import (
	"testing"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/internal/store"
)

func runCCW(t *testing.T, ch *channel.Channel, events *event.Queue, addr uint16, ticks int) {
	t.Helper()
	cc, err := ch.StartIO(addr)
	if err != nil {
		t.Fatal(err)
	}
	if cc != 0 {
		t.Fatalf("StartIO cc = %d, want 0", cc)
	}
	for i := 0; i < ticks; i++ {
		ch.Cycle()
		events.Advance(1)
	}
}

func TestWriteThenReadRecord(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/tape.tap"

	events := event.NewQueue()
	tp := New(0x0c0, events)
	if err := tp.Attach([]configparser.Option{
		{Name: "file", EqualOpt: path},
		{Name: "ring", EqualOpt: "yes"},
	}); err != nil {
		t.Fatal(err)
	}
	defer tp.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(tp, 0x0c0, 0xfff)

	data := []byte("TAPERECORD")
	for i, b := range data {
		st.PutByte(0x300+uint32(i), b, 0)
	}

	// Write one record.
	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(device.CmdWrite)<<24)|0x300, 0)
	st.PutWord(0x204, uint32(len(data)), 0)
	runCCW(t, ch, events, 0x0c0, 2*len(data)+5)

	if tp.sense != 0 {
		t.Fatalf("write sense = %#x, want 0", tp.sense)
	}

	// Rewind to load point.
	st.PutWord(0x48, 0x00000210, 0)
	st.PutWord(0x210, uint32(ctlRewind)<<24, 0)
	st.PutWord(0x214, 1, 0)
	runCCW(t, ch, events, 0x0c0, 600)

	if !tp.ctx.AtLoadPoint() {
		t.Fatalf("tape not at load point after rewind")
	}

	// Read the record back.
	st.PutWord(0x48, 0x00000220, 0)
	st.PutWord(0x220, (uint32(device.CmdRead)<<24)|0x400, 0)
	st.PutWord(0x224, uint32(len(data)), 0)
	runCCW(t, ch, events, 0x0c0, len(data)+5)

	if tp.sense != 0 {
		t.Fatalf("read sense = %#x, want 0", tp.sense)
	}
	for i, want := range data {
		got, _ := st.GetByte(0x400+uint32(i), 0)
		if got != want {
			t.Errorf("byte %d = %#x, want %#x", i, got, want)
		}
	}
}

func TestCommandRejectWithoutFile(t *testing.T) {
	events := event.NewQueue()
	tp := New(0x0c1, events)

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(tp, 0x0c1, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(device.CmdRead)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)

	runCCW(t, ch, events, 0x0c1, 20)

	if tp.sense != device.SenseINTVENT {
		t.Errorf("sense = %#x, want SenseINTVENT", tp.sense)
	}
}
