package printer1443

import (
	"os"
	"strings"
	"testing"

	"github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/internal/store"
	"github.com/rcornwell/microsim360/util/xlat"
)

func TestWriteLine(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.txt"

	events := event.NewQueue()
	p := New(0x0e, events)
	if err := p.Attach([]configparser.Option{{Name: "file", EqualOpt: path}}); err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(p, 0x0e, 0xfff)

	text := []byte("HI")
	ebcdic := make([]byte, len(text))
	for i, c := range text {
		ebcdic[i] = xlat.ASCIIToEBCDIC[c]
	}
	st.PutWord(0x48, 0x00000200, 0)
	for i, b := range ebcdic {
		st.PutByte(0x300+uint32(i), b, 0)
	}
	st.PutWord(0x200, (uint32(device.CmdWrite)<<24)|0x300, 0)
	st.PutWord(0x204, uint32(len(ebcdic)), 0)

	cc, err := ch.StartIO(0x0e)
	if err != nil {
		t.Fatal(err)
	}
	if cc != 0 {
		t.Fatalf("StartIO cc = %d, want 0", cc)
	}

	for i := 0; i < 40; i++ {
		ch.Cycle()
		events.Advance(1)
	}

	p.file.Sync()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "HI") {
		t.Errorf("printer output = %q, want it to contain %q", data, "HI")
	}
}

func TestCommandRejectWithoutFile(t *testing.T) {
	events := event.NewQueue()
	p := New(0x0f, events)

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(p, 0x0f, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(device.CmdWrite)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)

	cc, err := ch.StartIO(0x0f)
	if err != nil {
		t.Fatal(err)
	}
	if cc != 0 {
		t.Fatalf("StartIO cc = %d, want 0", cc)
	}
	for i := 0; i < 20; i++ {
		ch.Cycle()
		events.Advance(1)
	}
	if p.sense != device.SenseINTVENT {
		t.Errorf("sense = %#x, want SenseINTVENT", p.sense)
	}
}
