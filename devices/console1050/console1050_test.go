package console1050

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/event"
	"github.com/rcornwell/microsim360/internal/store"
	"github.com/rcornwell/microsim360/util/xlat"
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

func TestReadLine(t *testing.T) {
	events := event.NewQueue()
	in := strings.NewReader("HELLO\n")
	var out bytes.Buffer
	c := New(0x0d0, events, in, &out)
	defer c.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(c, 0x0d0, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(cmdRead)<<24)|0x300, 0)
	st.PutWord(0x204, 5, 0)
	runCCW(t, ch, events, 0x0d0, 15)

	if c.sense != 0 {
		t.Fatalf("sense = %#x, want 0", c.sense)
	}
	want := "HELLO"
	for i := 0; i < len(want); i++ {
		got, _ := st.GetByte(0x300+uint32(i), 0)
		if got != xlat.ASCIIToEBCDIC[want[i]] {
			t.Errorf("byte %d = %#x, want EBCDIC %q", i, got, want[i])
		}
	}
}

func TestWriteLine(t *testing.T) {
	events := event.NewQueue()
	var out bytes.Buffer
	c := New(0x0d1, events, strings.NewReader(""), &out)
	defer c.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(c, 0x0d1, 0xfff)

	data := "HI"
	for i := 0; i < len(data); i++ {
		st.PutByte(0x300+uint32(i), xlat.ASCIIToEBCDIC[data[i]], 0)
	}

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(cmdWrite)<<24)|0x300, 0)
	st.PutWord(0x204, uint32(len(data)), 0)
	runCCW(t, ch, events, 0x0d1, 2*len(data)+5)

	if c.sense != 0 {
		t.Fatalf("sense = %#x, want 0", c.sense)
	}
	if got := out.String(); got != "HI\n" {
		t.Errorf("out = %q, want %q", got, "HI\n")
	}
}

func TestAlarm(t *testing.T) {
	events := event.NewQueue()
	var out bytes.Buffer
	c := New(0x0d2, events, strings.NewReader(""), &out)
	defer c.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(c, 0x0d2, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(cmdAlarm)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)
	runCCW(t, ch, events, 0x0d2, 110)

	if c.sense != 0 {
		t.Fatalf("sense = %#x, want 0", c.sense)
	}
	if !strings.Contains(out.String(), "\a") {
		t.Errorf("out = %q, want it to contain a bell character", out.String())
	}
}

func TestUnsupportedCommandRejected(t *testing.T) {
	events := event.NewQueue()
	c := New(0x0d3, events, strings.NewReader(""), &bytes.Buffer{})
	defer c.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(c, 0x0d3, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(0xff)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)
	runCCW(t, ch, events, 0x0d3, 20)

	if c.sense != device.SenseCMDREJ {
		t.Errorf("sense = %#x, want SenseCMDREJ", c.sense)
	}
}

func TestReadAtEOFSetsIntervention(t *testing.T) {
	events := event.NewQueue()
	c := New(0x0d4, events, strings.NewReader(""), &bytes.Buffer{})
	defer c.Shutdown()

	st := store.New(4096)
	ch := channel.NewChannel(0, channel.TypeSelector, st)
	ch.AddDevice(c, 0x0d4, 0xfff)

	st.PutWord(0x48, 0x00000200, 0)
	st.PutWord(0x200, (uint32(cmdRead)<<24)|0x300, 0)
	st.PutWord(0x204, 1, 0)
	runCCW(t, ch, events, 0x0d4, 20)

	if c.sense != device.SenseINTVENT {
		t.Errorf("sense = %#x, want SenseINTVENT", c.sense)
	}
}
