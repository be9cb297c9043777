package card

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReadTextCard(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "deck.txt")
	if err := os.WriteFile(name, []byte("HELLO WORLD\nSECOND CARD\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(name, ModeText)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	c, err := r.ReadCard()
	if err != nil {
		t.Fatal(err)
	}
	if c.Image[0] != 0xc8 { // EBCDIC 'H'
		t.Errorf("col 0 = %02x, want c8", c.Image[0])
	}
	if c.Image[5] != 0x40 { // blank between words
		t.Errorf("col 5 = %02x, want 40 (blank)", c.Image[5])
	}
	for i := 11; i < 80; i++ {
		if c.Image[i] != 0x40 {
			t.Fatalf("col %d = %02x, want blank pad", i, c.Image[i])
		}
	}

	c2, err := r.ReadCard()
	if err != nil {
		t.Fatal(err)
	}
	if c2.Image[0] != 0xe2 { // EBCDIC 'S'
		t.Errorf("second card col 0 = %02x, want e2", c2.Image[0])
	}

	if _, err := r.ReadCard(); err != io.EOF {
		t.Errorf("expected io.EOF after hopper empty, got %v", err)
	}
}

func TestReadEOFMarker(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "deck.txt")
	if err := os.WriteFile(name, []byte("ONE\n~\nTWO\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(name, ModeText)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.ReadCard(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadCard(); err != io.EOF {
		t.Errorf("expected EOF at ~ marker, got %v", err)
	}
}

func TestPunchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.txt")

	p, err := NewPunch(name, ModeText)
	if err != nil {
		t.Fatal(err)
	}
	c := &Card{}
	for i := range c.Image {
		c.Image[i] = 0x40
	}
	copy(c.Image[:3], []byte{0xc8, 0x89, 0x93}) // "HIL" approx, just nonblank bytes
	if err := p.WriteCard(c); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("punch wrote no data")
	}
}

func TestLookupFormat(t *testing.T) {
	if m, ok := LookupFormat("ebcdic"); !ok || m != ModeEBCDIC {
		t.Errorf("LookupFormat(ebcdic) = %d,%v", m, ok)
	}
	if _, ok := LookupFormat("bogus"); ok {
		t.Error("LookupFormat(bogus) should fail")
	}
}
