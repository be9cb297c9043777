/*
 * microsim360 - generic card deck read/punch routines.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package card implements the host-side storage format for 80-column card
// decks: plain ASCII text (one card per line, tabs expanded, blank-padded
// to 80 columns) or raw EBCDIC bytes, one card per line.
package card

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rcornwell/microsim360/util/xlat"
)

const (
	ModeAuto int = iota + 1
	ModeText
	ModeEBCDIC
)

var formats = map[string]int{
	"AUTO":   ModeAuto,
	"TEXT":   ModeText,
	"EBCDIC": ModeEBCDIC,
}

// LookupFormat maps a configuration option value to a deck mode.
func LookupFormat(name string) (int, bool) {
	mode, ok := formats[strings.ToUpper(name)]
	return mode, ok
}

// Card is one 80-column card image, stored as EBCDIC bytes.
type Card struct {
	Image [80]uint8
}

// Reader reads a sequence of cards from a host file, the "hopper".
type Reader struct {
	file   *os.File
	rd     *bufio.Reader
	mode   int
	atEOF  bool
	cols   int
}

// NewReader opens name in the given mode (ModeAuto reads the deck exactly
// as ModeText does; it does not detect EBCDIC decks).
func NewReader(name string, mode int) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, rd: bufio.NewReader(f), mode: mode, cols: 80}, nil
}

func (r *Reader) Close() error {
	return r.file.Close()
}

// AtEOF reports whether the hopper is empty.
func (r *Reader) AtEOF() bool {
	return r.atEOF
}

// ReadCard returns the next card image translated to EBCDIC, or io.EOF
// once the hopper is exhausted.
func (r *Reader) ReadCard() (*Card, error) {
	if r.atEOF {
		return nil, io.EOF
	}

	line, err := r.rd.ReadString('\n')
	if len(line) == 0 {
		if errors.Is(err, io.EOF) {
			r.atEOF = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
	}
	line = strings.TrimRight(line, "\r\n")

	card := &Card{}
	for i := range card.Image {
		card.Image[i] = 0x40 // EBCDIC blank
	}

	switch r.mode {
	case ModeEBCDIC:
		for i := 0; i < len(line) && i < r.cols; i++ {
			card.Image[i] = line[i]
		}
	default: // ModeText, ModeAuto
		line = expandTabs(line)
		if strings.HasPrefix(line, "~") {
			r.atEOF = true
			return nil, io.EOF
		}
		for i := 0; i < len(line) && i < r.cols; i++ {
			card.Image[i] = xlat.ASCIIToEBCDIC[line[i]]
		}
	}

	if errors.Is(err, io.EOF) {
		// Last line had no trailing newline; still a valid card, but the
		// hopper is now empty.
		r.atEOF = true
	}
	return card, nil
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			n := 8 - (col % 8)
			for j := 0; j < n; j++ {
				b.WriteByte(' ')
			}
			col += n
		} else {
			b.WriteByte(s[i])
			col++
		}
	}
	return b.String()
}

// Punch appends a card image to a host output file, either as ASCII text
// (trailing blanks trimmed) or raw EBCDIC bytes.
type Punch struct {
	file *os.File
	mode int
}

func NewPunch(name string, mode int) (*Punch, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &Punch{file: f, mode: mode}, nil
}

func (p *Punch) Close() error {
	return p.file.Close()
}

func (p *Punch) WriteCard(c *Card) error {
	switch p.mode {
	case ModeEBCDIC:
		_, err := p.file.Write(c.Image[:])
		if err != nil {
			return err
		}
		_, err = p.file.Write([]byte{'\n'})
		return err
	default:
		out := make([]byte, 0, 80)
		for _, e := range c.Image {
			out = append(out, xlat.EBCDICToASCII[e])
		}
		line := strings.TrimRight(string(out), " ")
		_, err := p.file.WriteString(line + "\n")
		return err
	}
}
