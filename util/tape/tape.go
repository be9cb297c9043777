/*
 * microsim360 - generic tape interface.
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

// Package tape implements the host-side container format for magnetic tape
// images attached to the 2415 tape drive. The primary format is the
// SIMH-compatible container: each record is bracketed by a little-endian
// 32-bit length word (before and after the data), a zero-length record is a
// tape mark, and 0xFFFFFFFF marks end of medium.
package tape

import (
	"errors"
	"io"
	"os"
	"strings"
)

const (
	// Supported tape container formats.
	FmtSimh = 1 + iota
	FmtE11
	FmtP7B
	FmtAWS

	p7bIRG byte = 0x80
	bcdTM  byte = 0x17

	irgLen = 1200

	funcNone = 0
	funcRead = 1 + iota
	funcWrite
	funcReadBack
	funcMark
)

var (
	ErrEOT         = errors.New("EOT")    // end of tape
	ErrMark        = errors.New("MARK")   // tape mark found
	ErrBOT         = errors.New("BOT")    // beginning of tape
	ErrEOR         = errors.New("EOR")    // end of record
	errFormat      = errors.New("tape: record format error")
	errType        = errors.New("tape: format not supported")
	errNotAttached = errors.New("tape: not attached")
)

// Context holds one tape drive's image file and positioning state.
type Context struct {
	file     *os.File
	mode     int
	format   int
	ring     bool // has a write ring (write enabled)
	mark     bool // last record read/written was a tape mark
	bot      bool
	eot      bool
	seven    bool // 7-track drive, density/parity conversion only
	frame    int
	bufPos   int
	bufLen   int
	position int64
	lrecl    uint32
	recPos   uint32
	startRec int64
	dirty    bool
	buffer   [32 * 1024]byte
}

var formats = map[string]int{
	"SIMH": FmtSimh,
	"TAP":  FmtSimh,
	"E11":  FmtE11,
	"P7B":  FmtP7B,
	"AWS":  FmtAWS,
}

const (
	// Debug trace categories, bitmask.
	DebugCmd = 1 << iota
	DebugData
	DebugDetail
)

var debugOption = map[string]int{
	"CMD":    DebugCmd,
	"DATA":   DebugData,
	"DETAIL": DebugDetail,
}

var debugMsk int

// Debug enables a trace category by configuration name.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("tape debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// DebugMask returns the currently enabled trace categories.
func DebugMask() int {
	return debugMsk
}

func NewContext() *Context {
	return &Context{format: FmtSimh}
}

// SetFormat selects the container format by configuration name.
func (t *Context) SetFormat(name string) error {
	mode, ok := formats[strings.ToUpper(name)]
	if !ok {
		t.format = FmtSimh
		return errFormat
	}
	t.format = mode
	return nil
}

func (t *Context) GetFormat() string {
	for n, f := range formats {
		if f == t.format {
			return n
		}
	}
	return "unknown"
}

func (t *Context) AtLoadPoint() bool { return t.bot }
func (t *Context) Ready() bool       { return t.file != nil }
func (t *Context) SetRing()          { t.ring = true }
func (t *Context) SetNoRing()        { t.ring = false }
func (t *Context) WriteRing() bool   { return t.ring }
func (t *Context) Set9Track()        { t.seven = false }
func (t *Context) Set7Track()        { t.seven = true }
func (t *Context) Is9Track() bool    { return !t.seven }
func (t *Context) Attached() bool    { return t.file != nil }

func (t *Context) FileName() string {
	if t.file != nil {
		return t.file.Name()
	}
	return ""
}

// Attach opens fileName, creating it if the ring (write enable) is set.
func (t *Context) Attach(fileName string) error {
	var err error
	if t.ring {
		t.file, err = os.OpenFile(fileName, os.O_RDWR|os.O_CREATE, 0o644)
	} else {
		t.file, err = os.Open(fileName)
	}
	t.position = 0
	t.bot = true
	t.eot = false
	t.mark = false
	t.bufPos = 0
	t.bufLen = 0
	t.lrecl = 0
	t.startRec = 0
	t.dirty = false
	return err
}

func (t *Context) Detach() error {
	var err error
	if t.dirty {
		_, _ = t.file.Seek(t.position, io.SeekStart)
		n, werr := t.file.Write(t.buffer[:t.bufLen])
		if werr != nil {
			err = werr
		} else if n != t.bufLen {
			err = errors.New("tape: short write on " + t.file.Name())
		}
		t.dirty = false
	}
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	t.file = nil
	return err
}

// WriteStart begins a write, reserving space for the leading length word.
func (t *Context) WriteStart() error {
	if t.file == nil {
		return errNotAttached
	}
	if !t.ring {
		return errors.New("tape: write protected")
	}

	t.bot = false
	t.eot = false
	t.recPos = 0
	t.mode = funcWrite
	t.startRec = t.position + int64(t.bufPos)

	var err error
	switch t.format {
	case FmtSimh, FmtE11:
		for range 4 {
			if err = t.writeNextFrame(0); err != nil {
				break
			}
		}
	case FmtP7B:
	case FmtAWS:
		hdr := []byte{0, 0, byte((t.lrecl >> 8) & 0xff), byte(t.lrecl & 0xff), 0xA, 0}
		if t.mark {
			hdr[4] = 0x4
			t.mark = false
		}
		for _, d := range hdr {
			if err = t.writeNextFrame(d); err != nil {
				break
			}
		}
	default:
		err = errType
	}
	t.lrecl = 0
	return err
}

// WriteMark writes a tape mark at the current position.
func (t *Context) WriteMark() error {
	if t.file == nil {
		return errNotAttached
	}
	if !t.ring {
		return errors.New("tape: write protected")
	}

	var err error
	t.bot = false
	t.eot = false
	t.startRec = t.position + int64(t.bufPos)
	t.recPos = 0
	t.mode = funcMark

	switch t.format {
	case FmtSimh, FmtE11:
		for range 4 {
			if err = t.writeNextFrame(0); err != nil {
				break
			}
		}
		t.lrecl = 0
	case FmtP7B:
		err = t.writeNextFrame(bcdTM | p7bIRG)
		t.lrecl = 0
	case FmtAWS:
		t.mark = true
	default:
		err = errType
	}
	t.frame += irgLen
	return err
}

// ReadForwStart begins a forward read, consuming the leading length word.
func (t *Context) ReadForwStart() error {
	if t.file == nil {
		return errNotAttached
	}

	t.bot = false
	t.eot = false
	t.mode = funcRead
	t.startRec = t.position + int64(t.bufPos)

	switch t.format {
	case FmtSimh, FmtE11:
		hdr := [4]byte{}
		var err error
		for i := range 4 {
			if hdr[i], err = t.readNextFrame(); err != nil {
				return err
			}
		}
		t.lrecl = uint32(hdr[0]) | uint32(hdr[1])<<8 | uint32(hdr[2])<<16 | uint32(hdr[3])<<24
		if t.lrecl == 0xffffffff {
			t.eot = true
			for range 4 {
				if _, err = t.readPrevFrame(); err != nil {
					return err
				}
			}
			return ErrEOT
		}
		if t.lrecl == 0 {
			t.frame += irgLen
			t.mark = true
			return ErrMark
		}
		t.recPos = 0

	case FmtP7B:
		data, err := t.peekNextFrame()
		t.lrecl = 2
		if err != nil {
			return err
		}
		if data == p7bIRG|bcdTM {
			_, _ = t.readNextFrame()
			t.frame += irgLen
			t.mark = true
			return ErrMark
		}
		t.lrecl = 0

	case FmtAWS:
		hdr := [6]byte{}
		var err error
		for i := range 6 {
			if hdr[i], err = t.readNextFrame(); err != nil {
				return err
			}
		}
		t.lrecl = uint32(hdr[1])<<8 | uint32(hdr[0])

	default:
		return errType
	}
	return nil
}

// ReadBackStart begins a backward read, consuming the trailing length word.
func (t *Context) ReadBackStart() error {
	if t.file == nil {
		return errNotAttached
	}

	t.bot = false
	t.eot = false
	t.mode = funcReadBack
	t.startRec = t.position + int64(t.bufPos)

	switch t.format {
	case FmtSimh, FmtE11:
		recLen := [4]byte{}
		var err error
		for i := 3; i >= 0; i-- {
			if recLen[i], err = t.readPrevFrame(); err != nil {
				return err
			}
		}
		t.lrecl = uint32(recLen[0]) | uint32(recLen[1])<<8 | uint32(recLen[2])<<16 | uint32(recLen[3])<<24
		if t.lrecl == 0xffffffff {
			t.eot = true
			return ErrEOT
		}
		if t.lrecl == 0 {
			t.frame += irgLen
			t.mark = true
			return ErrMark
		}
		if t.format == FmtSimh && (t.lrecl&1) != 0 {
			if _, err := t.readPrevFrame(); err != nil {
				return err
			}
		}
		t.recPos = t.lrecl

	case FmtP7B:
		t.startRec = t.position + int64(t.bufPos)
		data, err := t.readPrevFrame()
		if err != nil {
			return err
		}
		t.lrecl = 0
		if data == p7bIRG|bcdTM {
			t.startRec = t.position + int64(t.bufPos)
			t.frame -= irgLen
			t.lrecl = 2
			t.mark = true
			return ErrMark
		}
		_, err2 := t.readNextFrame()
		return err2

	case FmtAWS:
		hdr := [6]byte{}
		var err error
		for i := 5; i >= 0; i-- {
			if hdr[i], err = t.readPrevFrame(); err != nil {
				return err
			}
		}
		t.lrecl = uint32(hdr[3])<<8 | uint32(hdr[2])

	default:
		return errType
	}
	return nil
}

// ReadFrame returns the next byte of the current record.
func (t *Context) ReadFrame() (byte, error) {
	if t.file == nil {
		return 0, errNotAttached
	}
	if t.mark {
		return 0, ErrMark
	}

	var err error
	var data byte
	switch t.format {
	case FmtSimh, FmtE11:
		switch t.mode {
		case funcRead:
			if t.recPos == t.lrecl {
				return 0, ErrEOR
			}
			data, err = t.readNextFrame()
			t.recPos++
			t.frame++
		case funcReadBack:
			if t.recPos == 0 {
				return 0, ErrEOR
			}
			data, err = t.readPrevFrame()
			t.recPos--
			t.frame--
		}

	case FmtP7B:
		switch t.mode {
		case funcRead:
			if t.lrecl == 2 {
				return 0, ErrEOR
			}
			data, err = t.readNextFrame()
			if t.lrecl == 1 && (data&p7bIRG) != 0 {
				_, _ = t.readPrevFrame()
				t.lrecl = 2
				return 0, ErrEOR
			}
			t.lrecl = 1
			t.frame++
			data &= ^p7bIRG
		case funcReadBack:
			if t.lrecl == 2 {
				return 0, ErrEOR
			}
			data, err = t.readPrevFrame()
			if t.lrecl == 1 && (data&p7bIRG) != 0 {
				t.lrecl = 2
			} else {
				t.lrecl = 1
			}
			data &= ^p7bIRG
			t.frame--
		}

	case FmtAWS:
		switch t.mode {
		case funcRead:
			if t.recPos == t.lrecl {
				return 0, ErrEOR
			}
			data, err = t.readNextFrame()
			t.recPos++
			t.frame++
		case funcReadBack:
			if t.recPos == 0 {
				return 0, ErrEOR
			}
			data, err = t.readPrevFrame()
			t.recPos--
			t.frame--
		}

	default:
		return 0, errType
	}
	return data, err
}

// WriteFrame writes the next byte of the current record.
func (t *Context) WriteFrame(data byte) error {
	if t.file == nil {
		return errNotAttached
	}
	if t.format == FmtP7B {
		data &= ^p7bIRG
		if t.recPos == 0 {
			data |= p7bIRG
		}
	}
	t.lrecl++
	t.frame++
	t.recPos++
	return t.writeNextFrame(data)
}

// FinishRecord completes the current record, writing or verifying the
// trailing length word.
func (t *Context) FinishRecord() error {
	if t.file == nil {
		return errNotAttached
	}
	if t.mark {
		t.mark = false
		return nil
	}

	var err error
	switch t.format {
	case FmtSimh, FmtE11:
		err = t.finishSimhRecord()
	case FmtP7B:
		if t.mode == funcRead || t.mode == funcReadBack {
			for t.lrecl != 2 {
				if _, err = t.ReadFrame(); errors.Is(err, ErrEOR) {
					return nil
				} else if err != nil {
					break
				}
			}
		}
	case FmtAWS:
		err = t.finishAWSRecord()
	default:
		return errType
	}
	t.mode = funcNone
	return err
}

// ReadRecord reads one whole record forward into buf, starting a fresh
// read and finishing it. It reports the number of bytes placed in buf
// and stops early with ErrEOR still folded into a nil error if the
// record is shorter than buf; ErrMark and ErrEOT propagate as-is so the
// caller can distinguish a tape mark or physical end from real data.
func (t *Context) ReadRecord(buf []byte) (int, error) {
	if err := t.ReadForwStart(); err != nil {
		return 0, err
	}
	n := 0
	for n < len(buf) {
		b, err := t.ReadFrame()
		if errors.Is(err, ErrEOR) {
			break
		}
		if err != nil {
			return n, err
		}
		buf[n] = b
		n++
	}
	return n, t.FinishRecord()
}

// WriteRecord writes buf as one whole record, running WriteStart,
// WriteFrame and FinishRecord in sequence so a device's command handler
// can hand over a fully assembled record without juggling tape's
// frame-at-a-time state itself.
func (t *Context) WriteRecord(buf []byte) error {
	if err := t.WriteStart(); err != nil {
		return err
	}
	for _, b := range buf {
		if err := t.WriteFrame(b); err != nil {
			return err
		}
	}
	return t.FinishRecord()
}

// Rewind returns the tape to load point, flushing any pending write.
func (t *Context) Rewind() error {
	if t.file == nil {
		return errNotAttached
	}
	if err := t.flushDirty(); err != nil {
		return err
	}
	t.bufPos = 0
	t.bufLen = 0
	t.frame = 0
	t.position = 0
	t.mark = false
	t.eot = false
	t.bot = true
	return nil
}

// StartRewind flushes any pending write without resetting position; used
// by the device model to charge rewind time before completing Rewind.
func (t *Context) StartRewind() error {
	if t.file == nil {
		return errNotAttached
	}
	if err := t.flushDirty(); err != nil {
		return err
	}
	t.bufPos = 0
	t.bufLen = 0
	return nil
}

// RewindFrames backs the tape up by frames, reporting whether load point
// was reached before consuming the full distance.
func (t *Context) RewindFrames(frames int) bool {
	if t.frame < frames {
		t.frame = 0
		t.position = 0
		t.mark = false
		t.eot = false
		t.bot = true
		return true
	}
	t.frame -= frames
	return false
}

func (t *Context) flushDirty() error {
	if !t.dirty {
		return nil
	}
	_, _ = t.file.Seek(t.position, io.SeekStart)
	n, err := t.file.Write(t.buffer[:t.bufLen])
	if err != nil {
		return err
	}
	if n != t.bufLen {
		return errors.New("tape: short write on " + t.file.Name())
	}
	t.dirty = false
	return nil
}

func (t *Context) finishSimhRecord() error {
	switch t.mode {
	case funcRead:
		for t.recPos < t.lrecl {
			if _, err := t.readNextFrame(); err != nil {
				return err
			}
			t.recPos++
		}
		if t.format == FmtSimh && (t.lrecl&1) != 0 {
			if _, err := t.readNextFrame(); err != nil {
				return err
			}
		}
		recLen := [4]byte{}
		var err error
		for i := range 4 {
			if recLen[i], err = t.readNextFrame(); err != nil {
				return err
			}
		}
		lrecl := uint32(recLen[0]) | uint32(recLen[1])<<8 | uint32(recLen[2])<<16 | uint32(recLen[3])<<24
		if lrecl != t.lrecl {
			return errFormat
		}

	case funcWrite:
		if t.format == FmtSimh && (t.lrecl&1) != 0 {
			_ = t.writeNextFrame(0)
		}
		lrecl := [4]byte{
			byte(t.lrecl & 0xff), byte(t.lrecl >> 8 & 0xff),
			byte(t.lrecl >> 16 & 0xff), byte(t.lrecl >> 24 & 0xff),
		}
		for _, d := range lrecl {
			if err := t.writePrevByte(d); err != nil {
				return err
			}
			if err := t.writeNextFrame(d); err != nil {
				return err
			}
		}

	case funcReadBack:
		for t.recPos > 0 {
			if _, err := t.readPrevFrame(); err != nil {
				return err
			}
			t.recPos--
		}
		recLen := [4]byte{}
		for i := 3; i >= 0; i-- {
			var err error
			if recLen[i], err = t.readPrevFrame(); err != nil {
				return err
			}
		}
		lrecl := uint32(recLen[0]) | uint32(recLen[1])<<8 | uint32(recLen[2])<<16 | uint32(recLen[3])<<24
		if lrecl != t.lrecl {
			return errFormat
		}
	}
	return nil
}

func (t *Context) finishAWSRecord() error {
	switch t.mode {
	case funcRead:
		for t.recPos < t.lrecl {
			if _, err := t.readNextFrame(); err != nil {
				return err
			}
			t.recPos++
		}
		hdr := [6]byte{}
		var err error
		for i := range 6 {
			if hdr[i], err = t.readNextFrame(); err != nil {
				return err
			}
		}
		lrecl := uint32(hdr[3])<<8 | uint32(hdr[2])
		if lrecl != t.lrecl {
			return errFormat
		}
		if hdr[4] == 0x4 {
			t.mark = true
		}

	case funcWrite:
		lrecl := [4]byte{
			byte(t.lrecl & 0xff), byte(t.lrecl >> 8 & 0xff),
			byte(t.lrecl >> 16 & 0xff), byte(t.lrecl >> 24 & 0xff),
		}
		for _, d := range lrecl {
			if err := t.writePrevByte(d); err != nil {
				return err
			}
			if err := t.writeNextFrame(d); err != nil {
				return err
			}
		}

	case funcReadBack:
		for t.recPos < t.lrecl {
			if _, err := t.readNextFrame(); err != nil {
				return err
			}
			t.recPos++
		}
		hdr := [6]byte{}
		var err error
		for i := range 6 {
			if hdr[i], err = t.readNextFrame(); err != nil {
				return err
			}
		}
		lrecl := uint32(hdr[1])<<8 | uint32(hdr[0])
		if lrecl != t.lrecl {
			return errFormat
		}
		if hdr[4] == 0x4 {
			t.mark = true
		}
	}
	return nil
}

func (t *Context) readNextFrame() (byte, error) {
	if t.file == nil {
		return 0, errNotAttached
	}
	if err := t.flushBuffer(); err != nil {
		return 0, err
	}
	if err := t.readBuffer(); err != nil {
		return 0, err
	}
	data := t.buffer[t.bufPos]
	t.bufPos++
	return data, nil
}

func (t *Context) peekNextFrame() (byte, error) {
	if t.file == nil {
		return 0, errNotAttached
	}
	if err := t.flushBuffer(); err != nil {
		return 0, err
	}
	if err := t.readBuffer(); err != nil {
		return 0, err
	}
	return t.buffer[t.bufPos], nil
}

func (t *Context) writeNextFrame(data byte) error {
	if t.file == nil {
		return errNotAttached
	}
	if t.bufPos >= len(t.buffer) {
		if t.dirty {
			_, _ = t.file.Seek(t.position, io.SeekStart)
			n, err := t.file.Write(t.buffer[:])
			if err != nil {
				return err
			}
			if n != t.bufLen {
				return errors.New("tape: short write on " + t.file.Name())
			}
			t.position += int64(t.bufLen)
			t.dirty = false
		}
		t.bufLen = 0
		t.bufPos = 0
	}
	t.buffer[t.bufPos] = data
	t.bufPos++
	t.dirty = true
	if t.bufPos > t.bufLen {
		t.bufLen = t.bufPos
	}
	return nil
}

func (t *Context) writePrevByte(data byte) error {
	if t.file == nil {
		return errNotAttached
	}
	pos := t.startRec - t.position
	if pos >= 0 && pos < int64(t.bufLen) {
		t.buffer[pos] = data
		t.dirty = true
	} else {
		_, _ = t.file.Seek(t.startRec, io.SeekStart)
		if _, err := t.file.Write([]byte{data}); err != nil {
			return err
		}
	}
	t.startRec++
	return nil
}

func (t *Context) flushBuffer() error {
	if t.bufPos < t.bufLen {
		return nil
	}
	if t.dirty {
		_, _ = t.file.Seek(t.position, io.SeekStart)
		n, err := t.file.Write(t.buffer[:t.bufLen])
		if err != nil {
			return err
		}
		if n != t.bufLen {
			return errors.New("tape: short write on " + t.file.Name())
		}
		t.position += int64(t.bufLen)
		t.bufLen = 0
		t.dirty = false
	}
	return nil
}

func (t *Context) readBuffer() error {
	if t.bufPos < t.bufLen {
		return nil
	}
	var err error
	t.position += int64(t.bufLen)
	_, _ = t.file.Seek(t.position, io.SeekStart)
	t.bufLen, err = t.file.Read(t.buffer[:])
	t.bufPos = 0
	if errors.Is(err, io.EOF) {
		t.eot = true
	}
	return err
}

func (t *Context) readPrevFrame() (byte, error) {
	if t.file == nil {
		return 0, errNotAttached
	}

	if t.bufPos != 0 && t.bufLen != 0 {
		t.bufPos--
		return t.buffer[t.bufPos], nil
	}

	if t.dirty {
		_, _ = t.file.Seek(t.position, io.SeekStart)
		n, err := t.file.Write(t.buffer[:t.bufLen])
		if err != nil {
			return 0, err
		}
		if n != t.bufLen {
			return 0, errors.New("tape: short write on " + t.file.Name())
		}
		t.dirty = false
	}

	if t.bot {
		return 0, ErrBOT
	}

	if t.position == 0 {
		data := t.buffer[t.bufPos]
		t.bot = true
		t.bufPos = 0
		t.bufLen = 0
		return data, ErrBOT
	}

	opos := -1
	if int(t.position) < len(t.buffer) {
		opos = int(t.position)
		t.position = 0
	} else {
		t.position -= int64(len(t.buffer))
	}

	_, _ = t.file.Seek(t.position, io.SeekStart)
	n, err := t.file.Read(t.buffer[:])
	t.bufLen = n
	if err != nil {
		return 0, err
	}

	if opos == -1 {
		t.bufPos = t.bufLen
	} else {
		t.bufPos = 0
	}

	t.eot = false
	t.bufPos--
	return t.buffer[t.bufPos], nil
}
