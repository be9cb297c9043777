/*
 * microsim360 - channel definitions.
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

package channel

const (
	// Fixed low-core locations, architected the same for every channel.
	cswAddr uint32 = 0x40
	cawAddr uint32 = 0x48

	cmdMask    uint32 = 0xff000000
	keyMask    uint32 = 0xf0000000
	addrMask   uint32 = 0x00ffffff
	countMask  uint32 = 0x0000ffff
	statusMask uint32 = 0xffff0000

	chainData uint16 = 0x8000
	chainCmd  uint16 = 0x4000
	flagSLI   uint16 = 0x2000
	flagSkip  uint16 = 0x1000
	flagPCI   uint16 = 0x0800
	flagIDA   uint16 = 0x0400

	statusAttn   uint16 = 0x8000
	statusSMS    uint16 = 0x4000
	statusCtlEnd uint16 = 0x2000
	statusBusy   uint16 = 0x1000
	statusChnEnd uint16 = 0x0800
	statusDevEnd uint16 = 0x0400
	statusCheck  uint16 = 0x0200
	statusExcept uint16 = 0x0100
	statusPCI    uint16 = 0x0080
	statusLength uint16 = 0x0040
	statusPCHK   uint16 = 0x0020
	statusProt   uint16 = 0x0010
)

// Type distinguishes how many concurrent operations a channel supports.
// A selector channel runs one device to completion; a multiplexor channel
// interleaves byte-at-a-time transfers across several slow devices, a
// distinction this package models by how many subchannels it allocates.
type Type int

const (
	TypeSelector Type = iota
	TypeMultiplexor
)

// state is the per-cycle bus/tag sequencing state of one subchannel's
// operation, a generic handshake every device family answers the same
// way regardless of what it does with the data.
type state int

const (
	stateIdle state = iota
	stateSelect
	stateCommand
	stateInitialStatus
	stateData
	stateEndingStatus
)

// CSW mirrors the architected channel status word fields.
type CSW struct {
	Key      uint8
	Addr     uint32
	Status   uint16
	Count    uint16
}
