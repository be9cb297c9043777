/*
 * microsim360 - channel state machine.
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

// Package channel implements the per-cycle bus/tag state machine that
// drives CCW fetch/execute sequencing for one channel. Every device family
// answers the same generic select/command/data/status handshake through
// its BusFunc, the way model1443_dev negotiates SEL_OUT/ADR_OUT/CMD_OUT/
// SRV_OUT against the shared tag word; this package is the one driver
// every device type shares, rather than each CCW-aware device embedding
// its own copy of the sequencing.
package channel

import (
	"errors"
	"fmt"

	"github.com/rcornwell/microsim360/internal/bustag"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/store"
	"github.com/rcornwell/microsim360/util/debug"
)

var (
	ErrNoDevice  = errors.New("channel: no such device")
	ErrBusy      = errors.New("channel: device or subchannel busy")
	ErrChannel   = errors.New("channel: no such channel")
)

// Debug trace categories, gated the way util/debug's module masks work.
const (
	DebugCmd int = 1 << iota
	DebugData
	DebugDetail
)

// subChan tracks one in-flight (or most recently completed) CCW chain.
type subChan struct {
	dev      device.Device
	devAddr  uint16
	state    state
	caw      uint32
	key      uint8
	ccwAddr  uint32
	ccwCount uint16
	ccwCmd   uint8
	ccwFlags uint16
	status   uint16
	chainFlg bool
	byteBuf  uint8
}

// Channel is one channel's registry of devices plus its subchannel state.
// A selector channel has exactly one subchannel; a multiplexor channel
// has one per addressable unit so several slow devices can be mid-transfer
// at once.
type Channel struct {
	num      int
	typ      Type
	store    *store.Store
	registry *device.Registry
	subs     map[uint16]*subChan
	debugMsk int
}

// NewChannel constructs channel number num, backed by st for CCW/data
// fetches and stores.
func NewChannel(num int, typ Type, st *store.Store) *Channel {
	return &Channel{
		num:      num,
		typ:      typ,
		store:    st,
		registry: device.NewRegistry(),
		subs:     make(map[uint16]*subChan),
	}
}

// AddDevice registers dev at addr, matched by mask on subsequent lookups.
func (c *Channel) AddDevice(dev device.Device, addr uint16, mask uint16) {
	c.registry.Add(dev, addr, mask)
}

// GetDevice returns the device registered at addr.
func (c *Channel) GetDevice(addr uint16) (device.Device, error) {
	dev, ok := c.registry.Find(addr)
	if !ok {
		return nil, ErrNoDevice
	}
	return dev, nil
}

func (c *Channel) subChanFor(devAddr uint16) *subChan {
	key := devAddr
	if c.typ == TypeSelector {
		key = 0
	}
	sc, ok := c.subs[key]
	if !ok {
		sc = &subChan{}
		c.subs[key] = sc
	}
	return sc
}

// StartIO begins a channel program for devAddr, fetching the CAW from the
// fixed low-core location. Returns the architected SIO condition code
// (0 = accepted, 1 = status pending, 2 = busy, 3 = not operational).
func (c *Channel) StartIO(devAddr uint16) (uint8, error) {
	dev, ok := c.registry.Find(devAddr)
	if !ok {
		return 3, nil
	}
	sc := c.subChanFor(devAddr)
	if sc.state != stateIdle {
		return 2, nil
	}
	if sc.status != 0 {
		c.storeCSW(sc)
		sc.status = 0
		return 1, nil
	}

	caw, err := c.store.GetWord(cawAddr, 0)
	if err != nil {
		return 0, err
	}
	sc.dev = dev
	sc.devAddr = devAddr
	sc.key = uint8((caw & keyMask) >> 24)
	sc.caw = caw & addrMask
	sc.status = 0
	sc.chainFlg = false

	if err := c.loadCCW(sc, false); err != nil {
		return 0, err
	}
	sc.state = stateSelect
	return 0, nil
}

// TestIO implements the architected TIO condition codes for devAddr's
// subchannel: 3 not operational, 2 busy, 1 status pending (stored to the
// CSW and cleared), 0 available.
func (c *Channel) TestIO(devAddr uint16) (uint8, error) {
	if _, ok := c.registry.Find(devAddr); !ok {
		return 3, nil
	}
	sc := c.subChanFor(devAddr)
	if sc.status != 0 {
		c.storeCSW(sc)
		sc.status = 0
		return 1, nil
	}
	if sc.state != stateIdle {
		return 2, nil
	}
	return 0, nil
}

// HaltIO implements the architected HIO condition codes: 3 not
// operational, 0 if the subchannel was already idle, 1 if an in-progress
// operation was forced to ending status. It does not model the disconnect
// sequence (CC 2) a multiplexor channel can present mid-transfer.
func (c *Channel) HaltIO(devAddr uint16) (uint8, error) {
	if _, ok := c.registry.Find(devAddr); !ok {
		return 3, nil
	}
	sc := c.subChanFor(devAddr)
	if sc.state == stateIdle {
		return 0, nil
	}
	sc.state = stateIdle
	sc.ccwCmd = 0
	sc.status = statusChnEnd | statusDevEnd
	c.storeCSW(sc)
	sc.status = 0
	return 1, nil
}

// TestChan implements the architected TCH condition codes at channel
// granularity: 2 if any subchannel is mid-operation, 0 otherwise.
func (c *Channel) TestChan() uint8 {
	for _, sc := range c.subs {
		if sc.state != stateIdle {
			return 2
		}
	}
	return 0
}

// Cycle advances every active subchannel one macro-cycle, driving the
// bus/tag handshake against its device's BusFunc.
func (c *Channel) Cycle() {
	for _, sc := range c.subs {
		if sc.state == stateIdle {
			continue
		}
		c.step(sc.devAddr, sc)
	}
}

// step runs one cycle of the generic select/command/data/status handshake
// for one subchannel, threading a single shared tag word through the
// device's BusFunc the way the reference simulator threads tags through
// model1443_dev.
func (c *Channel) step(devAddr uint16, sc *subChan) {
	var tags uint16
	var busOut uint8

	switch sc.state {
	case stateSelect:
		tags = bustag.SelOut | bustag.OprOut | bustag.HldOut | bustag.AdrOut
		busOut = uint8(devAddr)
	case stateCommand:
		tags = bustag.OprOut | bustag.HldOut | bustag.CmdOut
		busOut = sc.ccwCmd
	case stateInitialStatus:
		tags = bustag.OprOut | bustag.HldOut | bustag.SrvOut
	case stateEndingStatus:
		// No SrvOut here: ending status isn't gated behind a service
		// request, and a device mid-transfer must be able to tell this
		// phase apart from stateData by tags alone.
		tags = bustag.OprOut | bustag.HldOut
	case stateData:
		tags = bustag.OprOut | bustag.HldOut | bustag.SrvOut
		if sc.ccwCmd == device.CmdWrite {
			busOut = sc.byteBuf
		}
	}

	var busIn uint8
	workingTags := tags
	for _, d := range c.registry.All() {
		d.BusFunc(&workingTags, busOut, &busIn)
	}

	debug.DebugTagsf(devAddr, sc.state.String(), c.debugMsk, DebugDetail, workingTags, uint16(busOut))

	switch sc.state {
	case stateSelect:
		if workingTags&(bustag.OprIn|bustag.AdrIn) == bustag.OprIn|bustag.AdrIn && busIn == uint8(devAddr) {
			sc.state = stateCommand
		}

	case stateCommand:
		sc.state = stateInitialStatus

	case stateInitialStatus:
		if workingTags&bustag.StaIn != 0 {
			sc.status = uint16(busIn) << 8
			if sc.status&(statusAttn|statusCheck|statusExcept) != 0 {
				sc.state = stateEndingStatus
				break
			}
			if sc.status&statusChnEnd != 0 && sc.ccwCount == 0 {
				sc.state = stateEndingStatus
				break
			}
			sc.state = stateData
		}

	case stateData:
		if workingTags&bustag.SrvIn != 0 {
			if sc.ccwCmd&0x3 == device.CmdRead || sc.ccwCmd == device.CmdSense {
				c.storeByte(sc, busIn)
			}
			sc.ccwCount--
			sc.ccwAddr = (sc.ccwAddr + 1) & addrMask
			if sc.ccwCount == 0 {
				sc.state = stateEndingStatus
			} else if sc.ccwCmd == device.CmdWrite || sc.ccwCmd == device.CmdRDBWD {
				sc.byteBuf = c.fetchByte(sc)
			}
		} else if workingTags&bustag.StaIn != 0 {
			// Status in place of a data byte is the device's ending
			// status: the operation is over.
			sc.status = uint16(busIn) << 8
			sc.state = stateIdle
			sc.ccwCmd = 0
			if sc.status&statusChnEnd != 0 {
				c.storeCSW(sc)
				sc.status = 0
			}
		}

	case stateEndingStatus:
		if workingTags&bustag.StaIn == 0 {
			// Device still busy; wait for it to present ending status.
			break
		}
		sc.status |= uint16(busIn) << 8
		sc.state = stateIdle
		sc.ccwCmd = 0
		if sc.status&statusChnEnd != 0 {
			c.storeCSW(sc)
			sc.status = 0
		}
	}
}

func (c *Channel) fetchByte(sc *subChan) uint8 {
	v, err := c.store.GetByte(sc.ccwAddr, sc.key)
	if err != nil {
		sc.status |= statusProt
		return 0
	}
	return v
}

func (c *Channel) storeByte(sc *subChan, b uint8) {
	if err := c.store.PutByte(sc.ccwAddr, b, sc.key); err != nil {
		sc.status |= statusProt
	}
}

// readFullWord fetches a CCW/IDAW word, enforcing storage-key protection
// the way the reference simulator's readFullWord does.
func (c *Channel) readFullWord(sc *subChan, addr uint32) (uint32, error) {
	w, err := c.store.GetWord(addr, sc.key)
	if err != nil {
		sc.status |= statusPCHK
		return 0, nil
	}
	return w, nil
}

// loadCCW fetches and decodes the next CCW (following TIC and data-chain
// links), adapted from the reference simulator's loadCCW/readFullWord but
// retargeted at the owned Store and without a StartCmd callback: the
// actual command dispatch happens in the per-cycle handshake in step.
func (c *Channel) loadCCW(sc *subChan, ticOK bool) error {
	if sc.chainFlg && sc.ccwFlags&chainData == 0 {
		sc.chainFlg = false
		return nil
	}

	if sc.caw&0x7 != 0 {
		sc.status = statusPCHK
		return nil
	}

	word, err := c.readFullWord(sc, sc.caw)
	if err != nil {
		return err
	}
	sc.caw = (sc.caw + 4) & addrMask

	cmd := uint8((word & cmdMask) >> 24)
	if cmd == device.CmdTIC {
		sc.caw = (sc.caw + 4) & addrMask
		if ticOK {
			sc.caw = word & addrMask
			return c.loadCCW(sc, false)
		}
		sc.status = statusPCHK
		return nil
	}

	if sc.ccwFlags&chainData == 0 {
		sc.ccwCmd = cmd
	}
	sc.ccwAddr = word & addrMask

	word, err = c.readFullWord(sc, sc.caw)
	if err != nil {
		return err
	}
	sc.caw = (sc.caw + 4) & addrMask
	sc.ccwCount = uint16(word & countMask)
	sc.ccwFlags = uint16(word>>16) & 0xff00

	if sc.ccwCount == 0 {
		sc.status = statusPCHK
		sc.ccwCmd = 0
		return nil
	}

	// Write-direction transfers drive busOut from sc.byteBuf every data
	// cycle; prime it with the first byte so the device sees real data
	// on its first SrvIn response, not a zero value.
	if sc.ccwCmd == device.CmdWrite || sc.ccwCmd == device.CmdRDBWD {
		sc.byteBuf = c.fetchByte(sc)
	}
	return nil
}

// storeCSW writes the channel status word to its fixed low-core location,
// mirroring storeCSW in the reference simulator.
func (c *Channel) storeCSW(sc *subChan) {
	c.store.SetWordUnchecked(cswAddr, (uint32(sc.key)<<24)|sc.caw)
	c.store.SetWordUnchecked(cswAddr+4, uint32(sc.ccwCount)|(uint32(sc.status)<<16))
}

// Debug enables a named trace category (cmd, data, detail) for this
// channel's handshake.
func (c *Channel) Debug(opt string) error {
	switch opt {
	case "CMD":
		c.debugMsk |= DebugCmd
	case "DATA":
		c.debugMsk |= DebugData
	case "DETAIL":
		c.debugMsk |= DebugDetail
	default:
		return fmt.Errorf("channel: unknown debug option %q", opt)
	}
	return nil
}

func (s state) String() string {
	switch s {
	case stateIdle:
		return "IDLE"
	case stateSelect:
		return "SELECT"
	case stateCommand:
		return "CMD"
	case stateInitialStatus:
		return "STATUS"
	case stateData:
		return "DATA"
	case stateEndingStatus:
		return "ENDSTATUS"
	default:
		return "?"
	}
}

// Controller owns every channel in the system.
type Controller struct {
	channels map[int]*Channel
}

// NewController returns an empty channel controller.
func NewController() *Controller {
	return &Controller{channels: make(map[int]*Channel)}
}

// AddChannel registers channel num, constructed by the caller (so its
// type and store can be configured first).
func (ctl *Controller) AddChannel(ch *Channel) {
	ctl.channels[ch.num] = ch
}

// Channel returns the channel numbered num.
func (ctl *Controller) Channel(num int) (*Channel, error) {
	ch, ok := ctl.channels[num]
	if !ok {
		return nil, ErrChannel
	}
	return ch, nil
}

// GetDevice looks up the device at devAddr by splitting off its channel
// number (bits 8-11).
func (ctl *Controller) GetDevice(devAddr uint16) (device.Device, error) {
	ch, err := ctl.Channel(int((devAddr >> 8) & 0xf))
	if err != nil {
		return nil, ErrNoDevice
	}
	return ch.GetDevice(devAddr)
}

// TestIO dispatches the architected TIO instruction to devAddr's channel.
func (ctl *Controller) TestIO(devAddr uint16) (uint8, error) {
	ch, err := ctl.Channel(int((devAddr >> 8) & 0xf))
	if err != nil {
		return 3, nil
	}
	return ch.TestIO(devAddr)
}

// HaltIO dispatches the architected HIO instruction to devAddr's channel.
func (ctl *Controller) HaltIO(devAddr uint16) (uint8, error) {
	ch, err := ctl.Channel(int((devAddr >> 8) & 0xf))
	if err != nil {
		return 3, nil
	}
	return ch.HaltIO(devAddr)
}

// TestChan dispatches the architected TCH instruction; devAddr's high bits
// select the channel, the low bits are unused.
func (ctl *Controller) TestChan(devAddr uint16) (uint8, error) {
	ch, err := ctl.Channel(int((devAddr >> 8) & 0xf))
	if err != nil {
		return 3, nil
	}
	return ch.TestChan(), nil
}

// Debug dispatches a debug option to channel number, used by the DEBUG
// configuration directive's CHANNEL<n>=... form.
func (ctl *Controller) Debug(number int, opt string) error {
	ch, err := ctl.Channel(number)
	if err != nil {
		return err
	}
	return ch.Debug(opt)
}

// Cycle advances every channel one macro-cycle.
func (ctl *Controller) Cycle() {
	for _, ch := range ctl.channels {
		ch.Cycle()
	}
}

// defaultController is the system's one channel controller, set by main
// at startup before configuration directives run. Configuration
// directives (the DEBUG keyword in particular) are parsed as a one-shot,
// process-wide step with no natural owner to thread a *Controller
// through, so this mirrors the reference simulator's single process-wide
// chanUnit table rather than inventing per-directive plumbing for it.
var defaultController *Controller

// SetDefault installs ctl as the target of the package-level Debug and
// GetDevice helpers used by configuration directives.
func SetDefault(ctl *Controller) {
	defaultController = ctl
}

// Debug dispatches a debug option to channel number on the default
// controller, for the "DEBUG CHANNEL<n>=..." configuration directive.
func Debug(number int, opt string) error {
	if defaultController == nil {
		return errors.New("channel: no controller configured")
	}
	return defaultController.Debug(number, opt)
}

// GetDevice looks up a device by address on the default controller, for
// the "DEBUG <addr>=..." configuration directive.
func GetDevice(addr uint16) (device.Device, error) {
	if defaultController == nil {
		return nil, errors.New("channel: no controller configured")
	}
	return defaultController.GetDevice(addr)
}
