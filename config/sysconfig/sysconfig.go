/*
 * microsim360 - CPU/channel/device configuration directives.
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

// Package sysconfig wires the "CPU", "CHAN" and "DEV" configuration
// directives to the channel controller and engine main constructs
// before loading the configuration file, the way the teacher's main.go
// calls syschannel.InitializeChannels() before config.LoadConfigFile so
// DEV/CHAN directives have somewhere to land.
//
// A configuration file must list CPU before any CHAN or DEV line: CHAN
// needs the engine's store to back CCW fetches, and DEV needs a channel
// to attach to.
package sysconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	config "github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/devices/console1050"
	"github.com/rcornwell/microsim360/devices/printer1443"
	"github.com/rcornwell/microsim360/devices/punch2540"
	"github.com/rcornwell/microsim360/devices/reader2540"
	"github.com/rcornwell/microsim360/devices/tape2415"
	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/device"
	"github.com/rcornwell/microsim360/internal/microengine"
)

var (
	ctl    *channel.Controller
	engine *microengine.Engine
)

func init() {
	config.Register("CPU", setCPU)
	config.Register("CHAN", setChan)
	config.Register("DEV", setDev)
}

// Init installs the controller and engine that subsequent CPU/CHAN/DEV
// directives configure; main calls this before LoadConfigFile.
func Init(c *channel.Controller, e *microengine.Engine) {
	ctl = c
	engine = e
}

// Engine returns the engine most recently selected by a CPU directive,
// or the one Init installed if no CPU directive ran.
func Engine() *microengine.Engine {
	return engine
}

func setCPU(opts []config.Option) error {
	model, ok := config.Get(opts, "model")
	if !ok {
		model = microengine.Model2030
	}
	e, err := microengine.NewModel(strings.ToUpper(model), ctl)
	if err != nil {
		return err
	}
	engine = e
	microengine.SetDefault(e)
	return nil
}

func setChan(opts []config.Option) error {
	numStr, ok := config.Get(opts, "num")
	if !ok {
		return fmt.Errorf("CHAN directive requires NUM=")
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return fmt.Errorf("CHAN NUM= must be numeric: %w", err)
	}

	typ := channel.TypeSelector
	if t, ok := config.Get(opts, "type"); ok && strings.EqualFold(t, "mux") {
		typ = channel.TypeMultiplexor
	}

	if engine == nil {
		return fmt.Errorf("CHAN directive requires a CPU directive first")
	}
	ch := channel.NewChannel(num, typ, engine.Store)
	ctl.AddChannel(ch)
	return nil
}

// deviceFactory constructs and attaches a device from its DEV directive
// options. Each entry closes over engine.Events so the device's
// completion delay runs on the same macro-cycle clock as the CPU loop
// driving it; additional device types register their own factory the
// same way.
var deviceFactory = map[string]func(addr uint16, opts []config.Option) (device.Device, error){
	"1443": func(addr uint16, opts []config.Option) (device.Device, error) {
		p := printer1443.New(addr, engine.Events)
		if err := p.Attach(opts); err != nil {
			return nil, err
		}
		return p, nil
	},
	"2415": func(addr uint16, opts []config.Option) (device.Device, error) {
		t := tape2415.New(addr, engine.Events)
		if err := t.Attach(opts); err != nil {
			return nil, err
		}
		return t, nil
	},
	"2540R": func(addr uint16, opts []config.Option) (device.Device, error) {
		r := reader2540.New(addr, engine.Events)
		if err := r.Attach(opts); err != nil {
			return nil, err
		}
		return r, nil
	},
	"2540P": func(addr uint16, opts []config.Option) (device.Device, error) {
		p := punch2540.New(addr, engine.Events)
		if err := p.Attach(opts); err != nil {
			return nil, err
		}
		return p, nil
	},
	"1050": func(addr uint16, opts []config.Option) (device.Device, error) {
		c := console1050.New(addr, engine.Events, os.Stdin, os.Stdout)
		if err := c.Attach(opts); err != nil {
			return nil, err
		}
		return c, nil
	},
}

func setDev(opts []config.Option) error {
	addrStr, ok := config.Get(opts, "addr")
	if !ok {
		return fmt.Errorf("DEV directive requires ADDR=")
	}
	addr64, err := strconv.ParseUint(addrStr, 16, 16)
	if err != nil {
		return fmt.Errorf("DEV ADDR= must be hex: %w", err)
	}
	addr := uint16(addr64)

	typ, ok := config.Get(opts, "type")
	if !ok {
		return fmt.Errorf("DEV directive requires TYPE=")
	}

	factory, ok := deviceFactory[strings.ToUpper(typ)]
	if !ok {
		return fmt.Errorf("DEV TYPE=%s not recognized", typ)
	}
	dev, err := factory(addr, opts)
	if err != nil {
		return err
	}

	ch, err := ctl.Channel(int((addr >> 8) & 0xf))
	if err != nil {
		return err
	}
	ch.AddDevice(dev, addr, 0xfff)
	return nil
}
