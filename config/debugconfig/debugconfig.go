/*
 * microsim360 - debug trace configuration directive.
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

// Package debugconfig wires the "DEBUG" configuration directive to the
// trace mask setters of the micro-engine, channel and tape packages, e.g.
//
//	DEBUG CPU=TRACE,STATE
//	DEBUG CHANNEL0=CMD,DATA
//	DEBUG TAPE=CMD
//	DEBUG 0C0=CMD,DATA
package debugconfig

import (
	"errors"
	"strconv"
	"strings"

	config "github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/microengine"
	"github.com/rcornwell/microsim360/util/tape"
)

func init() {
	config.Register("DEBUG", setDebug)
}

func setDebug(opts []config.Option) error {
	for _, opt := range opts {
		name := strings.ToUpper(opt.Name)
		values := optionValues(opt)

		switch {
		case name == "CPU":
			if err := applyAll(values, microengine.Debug); err != nil {
				return err
			}

		case name == "TAPE":
			if err := applyAll(values, tape.Debug); err != nil {
				return err
			}

		case strings.HasPrefix(name, "CHANNEL"):
			number, err := strconv.ParseUint(name[len("CHANNEL"):], 10, 4)
			if err != nil {
				return errors.New("debug channel requires a channel number suffix, e.g. CHANNEL0")
			}
			if err := applyAll(values, func(v string) error {
				return channel.Debug(int(number), v)
			}); err != nil {
				return err
			}

		default:
			devNum, err := strconv.ParseUint(name, 16, 12)
			if err != nil {
				return errors.New("debug option invalid: " + opt.Name)
			}
			dev, err := channel.GetDevice(uint16(devNum))
			if err != nil {
				return err
			}
			if err := applyAll(values, dev.Debug); err != nil {
				return err
			}
		}
	}
	return nil
}

// optionValues collects the EqualOpt and comma list into one slice of
// trace-category names.
func optionValues(opt config.Option) []string {
	values := []string{}
	if opt.EqualOpt != "" {
		values = append(values, strings.ToUpper(opt.EqualOpt))
	}
	for _, v := range opt.Value {
		values = append(values, strings.ToUpper(*v))
	}
	return values
}

func applyAll(values []string, fn func(string) error) error {
	for _, v := range values {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
