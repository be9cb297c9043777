/*
 * microsim360 - Main process.
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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/rcornwell/microsim360/config/configparser"
	"github.com/rcornwell/microsim360/config/sysconfig"
	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/microengine"
	"github.com/rcornwell/microsim360/panel"
	logger "github.com/rcornwell/microsim360/util/logger"

	_ "github.com/rcornwell/microsim360/config/debugconfig"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "microsim360.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Echo log to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Println("Unable to create log file:", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, optDebug))
	slog.SetDefault(Logger)

	Logger.Info("microsim360 started")

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("configuration file not found", "file", *optConfig)
		os.Exit(1)
	}

	ctl := channel.NewController()
	channel.SetDefault(ctl)
	sysconfig.Init(ctl, nil)

	if err := config.LoadConfigFile(*optConfig); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	eng := sysconfig.Engine()
	if eng == nil {
		Logger.Error("configuration file did not include a CPU directive")
		os.Exit(1)
	}

	stop := make(chan struct{})
	go runEngine(eng, ctl, stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	panelDone := make(chan struct{})
	go func() {
		panel.Run(eng, ctl)
		close(panelDone)
	}()

	select {
	case <-sigChan:
		fmt.Println("Got quit signal")
	case <-panelDone:
	}

	close(stop)
	Logger.Info("shutting down")
}

// runEngine drives the micro-engine, channel controller and event queue
// one macro-cycle at a time until stop is closed or the engine halts, the
// way the teacher's core.CPU.Start loop owns its own goroutine. Advancing
// Events here, alongside Step and Cycle, is what turns a device's
// scheduled completion event (see devices/printer1443) into something
// that actually fires.
func runEngine(eng *microengine.Engine, ctl *channel.Controller, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if eng.Halted() {
			time.Sleep(time.Millisecond)
			continue
		}
		eng.Step()
		ctl.Cycle()
		eng.Events.Advance(1)
	}
}
