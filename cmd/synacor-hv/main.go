/*
 * synacor-hv - Main process.
 *
 * Copyright 2024, Richard Cornwell
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
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/synacor-hv/debugger"
	"github.com/rcornwell/synacor-hv/loader"
	"github.com/rcornwell/synacor-hv/machine"
	"github.com/rcornwell/synacor-hv/snapshot"
	"github.com/rcornwell/synacor-hv/util/hexdump"
	"github.com/rcornwell/synacor-hv/util/logger"
)

var Logger *slog.Logger

func main() {
	optDebug := getopt.BoolLong("debug", 'd', "Start with debug tracing enabled")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optSnapshot := getopt.StringLong("snapshot", 's', snapshot.DefaultPath, "Snapshot file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: synacor-hv [options] <image>")
		getopt.Usage()
		os.Exit(1)
	}
	image := args[0]

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "unable to open log file:", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	handler := logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, *optDebug)
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	Logger.Info("synacor-hv started", "image", image)

	m := machine.New()
	m.Debug = *optDebug

	if err := loader.Load(m, image); err != nil {
		Logger.Error("failed to load image", "error", err)
		os.Exit(1)
	}

	ctl := debugger.New(m)
	ctl.SnapshotPath = *optSnapshot
	defer ctl.Close()

	m.Out = func(b byte) {
		os.Stdout.Write([]byte{b})
	}
	ctl.Attach(bufio.NewReader(os.Stdin))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- m.Run()
	}()

	select {
	case <-sigChan:
		Logger.Info("got quit signal")
		os.Exit(130)
	case err := <-done:
		if err == nil {
			Logger.Info("machine halted", "executed", m.Executed())
			os.Exit(0)
		}
		dumpFault(m, err)
		os.Exit(1)
	}
}

// dumpFault reports a machine fault: it logs the error, prints the error,
// the faulting pc, the status word and the executed count to stderr, and
// then dumps the memory around pc in the hex format the debugger's x
// command uses.
func dumpFault(m *machine.Machine, err error) {
	Logger.Error("machine fault", "error", err, "pc", m.PC(), "status", m.Status())

	start := m.PC()
	if start > 8 {
		start -= 8
	} else {
		start = 0
	}
	end := start + 16
	if end >= machine.TOM {
		end = machine.TOM - 1
	}
	mem := m.Mem()
	fmt.Fprintf(os.Stderr, "fault: %v\npc: %#06x  status: %#06x  executed: %d\n",
		err, m.PC(), m.Status(), m.Executed())
	fmt.Fprint(os.Stderr, hexdump.Words(mem[start:end+1], 8))

	if errors.Is(err, machine.ErrEmptyStack) {
		fmt.Fprintln(os.Stderr, "stack is empty")
	}
}
