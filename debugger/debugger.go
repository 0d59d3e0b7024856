package debugger

/*
 * synacor-hv - Hypervisor debugger controller.
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

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"

	"github.com/rcornwell/synacor-hv/disassembler"
	"github.com/rcornwell/synacor-hv/machine"
	"github.com/rcornwell/synacor-hv/snapshot"
	"github.com/rcornwell/synacor-hv/util/hexdump"
)

// sentinel is the byte that, when read as guest input, suspends the guest
// and hands control to the operator.
const sentinel = '.'

// Controller multiplexes the shared input stream between the guest's `in`
// instruction (GUEST_WAIT_IN) and the operator's debugger commands
// (DEBUGGER_PROMPT), implementing the state machine
// GUEST_RUN -> GUEST_WAIT_IN -> DEBUGGER_PROMPT -> GUEST_RUN.
type Controller struct {
	m            *machine.Machine
	SnapshotPath string
	Out          io.Writer

	line *liner.State
}

// New returns a controller for m. SnapshotPath defaults to
// snapshot.DefaultPath and Out to os.Stdout.
func New(m *machine.Machine) *Controller {
	c := &Controller{
		m:            m,
		SnapshotPath: snapshot.DefaultPath,
		Out:          os.Stdout,
		line:         liner.NewLiner(),
	}
	c.line.SetCtrlCAborts(true)
	return c
}

// Close releases the operator console's line editor.
func (c *Controller) Close() {
	c.line.Close()
}

// Attach wires this controller's input multiplexing into m's `in`
// instruction: r supplies both guest bytes and, once the sentinel is seen,
// the operator's command bytes.
func (c *Controller) Attach(r *bufio.Reader) {
	c.m.In = func() (byte, bool) {
		return c.readIn(r)
	}
}

// readIn implements GUEST_WAIT_IN: it reads bytes from r until it finds
// one meant for the guest. A sentinel byte instead runs a full debugger
// session and is then discarded -- the redesigned behavior keeps the dot
// out of the guest's input stream entirely, rather than forwarding it to
// the destination register the way the unmodified reference does.
func (c *Controller) readIn(r *bufio.Reader) (byte, bool) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, false
		}
		if b != sentinel {
			return b, true
		}
		c.runSession(r)
	}
}

// runSession is DEBUGGER_PROMPT: it dispatches single-letter commands
// read directly off the shared reader until the operator resumes the
// guest.
func (c *Controller) runSession(r *bufio.Reader) {
	fmt.Fprint(c.Out, "\n*** hypervisor control ***\nh - help\n")
	for {
		cmdByte, err := r.ReadByte()
		if err != nil {
			return
		}
		switch cmdByte {
		case 'd':
			c.cmdDisassemble()
		case 'D':
			c.cmdToggleDebug()
		case 's':
			c.cmdSave()
		case 'l':
			c.cmdLoad()
		case 'p':
			c.cmdPrintRegs()
		case 'g':
			if c.cmdGoto() {
				fmt.Fprint(c.Out, "returning execution to guest...\n***\n\n")
				return
			}
		case 'x':
			c.cmdExamine()
		case 'w':
			c.cmdWrite()
		case 'r':
			fmt.Fprint(c.Out, "returning execution to guest...\n***\n\n")
			return
		case '\n', '\r':
			// ignore stray newlines between commands
		default:
			c.printHelp()
		}
	}
}

func (c *Controller) printHelp() {
	fmt.Fprint(c.Out, `h - help
d - disassemble: d SSSS EEEE
D - toggle debug output
s - save state
l - load state
p - print registers
g - goto and run: g NNNN
x - examine memory: x SSSS EEEE
w - write memory: w NNNN v
r - return to guest

NNNN memory location in hex
SSSS start memory location in hex
EEEE end memory location in hex
v value in hex
`)
}

// prompt reads one argument line via the operator's line editor, used by
// every multi-argument command.
func (c *Controller) prompt(label string) (*cmdLine, error) {
	text, err := c.line.Prompt(label)
	if err != nil {
		return nil, err
	}
	c.line.AppendHistory(text)
	return &cmdLine{line: text}, nil
}

func (c *Controller) cmdDisassemble() {
	l, err := c.prompt("d SSSS EEEE> ")
	if err != nil {
		fmt.Fprintln(c.Out, "usage: d SSSS EEEE")
		return
	}
	c.disassembleLine(l)
}

// disassembleLine is cmdDisassemble's argument-parsing and execution half,
// split out so it can be unit-tested against a *cmdLine directly rather
// than through the operator's line editor.
func (c *Controller) disassembleLine(l *cmdLine) {
	start, err1 := l.nextHexWord()
	end, err2 := l.nextHexWord()
	if err1 != nil || err2 != nil || start > end || end >= machine.TOM {
		fmt.Fprintln(c.Out, "invalid params")
		return
	}
	fmt.Fprint(c.Out, disassembler.Range(c.m.Mem()[:], start, end))
}

func (c *Controller) cmdToggleDebug() {
	c.m.Debug = !c.m.Debug
	state := "off"
	if c.m.Debug {
		state = "on"
	}
	fmt.Fprintln(c.Out, "toggling debug output "+state)
	slog.Info("debugger: toggle debug", "on", c.m.Debug)
}

func (c *Controller) cmdSave() {
	if err := snapshot.Save(c.m, c.SnapshotPath); err != nil {
		fmt.Fprintln(c.Out, "save failed:", err)
		slog.Error("debugger: save failed", "error", err)
		return
	}
	fmt.Fprintln(c.Out, "saved state to", c.SnapshotPath)
	slog.Info("debugger: saved state", "path", c.SnapshotPath)
}

func (c *Controller) cmdLoad() {
	if err := snapshot.Load(c.m, c.SnapshotPath); err != nil {
		fmt.Fprintln(c.Out, "load failed:", err)
		slog.Error("debugger: load failed", "error", err)
		return
	}
	fmt.Fprintln(c.Out, "loaded state from", c.SnapshotPath)
	slog.Info("debugger: loaded state", "path", c.SnapshotPath)
}

func (c *Controller) cmdPrintRegs() {
	reg := c.m.Registers()
	fmt.Fprintf(c.Out, "pc: %#06x  status: %#06x  executed: %d\n", c.m.PC(), c.m.Status(), c.m.Executed())
	for i, v := range reg {
		fmt.Fprintf(c.Out, "r%d: %#06x\n", i, v)
	}
}

// cmdGoto implements "goto and run": it sets pc and reports true so the
// caller resumes the guest immediately, the same way the 'r' command does.
// It reports false on a bad argument, leaving the debugger prompt open.
func (c *Controller) cmdGoto() bool {
	l, err := c.prompt("g NNNN> ")
	if err != nil {
		fmt.Fprintln(c.Out, "usage: g NNNN")
		return false
	}
	return c.gotoLine(l)
}

// gotoLine is cmdGoto's argument-parsing and execution half, split out so
// it can be unit-tested against a *cmdLine directly rather than through
// the operator's line editor.
func (c *Controller) gotoLine(l *cmdLine) bool {
	addr, err := l.nextHexWord()
	if err != nil || addr >= machine.TOM {
		fmt.Fprintln(c.Out, "invalid params")
		return false
	}
	c.m.SetPC(addr)
	fmt.Fprintf(c.Out, "pc set to %#06x\n", addr)
	slog.Info("debugger: goto", "pc", addr)
	return true
}

func (c *Controller) cmdExamine() {
	l, err := c.prompt("x SSSS EEEE> ")
	if err != nil {
		fmt.Fprintln(c.Out, "usage: x SSSS EEEE")
		return
	}
	c.examineLine(l)
}

// examineLine is cmdExamine's argument-parsing and execution half, split
// out so it can be unit-tested against a *cmdLine directly rather than
// through the operator's line editor.
func (c *Controller) examineLine(l *cmdLine) {
	start, err1 := l.nextHexWord()
	end, err2 := l.nextHexWord()
	if err1 != nil || err2 != nil || start > end || end >= machine.TOM {
		fmt.Fprintln(c.Out, "invalid params")
		return
	}
	mem := c.m.Mem()
	fmt.Fprint(c.Out, hexdump.Words(mem[start:end+1], 8))
}

func (c *Controller) cmdWrite() {
	l, err := c.prompt("w NNNN v> ")
	if err != nil {
		fmt.Fprintln(c.Out, "usage: w NNNN v")
		return
	}
	c.writeLine(l)
}

// writeLine is cmdWrite's argument-parsing and execution half, split out
// so it can be unit-tested against a *cmdLine directly rather than through
// the operator's line editor.
func (c *Controller) writeLine(l *cmdLine) {
	addr, err1 := l.nextHexWord()
	val, err2 := l.nextHexWord()
	if err1 != nil || err2 != nil || addr >= machine.TOM {
		fmt.Fprintln(c.Out, "invalid params")
		return
	}
	if err := c.m.Poke(addr, val); err != nil {
		fmt.Fprintln(c.Out, "write failed:", err)
		return
	}
	fmt.Fprintf(c.Out, "mem[%#06x] = %#06x\n", addr, val)
	slog.Info("debugger: write memory", "addr", addr, "value", val)
}
