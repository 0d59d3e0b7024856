package machine

/*
 * synacor-hv - Virtual machine core.
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
	"fmt"
	"log/slog"

	"github.com/rcornwell/synacor-hv/disassembler"
)

// TOM is the top of addressable memory, exclusive. Addresses 0x0000-0x7FFF
// are memory, TOM..TOM+NumReg-1 are the register overlay.
const TOM = 0x8000

// NumReg is the number of general purpose registers.
const NumReg = 8

// Status register bit positions.
const (
	HaltBit = 0
	M1Bit   = 1
	MemRBit = 2
	MemWBit = 3
	OutBit  = 4
	InBit   = 8
)

// MaxRecentAccess bounds the size of the recent memory access trace.
const MaxRecentAccess = 255

const (
	AccessRead  = 1
	AccessWrite = 2
)

// Access records one entry in the recent memory access trace.
type Access struct {
	Addr uint16
	Kind uint8
}

// Machine holds the full architectural state of one virtual machine
// instance: memory, stack, registers, program counter and status.
type Machine struct {
	mem          [TOM]uint16
	stack        []uint16
	reg          [NumReg]uint16
	pc           uint16
	status       uint16
	executed     uint32
	recentAccess []Access
	Debug        bool

	// Out receives bytes emitted by the `out` instruction.
	Out func(byte)
	// In is called by the `in` instruction to obtain the next input byte.
	// It returns the byte and false once no further input is available.
	In func() (byte, bool)
}

// New returns a freshly reset machine with no program loaded.
func New() *Machine {
	return &Machine{}
}

// SetBit sets bit in data at position.
func SetBit(data *uint16, position uint16) {
	*data |= 1 << position
}

// ClearBit clears bit in data at position.
func ClearBit(data *uint16, position uint16) {
	*data &^= 1 << position
}

// GetBit reports whether the bit at position is set in data.
func GetBit(data uint16, position uint16) bool {
	return data&(1<<position) != 0
}

// SwapEndian exchanges the high and low bytes of a 16-bit word. Memory is
// stored byte-swapped relative to the logical big-endian value used by
// every opcode; every access through Peek/Poke/PeekInc performs this swap.
func SwapEndian(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// Mem exposes the raw (byte-swapped) backing array for the loader and
// snapshot packages; callers outside this package must not reinterpret it
// without going through SwapEndian.
func (m *Machine) Mem() *[TOM]uint16 { return &m.mem }

// PC returns the current program counter.
func (m *Machine) PC() uint16 { return m.pc }

// SetPC overwrites the program counter, used by the debugger's goto command.
func (m *Machine) SetPC(pc uint16) { m.pc = pc }

// Status returns the status register.
func (m *Machine) Status() uint16 { return m.status }

// Executed returns the number of instructions retired so far.
func (m *Machine) Executed() uint32 { return m.executed }

// Halted reports whether the halt bit is set.
func (m *Machine) Halted() bool {
	return GetBit(m.status, HaltBit)
}

// Registers returns a copy of the register file as logical values.
func (m *Machine) Registers() [NumReg]uint16 {
	var out [NumReg]uint16
	for i, v := range m.reg {
		out[i] = SwapEndian(v)
	}
	return out
}

// SetRegister stores the logical value v in register r.
func (m *Machine) SetRegister(r int, v uint16) { m.reg[r] = SwapEndian(v) }

// RecentAccess returns the bounded trace of recent memory accesses.
func (m *Machine) RecentAccess() []Access { return m.recentAccess }

// ClearRecentAccess empties the access trace, for a consumer that has
// drained it.
func (m *Machine) ClearRecentAccess() { m.recentAccess = m.recentAccess[:0] }

func (m *Machine) traceAccess(addr uint16, kind uint8) {
	if len(m.recentAccess) < MaxRecentAccess {
		m.recentAccess = append(m.recentAccess, Access{Addr: addr, Kind: kind})
	}
}

// PeekInc fetches the logical value at mem[pc], advances pc, and returns
// the value. Sets the MEMR status bit. A pc that has run off the end of
// memory (TOM) is a fault, since nothing beyond mem[] is addressable this
// way -- the register window is only reachable through Peek/Poke.
func (m *Machine) PeekInc() (uint16, error) {
	if m.pc >= TOM {
		return 0, fmt.Errorf("%w: fetch at %#04x", ErrMemoryInvalid, m.pc)
	}
	SetBit(&m.status, MemRBit)
	v := m.mem[m.pc]
	m.traceAccess(m.pc, AccessRead)
	m.pc++
	return SwapEndian(v), nil
}

// Peek returns the logical value stored at addr, which may name a memory
// cell (addr < TOM) or a register (TOM <= addr < TOM+NumReg). Any other
// address is a fatal fault. Sets the MEMR status bit.
func (m *Machine) Peek(addr uint16) (uint16, error) {
	SetBit(&m.status, MemRBit)
	var v uint16
	switch {
	case addr < TOM:
		v = m.mem[addr]
	case addr < TOM+NumReg:
		v = m.reg[addr-TOM]
	default:
		return 0, fmt.Errorf("%w: peek %#04x", ErrMemoryInvalid, addr)
	}
	m.traceAccess(addr, AccessRead)
	return SwapEndian(v), nil
}

// Poke stores the logical value at addr, which may name a memory cell or a
// register, exactly as Peek resolves it. Sets the MEMW status bit.
func (m *Machine) Poke(addr uint16, value uint16) error {
	SetBit(&m.status, MemWBit)
	switch {
	case addr < TOM:
		m.mem[addr] = SwapEndian(value)
	case addr < TOM+NumReg:
		m.reg[addr-TOM] = SwapEndian(value)
	default:
		return fmt.Errorf("%w: poke %#04x", ErrMemoryInvalid, addr)
	}
	m.traceAccess(addr, AccessWrite)
	return nil
}

// resolve treats val as an operand already fetched with PeekInc: values
// below TOM are immediates, values in the register window are
// dereferenced through Peek. This is the "operand value" resolution rule;
// it is applied selectively per opcode by the handlers in opcodes.go.
func (m *Machine) resolve(val uint16) (uint16, error) {
	if val >= TOM {
		return m.Peek(val)
	}
	return val, nil
}

func (m *Machine) resetStatus() {
	ClearBit(&m.status, M1Bit)
	ClearBit(&m.status, MemRBit)
	ClearBit(&m.status, MemWBit)
	ClearBit(&m.status, InBit)
	ClearBit(&m.status, OutBit)
	ClearBit(&m.status, HaltBit)
}

// Push places a logical value on the top of the stack.
func (m *Machine) Push(v uint16) {
	m.stack = append(m.stack, v)
}

// Pop removes and returns the top of the stack, or ErrEmptyStack.
func (m *Machine) Pop() (uint16, error) {
	if len(m.stack) == 0 {
		return 0, ErrEmptyStack
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// Stack returns a copy of the stack, bottom first, for inspection and
// snapshotting.
func (m *Machine) Stack() []uint16 {
	out := make([]uint16, len(m.stack))
	copy(out, m.stack)
	return out
}

// SetState restores the full architectural state, used by snapshot load.
// mem is raw (byte-swapped) storage as returned by Mem; reg holds logical
// values as returned by Registers.
func (m *Machine) SetState(mem [TOM]uint16, stack []uint16, reg [NumReg]uint16, pc, status uint16, executed uint32, recent []Access, debug bool) {
	m.mem = mem
	m.stack = append([]uint16(nil), stack...)
	for i, v := range reg {
		m.reg[i] = SwapEndian(v)
	}
	m.pc = pc
	m.status = status
	m.executed = executed
	m.recentAccess = append([]Access(nil), recent...)
	m.Debug = debug
}

// Step performs one fetch-decode-execute cycle: resets the transient
// status bits, fetches and decodes the opcode at pc, and dispatches it.
// When Debug is set, it emits a disassembly line for the fetched
// instruction before executing it. If the machine is already halted,
// Step is a no-op.
func (m *Machine) Step() error {
	if m.Halted() {
		return nil
	}
	m.resetStatus()
	SetBit(&m.status, M1Bit)
	instruction, err := m.PeekInc()
	if err != nil {
		return err
	}
	if m.Debug {
		line, _ := disassembler.One(m.mem[:], m.pc-1)
		slog.Debug("step", "line", line, "executed", m.executed)
	}
	m.executed++
	return m.execute(instruction)
}

// Run steps the machine until it halts or a fault occurs.
func (m *Machine) Run() error {
	for !m.Halted() {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) execute(instruction uint16) error {
	switch instruction {
	case opHalt:
		m.halt()
		return nil
	case opSet:
		return m.opSet()
	case opPush:
		return m.opPush()
	case opPop:
		return m.opPop()
	case opEq:
		return m.opEq()
	case opGt:
		return m.opGt()
	case opJmp:
		return m.opJmp()
	case opJt:
		return m.opJt()
	case opJf:
		return m.opJf()
	case opAdd:
		return m.opAdd()
	case opMult:
		return m.opMult()
	case opMod:
		return m.opMod()
	case opAnd:
		return m.opAnd()
	case opOr:
		return m.opOr()
	case opNot:
		return m.opNot()
	case opRmem:
		return m.opRmem()
	case opWmem:
		return m.opWmem()
	case opCall:
		return m.opCall()
	case opRet:
		return m.opRet()
	case opOut:
		return m.opOut()
	case opIn:
		return m.opIn()
	case opNoop:
		return nil
	default:
		return fmt.Errorf("%w: %#04x at pc %#04x", ErrUnknownOpcode, instruction, m.pc-1)
	}
}

func (m *Machine) halt() {
	SetBit(&m.status, HaltBit)
}
