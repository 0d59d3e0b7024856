package machine

/*
 * synacor-hv - Core interpreter tests.
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
	"errors"
	"testing"
)

// load writes words (already logical, big-endian values) into memory
// starting at address 0, byte-swapping them the way PeekInc expects.
func load(m *Machine, words ...uint16) {
	mem := m.Mem()
	for i, w := range words {
		mem[i] = SwapEndian(w)
	}
}

func TestHaltAtZero(t *testing.T) {
	m := New()
	load(m, opHalt)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !m.Halted() {
		t.Errorf("Halted() = false, want true")
	}
	if got := m.Executed(); got != 1 {
		t.Errorf("Executed() = %d, want 1", got)
	}
}

func TestAddImmediatePlusRegister(t *testing.T) {
	m := New()
	// set r0 = 5; add r1 = r0 + 10; halt
	load(m,
		opSet, TOM, 5,
		opAdd, TOM+1, TOM, 10,
		opHalt,
	)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	reg := m.Registers()
	if reg[1] != 15 {
		t.Errorf("r1 = %d, want 15", reg[1])
	}
}

func TestSetThenReadRegisterSpace(t *testing.T) {
	m := New()
	load(m, opSet, TOM+2, 0x1234, opHalt)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	got, err := m.Peek(TOM + 2)
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if got != 0x1234 {
		t.Errorf("Peek(r2) = %#04x, want 0x1234", got)
	}
}

func TestPushPopLIFO(t *testing.T) {
	m := New()
	load(m,
		opPush, 1,
		opPush, 2,
		opPush, 3,
		opPop, TOM,
		opPop, TOM+1,
		opPop, TOM+2,
		opHalt,
	)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	reg := m.Registers()
	if reg[0] != 3 || reg[1] != 2 || reg[2] != 1 {
		t.Errorf("registers = %v, want [3 2 1 ...]", reg[:3])
	}
}

func TestCallRet(t *testing.T) {
	m := New()
	load(m,
		opCall, 5,
		opHalt,
		opNoop,
		opNoop,
		opNoop,
		opSet, TOM, 42,
		opRet,
	)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if r0 := m.Registers()[0]; r0 != 42 {
		t.Errorf("r0 = %d, want 42", r0)
	}
	if !m.Halted() {
		t.Errorf("Halted() = false, want true")
	}
}

func TestUnknownOpcodeFaults(t *testing.T) {
	m := New()
	load(m, 0x00FF)
	err := m.Run()
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("Run() error = %v, want ErrUnknownOpcode", err)
	}
}

func TestRetOnEmptyStackFaults(t *testing.T) {
	m := New()
	load(m, opRet)
	err := m.Run()
	if !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("Run() error = %v, want ErrEmptyStack", err)
	}
}

func TestPeekInvalidAddressFaults(t *testing.T) {
	m := New()
	_, err := m.Peek(TOM + NumReg)
	if !errors.Is(err, ErrMemoryInvalid) {
		t.Fatalf("Peek() error = %v, want ErrMemoryInvalid", err)
	}
}

func TestJmpDoesNotResolveOperand(t *testing.T) {
	m := New()
	// r0 holds 5, but `jmp r0` must jump to address TOM (the register's own
	// address), not to address 5 -- jmp never value-resolves its operand.
	load(m,
		opSet, TOM, 5,
		opJmp, TOM,
	)
	// jmp lands pc on TOM itself (the register's address), which is past
	// the end of addressable memory and therefore a fault on next fetch.
	err := m.Run()
	if !errors.Is(err, ErrMemoryInvalid) {
		t.Fatalf("Run() error = %v, want ErrMemoryInvalid (jmp landed on raw register address)", err)
	}
}

func TestCallResolvesOperand(t *testing.T) {
	m := New()
	load(m,
		opSet, TOM, 6,
		opCall, TOM,
		opHalt,
		opNoop,
		opNoop,
		opHalt,
	)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil (call r0 should jump to mem[6])", err)
	}
	if !m.Halted() {
		t.Errorf("Halted() = false, want true")
	}
}

func TestOutWritesLowByte(t *testing.T) {
	m := New()
	var got []byte
	m.Out = func(b byte) { got = append(got, b) }
	load(m, opOut, 'h', opOut, 'i', opHalt)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if string(got) != "hi" {
		t.Errorf("output = %q, want %q", got, "hi")
	}
}

func TestModWrapsArithmetic(t *testing.T) {
	m := New()
	load(m, opAdd, TOM, 32767, 10, opHalt)
	if err := m.Run(); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if r0 := m.Registers()[0]; r0 != 9 {
		t.Errorf("r0 = %d, want 9 (32767+10 mod 32768)", r0)
	}
}
