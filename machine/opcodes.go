package machine

/*
 * synacor-hv - Opcode dispatch table and instruction semantics.
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

const (
	opHalt = 0x00
	opSet  = 0x01
	opPush = 0x02
	opPop  = 0x03
	opEq   = 0x04
	opGt   = 0x05
	opJmp  = 0x06
	opJt   = 0x07
	opJf   = 0x08
	opAdd  = 0x09
	opMult = 0x0A
	opMod  = 0x0B
	opAnd  = 0x0C
	opOr   = 0x0D
	opNot  = 0x0E
	opRmem = 0x0F
	opWmem = 0x10
	opCall = 0x11
	opRet  = 0x12
	opOut  = 0x13
	opIn   = 0x14
	opNoop = 0x15
)

// operands fetches n sequential immediate operand words, leaving any
// register-window resolution to the caller.
func (m *Machine) operands(n int) ([]uint16, error) {
	out := make([]uint16, n)
	for i := range out {
		v, err := m.PeekInc()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// set: a = b
func (m *Machine) opSet() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], b)
}

// push: push a
func (m *Machine) opPush() error {
	ops, err := m.operands(1)
	if err != nil {
		return err
	}
	a, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	m.Push(a)
	return nil
}

// pop: a = pop()
func (m *Machine) opPop() error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	ops, err := m.operands(1)
	if err != nil {
		return err
	}
	return m.Poke(ops[0], v)
}

// eq: a = (b == c)
func (m *Machine) opEq() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	if b == c {
		return m.Poke(ops[0], 1)
	}
	return m.Poke(ops[0], 0)
}

// gt: a = (b > c)
func (m *Machine) opGt() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	if b > c {
		return m.Poke(ops[0], 1)
	}
	return m.Poke(ops[0], 0)
}

// jmp: pc = a
//
// Unlike every other opcode that reads an operand value, jmp assigns the
// raw fetched word straight to pc without resolving it through the
// register window. A program that jumps through a register (jmp r0) lands
// on the register's numeric address rather than its contents. This matches
// the reference implementation exactly and is treated as the chosen
// resolution of the operand-resolution ambiguity, not a bug: see DESIGN.md.
func (m *Machine) opJmp() error {
	dest, err := m.PeekInc()
	if err != nil {
		return err
	}
	m.pc = dest
	return nil
}

// jt: if a != 0: pc = b
//
// a is value-resolved; b (the jump target) is not, for the same reason as
// jmp above.
func (m *Machine) opJt() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	a, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	if a != 0 {
		m.pc = ops[1]
	}
	return nil
}

// jf: if a == 0: pc = b
func (m *Machine) opJf() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	a, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	if a == 0 {
		m.pc = ops[1]
	}
	return nil
}

// add: a = (b + c) mod 32768
func (m *Machine) opAdd() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], (b+c)%TOM)
}

// mult: a = (b * c) mod 32768
func (m *Machine) opMult() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], uint16((uint32(b)*uint32(c))%TOM))
}

// mod: a = b mod c
func (m *Machine) opMod() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], b%c)
}

// and: a = b & c
func (m *Machine) opAnd() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], (b&c)%TOM)
}

// or: a = b | c
func (m *Machine) opOr() error {
	ops, err := m.operands(3)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	c, err := m.resolve(ops[2])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], (b|c)%TOM)
}

// not: a = ^b (15-bit)
func (m *Machine) opNot() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	b, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	return m.Poke(ops[0], (^b)%TOM)
}

// rmem: a = mem[b]
func (m *Machine) opRmem() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	source, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	value, err := m.Peek(source)
	if err != nil {
		return err
	}
	return m.Poke(ops[0], value)
}

// wmem: mem[a] = b
func (m *Machine) opWmem() error {
	ops, err := m.operands(2)
	if err != nil {
		return err
	}
	dest, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	value, err := m.resolve(ops[1])
	if err != nil {
		return err
	}
	return m.Poke(dest, value)
}

// call: push next instruction address, pc = a
//
// Unlike jmp, call's target is value-resolved (the reference implementation
// does this too), so `call r0` jumps through the register rather than to
// its numeric address. This asymmetry with jmp/jt/jf is intentional and
// preserved; see DESIGN.md.
func (m *Machine) opCall() error {
	ops, err := m.operands(1)
	if err != nil {
		return err
	}
	m.Push(m.pc)
	dest, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	m.pc = dest
	return nil
}

// ret: pc = pop(); empty stack is a fault, not a halt.
func (m *Machine) opRet() error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	m.pc = v
	return nil
}

// out: write the low byte of a to the terminal.
func (m *Machine) opOut() error {
	ops, err := m.operands(1)
	if err != nil {
		return err
	}
	a, err := m.resolve(ops[0])
	if err != nil {
		return err
	}
	SetBit(&m.status, OutBit)
	if m.Out != nil {
		m.Out(byte(a))
	}
	return nil
}

// in: read one byte from the terminal into a.
//
// The dot sentinel that triggers the debugger is handled by the caller
// (see debugger.Controller.readIn): by the time In returns here, any
// sentinel byte has already been consumed and the debugger session has
// run to completion, so the byte this opcode receives is always meant for
// the guest.
func (m *Machine) opIn() error {
	ops, err := m.operands(1)
	if err != nil {
		return err
	}
	SetBit(&m.status, InBit)
	if m.In == nil {
		return ErrFailedToRead
	}
	b, ok := m.In()
	if !ok {
		return ErrFailedToRead
	}
	return m.Poke(ops[0], uint16(b))
}
