package disassembler

/*
 * synacor-hv - Disassembler.
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
	"strings"
)

// opcode describes one instruction's mnemonic and its operand count,
// mirroring the fixed arity of the architecture's 22 opcodes.
type opcode struct {
	name  string
	arity int
}

var opMap = map[uint16]opcode{
	0x00: {"halt", 0},
	0x01: {"set", 2},
	0x02: {"push", 1},
	0x03: {"pop", 1},
	0x04: {"eq", 3},
	0x05: {"gt", 3},
	0x06: {"jmp", 1},
	0x07: {"jt", 2},
	0x08: {"jf", 2},
	0x09: {"add", 3},
	0x0A: {"mult", 3},
	0x0B: {"mod", 3},
	0x0C: {"and", 3},
	0x0D: {"or", 3},
	0x0E: {"not", 2},
	0x0F: {"rmem", 2},
	0x10: {"wmem", 2},
	0x11: {"call", 1},
	0x12: {"ret", 0},
	0x13: {"out", 1},
	0x14: {"in", 1},
	0x15: {"nop", 0},
}

// operand renders a fetched operand word: a bare hex literal if it's an
// immediate, or rN if it names a register.
func operand(v uint16) string {
	const tom = 0x8000
	if v >= tom && v < tom+8 {
		return fmt.Sprintf("r%d", v-tom)
	}
	return fmt.Sprintf("%#04x", v)
}

// swapEndian mirrors machine.SwapEndian without importing the machine
// package, keeping this package usable against a raw memory snapshot
// (e.g. a loaded image) with no Machine instance involved.
func swapEndian(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// One disassembles a single instruction starting at mem[addr] (mem holds
// byte-swapped words, as stored by the machine). It returns the formatted
// line and the address of the next instruction. An unrecognized opcode
// consumes one word and is rendered as "???".
func One(mem []uint16, addr uint16) (string, uint16) {
	op := swapEndian(mem[addr])
	info, ok := opMap[op]
	if !ok {
		return fmt.Sprintf("%#06x:\t??? (%#04x)", addr, op), addr + 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%#06x:\t%s", addr, info.name)
	for i := 0; i < info.arity; i++ {
		pos := int(addr) + 1 + i
		if pos >= len(mem) {
			b.WriteString("\t???")
			return b.String(), addr + 1 + uint16(info.arity)
		}
		fmt.Fprintf(&b, "\t%s", operand(swapEndian(mem[pos])))
	}
	return b.String(), addr + 1 + uint16(info.arity)
}

// Range disassembles every instruction in [start, end] inclusive and
// returns the joined listing, one instruction per line.
func Range(mem []uint16, start, end uint16) string {
	var b strings.Builder
	addr := start
	for addr <= end {
		line, next := One(mem, addr)
		b.WriteString(line)
		b.WriteByte('\n')
		if next <= addr {
			break // defensive: a malformed table entry must not spin forever
		}
		addr = next
	}
	return b.String()
}
