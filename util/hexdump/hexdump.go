package hexdump

/*
 * synacor-hv - Hex dump with a printable-ASCII gutter.
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

import "strings"

var hexMap = "0123456789ABCDEF"

func formatHalf(str *strings.Builder, word uint16) {
	shift := 12
	for range 4 {
		str.WriteByte(hexMap[(word>>shift)&0xf])
		shift -= 4
	}
}

func printable(b byte) byte {
	if b >= 0x20 && b <= 0x7E {
		return b
	}
	return '.'
}

// Words dumps mem in rows of per, each row annotated with the word offset
// of its first entry within mem (not an absolute machine address when mem
// is a sub-slice), the raw hex value of each word as stored, and a
// two-character-per-word printable-ASCII gutter, mirroring the reference
// machine dump's row layout (which also dumps the raw, byte-swapped
// storage rather than re-deriving logical values).
func Words(mem []uint16, per int) string {
	var b strings.Builder
	for row := 0; row < len(mem); row += per {
		end := row + per
		if end > len(mem) {
			end = len(mem)
		}

		b.WriteString("0000:")
		formatHalf(&b, uint16(row))
		for _, w := range mem[row:end] {
			b.WriteByte(' ')
			formatHalf(&b, w)
		}
		b.WriteByte(' ')
		for _, w := range mem[row:end] {
			b.WriteByte(printable(byte(w >> 8)))
			b.WriteByte(printable(byte(w)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
