package debugger

/*
 * synacor-hv - Debugger command-argument scanner.
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
	"unicode"
)

const hexDigits = "0123456789abcdef"

// cmdLine scans a single debugger argument line ("SSSS EEEE", "NNNN v", ...)
// byte by byte, the way the teacher's command parser walks a console line.
type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) isEOL() bool {
	return l.pos >= len(l.line)
}

func (l *cmdLine) skipSpace() {
	for !l.isEOL() && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

// getWord returns the next whitespace-delimited token, advancing past it.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return l.line[start:l.pos]
}

// parseHexValue parses text as a base-16 unsigned value, the same
// digit-by-digit scan the teacher's memory commands use.
func parseHexValue(text string) (uint32, bool) {
	if text == "" {
		return 0, false
	}
	var value uint32
	for _, by := range strings.ToLower(text) {
		digit := strings.IndexRune(hexDigits, by)
		if digit == -1 {
			return 0, false
		}
		value = (value << 4) | uint32(digit)
	}
	return value, true
}

// nextHexWord reads the next token and parses it as a 16-bit hex value.
func (l *cmdLine) nextHexWord() (uint16, error) {
	tok := l.getWord()
	v, ok := parseHexValue(tok)
	if !ok || v > 0xFFFF {
		return 0, fmt.Errorf("invalid hex value %q", tok)
	}
	return uint16(v), nil
}
