package debugger

/*
 * synacor-hv - Command-argument scanner tests.
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

import "testing"

func TestParseHexValueAcceptsMixedCase(t *testing.T) {
	v, ok := parseHexValue("8Ab0")
	if !ok || v != 0x8ab0 {
		t.Fatalf("parseHexValue(%q) = %#x, %v, want 0x8ab0, true", "8Ab0", v, ok)
	}
}

func TestParseHexValueRejectsEmpty(t *testing.T) {
	if _, ok := parseHexValue(""); ok {
		t.Fatalf("parseHexValue(\"\") reported ok=true, want false")
	}
}

func TestParseHexValueRejectsBadDigit(t *testing.T) {
	if _, ok := parseHexValue("12g4"); ok {
		t.Fatalf("parseHexValue(%q) reported ok=true, want false", "12g4")
	}
}

func TestNextHexWordReadsWhitespaceDelimitedTokens(t *testing.T) {
	l := &cmdLine{line: "8000 8010"}
	start, err := l.nextHexWord()
	if err != nil || start != 0x8000 {
		t.Fatalf("nextHexWord() = %#04x, %v, want 0x8000, nil", start, err)
	}
	end, err := l.nextHexWord()
	if err != nil || end != 0x8010 {
		t.Fatalf("nextHexWord() = %#04x, %v, want 0x8010, nil", end, err)
	}
}

func TestNextHexWordSkipsLeadingAndRepeatedSpace(t *testing.T) {
	l := &cmdLine{line: "   0005    000a"}
	a, err := l.nextHexWord()
	if err != nil || a != 0x0005 {
		t.Fatalf("nextHexWord() = %#04x, %v, want 0x0005, nil", a, err)
	}
	b, err := l.nextHexWord()
	if err != nil || b != 0x000a {
		t.Fatalf("nextHexWord() = %#04x, %v, want 0x000a, nil", b, err)
	}
}

func TestNextHexWordErrorsOnEmptyToken(t *testing.T) {
	l := &cmdLine{line: "   "}
	if _, err := l.nextHexWord(); err == nil {
		t.Fatalf("nextHexWord() on blank line returned nil error, want error")
	}
}

func TestNextHexWordErrorsOnOverflow(t *testing.T) {
	l := &cmdLine{line: "10000"}
	if _, err := l.nextHexWord(); err == nil {
		t.Fatalf("nextHexWord(%q) returned nil error, want overflow error", "10000")
	}
}

func TestNextHexWordErrorsOnBadDigit(t *testing.T) {
	l := &cmdLine{line: "zzzz"}
	if _, err := l.nextHexWord(); err == nil {
		t.Fatalf("nextHexWord(%q) returned nil error, want error", "zzzz")
	}
}
