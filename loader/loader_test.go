package loader

/*
 * synacor-hv - Loader tests.
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
	"testing"

	"github.com/rcornwell/synacor-hv/machine"
)

func TestLoadBytesPlacesWordsAndZeroFills(t *testing.T) {
	m := machine.New()
	// halt (0x0000) followed by 0x1234, little-endian on disk.
	data := []byte{0x00, 0x00, 0x34, 0x12}
	if err := LoadBytes(m, data); err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	v, err := m.Peek(1)
	if err != nil {
		t.Fatalf("Peek(1) error = %v", err)
	}
	if v != 0x1234 {
		t.Errorf("mem[1] = %#04x, want 0x1234", v)
	}
	v, err = m.Peek(2)
	if err != nil {
		t.Fatalf("Peek(2) error = %v", err)
	}
	if v != 0 {
		t.Errorf("mem[2] = %#04x, want zero-filled", v)
	}
}

func TestLoadBytesRejectsOversizeImage(t *testing.T) {
	m := machine.New()
	data := make([]byte, MaxImageBytes+2)
	if err := LoadBytes(m, data); err == nil {
		t.Fatal("LoadBytes() error = nil, want rejection of oversize image")
	}
}
