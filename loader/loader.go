package loader

/*
 * synacor-hv - Program image loader.
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
	"encoding/binary"
	"fmt"
	"os"

	"github.com/rcornwell/synacor-hv/machine"
)

// MaxImageBytes is the largest program image this loader will accept: the
// entire addressable memory space, two bytes per word.
const MaxImageBytes = machine.TOM * 2

// Load reads a little-endian 16-bit-pair program image from path into m's
// memory starting at address 0, zero-filling whatever the image doesn't
// cover. Images larger than MaxImageBytes are rejected.
func Load(m *machine.Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	return LoadBytes(m, data)
}

// LoadBytes is Load's pure counterpart, taking the image contents directly;
// Load is a thin os.ReadFile wrapper around it.
func LoadBytes(m *machine.Machine, data []byte) error {
	if len(data) > MaxImageBytes {
		return fmt.Errorf("loader: image is %d bytes, exceeds max %d", len(data), MaxImageBytes)
	}
	mem := m.Mem()
	for i := range mem {
		mem[i] = 0
	}
	n := len(data) / 2
	for i := 0; i < n; i++ {
		v := binary.LittleEndian.Uint16(data[i*2 : i*2+2])
		mem[i] = machine.SwapEndian(v)
	}
	return nil
}
