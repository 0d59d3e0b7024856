package snapshot

/*
 * synacor-hv - Machine state snapshots.
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
	"encoding/gob"
	"fmt"
	"os"

	"github.com/rcornwell/synacor-hv/machine"
)

// DefaultPath is the snapshot file name used when the operator doesn't
// override it with the CLI's -s/--snapshot flag.
const DefaultPath = "state0.bin"

// state is the on-disk representation of a Machine's full architectural
// state. Its fields are exported only so encoding/gob can see them; nothing
// outside this package constructs one directly.
type state struct {
	Mem          [machine.TOM]uint16
	Stack        []uint16
	Reg          [machine.NumReg]uint16
	PC           uint16
	Status       uint16
	Executed     uint32
	RecentAccess []machine.Access
	Debug        bool
}

// Save writes m's full state to path.
func Save(m *machine.Machine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	s := state{
		Mem:          *m.Mem(),
		Stack:        m.Stack(),
		Reg:          m.Registers(),
		PC:           m.PC(),
		Status:       m.Status(),
		Executed:     m.Executed(),
		RecentAccess: m.RecentAccess(),
		Debug:        m.Debug,
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// Load restores m's full state from path, replacing whatever state it
// previously held.
func Load(m *machine.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	var s state
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	m.SetState(s.Mem, s.Stack, s.Reg, s.PC, s.Status, s.Executed, s.RecentAccess, s.Debug)
	return nil
}
