// Copyright © 2024 EmuGator
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package memory implements the byte-addressed RAM and the memory-mapped
// UART window the emulator's load/store unit issues requests against.
package memory

import (
	"sort"

	"github.com/EmuGatorUF/EmuGator-sub000/uart"
)

// Config selects the UART register addresses. spec.md §9 leaves the
// default address an open question ("switch to 0x3FF0 once larger
// immediates are supported"); this module takes the §6 didactic baseline
// (0xF0/0xF4) as its default and makes both configurable at construction.
type Config struct {
	UARTDataAddr uint32 // RX/TX data register
	UARTLSRAddr  uint32 // line-status register
	UARTInput    []byte
	UARTBaud     int
}

// DefaultConfig is the §6 didactic baseline.
func DefaultConfig() Config {
	return Config{UARTDataAddr: 0xF0, UARTLSRAddr: 0xF4, UARTBaud: 1}
}

// Module is a sparse byte-addressed memory with one memory-mapped UART
// device. A plain map holds the bytes, and SortedAddresses gives them in
// address order without needing an ordered-map/bimap dependency — see
// SPEC_FULL.md §B.
type Module struct {
	cells map[uint32]uint8
	cfg   Config
	uart  *uart.UART
}

// New creates a memory module with initial contents seeded from init (not
// retained — copied in) and a UART configured per cfg.
func New(cfg Config, init map[uint32]uint8) *Module {
	m := &Module{
		cells: make(map[uint32]uint8, len(init)),
		cfg:   cfg,
		uart:  uart.New(cfg.UARTInput, cfg.UARTBaud),
	}
	for addr, b := range init {
		m.cells[addr] = b
	}
	return m
}

// UART exposes the attached device for inspection (e.g. a CLI/TUI reading
// Output()); it must not be mutated outside of Get/Set/Clock.
func (m *Module) UART() *uart.UART { return m.uart }

// Get performs a single-byte read. A read of the UART data register
// consumes one RX byte (0 if none is ready); a read of the LSR register is
// side-effect free.
func (m *Module) Get(addr uint32) uint8 {
	switch addr {
	case m.cfg.UARTDataAddr:
		b, _ := m.uart.ReadRX()
		return b
	case m.cfg.UARTLSRAddr:
		return m.uart.LSR()
	default:
		return m.cells[addr]
	}
}

// Set performs a single-byte write. A write to the UART data register
// enqueues a TX byte; the LSR register is read-only and ignores writes.
func (m *Module) Set(addr uint32, value uint8) {
	switch addr {
	case m.cfg.UARTDataAddr:
		m.uart.WriteTX(value)
	case m.cfg.UARTLSRAddr:
		// read-only
	default:
		m.cells[addr] = value
	}
}

// Preview reads a byte with no side effects, even at a UART address; used
// only by inspection tooling (disassembly panes, memory dumps).
func (m *Module) Preview(addr uint32) uint8 {
	switch addr {
	case m.cfg.UARTDataAddr:
		return 0
	case m.cfg.UARTLSRAddr:
		return m.uart.LSR()
	default:
		return m.cells[addr]
	}
}

// ReadWord reads up to 4 bytes starting at addr, little-endian, zero-filled
// wherever byteEnable is false, and assembles them into a uint32.
func (m *Module) ReadWord(addr uint32, byteEnable [4]bool) uint32 {
	var word uint32
	for i := 0; i < 4; i++ {
		if !byteEnable[i] {
			continue
		}
		word |= uint32(m.Get(addr+uint32(i))) << uint(i*8)
	}
	return word
}

// WriteWord splits value into little-endian bytes and writes only the
// ones enabled by byteEnable, preserving the LSU's byte/halfword store
// semantics (adjacent bytes outside the enable mask are left untouched).
func (m *Module) WriteWord(addr uint32, value uint32, byteEnable [4]bool) {
	for i := 0; i < 4; i++ {
		if !byteEnable[i] {
			continue
		}
		m.Set(addr+uint32(i), uint8(value>>uint(i*8)))
	}
}

// Clock advances the attached UART by one cycle.
func (m *Module) Clock() {
	m.uart.Clock()
}

// Snapshot returns a copy of every written RAM byte (excluding the UART
// window) as an unordered map, for display or byte-map equivalence
// comparisons between the two pipelines; SortedAddresses gives the order.
func (m *Module) Snapshot() map[uint32]uint8 {
	out := make(map[uint32]uint8, len(m.cells))
	for addr, b := range m.cells {
		out[addr] = b
	}
	return out
}

// SortedAddresses returns the addresses with a stored byte, in ascending
// order, for address-sorted iteration.
func (m *Module) SortedAddresses() []uint32 {
	addrs := make([]uint32, 0, len(m.cells))
	for addr := range m.cells {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// ByteEnableForWidth returns the byte-enable mask for a byte/halfword/word
// access: the first width bytes counted from the access address (any width
// other than 1 or 2 enables all four).
func ByteEnableForWidth(width int) [4]bool {
	switch width {
	case 1:
		return [4]bool{true, false, false, false}
	case 2:
		return [4]bool{true, true, false, false}
	default:
		return [4]bool{true, true, true, true}
	}
}
