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

package assembler

import "sort"

// Section tags which region of the address space a directive or label
// belongs to. Only Text and Data are ever selected by a directive today
// (.text/.data per spec.md §6); Absolute, Bss and User exist so a future
// directive can name them without changing this type.
type Section int

const (
	SectionAbsolute Section = iota
	SectionData
	SectionText
	SectionBss
	SectionUser
)

// String renders a Section the way a source-level directive would spell it.
func (s Section) String() string {
	switch s {
	case SectionAbsolute:
		return "absolute"
	case SectionData:
		return "data"
	case SectionText:
		return "text"
	case SectionBss:
		return "bss"
	case SectionUser:
		return "user"
	default:
		return "?"
	}
}

// SourceMap is a bijection between instruction addresses and the source
// line that produced them. It is kept as two synchronized plain maps
// rather than an ordered-map/bimap dependency, since no such library
// appears anywhere in the example corpus (see SPEC_FULL.md §B) — Insert is
// the single mutator so the two directions never drift out of sync.
type SourceMap struct {
	addrToLine map[uint32]int
	lineToAddr map[int]uint32
}

func newSourceMap() *SourceMap {
	return &SourceMap{addrToLine: make(map[uint32]int), lineToAddr: make(map[int]uint32)}
}

// Insert records that addr holds the first byte of the instruction parsed
// from line. Re-inserting the same address (e.g. a second assembly of the
// same program) overwrites both directions and drops the stale pairing on
// each side, so the map stays one-to-one.
func (m *SourceMap) Insert(addr uint32, line int) {
	if old, ok := m.addrToLine[addr]; ok {
		delete(m.lineToAddr, old)
	}
	if old, ok := m.lineToAddr[line]; ok {
		delete(m.addrToLine, old)
	}
	m.addrToLine[addr] = line
	m.lineToAddr[line] = addr
}

// Line looks up the source line that produced the instruction at addr.
func (m *SourceMap) Line(addr uint32) (int, bool) {
	line, ok := m.addrToLine[addr]
	return line, ok
}

// Address looks up the instruction address produced by line.
func (m *SourceMap) Address(line int) (uint32, bool) {
	addr, ok := m.lineToAddr[line]
	return addr, ok
}

// Addresses returns every mapped instruction address in ascending order.
func (m *SourceMap) Addresses() []uint32 {
	addrs := make([]uint32, 0, len(m.addrToLine))
	for addr := range m.addrToLine {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Len reports how many address/line pairs are recorded.
func (m *SourceMap) Len() int { return len(m.addrToLine) }

// AssembledProgram is the output of Assemble: the two sparse memory images,
// the address/line bijection, and the fully resolved symbol table. It
// satisfies both pipeline packages' InstructionFetcher interface via
// FetchWord, so either core can run straight off an assembled program.
type AssembledProgram struct {
	InstructionMemory map[uint32]uint8
	InitialDataMemory map[uint32]uint8
	SourceMap         *SourceMap
	SymbolTable       map[string]uint32
}

// FetchWord reads the 4-byte little-endian instruction word starting at
// addr from instruction memory, zero-filling any byte that was never
// written (matches memory.Module.ReadWord's zero-fill-on-miss convention
// for an all-enabled word read).
func (p *AssembledProgram) FetchWord(addr uint32) uint32 {
	var word uint32
	for i := uint32(0); i < 4; i++ {
		word |= uint32(p.InstructionMemory[addr+i]) << (i * 8)
	}
	return word
}

// GetSectionStart returns the lowest address belonging to section, or 0 if
// the program defines nothing there. Text's start is read off the source
// map rather than instruction memory directly, since the source map is
// exactly "addresses that hold an encoded instruction".
func (p *AssembledProgram) GetSectionStart(section Section) uint32 {
	switch section {
	case SectionText:
		addrs := p.SourceMap.Addresses()
		if len(addrs) == 0 {
			return 0
		}
		return addrs[0]
	case SectionData:
		addrs := make([]uint32, 0, len(p.InitialDataMemory))
		for addr := range p.InitialDataMemory {
			addrs = append(addrs, addr)
		}
		if len(addrs) == 0 {
			return 0
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		return addrs[0]
	default:
		// Absolute/Bss/User are not populated by any directive today.
		return 0
	}
}

var emptyProgram = &AssembledProgram{
	InstructionMemory: map[uint32]uint8{},
	InitialDataMemory: map[uint32]uint8{},
	SourceMap:         newSourceMap(),
	SymbolTable:       map[string]uint32{},
}

// Empty is the package-level zero program, handed to a UI or emulator that
// needs a valid AssembledProgram before the user has assembled anything.
// Callers must treat it as read-only; it is shared, not copied.
func Empty() *AssembledProgram {
	return emptyProgram
}
