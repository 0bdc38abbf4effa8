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

package isa

import (
	"errors"
	"fmt"
)

// Errors produced by Encode/Decode. The assembler wraps these with
// (line, column, width) before surfacing them to a caller; isa itself only
// knows about bit patterns.
var (
	ErrUnknownInstruction  = errors.New("unknown instruction")
	ErrOutOfRangeImmediate = errors.New("immediate out of range for format")
	ErrMisalignedImmediate = errors.New("pc-relative immediate not 4-byte aligned")
	ErrInvalidRegister     = errors.New("invalid register index")
)

func validReg(r uint32) bool { return r <= 31 }

func fitsSigned(v int64, bits int) bool {
	lo := -(int64(1) << uint(bits-1))
	hi := int64(1)<<uint(bits-1) - 1
	return v >= lo && v <= hi
}

func fitsUnsigned(v int64, bits int) bool {
	return v >= 0 && v <= int64(1)<<uint(bits)-1
}

// Encode packs mnemonic's operands into a 32-bit instruction word. rd, rs1,
// rs2 are register indices (0..31) and are ignored when the mnemonic's
// format doesn't use them. imm is the raw (already symbol-resolved) value;
// for the B and J formats it is the absolute target address. currentPC is
// the address the instruction will be placed at, used only by the B and J
// formats to turn that absolute target into a PC-relative offset. A
// shift-immediate keeps only the low five bits of a non-negative imm.
func Encode(mnemonic string, rd, rs1, rs2 uint32, imm int64, currentPC uint32) (Instruction, error) {
	def, ok := Lookup(mnemonic)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownInstruction, mnemonic)
	}
	if !validReg(rd) || !validReg(rs1) || !validReg(rs2) {
		return 0, ErrInvalidRegister
	}

	switch def.Format {
	case FormatR:
		return packR(def.Opcode, *def.Funct3, *def.Funct7, rd, rs1, rs2), nil

	case FormatI:
		if def.IsShift() {
			shamt := imm & 0x1F
			if imm < 0 {
				return 0, fmt.Errorf("%w: shamt %d", ErrOutOfRangeImmediate, imm)
			}
			return packR(def.Opcode, *def.Funct3, *def.Funct7, rd, rs1, uint32(shamt)), nil
		}
		if def.Mnemonic == "ECALL" || def.Mnemonic == "EBREAK" {
			val := uint32(0x000)
			if def.Mnemonic == "EBREAK" {
				val = 0x001
			}
			return packI(def.Opcode, *def.Funct3, 0, 0, val), nil
		}
		if def.Mnemonic == "FENCE" {
			return packI(def.Opcode, *def.Funct3, 0, 0, uint32(imm)&0xFFF), nil
		}
		if def.IsCSR() {
			operand := rs1
			if def.IsCSRImmediate() {
				if !fitsUnsigned(int64(rs1), 5) {
					return 0, fmt.Errorf("%w: csr zimm %d", ErrOutOfRangeImmediate, rs1)
				}
				operand = rs1
			}
			return packI(def.Opcode, *def.Funct3, rd, operand, uint32(imm)&0xFFF), nil
		}
		if !fitsSigned(imm, 12) {
			return 0, fmt.Errorf("%w: %d not in [-2048,2047]", ErrOutOfRangeImmediate, imm)
		}
		return packI(def.Opcode, *def.Funct3, rd, rs1, uint32(imm)&0xFFF), nil

	case FormatS:
		if !fitsSigned(imm, 12) {
			return 0, fmt.Errorf("%w: %d not in [-2048,2047]", ErrOutOfRangeImmediate, imm)
		}
		return packS(def.Opcode, *def.Funct3, rs1, rs2, uint32(imm)&0xFFF), nil

	case FormatB:
		offset := imm - int64(currentPC)
		if offset%2 != 0 {
			return 0, ErrMisalignedImmediate
		}
		if !fitsSigned(offset, 13) {
			return 0, fmt.Errorf("%w: branch offset %d not in [-4096,4095]", ErrOutOfRangeImmediate, offset)
		}
		return packB(def.Opcode, *def.Funct3, rs1, rs2, uint32(offset)&0x1FFF), nil

	case FormatU:
		if !fitsUnsigned(imm, 20) {
			return 0, fmt.Errorf("%w: %d not in [0,0xFFFFF]", ErrOutOfRangeImmediate, imm)
		}
		return packU(def.Opcode, rd, uint32(imm)), nil

	case FormatJ:
		offset := imm - int64(currentPC)
		if offset%2 != 0 {
			return 0, ErrMisalignedImmediate
		}
		if !fitsSigned(offset, 21) {
			return 0, fmt.Errorf("%w: jump offset %d not in [-2^20,2^20-1]", ErrOutOfRangeImmediate, offset)
		}
		return packJ(def.Opcode, rd, uint32(offset)&0x1FFFFF), nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownInstruction, mnemonic)
}

func packR(opcode, funct3, funct7, rd, rs1, rs2 uint32) Instruction {
	return Instruction(opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25)
}

func packI(opcode, funct3, rd, rs1, imm12 uint32) Instruction {
	return Instruction(opcode | rd<<7 | funct3<<12 | rs1<<15 | (imm12&0xFFF)<<20)
}

func packS(opcode, funct3, rs1, rs2, imm12 uint32) Instruction {
	lo := imm12 & 0x1F
	hi := (imm12 >> 5) & 0x7F
	return Instruction(opcode | lo<<7 | funct3<<12 | rs1<<15 | rs2<<20 | hi<<25)
}

func packB(opcode, funct3, rs1, rs2, imm13 uint32) Instruction {
	bit11 := (imm13 >> 11) & 0x1
	bits4_1 := (imm13 >> 1) & 0xF
	bits10_5 := (imm13 >> 5) & 0x3F
	bit12 := (imm13 >> 12) & 0x1
	return Instruction(opcode | bit11<<7 | bits4_1<<8 | funct3<<12 | rs1<<15 | rs2<<20 | bits10_5<<25 | bit12<<31)
}

func packU(opcode, rd, imm20 uint32) Instruction {
	return Instruction(opcode | rd<<7 | imm20<<12)
}

func packJ(opcode, rd, imm21 uint32) Instruction {
	bits19_12 := (imm21 >> 12) & 0xFF
	bit11 := (imm21 >> 11) & 0x1
	bits10_1 := (imm21 >> 1) & 0x3FF
	bit20 := (imm21 >> 20) & 0x1
	return Instruction(opcode | rd<<7 | bits19_12<<12 | bit11<<20 | bits10_1<<21 | bit20<<31)
}

// Decoded bundles a matched InstrDef with the word it came from, so callers
// don't re-run the table scan to read operand fields.
type Decoded struct {
	Def   InstrDef
	Word  Instruction
	Imm   int32
}

// Decode matches word against Table by (opcode, funct3, funct7), with
// wildcard tolerance for definitions that leave a field nil, and returns
// the matched definition plus the reconstructed immediate. ECALL and
// EBREAK share opcode+funct3 and are disambiguated here by the immediate
// field, since InstrDef's fields alone can't tell them apart. Every word
// with the fence opcode decodes as FENCE; FENCE.TSO and PAUSE have no
// entries of their own.
func Decode(word Instruction) (Decoded, bool) {
	opcode := word.Opcode()
	funct3 := word.Funct3()
	funct7 := word.Funct7()

	if opcode == OpcodeSystem && funct3 == 0 {
		def, _ := Lookup("ECALL")
		if word.ImmI()&0xFFF == 0x001 {
			def, _ = Lookup("EBREAK")
		}
		return Decoded{Def: def, Word: word, Imm: 0}, true
	}
	if opcode == OpcodeFence {
		def, _ := Lookup("FENCE")
		return Decoded{Def: def, Word: word, Imm: word.ImmI()}, true
	}

	var best *InstrDef
	for idx := range Table {
		def := &Table[idx]
		if def.Opcode != opcode {
			continue
		}
		if def.Mnemonic == "ECALL" || def.Mnemonic == "EBREAK" || def.Mnemonic == "FENCE" {
			continue // handled above; CSR mnemonics share OpcodeSystem but are matched below
		}
		if def.Funct3 != nil && *def.Funct3 != funct3 {
			continue
		}
		if def.Funct7 != nil && *def.Funct7 != funct7 {
			continue
		}
		best = def
		break
	}
	if best == nil {
		return Decoded{}, false
	}
	return Decoded{Def: *best, Word: word, Imm: word.Immediate(best.Format)}, true
}
