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

// Package isa is the single source of truth for RV32I instruction encoding:
// the mnemonic table, the six instruction formats, and the encode/decode
// routines the assembler and both pipelines share.
package isa

// Format names one of the six RV32I instruction encodings.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// InstrDef is one row of the instruction table: everything needed to both
// encode and decode a mnemonic. Funct3/Funct7 are nil when the format
// doesn't carry that field or the opcode alone disambiguates the mnemonic
// (LUI, AUIPC, JAL) — a nil field is a wildcard during decode, never a
// zero value standing in for "don't care".
type InstrDef struct {
	Mnemonic string
	Format   Format
	Opcode   uint32
	Funct3   *uint32
	Funct7   *uint32
}

func f3(v uint32) *uint32 { return &v }
func f7(v uint32) *uint32 { return &v }

// Opcodes, per the RV32I base ISA.
const (
	OpcodeLUI    = 0x37
	OpcodeAUIPC  = 0x17
	OpcodeJAL    = 0x6F
	OpcodeJALR   = 0x67
	OpcodeBranch = 0x63
	OpcodeLoad   = 0x03
	OpcodeStore  = 0x23
	OpcodeOpImm  = 0x13
	OpcodeOp     = 0x33
	OpcodeFence  = 0x0F
	OpcodeSystem = 0x73
)

// Table is the fixed instruction table: the single source of truth used by
// both the assembler (encode) and the controller tables (decode + control
// signal lookup).
var Table = []InstrDef{
	// U-type
	{"LUI", FormatU, OpcodeLUI, nil, nil},
	{"AUIPC", FormatU, OpcodeAUIPC, nil, nil},

	// J-type
	{"JAL", FormatJ, OpcodeJAL, nil, nil},

	// I-type jump
	{"JALR", FormatI, OpcodeJALR, f3(0x0), nil},

	// B-type branches
	{"BEQ", FormatB, OpcodeBranch, f3(0x0), nil},
	{"BNE", FormatB, OpcodeBranch, f3(0x1), nil},
	{"BLT", FormatB, OpcodeBranch, f3(0x4), nil},
	{"BGE", FormatB, OpcodeBranch, f3(0x5), nil},
	{"BLTU", FormatB, OpcodeBranch, f3(0x6), nil},
	{"BGEU", FormatB, OpcodeBranch, f3(0x7), nil},

	// I-type loads
	{"LB", FormatI, OpcodeLoad, f3(0x0), nil},
	{"LH", FormatI, OpcodeLoad, f3(0x1), nil},
	{"LW", FormatI, OpcodeLoad, f3(0x2), nil},
	{"LBU", FormatI, OpcodeLoad, f3(0x4), nil},
	{"LHU", FormatI, OpcodeLoad, f3(0x5), nil},

	// S-type stores
	{"SB", FormatS, OpcodeStore, f3(0x0), nil},
	{"SH", FormatS, OpcodeStore, f3(0x1), nil},
	{"SW", FormatS, OpcodeStore, f3(0x2), nil},

	// I-type ALU
	{"ADDI", FormatI, OpcodeOpImm, f3(0x0), nil},
	{"SLTI", FormatI, OpcodeOpImm, f3(0x2), nil},
	{"SLTIU", FormatI, OpcodeOpImm, f3(0x3), nil},
	{"XORI", FormatI, OpcodeOpImm, f3(0x4), nil},
	{"ORI", FormatI, OpcodeOpImm, f3(0x6), nil},
	{"ANDI", FormatI, OpcodeOpImm, f3(0x7), nil},
	// Shift-immediates: format is I, but the low 5 bits of the immediate
	// field are shamt and bits[11:5] behave like funct7.
	{"SLLI", FormatI, OpcodeOpImm, f3(0x1), f7(0x00)},
	{"SRLI", FormatI, OpcodeOpImm, f3(0x5), f7(0x00)},
	{"SRAI", FormatI, OpcodeOpImm, f3(0x5), f7(0x20)},

	// R-type ALU
	{"ADD", FormatR, OpcodeOp, f3(0x0), f7(0x00)},
	{"SUB", FormatR, OpcodeOp, f3(0x0), f7(0x20)},
	{"SLL", FormatR, OpcodeOp, f3(0x1), f7(0x00)},
	{"SLT", FormatR, OpcodeOp, f3(0x2), f7(0x00)},
	{"SLTU", FormatR, OpcodeOp, f3(0x3), f7(0x00)},
	{"XOR", FormatR, OpcodeOp, f3(0x4), f7(0x00)},
	{"SRL", FormatR, OpcodeOp, f3(0x5), f7(0x00)},
	{"SRA", FormatR, OpcodeOp, f3(0x5), f7(0x20)},
	{"OR", FormatR, OpcodeOp, f3(0x6), f7(0x00)},
	{"AND", FormatR, OpcodeOp, f3(0x7), f7(0x00)},

	// Fence: a single entry. Decode maps every word with this opcode to it,
	// so the FENCE.TSO and PAUSE encodings decode as FENCE.
	{"FENCE", FormatI, OpcodeFence, f3(0x0), nil},

	// System: ECALL/EBREAK share opcode+funct3 and are disambiguated by
	// the immediate field at decode time (see Decode).
	{"ECALL", FormatI, OpcodeSystem, f3(0x0), nil},
	{"EBREAK", FormatI, OpcodeSystem, f3(0x0), nil},

	// CSR instructions.
	{"CSRRW", FormatI, OpcodeSystem, f3(0x1), nil},
	{"CSRRS", FormatI, OpcodeSystem, f3(0x2), nil},
	{"CSRRC", FormatI, OpcodeSystem, f3(0x3), nil},
	{"CSRRWI", FormatI, OpcodeSystem, f3(0x5), nil},
	{"CSRRSI", FormatI, OpcodeSystem, f3(0x6), nil},
	{"CSRRCI", FormatI, OpcodeSystem, f3(0x7), nil},
}

var byMnemonic map[string]InstrDef

func init() {
	byMnemonic = make(map[string]InstrDef, len(Table))
	for _, def := range Table {
		byMnemonic[def.Mnemonic] = def
	}
}

// Lookup returns the InstrDef for a mnemonic. Mnemonic must already be
// upper-cased by the caller (the lexer/assembler normalizes case once).
func Lookup(mnemonic string) (InstrDef, bool) {
	def, ok := byMnemonic[mnemonic]
	return def, ok
}

// IsShift reports whether def is one of SLLI/SRLI/SRAI, which pack a shamt
// instead of a full 12-bit immediate.
func (def InstrDef) IsShift() bool {
	return def.Opcode == OpcodeOpImm && def.Funct3 != nil && (*def.Funct3 == 0x1 || *def.Funct3 == 0x5)
}

// IsCSR reports whether def reads/writes the CSR side table.
func (def InstrDef) IsCSR() bool {
	if def.Opcode != OpcodeSystem || def.Funct3 == nil {
		return false
	}
	switch *def.Funct3 {
	case 0x1, 0x2, 0x3, 0x5, 0x6, 0x7:
		return true
	default:
		return false
	}
}

// IsCSRImmediate reports whether def takes a 5-bit unsigned immediate in
// place of rs1 (the CSRRxI forms).
func (def InstrDef) IsCSRImmediate() bool {
	if def.Funct3 == nil {
		return false
	}
	switch *def.Funct3 {
	case 0x5, 0x6, 0x7:
		return true
	default:
		return false
	}
}
