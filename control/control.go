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

// Package control derives the per-instruction control-signal record of
// spec.md §3 from a decoded instruction, and implements the ALU of §4.10.
// It is the generalization of a per-opcode dispatch table into a single
// pure function over isa.InstrDef.
package control

import (
	"github.com/EmuGatorUF/EmuGator-sub000/isa"
)

// AluOp names an ALU operation. AluOpNone is the explicit "don't care"
// sentinel: a zero value that is never confused with a real operation,
// because AluAdd and every other real op is a distinct, later constant.
type AluOp uint8

const (
	AluOpNone AluOp = iota
	AluAdd
	AluSub
	AluXor
	AluOr
	AluAnd
	AluSll
	AluSrl
	AluSra
	AluSlt
	AluSltu
	AluEq
	AluNeq
	AluLt
	AluGe
	AluLtu
	AluGeu
	AluSelB
)

// OperandSel names the source of an ALU operand. OperandNone is the
// explicit don't-care sentinel (distinct from any real source), per
// spec.md §3's instruction to treat an absent operand select as causing
// its operand value to be absent rather than stale.
type OperandSel uint8

const (
	OperandNone OperandSel = iota
	OperandRF              // register file
	OperandImm             // decoded immediate
	OperandPC              // current PC
	OperandFour            // literal constant 4 (JAL link offset)
)

// JmpBaseSel names the base register a jump/branch target is computed
// from.
type JmpBaseSel uint8

const (
	JmpBaseNone JmpBaseSel = iota
	JmpBasePC
	JmpBaseRF
)

// WbSrc names the write-back source mux selection.
type WbSrc uint8

const (
	WbSrcNone WbSrc = iota
	WbSrcALU
	WbSrcLSU
	WbSrcCSR
)

// CsrOp names the read-modify-write variant a CSR instruction performs
// against isa.CSRFile.
type CsrOp uint8

const (
	CsrOpNone CsrOp = iota
	CsrWrite
	CsrWriteImmediate
	CsrSet
	CsrClear
)

// DataType names the width and signedness of a load/store access.
type DataType uint8

const (
	DataTypeNone DataType = iota
	DataByteSigned
	DataByteUnsigned
	DataHalfSigned
	DataHalfUnsigned
	DataWord
)

// Width returns the byte count of the access (1, 2 or 4); 0 for
// DataTypeNone.
func (d DataType) Width() int {
	switch d {
	case DataByteSigned, DataByteUnsigned:
		return 1
	case DataHalfSigned, DataHalfUnsigned:
		return 2
	case DataWord:
		return 4
	default:
		return 0
	}
}

// SignExtend reports whether a load of this type sign-extends its result.
func (d DataType) SignExtend() bool {
	return d == DataByteSigned || d == DataHalfSigned
}

// Signals is the control-signal record of spec.md §3. Every field uses a
// dedicated zero-value sentinel ("None"/false) for "don't care" so that a
// bubble is simply the zero Signals value, never a record whose fields
// must be individually guarded by the reader.
type Signals struct {
	AluOp         AluOp
	AluOpASel     OperandSel
	AluOpBSel     OperandSel
	JmpBaseSel    JmpBaseSel
	LsuDataType   DataType
	LsuRequest    bool
	LsuWriteEn    bool
	LsuSignExt    bool
	WbSrc         WbSrc
	RegWrite      bool
	CmpSet        bool
	JumpUncond    bool
	JumpCond      bool
	PcSet         bool
	IDInReady     bool
	DebugReq      bool
	CsrOp         CsrOp
	CsrImmediate  bool // operand is the zero-extended rs1 field, not a register
}

// Bubble is the inert control record: no writes, no requests, no jumps.
// Inserting it into a pipeline buffer neutralizes whatever instruction
// would otherwise have occupied that slot.
var Bubble = Signals{}

// For derives the control-signal record for def/instr, per spec.md §4.9.
// def must be the InstrDef that decoded instr (callers get this for free
// from isa.Decode). The table is populated, not partial: every isa.Table
// entry has a branch here, resolving spec.md §9's open question in favor
// of a canonical, non-fallback mapping.
func For(def isa.InstrDef, instr isa.Instruction) Signals {
	switch {
	case def.Opcode == isa.OpcodeOp:
		return rTypeALU(def, instr)
	case def.Opcode == isa.OpcodeOpImm:
		return iTypeALU(def, instr)
	case def.Mnemonic == "LUI":
		return Signals{
			AluOp: AluSelB, AluOpASel: OperandNone, AluOpBSel: OperandImm,
			WbSrc: WbSrcALU, RegWrite: true,
		}
	case def.Mnemonic == "AUIPC":
		return Signals{
			AluOp: AluAdd, AluOpASel: OperandPC, AluOpBSel: OperandImm,
			WbSrc: WbSrcALU, RegWrite: true,
		}
	case def.Opcode == isa.OpcodeLoad:
		return loadSignals(def)
	case def.Opcode == isa.OpcodeStore:
		return storeSignals(def)
	case def.Opcode == isa.OpcodeBranch:
		return branchSignals(def)
	case def.Mnemonic == "JAL":
		return Signals{
			JumpUncond: true, JmpBaseSel: JmpBasePC,
			AluOp: AluAdd, AluOpASel: OperandPC, AluOpBSel: OperandFour,
			WbSrc: WbSrcALU, RegWrite: true,
		}
	case def.Mnemonic == "JALR":
		return Signals{
			JumpUncond: true, JmpBaseSel: JmpBaseRF,
			AluOp: AluAdd, AluOpASel: OperandPC, AluOpBSel: OperandFour,
			WbSrc: WbSrcALU, RegWrite: true,
		}
	case def.Mnemonic == "EBREAK":
		return Signals{DebugReq: true}
	case def.Mnemonic == "ECALL":
		return Signals{}
	case def.Mnemonic == "FENCE":
		return Signals{}
	case def.IsCSR():
		return csrSignals(def)
	default:
		return Signals{}
	}
}

func rTypeALU(def isa.InstrDef, instr isa.Instruction) Signals {
	op := AluOpNone
	f7 := instr.Funct7()
	switch instr.Funct3() {
	case 0x0:
		if f7 == 0x20 {
			op = AluSub
		} else {
			op = AluAdd
		}
	case 0x1:
		op = AluSll
	case 0x2:
		op = AluSlt
	case 0x3:
		op = AluSltu
	case 0x4:
		op = AluXor
	case 0x5:
		if f7 == 0x20 {
			op = AluSra
		} else {
			op = AluSrl
		}
	case 0x6:
		op = AluOr
	case 0x7:
		op = AluAnd
	}
	return Signals{
		AluOp: op, AluOpASel: OperandRF, AluOpBSel: OperandRF,
		WbSrc: WbSrcALU, RegWrite: true,
	}
}

func iTypeALU(def isa.InstrDef, instr isa.Instruction) Signals {
	op := AluOpNone
	switch instr.Funct3() {
	case 0x0:
		op = AluAdd
	case 0x2:
		op = AluSlt
	case 0x3:
		op = AluSltu
	case 0x4:
		op = AluXor
	case 0x6:
		op = AluOr
	case 0x7:
		op = AluAnd
	case 0x1:
		op = AluSll
	case 0x5:
		if instr.Funct7() == 0x20 {
			op = AluSra
		} else {
			op = AluSrl
		}
	}
	return Signals{
		AluOp: op, AluOpASel: OperandRF, AluOpBSel: OperandImm,
		WbSrc: WbSrcALU, RegWrite: true,
	}
}

func loadSignals(def isa.InstrDef) Signals {
	dt, signExt := dataTypeFor(def.Mnemonic)
	return Signals{
		AluOp: AluAdd, AluOpASel: OperandRF, AluOpBSel: OperandImm,
		LsuRequest: true, LsuWriteEn: false, LsuDataType: dt, LsuSignExt: signExt,
		WbSrc: WbSrcLSU, RegWrite: true,
	}
}

func storeSignals(def isa.InstrDef) Signals {
	dt, _ := dataTypeFor(def.Mnemonic)
	return Signals{
		AluOp: AluAdd, AluOpASel: OperandRF, AluOpBSel: OperandImm,
		LsuRequest: true, LsuWriteEn: true, LsuDataType: dt,
		WbSrc: WbSrcNone, RegWrite: false,
	}
}

func dataTypeFor(mnemonic string) (DataType, bool) {
	switch mnemonic {
	case "LB", "SB":
		return DataByteSigned, mnemonic == "LB"
	case "LBU":
		return DataByteUnsigned, false
	case "LH", "SH":
		return DataHalfSigned, mnemonic == "LH"
	case "LHU":
		return DataHalfUnsigned, false
	case "LW", "SW":
		return DataWord, false
	default:
		return DataTypeNone, false
	}
}

func csrSignals(def isa.InstrDef) Signals {
	var op CsrOp
	switch def.Mnemonic {
	case "CSRRW":
		op = CsrWrite
	case "CSRRWI":
		op = CsrWriteImmediate
	case "CSRRS", "CSRRSI":
		op = CsrSet
	case "CSRRC", "CSRRCI":
		op = CsrClear
	}
	return Signals{
		RegWrite: true, WbSrc: WbSrcCSR,
		CsrOp: op, CsrImmediate: def.IsCSRImmediate(),
	}
}

func branchSignals(def isa.InstrDef) Signals {
	var op AluOp
	switch def.Mnemonic {
	case "BEQ":
		op = AluEq
	case "BNE":
		op = AluNeq
	case "BLT":
		op = AluLt
	case "BGE":
		op = AluGe
	case "BLTU":
		op = AluLtu
	case "BGEU":
		op = AluGeu
	}
	return Signals{
		AluOp: op, AluOpASel: OperandRF, AluOpBSel: OperandRF,
		CmpSet: true, JumpCond: true, JmpBaseSel: JmpBasePC,
	}
}

// ALU evaluates op over a, b per spec.md §4.10. Comparators return 0 or 1
// in the low bit; SELB returns b (LUI's write-through path).
func ALU(op AluOp, a, b uint32) uint32 {
	switch op {
	case AluAdd:
		return a + b
	case AluSub:
		return a - b
	case AluXor:
		return a ^ b
	case AluOr:
		return a | b
	case AluAnd:
		return a & b
	case AluSll:
		return a << (b & 0x1F)
	case AluSrl:
		return a >> (b & 0x1F)
	case AluSra:
		shamt := b & 0x1F
		return uint32(int32(a) >> shamt)
	case AluSlt:
		if int32(a) < int32(b) {
			return 1
		}
		return 0
	case AluSltu:
		if a < b {
			return 1
		}
		return 0
	case AluEq:
		return boolToU32(a == b)
	case AluNeq:
		return boolToU32(a != b)
	case AluLt:
		return boolToU32(int32(a) < int32(b))
	case AluGe:
		return boolToU32(int32(a) >= int32(b))
	case AluLtu:
		return boolToU32(a < b)
	case AluGeu:
		return boolToU32(a >= b)
	case AluSelB:
		return b
	default:
		return 0
	}
}

// CSRWriteSuppressed reports whether a CSR instruction's read-modify-write
// must skip the write half despite rd observing the old value, per
// spec.md §4.9: CSRRW writing to x0 and CSRRS/CSRRC(I) with a zero source
// operand are both no-ops on the CSR itself. CSRRWI has no such exception —
// _examples/original_source/src/emulator/handlers.rs's CSRRWI handler
// always writes zimm regardless of rd, unlike CSRRW's handler — so the
// register and immediate write forms carry distinct CsrOp values and only
// the register form suppresses on rd==0.
func CSRWriteSuppressed(op CsrOp, rd, operand uint32) bool {
	switch op {
	case CsrWrite:
		return rd == 0
	case CsrWriteImmediate:
		return false
	case CsrSet, CsrClear:
		return operand == 0
	default:
		return true
	}
}

// CSRNewValue computes the value a CSR read-modify-write stores, given its
// old value and source operand (register value or zero-extended 5-bit
// immediate).
func CSRNewValue(op CsrOp, old, operand uint32) uint32 {
	switch op {
	case CsrWrite, CsrWriteImmediate:
		return operand
	case CsrSet:
		return old | operand
	case CsrClear:
		return old &^ operand
	default:
		return old
	}
}

func boolToU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

