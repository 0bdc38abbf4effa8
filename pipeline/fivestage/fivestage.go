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

// Package fivestage implements the classic IF/ID/EX/MEM/WB pipeline of
// spec.md §4.12: four latched buffers, a hazard unit handling the
// load-use stall and control-hazard flush, and stage functions evaluated
// in WB→MEM→EX→ID→IF order each cycle so that a stage never reads a
// buffer its own cycle has already overwritten. It generalizes the
// reference five-stage core's buffer/control-signal shape (IfId/IdEx/
// ExMem/MemWb structs, FiveStageControl) into Go value types, folding the
// parallel "control buffer" shadow pipeline into each data buffer's own
// Sig field.
package fivestage

import (
	"fmt"

	"github.com/EmuGatorUF/EmuGator-sub000/control"
	"github.com/EmuGatorUF/EmuGator-sub000/internal/emulog"
	"github.com/EmuGatorUF/EmuGator-sub000/isa"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
	"github.com/EmuGatorUF/EmuGator-sub000/register"
)

// AlignmentFault mirrors twostage.AlignmentFault: a resolved next PC that
// isn't 4-byte aligned is fatal in both pipelines.
type AlignmentFault struct {
	PC uint32
}

func (e *AlignmentFault) Error() string {
	return fmt.Sprintf("unaligned next PC: %#x", e.PC)
}

// InstructionFetcher supplies raw instruction words.
type InstructionFetcher interface {
	FetchWord(addr uint32) uint32
}

// IfIdBuffer latches the fetched instruction and its own PC.
type IfIdBuffer struct {
	Valid bool
	Pc    uint32
	Inst  isa.Instruction
}

// IdExBuffer latches decoded operands and the control record for EX.
type IdExBuffer struct {
	Valid   bool
	Pc      uint32
	Rs1V    uint32
	Rs2V    uint32
	Imm     int32
	Rd      uint32
	CsrAddr uint16
	Zimm    uint32 // raw rs1 field, for the CSRRxI immediate forms
	Def     isa.InstrDef
	Sig     control.Signals
}

// ExMemBuffer latches the ALU/CSR result and store data for MEM.
type ExMemBuffer struct {
	Valid  bool
	Pc     uint32
	AluOut uint32
	Csr    uint32
	Rs2V   uint32
	Rd     uint32
	Sig    control.Signals
}

// MemWbBuffer latches the write-back candidates for WB.
type MemWbBuffer struct {
	Valid bool
	Pc    uint32
	Alu   uint32
	Lsu   uint32
	Csr   uint32
	Rd    uint32
	Sig   control.Signals
}

// Core is the five-stage pipeline's architectural state.
type Core struct {
	IfPc  uint32
	IfId  IfIdBuffer
	IdEx  IdExBuffer
	ExMem ExMemBuffer
	MemWb MemWbBuffer

	CSR *isa.CSRFile

	DebugReq bool
}

// New returns a core reset to start fetching at entry, with every buffer
// holding a bubble.
func New(entry uint32) *Core {
	return &Core{IfPc: entry, CSR: isa.NewCSRFile()}
}

// DebugRequested reports whether an EBREAK reached WB this cycle.
func (c *Core) DebugRequested() bool { return c.DebugReq }

// CurrentPC reports the PC of the oldest in-flight instruction (the one
// in WB, falling back to earlier stages), used for breakpoint resolution
// and single-step highlighting so both pipelines expose the same notion
// of "the instruction currently retiring."
func (c *Core) CurrentPC() (uint32, bool) {
	switch {
	case c.MemWb.Valid:
		return c.MemWb.Pc, true
	case c.ExMem.Valid:
		return c.ExMem.Pc, true
	case c.IdEx.Valid:
		return c.IdEx.Pc, true
	case c.IfId.Valid:
		return c.IfId.Pc, true
	default:
		return c.IfPc, false
	}
}

// Clock advances the pipeline by one cycle, per spec.md §4.12.
func (c *Core) Clock(fetcher InstructionFetcher, regs *register.File, mem *memory.Module) error {
	// WB: select write-back source from the previous cycle's MEM/WB latch
	// and commit the register write. DebugReq is read off the same buffer
	// here — not off ID's decode — so a speculatively-fetched EBREAK that
	// gets squashed by controlFlush/rawStall before ever reaching MemWb
	// never reports a debug request; only an EBREAK that actually retires
	// does.
	c.DebugReq = c.MemWb.Valid && c.MemWb.Sig.DebugReq
	if c.MemWb.Valid && c.MemWb.Sig.RegWrite && c.MemWb.Rd != 0 {
		var wb uint32
		switch c.MemWb.Sig.WbSrc {
		case control.WbSrcLSU:
			wb = c.MemWb.Lsu
		case control.WbSrcCSR:
			wb = c.MemWb.Csr
		default:
			wb = c.MemWb.Alu
		}
		regs.Write(c.MemWb.Rd, wb)
	}

	// MEM: service the EX/MEM buffer's request against memory in the same
	// cycle (single-cycle memory, per spec.md §4.12).
	var lsuResult uint32
	if c.ExMem.Valid && c.ExMem.Sig.LsuRequest {
		be := memory.ByteEnableForWidth(c.ExMem.Sig.LsuDataType.Width())
		if c.ExMem.Sig.LsuWriteEn {
			mem.WriteWord(c.ExMem.AluOut, c.ExMem.Rs2V, be)
		} else {
			lsuResult = loadValue(mem.ReadWord(c.ExMem.AluOut, be), c.ExMem.Sig)
		}
	}
	nextMemWb := MemWbBuffer{
		Valid: c.ExMem.Valid,
		Pc:    c.ExMem.Pc,
		Alu:   c.ExMem.AluOut,
		Lsu:   lsuResult,
		Csr:   c.ExMem.Csr,
		Rd:    c.ExMem.Rd,
		Sig:   c.ExMem.Sig,
	}

	// EX: operand muxes, ALU, branch comparator, jump-destination adder and
	// CSR read-modify-write (this core's one-shot CSR side-table access)
	// over the ID/EX buffer.
	var aluResult uint32
	var jmpDst uint32
	var csrResult uint32
	taken := false
	if c.IdEx.Valid {
		a := operand(c.IdEx.Sig.AluOpASel, c.IdEx.Rs1V, c.IdEx.Pc, c.IdEx.Imm)
		b := operand(c.IdEx.Sig.AluOpBSel, c.IdEx.Rs2V, c.IdEx.Pc, c.IdEx.Imm)
		aluResult = control.ALU(c.IdEx.Sig.AluOp, a, b)

		base := c.IdEx.Pc
		if c.IdEx.Sig.JmpBaseSel == control.JmpBaseRF {
			base = c.IdEx.Rs1V
		}
		jmpDst = base + uint32(c.IdEx.Imm)
		if c.IdEx.Def.Mnemonic == "JALR" {
			jmpDst &^= 1
		}
		taken = c.IdEx.Sig.JumpUncond || (c.IdEx.Sig.JumpCond && aluResult != 0)

		if c.IdEx.Sig.CsrOp != control.CsrOpNone {
			operand := c.IdEx.Rs1V
			if c.IdEx.Sig.CsrImmediate {
				operand = c.IdEx.Zimm
			}
			old := c.CSR.Read(c.IdEx.CsrAddr)
			newVal := control.CSRNewValue(c.IdEx.Sig.CsrOp, old, operand)
			suppressed := control.CSRWriteSuppressed(c.IdEx.Sig.CsrOp, c.IdEx.Rd, operand)
			csrResult = c.CSR.ReadModifyWrite(c.IdEx.CsrAddr, old, suppressed, newVal)
		}
	}
	nextExMem := ExMemBuffer{
		Valid:  c.IdEx.Valid,
		Pc:     c.IdEx.Pc,
		AluOut: aluResult,
		Csr:    csrResult,
		Rs2V:   c.IdEx.Rs2V,
		Rd:     c.IdEx.Rd,
		Sig:    c.IdEx.Sig,
	}

	// Hazard unit: RAW stall between ID (consumer) and whatever still holds
	// its producer's result in ID/EX or EX/MEM. Since this core has no
	// forwarding, every register-writing producer — load or ALU alike —
	// gets the same one-cycle-per-stage stall until its write has retired
	// through WB; control-hazard flush fires when EX resolves a taken
	// branch/jump this cycle.
	rawStall := false
	if c.IfId.Valid {
		rs1, rs2 := c.IfId.Inst.Rs1(), c.IfId.Inst.Rs2()
		if c.IdEx.Valid && c.IdEx.Sig.RegWrite && c.IdEx.Rd != 0 && (rs1 == c.IdEx.Rd || rs2 == c.IdEx.Rd) {
			rawStall = true
		}
		if c.ExMem.Valid && c.ExMem.Sig.RegWrite && c.ExMem.Rd != 0 && (rs1 == c.ExMem.Rd || rs2 == c.ExMem.Rd) {
			rawStall = true
		}
	}
	if rawStall {
		emulog.Logf("hazard stall at pc=%#x", c.IfId.Pc)
	}
	controlFlush := c.IdEx.Valid && taken

	// ID: decode the IF/ID buffer's instruction and read the register file.
	var idDef isa.InstrDef
	var idSig control.Signals
	var idRs1V, idRs2V uint32
	var idRd uint32
	var idImm int32
	if c.IfId.Valid {
		if def, ok := isa.Decode(c.IfId.Inst); ok {
			idDef = def.Def
			idSig = control.For(def.Def, c.IfId.Inst)
			idImm = def.Imm
		} else {
			emulog.Logf("unknown opcode %#08x at pc=%#x", uint32(c.IfId.Inst), c.IfId.Pc)
		}
		idRs1V = regs.Read(c.IfId.Inst.Rs1())
		idRs2V = regs.Read(c.IfId.Inst.Rs2())
		idRd = c.IfId.Inst.Rd()
	}

	nextIdEx := IdExBuffer{}
	if !rawStall && !controlFlush && c.IfId.Valid {
		nextIdEx = IdExBuffer{
			Valid: true,
			Pc:    c.IfId.Pc,
			Rs1V:  idRs1V, Rs2V: idRs2V,
			Imm: idImm, Rd: idRd,
			CsrAddr: c.IfId.Inst.CSR(), Zimm: c.IfId.Inst.Rs1(),
			Def: idDef, Sig: idSig,
		}
	}

	// IF: present IfPc to instruction memory; redirect on a resolved taken
	// branch/jump, else advance sequentially, unless a RAW hazard (from a
	// load or an ALU producer alike) holds the fetch PC in place.
	fetchedInst := isa.Instruction(fetcher.FetchWord(c.IfPc))
	nextIfId := c.IfId
	if !rawStall {
		if controlFlush {
			nextIfId = IfIdBuffer{}
		} else {
			nextIfId = IfIdBuffer{Valid: true, Pc: c.IfPc, Inst: fetchedInst}
		}
	}

	var nextIfPc uint32
	switch {
	case rawStall:
		nextIfPc = c.IfPc
	case controlFlush:
		if jmpDst%4 != 0 {
			return &AlignmentFault{PC: jmpDst}
		}
		nextIfPc = jmpDst
	default:
		nextIfPc = c.IfPc + 4
	}

	// Latch everything computed this cycle.
	c.MemWb = nextMemWb
	c.ExMem = nextExMem
	c.IdEx = nextIdEx
	c.IfId = nextIfId
	c.IfPc = nextIfPc

	mem.Clock()
	return nil
}

func operand(sel control.OperandSel, rf, pc uint32, imm int32) uint32 {
	switch sel {
	case control.OperandRF:
		return rf
	case control.OperandImm:
		return uint32(imm)
	case control.OperandPC:
		return pc
	case control.OperandFour:
		return 4
	default:
		return 0
	}
}

func loadValue(word uint32, sig control.Signals) uint32 {
	width := sig.LsuDataType.Width()
	if width == 4 || !sig.LsuSignExt {
		if width == 1 {
			return word & 0xFF
		}
		if width == 2 {
			return word & 0xFFFF
		}
		return word
	}
	if width == 1 {
		return uint32(int32(int8(word)))
	}
	return uint32(int32(int16(word)))
}
