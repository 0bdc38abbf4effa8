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

// Package twostage implements the fused fetch/decode-execute pipeline of
// spec.md §4.11: a single clocked core with one architectural PC pair and
// a multicycle counter that stalls fetch advancement across loads and
// stores (jumps and branches complete in one clock). It is the direct generalization of a single Clock-per-edge
// core (one function doing fetch, decode and execute inline, self-stalling
// via a cycle counter) to the RV32I instruction set.
package twostage

import (
	"fmt"

	"github.com/EmuGatorUF/EmuGator-sub000/control"
	"github.com/EmuGatorUF/EmuGator-sub000/internal/emulog"
	"github.com/EmuGatorUF/EmuGator-sub000/isa"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
	"github.com/EmuGatorUF/EmuGator-sub000/register"
)

// AlignmentFault is the single fatal condition this pipeline can raise: a
// computed next PC is not 4-byte aligned. Per spec.md §4.11/§7, this is
// fatal and stops execution loudly rather than being silently masked.
type AlignmentFault struct {
	PC uint32
}

func (e *AlignmentFault) Error() string {
	return fmt.Sprintf("unaligned next PC: %#x", e.PC)
}

// InstructionFetcher supplies raw instruction words; satisfied by anything
// exposing a 4-byte-aligned FetchWord, such as the assembler's
// AssembledProgram (memory.Module has no FetchWord method).
type InstructionFetcher interface {
	FetchWord(addr uint32) uint32
}

// Core is the two-stage pipeline's architectural state: the IF/ID PC pair,
// the ID instruction latch, and the multicycle sub-counter that gates
// memory-accessing instructions across two clocks.
type Core struct {
	IFPc   uint32
	IDPc   uint32
	IDInst isa.Instruction

	multicycle int // 0: first sub-cycle, 1: second sub-cycle of a stalled instruction

	CSR *isa.CSRFile

	DebugReq bool // set when the retired instruction was EBREAK
}

// New returns a core reset to start executing at entry; the ID stage holds
// a NOP-equivalent bubble until the first real fetch lands.
func New(entry uint32) *Core {
	return &Core{IFPc: entry, IDPc: entry, CSR: isa.NewCSRFile()}
}

// CurrentPC reports the PC of the instruction currently in ID — the one
// this cycle will decode and execute — so the emulator's notion of "the
// instruction currently retiring" lines up with fivestage.Core.CurrentPC
// regardless of which pipeline is in use.
func (c *Core) CurrentPC() (uint32, bool) { return c.IDPc, true }

// DebugRequested reports whether the instruction retired this cycle was
// EBREAK.
func (c *Core) DebugRequested() bool { return c.DebugReq }

// Clock advances the pipeline by one cycle per spec.md §4.11's nine steps.
// It fetches instructions via fetcher, reads/writes regs, and performs
// load/store side effects against mem.
func (c *Core) Clock(fetcher InstructionFetcher, regs *register.File, mem *memory.Module) error {
	c.DebugReq = false

	def, decoded, ok := decode(c.IDInst)
	var sig control.Signals
	if ok {
		sig = control.For(def, c.IDInst)
	} else {
		emulog.Logf("unknown opcode %#08x at pc=%#x", uint32(c.IDInst), c.IDPc)
	}

	// Step 2/6: service the previous cycle's memory request, if any, before
	// presenting a new one — modeled directly inline below since this core
	// has no separate latch for "last cycle's request" beyond multicycle.

	// Step 3: fetch next instruction at IF_pc (always happens; whether it
	// gets latched into ID at the end depends on multicycle).
	nextIFInst := isa.Instruction(fetcher.FetchWord(c.IFPc))

	// Step 4: register reads.
	rs1 := regs.Read(decoded.Rs1)
	rs2 := regs.Read(decoded.Rs2)

	// Step 5: operand muxes + ALU.
	a := operand(sig.AluOpASel, rs1, c.IDPc, decoded.Imm)
	b := operand(sig.AluOpBSel, rs2, c.IDPc, decoded.Imm)
	aluResult := control.ALU(sig.AluOp, a, b)

	// Step 6: LSU, two-sub-cycle policy.
	var lsuResult uint32
	stall := false
	if sig.LsuRequest {
		addr := aluResult
		be := memory.ByteEnableForWidth(sig.LsuDataType.Width())
		if c.multicycle == 0 {
			stall = true
			c.multicycle = 1
		} else {
			if sig.LsuWriteEn {
				mem.WriteWord(addr, rs2, be)
			} else {
				lsuResult = loadValue(mem.ReadWord(addr, be), sig)
			}
			c.multicycle = 0
		}
	}

	// CSR read-modify-write: atomic per spec.md §4.9, performed alongside
	// the LSU/ALU since it has no multicycle component.
	var csrResult uint32
	if !stall && sig.CsrOp != control.CsrOpNone {
		operand := rs1
		if sig.CsrImmediate {
			operand = decoded.Rs1 // raw field is the zimm value itself
		}
		addr := c.IDInst.CSR()
		old := c.CSR.Read(addr)
		newVal := control.CSRNewValue(sig.CsrOp, old, operand)
		suppressed := control.CSRWriteSuppressed(sig.CsrOp, decoded.Rd, operand)
		csrResult = c.CSR.ReadModifyWrite(addr, old, suppressed, newVal)
	}

	// Step 7: write-back mux.
	if !stall && sig.RegWrite && decoded.Rd != 0 {
		var wb uint32
		switch sig.WbSrc {
		case control.WbSrcLSU:
			wb = lsuResult
		case control.WbSrcCSR:
			wb = csrResult
		default:
			wb = aluResult
		}
		regs.Write(decoded.Rd, wb)
	}

	if !stall && ok && def.Mnemonic == "EBREAK" {
		c.DebugReq = true
	}

	// Step 8/9: PC mux and buffer advance. Not taken: ID continues with the
	// instruction IF already prefetched this cycle (c.IFPc), and IF moves
	// one further word ahead. Taken: the PC mux targets base+immediate off
	// the *retiring* instruction's own PC, which discards IF's stale
	// sequential prefetch — the pipeline instead fetches directly at the
	// resolved target for the next ID latch, since a two-stage core has no
	// second buffer stage to hold a bubble in while redirect happens.
	if !stall {
		taken := sig.JumpUncond || (sig.JumpCond && aluResult != 0)
		var newIDPc uint32
		var idInst isa.Instruction
		if taken {
			base := c.IDPc
			if sig.JmpBaseSel == control.JmpBaseRF {
				base = rs1
			}
			target := base + uint32(decoded.Imm)
			if def.Mnemonic == "JALR" {
				target &^= 1
			}
			if target%4 != 0 {
				return &AlignmentFault{PC: target}
			}
			newIDPc = target
			idInst = isa.Instruction(fetcher.FetchWord(target))
		} else {
			newIDPc = c.IFPc
			idInst = nextIFInst
		}

		c.IDPc = newIDPc
		c.IFPc = newIDPc + 4
		c.IDInst = idInst
	}

	mem.Clock()
	return nil
}

type decodedOperands struct {
	Rs1, Rs2, Rd uint32
	Imm          int32
}

func decode(inst isa.Instruction) (isa.InstrDef, decodedOperands, bool) {
	d, ok := isa.Decode(inst)
	if !ok {
		return isa.InstrDef{}, decodedOperands{}, false
	}
	return d.Def, decodedOperands{
		Rs1: inst.Rs1(), Rs2: inst.Rs2(), Rd: inst.Rd(), Imm: d.Imm,
	}, true
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
