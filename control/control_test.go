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

package control

import (
	"testing"

	"github.com/EmuGatorUF/EmuGator-sub000/isa"
)

func decodeMnemonic(t *testing.T, mnemonic string, rd, rs1, rs2 uint32, imm int64) (isa.InstrDef, isa.Instruction) {
	t.Helper()
	word, err := isa.Encode(mnemonic, rd, rs1, rs2, imm, 0)
	if err != nil {
		t.Fatalf("Encode(%s) error: %v", mnemonic, err)
	}
	decoded, ok := isa.Decode(word)
	if !ok {
		t.Fatalf("Decode(%s) failed", mnemonic)
	}
	return decoded.Def, word
}

func TestAddRTypeSignals(t *testing.T) {
	def, instr := decodeMnemonic(t, "ADD", 1, 2, 3, 0)
	sig := For(def, instr)
	if sig.AluOp != AluAdd || sig.AluOpASel != OperandRF || sig.AluOpBSel != OperandRF {
		t.Fatalf("ADD signals = %+v", sig)
	}
	if !sig.RegWrite || sig.WbSrc != WbSrcALU {
		t.Fatalf("ADD should write back from ALU: %+v", sig)
	}
}

func TestSubDistinguishedFromAddByFunct7(t *testing.T) {
	def, instr := decodeMnemonic(t, "SUB", 1, 2, 3, 0)
	sig := For(def, instr)
	if sig.AluOp != AluSub {
		t.Fatalf("SUB AluOp = %v, want AluSub", sig.AluOp)
	}
}

func TestLuiOperandAIsDontCare(t *testing.T) {
	def, instr := decodeMnemonic(t, "LUI", 1, 0, 0, 0x1000)
	sig := For(def, instr)
	if sig.AluOpASel != OperandNone {
		t.Fatalf("LUI AluOpASel = %v, want OperandNone", sig.AluOpASel)
	}
	if sig.AluOp != AluSelB || sig.AluOpBSel != OperandImm {
		t.Fatalf("LUI signals = %+v", sig)
	}
}

func TestLoadSignalsCarryDataType(t *testing.T) {
	def, instr := decodeMnemonic(t, "LH", 1, 2, 0, 4)
	sig := For(def, instr)
	if sig.LsuDataType != DataHalfSigned || !sig.LsuSignExt {
		t.Fatalf("LH signals = %+v", sig)
	}
	if sig.LsuWriteEn {
		t.Fatal("LH must not set LsuWriteEn")
	}

	def, instr = decodeMnemonic(t, "LBU", 1, 2, 0, 4)
	sig = For(def, instr)
	if sig.LsuDataType != DataByteUnsigned || sig.LsuSignExt {
		t.Fatalf("LBU signals = %+v", sig)
	}
}

func TestStoreSignalsDisableRegWrite(t *testing.T) {
	def, instr := decodeMnemonic(t, "SW", 0, 2, 3, 4)
	sig := For(def, instr)
	if !sig.LsuWriteEn || sig.RegWrite {
		t.Fatalf("SW signals = %+v", sig)
	}
}

func TestBranchSignalsSetCmpAndJumpCond(t *testing.T) {
	def, instr := decodeMnemonic(t, "BLT", 0, 1, 2, 8)
	sig := For(def, instr)
	if sig.AluOp != AluLt || !sig.CmpSet || !sig.JumpCond || sig.JmpBaseSel != JmpBasePC {
		t.Fatalf("BLT signals = %+v", sig)
	}
}

func TestJalSignalsLinkOperandIsFour(t *testing.T) {
	def, instr := decodeMnemonic(t, "JAL", 1, 0, 0, 0x100)
	sig := For(def, instr)
	if !sig.JumpUncond || sig.AluOpBSel != OperandFour || sig.JmpBaseSel != JmpBasePC {
		t.Fatalf("JAL signals = %+v", sig)
	}
}

func TestJalrUsesRegisterBase(t *testing.T) {
	def, instr := decodeMnemonic(t, "JALR", 1, 5, 0, 0)
	sig := For(def, instr)
	if sig.JmpBaseSel != JmpBaseRF {
		t.Fatalf("JALR JmpBaseSel = %v, want JmpBaseRF", sig.JmpBaseSel)
	}
}

func TestEbreakRequestsDebugWithNoWrites(t *testing.T) {
	def, instr := decodeMnemonic(t, "EBREAK", 0, 0, 0, 0)
	sig := For(def, instr)
	if !sig.DebugReq || sig.RegWrite || sig.LsuRequest {
		t.Fatalf("EBREAK signals = %+v", sig)
	}
}

func TestCsrSignalsDistinguishOpAndOperandSource(t *testing.T) {
	def, instr := decodeMnemonic(t, "CSRRS", 1, 2, 0, 0x340)
	sig := For(def, instr)
	if sig.CsrOp != CsrSet || sig.CsrImmediate || sig.WbSrc != WbSrcCSR || !sig.RegWrite {
		t.Fatalf("CSRRS signals = %+v", sig)
	}

	def, instr = decodeMnemonic(t, "CSRRWI", 1, 5, 0, 0x340)
	sig = For(def, instr)
	if sig.CsrOp != CsrWriteImmediate || !sig.CsrImmediate {
		t.Fatalf("CSRRWI signals = %+v", sig)
	}
}

func TestCSRWriteSuppressedRules(t *testing.T) {
	// CSRRW suppresses its write when rd==x0, per original_source's
	// CSRRW handler.
	if !CSRWriteSuppressed(CsrWrite, 0, 0xFF) {
		t.Fatal("CSRRW to x0 must suppress the CSR write")
	}
	if CSRWriteSuppressed(CsrWrite, 1, 0xFF) {
		t.Fatal("CSRRW to a real register must still write the CSR")
	}
	// CSRRWI has no rd==x0 exception: original_source's CSRRWI handler
	// always writes zimm regardless of rd.
	if CSRWriteSuppressed(CsrWriteImmediate, 0, 0xFF) {
		t.Fatal("CSRRWI to x0 must still write the CSR")
	}
	if CSRWriteSuppressed(CsrWriteImmediate, 1, 0xFF) {
		t.Fatal("CSRRWI to a real register must still write the CSR")
	}
	if !CSRWriteSuppressed(CsrSet, 1, 0) {
		t.Fatal("CSRRS(I) with a zero operand must suppress the CSR write")
	}
	if CSRWriteSuppressed(CsrSet, 1, 1) {
		t.Fatal("CSRRS(I) with a nonzero operand must write the CSR")
	}
}

func TestCSRNewValueComputesEachOp(t *testing.T) {
	if got := CSRNewValue(CsrWrite, 0xF0, 0x0F); got != 0x0F {
		t.Fatalf("CsrWrite = %#x, want 0x0f", got)
	}
	if got := CSRNewValue(CsrWriteImmediate, 0xF0, 0x0F); got != 0x0F {
		t.Fatalf("CsrWriteImmediate = %#x, want 0x0f", got)
	}
	if got := CSRNewValue(CsrSet, 0xF0, 0x0F); got != 0xFF {
		t.Fatalf("CsrSet = %#x, want 0xff", got)
	}
	if got := CSRNewValue(CsrClear, 0xFF, 0x0F); got != 0xF0 {
		t.Fatalf("CsrClear = %#x, want 0xf0", got)
	}
}

func TestBubbleIsZeroValue(t *testing.T) {
	if Bubble != (Signals{}) {
		t.Fatal("Bubble must equal the zero Signals value")
	}
}

func TestALUArithmeticWraps(t *testing.T) {
	if got := ALU(AluAdd, 0xFFFFFFFF, 1); got != 0 {
		t.Fatalf("ADD wraparound = %#x, want 0", got)
	}
	if got := ALU(AluSub, 0, 1); got != 0xFFFFFFFF {
		t.Fatalf("SUB underflow = %#x, want 0xffffffff", got)
	}
}

func TestALUShiftsMaskShamtTo5Bits(t *testing.T) {
	if got := ALU(AluSll, 1, 33); got != 2 {
		t.Fatalf("SLL with shamt 33 = %d, want 2 (shamt masked to 1)", got)
	}
}

func TestALUArithmeticRightShiftSignExtends(t *testing.T) {
	got := ALU(AluSra, 0x80000000, 4)
	if got != 0xF8000000 {
		t.Fatalf("SRA = %#x, want 0xf8000000", got)
	}
}

func TestALUComparators(t *testing.T) {
	cases := []struct {
		op       AluOp
		a, b     uint32
		expected uint32
	}{
		{AluEq, 5, 5, 1},
		{AluNeq, 5, 5, 0},
		{AluLt, ^uint32(0), 0, 1}, // -1 < 0 signed
		{AluLtu, ^uint32(0), 0, 0},
		{AluGe, 0, ^uint32(0), 1},
		{AluGeu, 0, ^uint32(0), 0},
	}
	for _, c := range cases {
		if got := ALU(c.op, c.a, c.b); got != c.expected {
			t.Errorf("ALU(%v, %#x, %#x) = %d, want %d", c.op, c.a, c.b, got, c.expected)
		}
	}
}

func TestALUSelBReturnsOperandB(t *testing.T) {
	if got := ALU(AluSelB, 0x111, 0x222); got != 0x222 {
		t.Fatalf("SELB = %#x, want 0x222", got)
	}
}
