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

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		mnemonic       string
		rd, rs1, rs2   uint32
		imm            int64
		pc             uint32
	}{
		{"ADD", 5, 6, 7, 0, 0},
		{"SUB", 1, 2, 3, 0, 0},
		{"ADDI", 5, 6, 0, -1, 0},
		{"SLLI", 5, 6, 0, 3, 0},
		{"SRAI", 5, 6, 0, 31, 0},
		{"LB", 5, 6, 0, 8, 0},
		{"SB", 0, 2, 1, 5, 0},
		{"LUI", 1, 0, 0, 0x12345, 0},
		{"AUIPC", 1, 0, 0, 0x12345, 0},
		{"JAL", 1, 0, 0, 8, 0},
		{"BEQ", 0, 1, 2, 16, 0},
	}

	for _, c := range cases {
		word, err := Encode(c.mnemonic, c.rd, c.rs1, c.rs2, c.imm, c.pc)
		if err != nil {
			t.Fatalf("Encode(%s) failed: %v", c.mnemonic, err)
		}
		dec, ok := Decode(word)
		if !ok {
			t.Fatalf("Decode(%s) failed to match any definition", c.mnemonic)
		}
		if dec.Def.Mnemonic != c.mnemonic {
			t.Errorf("Decode(%s) = %s", c.mnemonic, dec.Def.Mnemonic)
		}
	}
}

func TestEncodeOutOfRangeImmediate(t *testing.T) {
	if _, err := Encode("ADDI", 1, 2, 0, 4096, 0); err == nil {
		t.Fatal("expected out-of-range error for ADDI imm=4096")
	}
	if _, err := Encode("LUI", 1, 0, 0, -1, 0); err == nil {
		t.Fatal("expected out-of-range error for LUI imm=-1")
	}
}

func TestEncodeMisalignedBranch(t *testing.T) {
	if _, err := Encode("JAL", 1, 0, 0, 7, 0); err == nil {
		t.Fatal("expected misaligned error for odd JAL offset")
	}
}

func TestShiftImmediateShamtMasking(t *testing.T) {
	word, err := Encode("SLLI", 5, 6, 0, 0x20, 0)
	if err != nil {
		t.Fatal(err)
	}
	dec, _ := Decode(word)
	if dec.Def.Mnemonic != "SLLI" {
		t.Fatalf("got %s", dec.Def.Mnemonic)
	}
	if word.Shamt() != 0 {
		t.Errorf("shamt = %d, want 0", word.Shamt())
	}
}

func TestSRLIvsSRAI(t *testing.T) {
	srli, _ := Encode("SRLI", 1, 2, 0, 4, 0)
	srai, _ := Encode("SRAI", 1, 2, 0, 4, 0)
	dSRLI, _ := Decode(srli)
	dSRAI, _ := Decode(srai)
	if dSRLI.Def.Mnemonic != "SRLI" {
		t.Errorf("got %s, want SRLI", dSRLI.Def.Mnemonic)
	}
	if dSRAI.Def.Mnemonic != "SRAI" {
		t.Errorf("got %s, want SRAI", dSRAI.Def.Mnemonic)
	}
}

func TestEBREAKvsECALL(t *testing.T) {
	ecall, _ := Encode("ECALL", 0, 0, 0, 0, 0)
	ebreak, _ := Encode("EBREAK", 0, 0, 0, 0, 0)
	dE, _ := Decode(ecall)
	dB, _ := Decode(ebreak)
	if dE.Def.Mnemonic != "ECALL" {
		t.Errorf("got %s, want ECALL", dE.Def.Mnemonic)
	}
	if dB.Def.Mnemonic != "EBREAK" {
		t.Errorf("got %s, want EBREAK", dB.Def.Mnemonic)
	}
}
