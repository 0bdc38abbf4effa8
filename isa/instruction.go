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

import "github.com/EmuGatorUF/EmuGator-sub000/bitutil"

// Instruction is a raw 32-bit RV32I word. It is immutable once constructed;
// every accessor is a pure bit-slice over the underlying value.
type Instruction uint32

// Opcode returns bits[6:0].
func (i Instruction) Opcode() uint32 { return bitutil.Bits(uint32(i), 6, 0) }

// Rd returns bits[11:7].
func (i Instruction) Rd() uint32 { return bitutil.Bits(uint32(i), 11, 7) }

// Funct3 returns bits[14:12].
func (i Instruction) Funct3() uint32 { return bitutil.Bits(uint32(i), 14, 12) }

// Rs1 returns bits[19:15].
func (i Instruction) Rs1() uint32 { return bitutil.Bits(uint32(i), 19, 15) }

// Rs2 returns bits[24:20].
func (i Instruction) Rs2() uint32 { return bitutil.Bits(uint32(i), 24, 20) }

// Funct7 returns bits[31:25].
func (i Instruction) Funct7() uint32 { return bitutil.Bits(uint32(i), 31, 25) }

// Shamt returns bits[24:20], the shift amount used by the shift-immediate
// instructions (valid only when Format is FormatI and the def IsShift()).
func (i Instruction) Shamt() uint32 { return bitutil.Bits(uint32(i), 24, 20) }

// CSR returns bits[31:20], the CSR address used by the CSRRx family. The
// same bits are read as the sign-extended I-type immediate by ImmI for
// every other instruction; CSR gives the unsigned interpretation CSR
// instructions need.
func (i Instruction) CSR() uint16 { return uint16(bitutil.Bits(uint32(i), 31, 20)) }

// ImmI reconstructs the I-type immediate: sign-extend(bits[31:20]).
func (i Instruction) ImmI() int32 {
	return int32(bitutil.SignExtend(bitutil.Bits(uint32(i), 31, 20), 12))
}

// ImmS reconstructs the S-type immediate: sign-extend({bits[31:25], bits[11:7]}).
func (i Instruction) ImmS() int32 {
	raw := bitutil.Bits(uint32(i), 31, 25)<<5 | bitutil.Bits(uint32(i), 11, 7)
	return int32(bitutil.SignExtend(raw, 12))
}

// ImmB reconstructs the B-type immediate:
// sign-extend({bit[31], bit[7], bits[30:25], bits[11:8], 0}).
func (i Instruction) ImmB() int32 {
	raw := bitutil.Bits(uint32(i), 31, 31)<<12 |
		bitutil.Bits(uint32(i), 7, 7)<<11 |
		bitutil.Bits(uint32(i), 30, 25)<<5 |
		bitutil.Bits(uint32(i), 11, 8)<<1
	return int32(bitutil.SignExtend(raw, 13))
}

// ImmU reconstructs the U-type immediate: bits[31:12] << 12.
func (i Instruction) ImmU() int32 {
	return int32(bitutil.Bits(uint32(i), 31, 12) << 12)
}

// ImmJ reconstructs the J-type immediate:
// sign-extend({bit[31], bits[19:12], bit[20], bits[30:21], 0}).
func (i Instruction) ImmJ() int32 {
	raw := bitutil.Bits(uint32(i), 31, 31)<<20 |
		bitutil.Bits(uint32(i), 19, 12)<<12 |
		bitutil.Bits(uint32(i), 20, 20)<<11 |
		bitutil.Bits(uint32(i), 30, 21)<<1
	return int32(bitutil.SignExtend(raw, 21))
}

// Immediate reconstructs the immediate appropriate to fmt. FormatR has no
// immediate and returns 0.
func (i Instruction) Immediate(fmt Format) int32 {
	switch fmt {
	case FormatI:
		return i.ImmI()
	case FormatS:
		return i.ImmS()
	case FormatB:
		return i.ImmB()
	case FormatU:
		return i.ImmU()
	case FormatJ:
		return i.ImmJ()
	default:
		return 0
	}
}
