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

// CSRFile is the side mapping csr_id -> value used by the CSRRx
// instruction family. It is intentionally not part of the register file:
// RV32I treats CSR space as a separate address space with its own atomic
// read-old/write-new semantics.
type CSRFile struct {
	regs map[uint16]uint32
}

// NewCSRFile returns an empty CSR file; every unknown id reads as 0.
func NewCSRFile() *CSRFile {
	return &CSRFile{regs: make(map[uint16]uint32)}
}

// Read returns the current value of csr, or 0 if it has never been written.
func (f *CSRFile) Read(csr uint16) uint32 {
	return f.regs[csr]
}

// ReadModifyWrite performs the atomic read-old/write-new CSR operation: it
// stores newValue in csr unless writeSuppressed is set, and returns old so
// rd observes the previous value either way. The caller computes newValue
// from the instruction's source operand (register value for CSRRW/S/C,
// zero-extended 5-bit immediate for the CSRRxI forms) and writeSuppressed
// via control.CSRWriteSuppressed: CSRRS/CSRRC (and their immediate forms)
// with a zero source operand, and CSRRW writing to x0, leave the CSR as is.
func (f *CSRFile) ReadModifyWrite(csr uint16, old uint32, writeSuppressed bool, newValue uint32) uint32 {
	if !writeSuppressed {
		f.regs[csr] = newValue
	}
	return old
}
