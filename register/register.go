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

// Package register implements the 32-entry RV32I integer register file.
package register

// Count is the number of architectural registers.
const Count = 32

// File is a 32x32-bit register file. Index 0 is hard-wired to zero: reads
// always return 0 and writes are silently discarded, matching the
// generalization of the teacher's plain register struct to an indexed file
// with the RV32I x0 rule layered on top.
type File struct {
	regs [Count]uint32
}

// New returns a zeroed register file.
func New() *File {
	return &File{}
}

// Read returns the value of register r (0..31). Reading x0 always yields 0.
func (f *File) Read(r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return f.regs[r&0x1F]
}

// Write stores value into register r (0..31). Writing to x0 is discarded.
func (f *File) Write(r uint32, value uint32) {
	if r == 0 {
		return
	}
	f.regs[r&0x1F] = value
}

// Snapshot returns a copy of all 32 registers, for display or equivalence
// comparison between the two pipeline implementations.
func (f *File) Snapshot() [Count]uint32 {
	return f.regs
}

// Reset clears every register back to zero.
func (f *File) Reset() {
	f.regs = [Count]uint32{}
}
