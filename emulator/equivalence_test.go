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

package emulator

import (
	"testing"

	"github.com/EmuGatorUF/EmuGator-sub000/memory"
	"github.com/EmuGatorUF/EmuGator-sub000/register"
)

// Two-stage is taken as the reference implementation (the simpler of the
// two cores); five-stage must reach the same final architectural state for
// the same program, just not necessarily in the same number of cycles,
// since hazards cost it extra stall/flush cycles the two-stage core
// doesn't have.
func assertEquivalentRun(t *testing.T, name, source string) {
	t.Helper()
	prog := mustAssemble(t, source)

	two := New(prog, TwoStage, memory.DefaultConfig())
	if _, reason, err := two.ClockUntilBreak(nil, 10000); err != nil || reason != StopDebugRequest {
		t.Fatalf("%s: two-stage run: reason=%v err=%v", name, reason, err)
	}

	five := New(prog, FiveStage, memory.DefaultConfig())
	if _, reason, err := five.ClockUntilBreak(nil, 10000); err != nil || reason != StopDebugRequest {
		t.Fatalf("%s: five-stage run: reason=%v err=%v", name, reason, err)
	}

	twoRegs := two.Registers.Snapshot()
	fiveRegs := five.Registers.Snapshot()
	for r := 0; r < register.Count; r++ {
		if twoRegs[r] != fiveRegs[r] {
			t.Errorf("%s: x%d: two-stage=%d five-stage=%d", name, r, twoRegs[r], fiveRegs[r])
		}
	}

	twoMem := two.Memory.Snapshot()
	fiveMem := five.Memory.Snapshot()
	if len(twoMem) != len(fiveMem) {
		t.Errorf("%s: memory snapshot size differs: two-stage=%d five-stage=%d", name, len(twoMem), len(fiveMem))
	}
	for addr, v := range twoMem {
		if fiveMem[addr] != v {
			t.Errorf("%s: mem[%#x]: two-stage=%#x five-stage=%#x", name, addr, v, fiveMem[addr])
		}
	}
}

func TestEquivalenceArithmetic(t *testing.T) {
	assertEquivalentRun(t, "arithmetic", `
.text
  addi x1, x0, 5
  addi x2, x0, 7
  add  x3, x1, x2
  sub  x4, x3, x1
  ebreak
`)
}

// Back-to-back dependent ALU instructions exercise the RAW stall in the
// five-stage core (it has no forwarding); the two-stage core has no such
// hazard since it only ever has one instruction in flight.
func TestEquivalenceDataHazard(t *testing.T) {
	assertEquivalentRun(t, "data-hazard", `
.text
  addi x1, x0, 1
  add  x1, x1, x1
  add  x1, x1, x1
  add  x1, x1, x1
  ebreak
`)
}

// A load immediately consumed by the next instruction forces a
// load-use stall in the five-stage core.
func TestEquivalenceLoadUseHazard(t *testing.T) {
	assertEquivalentRun(t, "load-use-hazard", `
.data
  .word 42
.text
  lui x1, 0
  lw x2, 0(x1)
  addi x3, x2, 1
  ebreak
`)
}

func TestEquivalenceBranchNotTaken(t *testing.T) {
	assertEquivalentRun(t, "branch-not-taken", `
.text
  addi x1, x0, 1
  beq x1, x0, skip
  addi x2, x0, 99
skip:
  addi x3, x0, 1
  ebreak
`)
}

func TestEquivalenceBranchTaken(t *testing.T) {
	assertEquivalentRun(t, "branch-taken", `
.text
  addi x1, x0, 0
  beq x1, x0, skip
  addi x2, x0, 99
skip:
  addi x3, x0, 1
  ebreak
`)
}

func TestEquivalenceLoop(t *testing.T) {
	assertEquivalentRun(t, "loop", `
.text
  addi x1, x0, 5
  addi x2, x0, 0
loop:
  add x2, x2, x1
  addi x1, x1, -1
  bne x1, x0, loop
  ebreak
`)
}

func TestEquivalenceStoreThenLoad(t *testing.T) {
	assertEquivalentRun(t, "store-then-load", `
.data
buf:
  .word 0
.text
  lui x1, 0
  addi x2, x0, 123
  sw x2, 0(x1)
  lw x3, 0(x1)
  ebreak
`)
}
