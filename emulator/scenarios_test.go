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

	"github.com/EmuGatorUF/EmuGator-sub000/assembler"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
)

func mustAssemble(t *testing.T, source string) *assembler.AssembledProgram {
	t.Helper()
	prog, errs := assembler.Assemble(source)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Logf("assemble error: %s", e.Error())
		}
		t.Fatalf("Assemble returned %d error(s)", len(errs))
	}
	return prog
}

func TestClockUntilBreakStopsAtEBREAK(t *testing.T) {
	prog := mustAssemble(t, `
.text
  addi x1, x0, 5
  addi x2, x0, 7
  add  x3, x1, x2
  ebreak
`)
	s := New(prog, TwoStage, memory.DefaultConfig())
	cycles, reason, err := s.ClockUntilBreak(nil, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopDebugRequest {
		t.Fatalf("stop reason = %v, want StopDebugRequest", reason)
	}
	if s.Registers.Read(3) != 12 {
		t.Fatalf("x3 = %d, want 12", s.Registers.Read(3))
	}
	if cycles <= 0 {
		t.Fatalf("cycles = %d, want > 0", cycles)
	}
}

func TestClockUntilBreakZeroCycleNoOp(t *testing.T) {
	prog := mustAssemble(t, ".text\n  addi x1, x0, 1\n")
	s := New(prog, TwoStage, memory.DefaultConfig())
	cycles, reason, err := s.ClockUntilBreak(nil, 0)
	if err != nil || cycles != 0 || reason != StopMaxCycles {
		t.Fatalf("got cycles=%d reason=%v err=%v, want 0, StopMaxCycles, nil", cycles, reason, err)
	}
	if s.Registers.Read(1) != 0 {
		t.Fatalf("x1 = %d after zero-cycle run, want 0", s.Registers.Read(1))
	}
}

func TestClockUntilBreakHitsLoopCounter(t *testing.T) {
	prog := mustAssemble(t, `
.text
  addi x1, x0, 3
loop:
  addi x1, x1, -1
  bne x1, x0, loop
  ebreak
`)
	s := New(prog, TwoStage, memory.DefaultConfig())
	_, reason, err := s.ClockUntilBreak(nil, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopDebugRequest {
		t.Fatalf("stop reason = %v, want StopDebugRequest", reason)
	}
	if s.Registers.Read(1) != 0 {
		t.Fatalf("x1 = %d, want 0", s.Registers.Read(1))
	}
}

func TestClockUntilBreakHitsBreakpoint(t *testing.T) {
	prog := mustAssemble(t, `
.text
  addi x1, x0, 1
target:
  addi x2, x0, 2
  ebreak
`)
	addr, ok := prog.SymbolTable["target"]
	if !ok {
		t.Fatal("target not defined")
	}
	s := New(prog, TwoStage, memory.DefaultConfig())
	_, reason, err := s.ClockUntilBreak(map[uint32]bool{addr: true}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopBreakpoint {
		t.Fatalf("stop reason = %v, want StopBreakpoint", reason)
	}
	// Execution stopped before target's ADDI retired.
	if s.Registers.Read(2) != 0 {
		t.Fatalf("x2 = %d, want 0 (breakpoint should pre-empt target's instruction)", s.Registers.Read(2))
	}
}

func TestClockUntilBreakMaxCyclesExhausted(t *testing.T) {
	prog := mustAssemble(t, `
.text
loop:
  addi x1, x1, 1
  jal x0, loop
`)
	s := New(prog, TwoStage, memory.DefaultConfig())
	_, reason, err := s.ClockUntilBreak(nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopMaxCycles {
		t.Fatalf("stop reason = %v, want StopMaxCycles", reason)
	}
}

func TestClockUntilBreakFiveStage(t *testing.T) {
	prog := mustAssemble(t, `
.text
  addi x1, x0, 5
  addi x2, x0, 7
  add  x3, x1, x2
  ebreak
`)
	s := New(prog, FiveStage, memory.DefaultConfig())
	_, reason, err := s.ClockUntilBreak(nil, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != StopDebugRequest {
		t.Fatalf("stop reason = %v, want StopDebugRequest", reason)
	}
	if s.Registers.Read(3) != 12 {
		t.Fatalf("x3 = %d, want 12", s.Registers.Read(3))
	}
}
