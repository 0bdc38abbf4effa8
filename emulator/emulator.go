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

// Package emulator ties the register file, memory and one of the two
// pipeline cores together into the single top-level entry point a CLI or
// TUI drives: New to build a machine from an assembled program, Clock to
// advance it one cycle, and ClockUntilBreak to run it to a breakpoint, an
// EBREAK, or a cycle budget.
package emulator

import (
	"github.com/EmuGatorUF/EmuGator-sub000/assembler"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
	"github.com/EmuGatorUF/EmuGator-sub000/pipeline/fivestage"
	"github.com/EmuGatorUF/EmuGator-sub000/pipeline/twostage"
	"github.com/EmuGatorUF/EmuGator-sub000/register"
)

// Pipeline selects which core implementation drives a State.
type Pipeline int

const (
	TwoStage Pipeline = iota
	FiveStage
)

func (p Pipeline) String() string {
	if p == FiveStage {
		return "five-stage"
	}
	return "two-stage"
}

// core is the one interface both pipeline cores sit behind, instead of the
// emulator switching on Pipeline at every call site. CurrentPC and
// DebugRequested were added to twostage.Core to match fivestage.Core; each
// pipeline package declares its own InstructionFetcher type, so their Clock
// methods are wrapped by twoStageCore and fiveStageCore below.
type core interface {
	Clock(fetcher InstructionFetcher, regs *register.File, mem *memory.Module) error
	CurrentPC() (uint32, bool)
	DebugRequested() bool
}

type twoStageCore struct{ *twostage.Core }

func (c twoStageCore) Clock(fetcher InstructionFetcher, regs *register.File, mem *memory.Module) error {
	return c.Core.Clock(fetcher, regs, mem)
}

type fiveStageCore struct{ *fivestage.Core }

func (c fiveStageCore) Clock(fetcher InstructionFetcher, regs *register.File, mem *memory.Module) error {
	return c.Core.Clock(fetcher, regs, mem)
}

// InstructionFetcher supplies raw instruction words to a core; an
// *assembler.AssembledProgram satisfies it directly.
type InstructionFetcher interface {
	FetchWord(addr uint32) uint32
}

// StopReason explains why ClockUntilBreak returned.
type StopReason int

const (
	StopMaxCycles StopReason = iota
	StopBreakpoint
	StopDebugRequest
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopBreakpoint:
		return "breakpoint"
	case StopDebugRequest:
		return "debug-request"
	case StopError:
		return "error"
	default:
		return "max-cycles"
	}
}

// State is the emulator's top-level architectural state: the register
// file, the byte-addressed memory (with its attached UART), and whichever
// pipeline core is driving them. Clock mutates State in place rather than
// returning a successor value — Go idiom for a hot per-cycle loop, and the
// same in-place style pipeline/twostage and pipeline/fivestage already use
// internally; nothing here observes or depends on State being persistent.
type State struct {
	Registers *register.File
	Memory    *memory.Module
	Pipeline  Pipeline

	fetcher InstructionFetcher
	core    core
}

// New builds a machine that starts executing at program's .text section
// start, with memory seeded from program's initial data image and
// configured per memCfg (UART addresses/input).
func New(program *assembler.AssembledProgram, kind Pipeline, memCfg memory.Config) *State {
	entry := program.GetSectionStart(assembler.SectionText)
	mem := memory.New(memCfg, program.InitialDataMemory)
	regs := register.New()

	s := &State{Registers: regs, Memory: mem, Pipeline: kind, fetcher: program}
	if kind == FiveStage {
		s.core = fiveStageCore{fivestage.New(entry)}
	} else {
		s.core = twoStageCore{twostage.New(entry)}
	}
	return s
}

// CurrentPC reports the PC of the instruction currently retiring, per the
// underlying core's own definition of "currently retiring" (see
// fivestage.Core.CurrentPC). The bool is false only while every buffer of a
// five-stage core is empty, as before its first clock.
func (s *State) CurrentPC() (uint32, bool) { return s.core.CurrentPC() }

// Clock advances the machine by exactly one cycle. The core's own Clock
// already ticks the attached UART once (via memory.Module.Clock) as its
// final step, so spec.md §4.10's "clock() advances the UART one tick"
// falls out of delegating to the core rather than needing a second tick
// here. The only error Clock can return is an unaligned next-PC fault,
// which is fatal per spec.md §7.
func (s *State) Clock() error {
	return s.core.Clock(s.fetcher, s.Registers, s.Memory)
}

// ClockUntilBreak repeatedly clocks the machine, stopping at whichever
// comes first: the PC about to retire is in breakpoints, the previous
// cycle's retiring instruction was EBREAK, maxCycles cycles have run, or
// Clock returns an error. A nil breakpoints map behaves as the empty set.
// ClockUntilBreak(nil, 0) is a zero-cycle no-op, per spec.md §8.
func (s *State) ClockUntilBreak(breakpoints map[uint32]bool, maxCycles int) (cycles int, reason StopReason, err error) {
	for cycles = 0; cycles < maxCycles; cycles++ {
		if pc, ok := s.CurrentPC(); ok && breakpoints[pc] {
			return cycles, StopBreakpoint, nil
		}
		if clockErr := s.Clock(); clockErr != nil {
			return cycles, StopError, clockErr
		}
		if s.core.DebugRequested() {
			return cycles + 1, StopDebugRequest, nil
		}
	}
	return cycles, StopMaxCycles, nil
}
