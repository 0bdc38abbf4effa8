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

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/EmuGatorUF/EmuGator-sub000/assembler"
	"github.com/EmuGatorUF/EmuGator-sub000/emulator"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "emugator",
		Short: "RV32I educational simulator — assemble, run, and single-step RISC-V programs",
	}

	rootCmd.AddCommand(assembleCmd(), runCmd(), stepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func assembleFile(path string) (*assembler.AssembledProgram, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prog, errs := assembler.Assemble(string(src))
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.Kind, e.Error())
		}
		return nil, fmt.Errorf("%d assembly error(s) in %s", len(errs), path)
	}
	return prog, nil
}

func pipelineKind(name string) (emulator.Pipeline, error) {
	switch name {
	case "two-stage":
		return emulator.TwoStage, nil
	case "five-stage":
		return emulator.FiveStage, nil
	default:
		return 0, fmt.Errorf("unknown pipeline %q: use two-stage or five-stage", name)
	}
}

func assembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble [file.s]",
		Short: "Assemble a source file and print its symbol table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			names := make([]string, 0, len(prog.SymbolTable))
			for name := range prog.SymbolTable {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%-24s %#010x\n", name, prog.SymbolTable[name])
			}
			fmt.Printf("%d instruction byte(s), %d data byte(s)\n",
				len(prog.InstructionMemory), len(prog.InitialDataMemory))
			return nil
		},
	}
	return cmd
}

func runCmd() *cobra.Command {
	var pipeline string
	var maxCycles int

	cmd := &cobra.Command{
		Use:   "run [file.s]",
		Short: "Assemble and run a program to completion (EBREAK or a cycle budget)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			kind, err := pipelineKind(pipeline)
			if err != nil {
				return err
			}

			s := emulator.New(prog, kind, memory.DefaultConfig())
			cycles, reason, err := s.ClockUntilBreak(nil, maxCycles)
			if err != nil {
				return fmt.Errorf("after %d cycle(s): %w", cycles, err)
			}

			fmt.Printf("stopped after %d cycle(s): %s\n", cycles, reason)
			printRegisters(s)
			return nil
		},
	}
	cmd.Flags().StringVar(&pipeline, "pipeline", "two-stage", "pipeline core: two-stage or five-stage")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 1_000_000, "cycle budget before giving up")
	return cmd
}

func stepCmd() *cobra.Command {
	var pipeline string
	var count int

	cmd := &cobra.Command{
		Use:   "step [file.s]",
		Short: "Assemble a program and single-step it, printing the PC after every cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			kind, err := pipelineKind(pipeline)
			if err != nil {
				return err
			}

			s := emulator.New(prog, kind, memory.DefaultConfig())
			for i := 0; i < count; i++ {
				if err := s.Clock(); err != nil {
					return fmt.Errorf("cycle %d: %w", i, err)
				}
				pc, ok := s.CurrentPC()
				fmt.Printf("cycle %d: pc=%#010x (valid=%v)\n", i, pc, ok)
			}
			printRegisters(s)
			return nil
		},
	}
	cmd.Flags().StringVar(&pipeline, "pipeline", "two-stage", "pipeline core: two-stage or five-stage")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of cycles to step")
	return cmd
}

func printRegisters(s *emulator.State) {
	regs := s.Registers.Snapshot()
	for r := 0; r < len(regs); r += 4 {
		fmt.Printf("x%-2d=%08x  x%-2d=%08x  x%-2d=%08x  x%-2d=%08x\n",
			r, regs[r], r+1, regs[r+1], r+2, regs[r+2], r+3, regs[r+3])
	}
}
