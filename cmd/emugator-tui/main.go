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
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/EmuGatorUF/EmuGator-sub000/assembler"
	"github.com/EmuGatorUF/EmuGator-sub000/emulator"
	"github.com/EmuGatorUF/EmuGator-sub000/isa"
	"github.com/EmuGatorUF/EmuGator-sub000/memory"
)

// demoProgram runs when no -src file is given, so the stepper has something
// to show immediately — the same role pure6502's hardcoded codes slice
// plays for the 6502.
const demoProgram = `
.text
  addi x1, x0, 10
  addi x2, x0, 3
loop:
  add  x3, x3, x1
  addi x2, x2, -1
  bne  x2, x0, loop
  ebreak
`

var (
	state       *emulator.State
	prog        *assembler.AssembledProgram
	breakpoints = map[uint32]bool{}

	paragraphRegs     *widgets.Paragraph
	paragraphPipeline *widgets.Paragraph
	paragraphCode     *widgets.Paragraph
	paragraphMem      *widgets.Paragraph
	paragraphTips     *widgets.Paragraph
)

func renderRegs(p *widgets.Paragraph) {
	sb := &strings.Builder{}
	for r := 0; r < 32; r += 4 {
		for c := 0; c < 4; c++ {
			reg := r + c
			sb.WriteString(fmt.Sprintf("x%-2d=%08x  ", reg, state.Registers.Read(uint32(reg))))
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderPipeline(p *widgets.Paragraph) {
	pc, ok := state.CurrentPC()
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("pipeline: %s\n", state.Pipeline))
	if ok {
		sb.WriteString(fmt.Sprintf("PC: %#010x\n", pc))
	} else {
		sb.WriteString("PC: (pipeline not yet primed)\n")
	}
	if breakpoints[pc] {
		sb.WriteString("[breakpoint here](fg:yellow)\n")
	}
	p.Text = sb.String()
}

func renderCode(p *widgets.Paragraph) {
	pc, _ := state.CurrentPC()
	sb := &strings.Builder{}
	for _, addr := range prog.SourceMap.Addresses() {
		word := prog.FetchWord(addr)
		mnemonic := "?"
		if dec, ok := isa.Decode(isa.Instruction(word)); ok {
			mnemonic = dec.Def.Mnemonic
		}
		line := fmt.Sprintf("%08x: %-8s", addr, mnemonic)
		if addr == pc {
			sb.WriteString(fmt.Sprintf("[%s](fg:cyan)", line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderMem(p *widgets.Paragraph, base uint32, rows, cols int) {
	sb := &strings.Builder{}
	addr := base
	for row := 0; row < rows; row++ {
		sb.WriteString(fmt.Sprintf("%08x:", addr))
		for col := 0; col < cols; col++ {
			sb.WriteString(fmt.Sprintf(" %02x", state.Memory.Preview(addr)))
			addr++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderTips(p *widgets.Paragraph) {
	p.Text = "SPACE = step cycle    C = run to breakpoint/EBREAK    B = toggle breakpoint at PC    Q = quit"
}

func draw() {
	renderRegs(paragraphRegs)
	renderPipeline(paragraphPipeline)
	renderCode(paragraphCode)
	renderMem(paragraphMem, prog.GetSectionStart(assembler.SectionData), 8, 8)
	renderTips(paragraphTips)

	ui.Render(paragraphRegs, paragraphPipeline, paragraphCode, paragraphMem, paragraphTips)
}

func initLayout() {
	paragraphRegs = widgets.NewParagraph()
	paragraphRegs.Title = "Registers"
	paragraphRegs.SetRect(0, 0, 60, 10)

	paragraphPipeline = widgets.NewParagraph()
	paragraphPipeline.Title = "Pipeline"
	paragraphPipeline.SetRect(60, 0, 60+30, 6)

	paragraphCode = widgets.NewParagraph()
	paragraphCode.Title = "Disassembly"
	paragraphCode.SetRect(60, 6, 60+30, 6+28)

	paragraphMem = widgets.NewParagraph()
	paragraphMem.Title = "Data Memory"
	paragraphMem.SetRect(0, 10, 60, 10+12)

	paragraphTips = widgets.NewParagraph()
	paragraphTips.Title = "Tips"
	paragraphTips.SetRect(0, 22, 90, 25)
}

func loadProgram(srcFile, pipelineFlag string) {
	source := demoProgram
	if srcFile != "" {
		b, err := os.ReadFile(srcFile)
		if err != nil {
			log.Fatalf("reading %s: %v", srcFile, err)
		}
		source = string(b)
	}

	var errs []*assembler.Error
	prog, errs = assembler.Assemble(source)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.Kind, e.Error())
		}
		log.Fatalf("%d assembly error(s)", len(errs))
	}

	kind := emulator.TwoStage
	if pipelineFlag == "five-stage" {
		kind = emulator.FiveStage
	}
	state = emulator.New(prog, kind, memory.DefaultConfig())
}

func main() {
	srcFile := flag.String("src", "", "RISC-V assembly file to load (runs a small demo program if omitted)")
	pipelineFlag := flag.String("pipeline", "two-stage", "pipeline core: two-stage or five-stage")
	flag.Parse()

	loadProgram(*srcFile, *pipelineFlag)

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	initLayout()
	draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "Q", "<C-c>":
			return
		case "<Space>":
			if err := state.Clock(); err != nil {
				log.Printf("clock error: %v", err)
			}
		case "c", "C":
			if _, _, err := state.ClockUntilBreak(breakpoints, 1_000_000); err != nil {
				log.Printf("run error: %v", err)
			}
		case "b", "B":
			if pc, ok := state.CurrentPC(); ok {
				breakpoints[pc] = !breakpoints[pc]
			}
		}
		draw()
	}
}
