package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/EmuGatorUF/EmuGator-sub000/assembler"
	"github.com/EmuGatorUF/EmuGator-sub000/isa"

	"gopkg.in/urfave/cli.v2"
)

func main() {
	var srcFile string
	var outFile string
	var listing bool

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "src",
				Aliases: []string{"s"},
				Usage:   "RISC-V assembly file to assemble",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file for the raw instruction+data hex dump (stdout if empty)",
			},
			&cli.BoolFlag{
				Name:    "listing",
				Aliases: []string{"l"},
				Usage:   "print an address/hex/source listing instead of a hex dump",
			},
		},
		Name:    "emugator-asm",
		Usage:   "Assemble an RV32I source file and print its listing, hex dump, or errors",
		Version: "v0.0.1",
		Action: func(c *cli.Context) error {
			srcFile = c.String("src")
			outFile = c.String("out")
			listing = c.Bool("listing")

			if srcFile == "" {
				cli.ShowAppHelp(c)
				return cli.Exit("", 86)
			}

			return assemble(srcFile, outFile, listing)
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func assemble(srcFile, outFile string, listing bool) error {
	src, err := os.ReadFile(srcFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcFile, err)
	}

	prog, errs := assembler.Assemble(string(src))
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", srcFile, e.Kind, e.Error())
		}
		return cli.Exit(fmt.Sprintf("%d assembly error(s)", len(errs)), 1)
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outFile, err)
		}
		defer f.Close()
		out = f
	}

	if listing {
		return printListing(out, prog)
	}
	return printHexDump(out, prog)
}

// printListing renders one line per assembled instruction: address, the raw
// word, and the decoded mnemonic — the text-mode analogue of the listing
// pane a browser-based assembler UI would show, per SPEC_FULL.md §B.
func printListing(out *os.File, prog *assembler.AssembledProgram) error {
	for _, addr := range prog.SourceMap.Addresses() {
		word := prog.FetchWord(addr)
		line, _ := prog.SourceMap.Line(addr)
		mnemonic := "?"
		if dec, ok := isa.Decode(isa.Instruction(word)); ok {
			mnemonic = dec.Def.Mnemonic
		}
		fmt.Fprintf(out, "%08x:  %08x  %-8s  ; source line %d\n", addr, word, mnemonic, line)
	}
	if len(prog.SymbolTable) > 0 {
		fmt.Fprintln(out, "\nsymbols:")
		names := make([]string, 0, len(prog.SymbolTable))
		for name := range prog.SymbolTable {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-24s %#010x\n", name, prog.SymbolTable[name])
		}
	}
	return nil
}

// printHexDump writes a flat Intel-style address/byte dump of both memory
// images, text first then data, sorted by address within each.
func printHexDump(out *os.File, prog *assembler.AssembledProgram) error {
	dumpImage(out, "text", prog.InstructionMemory)
	dumpImage(out, "data", prog.InitialDataMemory)
	return nil
}

func dumpImage(out *os.File, name string, image map[uint32]uint8) {
	if len(image) == 0 {
		return
	}
	addrs := make([]uint32, 0, len(image))
	for addr := range image {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	fmt.Fprintf(out, "; %s\n", name)
	for _, addr := range addrs {
		fmt.Fprintf(out, "%08x: %02x\n", addr, image[addr])
	}
}
