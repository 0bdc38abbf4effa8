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

// Package assembler implements the two-pass RV32I assembler: pass one walks
// the source purely to discover section layout and bind every label and
// section origin to an expression; a DFS over those bindings then resolves
// each to a concrete value, detecting cycles; pass two re-walks the source
// with the resolved table in hand, actually encoding instructions and data
// into the two memory images. Every failure accumulates into the returned
// error slice instead of aborting assembly at the first one.
package assembler

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/EmuGatorUF/EmuGator-sub000/expr"
	"github.com/EmuGatorUF/EmuGator-sub000/isa"
	"github.com/EmuGatorUF/EmuGator-sub000/lexer"
)

// binding is an as-yet-unresolved symbol: the expression it was defined as,
// and the token its definition anchors errors to.
type binding struct {
	rpn    []expr.Item
	anchor lexer.Token
}

func literalBinding(n int64, anchor lexer.Token) binding {
	return binding{rpn: []expr.Item{{Kind: expr.ItemNumber, Number: big.NewInt(n)}}, anchor: anchor}
}

// Assemble runs both passes over source and returns either a fully resolved
// program or the complete set of errors found across the whole file. It
// never returns both: a non-empty error slice always comes back with a nil
// program.
func Assemble(source string) (*AssembledProgram, []*Error) {
	tokens, lexErrs := lexer.Lex(source)
	var errs []*Error
	for _, e := range lexErrs {
		errs = append(errs, &Error{Kind: KindLexical, Line: e.Line, Column: e.Column, Width: e.Width, Message: e.Message})
	}

	lines := splitLines(tokens)

	p1 := newPass1()
	p1.run(lines)
	errs = append(errs, p1.errors...)

	sr := &symbolResolver{bindings: p1.bindings, resolved: map[string]*big.Int{}, visiting: map[string]bool{}}
	errs = append(errs, sr.resolveAll()...)

	resolvedU32 := map[string]uint32{}
	for name, v := range sr.resolved {
		if v.Sign() < 0 || v.BitLen() > 32 {
			anchor := p1.bindings[name].anchor
			errs = append(errs, &Error{
				Kind: KindOutOfRangeImm, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width,
				Message: fmt.Sprintf("symbol %q value %s does not fit in 32 bits", name, v.String()),
			})
			continue
		}
		resolvedU32[name] = uint32(v.Uint64())
	}

	p2 := newPass2(sr.resolved, resolvedU32)
	p2.run(lines)
	errs = append(errs, p2.errors...)

	if len(errs) > 0 {
		return nil, errs
	}
	return &AssembledProgram{
		InstructionMemory: p2.instructionMemory,
		InitialDataMemory: p2.dataMemory,
		SourceMap:         p2.sourceMap,
		SymbolTable:       resolvedU32,
	}, nil
}

// ---- symbol resolution --------------------------------------------------

// symbolResolver evaluates each binding's RPN expression against the others,
// recursively, with a visiting set to catch cycles (RecursiveSymbol).
type symbolResolver struct {
	bindings map[string]binding
	resolved map[string]*big.Int
	visiting map[string]bool
}

func (r *symbolResolver) resolve(name string) (*big.Int, *Error) {
	if v, ok := r.resolved[name]; ok {
		return v, nil
	}
	b, ok := r.bindings[name]
	if !ok {
		return nil, &Error{Kind: KindUndefinedSymbol, Message: fmt.Sprintf("symbol %q is not defined", name)}
	}
	if r.visiting[name] {
		return nil, &Error{
			Kind: KindRecursiveSymbol, Line: b.anchor.Line, Column: b.anchor.Column, Width: b.anchor.Width,
			Message: fmt.Sprintf("definition of %q is recursive", name),
		}
	}

	r.visiting[name] = true
	defer delete(r.visiting, name)

	var inner *Error
	resolveFn := func(sym string) (*big.Int, bool) {
		v, err := r.resolve(sym)
		if err != nil {
			inner = err
			return nil, false
		}
		return v, true
	}

	val, err := expr.Eval(b.rpn, resolveFn)
	if err != nil {
		if inner != nil {
			return nil, inner
		}
		return nil, &Error{Kind: KindParse, Line: b.anchor.Line, Column: b.anchor.Column, Width: b.anchor.Width, Message: err.Error()}
	}
	r.resolved[name] = val
	return val, nil
}

// resolveAll walks every binding in a deterministic (sorted) order so the
// set of reported errors never depends on map iteration order.
func (r *symbolResolver) resolveAll() []*Error {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []*Error
	for _, name := range names {
		if _, err := r.resolve(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ---- pass one: layout and symbol discovery ------------------------------

type pass1 struct {
	bindings       map[string]binding
	errors         []*Error
	currentOrg     string
	currentSection Section
	offset         uint32
}

func newPass1() *pass1 {
	origin := lexer.Token{Line: 1, Column: 1}
	p := &pass1{
		bindings:       map[string]binding{"!org(0,0)": literalBinding(0, origin)},
		currentOrg:     "!org(0,0)",
		currentSection: SectionText,
	}
	return p
}

func (p *pass1) run(lines [][]lexer.Token) {
	for _, line := range lines {
		p.line(line)
	}
}

func (p *pass1) bindLabel(label lexer.Token) {
	rpn := []expr.Item{
		{Kind: expr.ItemSymbol, Symbol: p.currentOrg, Line: label.Line, Column: label.Column},
		{Kind: expr.ItemNumber, Number: big.NewInt(int64(p.offset)), Line: label.Line, Column: label.Column},
		{Kind: expr.ItemOperator, Op: lexer.KindPlus, Line: label.Line, Column: label.Column},
	}
	p.bindings[label.StrValue] = binding{rpn: rpn, anchor: label}
}

func (p *pass1) addExprErrors(exprErrs []expr.Error) {
	for _, e := range exprErrs {
		p.errors = append(p.errors, &Error{Kind: KindParse, Line: e.Line, Column: e.Column, Width: e.Width, Message: e.Message})
	}
}

func orgSymbolName(label *lexer.Token, head lexer.Token) string {
	if label != nil {
		return label.StrValue
	}
	return fmt.Sprintf("!org(%d,%d)", head.Line, head.Column)
}

func (p *pass1) line(line []lexer.Token) {
	if len(line) == 0 {
		return
	}
	label, rest := splitLabel(line)
	if len(rest) == 0 {
		if label != nil {
			p.bindLabel(*label)
		}
		return
	}

	head := rest[0]
	if isDirectiveToken(head) {
		p.directive(label, head, rest[1:])
		return
	}

	if label != nil {
		p.bindLabel(*label)
	}

	mnemonic := strings.ToUpper(head.StrValue)
	if _, ok := isa.Lookup(mnemonic); !ok {
		p.errors = append(p.errors, &Error{
			Kind: KindUnknownInstruction, Line: head.Line, Column: head.Column, Width: head.Width,
			Message: fmt.Sprintf("unknown instruction %q", head.StrValue),
		})
		return
	}
	p.offset += 4
}

func (p *pass1) directive(label *lexer.Token, head lexer.Token, operands []lexer.Token) {
	name := directiveName(head)
	switch name {
	case "text", "data":
		section := SectionText
		if name == "data" {
			section = SectionData
		}
		orgName := orgSymbolName(label, head)
		var rpn []expr.Item
		if len(operands) == 0 {
			rpn = []expr.Item{{Kind: expr.ItemNumber, Number: big.NewInt(0)}}
		} else {
			items, exprErrs := expr.ToRPN(operands)
			p.addExprErrors(exprErrs)
			rpn = items
		}
		p.bindings[orgName] = binding{rpn: rpn, anchor: head}
		p.currentOrg = orgName
		p.currentSection = section
		p.offset = 0

	case "byte", "2byte", "4byte", "8byte", "half", "word", "dword":
		if label != nil {
			p.bindLabel(*label)
		}
		wa := directiveWidths[name]
		groups := splitTopLevelCommas(operands)
		if len(groups) == 1 && len(groups[0]) == 0 {
			p.errors = append(p.errors, &Error{
				Kind: KindParse, Line: head.Line, Column: head.Column, Width: head.Width,
				Message: fmt.Sprintf("expected at least one expression after .%s", name),
			})
			return
		}
		p.offset = alignUp(p.offset, uint32(wa.Alignment))
		p.offset += uint32(len(groups) * wa.Width)

	case "ascii", "asciz", "string":
		if label != nil {
			p.bindLabel(*label)
		}
		groups := splitTopLevelCommas(operands)
		if len(groups) == 1 && len(groups[0]) == 0 {
			p.errors = append(p.errors, &Error{
				Kind: KindParse, Line: head.Line, Column: head.Column, Width: head.Width,
				Message: fmt.Sprintf("expected at least one string literal after .%s", name),
			})
			return
		}
		for _, g := range groups {
			if len(g) != 1 || g[0].Kind != lexer.KindString {
				p.errors = append(p.errors, &Error{
					Kind: KindStringExpected, Line: head.Line, Column: head.Column, Width: head.Width,
					Message: fmt.Sprintf("expected a string literal after .%s", name),
				})
				continue
			}
			p.offset += uint32(len(g[0].StrValue))
			if name != "ascii" {
				p.offset++
			}
		}

	default:
		if label != nil {
			p.bindLabel(*label)
		}
		p.errors = append(p.errors, &Error{
			Kind: KindUnknownDirective, Line: head.Line, Column: head.Column, Width: head.Width,
			Message: fmt.Sprintf("unknown directive %q", "."+name),
		})
	}
}

// ---- pass two: emission --------------------------------------------------

type pass2 struct {
	resolvedBig       map[string]*big.Int
	resolvedU32       map[string]uint32
	errors            []*Error
	instructionMemory map[uint32]uint8
	dataMemory        map[uint32]uint8
	sourceMap         *SourceMap
	currentSection    Section
	address           uint32
}

func newPass2(resolvedBig map[string]*big.Int, resolvedU32 map[string]uint32) *pass2 {
	return &pass2{
		resolvedBig:       resolvedBig,
		resolvedU32:       resolvedU32,
		instructionMemory: map[uint32]uint8{},
		dataMemory:        map[uint32]uint8{},
		sourceMap:         newSourceMap(),
		currentSection:    SectionText,
	}
}

func (p *pass2) run(lines [][]lexer.Token) {
	for _, line := range lines {
		p.line(line)
	}
}

func (p *pass2) resolver(name string) (*big.Int, bool) {
	v, ok := p.resolvedBig[name]
	return v, ok
}

func (p *pass2) target() map[uint32]uint8 {
	if p.currentSection == SectionText {
		return p.instructionMemory
	}
	return p.dataMemory
}

func (p *pass2) checkLabelAddress(label lexer.Token) {
	want, ok := p.resolvedU32[label.StrValue]
	if !ok {
		return // already reported as an overflow during resolution
	}
	if want != p.address {
		p.errors = append(p.errors, &Error{
			Kind: KindMisalignedLabel, Line: label.Line, Column: label.Column, Width: label.Width,
			Message: fmt.Sprintf("label %q was bound to address %#x but assembly reached %#x here", label.StrValue, want, p.address),
		})
	}
}

func (p *pass2) line(line []lexer.Token) {
	if len(line) == 0 {
		return
	}
	label, rest := splitLabel(line)
	if len(rest) == 0 {
		if label != nil {
			p.checkLabelAddress(*label)
		}
		return
	}

	head := rest[0]
	if isDirectiveToken(head) {
		p.directive(label, head, rest[1:])
		return
	}

	if label != nil {
		p.checkLabelAddress(*label)
	}

	mnemonic := strings.ToUpper(head.StrValue)
	def, ok := isa.Lookup(mnemonic)
	if !ok {
		return // unknown instruction already reported in pass one
	}

	inst, err := p.encodeInstruction(def, head, rest[1:])
	if err != nil {
		p.errors = append(p.errors, err)
		p.address += 4
		return
	}
	word := uint32(inst)
	mem := p.target()
	for i := uint32(0); i < 4; i++ {
		mem[p.address+i] = byte(word >> (i * 8))
	}
	p.sourceMap.Insert(p.address, head.Line)
	p.address += 4
}

func (p *pass2) directive(label *lexer.Token, head lexer.Token, operands []lexer.Token) {
	name := directiveName(head)
	switch name {
	case "text", "data":
		section := SectionText
		if name == "data" {
			section = SectionData
		}
		orgName := orgSymbolName(label, head)
		addr, ok := p.resolvedU32[orgName]
		if !ok {
			return // already reported during resolution
		}
		p.currentSection = section
		p.address = addr

	case "byte", "2byte", "4byte", "8byte", "half", "word", "dword":
		if label != nil {
			p.checkLabelAddress(*label)
		}
		wa := directiveWidths[name]
		groups := splitTopLevelCommas(operands)
		if len(groups) == 1 && len(groups[0]) == 0 {
			return // already reported in pass one
		}
		p.address = alignUp(p.address, uint32(wa.Alignment))
		mem := p.target()
		for _, g := range groups {
			items, exprErrs := expr.ToRPN(g)
			if len(exprErrs) > 0 {
				for _, e := range exprErrs {
					p.errors = append(p.errors, &Error{Kind: KindParse, Line: e.Line, Column: e.Column, Width: e.Width, Message: e.Message})
				}
				p.address += uint32(wa.Width)
				continue
			}
			val, evalErr := expr.Eval(items, p.resolver)
			if evalErr != nil {
				p.errors = append(p.errors, exprEvalError(g, head, evalErr))
				p.address += uint32(wa.Width)
				continue
			}
			encoded, fits := encodeWidthBytesLE(val, wa.Width)
			if !fits {
				anchor := head
				if len(g) > 0 {
					anchor = g[0]
				}
				p.errors = append(p.errors, &Error{
					Kind: KindOverflow, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width,
					Message: fmt.Sprintf("value %s does not fit in %d byte(s)", val.String(), wa.Width),
				})
				p.address += uint32(wa.Width)
				continue
			}
			for i, b := range encoded {
				mem[p.address+uint32(i)] = b
			}
			p.address += uint32(wa.Width)
		}

	case "ascii", "asciz", "string":
		if label != nil {
			p.checkLabelAddress(*label)
		}
		groups := splitTopLevelCommas(operands)
		mem := p.target()
		for _, g := range groups {
			if len(g) != 1 || g[0].Kind != lexer.KindString {
				continue // already reported in pass one
			}
			for _, b := range []byte(g[0].StrValue) {
				mem[p.address] = b
				p.address++
			}
			if name != "ascii" {
				mem[p.address] = 0
				p.address++
			}
		}

	default:
		// unknown directive already reported in pass one
	}
}

func exprEvalError(tokens []lexer.Token, head lexer.Token, err error) *Error {
	anchor := head
	if len(tokens) > 0 {
		anchor = tokens[0]
	}
	kind := KindParse
	if errors.Is(err, expr.ErrUndefinedSymbol) {
		kind = KindUndefinedSymbol
	}
	return &Error{Kind: kind, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width, Message: err.Error()}
}

// ---- instruction operand parsing ----------------------------------------

func (p *pass2) evalExpr(tokens []lexer.Token, anchor lexer.Token) (*big.Int, *Error) {
	if len(tokens) == 0 {
		return nil, &Error{Kind: KindParse, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width, Message: "expected an expression"}
	}
	items, exprErrs := expr.ToRPN(tokens)
	if len(exprErrs) > 0 {
		e := exprErrs[0]
		return nil, &Error{Kind: KindParse, Line: e.Line, Column: e.Column, Width: e.Width, Message: e.Message}
	}
	val, err := expr.Eval(items, p.resolver)
	if err != nil {
		return nil, exprEvalError(tokens, anchor, err)
	}
	return val, nil
}

func parseRegister(tok lexer.Token) (uint32, *Error) {
	text := toLowerASCII(tok.StrValue)
	if len(text) < 2 || text[0] != 'x' {
		return 0, &Error{Kind: KindInvalidRegister, Line: tok.Line, Column: tok.Column, Width: tok.Width, Message: fmt.Sprintf("invalid register %q: must start with 'x'", tok.StrValue)}
	}
	n, err := strconv.Atoi(text[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, &Error{Kind: KindInvalidRegister, Line: tok.Line, Column: tok.Column, Width: tok.Width, Message: fmt.Sprintf("invalid register %q: must be x0-x31", tok.StrValue)}
	}
	return uint32(n), nil
}

func parseRegisterOperand(seg []lexer.Token, fallback lexer.Token) (uint32, *Error) {
	if len(seg) != 1 || seg[0].Kind != lexer.KindSymbol {
		anchor := fallback
		if len(seg) > 0 {
			anchor = seg[0]
		}
		return 0, &Error{Kind: KindInvalidRegister, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width, Message: "expected a register operand"}
	}
	return parseRegister(seg[0])
}

func shapeError(instrTok lexer.Token, mnemonic, want string) *Error {
	return &Error{
		Kind: KindParse, Line: instrTok.Line, Column: instrTok.Column, Width: instrTok.Width,
		Message: fmt.Sprintf("%s expects operands: %s", mnemonic, want),
	}
}

// splitImmParen splits a "imm(rs1)" operand segment (the RISC-V load/store
// syntax) into the immediate's tokens (may be empty, meaning 0) and the
// base-register token.
func splitImmParen(seg []lexer.Token, instrTok lexer.Token) ([]lexer.Token, lexer.Token, *Error) {
	if len(seg) < 3 {
		return nil, lexer.Token{}, shapeError(instrTok, "", "imm(rs1)")
	}
	rparen := seg[len(seg)-1]
	if rparen.Kind != lexer.KindRParen {
		return nil, lexer.Token{}, &Error{Kind: KindParse, Line: rparen.Line, Column: rparen.Column, Width: rparen.Width, Message: "expected ')'"}
	}
	rs1Tok := seg[len(seg)-2]
	if rs1Tok.Kind != lexer.KindSymbol {
		return nil, lexer.Token{}, &Error{Kind: KindInvalidRegister, Line: rs1Tok.Line, Column: rs1Tok.Column, Width: rs1Tok.Width, Message: "expected a base register"}
	}
	lparen := seg[len(seg)-3]
	if lparen.Kind != lexer.KindLParen {
		return nil, lexer.Token{}, &Error{Kind: KindParse, Line: lparen.Line, Column: lparen.Column, Width: lparen.Width, Message: "expected '('"}
	}
	return seg[:len(seg)-3], rs1Tok, nil
}

func rangeError(seg []lexer.Token, instrTok lexer.Token, msg string) *Error {
	anchor := instrTok
	if len(seg) > 0 {
		anchor = seg[0]
	}
	return &Error{Kind: KindOutOfRangeImm, Line: anchor.Line, Column: anchor.Column, Width: anchor.Width, Message: msg}
}

func (p *pass2) encode(mnemonic string, rd, rs1, rs2 uint32, imm int64, instrTok lexer.Token) (isa.Instruction, *Error) {
	inst, err := isa.Encode(mnemonic, rd, rs1, rs2, imm, p.address)
	if err != nil {
		kind := KindOutOfRangeImm
		switch {
		case errors.Is(err, isa.ErrInvalidRegister):
			kind = KindInvalidRegister
		case errors.Is(err, isa.ErrUnknownInstruction):
			kind = KindUnknownInstruction
		case errors.Is(err, isa.ErrMisalignedImmediate):
			kind = KindMisalignedLabel
		}
		return 0, &Error{Kind: kind, Line: instrTok.Line, Column: instrTok.Column, Width: instrTok.Width, Message: err.Error()}
	}
	return inst, nil
}

// encodeInstruction parses operands per def's format (plus the CSR and
// ECALL/EBREAK/FENCE special cases, which share a format but not a grammar)
// and encodes the result.
func (p *pass2) encodeInstruction(def isa.InstrDef, instrTok lexer.Token, operands []lexer.Token) (isa.Instruction, *Error) {
	mnemonic := def.Mnemonic

	switch {
	case mnemonic == "ECALL" || mnemonic == "EBREAK":
		if len(operands) != 0 {
			return 0, shapeError(instrTok, mnemonic, "(none)")
		}
		return p.encode(mnemonic, 0, 0, 0, 0, instrTok)

	case mnemonic == "FENCE":
		var immVal int64
		if len(operands) > 0 {
			v, err := p.evalExpr(operands, instrTok)
			if err != nil {
				return 0, err
			}
			immVal = v.Int64()
		}
		return p.encode(mnemonic, 0, 0, 0, immVal, instrTok)

	case def.IsCSR():
		segs := splitTopLevelCommas(operands)
		if len(segs) != 3 {
			return 0, shapeError(instrTok, mnemonic, "rd, csr, rs1-or-uimm")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		csrVal, err := p.evalExpr(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		if csrVal.Sign() < 0 || csrVal.BitLen() > 12 {
			return 0, rangeError(segs[1], instrTok, fmt.Sprintf("csr address %s out of range [0,0xFFF]", csrVal.String()))
		}
		var operand uint32
		if def.IsCSRImmediate() {
			zimm, err := p.evalExpr(segs[2], instrTok)
			if err != nil {
				return 0, err
			}
			if zimm.Sign() < 0 || zimm.BitLen() > 5 {
				return 0, rangeError(segs[2], instrTok, fmt.Sprintf("csr immediate %s out of range [0,31]", zimm.String()))
			}
			operand = uint32(zimm.Uint64())
		} else {
			operand, err = parseRegisterOperand(segs[2], instrTok)
			if err != nil {
				return 0, err
			}
		}
		return p.encode(mnemonic, rd, operand, 0, int64(csrVal.Uint64()), instrTok)

	case def.Format == isa.FormatR:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 3 {
			return 0, shapeError(instrTok, mnemonic, "rd, rs1, rs2")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegisterOperand(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		rs2, err := parseRegisterOperand(segs[2], instrTok)
		if err != nil {
			return 0, err
		}
		return p.encode(mnemonic, rd, rs1, rs2, 0, instrTok)

	case def.Format == isa.FormatB:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 3 {
			return 0, shapeError(instrTok, mnemonic, "rs1, rs2, target")
		}
		rs1, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		rs2, err := parseRegisterOperand(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		target, err := p.evalExpr(segs[2], instrTok)
		if err != nil {
			return 0, err
		}
		return p.encode(mnemonic, 0, rs1, rs2, target.Int64(), instrTok)

	case def.Format == isa.FormatU:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 2 {
			return 0, shapeError(instrTok, mnemonic, "rd, imm")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		imm, err := p.evalExpr(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		return p.encode(mnemonic, rd, 0, 0, imm.Int64(), instrTok)

	case def.Format == isa.FormatJ:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 2 {
			return 0, shapeError(instrTok, mnemonic, "rd, target")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		target, err := p.evalExpr(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		return p.encode(mnemonic, rd, 0, 0, target.Int64(), instrTok)

	case def.Format == isa.FormatS:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 2 {
			return 0, shapeError(instrTok, mnemonic, "rs2, imm(rs1)")
		}
		rs2, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		immToks, rs1Tok, serr := splitImmParen(segs[1], instrTok)
		if serr != nil {
			return 0, serr
		}
		rs1, err := parseRegister(rs1Tok)
		if err != nil {
			return 0, err
		}
		var immVal int64
		if len(immToks) > 0 {
			v, err := p.evalExpr(immToks, instrTok)
			if err != nil {
				return 0, err
			}
			immVal = v.Int64()
		}
		return p.encode(mnemonic, 0, rs1, rs2, immVal, instrTok)

	case def.Format == isa.FormatI && def.Opcode == isa.OpcodeLoad:
		segs := splitTopLevelCommas(operands)
		if len(segs) != 2 {
			return 0, shapeError(instrTok, mnemonic, "rd, imm(rs1)")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		immToks, rs1Tok, serr := splitImmParen(segs[1], instrTok)
		if serr != nil {
			return 0, serr
		}
		rs1, err := parseRegister(rs1Tok)
		if err != nil {
			return 0, err
		}
		var immVal int64
		if len(immToks) > 0 {
			v, err := p.evalExpr(immToks, instrTok)
			if err != nil {
				return 0, err
			}
			immVal = v.Int64()
		}
		return p.encode(mnemonic, rd, rs1, 0, immVal, instrTok)

	case def.Format == isa.FormatI:
		// OP-IMM (including shifts) and JALR: rd, rs1, imm.
		segs := splitTopLevelCommas(operands)
		if len(segs) != 3 {
			return 0, shapeError(instrTok, mnemonic, "rd, rs1, imm")
		}
		rd, err := parseRegisterOperand(segs[0], instrTok)
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegisterOperand(segs[1], instrTok)
		if err != nil {
			return 0, err
		}
		imm, err := p.evalExpr(segs[2], instrTok)
		if err != nil {
			return 0, err
		}
		return p.encode(mnemonic, rd, rs1, 0, imm.Int64(), instrTok)

	default:
		return 0, &Error{
			Kind: KindUnknownInstruction, Line: instrTok.Line, Column: instrTok.Column, Width: instrTok.Width,
			Message: fmt.Sprintf("unsupported instruction format for %s", mnemonic),
		}
	}
}
