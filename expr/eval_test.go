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

package expr

import (
	"math/big"
	"testing"

	"github.com/EmuGatorUF/EmuGator-sub000/lexer"
)

func evalString(t *testing.T, src string, resolve Resolver) *big.Int {
	t.Helper()
	toks, lexErrs := lexer.Lex(src + "\n")
	if len(lexErrs) != 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	// drop trailing newline/EOF for the expression parser
	var exprToks []lexer.Token
	for _, tok := range toks {
		if tok.Kind == lexer.KindNewline || tok.Kind == lexer.KindEOF {
			continue
		}
		exprToks = append(exprToks, tok)
	}
	rpn, errs := ToRPN(exprToks)
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if resolve == nil {
		resolve = func(string) (*big.Int, bool) { return nil, false }
	}
	v, err := Eval(rpn, resolve)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return v
}

func TestPrecedence(t *testing.T) {
	cases := map[string]int64{
		"1 + 2 * 3":    7,
		"(1 + 2) * 3":  9,
		"1 << 2 + 1":   8,
		"8 >> 1 | 1":   5,
		"-1 + 2":       1,
		"~0":           -1,
		"2 * 3 % 4":    2,
		"1 ^ 1 | 2":    2,
		"10 - 2 - 3":   5,
	}
	for src, want := range cases {
		got := evalString(t, src, nil)
		if got.Int64() != want {
			t.Errorf("%q = %v, want %d", src, got, want)
		}
	}
}

func TestSymbolResolution(t *testing.T) {
	resolve := func(name string) (*big.Int, bool) {
		if name == "label1" {
			return big.NewInt(100), true
		}
		if name == "label2" {
			return big.NewInt(40), true
		}
		return nil, false
	}
	got := evalString(t, "label1 - label2 + 0x4000", resolve)
	if got.Int64() != 100-40+0x4000 {
		t.Errorf("got %v", got)
	}
}

func TestDivideByZero(t *testing.T) {
	toks, _ := lexer.Lex("1 / 0\n")
	var exprToks []lexer.Token
	for _, tok := range toks {
		if tok.Kind == lexer.KindNewline || tok.Kind == lexer.KindEOF {
			continue
		}
		exprToks = append(exprToks, tok)
	}
	rpn, _ := ToRPN(exprToks)
	_, err := Eval(rpn, nil)
	if err == nil {
		t.Fatal("expected divide-by-zero error")
	}
}

func TestUndefinedSymbol(t *testing.T) {
	toks, _ := lexer.Lex("missing\n")
	var exprToks []lexer.Token
	for _, tok := range toks {
		if tok.Kind == lexer.KindNewline || tok.Kind == lexer.KindEOF {
			continue
		}
		exprToks = append(exprToks, tok)
	}
	rpn, _ := ToRPN(exprToks)
	_, err := Eval(rpn, func(string) (*big.Int, bool) { return nil, false })
	if err == nil {
		t.Fatal("expected undefined symbol error")
	}
}
