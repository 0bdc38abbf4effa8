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

package lexer

import "testing"

func TestLexSymbolsAndNumbers(t *testing.T) {
	toks, errs := Lex("addi x1, x0, 0x10\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	wantKinds := []Kind{KindSymbol, KindSymbol, KindComma, KindSymbol, KindComma, KindInt, KindNewline, KindEOF}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[5].IntValue.Int64() != 16 {
		t.Errorf("int literal = %v, want 16", toks[5].IntValue)
	}
}

func TestLexCommentsAndLabel(t *testing.T) {
	toks, errs := Lex("loop: ; a comment\n  nop # another\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != KindSymbol || toks[0].StrValue != "loop" {
		t.Fatalf("first token = %+v", toks[0])
	}
	if toks[1].Kind != KindColon {
		t.Fatalf("second token = %+v", toks[1])
	}
}

func TestLexErrorRecoveryContinuesNextLine(t *testing.T) {
	toks, errs := Lex("@ bad\nnop\n")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	var sawNop bool
	for _, tok := range toks {
		if tok.Kind == KindSymbol && tok.StrValue == "nop" {
			sawNop = true
		}
	}
	if !sawNop {
		t.Fatal("lexer did not recover and continue after the bad line")
	}
}

func TestLexCharAndString(t *testing.T) {
	toks, errs := Lex("'\\n' \"hi\\tthere\"\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != KindChar || toks[0].CharValue != '\n' {
		t.Fatalf("char token = %+v", toks[0])
	}
	if toks[1].Kind != KindString || toks[1].StrValue != "hi\tthere" {
		t.Fatalf("string token = %+v", toks[1])
	}
}

func TestLexUnderscoreSeparatedLiteral(t *testing.T) {
	toks, errs := Lex("1_000_000\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].IntValue.Int64() != 1000000 {
		t.Errorf("got %v, want 1000000", toks[0].IntValue)
	}
}
