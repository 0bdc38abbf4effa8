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

// Package lexer turns RISC-V assembly source text into a token stream with
// line/column/width spans, recovering from lexical errors one line at a
// time so the assembler can report every error in a source file instead of
// stopping at the first one.
package lexer

import "math/big"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	KindNewline Kind = iota
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindPercent
	KindAmp
	KindPipe
	KindCaret
	KindTilde
	KindShl
	KindShr
	KindLParen
	KindRParen
	KindDot
	KindComma
	KindColon
	KindInt
	KindChar
	KindString
	KindSymbol
	KindEOF
)

// Token is one lexical unit with its source span. IntValue is populated
// only for KindInt, CharValue only for KindChar (as a Unicode code point),
// StrValue for KindString and KindSymbol (the symbol's text or the
// string's decoded contents).
type Token struct {
	Kind      Kind
	Line      int
	Column    int
	Width     int
	IntValue  *big.Int
	CharValue rune
	StrValue  string
}
