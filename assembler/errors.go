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

package assembler

import "fmt"

// Kind buckets an Error by the taxonomy every assembler failure falls
// into, so a caller (an editor integration, a test) can branch on category
// without string-matching Message.
type Kind string

const (
	KindLexical            Kind = "Lexical"
	KindParse              Kind = "Parse"
	KindUnknownInstruction Kind = "UnknownInstruction"
	KindInvalidRegister    Kind = "InvalidRegister"
	KindOutOfRangeImm      Kind = "OutOfRangeImmediate"
	KindUndefinedSymbol    Kind = "UndefinedSymbol"
	KindRecursiveSymbol    Kind = "RecursiveSymbol"
	KindMisalignedLabel    Kind = "MisalignedLabel"
	KindUnknownDirective   Kind = "UnknownDirective"
	KindStringExpected     Kind = "StringExpected"
	KindOverflow           Kind = "Overflow"
)

// Error is one assembler failure, anchored to a source span suitable for an
// inline editor marker per spec.md §7: every error carries (line, column,
// width, message).
type Error struct {
	Kind    Kind
	Line    int
	Column  int
	Width   int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
