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

import (
	"fmt"
	"math/big"
	"strings"
)

// Error is a lexical error tied to a source span, suitable for an inline
// editor marker per the assembler's error-reporting contract.
type Error struct {
	Line    int
	Column  int
	Width   int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	column int

	tokens []Token
	errors []Error
}

// Lex tokenizes source into a token stream and a (possibly empty) list of
// lexical errors. On an error the lexer drops the remainder of the current
// line and resumes at the next newline, so a single malformed file yields
// every lexical error rather than only the first.
func Lex(source string) ([]Token, []Error) {
	l := &lexer{src: []rune(source), line: 1, column: 1}
	l.run()
	return l.tokens, l.errors
}

func (l *lexer) run() {
	for !l.atEnd() {
		l.skipSpacesAndComments()
		if l.atEnd() {
			break
		}
		r := l.peek()
		switch {
		case r == '\n':
			l.emit(KindNewline, l.line, l.column, 1)
			l.advance()
		case r == '+':
			l.emitAndAdvance(KindPlus)
		case r == '-':
			l.emitAndAdvance(KindMinus)
		case r == '*':
			l.emitAndAdvance(KindStar)
		case r == '/':
			l.emitAndAdvance(KindSlash)
		case r == '%':
			l.emitAndAdvance(KindPercent)
		case r == '(':
			l.emitAndAdvance(KindLParen)
		case r == ')':
			l.emitAndAdvance(KindRParen)
		case r == '.':
			l.lexDotOrSymbol()
		case r == ',':
			l.emitAndAdvance(KindComma)
		case r == ':':
			l.emitAndAdvance(KindColon)
		case r == '~':
			l.emitAndAdvance(KindTilde)
		case r == '^':
			l.emitAndAdvance(KindCaret)
		case r == '&':
			l.emitAndAdvance(KindAmp)
		case r == '|':
			l.emitAndAdvance(KindPipe)
		case r == '<':
			l.lexShift('<', KindShl)
		case r == '>':
			l.lexShift('>', KindShr)
		case r == '\'':
			l.lexChar()
		case r == '"':
			l.lexString()
		case isDigit(r):
			l.lexNumber()
		case isSymbolStart(r):
			l.lexSymbol()
		default:
			l.errorHere(1, fmt.Sprintf("unexpected character %q", r))
			l.recoverToNewline()
		}
	}
	l.emit(KindEOF, l.line, l.column, 0)
}

func (l *lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) emit(kind Kind, line, column, width int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Line: line, Column: column, Width: width})
}

func (l *lexer) emitAndAdvance(kind Kind) {
	line, col := l.line, l.column
	l.advance()
	l.emit(kind, line, col, 1)
}

func (l *lexer) errorHere(width int, msg string) {
	l.errors = append(l.errors, Error{Line: l.line, Column: l.column, Width: width, Message: msg})
}

func (l *lexer) recoverToNewline() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *lexer) skipSpacesAndComments() {
	for !l.atEnd() {
		r := l.peek()
		if r == ' ' || r == '\t' || r == '\r' {
			l.advance()
			continue
		}
		if r == ';' || r == '#' {
			l.recoverToNewline()
			continue
		}
		break
	}
}

func (l *lexer) lexShift(want rune, kind Kind) {
	line, col := l.line, l.column
	l.advance()
	if l.peek() == want {
		l.advance()
		l.emit(kind, line, col, 2)
		return
	}
	l.errorHere(1, fmt.Sprintf("unexpected character %q", want))
	l.recoverToNewline()
}

func (l *lexer) lexDotOrSymbol() {
	// '.' begins either a directive/qualified symbol ("." is also a valid
	// leading character of a Symbol per the grammar) — treat a lone '.'
	// followed by a letter/underscore/dot as part of a symbol, and a lone
	// '.' otherwise as the KindDot punctuation used nowhere in directives
	// today but reserved by the grammar.
	if isSymbolStart(l.peekAt(1)) || l.peekAt(1) == '.' {
		l.lexSymbol()
		return
	}
	l.emitAndAdvance(KindDot)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isSymbolStart(r rune) bool {
	return r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSymbolContinue(r rune) bool {
	return isSymbolStart(r) || isDigit(r)
}

func (l *lexer) lexSymbol() {
	line, col := l.line, l.column
	var sb strings.Builder
	for !l.atEnd() && isSymbolContinue(l.peek()) {
		sb.WriteRune(l.advance())
	}
	text := sb.String()
	l.tokens = append(l.tokens, Token{Kind: KindSymbol, Line: line, Column: col, Width: len(text), StrValue: text})
}

func (l *lexer) lexNumber() {
	line, col := l.line, l.column
	base := 10
	var digits strings.Builder

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		base = 16
		l.collectDigits(&digits, isHexDigit)
	} else if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		l.advance()
		l.advance()
		base = 2
		l.collectDigits(&digits, func(r rune) bool { return r == '0' || r == '1' })
	} else if l.peek() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		l.advance()
		l.advance()
		base = 8
		l.collectDigits(&digits, func(r rune) bool { return r >= '0' && r <= '7' })
	} else {
		l.collectDigits(&digits, isDigit)
	}

	width := l.column - col // width in runes consumed on this line
	if digits.Len() == 0 {
		l.errorHere(width, "invalid digit for base")
		l.recoverToNewline()
		return
	}

	value := new(big.Int)
	if _, ok := value.SetString(digits.String(), base); !ok {
		l.errorHere(width, "invalid digit for base")
		l.recoverToNewline()
		return
	}
	l.tokens = append(l.tokens, Token{Kind: KindInt, Line: line, Column: col, Width: width, IntValue: value})
}

func (l *lexer) collectDigits(sb *strings.Builder, valid func(rune) bool) {
	for !l.atEnd() {
		r := l.peek()
		if r == '_' {
			l.advance()
			continue
		}
		if !valid(r) {
			break
		}
		sb.WriteRune(l.advance())
	}
}

func decodeEscape(l *lexer) (rune, bool) {
	r := l.advance()
	if r != '\\' {
		return r, true
	}
	if l.atEnd() {
		return 0, false
	}
	esc := l.advance()
	switch esc {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	default:
		return 0, false
	}
}

func (l *lexer) lexChar() {
	line, col := l.line, l.column
	l.advance() // opening '
	if l.atEnd() || l.peek() == '\n' {
		l.errorHere(1, "unterminated char literal")
		l.recoverToNewline()
		return
	}
	value, ok := decodeEscape(l)
	if !ok {
		l.errorHere(l.column-col, "invalid escape sequence")
		l.recoverToNewline()
		return
	}
	if l.atEnd() || l.peek() != '\'' {
		l.errorHere(l.column-col, "unterminated char literal")
		l.recoverToNewline()
		return
	}
	l.advance() // closing '
	l.tokens = append(l.tokens, Token{Kind: KindChar, Line: line, Column: col, Width: l.column - col, CharValue: value})
}

func (l *lexer) lexString() {
	line, col := l.line, l.column
	l.advance() // opening "
	var sb strings.Builder
	for {
		if l.atEnd() || l.peek() == '\n' {
			l.errorHere(l.column-col, "unterminated string literal")
			l.recoverToNewline()
			return
		}
		if l.peek() == '"' {
			l.advance()
			break
		}
		value, ok := decodeEscape(l)
		if !ok {
			l.errorHere(l.column-col, "invalid escape sequence")
			l.recoverToNewline()
			return
		}
		sb.WriteRune(value)
	}
	text := sb.String()
	l.tokens = append(l.tokens, Token{Kind: KindString, Line: line, Column: col, Width: l.column - col, StrValue: text})
}
