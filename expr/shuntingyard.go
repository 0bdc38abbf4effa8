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

// Package expr implements the assembler's expression language: a
// shunting-yard parser that turns an infix token stream into reverse-Polish
// order, and an evaluator that walks the RPN form against arbitrary
// precision integers, resolving symbol references through a caller-supplied
// resolver.
package expr

import (
	"fmt"
	"math/big"

	"github.com/EmuGatorUF/EmuGator-sub000/lexer"
)

// ItemKind identifies one element of an RPN expression.
type ItemKind int

const (
	ItemNumber ItemKind = iota
	ItemSymbol
	ItemOperator
)

// Item is one element of the RPN output: either an operand (number or
// symbol reference) or an operator (identified by its source token kind
// and whether it is being applied as a unary operator).
type Item struct {
	Kind   ItemKind
	Number *big.Int
	Symbol string
	Op     lexer.Kind
	Unary  bool
	Line   int
	Column int
}

// Error is a parse error tied to a source span.
type Error struct {
	Line    int
	Column  int
	Width   int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type opInfo struct {
	precedence int
	rightAssoc bool
}

// binaryOps maps a binary operator's token kind to its (precedence,
// associativity). Higher precedence binds tighter. This table is consulted
// directly by the shunting-yard loop instead of being spread across
// operator-specific branches.
var binaryOps = map[lexer.Kind]opInfo{
	lexer.KindStar:    {5, false},
	lexer.KindSlash:   {5, false},
	lexer.KindPercent: {5, false},
	lexer.KindPlus:    {4, false},
	lexer.KindMinus:   {4, false},
	lexer.KindShl:     {3, false},
	lexer.KindShr:     {3, false},
	lexer.KindAmp:     {2, false},
	lexer.KindCaret:   {1, false},
	lexer.KindPipe:    {0, false},
}

// unaryOps is the set of token kinds that may prefix an operand as a unary
// operator (+, -, ~); all are right-associative and bind tighter than any
// binary operator.
var unaryOps = map[lexer.Kind]bool{
	lexer.KindPlus:  true,
	lexer.KindMinus: true,
	lexer.KindTilde: true,
}

const unaryPrecedence = 6

type stackOp struct {
	kind  lexer.Kind
	unary bool
}

// ToRPN converts an infix token stream (already isolated to a single
// expression — no surrounding KindNewline/KindEOF) into reverse-Polish
// order using shunting-yard. It returns every parse error encountered
// rather than stopping at the first.
func ToRPN(tokens []lexer.Token) ([]Item, []Error) {
	var output []Item
	var opStack []stackOp
	var errs []Error

	// expectOperand tracks whether the next significant token should be an
	// operand or unary-prefix (true) vs a binary operator or close-paren
	// (false); it starts true and flips after every operand/")" .
	expectOperand := true

	popWhile := func(cond func(top stackOp) bool) {
		for len(opStack) > 0 && cond(opStack[len(opStack)-1]) {
			top := opStack[len(opStack)-1]
			opStack = opStack[:len(opStack)-1]
			output = append(output, Item{Kind: ItemOperator, Op: top.kind, Unary: top.unary})
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case lexer.KindInt:
			output = append(output, Item{Kind: ItemNumber, Number: new(big.Int).Set(tok.IntValue), Line: tok.Line, Column: tok.Column})
			expectOperand = false
		case lexer.KindChar:
			output = append(output, Item{Kind: ItemNumber, Number: big.NewInt(int64(tok.CharValue)), Line: tok.Line, Column: tok.Column})
			expectOperand = false
		case lexer.KindSymbol:
			output = append(output, Item{Kind: ItemSymbol, Symbol: tok.StrValue, Line: tok.Line, Column: tok.Column})
			expectOperand = false
		case lexer.KindLParen:
			opStack = append(opStack, stackOp{kind: lexer.KindLParen})
			expectOperand = true
		case lexer.KindRParen:
			found := false
			popWhile(func(top stackOp) bool { return top.kind != lexer.KindLParen })
			if len(opStack) > 0 && opStack[len(opStack)-1].kind == lexer.KindLParen {
				opStack = opStack[:len(opStack)-1]
				found = true
			}
			if !found {
				errs = append(errs, Error{tok.Line, tok.Column, tok.Width, "mismatched parenthesis"})
			}
			expectOperand = false
		default:
			if expectOperand && unaryOps[tok.Kind] {
				// Unary operators are right-associative prefix operators
				// that bind tighter than any binary operator. Nothing is
				// popped ahead of one: its operand has not been read yet.
				opStack = append(opStack, stackOp{kind: tok.Kind, unary: true})
				expectOperand = true
				continue
			}
			info, ok := binaryOps[tok.Kind]
			if !ok || expectOperand {
				errs = append(errs, Error{tok.Line, tok.Column, tok.Width, "unexpected token in expression"})
				continue
			}
			popWhile(func(top stackOp) bool {
				if top.kind == lexer.KindLParen {
					return false
				}
				if top.unary {
					return true
				}
				topInfo := binaryOps[top.kind]
				if info.rightAssoc {
					return topInfo.precedence > info.precedence
				}
				return topInfo.precedence >= info.precedence
			})
			opStack = append(opStack, stackOp{kind: tok.Kind})
			expectOperand = true
		}
	}

	popWhile(func(top stackOp) bool {
		if top.kind == lexer.KindLParen {
			errs = append(errs, Error{Message: "mismatched parenthesis"})
			return false
		}
		return true
	})

	return output, errs
}
