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
	"errors"
	"fmt"
	"math/big"

	"github.com/EmuGatorUF/EmuGator-sub000/lexer"
)

// Evaluation errors, surfaced as assembler errors tied to the offending
// expression per spec.md §7.
var (
	ErrUndefinedSymbol = errors.New("undefined symbol")
	ErrDivideByZero    = errors.New("divide by zero")
	ErrModuloByZero    = errors.New("modulo by zero")
)

// Resolver looks up a symbol's current value during evaluation. The
// assembler supplies one backed by its resolved symbol table; it returns
// ok=false for anything not yet defined.
type Resolver func(name string) (*big.Int, bool)

// Eval walks rpn (as produced by ToRPN) with a stack machine, resolving
// symbol operands through resolve. It returns the first error encountered;
// expressions are evaluated eagerly so a single bad symbol or division
// stops that expression's evaluation (the assembler is responsible for
// still processing the rest of the source).
func Eval(rpn []Item, resolve Resolver) (*big.Int, error) {
	var stack []*big.Int

	pop := func() *big.Int {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, item := range rpn {
		switch item.Kind {
		case ItemNumber:
			stack = append(stack, new(big.Int).Set(item.Number))
		case ItemSymbol:
			v, ok := resolve(item.Symbol)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUndefinedSymbol, item.Symbol)
			}
			stack = append(stack, new(big.Int).Set(v))
		case ItemOperator:
			if item.Unary {
				if len(stack) < 1 {
					return nil, fmt.Errorf("malformed expression: missing operand for unary operator")
				}
				a := pop()
				result, err := applyUnary(item.Op, a)
				if err != nil {
					return nil, err
				}
				stack = append(stack, result)
				continue
			}
			if len(stack) < 2 {
				return nil, fmt.Errorf("malformed expression: missing operand for binary operator")
			}
			b := pop()
			a := pop()
			result, err := applyBinary(item.Op, a, b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("malformed expression: %d values left on stack", len(stack))
	}
	return stack[0], nil
}

func applyUnary(op lexer.Kind, a *big.Int) (*big.Int, error) {
	result := new(big.Int)
	switch op {
	case lexer.KindPlus:
		result.Set(a)
	case lexer.KindMinus:
		result.Neg(a)
	case lexer.KindTilde:
		result.Not(a)
	default:
		return nil, fmt.Errorf("unsupported unary operator")
	}
	return result, nil
}

func applyBinary(op lexer.Kind, a, b *big.Int) (*big.Int, error) {
	result := new(big.Int)
	switch op {
	case lexer.KindPlus:
		result.Add(a, b)
	case lexer.KindMinus:
		result.Sub(a, b)
	case lexer.KindStar:
		result.Mul(a, b)
	case lexer.KindSlash:
		if b.Sign() == 0 {
			return nil, ErrDivideByZero
		}
		result.Quo(a, b)
	case lexer.KindPercent:
		if b.Sign() == 0 {
			return nil, ErrModuloByZero
		}
		result.Rem(a, b)
	case lexer.KindShl:
		result.Lsh(a, uint(b.Uint64()))
	case lexer.KindShr:
		result.Rsh(a, uint(b.Uint64()))
	case lexer.KindAmp:
		result.And(a, b)
	case lexer.KindCaret:
		result.Xor(a, b)
	case lexer.KindPipe:
		result.Or(a, b)
	default:
		return nil, fmt.Errorf("unsupported binary operator")
	}
	return result, nil
}
