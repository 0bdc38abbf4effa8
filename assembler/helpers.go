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

import (
	"math/big"

	"github.com/EmuGatorUF/EmuGator-sub000/lexer"
)

// widthAlignment pairs a data directive's element width with its natural
// alignment, per spec.md §6's directive list.
type widthAlignment struct {
	Width     int
	Alignment int
}

var directiveWidths = map[string]widthAlignment{
	"byte":  {1, 1},
	"2byte": {2, 1},
	"4byte": {4, 1},
	"8byte": {8, 1},
	"half":  {2, 2},
	"word":  {4, 4},
	"dword": {8, 8},
}

// splitLines groups a flat token stream into per-line token slices, using
// KindNewline as the delimiter and dropping the trailing KindEOF sentinel.
// A blank line yields an empty slice, which every per-line parser treats as
// a no-op.
func splitLines(tokens []lexer.Token) [][]lexer.Token {
	var lines [][]lexer.Token
	var cur []lexer.Token
	for _, t := range tokens {
		switch t.Kind {
		case lexer.KindNewline:
			lines = append(lines, cur)
			cur = nil
		case lexer.KindEOF:
			// handled after the loop
		default:
			cur = append(cur, t)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// splitLabel peels a "name:" prefix off line, if present.
func splitLabel(line []lexer.Token) (*lexer.Token, []lexer.Token) {
	if len(line) >= 2 && line[0].Kind == lexer.KindSymbol && line[1].Kind == lexer.KindColon {
		label := line[0]
		return &label, line[2:]
	}
	return nil, line
}

// isDirectiveToken reports whether t is a directive keyword. The lexer's
// symbol grammar treats a leading '.' as part of the symbol text itself
// (isSymbolStart accepts '.'), so ".text" arrives as one KindSymbol token
// with StrValue ".text" rather than a separate Dot token followed by a
// bare Symbol.
func isDirectiveToken(t lexer.Token) bool {
	return t.Kind == lexer.KindSymbol && len(t.StrValue) > 1 && t.StrValue[0] == '.'
}

func directiveName(t lexer.Token) string {
	return toLowerASCII(t.StrValue[1:])
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// splitTopLevelCommas splits tokens on KindComma, ignoring commas nested
// inside parentheses. An empty input yields a single empty group, so
// callers can distinguish "zero operands" from "one empty operand" by
// checking len(groups) == 1 && len(groups[0]) == 0.
func splitTopLevelCommas(tokens []lexer.Token) [][]lexer.Token {
	var groups [][]lexer.Token
	var cur []lexer.Token
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case lexer.KindLParen:
			depth++
			cur = append(cur, t)
		case lexer.KindRParen:
			depth--
			cur = append(cur, t)
		case lexer.KindComma:
			if depth == 0 {
				groups = append(groups, cur)
				cur = nil
				continue
			}
			cur = append(cur, t)
		default:
			cur = append(cur, t)
		}
	}
	groups = append(groups, cur)
	return groups
}

// alignUp rounds offset up to the next multiple of alignment (alignment
// must be a power of two; every directiveWidths entry is).
func alignUp(offset, alignment uint32) uint32 {
	if alignment <= 1 {
		return offset
	}
	return (offset + alignment - 1) &^ (alignment - 1)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// encodeWidthBytesLE renders v as width little-endian bytes, per spec.md
// §4.5: non-negative values must fit unsigned in width bytes and pad with
// 0x00; negative values must fit signed (two's complement) in width bytes
// and pad with 0xFF. ok is false on overflow either way.
func encodeWidthBytesLE(v *big.Int, width int) ([]byte, bool) {
	out := make([]byte, width)
	if v.Sign() >= 0 {
		max := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
		max.Sub(max, big.NewInt(1))
		if v.Cmp(max) > 0 {
			return nil, false
		}
		le := reverseBytes(v.Bytes())
		copy(out, le)
		return out, true
	}

	min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(8*width-1)))
	if v.Cmp(min) < 0 {
		return nil, false
	}
	for i := range out {
		out[i] = 0xFF
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
	u := new(big.Int).Add(v, mod)
	le := reverseBytes(u.Bytes())
	copy(out, le)
	return out, true
}
