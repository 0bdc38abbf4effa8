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

// Package bitutil provides the bit-field primitives the instruction
// encoder, decoder and ALU build on: contiguous slice extraction, mask
// construction and sign extension. Every operation is defined over plain
// uint32 so callers never have to think about two's-complement wrap when
// composing them.
package bitutil

// Bits returns the inclusive bit slice value[high:low], right-aligned into
// the low bits of the result. high and low are both 0-based bit indices
// with high >= low; both must be in [0, 31].
func Bits(value uint32, high, low int) uint32 {
	return (value & Bitmask(high, low)) >> uint(low)
}

// Bitmask returns a uint32 with bits [high:low] set and every other bit
// clear.
func Bitmask(high, low int) uint32 {
	if high < low {
		return 0
	}
	width := high - low + 1
	var mask uint32
	if width >= 32 {
		mask = 0xFFFFFFFF
	} else {
		mask = (uint32(1) << uint(width)) - 1
	}
	return mask << uint(low)
}

// SignExtend replicates bit (width-1) of value into bits [31:width],
// treating value's low `width` bits as a two's-complement integer.
func SignExtend(value uint32, width int) uint32 {
	if width <= 0 || width >= 32 {
		return value
	}
	signBit := uint32(1) << uint(width-1)
	value &= Bitmask(width-1, 0)
	if value&signBit != 0 {
		value |= ^Bitmask(width-1, 0)
	}
	return value
}
