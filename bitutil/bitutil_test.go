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

package bitutil

import "testing"

func TestBits(t *testing.T) {
	v := uint32(0xABCD1234)
	if got := Bits(v, 31, 28); got != 0xA {
		t.Errorf("Bits(31,28) = %#x, want 0xA", got)
	}
	if got := Bits(v, 7, 0); got != 0x34 {
		t.Errorf("Bits(7,0) = %#x, want 0x34", got)
	}
	if got := Bits(v, 0, 0); got != 0 {
		t.Errorf("Bits(0,0) = %#x, want 0", got)
	}
}

func TestBitmask(t *testing.T) {
	if got := Bitmask(3, 0); got != 0xF {
		t.Errorf("Bitmask(3,0) = %#x, want 0xF", got)
	}
	if got := Bitmask(31, 0); got != 0xFFFFFFFF {
		t.Errorf("Bitmask(31,0) = %#x, want 0xFFFFFFFF", got)
	}
	if got := Bitmask(11, 7); got != 0xF80 {
		t.Errorf("Bitmask(11,7) = %#x, want 0xF80", got)
	}
}

func TestSignExtend(t *testing.T) {
	cases := []struct {
		value uint32
		width int
		want  uint32
	}{
		{0x7FF, 12, 0x7FF},
		{0xFFF, 12, 0xFFFFFFFF},
		{0x800, 12, 0xFFFFF800},
		{0, 12, 0},
		{1, 1, 0xFFFFFFFF},
	}
	for _, c := range cases {
		if got := SignExtend(c.value, c.width); got != c.want {
			t.Errorf("SignExtend(%#x, %d) = %#x, want %#x", c.value, c.width, got, c.want)
		}
	}
}
