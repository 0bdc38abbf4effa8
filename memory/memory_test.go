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

package memory

import "testing"

func TestByteWordRoundTrip(t *testing.T) {
	m := New(DefaultConfig(), nil)
	be := ByteEnableForWidth(4)
	m.WriteWord(0x100, 0xDEADBEEF, be)
	if got := m.ReadWord(0x100, be); got != 0xDEADBEEF {
		t.Fatalf("ReadWord = %#x, want 0xDEADBEEF", got)
	}
}

func TestPartialByteEnableLeavesNeighborsUntouched(t *testing.T) {
	m := New(DefaultConfig(), nil)
	m.WriteWord(0x200, 0xFFFFFFFF, ByteEnableForWidth(4))
	m.WriteWord(0x200, 0x000000AB, ByteEnableForWidth(1))
	got := m.ReadWord(0x200, ByteEnableForWidth(4))
	if got != 0xFFFFFFAB {
		t.Fatalf("ReadWord = %#x, want 0xffffffab", got)
	}
}

func TestUARTWindowRoutesThroughDevice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UARTInput = []byte("Z")
	cfg.UARTBaud = 1
	m := New(cfg, nil)

	for i := 0; i < 4 && m.UART().LSR()&0x1 == 0; i++ {
		m.Clock()
	}
	if got := m.Get(cfg.UARTDataAddr); got != 'Z' {
		t.Fatalf("Get(UARTDataAddr) = %q, want 'Z'", got)
	}

	m.Set(cfg.UARTDataAddr, 'Q')
	m.Clock()
	for i := 0; i < 4 && m.UART().LSR()&0x8 != 0; i++ {
		m.Clock()
	}
	if got := string(m.UART().Output()); got != "Q" {
		t.Fatalf("UART output = %q, want %q", got, "Q")
	}
}

func TestRAMDoesNotAliasUARTAddresses(t *testing.T) {
	m := New(DefaultConfig(), map[uint32]uint8{0x10: 0x42})
	if got := m.Get(0x10); got != 0x42 {
		t.Fatalf("Get(0x10) = %#x, want 0x42", got)
	}
	snap := m.Snapshot()
	if _, ok := snap[DefaultConfig().UARTDataAddr]; ok {
		t.Fatal("Snapshot should not include the UART data register")
	}
}
