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

package uart

import "testing"

func TestEchoRoundTrip(t *testing.T) {
	u := New([]byte("Hi"), 4)

	// Clock until the first RX byte is ready.
	for i := 0; i < 4 && u.LSR()&LSRRxReady == 0; i++ {
		u.Clock()
	}
	if u.LSR()&LSRRxReady == 0 {
		t.Fatal("RX never became ready")
	}
	b, ok := u.ReadRX()
	if !ok || b != 'H' {
		t.Fatalf("ReadRX() = %q, %v, want 'H', true", b, ok)
	}
	if u.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", u.Cursor())
	}

	u.WriteTX(b)
	u.Clock() // idle -> pending
	for i := 0; i < 4 && u.LSR()&LSRTxBusy != 0; i++ {
		u.Clock()
	}
	if got := u.Output(); string(got) != "H" {
		t.Fatalf("Output() = %q, want %q", got, "H")
	}
}

func TestRXRequiresBaudDelay(t *testing.T) {
	u := New([]byte("X"), 3)
	u.Clock() // idle -> pending
	if u.LSR()&LSRRxReady != 0 {
		t.Fatal("RX ready too early")
	}
	u.Clock()
	u.Clock()
	if u.LSR()&LSRRxReady == 0 {
		t.Fatal("RX should be ready after baudDelay cycles")
	}
}

func TestTXWriteDroppedWhileBusy(t *testing.T) {
	u := New(nil, 2)
	u.WriteTX('A')
	u.Clock() // now tx pending
	u.WriteTX('B')
	u.Clock()
	u.Clock()
	if got := string(u.Output()); got != "A" {
		t.Fatalf("Output() = %q, want %q", got, "A")
	}
}
