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

// Package uart models the memory-mapped UART device: a transmit register,
// a receive register fed from a fixed input stream, and a line-status
// register, all driven one clock edge at a time.
package uart

// LSR bit positions, per spec.md §3.
const (
	LSRRxReady uint8 = 1 << 0
	LSRRxBusy  uint8 = 1 << 1
	LSRTxReady uint8 = 1 << 2
	LSRTxBusy  uint8 = 1 << 3
	LSRError   uint8 = 1 << 7
)

type txState int

const (
	txIdle txState = iota
	txPending
)

type rxState int

const (
	rxIdle rxState = iota
	rxPending
	rxReady
)

// UART is the device state machine. It is owned exclusively by the memory
// module it's attached to and is reset implicitly whenever a fresh
// emulator state is constructed (§3) — there is deliberately no persistent
// store across runs.
type UART struct {
	input  []byte
	cursor int
	output []byte

	baudDelay int

	tx           txState
	txByte       byte
	txCyclesLeft int
	txRequested  bool
	txPendByte   byte

	rx           rxState
	rxCyclesLeft int
	rxByte       byte
}

// New creates a UART that will yield input's bytes on RX, one every
// baudDelay cycles, and buffer whatever's written to TX into Output().
func New(input []byte, baudDelay int) *UART {
	if baudDelay < 1 {
		baudDelay = 1
	}
	return &UART{input: append([]byte(nil), input...), baudDelay: baudDelay}
}

// WriteTX enqueues b for transmission if the transmitter is idle. A write
// while the transmitter is busy is dropped (the line-status register
// already told the caller TX wasn't ready).
func (u *UART) WriteTX(b byte) {
	if u.tx == txIdle {
		u.txPendByte = b
		u.txRequested = true
	}
}

// ReadRX consumes the byte currently staged for read (if any), advancing
// the input cursor. It returns (0, false) when no byte is ready.
func (u *UART) ReadRX() (byte, bool) {
	if u.rx != rxReady {
		return 0, false
	}
	b := u.rxByte
	u.cursor++
	u.rx = rxIdle
	return b, true
}

// LSR returns the current line-status register bits. Reading it never has
// a side effect.
func (u *UART) LSR() uint8 {
	var lsr uint8
	switch u.rx {
	case rxReady:
		lsr |= LSRRxReady
	case rxPending:
		lsr |= LSRRxBusy
	}
	switch u.tx {
	case txIdle:
		lsr |= LSRTxReady
	case txPending:
		lsr |= LSRTxBusy
	}
	return lsr
}

// Output returns a copy of every byte transmitted so far.
func (u *UART) Output() []byte {
	return append([]byte(nil), u.output...)
}

// Cursor reports how many RX bytes have been consumed so far.
func (u *UART) Cursor() int { return u.cursor }

// Clock advances the device one cycle: TX and RX each progress their
// pending countdown independently, per spec.md §4.7.
func (u *UART) Clock() {
	switch u.tx {
	case txIdle:
		if u.txRequested {
			u.txByte = u.txPendByte
			u.txRequested = false
			u.tx = txPending
			u.txCyclesLeft = u.baudDelay
		}
	case txPending:
		u.txCyclesLeft--
		if u.txCyclesLeft <= 0 {
			u.output = append(u.output, u.txByte)
			u.tx = txIdle
		}
	}

	// The clock that leaves idle counts as the first of the baudDelay
	// cycles, so the byte is ready baudDelay clocks after RX goes idle.
	if u.rx == rxIdle && u.cursor < len(u.input) {
		u.rx = rxPending
		u.rxCyclesLeft = u.baudDelay
	}
	if u.rx == rxPending {
		u.rxCyclesLeft--
		if u.rxCyclesLeft <= 0 {
			u.rxByte = u.input[u.cursor]
			u.rx = rxReady
		}
	}
	// rxReady is held until ReadRX consumes it.
}
