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

// Package emulog is the diagnostic log sink shared by both pipelines:
// unknown opcodes (both cores) and hazard stalls (the five-stage core) go
// through here rather than straight to stderr, so a caller embedding the simulator (the TUI, a fuzz harness) can
// redirect or silence them.
package emulog

import "fmt"

// Logger receives one formatted line per call. Implementations must be safe
// to call from the pipeline's hot Clock loop.
type Logger interface {
	Log(msg string)
}

type noopLogger struct{}

func (noopLogger) Log(string) {}

// sink bundles the installed Logger with whether it's currently listening,
// so enabling/disabling and swapping destinations are one piece of state
// instead of two independent package-level variables.
type sink struct {
	dest    Logger
	enabled bool
}

func (s *sink) emit(msg string) {
	if s.enabled {
		s.dest.Log(msg)
	}
}

var current = &sink{dest: noopLogger{}}

// SetLogger installs impl as the destination for future Logf calls. Passing
// nil restores the no-op default; logging stays gated by the last call to
// SetEnabled either way.
func SetLogger(impl Logger) {
	if impl == nil {
		impl = noopLogger{}
	}
	current.dest = impl
}

// SetEnabled gates whether Logf does anything at all, independent of which
// Logger is installed, so a caller can flip diagnostics on/off without
// swapping the sink.
func SetEnabled(enable bool) {
	current.enabled = enable
}

// Logf formats msg with args and forwards it to the installed Logger, if
// logging is enabled. Formatting is skipped entirely when disabled, so a
// hot Clock loop pays nothing for a diagnostic nobody asked for.
func Logf(format string, args ...any) {
	if !current.enabled {
		return
	}
	current.emit(fmt.Sprintf(format, args...))
}
