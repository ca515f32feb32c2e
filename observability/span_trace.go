//go:build !notrace

package observability

import "log/slog"

// Span brackets a frame or projection computation with begin/end log lines
// keyed by frame id, emitted at Debug level. Build with -tags notrace to
// compile these calls down to no-ops.
type Span struct {
	name    string
	frameID uint64
}

// StartSpan logs the span's start and returns a Span; call End on it.
func StartSpan(name string, frameID uint64) Span {
	slog.Debug("span begin", "span", name, "frame_id", frameID)
	return Span{name: name, frameID: frameID}
}

// End logs the span's completion.
func (s Span) End() {
	slog.Debug("span end", "span", s.name, "frame_id", s.frameID)
}
