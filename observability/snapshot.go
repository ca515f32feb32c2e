package observability

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessSnapshot is the current process's CPU and memory figures, attached
// alongside latency/frame-time metrics so an overlay can show whether a
// stutter originates in this process or in the OS scheduler.
type ProcessSnapshot struct {
	CPUPercent float64
	RSSBytes   uint64
}

// Snapshotter samples the calling process's own resource usage via
// gopsutil/v4/process.
type Snapshotter struct {
	proc *process.Process
}

// NewSnapshotter binds to the current OS process. Returns an error only if
// gopsutil cannot locate the current pid (should not happen in practice).
func NewSnapshotter() (*Snapshotter, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Snapshotter{proc: p}, nil
}

// Sample returns a fresh CPU/RSS reading. Errors from the underlying
// gopsutil calls are treated as "no data this sample" (zero value) rather
// than propagated, since this is purely cosmetic telemetry.
func (s *Snapshotter) Sample(ctx context.Context) ProcessSnapshot {
	var snap ProcessSnapshot
	if cpu, err := s.proc.CPUPercentWithContext(ctx); err == nil {
		snap.CPUPercent = cpu
	}
	if mem, err := s.proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		snap.RSSBytes = mem.RSS
	}
	return snap
}
