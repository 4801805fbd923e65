package blaze

import (
	"context"
	"log/slog"
	"time"
)

// FrameStats holds draw-call metrics for one Present.
type FrameStats struct {
	Buckets   int // buckets that exist, empty or not
	DrawCalls int // backend draw calls issued
	Quads     int // quads submitted across all draw calls
	Duration  time.Duration
}

func (s FrameStats) log() {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("blaze: present",
		"buckets", s.Buckets,
		"draw_calls", s.DrawCalls,
		"quads", s.Quads,
		"duration", s.Duration)
}
