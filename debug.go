package keystone

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
)

// frameStats holds per-frame timings of the render pipeline.
// Only populated when debug stats are enabled.
type frameStats struct {
	uploadTime  time.Duration
	meshTime    time.Duration
	drawTime    time.Duration
	overlayTime time.Duration
	vertexCount int
	indexCount  int
	meshRebuilt bool
	shaderPath  bool
}

func (s frameStats) total() time.Duration {
	return s.uploadTime + s.meshTime + s.drawTime + s.overlayTime
}

// debugMonitor logs frame stats and, every so many frames, the resident
// memory of the process.
type debugMonitor struct {
	enabled  bool
	every    int
	rendered int
	proc     *process.Process
}

func newDebugMonitor(enabled bool, every int) *debugMonitor {
	d := &debugMonitor{enabled: enabled, every: every}
	if d.every <= 0 {
		d.every = 120
	}
	if enabled {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			logFor("debug").WithError(err).Warn("process stats unavailable")
		} else {
			d.proc = p
		}
	}
	return d
}

func (d *debugMonitor) log(stats frameStats) {
	if !d.enabled {
		return
	}
	d.rendered++
	fields := logrus.Fields{
		"upload":   stats.uploadTime,
		"mesh":     stats.meshTime,
		"draw":     stats.drawTime,
		"overlay":  stats.overlayTime,
		"total":    stats.total(),
		"vertices": stats.vertexCount,
		"indices":  stats.indexCount,
		"rebuilt":  stats.meshRebuilt,
		"shader":   stats.shaderPath,
	}
	if d.proc != nil && d.rendered%d.every == 0 {
		if mem, err := d.proc.MemoryInfo(); err == nil {
			fields["rss_mb"] = float64(mem.RSS) / (1 << 20)
		}
	}
	logFor("debug").WithFields(fields).Debug("frame")
}
