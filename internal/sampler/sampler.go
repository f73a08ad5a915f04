// Package sampler reads host metrics and processes with gopsutil. It backs
// the dashboard's local mode, standing in for the remote monitoring service.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// Sampler periodically emits MetricSamples read from the local host.
type Sampler struct {
	Interval time.Duration
	DiskPath string

	log       *slog.Logger
	prevTotal float64
	prevIdle  float64
	prevNet   uint64
	haveNet   bool
}

func New(interval time.Duration, log *slog.Logger) *Sampler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{Interval: interval, DiskPath: "/", log: log}
}

// Stream returns a channel that will receive samples until ctx is done.
func (s *Sampler) Stream(ctx context.Context) <-chan model.MetricSample {
	ch := make(chan model.MetricSample)
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		defer close(ch)
		// prime the cpu and network deltas
		s.Sample(time.Now())
		for {
			select {
			case t := <-ticker.C:
				select {
				case ch <- s.Sample(t):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Sample reads one MetricSample. Metrics that cannot be read are left nil.
func (s *Sampler) Sample(now time.Time) model.MetricSample {
	out := model.MetricSample{Time: now}

	if pct, ok := s.cpuPercent(); ok {
		out.CPU = model.Float(pct)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		out.Memory = model.Float(vm.UsedPercent)
	} else {
		s.log.Debug("read memory", "error", err)
	}
	if du, err := disk.Usage(s.DiskPath); err == nil {
		out.Disk = model.Float(du.UsedPercent)
	} else {
		s.log.Debug("read disk usage", "path", s.DiskPath, "error", err)
	}
	if b, ok := s.netBytes(); ok {
		out.Network = model.Float(b)
	}
	return out
}

// cpuPercent derives total CPU usage from the times delta since the last call.
func (s *Sampler) cpuPercent() (float64, bool) {
	times, err := cpu.Times(false)
	if err != nil || len(times) == 0 {
		return 0, false
	}
	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	prevTotal, prevIdle := s.prevTotal, s.prevIdle
	s.prevTotal, s.prevIdle = curTotal, curIdle
	if prevTotal == 0 {
		return 0, false
	}
	dt := curTotal - prevTotal
	if dt <= 0 {
		return 0, false
	}
	return 100 * (1 - (curIdle-prevIdle)/dt), true
}

// netBytes returns bytes sent plus received since the last call.
func (s *Sampler) netBytes() (float64, bool) {
	counters, err := net.IOCounters(false)
	if err != nil || len(counters) == 0 {
		return 0, false
	}
	total := counters[0].BytesSent + counters[0].BytesRecv
	prev, had := s.prevNet, s.haveNet
	s.prevNet, s.haveNet = total, true
	if !had || total < prev {
		return 0, false
	}
	return float64(total - prev), true
}
