package sampler

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// StartTimeLayout formats process start times.
const StartTimeLayout = "2006-01-02 15:04:05"

// Processes lists every readable process on the host. Processes that exit
// mid-scan are skipped; fields that cannot be read stay zero.
func Processes(ctx context.Context) ([]model.ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		rec := model.ProcessRecord{PID: int(p.Pid), Name: name}
		rec.CPUPercent, _ = p.CPUPercentWithContext(ctx)
		if m, err := p.MemoryPercentWithContext(ctx); err == nil {
			rec.MemoryPercent = float64(m)
		}
		rec.User, _ = p.UsernameWithContext(ctx)
		if n, err := p.NumThreadsWithContext(ctx); err == nil {
			rec.Threads = int(n)
		}
		if ms, err := p.CreateTimeWithContext(ctx); err == nil && ms > 0 {
			rec.StartTime = time.UnixMilli(ms).Format(StartTimeLayout)
		}
		out = append(out, rec)
	}
	return out, nil
}
