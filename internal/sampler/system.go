package sampler

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/model"
)

var _ backend.SystemInfoer = (*Local)(nil)

// SystemInfo describes the local host. Only the host lookup is fatal; any
// other figure that cannot be read is left zero.
func (l *Local) SystemInfo(ctx context.Context) (*model.SystemInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, &backend.APIError{Op: "system info", Err: err}
	}
	info := &model.SystemInfo{
		OS:      hi.OS,
		Node:    hi.Hostname,
		Release: hi.KernelVersion,
		Version: hi.PlatformVersion,
		Machine: hi.KernelArch,
	}
	if hi.Platform != "" {
		info.Version = hi.Platform + " " + hi.PlatformVersion
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.Processor = cpus[0].ModelName
	} else if err != nil {
		l.log.Debug("read cpu info", "error", err)
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCores = n
	} else {
		l.log.Debug("count physical cores", "error", err)
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	} else {
		l.log.Debug("count logical cores", "error", err)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
	} else {
		l.log.Debug("read memory", "error", err)
	}
	if du, err := disk.UsageWithContext(ctx, rootPath()); err == nil {
		info.DiskPercent = du.UsedPercent
	} else {
		l.log.Debug("read disk usage", "error", err)
	}
	return info, nil
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return "C:"
	}
	return "/"
}
