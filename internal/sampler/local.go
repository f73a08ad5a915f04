package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/model"
)

// niceStep is how far one raise or lower moves the nice value.
const niceStep = 5

var ErrPriorityUnsupported = errors.New("changing priority is not supported on this platform")

// Local serves the dashboard from the local host instead of a remote
// monitoring service.
type Local struct {
	CPULimit    float64
	MemoryLimit float64

	log *slog.Logger
}

var _ backend.Backend = (*Local)(nil)

func NewLocal(cpuLimit, memLimit float64, log *slog.Logger) *Local {
	if log == nil {
		log = slog.Default()
	}
	return &Local{CPULimit: cpuLimit, MemoryLimit: memLimit, log: log}
}

func (l *Local) Processes(ctx context.Context) ([]model.ProcessRecord, error) {
	recs, err := Processes(ctx)
	if err != nil {
		return nil, &backend.APIError{Op: "fetch processes", Err: err}
	}
	return recs, nil
}

func (l *Local) Kill(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", &backend.APIError{Op: "kill process", Message: fmt.Sprintf("Process %d not found", pid), Err: err}
	}
	name, _ := p.NameWithContext(ctx)
	if err = p.TerminateWithContext(ctx); err != nil {
		return "", &backend.APIError{Op: "kill process", Message: fmt.Sprintf("Failed to terminate process %d: %v", pid, err), Err: err}
	}
	l.log.Info("process terminated", "pid", pid, "name", name)
	return fmt.Sprintf("Process %d (%s) terminated", pid, name), nil
}

func (l *Local) SetPriority(ctx context.Context, pid int, action backend.PriorityAction) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("invalid priority action %q", action)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", &backend.APIError{Op: "change priority", Message: fmt.Sprintf("Process %d not found", pid), Err: err}
	}
	cur, err := p.NiceWithContext(ctx)
	if err != nil {
		return "", &backend.APIError{Op: "change priority", Err: err}
	}
	next := NextNice(int(cur), action)
	if err = setNice(pid, next); err != nil {
		return "", &backend.APIError{Op: "change priority", Message: fmt.Sprintf("Failed to change priority for process %d: %v", pid, err), Err: err}
	}
	l.log.Info("process priority changed", "pid", pid, "nice", next)
	return fmt.Sprintf("Process %d priority changed to %d", pid, next), nil
}

// NextNice applies one raise or lower step to cur, clamped to [-20, 19].
func NextNice(cur int, action backend.PriorityAction) int {
	next := cur + niceStep
	if action == backend.Raise {
		next = cur - niceStep
	}
	return max(-20, min(19, next))
}
