package sampler

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/model"
)

// topN is how many processes the system analysis lists per resource.
const topN = 5

func (l *Local) AnalyzeProcess(ctx context.Context, pid int) (*model.ProcessAnalysis, error) {
	recs, err := Processes(ctx)
	if err != nil {
		return nil, &backend.APIError{Op: "analyze process", Err: err}
	}
	idx := slices.IndexFunc(recs, func(r model.ProcessRecord) bool { return r.PID == pid })
	if idx < 0 {
		return nil, &backend.APIError{Op: "analyze process", Message: fmt.Sprintf("Process %d not found", pid)}
	}
	return AnalyzeRecord(recs[idx], l.CPULimit, l.MemoryLimit), nil
}

func (l *Local) AnalyzeSystem(ctx context.Context) (*model.SystemAnalysis, error) {
	recs, err := Processes(ctx)
	if err != nil {
		return nil, &backend.APIError{Op: "analyze system", Err: err}
	}
	return Summarize(recs, l.CPULimit, l.MemoryLimit), nil
}

// AnalyzeRecord checks one process against the cpu and memory limits.
func AnalyzeRecord(r model.ProcessRecord, cpuLimit, memLimit float64) *model.ProcessAnalysis {
	var anomalies, recs []string
	if r.CPUPercent > cpuLimit {
		anomalies = append(anomalies, fmt.Sprintf("CPU usage %.1f%% is above the %.0f%% threshold.", r.CPUPercent, cpuLimit))
		recs = append(recs, "Lower the process priority or check it for runaway loops.")
	}
	if r.MemoryPercent > memLimit {
		anomalies = append(anomalies, fmt.Sprintf("Memory usage %.1f%% is above the %.0f%% threshold.", r.MemoryPercent, memLimit))
		recs = append(recs, "Check the process for leaks or restart it during a quiet period.")
	}
	if len(anomalies) == 0 {
		anomalies = append(anomalies, "None detected.")
		recs = append(recs, "No action needed.")
	}
	return &model.ProcessAnalysis{
		Analysis: fmt.Sprintf("%s (pid %d, user %s) uses %.1f%% CPU and %.1f%% memory across %d threads; started %s.",
			r.Name, r.PID, r.User, r.CPUPercent, r.MemoryPercent, r.Threads, r.StartTime),
		Anomalies:       strings.Join(anomalies, "\n"),
		Recommendations: strings.Join(recs, "\n"),
	}
}

// Summarize builds a system analysis from a process snapshot.
func Summarize(recs []model.ProcessRecord, cpuLimit, memLimit float64) *model.SystemAnalysis {
	byCPU := slices.Clone(recs)
	slices.SortStableFunc(byCPU, func(a, b model.ProcessRecord) int { return cmp.Compare(b.CPUPercent, a.CPUPercent) })
	byMem := slices.Clone(recs)
	slices.SortStableFunc(byMem, func(a, b model.ProcessRecord) int { return cmp.Compare(b.MemoryPercent, a.MemoryPercent) })

	var data model.SystemData
	var totalCPU, totalMem float64
	var hot []string
	for _, r := range recs {
		totalCPU += r.CPUPercent
		totalMem += r.MemoryPercent
		if r.CPUPercent > cpuLimit || r.MemoryPercent > memLimit {
			hot = append(hot, fmt.Sprintf("%s (%d)", r.Name, r.PID))
		}
	}
	for _, r := range byCPU[:min(topN, len(byCPU))] {
		data.TopCPU = append(data.TopCPU, model.ProcessUsage{Name: r.Name, CPUPercent: r.CPUPercent})
	}
	for _, r := range byMem[:min(topN, len(byMem))] {
		data.TopMemory = append(data.TopMemory, model.ProcessUsage{Name: r.Name, MemoryPercent: r.MemoryPercent})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d processes, %.1f%% CPU and %.1f%% memory in total.", len(recs), totalCPU, totalMem)
	if len(hot) > 0 {
		fmt.Fprintf(&b, "\nOver threshold: %s.", strings.Join(hot, ", "))
	} else {
		b.WriteString("\nNo process is over the alert thresholds.")
	}
	return &model.SystemAnalysis{Analysis: b.String(), SystemData: data}
}
