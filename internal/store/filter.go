package store

import (
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// Matches reports whether any searchable field of r contains term. term must
// already be lowercased.
func Matches(r model.ProcessRecord, term string) bool {
	if term == "" {
		return true
	}
	for _, v := range searchable(r) {
		if strings.Contains(v, term) {
			return true
		}
	}
	return false
}

func searchable(r model.ProcessRecord) [7]string {
	return [7]string{
		strings.ToLower(r.Name),
		strconv.Itoa(r.PID),
		strings.ToLower(r.User),
		formatFloat(r.CPUPercent),
		formatFloat(r.MemoryPercent),
		strconv.Itoa(r.Threads),
		strings.ToLower(r.StartTime),
	}
}

// formatFloat uses the shortest representation, so 50.0 prints as "50".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
