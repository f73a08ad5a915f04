package model

// ProcessRecord is one row of the backend's process snapshot. Records are
// replaced wholesale on every refresh and never patched in place.
type ProcessRecord struct {
	PID           int     `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	User          string  `json:"user"`
	Threads       int     `json:"threads"`
	StartTime     string  `json:"start_time"`
}
