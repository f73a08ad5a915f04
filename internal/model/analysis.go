package model

// ProcessAnalysis is the analysis service's verdict on a single process.
type ProcessAnalysis struct {
	Analysis        string `json:"analysis"`
	Anomalies       string `json:"anomalies"`
	Recommendations string `json:"recommendations"`
}

// ProcessUsage is a name plus one usage figure, as listed in SystemData.
type ProcessUsage struct {
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent,omitempty"`
	MemoryPercent float64 `json:"memory_percent,omitempty"`
}

// SystemData lists the heaviest processes the analysis was based on.
type SystemData struct {
	TopCPU    []ProcessUsage `json:"top_cpu_processes"`
	TopMemory []ProcessUsage `json:"top_memory_processes"`
}

// SystemAnalysis is the analysis service's verdict on the whole host.
type SystemAnalysis struct {
	Analysis   string     `json:"analysis"`
	SystemData SystemData `json:"system_data"`
}

// SystemInfo describes the host for the System tab.
type SystemInfo struct {
	OS            string  `json:"os"`
	Node          string  `json:"node"`
	Release       string  `json:"release"`
	Version       string  `json:"version"`
	Machine       string  `json:"machine"`
	Processor     string  `json:"processor"`
	PhysicalCores int     `json:"physical_cores"`
	LogicalCores  int     `json:"logical_cores"`
	TotalMemory   uint64  `json:"total_memory"` // bytes
	DiskPercent   float64 `json:"disk_percent"`
}
