package models

import "time"

// Snapshot is the immutable record produced by one successful sampling tick.
// Disk and GPU are pointers so they can be absent: Disk is nil when the host
// reports no mounted filesystems, GPU is nil when no graphics controller is
// reported.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	CPULoad   float64         `json:"cpu_load_percent"`
	CPU       CPUIdentity     `json:"cpu"`
	Memory    MemoryStatus    `json:"memory"`
	Disk      *DiskStatus     `json:"disk,omitempty"`
	GPU       *GPUStatus      `json:"gpu,omitempty"`
	OS        string          `json:"os"`
	Processes []ProcessStatus `json:"processes"`
}

// MemoryStatus represents physical memory usage
type MemoryStatus struct {
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	UsedPercent float64 `json:"used_percent"`
}
