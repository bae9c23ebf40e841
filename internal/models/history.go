package models

import "time"

// HistoryPoint is the persisted reduction of one snapshot, kept for
// time-series queries over the dashboard window.
type HistoryPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	CPUPercent   float64   `json:"cpu_percent"`
	MemPercent   float64   `json:"mem_percent"`
	DiskPercent  float64   `json:"disk_percent"`
	ProcessCount int       `json:"process_count"`
}
