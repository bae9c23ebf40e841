package services

import (
	"context"
	"fmt"
	"sort"

	"devmon/internal/models"

	"github.com/shirou/gopsutil/v3/process"
)

// topProcessCount is how many ranked processes a snapshot carries.
const topProcessCount = 10

// Processes returns all running processes with pid, name, cpu% and mem%,
// in provider-reported order. Processes that vanish or deny access while
// being read are skipped.
func (s *SystemSource) Processes(ctx context.Context) ([]models.ProcessStatus, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	statuses := make([]models.ProcessStatus, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		cpuPercent, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			cpuPercent = 0
		}

		memPercent, err := p.MemoryPercentWithContext(ctx)
		if err != nil {
			memPercent = 0
		}

		statuses = append(statuses, models.ProcessStatus{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: cpuPercent,
			MemPercent: memPercent,
		})
	}

	return statuses, nil
}

// RankProcesses orders processes by descending memory usage, keeping the
// provider-reported order for ties, and truncates to limit.
func RankProcesses(processes []models.ProcessStatus, limit int) []models.ProcessStatus {
	ranked := make([]models.ProcessStatus, len(processes))
	copy(ranked, processes)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MemPercent > ranked[j].MemPercent
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
