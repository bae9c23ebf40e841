package services

import (
	"context"
	"fmt"
	"log/slog"

	"devmon/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemSource reads live metrics from the host. It implements MetricsSource
// on top of gopsutil, plus ghw and nvidia-smi for graphics (gpu.service.go)
// and gopsutil's process package for the process table
// (processes.service.go).
type SystemSource struct{}

func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

// CPULoad returns the current total CPU load percentage.
func (s *SystemSource) CPULoad(ctx context.Context) (float64, error) {
	percentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU load: %w", err)
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("no CPU load reported")
	}
	return percentages[0], nil
}

// Memory returns physical memory totals. The used percentage is derived
// later, at snapshot assembly.
func (s *SystemSource) Memory(ctx context.Context) (models.MemoryStatus, error) {
	virtualMemory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.MemoryStatus{}, fmt.Errorf("failed to get memory usage: %w", err)
	}

	return models.MemoryStatus{
		TotalBytes: virtualMemory.Total,
		UsedBytes:  virtualMemory.Used,
	}, nil
}

// Filesystems returns usage for all mounted volumes in partition order.
// Volumes whose usage cannot be read (stale mounts, permission denials on
// pseudo-filesystems) are skipped rather than failing the whole request.
func (s *SystemSource) Filesystems(ctx context.Context) ([]models.DiskStatus, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list filesystems: %w", err)
	}

	var statuses []models.DiskStatus

	for _, partition := range partitions {
		usage, err := disk.UsageWithContext(ctx, partition.Mountpoint)
		if err != nil {
			slog.Debug("[METRICS] skipping unreadable mountpoint", "mountpoint", partition.Mountpoint, "err", err)
			continue
		}

		statuses = append(statuses, models.DiskStatus{
			Mount:       partition.Mountpoint,
			Filesystem:  partition.Fstype,
			TotalBytes:  usage.Total,
			UsedBytes:   usage.Used,
			UsedPercent: usage.UsedPercent,
		})
	}

	return statuses, nil
}

// OSLabel returns a human-readable OS identity, e.g. "ubuntu 24.04".
func (s *SystemSource) OSLabel(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get OS info: %w", err)
	}
	if info.PlatformVersion == "" {
		return info.Platform, nil
	}
	return info.Platform + " " + info.PlatformVersion, nil
}

// CPUIdentity returns the manufacturer and model of the first reported CPU.
func (s *SystemSource) CPUIdentity(ctx context.Context) (models.CPUIdentity, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return models.CPUIdentity{}, fmt.Errorf("failed to get CPU info: %w", err)
	}
	if len(infos) == 0 {
		return models.CPUIdentity{}, fmt.Errorf("no CPU info reported")
	}

	return models.CPUIdentity{
		Manufacturer: infos[0].VendorID,
		Brand:        infos[0].ModelName,
	}, nil
}
