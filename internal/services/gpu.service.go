package services

import (
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"devmon/internal/models"

	"github.com/jaypipes/ghw"
)

const MiB = 1024 * 1024

// Graphics enumerates graphics controllers. An empty result means the host
// reports no controller; enumeration failures (unsupported platform,
// unreadable sysfs) are treated the same way rather than failing the tick,
// since GPU data is optional in the snapshot.
func (s *SystemSource) Graphics(ctx context.Context) ([]models.GPUStatus, error) {
	info, err := ghw.GPU()
	if err != nil {
		slog.Debug("[METRICS] graphics enumeration unavailable", "err", err)
		return nil, nil
	}

	var statuses []models.GPUStatus
	for _, card := range info.GraphicsCards {
		status := models.GPUStatus{}
		if card.DeviceInfo != nil {
			if card.DeviceInfo.Product != nil {
				status.Model = card.DeviceInfo.Product.Name
			}
			if card.DeviceInfo.Vendor != nil {
				status.Vendor = card.DeviceInfo.Vendor.Name
			}
		}
		if status.Model == "" {
			status.Model = "unknown controller " + card.Address
		}
		statuses = append(statuses, status)
	}

	// ghw does not report VRAM; nvidia-smi does where an NVIDIA driver is
	// installed. Applied to the first controller only, matching the
	// single-GPU snapshot field.
	if len(statuses) > 0 {
		if vram, ok := nvidiaVRAM(ctx); ok {
			statuses[0].VRAMBytes = vram
		}
	}

	return statuses, nil
}

// nvidiaVRAM asks nvidia-smi for total memory of the first GPU, in bytes.
func nvidiaVRAM(ctx context.Context) (uint64, bool) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, false
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	mib, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, false
	}
	return mib * MiB, true
}
