package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"devmon/internal/models"
)

// newTestHistory opens a file-backed database; the driver gives every pooled
// connection a separate ":memory:" database, so tests use real files.
func newTestHistory(t *testing.T, retention time.Duration) *HistoryService {
	t.Helper()
	history, err := InitHistoryService(filepath.Join(t.TempDir(), "history.db"), retention)
	if err != nil {
		t.Fatalf("InitHistoryService() error = %v", err)
	}
	t.Cleanup(func() { history.Close() })
	return history
}

func historyPointSnapshot(ts time.Time, cpu float64) *models.Snapshot {
	return &models.Snapshot{
		Timestamp: ts,
		CPULoad:   cpu,
		Memory:    models.MemoryStatus{TotalBytes: 1000, UsedBytes: 400, UsedPercent: 40},
		Disk:      &models.DiskStatus{Mount: "/", UsedPercent: 55},
		Processes: make([]models.ProcessStatus, 7),
	}
}

func TestHistoryRecordAndWindow(t *testing.T) {
	history := newTestHistory(t, time.Hour)

	ctx := context.Background()
	now := time.Now().UTC()

	for i, cpu := range []float64{10, 20, 30} {
		snap := historyPointSnapshot(now.Add(time.Duration(i-2)*time.Minute), cpu)
		if err := history.Record(ctx, snap); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	points, err := history.Window(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}

	// Oldest first.
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Before(points[i-1].Timestamp) {
			t.Errorf("points out of order at %d", i)
		}
	}
	if points[0].CPUPercent != 10 {
		t.Errorf("first point cpu = %v, want 10", points[0].CPUPercent)
	}
	if points[0].MemPercent != 40 {
		t.Errorf("mem percent = %v, want 40", points[0].MemPercent)
	}
	if points[0].DiskPercent != 55 {
		t.Errorf("disk percent = %v, want 55", points[0].DiskPercent)
	}
	if points[0].ProcessCount != 7 {
		t.Errorf("process count = %d, want 7", points[0].ProcessCount)
	}
}

func TestHistoryWindowExcludesOlderPoints(t *testing.T) {
	history := newTestHistory(t, time.Hour)

	ctx := context.Background()
	now := time.Now().UTC()

	if err := history.Record(ctx, historyPointSnapshot(now.Add(-30*time.Minute), 10)); err != nil {
		t.Fatal(err)
	}
	if err := history.Record(ctx, historyPointSnapshot(now, 20)); err != nil {
		t.Fatal(err)
	}

	points, err := history.Window(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	if points[0].CPUPercent != 20 {
		t.Errorf("cpu = %v, want 20", points[0].CPUPercent)
	}
}

func TestHistoryRetentionPrunesOnRecord(t *testing.T) {
	history := newTestHistory(t, 10*time.Minute)

	ctx := context.Background()
	now := time.Now().UTC()

	if err := history.Record(ctx, historyPointSnapshot(now.Add(-time.Hour), 10)); err != nil {
		t.Fatal(err)
	}
	// Recording a fresh point prunes the expired one.
	if err := history.Record(ctx, historyPointSnapshot(now, 20)); err != nil {
		t.Fatal(err)
	}

	points, err := history.Window(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points after pruning = %d, want 1", len(points))
	}
	if points[0].CPUPercent != 20 {
		t.Errorf("surviving point cpu = %v, want 20", points[0].CPUPercent)
	}
}

func TestHistorySnapshotWithoutDisk(t *testing.T) {
	history := newTestHistory(t, time.Hour)

	snap := historyPointSnapshot(time.Now().UTC(), 10)
	snap.Disk = nil
	if err := history.Record(context.Background(), snap); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	points, err := history.Window(context.Background(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if points[0].DiskPercent != 0 {
		t.Errorf("disk percent = %v, want 0 without a mounted volume", points[0].DiskPercent)
	}
}
