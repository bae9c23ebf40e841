package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"devmon/internal/models"

	_ "modernc.org/sqlite"
)

const historyDDL = `
create table if not exists snapshots (
	id integer primary key autoincrement,
	ts timestamp not null,
	cpu_percent real not null,
	mem_percent real not null,
	disk_percent real not null,
	process_count integer not null
);
create index if not exists idx_snapshots_ts on snapshots (ts);
`

// HistoryService persists a reduced point per published snapshot and serves
// windowed time-series queries. Points older than the retention are pruned
// as new ones arrive.
type HistoryService struct {
	db        *sql.DB
	retention time.Duration
}

var historyService *HistoryService

// InitHistoryService opens (or creates) the SQLite history database.
func InitHistoryService(path string, retention time.Duration) (*HistoryService, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historyDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	historyService = &HistoryService{
		db:        db,
		retention: retention,
	}
	slog.Info("[HISTORY] database ready", "path", path, "retention", retention)
	return historyService, nil
}

// GetHistoryService returns the initialized history service.
func GetHistoryService() *HistoryService {
	return historyService
}

// Record stores one point for a published snapshot and prunes expired rows.
func (h *HistoryService) Record(ctx context.Context, snapshot *models.Snapshot) error {
	diskPercent := 0.0
	if snapshot.Disk != nil {
		diskPercent = snapshot.Disk.UsedPercent
	}

	_, err := h.db.ExecContext(ctx,
		`insert into snapshots (ts, cpu_percent, mem_percent, disk_percent, process_count)
		 values (?, ?, ?, ?, ?)`,
		snapshot.Timestamp, snapshot.CPULoad, snapshot.Memory.UsedPercent, diskPercent, len(snapshot.Processes))
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	cutoff := time.Now().Add(-h.retention)
	if _, err := h.db.ExecContext(ctx, `delete from snapshots where ts < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	return nil
}

// Window returns all points within the trailing duration, oldest first.
func (h *HistoryService) Window(ctx context.Context, duration time.Duration) ([]models.HistoryPoint, error) {
	cutoff := time.Now().Add(-duration)

	rows, err := h.db.QueryContext(ctx,
		`select ts, cpu_percent, mem_percent, disk_percent, process_count
		 from snapshots where ts >= ? order by ts asc`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	points := []models.HistoryPoint{}
	for rows.Next() {
		var p models.HistoryPoint
		if err := rows.Scan(&p.Timestamp, &p.CPUPercent, &p.MemPercent, &p.DiskPercent, &p.ProcessCount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// Close releases the underlying database.
func (h *HistoryService) Close() error {
	return h.db.Close()
}
