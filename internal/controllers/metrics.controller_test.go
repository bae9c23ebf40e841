package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"devmon/internal/models"
	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

func newMetricsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	metrics := r.Group("/metrics")
	metrics.GET("/", GetSnapshot)
	metrics.GET("/cpu", GetCPU)
	metrics.GET("/memory", GetMemory)
	metrics.GET("/disk", GetDisk)
	metrics.GET("/gpu", GetGPU)
	metrics.GET("/host", GetHost)
	r.GET("/processes/", GetTopProcesses)
	r.GET("/history", GetHistory)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func cachedSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Timestamp: time.Now(),
		CPULoad:   37.5,
		CPU:       models.CPUIdentity{Manufacturer: "TestVendor", Brand: "TestCPU 3000"},
		Memory:    models.MemoryStatus{TotalBytes: 1000, UsedBytes: 250, UsedPercent: 25},
		Disk:      &models.DiskStatus{Mount: "/", Filesystem: "ext4", UsedPercent: 60},
		OS:        "testos 1.0",
		Processes: []models.ProcessStatus{
			{PID: 300, Name: "browser", MemPercent: 25.5},
			{PID: 200, Name: "editor", MemPercent: 12.0},
		},
	}
}

func TestMetricsUnavailableBeforeFirstTick(t *testing.T) {
	services.GetSnapshotCache().Clear()
	r := newMetricsRouter()

	for _, path := range []string{"/metrics/", "/metrics/cpu", "/metrics/memory", "/metrics/disk", "/metrics/gpu", "/metrics/host", "/processes/"} {
		if w := get(r, path); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, w.Code)
		}
	}
}

func TestMetricsServeLatestSnapshot(t *testing.T) {
	services.GetSnapshotCache().Set(cachedSnapshot())
	t.Cleanup(services.GetSnapshotCache().Clear)
	r := newMetricsRouter()

	w := get(r, "/metrics/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics/ = %d, want 200", w.Code)
	}
	var body struct {
		Snapshot    models.Snapshot `json:"snapshot"`
		LastUpdated time.Time       `json:"last_updated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Snapshot.CPULoad != 37.5 {
		t.Errorf("cpu load = %v", body.Snapshot.CPULoad)
	}
	if body.LastUpdated.IsZero() {
		t.Error("last_updated missing")
	}

	w = get(r, "/metrics/cpu")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics/cpu = %d, want 200", w.Code)
	}
	var cpu struct {
		LoadPercent float64            `json:"load_percent"`
		Identity    models.CPUIdentity `json:"identity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cpu); err != nil {
		t.Fatal(err)
	}
	if cpu.Identity.Brand != "TestCPU 3000" {
		t.Errorf("cpu brand = %q", cpu.Identity.Brand)
	}

	if w := get(r, "/metrics/disk"); w.Code != http.StatusOK {
		t.Errorf("GET /metrics/disk = %d, want 200", w.Code)
	}

	w = get(r, "/processes/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /processes/ = %d, want 200", w.Code)
	}
	var procs struct {
		Processes []models.ProcessStatus `json:"processes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &procs); err != nil {
		t.Fatal(err)
	}
	if len(procs.Processes) != 2 || procs.Processes[0].Name != "browser" {
		t.Errorf("processes = %+v", procs.Processes)
	}
}

func TestMetricsDiskAndGPUNotFoundWhenAbsent(t *testing.T) {
	snap := cachedSnapshot()
	snap.Disk = nil
	snap.GPU = nil
	services.GetSnapshotCache().Set(snap)
	t.Cleanup(services.GetSnapshotCache().Clear)
	r := newMetricsRouter()

	if w := get(r, "/metrics/disk"); w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics/disk = %d, want 404", w.Code)
	}
	if w := get(r, "/metrics/gpu"); w.Code != http.StatusNotFound {
		t.Errorf("GET /metrics/gpu = %d, want 404", w.Code)
	}
}

func TestHistoryRejectsBadDuration(t *testing.T) {
	r := newMetricsRouter()

	for _, q := range []string{"?duration=yesterday", "?duration=-5m", "?duration=0s"} {
		if w := get(r, "/history"+q); w.Code != http.StatusBadRequest {
			t.Errorf("GET /history%s = %d, want 400", q, w.Code)
		}
	}
}

func TestHistoryServesWindow(t *testing.T) {
	if _, err := services.InitHistoryService(filepath.Join(t.TempDir(), "history.db"), time.Hour); err != nil {
		t.Fatalf("InitHistoryService() error = %v", err)
	}
	t.Cleanup(func() { services.GetHistoryService().Close() })

	snap := cachedSnapshot()
	if err := services.GetHistoryService().Record(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	r := newMetricsRouter()
	w := get(r, "/history?duration=5m")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /history = %d, want 200", w.Code)
	}
	var body struct {
		Duration string                `json:"duration"`
		Points   []models.HistoryPoint `json:"points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Duration != "5m" {
		t.Errorf("duration = %q", body.Duration)
	}
	if len(body.Points) != 1 || body.Points[0].CPUPercent != 37.5 {
		t.Errorf("points = %+v", body.Points)
	}
}
