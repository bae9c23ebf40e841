package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

func newAdvisorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/settings", GetSettings)
	r.POST("/recommendations", PostRecommendations)
	return r
}

func TestRecommendationsConflictWithoutSnapshot(t *testing.T) {
	services.GetSnapshotCache().Clear()
	r := newAdvisorRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recommendations", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("POST /recommendations = %d, want 409", w.Code)
	}
}

func TestRecommendationsBadGatewayOnProviderFailure(t *testing.T) {
	services.GetSnapshotCache().Set(cachedSnapshot())
	t.Cleanup(services.GetSnapshotCache().Clear)

	// No API key configured, so the provider call fails before any request.
	services.InitRecommendationService("", "gemini-1.5-flash-002", slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := newAdvisorRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recommendations", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("POST /recommendations = %d, want 502", w.Code)
	}
}

func TestGetSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
	// comments are tolerated
	"editor.fontSize": 14
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	services.InitSettingsService(path)

	r := newAdvisorRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /settings = %d, want 200", w.Code)
	}

	var body struct {
		Path   string         `json:"path"`
		Exists bool           `json:"exists"`
		Values map[string]any `json:"values"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Exists {
		t.Error("exists = false")
	}
	if body.Values["editor.fontSize"] != float64(14) {
		t.Errorf("fontSize = %v", body.Values["editor.fontSize"])
	}
}
