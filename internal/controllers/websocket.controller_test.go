package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devmon/internal/services"

	"github.com/gin-gonic/gin"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", HandleWebSocket)
	r.GET("/auth/token", HandleGetToken)
	r.GET("/auth/status", HandleTokenStatus)
	return r
}

func TestTokenIssuanceAndStatus(t *testing.T) {
	services.InitAuthService("controller-test-secret-key-long-enough", time.Hour)
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/token?client_name=desktop-app", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /auth/token = %d, want 200", w.Code)
	}

	var issued struct {
		Token  string `json:"token"`
		URL    string `json:"url"`
		Client string `json:"client"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &issued); err != nil {
		t.Fatal(err)
	}
	if issued.Token == "" {
		t.Fatal("empty token issued")
	}
	if issued.Client != "desktop-app" {
		t.Errorf("client = %q", issued.Client)
	}

	// The issued token passes the status check via Bearer header.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /auth/status = %d, want 200", w.Code)
	}
	var status struct {
		Valid  bool   `json:"valid"`
		Client string `json:"client"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if !status.Valid || status.Client != "desktop-app" {
		t.Errorf("status = %+v", status)
	}
}

func TestTokenIssuanceRejectsBadClientName(t *testing.T) {
	services.InitAuthService("controller-test-secret-key-long-enough", time.Hour)
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/token?client_name=bad%20name%3Bdrop", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /auth/token = %d, want 400", w.Code)
	}
}

func TestTokenStatusRejectsMissingAndInvalid(t *testing.T) {
	services.InitAuthService("controller-test-secret-key-long-enough", time.Hour)
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /auth/status without token = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status?token=not.a.token", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /auth/status with garbage token = %d, want 401", w.Code)
	}
}

func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	services.InitAuthService("controller-test-secret-key-long-enough", time.Hour)
	r := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /ws without token = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=forged.token.value", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /ws with forged token = %d, want 401", w.Code)
	}
}
