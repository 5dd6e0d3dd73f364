package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"incognichat/internal/app/chat"
	"incognichat/internal/configs"
	"incognichat/internal/pkg/errs"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   "test-secret",
		},
		Room: chat.NewRoom(),
	}
	return Router(deps)
}

func doRequest(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	var body struct {
		Code int `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health body: %v", err)
	}
	if body.Code != 0 || body.Data.Status != "ok" {
		t.Errorf("health body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	router := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodGet, "/api/admin/messages"},
	}

	for _, p := range paths {
		rec := doRequest(t, router, p.method, p.path)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, rec.Code)
		}

		var body struct {
			Code int `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal error body: %v", err)
		}
		if body.Code != errs.ErrUnauthorized {
			t.Errorf("%s %s error code = %d, want %d", p.method, p.path, body.Code, errs.ErrUnauthorized)
		}
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/ws")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ws status = %d, want 401 before upgrade", rec.Code)
	}
}

func TestCORSPreflightInDevelopment(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("preflight response missing Access-Control-Allow-Origin")
	}
}
