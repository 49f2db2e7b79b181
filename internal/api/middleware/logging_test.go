package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sreedotee/verisure/internal/domain/rbac"
)

// logRecord — одна JSON-запись журнала запросов.
type logRecord struct {
	Level     string `json:"level"`
	Component string `json:"component"`
	Method    string `json:"method"`
	Route     string `json:"route"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Bytes     int64  `json:"bytes"`
	Subject   string `json:"subject"`
	Role      string `json:"role"`
}

// serveLogged прогоняет запрос через RequestLogger (и Authenticate, если
// provider задан) и возвращает единственную запись журнала.
func serveLogged(t *testing.T, provider IdentityProvider, status int, target string) logRecord {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	if provider != nil {
		r.Use(Authenticate(provider))
	}
	r.Get("/api/v1/products/{product_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))

	var rec logRecord
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("запись журнала не разобрана: %v (%q)", err, buf.String())
	}
	return rec
}

func TestRequestLogger_RouteAndSubject(t *testing.T) {
	rec := serveLogged(t, NewStaticIdentity(rbac.RoleManufacturer), http.StatusNotFound, "/api/v1/products/SKU-42")

	if rec.Route != "/api/v1/products/{product_id}" {
		t.Errorf("route = %q, ожидался шаблон маршрута", rec.Route)
	}
	if rec.Path != "/api/v1/products/SKU-42" {
		t.Errorf("path = %q", rec.Path)
	}
	if rec.Subject != "anonymous" || rec.Role != rbac.RoleManufacturer {
		t.Errorf("subject/role = %q/%q, ожидались anonymous/manufacturer", rec.Subject, rec.Role)
	}
	if rec.Status != http.StatusNotFound || rec.Level != "WARN" {
		t.Errorf("status/level = %d/%s, ожидались 404/WARN", rec.Status, rec.Level)
	}
	if rec.Bytes != 2 {
		t.Errorf("bytes = %d, ожидалось 2", rec.Bytes)
	}
	if rec.Component != "http" {
		t.Errorf("component = %q, ожидался http", rec.Component)
	}
}

func TestRequestLogger_Anonymous(t *testing.T) {
	rec := serveLogged(t, nil, http.StatusOK, "/api/v1/products/SKU-42")

	if rec.Subject != "" || rec.Role != "" {
		t.Errorf("subject/role = %q/%q для запроса без аутентификации", rec.Subject, rec.Role)
	}
	if rec.Level != "INFO" {
		t.Errorf("level = %s, ожидался INFO", rec.Level)
	}
}

func TestRequestLogger_Unmatched(t *testing.T) {
	rec := serveLogged(t, nil, http.StatusOK, "/nowhere")

	if rec.Route != unmatchedRoute || rec.Status != http.StatusNotFound {
		t.Errorf("route/status = %q/%d, ожидались %q/404", rec.Route, rec.Status, unmatchedRoute)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		status int
		want   slog.Level
	}{
		{http.StatusOK, slog.LevelInfo},
		{http.StatusFound, slog.LevelInfo},
		{http.StatusForbidden, slog.LevelWarn},
		{http.StatusRequestEntityTooLarge, slog.LevelWarn},
		{http.StatusServiceUnavailable, slog.LevelError},
	}
	for _, tt := range tests {
		if got := logLevel(tt.status); got != tt.want {
			t.Errorf("logLevel(%d) = %v, ожидался %v", tt.status, got, tt.want)
		}
	}
}
