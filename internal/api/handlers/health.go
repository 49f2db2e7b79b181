// health.go — обработчики health endpoints verisure.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (каталог доступен, состояние реестра)
// /metrics — Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sreedotee/verisure/internal/api/generated"
	"github.com/sreedotee/verisure/internal/config"
)

// serviceName — имя сервиса в ответах health.
const serviceName = "verisure"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	directoryChecker ReadinessChecker
	ledgerChecker    ReadinessChecker
	promHandler      http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// directoryChecker — проверка каталога (PostgreSQL или SQLite),
// ledgerChecker — проверка реестра. Nil-проверка даёт "fail".
func NewHealthHandler(directoryChecker, ledgerChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		directoryChecker: directoryChecker,
		ledgerChecker:    ledgerChecker,
		promHandler:      promhttp.Handler(),
	}
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generated.HealthLive{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Проверяет каталог и реестр.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := generated.HealthReady{
		Timestamp: time.Now().UTC(),
		Version:   config.Version,
		Service:   serviceName,
	}

	resp.Checks.Directory = runCheck(h.directoryChecker)
	resp.Checks.Ledger = runCheck(h.ledgerChecker)

	// Определяем итоговый статус
	status := overallStatus(string(resp.Checks.Directory.Status), string(resp.Checks.Ledger.Status))
	resp.Status = generated.HealthReadyStatus(status)

	if status == statusFail {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// runCheck выполняет проверку одной зависимости.
func runCheck(checker ReadinessChecker) generated.HealthCheck {
	if checker == nil {
		msg := "не инициализирован"
		return generated.HealthCheck{Status: generated.HealthCheckStatusFail, Message: &msg}
	}
	status, msg := checker.CheckReady()
	result := generated.HealthCheck{Status: generated.HealthCheckStatus(status)}
	if msg != "" {
		result.Message = &msg
	}
	return result
}

// Константы статусов health check.
const (
	statusFail     = "fail"
	statusDegraded = "degraded"
)

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail — итог fail.
// Если хотя бы одна degraded — итог degraded.
// Иначе — ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == statusDegraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return statusDegraded
	}
	return "ok"
}
