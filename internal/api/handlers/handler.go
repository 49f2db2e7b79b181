// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики каталога, проверки и статистики.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/sreedotee/verisure/internal/api/errors"
	"github.com/sreedotee/verisure/internal/api/generated"
	"github.com/sreedotee/verisure/internal/api/middleware"
	"github.com/sreedotee/verisure/internal/domain/model"
	"github.com/sreedotee/verisure/internal/domain/rbac"
	"github.com/sreedotee/verisure/internal/service"
)

// APIHandler — основной обработчик API verisure.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	health       *HealthHandler
	verification *service.VerificationService
	qr           *service.QRService
	analytics    *service.AnalyticsService
	scanMaxBytes int64
	logger       *slog.Logger
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// NewAPIHandler создаёт основной обработчик API.
// scanMaxBytes — максимальный размер тела запроса /api/v1/verify/scan.
func NewAPIHandler(
	health *HealthHandler,
	verification *service.VerificationService,
	qr *service.QRService,
	analytics *service.AnalyticsService,
	scanMaxBytes int64,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:       health,
		verification: verification,
		qr:           qr,
		analytics:    analytics,
		scanMaxBytes: scanMaxBytes,
		logger:       logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// requireRole проверяет, что роль субъекта входит в roles; без roles
// достаточно любой известной роли. При отказе пишет 401/403 и возвращает false.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) bool {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return false
	}
	if len(roles) == 0 {
		if !rbac.IsValidRole(claims.EffectiveRole) {
			apierrors.Forbidden(w, "Недостаточно прав: субъекту не назначена роль")
			return false
		}
		return true
	}
	if !claims.HasAnyRole(roles...) {
		apierrors.Forbidden(w, "Недостаточно прав: требуется роль "+strings.Join(roles, " или "))
		return false
	}
	return true
}

// writeServiceError маппит ошибку сервисного слоя в HTTP-ответ.
// op — описание операции для лога и сообщения 500.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, op string, attrs ...any) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	default:
		h.logger.Error(op, append(attrs, slog.String("error", err.Error()))...)
		apierrors.InternalError(w, op)
	}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit, offset *int) (limitVal, offsetVal int) {
	l := 100
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > 1000 {
			l = 1000
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}

// --- Маппинг domain → API ---

func mapProduct(p *model.Product) generated.Product {
	// ID назначается каталогом; невалидный UUID отображается нулевым
	id, _ := uuid.Parse(p.ID)
	return generated.Product{
		Id:        id,
		ProductId: p.ProductID,
		Name:      p.Name,
		QrToken:   p.QRToken,
		IsFake:    p.IsFake,
		Status:    generated.AuthenticityStatus(p.Status()),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func mapWriteResult(res *service.WriteResult) generated.WriteResult {
	return generated.WriteResult{
		Product: mapProduct(res.Product),
		Ledger:  generated.LedgerOutcome(res.Ledger),
	}
}

func mapVerification(v *service.Verification) generated.Verification {
	out := generated.Verification{
		ProductId:  v.Product.ProductID,
		Name:       v.Product.Name,
		IsFake:     v.Product.IsFake,
		Status:     generated.AuthenticityStatus(v.Product.Status()),
		Source:     generated.VerificationSource(v.Source),
		VerifiedAt: v.VerifiedAt,
	}
	if v.Product.QRToken != "" {
		token := v.Product.QRToken
		out.QrToken = &token
	}
	return out
}
