// analytics.go — обработчик GET /api/v1/analytics.
package handlers

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/sreedotee/verisure/internal/api/generated"
	"github.com/sreedotee/verisure/internal/domain/rbac"
)

// GetAnalytics — сводка по каталогу: подлинные, подделки, разбивка по дням.
// Доступ: admin, manufacturer.
func (h *APIHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, rbac.RoleAdmin, rbac.RoleManufacturer) {
		return
	}

	a, err := h.analytics.Summary(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Ошибка расчёта статистики")
		return
	}

	daily := make([]generated.DailyCount, 0, len(a.Daily))
	for _, d := range a.Daily {
		date, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			h.logger.Warn("Некорректная дата в статистике", "date", d.Date)
			continue
		}
		daily = append(daily, generated.DailyCount{
			Date:  openapi_types.Date{Time: date},
			Count: d.Count,
			Real:  d.Real,
			Fake:  d.Fake,
		})
	}

	writeJSON(w, http.StatusOK, generated.Analytics{
		RealCount:  a.RealCount,
		FakeCount:  a.FakeCount,
		TotalCount: a.TotalCount,
		Daily:      daily,
	})
}
