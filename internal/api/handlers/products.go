// products.go — обработчики /api/v1/products endpoints.
// Каталог продуктов: регистрация, список, получение, QR-код, пометка подделки.
package handlers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	apierrors "github.com/sreedotee/verisure/internal/api/errors"
	"github.com/sreedotee/verisure/internal/api/generated"
	"github.com/sreedotee/verisure/internal/domain/rbac"
)

// RegisterProduct — POST /api/v1/products.
// Запись в реестр (если доступен), затем в каталог.
// Доступ: manufacturer, admin.
func (h *APIHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, rbac.RoleManufacturer, rbac.RoleAdmin) {
		return
	}

	var req generated.RegisterProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	res, err := h.verification.Register(r.Context(), req.ProductId, req.Name)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка регистрации продукта", slog.String("product_id", req.ProductId))
		return
	}

	writeJSON(w, http.StatusCreated, mapWriteResult(res))
}

// ListProducts — GET /api/v1/products.
// Возвращает продукты от новых к старым с пагинацией.
// Доступ: manufacturer, admin.
func (h *APIHandler) ListProducts(w http.ResponseWriter, r *http.Request, params generated.ListProductsParams) {
	if !requireRole(w, r, rbac.RoleManufacturer, rbac.RoleAdmin) {
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	page, err := h.verification.ListProducts(r.Context(), limit, offset)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения списка продуктов")
		return
	}

	items := make([]generated.Product, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, mapProduct(p))
	}

	writeJSON(w, http.StatusOK, generated.ProductList{
		Items:   items,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.Offset+len(items) < page.Total,
	})
}

// GetProduct — GET /api/v1/products/{product_id}.
// Доступ: manufacturer, admin.
func (h *APIHandler) GetProduct(w http.ResponseWriter, r *http.Request, productID generated.ProductId) {
	if !requireRole(w, r, rbac.RoleManufacturer, rbac.RoleAdmin) {
		return
	}

	p, err := h.verification.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения продукта", slog.String("product_id", productID))
		return
	}

	writeJSON(w, http.StatusOK, mapProduct(p))
}

// GetProductQr — GET /api/v1/products/{product_id}/qr.
// Отдаёт PNG с QR-кодом как вложение <qr_token>.png.
// Доступ: manufacturer, admin.
func (h *APIHandler) GetProductQr(w http.ResponseWriter, r *http.Request, productID generated.ProductId) {
	if !requireRole(w, r, rbac.RoleManufacturer, rbac.RoleAdmin) {
		return
	}

	img, err := h.qr.Render(r.Context(), productID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка генерации QR-кода", slog.String("product_id", productID))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": img.Filename()}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.PNG)
}

// FlagProduct — POST /api/v1/products/{product_id}/flag.
// Помечает продукт подделкой. Повторная пометка не является ошибкой.
// Доступ: admin.
func (h *APIHandler) FlagProduct(w http.ResponseWriter, r *http.Request, productID generated.ProductId) {
	if !requireRole(w, r, rbac.RoleAdmin) {
		return
	}

	res, err := h.verification.FlagAsFake(r.Context(), productID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка пометки продукта", slog.String("product_id", productID))
		return
	}

	h.logger.Info("Продукт помечен как подделка",
		slog.String("product_id", res.Product.ProductID),
		slog.String("ledger", string(res.Ledger)),
	)
	writeJSON(w, http.StatusOK, mapWriteResult(res))
}
