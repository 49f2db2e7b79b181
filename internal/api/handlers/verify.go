// verify.go — обработчики /api/v1/verify endpoints.
// Проверка подлинности по идентификатору, по содержимому QR-кода
// и по загруженному изображению. Доступ: любая роль.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/sreedotee/verisure/internal/api/errors"
	"github.com/sreedotee/verisure/internal/api/generated"
	"github.com/sreedotee/verisure/internal/qrcodec"
)

// scanFormField — имя поля multipart с изображением.
const scanFormField = "file"

// VerifyProduct — GET /api/v1/verify/products/{product_id}.
func (h *APIHandler) VerifyProduct(w http.ResponseWriter, r *http.Request, productID generated.ProductId) {
	if !requireRole(w, r) {
		return
	}

	v, err := h.verification.VerifyByID(r.Context(), productID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка проверки продукта", slog.String("product_id", productID))
		return
	}

	writeJSON(w, http.StatusOK, mapVerification(v))
}

// VerifyToken — GET /api/v1/verify/tokens/{token}.
func (h *APIHandler) VerifyToken(w http.ResponseWriter, r *http.Request, token string) {
	if !requireRole(w, r) {
		return
	}

	v, err := h.verification.VerifyByQR(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка проверки QR-кода", slog.String("token", token))
		return
	}

	writeJSON(w, http.StatusOK, mapVerification(v))
}

// ScanProduct — POST /api/v1/verify/scan.
// Принимает multipart-поле file. Токен берётся с изображения,
// при неудаче — из имени файла.
func (h *APIHandler) ScanProduct(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.scanMaxBytes)
	if err := r.ParseMultipartForm(h.scanMaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(w, "Размер файла превышает допустимый")
			return
		}
		apierrors.ValidationError(w, "Некорректный multipart: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(scanFormField)
	if err != nil {
		apierrors.ValidationError(w, "Поле file обязательно")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Ошибка чтения загруженного файла", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Ошибка чтения загруженного файла")
		return
	}

	res, err := h.qr.Scan(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, qrcodec.ErrNoCandidate) {
			apierrors.NoSymbolFound(w, "QR-код не найден ни на изображении, ни в имени файла")
			return
		}
		h.writeServiceError(w, err, "Ошибка проверки по изображению", slog.String("filename", header.Filename))
		return
	}

	writeJSON(w, http.StatusOK, generated.ScanResult{
		Verification: mapVerification(res.Verification),
		Candidate:    res.Candidate.Token,
		Extraction:   generated.ScanResultExtraction(res.Candidate.Method),
	})
}
