package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sreedotee/verisure/api"
)

func newTestValidator(t *testing.T) http.Handler {
	t.Helper()
	v, err := NewRequestValidator(api.OpenAPISpec, testLogger())
	if err != nil {
		t.Fatalf("NewRequestValidator() вернул ошибку: %v", err)
	}
	return v.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRequestValidator(t *testing.T) {
	handler := newTestValidator(t)

	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		wantStatus  int
	}{
		{
			name: "валидная регистрация", method: http.MethodPost, target: "/api/v1/products",
			contentType: "application/json", body: `{"product_id":"P1","name":"Shoe"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name: "нет name", method: http.MethodPost, target: "/api/v1/products",
			contentType: "application/json", body: `{"product_id":"P1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "лишнее поле", method: http.MethodPost, target: "/api/v1/products",
			contentType: "application/json", body: `{"product_id":"P1","name":"Shoe","is_fake":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "пустой product_id", method: http.MethodPost, target: "/api/v1/products",
			contentType: "application/json", body: `{"product_id":"","name":"Shoe"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "limit вне диапазона", method: http.MethodGet, target: "/api/v1/products?limit=0",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "limit не число", method: http.MethodGet, target: "/api/v1/products?limit=abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "валидная пагинация", method: http.MethodGet, target: "/api/v1/products?limit=10&offset=5",
			wantStatus: http.StatusNoContent,
		},
		{
			name: "путь вне контракта", method: http.MethodGet, target: "/unknown",
			wantStatus: http.StatusNoContent,
		},
		{
			name: "multipart не валидируется", method: http.MethodPost, target: "/api/v1/verify/scan",
			contentType: "multipart/form-data; boundary=xyz", body: "--xyz--\r\n",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, ожидался %d (тело: %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusBadRequest {
				var body struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("невалидный JSON ошибки: %v", err)
				}
				if body.Error.Code != "VALIDATION_ERROR" {
					t.Errorf("code = %q, ожидался VALIDATION_ERROR", body.Error.Code)
				}
			}
		})
	}
}

// TestRequestValidator_BodyPreserved: после валидации обработчик читает то же тело.
func TestRequestValidator_BodyPreserved(t *testing.T) {
	v, err := NewRequestValidator(api.OpenAPISpec, testLogger())
	if err != nil {
		t.Fatalf("NewRequestValidator() вернул ошибку: %v", err)
	}

	var got map[string]string
	handler := v.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("тело недоступно после валидации: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"product_id":"P1","name":"Shoe"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, ожидался 201", rec.Code)
	}
	if got["product_id"] != "P1" {
		t.Errorf("product_id = %q, ожидался P1", got["product_id"])
	}
}
