// qr.go — выдача QR-кодов продуктов и сканирование загруженных изображений.
// Готовые PNG кэшируются в LRU (hashicorp/golang-lru/v2/expirable):
// токен неизменяем, поэтому ключ кэша никогда не устаревает по смыслу.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sreedotee/verisure/internal/qrcodec"
)

// Prometheus-метрики кэша QR-кодов.
var (
	qrCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_qr_cache_hits_total",
		Help: "Общее количество попаданий в кэш QR-изображений.",
	})
	qrCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vs_qr_cache_misses_total",
		Help: "Общее количество промахов кэша QR-изображений.",
	})
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vs_qr_scans_total",
		Help: "Количество сканирований загруженных файлов по способу извлечения.",
	}, []string{"method"})
)

// QRImage — готовый QR-код продукта.
type QRImage struct {
	Token string
	PNG   []byte
}

// Filename возвращает имя файла для скачивания. Имя совпадает с токеном,
// поэтому повторно загруженный файл распознаётся даже без декодирования.
func (q *QRImage) Filename() string {
	return q.Token + ".png"
}

// QRService — рендеринг и сканирование QR-кодов.
type QRService struct {
	verification *VerificationService
	cache        *expirable.LRU[string, []byte]
	logger       *slog.Logger
}

// NewQRService создаёт сервис QR-кодов.
// cacheSize — максимальное количество PNG в кэше, ttl — время жизни записи.
func NewQRService(verification *VerificationService, cacheSize int, ttl time.Duration, logger *slog.Logger) *QRService {
	return &QRService{
		verification: verification,
		cache:        expirable.NewLRU[string, []byte](cacheSize, nil, ttl),
		logger:       logger.With(slog.String("component", "qr_service")),
	}
}

// Render возвращает PNG с QR-кодом продукта.
func (s *QRService) Render(ctx context.Context, productID string) (*QRImage, error) {
	p, err := s.verification.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if png, ok := s.cache.Get(p.QRToken); ok {
		qrCacheHitsTotal.Inc()
		return &QRImage{Token: p.QRToken, PNG: png}, nil
	}
	qrCacheMissesTotal.Inc()

	png, err := qrcodec.Encode(p.QRToken)
	if err != nil {
		return nil, fmt.Errorf("генерация QR-кода продукта %s: %w", p.ProductID, err)
	}
	s.cache.Add(p.QRToken, png)

	s.logger.Debug("QR-код сгенерирован",
		slog.String("product_id", p.ProductID),
		slog.Int("bytes", len(png)),
	)
	return &QRImage{Token: p.QRToken, PNG: png}, nil
}

// ScanResult — результат проверки по загруженному изображению.
type ScanResult struct {
	*Verification
	Candidate qrcodec.Candidate
}

// Scan извлекает токен из файла (изображение, затем имя файла) и проверяет его.
// Если токен не найден, возвращается ошибка, оборачивающая qrcodec.ErrNoCandidate.
func (s *QRService) Scan(ctx context.Context, filename string, data []byte) (*ScanResult, error) {
	candidate, err := qrcodec.Extract(filename, data)
	if err != nil {
		scansTotal.WithLabelValues("none").Inc()
		if errors.Is(err, qrcodec.ErrNoCandidate) {
			s.logger.Info("QR-код не найден",
				slog.String("filename", filename),
				slog.Int("bytes", len(data)),
			)
		}
		return nil, err
	}
	scansTotal.WithLabelValues(string(candidate.Method)).Inc()

	v, err := s.verification.VerifyByQR(ctx, candidate.Token)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Verification: v, Candidate: candidate}, nil
}
