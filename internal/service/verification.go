// verification.go — оркестратор проверки подлинности.
// Последовательность: необязательный реестр (ledger), затем авторитетный каталог.
// Сбои реестра логируются и не выходят за пределы сервиса; наружу
// возвращаются только ошибки каталога.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sreedotee/verisure/internal/domain/model"
	"github.com/sreedotee/verisure/internal/domain/token"
	"github.com/sreedotee/verisure/internal/ledger"
	"github.com/sreedotee/verisure/internal/qrcodec"
	"github.com/sreedotee/verisure/internal/repository"
)

// Ограничения на входные данные.
const (
	MaxProductIDLength = 128
	MaxNameLength      = 256
)

// Источник ответа на проверку.
const (
	SourceLedger    = "ledger"
	SourceDirectory = "directory"
)

var verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vs_verifications_total",
	Help: "Количество проверок подлинности по источнику ответа и результату.",
}, []string{"source", "result"})

// Verification — результат проверки. Источник возвращается явно
// вместе с записью, глобального состояния нет.
type Verification struct {
	Product    *model.Product
	Source     string
	VerifiedAt time.Time
}

// WriteResult — результат записи (регистрация, пометка подделки).
type WriteResult struct {
	Product *model.Product
	// Ledger — исход обращения к реестру; на результат операции не влияет.
	Ledger ledger.Outcome
}

// ProductPage — страница списка продуктов.
type ProductPage struct {
	Items  []*model.Product
	Total  int
	Limit  int
	Offset int
}

// VerificationService — оркестратор реестра и каталога.
type VerificationService struct {
	products   repository.ProductRepository
	ledger     ledger.Gateway
	capability ledger.CapabilityProvider
	now        func() time.Time
	logger     *slog.Logger
}

// NewVerificationService создаёт оркестратор.
// capability определяет, обращаться ли к реестру вообще.
func NewVerificationService(
	products repository.ProductRepository,
	gw ledger.Gateway,
	capability ledger.CapabilityProvider,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		products:   products,
		ledger:     gw,
		capability: capability,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "verification_service")),
	}
}

// Register регистрирует продукт: реестр (если доступен), затем каталог.
// Ошибка каталога является результатом операции.
func (s *VerificationService) Register(ctx context.Context, productID, name string) (*WriteResult, error) {
	productID = strings.TrimSpace(productID)
	name = strings.TrimSpace(name)
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name обязателен", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name длиннее %d символов", ErrValidation, MaxNameLength)
	}

	p := &model.Product{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      name,
		QRToken:   token.New(productID, s.now()),
	}

	outcome := s.ledgerWrite(ctx, "register", productID, func() error {
		return s.ledger.Register(ctx, productID, name)
	})

	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, productID)
		}
		return nil, fmt.Errorf("регистрация продукта %s в каталоге: %w", productID, err)
	}

	s.logger.Info("Продукт зарегистрирован",
		slog.String("product_id", productID),
		slog.String("ledger", string(outcome)),
	)
	return &WriteResult{Product: p, Ledger: outcome}, nil
}

// FlagAsFake помечает продукт подделкой. Повторная пометка не является ошибкой.
func (s *VerificationService) FlagAsFake(ctx context.Context, productID string) (*WriteResult, error) {
	productID = strings.TrimSpace(productID)
	if err := validateProductID(productID); err != nil {
		return nil, err
	}

	outcome := s.ledgerWrite(ctx, "flag_as_fake", productID, func() error {
		return s.ledger.FlagAsFake(ctx, productID)
	})

	p, err := s.products.MarkFake(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("пометка продукта %s в каталоге: %w", productID, err)
	}

	s.logger.Info("Продукт помечен как подделка",
		slog.String("product_id", productID),
		slog.String("ledger", string(outcome)),
	)
	return &WriteResult{Product: p, Ledger: outcome}, nil
}

// VerifyByID проверяет продукт по идентификатору.
func (s *VerificationService) VerifyByID(ctx context.Context, productID string) (*Verification, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id обязателен", ErrValidation)
	}

	if v := s.ledgerVerify(ctx, productID); v != nil {
		return v, nil
	}

	p, err := s.products.GetByProductID(ctx, productID)
	return s.directoryResult(p, err, productID)
}

// VerifyByQR проверяет продукт по содержимому QR-кода.
// Реестр опрашивается по идентификатору, извлечённому из токена;
// если токен не разбирается, реестр пропускается.
func (s *VerificationService) VerifyByQR(ctx context.Context, rawToken string) (*Verification, error) {
	tok := qrcodec.SanitizeCandidate(rawToken)
	if tok == "" {
		return nil, fmt.Errorf("%w: токен пуст", ErrValidation)
	}

	if productID, ok := token.Parse(tok); ok {
		if v := s.ledgerVerify(ctx, productID); v != nil {
			v.Product.QRToken = tok
			return v, nil
		}
	}

	p, err := s.products.GetByQRToken(ctx, tok)
	return s.directoryResult(p, err, tok)
}

// GetProduct возвращает запись каталога.
func (s *VerificationService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	productID = strings.TrimSpace(productID)
	p, err := s.products.GetByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, productID)
		}
		return nil, fmt.Errorf("получение продукта %s: %w", productID, err)
	}
	return p, nil
}

// ListProducts возвращает страницу каталога, новые записи первыми.
func (s *VerificationService) ListProducts(ctx context.Context, limit, offset int) (*ProductPage, error) {
	items, err := s.products.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("список продуктов: %w", err)
	}
	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт продуктов: %w", err)
	}
	if items == nil {
		items = []*model.Product{}
	}
	return &ProductPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// ledgerWrite выполняет запись в реестр не более одного раза.
// Ошибка реестра логируется и сводится к исходу.
func (s *VerificationService) ledgerWrite(ctx context.Context, op, productID string, fn func() error) ledger.Outcome {
	if !s.capability.IsAvailable(ctx) {
		return ledger.OutcomeSkipped
	}

	err := fn()
	outcome := ledger.Classify(err)
	switch outcome {
	case ledger.OutcomeConfirmed, ledger.OutcomeSkipped:
	case ledger.OutcomeRejected:
		s.logger.Info("Подпись транзакции отклонена, запись только в каталог",
			slog.String("operation", op),
			slog.String("product_id", productID),
		)
	default:
		s.logger.Warn("Реестр не принял запись, продолжаем с каталогом",
			slog.String("operation", op),
			slog.String("product_id", productID),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
	}
	return outcome
}

// ledgerVerify опрашивает реестр. nil означает «перейти к каталогу».
func (s *VerificationService) ledgerVerify(ctx context.Context, productID string) *Verification {
	if !s.capability.IsAvailable(ctx) {
		return nil
	}

	entry, err := s.ledger.Verify(ctx, productID)
	if err != nil || entry == nil {
		if err != nil && !errors.Is(err, ledger.ErrNotFound) {
			s.logger.Warn("Реестр не ответил, проверка по каталогу",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	p := &model.Product{
		ProductID: entry.ProductID,
		Name:      entry.Name,
		IsFake:    entry.IsFake,
	}
	if p.ProductID == "" {
		p.ProductID = productID
	}
	verificationsTotal.WithLabelValues(SourceLedger, p.Status()).Inc()
	return &Verification{Product: p, Source: SourceLedger, VerifiedAt: s.now().UTC()}
}

// directoryResult оформляет ответ каталога как окончательный.
func (s *VerificationService) directoryResult(p *model.Product, err error, key string) (*Verification, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			verificationsTotal.WithLabelValues(SourceDirectory, "not_found").Inc()
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		verificationsTotal.WithLabelValues(SourceDirectory, "error").Inc()
		return nil, fmt.Errorf("проверка %s по каталогу: %w", key, err)
	}
	verificationsTotal.WithLabelValues(SourceDirectory, p.Status()).Inc()
	return &Verification{Product: p, Source: SourceDirectory, VerifiedAt: s.now().UTC()}, nil
}

func validateProductID(productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product_id обязателен", ErrValidation)
	}
	if utf8.RuneCountInString(productID) > MaxProductIDLength {
		return fmt.Errorf("%w: product_id длиннее %d символов", ErrValidation, MaxProductIDLength)
	}
	return nil
}
