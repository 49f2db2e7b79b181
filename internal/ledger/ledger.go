// Пакет ledger — необязательный реестр продуктов (смарт-контракт).
//
// Реестр зеркалирует записи каталога и может первым ответить на проверку,
// но никогда не является источником истины. Все сбои реестра приводятся
// к типизированным ошибкам этого пакета и не выходят за его границу
// паникой.
package ledger

import (
	"context"
	"errors"
)

// Ошибки реестра.
var (
	// ErrUnavailable — реестр не настроен или нет подписанта.
	ErrUnavailable = errors.New("реестр недоступен")
	// ErrUserRejected — подпись транзакции отклонена владельцем кошелька.
	// Повторять такую операцию не следует.
	ErrUserRejected = errors.New("подпись транзакции отклонена")
	// ErrContract — контракт отверг вызов (revert, ошибка chaincode).
	ErrContract = errors.New("ошибка контракта")
	// ErrTransport — сетевой сбой или таймаут при обращении к узлу.
	ErrTransport = errors.New("ошибка транспорта реестра")
	// ErrNotFound — продукт в реестре отсутствует. Не ошибка, а сигнал
	// перейти к каталогу.
	ErrNotFound = errors.New("продукт отсутствует в реестре")
)

// ContractNotFoundCode — маркер в тексте ошибки chaincode для отсутствующего продукта.
const ContractNotFoundCode = "PRODUCT_NOT_FOUND"

// Entry — запись о продукте в реестре.
type Entry struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	IsFake    bool   `json:"is_fake"`
}

// CapabilityProvider — проверка доступности реестра.
// Реализация не должна паниковать и должна быть дешёвой либо кэшированной.
type CapabilityProvider interface {
	IsAvailable(ctx context.Context) bool
}

// Gateway — операции над контрактом реестра.
type Gateway interface {
	// Register записывает продукт и дожидается подтверждения транзакции.
	Register(ctx context.Context, productID, name string) error
	// Verify читает продукт. ErrNotFound, если продукта в реестре нет.
	Verify(ctx context.Context, productID string) (*Entry, error)
	// FlagAsFake помечает продукт подделкой и дожидается подтверждения.
	FlagAsFake(ctx context.Context, productID string) error
}

// Outcome — исход обращения к реестру для логов, метрик и ответа API.
type Outcome string

const (
	// OutcomeSkipped — реестр недоступен, обращения не было.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeConfirmed — операция подтверждена реестром.
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Classify сводит ошибку реестра к исходу.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeConfirmed
	case errors.Is(err, ErrUnavailable):
		return OutcomeSkipped
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrUserRejected):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// Disabled — реестр, который всегда недоступен.
// Используется, когда бэкенд реестра не настроен.
type Disabled struct{}

var (
	_ Gateway            = Disabled{}
	_ CapabilityProvider = Disabled{}
)

func (Disabled) IsAvailable(context.Context) bool { return false }

func (Disabled) Register(context.Context, string, string) error { return ErrUnavailable }

func (Disabled) Verify(context.Context, string) (*Entry, error) { return nil, ErrUnavailable }

func (Disabled) FlagAsFake(context.Context, string) error { return ErrUnavailable }
