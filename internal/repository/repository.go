// Пакет repository — каталог продуктов (источник истины).
// Чистый SQL без ORM: PostgreSQL через pgx, встроенный вариант — SQLite.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sreedotee/verisure/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// ProductRepository — операции каталога продуктов.
// Поиск всегда по точному совпадению; нормализация (trim) — на стороне вызывающего.
type ProductRepository interface {
	// Create вставляет запись и заполняет CreatedAt/UpdatedAt из хранилища.
	Create(ctx context.Context, p *model.Product) error
	// GetByProductID возвращает продукт по идентификатору.
	GetByProductID(ctx context.Context, productID string) (*model.Product, error)
	// GetByQRToken возвращает продукт по QR-токену.
	GetByQRToken(ctx context.Context, token string) (*model.Product, error)
	// MarkFake устанавливает признак подделки и возвращает запись.
	// Повторный вызов не является ошибкой.
	MarkFake(ctx context.Context, productID string) (*model.Product, error)
	// List возвращает продукты от новых к старым.
	List(ctx context.Context, limit, offset int) ([]*model.Product, error)
	// Count возвращает общее количество продуктов.
	Count(ctx context.Context) (int, error)
	// ListStats возвращает проекцию для агрегатной статистики.
	ListStats(ctx context.Context) ([]model.ProductStat, error)
}

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// productColumns — порядок колонок для Scan.
const productColumns = `id, product_id, name, qr_token, is_fake, created_at, updated_at`
