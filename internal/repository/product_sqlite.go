// product_sqlite.go — каталог продуктов во встроенном SQLite (modernc.org/sqlite).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sreedotee/verisure/internal/domain/model"
)

// sqliteTimeLayout — фиксированная точность, строки сортируются как время.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteProductRepo — реализация ProductRepository поверх database/sql.
type sqliteProductRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteProductRepository создаёт репозиторий продуктов SQLite.
func NewSQLiteProductRepository(db *sql.DB) ProductRepository {
	return &sqliteProductRepo{db: db, now: time.Now}
}

func (r *sqliteProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := r.now().UTC()
	ts := now.Format(sqliteTimeLayout)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, product_id, name, qr_token, is_fake, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ProductID, p.Name, p.QRToken, p.IsFake, ts, ts,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("%w: продукт %s уже зарегистрирован", ErrConflict, p.ProductID)
		}
		return fmt.Errorf("ошибка создания продукта: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *sqliteProductRepo) GetByProductID(ctx context.Context, productID string) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID)
}

func (r *sqliteProductRepo) GetByQRToken(ctx context.Context, token string) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE qr_token = ?`, token)
}

func (r *sqliteProductRepo) MarkFake(ctx context.Context, productID string) (*model.Product, error) {
	ts := r.now().UTC().Format(sqliteTimeLayout)
	return r.getOne(ctx, `
		UPDATE products SET is_fake = 1, updated_at = ?
		WHERE product_id = ?
		RETURNING `+productColumns, ts, productID)
}

func (r *sqliteProductRepo) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка продуктов: %w", err)
	}
	defer rows.Close()

	var result []*model.Product
	for rows.Next() {
		p, err := scanSQLiteProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования продукта: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *sqliteProductRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта продуктов: %w", err)
	}
	return count, nil
}

func (r *sqliteProductRepo) ListStats(ctx context.Context) ([]model.ProductStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT is_fake, created_at FROM products`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	defer rows.Close()

	var result []model.ProductStat
	for rows.Next() {
		var (
			s       model.ProductStat
			created string
		)
		if err := rows.Scan(&s.IsFake, &created); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики: %w", err)
		}
		if s.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
			return nil, fmt.Errorf("некорректное время created_at %q: %w", created, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *sqliteProductRepo) getOne(ctx context.Context, query string, args ...any) (*model.Product, error) {
	p, err := scanSQLiteProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения продукта: %w", err)
	}
	return p, nil
}

func scanSQLiteProduct(row scanner) (*model.Product, error) {
	var (
		p                model.Product
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.ProductID, &p.Name, &p.QRToken, &p.IsFake, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
		return nil, fmt.Errorf("некорректное время created_at %q: %w", created, err)
	}
	if p.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
		return nil, fmt.Errorf("некорректное время updated_at %q: %w", updated, err)
	}
	return &p, nil
}

// isSQLiteUniqueViolation распознаёт SQLITE_CONSTRAINT_UNIQUE по тексту ошибки.
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
