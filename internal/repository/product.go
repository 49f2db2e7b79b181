package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sreedotee/verisure/internal/domain/model"
)

// productRepo — реализация ProductRepository для PostgreSQL.
type productRepo struct {
	db DBTX
}

// NewProductRepository создаёт репозиторий продуктов PostgreSQL.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, product_id, name, qr_token, is_fake)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.ProductID, p.Name, p.QRToken, p.IsFake,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: продукт %s уже зарегистрирован", ErrConflict, p.ProductID)
		}
		return fmt.Errorf("ошибка создания продукта: %w", err)
	}
	return nil
}

func (r *productRepo) GetByProductID(ctx context.Context, productID string) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1`, productID)
}

func (r *productRepo) GetByQRToken(ctx context.Context, token string) (*model.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE qr_token = $1`, token)
}

func (r *productRepo) MarkFake(ctx context.Context, productID string) (*model.Product, error) {
	// WHERE без условия на is_fake: повторная пометка возвращает запись
	query := `
		UPDATE products SET is_fake = TRUE
		WHERE product_id = $1
		RETURNING ` + productColumns

	return r.getOne(ctx, query, productID)
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка продуктов: %w", err)
	}
	defer rows.Close()

	var result []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования продукта: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта продуктов: %w", err)
	}
	return count, nil
}

func (r *productRepo) ListStats(ctx context.Context) ([]model.ProductStat, error) {
	rows, err := r.db.Query(ctx, `SELECT is_fake, created_at FROM products`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	defer rows.Close()

	var result []model.ProductStat
	for rows.Next() {
		var s model.ProductStat
		if err := rows.Scan(&s.IsFake, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *productRepo) getOne(ctx context.Context, query string, arg string) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения продукта: %w", err)
	}
	return p, nil
}

// scanner — общий интерфейс pgx.Row и pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.ID, &p.ProductID, &p.Name, &p.QRToken, &p.IsFake, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
