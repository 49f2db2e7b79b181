package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/sreedotee/verisure/internal/domain/model"
	"github.com/sreedotee/verisure/internal/ledger"
	"github.com/sreedotee/verisure/internal/repository"
)

// --- Mock ProductRepository ---

type mockProductRepo struct {
	createFn         func(ctx context.Context, p *model.Product) error
	getByProductIDFn func(ctx context.Context, productID string) (*model.Product, error)
	getByQRTokenFn   func(ctx context.Context, token string) (*model.Product, error)
	markFakeFn       func(ctx context.Context, productID string) (*model.Product, error)
	listFn           func(ctx context.Context, limit, offset int) ([]*model.Product, error)
	countFn          func(ctx context.Context) (int, error)
	listStatsFn      func(ctx context.Context) ([]model.ProductStat, error)

	lookups atomic.Int32
}

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepo) GetByProductID(ctx context.Context, productID string) (*model.Product, error) {
	m.lookups.Add(1)
	if m.getByProductIDFn != nil {
		return m.getByProductIDFn(ctx, productID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProductRepo) GetByQRToken(ctx context.Context, token string) (*model.Product, error) {
	m.lookups.Add(1)
	if m.getByQRTokenFn != nil {
		return m.getByQRTokenFn(ctx, token)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProductRepo) MarkFake(ctx context.Context, productID string) (*model.Product, error) {
	if m.markFakeFn != nil {
		return m.markFakeFn(ctx, productID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProductRepo) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockProductRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockProductRepo) ListStats(ctx context.Context) ([]model.ProductStat, error) {
	if m.listStatsFn != nil {
		return m.listStatsFn(ctx)
	}
	return nil, nil
}

// --- Mock реестра ---

// mockLedger — шпион реестра: считает все обращения.
type mockLedger struct {
	available    bool
	registerFn   func(ctx context.Context, productID, name string) error
	verifyFn     func(ctx context.Context, productID string) (*ledger.Entry, error)
	flagAsFakeFn func(ctx context.Context, productID string) error

	calls atomic.Int32
}

func (m *mockLedger) IsAvailable(context.Context) bool { return m.available }

func (m *mockLedger) Register(ctx context.Context, productID, name string) error {
	m.calls.Add(1)
	if m.registerFn != nil {
		return m.registerFn(ctx, productID, name)
	}
	return nil
}

func (m *mockLedger) Verify(ctx context.Context, productID string) (*ledger.Entry, error) {
	m.calls.Add(1)
	if m.verifyFn != nil {
		return m.verifyFn(ctx, productID)
	}
	return nil, ledger.ErrNotFound
}

func (m *mockLedger) FlagAsFake(ctx context.Context, productID string) error {
	m.calls.Add(1)
	if m.flagAsFakeFn != nil {
		return m.flagAsFakeFn(ctx, productID)
	}
	return nil
}

func newTestService(repo *mockProductRepo, l *mockLedger) *VerificationService {
	return NewVerificationService(repo, l, l, slog.Default())
}
