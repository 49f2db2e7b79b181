// Пакет fabric — реестр продуктов на Hyperledger Fabric через Fabric Gateway.
// Вызывает chaincode product (см. internal/chaincode).
package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/status"

	"github.com/sreedotee/verisure/internal/ledger"
)

// Транзакции chaincode.
const (
	txAddProduct    = "AddProduct"
	txVerifyProduct = "VerifyProduct"
	txMarkAsFake    = "MarkAsFake"
)

// contract — часть client.Contract, используемая шлюзом.
type contract interface {
	SubmitWithContext(ctx context.Context, name string, opts ...client.ProposalOption) ([]byte, error)
	EvaluateWithContext(ctx context.Context, name string, opts ...client.ProposalOption) ([]byte, error)
}

// Gateway — реализация ledger.Gateway и ledger.CapabilityProvider для Fabric.
type Gateway struct {
	contract contract
	// state — текущее состояние gRPC-соединения с gateway peer
	state  func() connectivity.State
	logger *slog.Logger
}

var (
	_ ledger.Gateway            = (*Gateway)(nil)
	_ ledger.CapabilityProvider = (*Gateway)(nil)
)

// IsAvailable — соединение с peer не в состоянии сбоя.
func (g *Gateway) IsAvailable(context.Context) bool {
	switch g.state() {
	case connectivity.TransientFailure, connectivity.Shutdown:
		return false
	default:
		return true
	}
}

func (g *Gateway) Register(ctx context.Context, productID, name string) error {
	_, err := g.contract.SubmitWithContext(ctx, txAddProduct, client.WithArguments(productID, name))
	if err != nil {
		return classify(err)
	}
	return nil
}

func (g *Gateway) FlagAsFake(ctx context.Context, productID string) error {
	_, err := g.contract.SubmitWithContext(ctx, txMarkAsFake, client.WithArguments(productID))
	if err != nil {
		return classify(err)
	}
	return nil
}

func (g *Gateway) Verify(ctx context.Context, productID string) (*ledger.Entry, error) {
	payload, err := g.contract.EvaluateWithContext(ctx, txVerifyProduct, client.WithArguments(productID))
	if err != nil {
		return nil, classify(err)
	}

	var entry ledger.Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("%w: разбор ответа %s: %v", ledger.ErrContract, txVerifyProduct, err)
	}
	if entry.Name == "" {
		return nil, ledger.ErrNotFound
	}
	return &entry, nil
}

// classify приводит ошибку Fabric Gateway к ошибке пакета ledger.
func classify(err error) error {
	if mentionsNotFound(err) {
		return fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
	}

	var commitErr *client.CommitError
	if errors.As(err, &commitErr) {
		return fmt.Errorf("%w: транзакция %s не принята: %v", ledger.ErrContract, commitErr.TransactionID, commitErr.Code)
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %v", ledger.ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", ledger.ErrContract, err)
	}
}

// mentionsNotFound ищет маркер отсутствия продукта в тексте ошибки
// и в деталях gRPC-статуса (ответы отдельных endorsing peers).
func mentionsNotFound(err error) bool {
	if strings.Contains(err.Error(), ledger.ContractNotFoundCode) {
		return true
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	for _, detail := range st.Details() {
		if d, ok := detail.(interface{ GetMessage() string }); ok {
			if strings.Contains(d.GetMessage(), ledger.ContractNotFoundCode) {
				return true
			}
		}
	}
	return false
}
