// Пакет evm — реестр продуктов на EVM-совместимой сети (go-ethereum).
//
// Записи подписываются ключом сервиса и ожидают включения в блок.
// Чтение выполняется через eth_call и подписи не требует.
package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/sreedotee/verisure/internal/ledger"
)

// userRejectedCode — код JSON-RPC (EIP-1193) отказа пользователя от подписи.
const userRejectedCode = 4001

// probeTimeout — таймаут проверки доступности узла.
const probeTimeout = 3 * time.Second

// Config — параметры подключения к EVM-сети.
type Config struct {
	// RPCURL — JSON-RPC endpoint узла
	RPCURL string
	// ContractAddress — адрес контракта реестра (0x...)
	ContractAddress string
	// ChainID — ожидаемый идентификатор сети
	ChainID int64
	// PrivateKeyHex — ключ подписанта; пустой — только чтение
	PrivateKeyHex string
	// TxTimeout — сколько ждать включения транзакции в блок
	TxTimeout time.Duration
}

// boundContract — часть bind.BoundContract, используемая шлюзом.
type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

// chainReader — источник chain id для проверки доступности.
type chainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Gateway — реализация ledger.Gateway и ledger.CapabilityProvider для EVM.
type Gateway struct {
	contract  boundContract
	chain     chainReader
	chainID   *big.Int
	signer    *bind.TransactOpts
	waitMined func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	txTimeout time.Duration
	close     func()
	logger    *slog.Logger
}

var (
	_ ledger.Gateway            = (*Gateway)(nil)
	_ ledger.CapabilityProvider = (*Gateway)(nil)
)

// New подключается к узлу и связывает ABI с адресом контракта.
// Подключение ленивое: недоступность узла на старте не является ошибкой.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Gateway, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("некорректный адрес контракта %q", cfg.ContractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("разбор ABI контракта: %w", err)
	}

	chainID := big.NewInt(cfg.ChainID)
	var signer *bind.TransactOpts
	if cfg.PrivateKeyHex != "" {
		signer, err = newSigner(cfg.PrivateKeyHex, chainID)
		if err != nil {
			return nil, err
		}
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("подключение к %s: %w", cfg.RPCURL, err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, client, client, client)

	l := logger.With(slog.String("component", "ledger_evm"))
	if signer == nil {
		l.Warn("Ключ подписанта не задан: реестр будет считаться недоступным")
	} else {
		l.Info("EVM-реестр настроен",
			slog.String("contract", address.Hex()),
			slog.String("signer", signer.From.Hex()),
			slog.Int64("chain_id", cfg.ChainID),
		)
	}

	return &Gateway{
		contract: contract,
		chain:    client,
		chainID:  chainID,
		signer:   signer,
		waitMined: func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
			return bind.WaitMined(ctx, client, tx)
		},
		txTimeout: cfg.TxTimeout,
		close:     client.Close,
		logger:    l,
	}, nil
}

// newSigner создаёт подписанта транзакций из hex-ключа.
func newSigner(keyHex string, chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("некорректный ключ подписанта: %w", err)
	}
	return signerFromKey(key, chainID)
}

func signerFromKey(key *ecdsa.PrivateKey, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("создание подписанта: %w", err)
	}
	return opts, nil
}

// Close закрывает RPC-подключение.
func (g *Gateway) Close() {
	if g.close != nil {
		g.close()
	}
}

// IsAvailable — есть подписант и узел отвечает ожидаемым chain id.
func (g *Gateway) IsAvailable(ctx context.Context) bool {
	if g.signer == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	id, err := g.chain.ChainID(ctx)
	if err != nil {
		g.logger.Debug("Узел EVM не отвечает", slog.String("error", err.Error()))
		return false
	}
	if id.Cmp(g.chainID) != 0 {
		g.logger.Warn("Узел EVM в другой сети",
			slog.String("chain_id", id.String()),
			slog.String("expected", g.chainID.String()),
		)
		return false
	}
	return true
}

func (g *Gateway) Register(ctx context.Context, productID, name string) error {
	return g.transact(ctx, methodAdd, productID, name)
}

func (g *Gateway) FlagAsFake(ctx context.Context, productID string) error {
	return g.transact(ctx, methodFlag, productID)
}

// Verify читает продукт через eth_call. Revert и пустое имя означают,
// что продукта в контракте нет.
func (g *Gateway) Verify(ctx context.Context, productID string) (*ledger.Entry, error) {
	var out []interface{}
	err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodVerify, productID)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
		}
		return nil, classify(err)
	}

	if len(out) != 2 {
		return nil, fmt.Errorf("%w: %s вернул %d значений", ledger.ErrContract, methodVerify, len(out))
	}
	name, okName := out[0].(string)
	isFake, okFake := out[1].(bool)
	if !okName || !okFake {
		return nil, fmt.Errorf("%w: неожиданные типы результата %s", ledger.ErrContract, methodVerify)
	}
	if name == "" {
		return nil, ledger.ErrNotFound
	}

	return &ledger.Entry{ProductID: productID, Name: name, IsFake: isFake}, nil
}

// transact отправляет транзакцию и ждёт её включения в блок.
func (g *Gateway) transact(ctx context.Context, method string, params ...interface{}) error {
	if g.signer == nil {
		return ledger.ErrUnavailable
	}

	opts := *g.signer
	opts.Context = ctx

	tx, err := g.contract.Transact(&opts, method, params...)
	if err != nil {
		return classify(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.txTimeout)
	defer cancel()

	receipt, err := g.waitMined(waitCtx, tx)
	if err != nil {
		return fmt.Errorf("%w: ожидание транзакции %s: %v", ledger.ErrTransport, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: транзакция %s отменена контрактом", ledger.ErrContract, tx.Hash().Hex())
	}

	g.logger.Debug("Транзакция подтверждена",
		slog.String("method", method),
		slog.String("tx", tx.Hash().Hex()),
		slog.Uint64("block", receipt.BlockNumber.Uint64()),
	)
	return nil
}

// classify приводит ошибку go-ethereum к ошибке пакета ledger.
func classify(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return fmt.Errorf("%w: %v", ledger.ErrUserRejected, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return fmt.Errorf("%w: %v", ledger.ErrUserRejected, err)
	case isRevert(err):
		return fmt.Errorf("%w: %v", ledger.ErrContract, err)
	default:
		return fmt.Errorf("%w: %v", ledger.ErrTransport, err)
	}
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
