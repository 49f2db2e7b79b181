// main.go — точка входа verisure.
// Инициализирует: config, logger, каталог (PostgreSQL или SQLite) с миграциями,
// реестр (EVM, Fabric или отключён), сервисы, identity provider, HTTP-сервер.
package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/sreedotee/verisure/api"
	"github.com/sreedotee/verisure/internal/api/handlers"
	"github.com/sreedotee/verisure/internal/api/middleware"
	"github.com/sreedotee/verisure/internal/config"
	"github.com/sreedotee/verisure/internal/database"
	"github.com/sreedotee/verisure/internal/domain/rbac"
	"github.com/sreedotee/verisure/internal/ledger"
	"github.com/sreedotee/verisure/internal/ledger/evm"
	"github.com/sreedotee/verisure/internal/ledger/fabric"
	"github.com/sreedotee/verisure/internal/repository"
	"github.com/sreedotee/verisure/internal/server"
	"github.com/sreedotee/verisure/internal/service"
)

// directory — открытый каталог продуктов.
type directory struct {
	repo    repository.ProductRepository
	checker handlers.ReadinessChecker
	// sqlDB — *sql.DB поверх пула PostgreSQL для topologymetrics (nil для SQLite)
	sqlDB   *sql.DB
	closeFn func()
}

// ledgerBackend — выбранный бэкенд реестра.
type ledgerBackend struct {
	gateway    ledger.Gateway
	capability ledger.CapabilityProvider
	// rpcURL — HTTP endpoint узла для мониторинга зависимостей
	rpcURL  string
	closeFn func()
}

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("verisure запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("db_driver", cfg.DBDriver),
		slog.String("ledger", cfg.LedgerBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Каталог продуктов
	dir, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации каталога", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dir.closeFn()

	// 4. Реестр
	lb, err := openLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к реестру", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer lb.closeFn()

	var ledgerChecker handlers.ReadinessChecker
	gateway := ledger.Gateway(ledger.Disabled{})
	capability := ledger.CapabilityProvider(ledger.Disabled{})
	if lb.gateway != nil {
		instrumented := ledger.Instrument(lb.gateway, lb.capability, logger)
		cached := ledger.NewCachedCapability(instrumented, cfg.LedgerProbeTTL)
		gateway, capability = instrumented, cached
		ledgerChecker = ledger.NewReadinessChecker(cfg.LedgerBackend, cached)
	} else {
		ledgerChecker = ledger.NewReadinessChecker(cfg.LedgerBackend, nil)
	}

	// 5. Сервисы
	verificationSvc := service.NewVerificationService(dir.repo, gateway, capability, logger)
	qrSvc := service.NewQRService(verificationSvc, cfg.QRCacheSize, cfg.QRCacheTTL, logger)
	analyticsSvc := service.NewAnalyticsService(dir.repo, logger)

	// 5.1 topologymetrics — мониторинг зависимостей
	targets := service.DephealthTargets{DB: dir.sqlDB, LedgerRPCURL: lb.rpcURL}
	if dir.sqlDB != nil {
		targets.PGConnURL = cfg.DatabaseDSN()
	}
	if cfg.AuthEnabled {
		targets.JWKSURL = cfg.JWKSURL
	}
	dephealthSvc := startDephealth(ctx, cfg, targets, logger)

	// 6. Identity provider
	identity, err := newIdentityProvider(cfg, logger)
	if err != nil {
		logger.Error("Ошибка создания identity provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Валидация запросов по OpenAPI
	validator, err := middleware.NewRequestValidator(api.OpenAPISpec, logger)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI спецификации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Обработчики
	healthHandler := handlers.NewHealthHandler(dir.checker, ledgerChecker)
	apiHandler := handlers.NewAPIHandler(healthHandler, verificationSvc, qrSvc, analyticsSvc, cfg.ScanMaxBytes, logger)

	// 9. HTTP-сервер: логирование, метрики, аутентификация, валидация
	srv := server.New(cfg, logger, apiHandler,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		server.WithExclusions(middleware.Authenticate(identity), "/health/", "/metrics"),
		validator.Middleware(),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("verisure остановлен")
}

// openDirectory открывает каталог выбранного драйвера и применяет миграции.
func openDirectory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*directory, error) {
	if cfg.DBDriver == config.DBDriverSQLite {
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &directory{
			repo:    repository.NewSQLiteProductRepository(db),
			checker: database.NewSQLiteReadinessChecker(db),
			closeFn: func() { _ = db.Close() },
		}, nil
	}

	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return nil, err
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Адаптер pgxpool → *sql.DB: проверки topologymetrics идут через тот же пул
	sqlDB := stdlib.OpenDBFromPool(pool)

	return &directory{
		repo:    repository.NewProductRepository(pool),
		checker: database.NewReadinessChecker(pool),
		sqlDB:   sqlDB,
		closeFn: func() {
			_ = sqlDB.Close()
			pool.Close()
		},
	}, nil
}

// openLedger подключается к бэкенду реестра. Для "none" возвращает
// пустой бэкенд: операции идут только в каталог.
func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ledgerBackend, error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendEVM:
		gw, err := evm.New(ctx, evm.Config{
			RPCURL:          cfg.EVMRPCURL,
			ContractAddress: cfg.EVMContractAddress,
			ChainID:         cfg.EVMChainID,
			PrivateKeyHex:   cfg.EVMPrivateKey,
			TxTimeout:       cfg.EVMTxTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ledgerBackend{gateway: gw, capability: gw, rpcURL: cfg.EVMRPCURL, closeFn: gw.Close}, nil

	case config.LedgerBackendFabric:
		conn, err := fabric.Connect(fabric.Config{
			PeerEndpoint: cfg.FabricPeerEndpoint,
			GatewayPeer:  cfg.FabricGatewayPeer,
			TLSCertPath:  cfg.FabricTLSCertPath,
			MSPID:        cfg.FabricMSPID,
			CertPath:     cfg.FabricCertPath,
			KeyPath:      cfg.FabricKeyPath,
			Channel:      cfg.FabricChannel,
			Chaincode:    cfg.FabricChaincode,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ledgerBackend{gateway: conn, capability: conn, closeFn: conn.Close}, nil

	default:
		logger.Info("Реестр отключён, операции выполняются только в каталоге")
		return &ledgerBackend{closeFn: func() {}}, nil
	}
}

// newIdentityProvider создаёт провайдер JWT или, при отключённой
// аутентификации, провайдер с фиксированной ролью.
func newIdentityProvider(cfg *config.Config, logger *slog.Logger) (middleware.IdentityProvider, error) {
	if !cfg.AuthEnabled {
		logger.Warn("Аутентификация отключена, все запросы получают роль по умолчанию",
			slog.String("role", cfg.AuthDefaultRole),
		)
		return middleware.NewStaticIdentity(cfg.AuthDefaultRole), nil
	}

	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWKSURL,
		cfg.JWKSCACert,
		cfg.JWTIssuer,
		rbac.GroupMapping{
			Admin:        cfg.AdminGroups,
			Manufacturer: cfg.ManufacturerGroups,
			Customer:     cfg.CustomerGroups,
		},
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("JWT аутентификация инициализирована",
		slog.String("jwks_url", cfg.JWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)
	return jwtAuth, nil
}

// startDephealth запускает мониторинг зависимостей. Ошибка не фатальна:
// сервис работает без метрик зависимостей.
func startDephealth(ctx context.Context, cfg *config.Config, targets service.DephealthTargets, logger *slog.Logger) *service.DephealthService {
	if targets.Empty() {
		return nil
	}

	dephealthSvc, err := service.NewDephealthService(
		"verisure",
		cfg.DephealthGroup,
		targets,
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		return nil
	}

	logger.Info("topologymetrics запущен",
		slog.String("group", cfg.DephealthGroup),
		slog.String("check_interval", cfg.DephealthCheckInterval.String()),
	)
	return dephealthSvc
}
