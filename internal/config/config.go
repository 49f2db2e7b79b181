// Пакет config — загрузка и валидация конфигурации verisure
// из переменных окружения (префикс VS_).
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Драйверы каталога продуктов.
const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Бэкенды реестра (ledger).
const (
	LedgerBackendNone   = "none"
	LedgerBackendEVM    = "evm"
	LedgerBackendFabric = "fabric"
)

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- Каталог продуктов ---

	// Драйвер каталога: postgres или sqlite
	DBDriver   string
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// Путь к файлу SQLite (для DBDriver=sqlite)
	SQLitePath string

	// --- Ledger ---

	// Бэкенд реестра: none, evm, fabric
	LedgerBackend string
	// Время жизни результата проверки доступности реестра
	LedgerProbeTTL time.Duration

	// EVM: JSON-RPC endpoint, адрес контракта, chain id, ключ подписанта
	EVMRPCURL          string
	EVMContractAddress string
	EVMChainID         int64
	EVMPrivateKey      string
	// Сколько ждать включения транзакции в блок
	EVMTxTimeout time.Duration

	// Fabric: gateway peer, TLS, идентичность, канал и chaincode
	FabricPeerEndpoint string
	FabricGatewayPeer  string
	FabricTLSCertPath  string
	FabricMSPID        string
	FabricCertPath     string
	FabricKeyPath      string
	FabricChannel      string
	FabricChaincode    string

	// --- Аутентификация ---

	// AuthEnabled — JWT-аутентификация через JWKS. Если false, всем
	// запросам выдаётся роль AuthDefaultRole.
	AuthEnabled         bool
	AuthDefaultRole     string
	JWKSURL             string
	JWKSCACert          string
	JWTIssuer           string
	JWTLeeway           time.Duration
	JWKSClientTimeout   time.Duration
	JWKSRefreshInterval time.Duration
	// Группы IdP, маппящиеся в роли
	AdminGroups        []string
	ManufacturerGroups []string
	CustomerGroups     []string

	// --- QR ---

	// Размер и TTL кэша отрендеренных PNG
	QRCacheSize int
	QRCacheTTL  time.Duration
	// Максимальный размер загружаемого изображения для сканирования
	ScanMaxBytes int64

	// --- Dephealth ---

	DephealthCheckInterval time.Duration
	DephealthGroup         string
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("VS_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("VS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("VS_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("VS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("VS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("VS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("VS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("VS_HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("VS_HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("VS_HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, fmt.Errorf("VS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("VS_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("VS_HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("VS_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("VS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Каталог продуктов ---

	if err := loadDatabase(cfg); err != nil {
		return nil, err
	}

	// --- Ledger ---

	if err := loadLedger(cfg); err != nil {
		return nil, err
	}

	// --- Аутентификация ---

	if err := loadAuth(cfg); err != nil {
		return nil, err
	}

	// --- QR ---

	if cfg.QRCacheSize, err = getEnvInt("VS_QR_CACHE_SIZE", 1000); err != nil {
		return nil, fmt.Errorf("VS_QR_CACHE_SIZE: %w", err)
	}
	if cfg.QRCacheSize < 1 {
		return nil, fmt.Errorf("VS_QR_CACHE_SIZE: значение должно быть > 0")
	}
	if cfg.QRCacheTTL, err = getEnvDuration("VS_QR_CACHE_TTL", time.Hour); err != nil {
		return nil, fmt.Errorf("VS_QR_CACHE_TTL: %w", err)
	}
	maxBytes, err := getEnvInt("VS_SCAN_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("VS_SCAN_MAX_BYTES: %w", err)
	}
	if maxBytes < 1024 {
		return nil, fmt.Errorf("VS_SCAN_MAX_BYTES: значение должно быть >= 1024")
	}
	cfg.ScanMaxBytes = int64(maxBytes)

	// --- Dephealth ---

	if cfg.DephealthCheckInterval, err = getEnvDuration("VS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second); err != nil {
		return nil, fmt.Errorf("VS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("VS_DEPHEALTH_GROUP", "verisure")

	return cfg, nil
}

// loadDatabase заполняет параметры каталога продуктов.
func loadDatabase(cfg *Config) error {
	var err error

	cfg.DBDriver = strings.ToLower(getEnvDefault("VS_DB_DRIVER", DBDriverPostgres))
	switch cfg.DBDriver {
	case DBDriverPostgres:
		if cfg.DBHost, err = getEnvRequired("VS_DB_HOST"); err != nil {
			return err
		}
		if cfg.DBPort, err = getEnvInt("VS_DB_PORT", 5432); err != nil {
			return fmt.Errorf("VS_DB_PORT: %w", err)
		}
		if cfg.DBName, err = getEnvRequired("VS_DB_NAME"); err != nil {
			return err
		}
		if cfg.DBUser, err = getEnvRequired("VS_DB_USER"); err != nil {
			return err
		}
		if cfg.DBPassword, err = getEnvRequired("VS_DB_PASSWORD"); err != nil {
			return err
		}
		cfg.DBSSLMode = getEnvDefault("VS_DB_SSL_MODE", "disable")
	case DBDriverSQLite:
		cfg.SQLitePath = getEnvDefault("VS_SQLITE_PATH", "verisure.db")
	default:
		return fmt.Errorf("VS_DB_DRIVER: недопустимый драйвер %q, допустимые: postgres, sqlite", cfg.DBDriver)
	}
	return nil
}

// loadLedger заполняет параметры реестра и проверяет их согласованность
// с выбранным бэкендом.
func loadLedger(cfg *Config) error {
	var err error

	cfg.LedgerBackend = strings.ToLower(getEnvDefault("VS_LEDGER_BACKEND", LedgerBackendNone))
	if cfg.LedgerProbeTTL, err = getEnvDuration("VS_LEDGER_PROBE_TTL", 10*time.Second); err != nil {
		return fmt.Errorf("VS_LEDGER_PROBE_TTL: %w", err)
	}

	switch cfg.LedgerBackend {
	case LedgerBackendNone:
	case LedgerBackendEVM:
		if cfg.EVMRPCURL, err = getEnvRequired("VS_EVM_RPC_URL"); err != nil {
			return err
		}
		if cfg.EVMContractAddress, err = getEnvRequired("VS_EVM_CONTRACT_ADDRESS"); err != nil {
			return err
		}
		chainID, err := getEnvInt("VS_EVM_CHAIN_ID", 11155111)
		if err != nil {
			return fmt.Errorf("VS_EVM_CHAIN_ID: %w", err)
		}
		cfg.EVMChainID = int64(chainID)
		// Без ключа реестр доступен только на чтение и считается недоступным
		cfg.EVMPrivateKey = os.Getenv("VS_EVM_PRIVATE_KEY")
		if cfg.EVMTxTimeout, err = getEnvDuration("VS_EVM_TX_TIMEOUT", 2*time.Minute); err != nil {
			return fmt.Errorf("VS_EVM_TX_TIMEOUT: %w", err)
		}
	case LedgerBackendFabric:
		required := []struct {
			key string
			dst *string
		}{
			{"VS_FABRIC_PEER_ENDPOINT", &cfg.FabricPeerEndpoint},
			{"VS_FABRIC_TLS_CERT_PATH", &cfg.FabricTLSCertPath},
			{"VS_FABRIC_MSP_ID", &cfg.FabricMSPID},
			{"VS_FABRIC_CERT_PATH", &cfg.FabricCertPath},
			{"VS_FABRIC_KEY_PATH", &cfg.FabricKeyPath},
		}
		for _, r := range required {
			if *r.dst, err = getEnvRequired(r.key); err != nil {
				return err
			}
		}
		cfg.FabricGatewayPeer = getEnvDefault("VS_FABRIC_GATEWAY_PEER", "")
		cfg.FabricChannel = getEnvDefault("VS_FABRIC_CHANNEL", "mychannel")
		cfg.FabricChaincode = getEnvDefault("VS_FABRIC_CHAINCODE", "product")
	default:
		return fmt.Errorf("VS_LEDGER_BACKEND: недопустимый бэкенд %q, допустимые: none, evm, fabric", cfg.LedgerBackend)
	}
	return nil
}

// loadAuth заполняет параметры аутентификации.
func loadAuth(cfg *Config) error {
	var err error

	if cfg.AuthEnabled, err = getEnvBool("VS_AUTH_ENABLED", true); err != nil {
		return fmt.Errorf("VS_AUTH_ENABLED: %w", err)
	}

	cfg.AuthDefaultRole = strings.ToLower(getEnvDefault("VS_AUTH_DEFAULT_ROLE", "customer"))
	switch cfg.AuthDefaultRole {
	case "admin", "manufacturer", "customer":
	default:
		return fmt.Errorf("VS_AUTH_DEFAULT_ROLE: недопустимая роль %q", cfg.AuthDefaultRole)
	}

	cfg.AdminGroups = parseCSV(getEnvDefault("VS_ROLE_ADMIN_GROUPS", "verisure-admins"))
	cfg.ManufacturerGroups = parseCSV(getEnvDefault("VS_ROLE_MANUFACTURER_GROUPS", "verisure-manufacturers"))
	cfg.CustomerGroups = parseCSV(getEnvDefault("VS_ROLE_CUSTOMER_GROUPS", "verisure-customers"))

	if cfg.JWTLeeway, err = getEnvDuration("VS_JWT_LEEWAY", 5*time.Second); err != nil {
		return fmt.Errorf("VS_JWT_LEEWAY: %w", err)
	}
	if cfg.JWKSClientTimeout, err = getEnvDuration("VS_JWKS_CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return fmt.Errorf("VS_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	if cfg.JWKSRefreshInterval, err = getEnvDuration("VS_JWKS_REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return fmt.Errorf("VS_JWKS_REFRESH_INTERVAL: %w", err)
	}

	if !cfg.AuthEnabled {
		return nil
	}

	if cfg.JWKSURL, err = getEnvRequired("VS_JWKS_URL"); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(cfg.JWKSURL); err != nil {
		return fmt.Errorf("VS_JWKS_URL: некорректный URL %q", cfg.JWKSURL)
	}
	cfg.JWKSCACert = os.Getenv("VS_JWKS_CA_CERT")
	cfg.JWTIssuer = os.Getenv("VS_JWT_ISSUER")
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseCSV разбирает строку через запятую, отбрасывая пустые элементы.
func parseCSV(val string) []string {
	var result []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
