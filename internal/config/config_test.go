package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"VS_DB_HOST":     "localhost",
		"VS_DB_NAME":     "verisure",
		"VS_DB_USER":     "verisure",
		"VS_DB_PASSWORD": "secret",
		"VS_JWKS_URL":    "https://keycloak.local/realms/verisure/protocol/openid-connect/certs",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8040 {
		t.Errorf("Port = %d, ожидается 8040", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBDriver != DBDriverPostgres {
		t.Errorf("DBDriver = %q, ожидается postgres", cfg.DBDriver)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.LedgerBackend != LedgerBackendNone {
		t.Errorf("LedgerBackend = %q, ожидается none", cfg.LedgerBackend)
	}
	if !cfg.AuthEnabled {
		t.Error("AuthEnabled = false, ожидается true")
	}
	if cfg.QRCacheTTL != time.Hour {
		t.Errorf("QRCacheTTL = %v, ожидается 1h", cfg.QRCacheTTL)
	}
	if len(cfg.AdminGroups) != 1 || cfg.AdminGroups[0] != "verisure-admins" {
		t.Errorf("AdminGroups = %v, ожидается [verisure-admins]", cfg.AdminGroups)
	}
}

func TestLoad_SQLiteWithoutAuth(t *testing.T) {
	setEnvs(t, map[string]string{
		"VS_DB_DRIVER":         "sqlite",
		"VS_SQLITE_PATH":       "/tmp/vs.db",
		"VS_AUTH_ENABLED":      "false",
		"VS_AUTH_DEFAULT_ROLE": "admin",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.SQLitePath != "/tmp/vs.db" {
		t.Errorf("SQLitePath = %q, ожидается /tmp/vs.db", cfg.SQLitePath)
	}
	if cfg.AuthDefaultRole != "admin" {
		t.Errorf("AuthDefaultRole = %q, ожидается admin", cfg.AuthDefaultRole)
	}
}

func TestLoad_EVMLedger(t *testing.T) {
	envs := minimalEnvs()
	envs["VS_LEDGER_BACKEND"] = "evm"
	envs["VS_EVM_RPC_URL"] = "https://rpc.sepolia.org"
	envs["VS_EVM_CONTRACT_ADDRESS"] = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.EVMChainID != 11155111 {
		t.Errorf("EVMChainID = %d, ожидается 11155111", cfg.EVMChainID)
	}
	if cfg.EVMTxTimeout != 2*time.Minute {
		t.Errorf("EVMTxTimeout = %v, ожидается 2m", cfg.EVMTxTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr string
	}{
		{
			name:    "нет VS_DB_HOST",
			envs:    map[string]string{"VS_JWKS_URL": "https://kc/certs", "VS_DB_NAME": "x", "VS_DB_USER": "x", "VS_DB_PASSWORD": "x"},
			wantErr: "VS_DB_HOST",
		},
		{
			name:    "неизвестный драйвер",
			envs:    map[string]string{"VS_DB_DRIVER": "mysql"},
			wantErr: "VS_DB_DRIVER",
		},
		{
			name:    "неизвестный бэкенд реестра",
			envs:    map[string]string{"VS_DB_DRIVER": "sqlite", "VS_AUTH_ENABLED": "false", "VS_LEDGER_BACKEND": "bitcoin"},
			wantErr: "VS_LEDGER_BACKEND",
		},
		{
			name:    "fabric без сертификатов",
			envs:    map[string]string{"VS_DB_DRIVER": "sqlite", "VS_AUTH_ENABLED": "false", "VS_LEDGER_BACKEND": "fabric", "VS_FABRIC_PEER_ENDPOINT": "peer0:7051"},
			wantErr: "VS_FABRIC_TLS_CERT_PATH",
		},
		{
			name: "нулевой таймаут транзакции EVM",
			envs: map[string]string{
				"VS_DB_DRIVER": "sqlite", "VS_AUTH_ENABLED": "false", "VS_LEDGER_BACKEND": "evm",
				"VS_EVM_RPC_URL": "http://localhost:8545", "VS_EVM_CONTRACT_ADDRESS": "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				"VS_EVM_TX_TIMEOUT": "0s",
			},
			wantErr: "VS_EVM_TX_TIMEOUT",
		},
		{
			name: "отрицательный таймаут транзакции EVM",
			envs: map[string]string{
				"VS_DB_DRIVER": "sqlite", "VS_AUTH_ENABLED": "false", "VS_LEDGER_BACKEND": "evm",
				"VS_EVM_RPC_URL": "http://localhost:8545", "VS_EVM_CONTRACT_ADDRESS": "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				"VS_EVM_TX_TIMEOUT": "-5s",
			},
			wantErr: "VS_EVM_TX_TIMEOUT",
		},
		{
			name:    "auth без JWKS",
			envs:    map[string]string{"VS_DB_DRIVER": "sqlite"},
			wantErr: "VS_JWKS_URL",
		},
		{
			name:    "некорректный формат логов",
			envs:    map[string]string{"VS_LOG_FORMAT": "xml"},
			wantErr: "VS_LOG_FORMAT",
		},
		{
			name:    "некорректная роль по умолчанию",
			envs:    map[string]string{"VS_DB_DRIVER": "sqlite", "VS_AUTH_ENABLED": "false", "VS_AUTH_DEFAULT_ROLE": "root"},
			wantErr: "VS_AUTH_DEFAULT_ROLE",
		},
		{
			name:    "порт вне диапазона",
			envs:    map[string]string{"VS_PORT": "70000"},
			wantErr: "VS_PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)
			_, err := Load()
			if err == nil {
				t.Fatal("Load() не вернул ошибку")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ошибка %q не содержит %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	got := parseCSV(" a, ,b ,c,")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("parseCSV = %v, ожидается %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseCSV[%d] = %q, ожидается %q", i, got[i], want[i])
		}
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p@ss", DBHost: "db", DBPort: 5432, DBName: "vs", DBSSLMode: "disable"}
	want := "postgres://u:p%40ss@db:5432/vs?sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}
