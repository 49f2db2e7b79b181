package fabric

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Config — параметры подключения к Fabric Gateway.
type Config struct {
	// PeerEndpoint — адрес gateway peer (host:port)
	PeerEndpoint string
	// GatewayPeer — имя хоста для проверки TLS (server name override)
	GatewayPeer string
	// TLSCertPath — PEM-сертификат TLS CA peer
	TLSCertPath string
	// MSPID — MSP организации клиента
	MSPID string
	// CertPath, KeyPath — PEM-сертификат и закрытый ключ идентичности клиента
	CertPath string
	KeyPath  string
	Channel  string
	// Chaincode — имя chaincode реестра продуктов
	Chaincode string
}

// Connection — открытое подключение к Fabric Gateway.
type Connection struct {
	*Gateway
	conn *grpc.ClientConn
	gw   *client.Gateway
}

// Connect устанавливает gRPC-соединение и подключается к Fabric Gateway.
func Connect(cfg Config, logger *slog.Logger) (*Connection, error) {
	tlsPEM, err := os.ReadFile(cfg.TLSCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение TLS-сертификата: %w", err)
	}
	tlsCert, err := identity.CertificateFromPEM(tlsPEM)
	if err != nil {
		return nil, fmt.Errorf("разбор TLS-сертификата: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(tlsCert)

	id, err := newIdentity(cfg)
	if err != nil {
		return nil, err
	}
	sign, err := newSign(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.PeerEndpoint,
		grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(pool, cfg.GatewayPeer)),
	)
	if err != nil {
		return nil, fmt.Errorf("gRPC-клиент %s: %w", cfg.PeerEndpoint, err)
	}

	gw, err := client.Connect(id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(time.Minute),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("подключение к Fabric Gateway: %w", err)
	}

	// Соединение ленивое; Connect запускает его установку в фоне
	conn.Connect()

	l := logger.With(slog.String("component", "ledger_fabric"))
	l.Info("Fabric-реестр настроен",
		slog.String("peer", cfg.PeerEndpoint),
		slog.String("msp_id", cfg.MSPID),
		slog.String("channel", cfg.Channel),
		slog.String("chaincode", cfg.Chaincode),
	)

	return &Connection{
		Gateway: &Gateway{
			contract: gw.GetNetwork(cfg.Channel).GetContract(cfg.Chaincode),
			state:    conn.GetState,
			logger:   l,
		},
		conn: conn,
		gw:   gw,
	}, nil
}

// Close закрывает подключение к gateway и gRPC-соединение.
func (c *Connection) Close() {
	_ = c.gw.Close()
	_ = c.conn.Close()
}

// newIdentity загружает X.509-идентичность клиента.
func newIdentity(cfg Config) (*identity.X509Identity, error) {
	certPEM, err := os.ReadFile(cfg.CertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение сертификата клиента: %w", err)
	}
	cert, err := identity.CertificateFromPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("разбор сертификата клиента: %w", err)
	}
	id, err := identity.NewX509Identity(cfg.MSPID, cert)
	if err != nil {
		return nil, fmt.Errorf("создание идентичности: %w", err)
	}
	return id, nil
}

// newSign создаёт функцию подписи из закрытого ключа.
func newSign(keyPath string) (identity.Sign, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("чтение закрытого ключа: %w", err)
	}
	key, err := identity.PrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("разбор закрытого ключа: %w", err)
	}
	sign, err := identity.NewPrivateKeySign(key)
	if err != nil {
		return nil, fmt.Errorf("создание подписи: %w", err)
	}
	return sign, nil
}
