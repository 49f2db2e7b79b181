// auth.go — аутентификация запросов verisure.
// IdentityProvider подключается при старте: JWTAuth проверяет JWT по JWKS
// IdP и маппит группы в роли, StaticIdentity выдаёт фиксированную роль
// (аутентификация отключена, локальный запуск и демо).
package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/sreedotee/verisure/internal/api/errors"
	"github.com/sreedotee/verisure/internal/domain/rbac"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyClaims — извлечённые claims в контексте запроса.
	ContextKeyClaims contextKey = "jwt_claims"
)

// Ошибки аутентификации. Текст уходит клиенту в ответе 401.
var (
	errNoAuthHeader   = errors.New("Отсутствует заголовок Authorization")
	errBadAuthHeader  = errors.New("Неверный формат Authorization: ожидается Bearer <token>")
	errEmptyToken     = errors.New("Пустой Bearer token")
	errInvalidToken   = errors.New("Невалидный или просроченный токен")
	errMissingSubject = errors.New("Отсутствует sub в токене")
)

// AuthClaims — субъект запроса и его итоговая роль.
// Помещаются в контекст запроса для downstream handlers.
type AuthClaims struct {
	// Subject — sub из JWT (ID пользователя в IdP).
	Subject string
	// PreferredUsername — preferred_username из JWT.
	PreferredUsername string
	// Email — email из JWT.
	Email string
	// Roles — роли из realm_access.roles.
	Roles []string
	// Groups — группы из JWT.
	Groups []string
	// EffectiveRole — итоговая роль (customer, manufacturer, admin) или "".
	EffectiveRole string
}

// HasRole проверяет, есть ли у субъекта указанная роль.
func (c *AuthClaims) HasRole(role string) bool {
	return c.EffectiveRole == role
}

// HasAnyRole проверяет, совпадает ли effective роль с одной из указанных.
func (c *AuthClaims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

// IdentityProvider — источник субъекта запроса.
// Ошибка означает 401; её текст возвращается клиенту.
type IdentityProvider interface {
	Authenticate(r *http.Request) (*AuthClaims, error)
}

// Authenticate возвращает middleware, помещающий AuthClaims в контекст.
func Authenticate(provider IdentityProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := provider.Authenticate(r)
			if err != nil {
				apierrors.Unauthorized(w, err.Error())
				return
			}
			if entry := requestEntryFromContext(r.Context()); entry != nil {
				entry.claims = claims
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// --- StaticIdentity ---

// StaticIdentity — провайдер без аутентификации: каждый запрос получает
// одну и ту же роль.
type StaticIdentity struct {
	role string
}

// NewStaticIdentity создаёт провайдер с фиксированной ролью.
func NewStaticIdentity(role string) *StaticIdentity {
	return &StaticIdentity{role: role}
}

// Authenticate возвращает фиксированного субъекта.
func (s *StaticIdentity) Authenticate(_ *http.Request) (*AuthClaims, error) {
	return &AuthClaims{
		Subject:           "anonymous",
		PreferredUsername: "anonymous",
		EffectiveRole:     s.role,
	}, nil
}

// --- JWTAuth ---

// idpClaims — raw claims из JWT IdP (Keycloak-совместимый формат).
type idpClaims struct {
	jwt.RegisteredClaims
	// PreferredUsername — имя пользователя.
	PreferredUsername string `json:"preferred_username"`
	// Email — электронная почта.
	Email string `json:"email"`
	// RealmAccess — вложенная структура для realm_access.roles.
	RealmAccess *realmAccess `json:"realm_access,omitempty"`
	// Groups — группы пользователя.
	Groups []string `json:"groups,omitempty"`
}

// realmAccess — вложенная структура realm_access.
type realmAccess struct {
	Roles []string `json:"roles"`
}

// JWTAuth — проверка JWT через JWKS IdP.
type JWTAuth struct {
	jwks      keyfunc.Keyfunc
	logger    *slog.Logger
	groups    rbac.GroupMapping
	issuer    string
	jwtLeeway time.Duration
}

var _ IdentityProvider = (*JWTAuth)(nil)

// NewJWTAuth создаёт провайдер с JWKS из IdP.
// jwksURL — URL к JWKS endpoint.
// caCertPath — опциональный путь к CA-сертификату для TLS.
// issuer — ожидаемый issuer JWT (может быть пустым — issuer не проверяется).
// groups — маппинг групп IdP в роли.
func NewJWTAuth(
	jwksURL string,
	caCertPath string,
	issuer string,
	groups rbac.GroupMapping,
	jwksClientTimeout time.Duration,
	jwksRefreshInterval time.Duration,
	jwtLeeway time.Duration,
	logger *slog.Logger,
) (*JWTAuth, error) {
	httpClient := &http.Client{Timeout: jwksClientTimeout}
	if caCertPath != "" {
		var err error
		httpClient, err = httpClientWithCA(caCertPath, jwksClientTimeout)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата %s: %w", caCertPath, err)
		}
		logger.Info("CA-сертификат для JWKS добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	// NoErrorReturnFirstHTTPReq — стартуем даже если IdP ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	auth := NewJWTAuthWithKeyfunc(k, issuer, groups, logger)
	auth.jwtLeeway = jwtLeeway
	return auth, nil
}

// NewJWTAuthWithKeyfunc создаёт провайдер с готовым keyfunc (для тестов).
func NewJWTAuthWithKeyfunc(kf keyfunc.Keyfunc, issuer string, groups rbac.GroupMapping, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		jwks:   kf,
		logger: logger.With(slog.String("component", "jwt_auth")),
		groups: groups,
		issuer: issuer,
	}
}

// httpClientWithCA создаёт HTTP-клиент с кастомным CA-сертификатом.
func httpClientWithCA(caCertPath string, timeout time.Duration) (*http.Client, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, err
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: caCertPool,
			},
		},
	}, nil
}

// Authenticate извлекает Bearer token, валидирует подпись (RS256)
// и вычисляет итоговую роль.
func (j *JWTAuth) Authenticate(r *http.Request) (*AuthClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoAuthHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errBadAuthHeader
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, errEmptyToken
	}

	rawClaims := &idpClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.jwtLeeway),
	}
	if j.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, rawClaims, j.jwks.KeyfuncCtx(r.Context()), parserOpts...)
	if err != nil || !token.Valid {
		if err != nil {
			j.logger.Debug("JWT валидация не пройдена",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr),
			)
		}
		return nil, errInvalidToken
	}

	subject, err := rawClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, errMissingSubject
	}

	return j.buildAuthClaims(rawClaims), nil
}

// buildAuthClaims маппит группы в роль; если ни одна группа не совпала,
// используется максимальная допустимая роль из realm_access.roles.
func (j *JWTAuth) buildAuthClaims(raw *idpClaims) *AuthClaims {
	claims := &AuthClaims{
		Subject:           raw.Subject,
		PreferredUsername: raw.PreferredUsername,
		Email:             raw.Email,
		Groups:            raw.Groups,
	}
	if raw.RealmAccess != nil {
		claims.Roles = raw.RealmAccess.Roles
	}

	claims.EffectiveRole = rbac.MapGroupsToRole(claims.Groups, j.groups)
	if claims.EffectiveRole == "" {
		claims.EffectiveRole = rbac.HighestRole(claims.Roles)
	}
	return claims
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Во внешних middleware (RequestLogger) claims доступны после next.ServeHTTP
// через запись журнала запроса. Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	if claims, ok := ctx.Value(ContextKeyClaims).(*AuthClaims); ok {
		return claims
	}
	if entry := requestEntryFromContext(ctx); entry != nil {
		return entry.claims
	}
	return nil
}

// SubjectFromContext извлекает sub из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func SubjectFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}
