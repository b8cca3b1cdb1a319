package handler

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie - cookie, в которой провайдер идентификации хранит сессионный токен
const SessionCookie = "__session"

// IdentityClaims - claims сессионного токена провайдера идентификации.
// Организация приходит либо плоскими org_id/org_role, либо объектом o (v2 формат).
type IdentityClaims struct {
	OrgID   string     `json:"org_id,omitempty"`
	OrgRole string     `json:"org_role,omitempty"`
	Org     *OrgClaims `json:"o,omitempty"`
	jwt.RegisteredClaims
}

type OrgClaims struct {
	ID   string `json:"id"`
	Role string `json:"rol"`
}

// IdentityMiddleware проверяет сессионный токен и кладет api.Identity в контекст.
// Запрос никогда не прерывается: без валидного токена пользователя просто нет.
type IdentityMiddleware struct {
	key     interface{}
	methods []string
}

// NewIdentityMiddleware создает middleware.
// Публичный RSA ключ (PEM) имеет приоритет над общим HMAC секретом.
// Если не задано ни то, ни другое, ни один токен не принимается.
func NewIdentityMiddleware(secret, publicKeyPEM string) (*IdentityMiddleware, error) {
	if publicKeyPEM != "" {
		// Переводы строк в переменных окружения часто экранированы
		pem := strings.ReplaceAll(publicKeyPEM, `\n`, "\n")
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity public key: %w", err)
		}
		return &IdentityMiddleware{key: key, methods: []string{jwt.SigningMethodRS256.Alg()}}, nil
	}

	if secret != "" {
		return &IdentityMiddleware{key: []byte(secret), methods: []string{jwt.SigningMethodHS256.Alg()}}, nil
	}

	logger.Warn().Msg("Identity verification key is not configured, all requests are anonymous")
	return &IdentityMiddleware{}, nil
}

func (m *IdentityMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := m.identify(c); identity != nil {
			api.SetIdentity(c, identity)
		}
		c.Next()
	}
}

func (m *IdentityMiddleware) identify(c *gin.Context) *api.Identity {
	if m == nil || m.key == nil {
		return nil
	}

	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc,
		jwt.WithValidMethods(m.methods),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil || !token.Valid {
		logger.Debug().Err(err).Msg("Rejected session token")
		return nil
	}

	if claims.Subject == "" {
		return nil
	}

	identity := &api.Identity{
		UserID:  claims.Subject,
		OrgID:   claims.OrgID,
		OrgRole: claims.OrgRole,
	}
	if identity.OrgID == "" && claims.Org != nil {
		identity.OrgID = claims.Org.ID
		identity.OrgRole = claims.Org.Role
	}
	return identity
}

func (m *IdentityMiddleware) keyFunc(token *jwt.Token) (interface{}, error) {
	switch key := m.key.(type) {
	case *rsa.PublicKey:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	case []byte:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	default:
		return nil, fmt.Errorf("identity key is not configured")
	}
}

// bearerToken берет токен из заголовка Authorization, иначе из cookie __session
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
