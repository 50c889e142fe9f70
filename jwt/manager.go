package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretBytes = 32

// ErrTokenInvalid is returned for any token that fails signature, claim, or
// structural validation. Parse collapses all failure modes into it; the
// reason a bad token is bad is not information the presenter needs.
var ErrTokenInvalid = errors.New("invalid token")

// Config carries the signing secret and the fixed issuer/audience pair that
// every token is validated against.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
	Leeway   time.Duration
}

// Manager signs and parses bearer tokens. It performs no I/O and holds no
// mutable state; a single Manager serves all goroutines.
type Manager struct {
	config Config
}

// Claims is the full claim set of a MyJournal bearer token.
type Claims struct {
	Login     string `json:"log"`
	Role      string `json:"rol"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// IdentityID returns the identity id carried in the subject claim.
func (c *Claims) IdentityID() string {
	return c.Subject
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("token issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("token audience is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("invalid token TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue builds and signs a token binding identityID, login, and role to
// sessionID. Deterministic given identical inputs and timestamps; the session
// id is the de-duplicating element across sign-ins.
func (m *Manager) Issue(identityID, login, role, sessionID string) (string, error) {
	if m == nil {
		return "", errors.New("token manager not initialized")
	}

	now := time.Now()
	claims := Claims{
		Login:     login,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Parse verifies the signature, issuer, audience, and lifetime of tokenStr
// and returns its claims. Any failure maps to ErrTokenInvalid.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("token manager not initialized")
	}
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return m.config.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithLeeway(m.config.Leeway),
		jwt.WithIssuedAt(),
	)
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
