package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default lifetimes. TimeExp (TokenTTL) is the authoritative expiry; the
// registered exp claim (EnvelopeTTL) is a looser outer bound.
const (
	DefaultTokenTTL    = time.Hour
	DefaultEnvelopeTTL = 2 * time.Hour
)

// Verification failures. Verify returns one of these (possibly wrapped).
var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// ErrEmptySecret is returned by NewTokenManager when no secret is set.
var ErrEmptySecret = errors.New("jwt secret is empty")

// Claims is the typed payload of a bearer token.
type Claims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	TimeExp int64  `json:"timeExp"` // unix seconds
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	Secret      []byte
	TokenTTL    time.Duration
	EnvelopeTTL time.Duration
	Issuer      string
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret      []byte
	ttl         time.Duration
	envelopeTTL time.Duration
	issuer      string
	now         func() time.Time
}

// NewTokenManager validates cfg and fills in default lifetimes.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	tm := &TokenManager{
		secret:      cfg.Secret,
		ttl:         cfg.TokenTTL,
		envelopeTTL: cfg.EnvelopeTTL,
		issuer:      cfg.Issuer,
		now:         time.Now,
	}
	if tm.ttl <= 0 {
		tm.ttl = DefaultTokenTTL
	}
	if tm.envelopeTTL <= 0 {
		tm.envelopeTTL = DefaultEnvelopeTTL
	}
	return tm, nil
}

// Issue signs a token for the given identity.
func (tm *TokenManager) Issue(email, role string) (string, error) {
	now := tm.now()
	claims := Claims{
		Email:   email,
		Role:    role,
		TimeExp: now.Add(tm.ttl).Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.envelopeTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, both expiries and the presence of the role
// claim. It has no side effects.
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.TimeExp == 0 {
		return nil, fmt.Errorf("%w: timeExp claim missing", ErrTokenInvalid)
	}
	if claims.TimeExp <= tm.now().Unix() {
		return nil, ErrTokenExpired
	}
	if claims.Role == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: identity claims missing", ErrTokenInvalid)
	}
	return claims, nil
}
