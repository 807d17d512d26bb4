package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer mints short lived HS256 tokens for a fixed subject and caches
// the current one until it is close to expiry.
type TokenIssuer struct {
	issuer  string
	subject string
	roles   []string
	key     []byte
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current string
	expires time.Time
}

func NewTokenIssuer(issuer, subject string, roles []string, key []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenIssuer{
		issuer:  issuer,
		subject: subject,
		roles:   roles,
		key:     key,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Token returns a valid signed token, minting a new one when the cached token
// has less than a minute left.
func (ti *TokenIssuer) Token() (string, error) {
	ti.mu.Lock()
	defer ti.mu.Unlock()

	now := ti.now()
	if ti.current != "" && now.Add(time.Minute).Before(ti.expires) {
		return ti.current, nil
	}

	exp := now.Add(ti.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   ti.subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Roles: ti.roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	ti.current = signed
	ti.expires = exp
	return signed, nil
}
