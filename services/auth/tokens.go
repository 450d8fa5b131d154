package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"

	"moma/models"
)

const tokenIssuerName = "moma"

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenIssuer signs HS256 session tokens and remembers revoked token ids
// until they would have expired anyway.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func newTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *tokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &tokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     now,
		revoked: make(map[string]time.Time),
	}
}

func (t *tokenIssuer) issue(user models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuerName,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

// parse validates signature, issuer and expiry and rejects revoked tokens.
func (t *tokenIssuer) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if t.isRevoked(claims.ID) {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

func (t *tokenIssuer) revoke(claims *sessionClaims) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for id, until := range t.revoked {
		if now.After(until) {
			delete(t.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		t.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}

func (t *tokenIssuer) isRevoked(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.revoked[id]
	return ok
}

var ErrSecretRequired = errors.New("session signing secret not provided")

// GenerateSecret returns a random signing secret for session tokens.
func GenerateSecret() (string, error) {
	return password.Generate(48, 12, 0, false, true)
}
