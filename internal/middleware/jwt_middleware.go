package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AdminTokenTTL and StudioTokenTTL are fixed: admins get shorter sessions.
	AdminTokenTTL  = 24 * time.Hour
	StudioTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingSecret = errors.New("JWT secret is not configured")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
)

// Claims defines the JWT payload. Subject carries the identity id and the
// audience carries the tenant.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenCodec refuses to build a codec without a secret.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenCodec{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock replaces the time source for issuing and verifying.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	tc.now = now
	return tc
}

// Issue creates a signed token for the principal, valid for ttl.
func (tc *TokenCodec) Issue(p model.Principal, ttl time.Duration) (string, error) {
	now := tc.now()
	claims := &Claims{
		Email:     p.Email,
		Role:      p.Role,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Audience:  jwt.ClaimStrings{string(p.Tenant)},
			Issuer:    tc.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and that the token was minted for
// tenant. It returns ErrTokenExpired or ErrTokenInvalid.
func (tc *TokenCodec) Verify(tenant model.Tenant, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(tenant)),
		jwt.WithIssuer(tc.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	return claims, nil
}
