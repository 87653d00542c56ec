// Package token signs and verifies the HS256 tokens a sales rep carries
// while acting as a company.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid masquerade token")

// Claims are the masquerade token claims.
type Claims struct {
	SalesRepID      int64 `json:"sales_rep_id"`
	ActingCompanyID int64 `json:"acting_company_id"`
	jwt.RegisteredClaims
}

// Issuer signs and parses masquerade tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer requires a non-empty secret. ttl <= 0 means 8 hours.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue implements core.TokenIssuer.
func (i *Issuer) Issue(salesRepID, companyID int64) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		SalesRepID:      salesRepID,
		ActingCompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.SalesRepID <= 0 {
		return nil, fmt.Errorf("%w: missing sales rep", ErrInvalidToken)
	}
	return claims, nil
}

var _ core.TokenIssuer = (*Issuer)(nil)
