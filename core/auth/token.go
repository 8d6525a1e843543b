// Package auth issues and verifies the bearer tokens attached to every API request.
// Identity itself is managed elsewhere; tokens only carry the Principal they were issued to.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
)

const audience = "Academia"

var (
	ErrInvalidToken = errors.New("invalid or expired token")

	nowFunc = time.Now // mockable
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Issuer signs tokens for principals.
type Issuer struct {
	appName string
	key     []byte
	ttl     time.Duration
}

func NewIssuer(conf *core.Config) *Issuer {
	return &Issuer{
		appName: conf.AppName,
		key:     []byte(conf.SecretKey),
		ttl:     conf.Server.JWTExpirationDelta,
	}
}

// Generate returns a signed token for the given principal, valid for `ttl` (or the configured delta).
func (iss *Issuer) Generate(p core.Principal, ttl ...time.Duration) (string, error) {
	delta := iss.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		delta = ttl[0]
	}
	now := nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss.appName,
			Subject:   p.ID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(delta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: p.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(iss.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return token, nil
}

// Verify parses the token and returns the Principal it was issued to.
func (iss *Issuer) Verify(token string) (core.Principal, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) { return iss.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(iss.appName),
		jwt.WithTimeFunc(nowFunc),
	)
	if err != nil || claims.Subject == "" {
		return core.Principal{}, ErrInvalidToken
	}
	return core.Principal{ID: claims.Subject, Name: claims.Name}, nil
}
