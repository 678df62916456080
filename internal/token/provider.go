package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec errors. Expiry is deliberately distinct from cryptographic
// failure; callers map them to different responses.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformed        = errors.New("token is malformed")
	ErrExpired          = errors.New("token is expired")
	ErrUnsupported      = errors.New("token is unsupported")
)

// Claims is the decoded content of a bearer token
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider creates and parses signed bearer tokens. Access and refresh
// tokens are structurally identical; only the TTL differs.
type Provider struct {
	secret []byte
}

// NewProvider creates a Provider signing with the given server secret
func NewProvider(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

// Generate builds a signed token for the subject, valid for ttl from now
func (p *Provider) Generate(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Parse verifies the token's signature and expiry and returns its
// claims. Fails with ErrInvalidSignature, ErrMalformed, ErrExpired or
// ErrUnsupported.
func (p *Provider) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrUnsupported
			}
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, ErrUnsupported), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrUnsupported
		default:
			return nil, ErrMalformed
		}
	}

	reg, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || reg.Subject == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{Subject: reg.Subject}
	if reg.IssuedAt != nil {
		claims.IssuedAt = reg.IssuedAt.Time
	}
	if reg.ExpiresAt != nil {
		claims.ExpiresAt = reg.ExpiresAt.Time
	}
	return claims, nil
}

// Subject returns the subject of a fully valid token
func (p *Provider) Subject(raw string) (string, error) {
	claims, err := p.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
