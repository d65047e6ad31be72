package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnauthenticated wraps every token validation failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// JWTConfig configures token signing and validation. PublicKeyPEM selects
// RS256 validation; otherwise Secret is used with HS256.
type JWTConfig struct {
	Secret       string
	PublicKeyPEM string
	Issuer       string
	Expiration   time.Duration
}

// Validator parses bearer tokens into Claims.
type Validator interface {
	Validate(token string) (*Claims, error)
}

// JWTService validates tokens and, in HS256 mode, issues them.
type JWTService struct {
	publicKey *rsa.PublicKey
	secret    []byte
	issuer    string
	ttl       time.Duration
}

// NewJWTService builds a JWTService from cfg.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{issuer: cfg.Issuer, ttl: cfg.Expiration}
	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse public key: %w", err)
		}
		svc.publicKey = key
	case cfg.Secret != "":
		svc.secret = []byte(cfg.Secret)
	default:
		return nil, errors.New("auth: either PublicKeyPEM or Secret is required")
	}
	if svc.ttl <= 0 {
		svc.ttl = 15 * time.Minute
	}
	return svc, nil
}

// Issue signs an HS256 token for subject. It fails in RS256 validation mode.
func (s *JWTService) Issue(subject string, roles ...string) (string, error) {
	if s.secret == nil {
		return "", errors.New("auth: token issuing requires a shared secret")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Roles: roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Validate parses token and checks its signature, expiry and issuer.
func (s *JWTService) Validate(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.publicKey != nil {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		if s.publicKey != nil {
			return s.publicKey, nil
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return claims, nil
}
