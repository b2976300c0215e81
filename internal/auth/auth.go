// Package auth issues and verifies the bearer tokens that guard the
// student endpoints.
//
// Tokens are HS256 JWTs carrying {username, role, iat, exp}. They are
// stateless: nothing is stored server-side, there is no refresh flow and
// no revocation list. A token is valid until its signature or expiry
// check fails.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the service knows about.
const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Identity is who a CredentialProvider says the caller is.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// CredentialProvider checks a username/password pair. Swapping the
// static admin pair for a real user store means implementing this.
type CredentialProvider interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// Claims is the decoded token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Token is the result of a successful login.
type Token struct {
	Value     string
	Identity  Identity
	ExpiresIn string
	ExpiresAt time.Time
}

// Service is the auth gate.
type Service struct {
	credentials CredentialProvider
	secret      []byte
	ttl         time.Duration
	expiresIn   string
	now         func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the gate. expiresIn is a Go duration string such as
// "24h"; it is also reported back to clients verbatim.
func NewService(credentials CredentialProvider, secret, expiresIn string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	ttl, err := time.ParseDuration(expiresIn)
	if err != nil {
		return nil, fmt.Errorf("auth: parse expiry %q: %w", expiresIn, err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("auth: expiry must be positive, got %s", expiresIn)
	}

	s := &Service{
		credentials: credentials,
		secret:      []byte(secret),
		ttl:         ttl,
		expiresIn:   expiresIn,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueToken authenticates the pair and signs a token for it.
func (s *Service) IssueToken(ctx context.Context, username, password string) (Token, error) {
	identity, err := s.credentials.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		Value:     signed,
		Identity:  identity,
		ExpiresIn: s.expiresIn,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken checks signature, algorithm and expiry and returns the
// claims. Failures are ErrTokenMissing, ErrTokenExpired or
// ErrTokenInvalid.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Username == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing username or role", ErrTokenInvalid)
	}
	return claims, nil
}
