package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/auth"
)

const secret = "test-secret"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newService(t *testing.T, c *clock) *auth.Service {
	t.Helper()

	svc, err := auth.NewService(
		auth.StaticCredentials{Username: "admin", Password: "admin123"},
		secret, "24h",
		auth.WithClock(c.now),
	)
	require.NoError(t, err)
	return svc
}

func TestIssueAndVerify(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, c)

	tok, err := svc.IssueToken(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.Equal(t, "24h", tok.ExpiresIn)
	assert.Equal(t, auth.Identity{Username: "admin", Role: auth.RoleAdmin}, tok.Identity)
	assert.Equal(t, c.t.Add(24*time.Hour), tok.ExpiresAt)

	c.t = c.t.Add(23 * time.Hour)
	claims, err := svc.VerifyToken(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), claims.IssuedAt.Time.UTC())
}

func TestIssueToken_BadCredentials(t *testing.T) {
	svc := newService(t, &clock{t: time.Now()})

	_, err := svc.IssueToken(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.IssueToken(context.Background(), "root", "admin123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestVerifyToken_Outcomes(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newService(t, c)

	tok, err := svc.IssueToken(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := svc.VerifyToken("")
		assert.ErrorIs(t, err, auth.ErrTokenMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.VerifyToken("not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(tok.Value, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := svc.VerifyToken(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := auth.NewService(auth.StaticCredentials{Username: "admin", Password: "admin123"}, "other-secret", "24h",
			auth.WithClock(c.now))
		require.NoError(t, err)
		_, err = other.VerifyToken(tok.Value)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := auth.Claims{
			Username: "admin",
			Role:     auth.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
			},
		}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.VerifyToken(none)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := auth.Claims{Username: "admin", Role: auth.RoleAdmin}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = svc.VerifyToken(signed)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		later := &clock{t: c.t.Add(25 * time.Hour)}
		expired, err := auth.NewService(auth.StaticCredentials{Username: "admin", Password: "admin123"}, secret, "24h",
			auth.WithClock(later.now))
		require.NoError(t, err)

		_, err = expired.VerifyToken(tok.Value)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})
}

func TestNewService_Rejects(t *testing.T) {
	creds := auth.StaticCredentials{Username: "admin", Password: "admin123"}

	_, err := auth.NewService(creds, "", "24h")
	assert.Error(t, err)

	_, err = auth.NewService(creds, secret, "a day")
	assert.Error(t, err)

	_, err = auth.NewService(creds, secret, "-1h")
	assert.Error(t, err)
}

func TestStaticCredentials_EmptyUsernameNeverMatches(t *testing.T) {
	_, err := auth.StaticCredentials{}.Authenticate(context.Background(), "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
