package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type tokenServiceCase struct {
	name string
	// build returns a service whose clock is fixed at now
	build func(t *testing.T, secret string, now time.Time) TokenService
}

func tokenServiceCases() []tokenServiceCase {
	return []tokenServiceCase{
		{
			name: "jwt",
			build: func(t *testing.T, secret string, now time.Time) TokenService {
				s, err := NewJWTService(secret, "accounts-api", time.Hour)
				require.NoError(t, err)
				s.now = func() time.Time { return now }
				return s
			},
		},
		{
			name: "paseto",
			build: func(t *testing.T, secret string, now time.Time) TokenService {
				s, err := NewPasetoService(secret, "accounts-api", time.Hour)
				require.NoError(t, err)
				s.now = func() time.Time { return now }
				return s
			},
		},
	}
}

var aliceClaims = Claims{UserID: 42, Username: "alice", Email: "alice@example.com"}

func TestTokenService_RoundTrip(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Now().Truncate(time.Second)
			svc := tc.build(t, testSecret, now)

			token, err := svc.CreateToken(aliceClaims)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := svc.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, int64(42), claims.UserID)
			assert.Equal(t, "alice", claims.Username)
			assert.Equal(t, "alice@example.com", claims.Email)
			assert.NotEmpty(t, claims.TokenID)
			assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
			assert.Equal(t, time.Hour, svc.TTL())
			assert.Equal(t, tc.name, svc.Format())
		})
	}
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			svc := tc.build(t, testSecret, time.Now())

			a, err := svc.CreateToken(aliceClaims)
			require.NoError(t, err)
			b, err := svc.CreateToken(aliceClaims)
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestTokenService_Expired(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			issuer := tc.build(t, testSecret, time.Now().Add(-2*time.Hour))
			token, err := issuer.CreateToken(aliceClaims)
			require.NoError(t, err)

			verifier := tc.build(t, testSecret, time.Now())
			_, err = verifier.VerifyToken(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			token, err := tc.build(t, testSecret, time.Now()).CreateToken(aliceClaims)
			require.NoError(t, err)

			other := tc.build(t, strings.Repeat("z", 32), time.Now())
			_, err = other.VerifyToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Tampered(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			svc := tc.build(t, testSecret, time.Now())
			token, err := svc.CreateToken(aliceClaims)
			require.NoError(t, err)

			// Flip a character in the middle of the token
			i := len(token) / 2
			replacement := "A"
			if token[i] == 'A' {
				replacement = "B"
			}
			tampered := token[:i] + replacement + token[i+1:]

			_, err = svc.VerifyToken(tampered)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Malformed(t *testing.T) {
	for _, tc := range tokenServiceCases() {
		t.Run(tc.name, func(t *testing.T) {
			svc := tc.build(t, testSecret, time.Now())

			for _, raw := range []string{"", "garbage", "a.b.c", "v4.local.nope"} {
				_, err := svc.VerifyToken(raw)
				assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
			}
		})
	}
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService(testSecret, "accounts-api", time.Hour)
	require.NoError(t, err)

	now := time.Now()
	forged := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "accounts-api",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: 42,
	})
	signed, err := forged.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RequiresExpiry(t *testing.T) {
	svc, err := NewJWTService(testSecret, "accounts-api", time.Hour)
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: "accounts-api"},
		UserID:           42,
	})
	signed, err := forged.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongIssuer(t *testing.T) {
	issuer, err := NewJWTService(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)
	token, err := issuer.CreateToken(aliceClaims)
	require.NoError(t, err)

	verifier, err := NewJWTService(testSecret, "accounts-api", time.Hour)
	require.NoError(t, err)
	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenServices_RejectBadConfig(t *testing.T) {
	_, err := NewJWTService("", "accounts-api", time.Hour)
	assert.Error(t, err)
	_, err = NewJWTService(testSecret, "accounts-api", 0)
	assert.Error(t, err)
	_, err = NewPasetoService("", "accounts-api", time.Hour)
	assert.Error(t, err)
	_, err = NewPasetoService(testSecret, "accounts-api", -time.Minute)
	assert.Error(t, err)
}
