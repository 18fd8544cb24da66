package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/pkg/middleware"
)

const (
	testSecret = "test-secret-key-with-enough-entropy"
	testIssuer = "user-service"
)

func TestVerifier_RoundTrip(t *testing.T) {
	token, err := NewIssuer(testSecret, testIssuer, time.Hour).Issue("user-1", "a@example.com", "Alice", "customer")
	require.NoError(t, err)

	claims, err := NewVerifier(testSecret, testIssuer).Verify(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "customer", claims.Role)
}

func TestVerifier_WrongSecret(t *testing.T) {
	token, err := NewIssuer("other-secret", testIssuer, time.Hour).Issue("user-1", "", "", "")
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, testIssuer).Verify(token)
	assert.Error(t, err)
}

func TestVerifier_Expired(t *testing.T) {
	token, err := NewIssuer(testSecret, testIssuer, -time.Minute).Issue("user-1", "", "", "")
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, testIssuer).Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifier_WrongIssuer(t *testing.T) {
	token, err := NewIssuer(testSecret, "someone-else", time.Hour).Issue("user-1", "", "", "")
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, testIssuer).Verify(token)
	assert.Error(t, err)

	_, err = NewVerifier(testSecret, "").Verify(token)
	assert.NoError(t, err)
}

func TestVerifier_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "").Verify(token)
	assert.Error(t, err)
}

func TestVerifier_FallsBackToSubject(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-sub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	got, err := NewVerifier(testSecret, "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-sub", got.UserID)
}

func TestVerifier_NoSubject(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewVerifier(testSecret, "").Verify(token)
	assert.Error(t, err)
}

func TestVerifier_Garbage(t *testing.T) {
	_, err := NewVerifier(testSecret, "").Verify("not.a.jwt")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", DisplayName("Alice", "a@example.com", "user-1"))
	assert.Equal(t, "a@example.com", DisplayName("  ", "a@example.com", "user-1"))
	assert.Equal(t, "user-1", DisplayName("", "", "user-1"))
}

func TestValidate_MapsClaims(t *testing.T) {
	token, err := NewIssuer(testSecret, testIssuer, time.Hour).Issue("user-1", "a@example.com", "", "admin")
	require.NoError(t, err)

	claims, err := NewVerifier(testSecret, testIssuer).Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "a@example.com", claims.Name)
}

func TestIdentityFromRequest(t *testing.T) {
	token, err := NewIssuer(testSecret, testIssuer, time.Hour).Issue("user-1", "a@example.com", "Alice", "customer")
	require.NoError(t, err)

	var (
		identity domain.Identity
		ok       bool
	)
	h := middleware.Auth(NewVerifier(testSecret, testIssuer).Validate)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok = IdentityFromRequest(r)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "Alice", identity.DisplayName)
	assert.Equal(t, "Bearer "+token, identity.Authorization)
}

func TestIdentityFromRequest_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromRequest(req)
	assert.False(t, ok)
}
