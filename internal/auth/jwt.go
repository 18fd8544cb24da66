package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhilarsid/review-service/internal/domain"
	"github.com/nikhilarsid/review-service/pkg/middleware"
)

// Claims represents the JWT claims of an access token issued by the user
// service.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier. When issuer is non-empty the iss claim
// must match it.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates tokenString.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid access token claims")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("access token has no subject")
	}
	return claims, nil
}

// Validate adapts Verify to middleware.TokenValidator.
func (v *Verifier) Validate(tokenString string) (*middleware.Claims, error) {
	c, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
		Name:   DisplayName(c.Name, c.Email, c.UserID),
	}, nil
}

// DisplayName picks the first non-blank of name, email and userID.
func DisplayName(name, email, userID string) string {
	for _, s := range []string{name, email} {
		if !domain.IsBlank(s) {
			return s
		}
	}
	return userID
}

// Issuer signs access tokens. The review service only verifies tokens in
// production; the issuer backs local tooling and tests.
type Issuer struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewIssuer creates a token issuer.
func NewIssuer(secret, issuer string, expiry time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

// Issue creates a signed access token.
func (i *Issuer) Issue(userID, email, name, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			Issuer:    i.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
