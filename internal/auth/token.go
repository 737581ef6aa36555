package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todoapi/internal/domain"
)

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject   int64
	ExpiresAt time.Time
}

// Sign issues an HS256 token for the given user id.
func Sign(subject int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subject, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secret)
}

// Verify checks signature and expiry and returns the embedded subject.
// Failures are always domain.CredentialError so the caller can classify them
// without inspecting jwt internals. Only HS256 is accepted; a token signed
// with any other method is invalid, not merely unverified.
func Verify(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		reason := domain.CredentialInvalid
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = domain.CredentialExpired
		}
		return Claims{}, domain.CredentialError{Reason: reason, Err: err}
	}

	rc, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || rc.ExpiresAt == nil {
		return Claims{}, domain.CredentialError{Reason: domain.CredentialInvalid}
	}

	subject, err := strconv.ParseInt(rc.Subject, 10, 64)
	if err != nil || subject <= 0 {
		return Claims{}, domain.CredentialError{Reason: domain.CredentialInvalid, Err: err}
	}

	return Claims{Subject: subject, ExpiresAt: rc.ExpiresAt.Time}, nil
}
