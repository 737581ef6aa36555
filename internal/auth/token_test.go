package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todoapi/internal/domain"
)

var testSecret = []byte("test-secret")

func TestSignVerifyRoundTrip(t *testing.T) {
	token, err := Sign(42, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	claims, err := Verify(token, testSecret)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.Subject != 42 {
		t.Fatalf("subject = %d, want 42", claims.Subject)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry %v should be in the future", claims.ExpiresAt)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	token, err := Sign(42, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	_, err = Verify(token, testSecret)
	var credErr domain.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if credErr.Reason != domain.CredentialExpired {
		t.Fatalf("reason = %v, want CredentialExpired", credErr.Reason)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := Sign(42, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	_, err = Verify(token, []byte("other-secret"))
	var credErr domain.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if credErr.Reason != domain.CredentialInvalid {
		t.Fatalf("reason = %v, want CredentialInvalid", credErr.Reason)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	token, err := Sign(42, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + ".eyJzdWIiOiI5OTkifQ." + parts[2]

	_, err = Verify(tampered, testSecret)
	var credErr domain.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if credErr.Reason != domain.CredentialInvalid {
		t.Fatalf("reason = %v, want CredentialInvalid", credErr.Reason)
	}
}

func TestVerifyGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := Verify(token, testSecret)
		var credErr domain.CredentialError
		if !errors.As(err, &credErr) {
			t.Fatalf("token %q: expected CredentialError, got %v", token, err)
		}
		if credErr.Reason != domain.CredentialInvalid {
			t.Fatalf("token %q: reason = %v, want CredentialInvalid", token, credErr.Reason)
		}
	}
}

func signWithSubject(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	return signed
}

func TestVerifyNonNumericSubject(t *testing.T) {
	// Token signed with the right secret but a subject that is not a user
	// id must be rejected as invalid, not passed downstream.
	token := signWithSubject(t, "abc")
	_, err := Verify(token, testSecret)
	var credErr domain.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if credErr.Reason != domain.CredentialInvalid {
		t.Fatalf("reason = %v, want CredentialInvalid", credErr.Reason)
	}
}
