package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := NewJWT("my-secret-key")

	userID := int64(123)
	email := "test@example.com"

	token, err := j.Generate(userID, email)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}

	claims, err := j.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("Validate() got UserID %d, want %d", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("Validate() got Email %s, want %s", claims.Email, email)
	}
}

func TestJWT_TamperedSignature(t *testing.T) {
	j := NewJWT("my-secret-key")

	token, _ := j.Generate(1, "a@b.com")
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + "invalid-signature"

	_, err := j.Validate(tampered)
	if err == nil {
		t.Error("Validate() accepted tampered signature")
	}
}

func TestJWT_InvalidFormat(t *testing.T) {
	j := NewJWT("my-secret-key")

	_, err := j.Validate("invalid.token")
	if err == nil {
		t.Error("Validate() accepted invalid format")
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	j1 := NewJWT("secret-one")
	j2 := NewJWT("secret-two")

	token, _ := j1.Generate(1, "a@b.com")
	_, err := j2.Validate(token)
	if err == nil {
		t.Error("Validate() accepted token signed with different secret")
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := NewJWT("my-secret-key")

	claims := Claims{
		UserID: 1,
		Email:  "expired@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	_, err = j.Validate(token)
	if err == nil {
		t.Error("Validate() accepted expired token")
	}
}

func TestJWT_RejectsUnexpectedSigningMethod(t *testing.T) {
	j := NewJWT("my-secret-key")

	// alg=none token with valid-looking claims
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 1,
		Email:  "none@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	_, err = j.Validate(token)
	if err == nil {
		t.Error("Validate() accepted token with alg=none")
	}
}
