package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	id := Identity{UserID: 42, Role: "AGENT", Matricule: "12345", Nom: "Ben Salah", Prenom: "Karim"}
	tok, err := NewAccessToken("secret", id, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if time.Until(tok.Exp) > 15*time.Minute || time.Until(tok.Exp) < 14*time.Minute {
		t.Errorf("expiry %v not ~15m out", tok.Exp)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v (valid=%v)", err, parsed != nil && parsed.Valid)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"].(float64) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != "AGENT" || claims["matricule"] != "12345" {
		t.Errorf("claims = %v", claims)
	}
	if claims["nom"] != "Ben Salah" || claims["prenom"] != "Karim" {
		t.Errorf("name claims = %v", claims)
	}

	// Wrong secret must not validate.
	if p, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}); err == nil && p.Valid {
		t.Error("token validated under wrong secret")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	a, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, _ := NewRefreshToken(30)
	if a.Raw == b.Raw {
		t.Error("two refresh tokens are identical")
	}
	if len(a.Raw) != 96 {
		t.Errorf("raw length = %d, want 96", len(a.Raw))
	}
	if HashRefreshRaw(a.Raw) != HashRefreshRaw(a.Raw) {
		t.Error("hash is not deterministic")
	}
	if HashRefreshRaw(a.Raw) == HashRefreshRaw(b.Raw) {
		t.Error("distinct tokens hash equal")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
