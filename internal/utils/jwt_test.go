package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenClaims(t *testing.T) {
    tok, err := NewAccessToken("secret", 42, "RECEPTION", "desk@example.com", time.Hour)
    if err != nil {
        t.Fatalf("sign: %v", err)
    }
    parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
    if err != nil || !parsed.Valid {
        t.Fatalf("parse: %v", err)
    }
    claims := parsed.Claims.(jwt.MapClaims)
    if claims["sub"] != float64(42) || claims["role"] != "RECEPTION" || claims["email"] != "desk@example.com" {
        t.Fatalf("unexpected claims: %v", claims)
    }
    if time.Until(tok.Exp) <= 59*time.Minute {
        t.Fatalf("unexpected expiry %s", tok.Exp)
    }
}

func TestNewAccessTokenOmitsEmptyEmail(t *testing.T) {
    tok, err := NewAccessToken("secret", 1, "CLIENT", "", time.Minute)
    if err != nil {
        t.Fatalf("sign: %v", err)
    }
    parsed, _ := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
    if _, ok := parsed.Claims.(jwt.MapClaims)["email"]; ok {
        t.Fatalf("email claim should be omitted")
    }
}
