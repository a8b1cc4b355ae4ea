package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches a one-week browser session.
const DefaultTokenTTL = 168 * time.Hour

// Tokens signs and verifies session tokens. Both providers issue the
// same token shape so the HTTP middleware stays provider-agnostic.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
}

func NewTokens(secret string) Tokens {
	return Tokens{Secret: []byte(secret), TTL: DefaultTokenTTL}
}

// Issue signs a token carrying the user identity.
func (t Tokens) Issue(userID, email string, now time.Time) (string, time.Time, error) {
	expires := now.Add(t.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   expires.Unix(),
		"iat":   now.Unix(),
	})
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns the user identity it carries.
func (t Tokens) Parse(tokenString string) (userID, email string, err error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	em, _ := claims["email"].(string)
	if sub == "" {
		return "", "", errors.New("token missing subject")
	}
	return sub, em, nil
}
