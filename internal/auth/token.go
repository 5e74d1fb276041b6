package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the session token.
const CookieName = "jwt"

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = 7 * 24 * time.Hour

type (
	// Denylist records revoked tokens until they expire. Implemented by the
	// redis service; logout adds the live token here.
	Denylist interface {
		Deny(ctx context.Context, token string, ttl time.Duration) error
		IsDenied(ctx context.Context, token string) (bool, error)
	}

	// Service issues and validates session tokens.
	Service struct {
		secret   []byte
		denylist Denylist
		now      func() time.Time
	}

	claims struct {
		UserID string `json:"userId"`
		jwt.RegisteredClaims
	}
)

func NewService(secret string, denylist Denylist) *Service {
	return &Service{
		secret:   []byte(secret),
		denylist: denylist,
		now:      time.Now,
	}
}

// IssueToken creates a signed session token for the given user id.
func (s *Service) IssueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

// ValidateToken parses a session token and returns the user id it was
// issued for. Revoked tokens fail validation.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid || c.UserID == "" {
		return "", fmt.Errorf("invalid token")
	}

	if s.denylist != nil {
		denied, err := s.denylist.IsDenied(ctx, tokenString)
		if err != nil {
			return "", fmt.Errorf("checking denylist: %w", err)
		}
		if denied {
			return "", fmt.Errorf("token revoked")
		}
	}
	return c.UserID, nil
}

// RevokeToken denylists a token for the remainder of its lifetime. Tokens
// that fail to parse are ignored; there is nothing to revoke.
func (s *Service) RevokeToken(ctx context.Context, tokenString string) error {
	if s.denylist == nil {
		return nil
	}

	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil
	}

	if c.ExpiresAt == nil {
		return nil
	}

	ttl := c.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Deny(ctx, tokenString, ttl)
}
