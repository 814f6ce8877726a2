package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mrlokans/mymotiv/internal/apperrors"
	"github.com/mrlokans/mymotiv/internal/entities"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are carried by both token types. The type claim keeps a refresh
// token from being accepted as an access token and vice versa.
type Claims struct {
	UserID   string    `json:"id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Issuer signs and verifies tokens with one HS256 secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *Issuer) issue(user *entities.User, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: user.ID,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if typ == TokenTypeAccess {
		claims.Username = user.Username
		claims.Email = user.Email
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, expiresAt, nil
}

// IssueAccess returns a signed access token embedding the user's identity.
func (i *Issuer) IssueAccess(user *entities.User) (string, time.Time, error) {
	return i.issue(user, TokenTypeAccess, i.accessTTL)
}

// IssueRefresh returns a signed refresh token.
func (i *Issuer) IssueRefresh(user *entities.User) (string, time.Time, error) {
	return i.issue(user, TokenTypeRefresh, i.refreshTTL)
}

// Parse verifies signature, expiry and type. Every failure is
// ErrInvalidToken.
func (i *Issuer) Parse(token string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.New(apperrors.ErrInvalidToken, "Token expired")
		}
		return nil, apperrors.New(apperrors.ErrInvalidToken, "Invalid token")
	}
	if claims.Type != want || claims.UserID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidToken, "Invalid token")
	}
	return claims, nil
}
