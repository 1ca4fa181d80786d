// Package auth issues and validates HS256 session tokens for logged-in
// accounts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"github.com/dmitrijs2005/unidesk/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the username in "sub" and the role at issue time.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// Session is the validated content of a token.
type Session struct {
	ID        string
	Username  string
	Role      models.Role
	ExpiresAt time.Time
}

// nowFunc is a seam for tests.
var nowFunc = time.Now

// IssueToken signs a token for account valid for ttl.
func IssueToken(account *models.Account, secretKey []byte, ttl time.Duration) (string, error) {
	if account == nil {
		return "", errors.New("issue token: nil account")
	}

	now := nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: account.Role,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates the signature and expiry of tokenString.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Session{
		ID:        claims.ID,
		Username:  claims.Subject,
		Role:      models.NormalizeRole(claims.Role.String()),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
