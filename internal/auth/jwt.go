package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserIDKey = "userID"

	// TokenTTL is fixed; there is no refresh flow.
	TokenTTL = time.Hour
)

var (
	ErrMissingSecret = errors.New("token signing secret is not configured")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
)

type Claims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies identity tokens with a process-wide secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for userID that expires TokenTTL from now.
func (i *TokenIssuer) Issue(userID int) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Expired tokens yield ErrExpiredToken,
// every other failure yields ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserIDFromContext extracts the verified user id set by the auth middleware.
func GetUserIDFromContext(c *gin.Context) (int, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(int)
	if !ok {
		return 0, fmt.Errorf("invalid user ID type")
	}

	return id, nil
}
