// Package token issues and validates batch tokens. A batch token binds the
// storage keys issued for one credential batch to the confirmation call, so
// a client can only confirm keys it was actually granted.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ameledin/studiovault/internal/common"
)

// Claims carries the collection and the exact set of issued storage keys.
type Claims struct {
	jwt.RegisteredClaims
	CollectionID string   `json:"collection_id"`
	Keys         []string `json:"keys"`
}

// GenerateBatchToken signs a token binding the issued keys to a collection.
func GenerateBatchToken(collectionID string, keys []string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		CollectionID: collectionID,
		Keys:         keys,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseBatchToken validates the token and returns the collection and issued
// keys. Expiry maps to common.ErrBatchTokenExpired, any other failure to
// common.ErrInvalidBatchToken.
func ParseBatchToken(tokenString string, secretKey []byte) (string, []string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", nil, common.ErrBatchTokenExpired
		}
		return "", nil, common.ErrInvalidBatchToken
	}

	if !token.Valid {
		return "", nil, common.ErrInvalidBatchToken
	}

	return claims.CollectionID, claims.Keys, nil
}
