// Package utils provides token helpers shared by the server and the
// token-issuing command.
package utils

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT along with its expiry.  Clients send it in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string
	Exp   time.Time // UTC
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The subject is
// the decimal user id; role, exp and iat are the other claims.
func NewAccessToken(secret string, userID int64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
