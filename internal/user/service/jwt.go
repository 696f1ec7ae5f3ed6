package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTTL = 24 * time.Hour

type JWTManager struct {
	SecretKey string
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{SecretKey: secret}
}

// Generate signs an access token carrying the claims the auth middleware
// reads back: user id and the admin flag.
func (j *JWTManager) Generate(userID int64, email string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"email":    email,
		"is_admin": isAdmin,
		"exp":      now.Add(accessTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(j.SecretKey))
}
