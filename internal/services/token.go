package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"taskroom/internal/apperrors"
)

// Token purposes. A token only authenticates the purpose it was issued for.
const (
	PurposeAccess            = "access"
	PurposeEmailVerification = "email_verification"
)

// Claims is the JWT payload issued by TokenManager.
type Claims struct {
	UserID  string `json:"id"`
	Purpose string `json:"purpose"`
	jwt.StandardClaims
}

// TokenManager issues and verifies HS256 signed tokens.
type TokenManager struct {
	secret          []byte
	accessTTL       time.Duration
	verificationTTL time.Duration
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secret string, accessTTL, verificationTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:          []byte(secret),
		accessTTL:       accessTTL,
		verificationTTL: verificationTTL,
	}
}

// Issue signs a token for userID valid for the TTL configured for purpose.
func (m *TokenManager) Issue(userID, purpose string) (string, error) {
	ttl := m.accessTTL
	if purpose == PurposeEmailVerification {
		ttl = m.verificationTTL
	}
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Parse verifies tokenString and checks that it was issued for purpose.
func (m *TokenManager) Parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, err, "Invalid or expired token")
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	if claims.Purpose != purpose {
		return nil, apperrors.Unauthorized("Token was not issued for %s", purpose)
	}
	return claims, nil
}
