package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// Staff roles carried in the token
const (
	RoleAdmin   = "admin"
	RoleKitchen = "kitchen"
	RoleWaiter  = "waiter"
)

// UserClaims represents the JWT claims for an authenticated staff member
type UserClaims struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var jwtConfig *config.JWTConfig

// Initialize sets the signing configuration used by the package level helpers
func Initialize(cfg *config.JWTConfig) {
	jwtConfig = cfg
}

// ValidRole reports whether role is one of the staff roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleKitchen, RoleWaiter:
		return true
	}
	return false
}

// GenerateToken creates a JWT token with staff information
func GenerateToken(email string, userID uint, role string) (string, error) {
	if jwtConfig == nil {
		return "", errors.New("JWT configuration not provided")
	}
	if !ValidRole(role) {
		return "", fmt.Errorf("unknown role %q", role)
	}

	claims := UserClaims{
		Email:  email,
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(jwtConfig.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if jwtConfig == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtConfig.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		if !ValidRole(claims.Role) {
			return nil, fmt.Errorf("token carries unknown role %q", claims.Role)
		}
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
