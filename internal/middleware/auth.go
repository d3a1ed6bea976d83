package middleware

import (
	"net/http"
	"strings"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/jwtutil"
	"github.com/MohammedAshfaquem/smatdine-backend/pkg/logger"
	"github.com/MohammedAshfaquem/smatdine-backend/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey = "user_id"
	RoleKey   = "user_role"
	EmailKey  = "email"
)

// AuthMiddleware verifies the staff JWT token and extracts claims
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Extract the token from the Authorization header
		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		prometheus.RecordAuthAttempt(true)

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Set(EmailKey, claims.Email)

		logger.WithContext(c, log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("role", claims.Role),
		))

		return next(c)
	}
}

// RequireRole only lets through staff whose role is one of roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}

			logger.FromContext(c).Warn("Role not allowed",
				zap.String("role", role),
				zap.Strings("allowed", roles))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}

// Actor returns the authenticated staff member set by AuthMiddleware
func Actor(c echo.Context) (userID uint, role string, ok bool) {
	userID, ok = c.Get(UserIDKey).(uint)
	if !ok {
		return 0, "", false
	}
	role, ok = c.Get(RoleKey).(string)
	return userID, role, ok
}
