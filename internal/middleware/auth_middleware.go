package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"ecoride/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and puts the user id and role into
// the request context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		userID := claims.UserID
		if userID == 0 && claims.Subject != "" {
			userID, err = strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user id in token")
				c.Abort()
				return
			}
		}

		c.Set("user_id", userID)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// AdminRequired ensures the authenticated user is an admin.
func AdminRequired() gin.HandlerFunc {
	return requireRole("admin", "Admin access required")
}

// DriverRequired ensures the authenticated user is a driver.
func DriverRequired() gin.HandlerFunc {
	return requireRole("driver", "Driver access required")
}

func requireRole(role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "User role not found")
			c.Abort()
			return
		}

		roleStr, ok := userRole.(string)
		if !ok || (roleStr != role && roleStr != "admin") {
			utils.ForbiddenResponse(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}
