package middleware

import (
	"net/http"
	"strings"

	"github.com/carebridge/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. A pending token only proves the password check passed; it
// becomes a session token after the second factor is verified.
const (
	ScopeSession    = "session"
	ScopeMFAPending = "mfa_pending"
	ScopeReset      = "password_reset"
)

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func requireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if s, _ := claims["scope"].(string); s != scope {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if userID, ok := claims["user_id"].(string); ok {
			c.Set("userID", userID)
		}
		if email, ok := claims["email"].(string); ok {
			c.Set("userEmail", email)
		}

		c.Next()
	}
}

// AuthMiddleware admits fully authenticated sessions only.
func AuthMiddleware() gin.HandlerFunc {
	return requireScope(ScopeSession)
}

// PendingAuthMiddleware admits the short-lived token issued between the
// password check and second-factor verification.
func PendingAuthMiddleware() gin.HandlerFunc {
	return requireScope(ScopeMFAPending)
}

// OptionalAuthMiddleware attaches the identity when a valid session token
// is presented and continues anonymously otherwise. The public wizard uses
// it so authenticated visitors are recorded as the lead's creator.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := parseToken(tokenString); err == nil {
				if s, _ := claims["scope"].(string); s == ScopeSession {
					if userID, ok := claims["user_id"].(string); ok {
						c.Set("userID", userID)
					}
				}
			}
		}
		c.Next()
	}
}
