package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"strappon/internal/auth"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/utils"
)

const (
	userIDKey = "user_id"
	userKey   = "user"
)

// UserResolver loads the user owning a stored token.
type UserResolver func(ctx context.Context, tokenID string) (models.User, error)

// Auth requires a valid bearer token whose token row still exists.
func Auth(signer auth.Signer, resolve UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := signer.Parse(auth.BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			unauthorized(c, "missing or invalid token")
			return
		}
		user, err := resolve(c.Request.Context(), claims.ID)
		switch {
		case err == nil:
		case domain.IsNotFound(err):
			unauthorized(c, "token revoked")
			return
		default:
			utils.LogError(GetRequestID(c), "auth", "resolve", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "internal error",
				"code":       "internal_error",
				"request_id": GetRequestID(c),
			})
			return
		}
		if user.ID != claims.UserID {
			unauthorized(c, "token does not match user")
			return
		}
		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// CurrentUserID returns the authenticated caller, empty on public routes.
func CurrentUserID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
