package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-blog-api/internal/apperror"
	"go-blog-api/internal/core/auth"
	resp "go-blog-api/internal/transport/http/response"
)

const (
	KeyUserID   = "userId"
	KeyUserName = "userName"
)

// AuthJWT 受保护路由的准入：没有合法 Bearer token 一律 403，绝不静默放行
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			resp.Error(c, apperror.Unauthorized("authorization header required"))
			return
		}
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Error(c, apperror.Unauthorized("invalid authorization header format"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Error(c, apperror.Unauthorized("invalid or expired token"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyUserName, claims.Name)
		c.Next()
	}
}
