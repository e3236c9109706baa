package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "go-blog-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小。声明了 Content-Length 的超限请求直接 413，
// chunked 请求由 MaxBytesReader 在读取时兜底截断
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.ErrorMsg(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
