package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-blog-api/internal/apperror"
)

// Envelope 带 success 标记的数据响应
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func OK(c *gin.Context, data any) { c.JSON(http.StatusOK, data) }

func Created(c *gin.Context, data any) { c.JSON(http.StatusCreated, data) }

func CreatedEnvelope(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func OKEnvelope(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Error 统一错误出口：错误分类映射状态码，输出 {message} 信封。
// 未分类错误一律 500，且不把内部细节透给调用方
func Error(c *gin.Context, err error) {
	status := apperror.Status(err)
	msg := "internal server error"
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		msg = ae.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func ErrorMsg(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
