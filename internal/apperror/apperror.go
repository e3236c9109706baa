package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误分类哨兵，handler 用 errors.Is 归类后映射 HTTP 状态码
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrAuth         = errors.New("auth failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrIO           = errors.New("io error")
)

type AppError struct {
	Err     error  // 分类哨兵
	Message string // 面向用户的提示
	Cause   error  // 底层错误（可选）
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func Auth(message string) *AppError {
	return &AppError{Err: ErrAuth, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func NotFound(resource string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func IO(message string, cause error) *AppError {
	return &AppError{Err: ErrIO, Message: message, Cause: cause}
}

func Internal(message string, cause error) *AppError {
	return &AppError{Message: message, Cause: cause}
}

// Status 返回错误对应的 HTTP 状态码
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrAuth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
