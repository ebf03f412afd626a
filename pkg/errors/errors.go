// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码，按首位分段
type ErrorCode string

const (
	// 通用 (1xxx)
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 令牌 (2xxx)
	CodeTokenExpired ErrorCode = "2001"
	CodeTokenInvalid ErrorCode = "2002"
	CodeTokenMissing ErrorCode = "2003"

	// 项目与节目源 (3xxx, 4xxx)
	CodeProjectNotFound ErrorCode = "3001"
	CodeFeedNotFound    ErrorCode = "3002"
	CodeFeedParseFailed ErrorCode = "4002"

	// 依赖服务 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeUpstreamError ErrorCode = "5005"
)

// 未列出的错误码按 500 处理
var httpStatus = map[ErrorCode]int{
	CodeInvalidParam:       http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeTokenInvalid:       http.StatusUnauthorized,
	CodeTokenMissing:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeProjectNotFound:    http.StatusNotFound,
	CodeFeedNotFound:       http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeFeedParseFailed:    http.StatusUnprocessableEntity,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeUpstreamError:      http.StatusBadGateway,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// StatusOf 错误码对应的 HTTP 状态码
func StatusOf(code ErrorCode) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// AppError 携带错误码的应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

func (e *AppError) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail 返回副本，预定义错误保持不变
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回附带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return Wrap(nil, code, message)
}

// Wrap 以错误码包装 err，err 可为 nil
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: StatusOf(code), Err: err}
}

var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "permission denied")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "rate limit exceeded")
	ErrInternal           = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "invalid token")
	ErrTokenMissing = New(CodeTokenMissing, "missing or malformed authorization header")

	ErrProjectNotFound = New(CodeProjectNotFound, "project not found")
	ErrFeedNotFound    = New(CodeFeedNotFound, "feed not found")
	ErrFeedParseFailed = New(CodeFeedParseFailed, "feed could not be parsed")
	ErrUpstream        = New(CodeUpstreamError, "upstream service error")
)

// IsAppError 沿包装链查找 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 非 AppError 包装为 CodeUnknown
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
