package apperr

import "net/http"

// AppError carries an HTTP status alongside the message so handlers can map
// storage failures to responses without switching on error strings.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Common errors
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "Invalid request parameters")
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized access")
	ErrForbidden      = New(http.StatusForbidden, "Access denied")
	ErrNotFound       = New(http.StatusNotFound, "Resource not found")
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error")
	ErrRateLimit      = New(http.StatusTooManyRequests, "Rate limit exceeded")
)

func BadRequest(msg string) *AppError {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return New(http.StatusForbidden, msg)
}

func NotFound(msg string) *AppError {
	return New(http.StatusNotFound, msg)
}

func Internal(msg string) *AppError {
	return New(http.StatusInternalServerError, msg)
}
