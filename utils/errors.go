package utils

import "github.com/gofiber/fiber/v2"

// APIError là lỗi trả về cho client dưới dạng {"error": ..., "fields": ...}
type APIError struct {
	Code    int                 `json:"-"`
	Message string              `json:"error"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError: dữ liệu đầu vào sai hoặc mâu thuẫn
func ValidationError(message string, fields map[string][]string) *APIError {
	return &APIError{Code: fiber.StatusBadRequest, Message: message, Fields: fields}
}

// AuthenticationError: thông tin đăng nhập hoặc token không hợp lệ
func AuthenticationError(message string) *APIError {
	return &APIError{Code: fiber.StatusUnauthorized, Message: message}
}

// NotFoundError: tài nguyên không tồn tại, hoặc thuộc về người dùng khác
func NotFoundError(message string) *APIError {
	return &APIError{Code: fiber.StatusNotFound, Message: message}
}
