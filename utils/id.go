package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomID tạo 16 byte ngẫu nhiên dạng hex (32 ký tự), dùng làm jti của token
func GenerateRandomID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
