package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/go-todo/utils"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer ký và kiểm tra token key. Key không có hạn dùng, nó chỉ mất hiệu lực khi bị xóa khỏi database.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("you must set your 'JWT_SECRET' environmental variable")
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// NewKey tạo key mới cho userID, mỗi lần gọi cho ra một key khác nhau
func (i *Issuer) NewKey(userID int64) (string, error) {
	jti, err := utils.GenerateRandomID()
	if err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(i.secret)
}

// Verify kiểm tra chữ ký và trả về user ID trong key
func (i *Issuer) Verify(key string) (int64, error) {
	var c claims
	token, err := jwt.ParseWithClaims(key, &c, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if c.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return c.UserID, nil
}
