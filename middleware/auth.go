package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
	tokenKey    = "token_key"
)

type KeyVerifier interface {
	Verify(key string) (int64, error)
}

type TokenLookup interface {
	Lookup(ctx context.Context, key string) (*models.AuthToken, error)
}

type Config struct {
	Verifier KeyVerifier

	// Tokens == nil thì chỉ kiểm tra chữ ký, không yêu cầu token còn trong database
	Tokens TokenLookup

	// QueryParam cho phép lấy token từ query string khi không có header Authorization
	QueryParam string
}

// TokenAuth xác thực header "Authorization: Token <key>" (hoặc "Bearer <key>")
func TokenAuth(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := extractKey(c, cfg.QueryParam)
		if err != nil {
			return err
		}

		// Kiểm tra chữ ký trước để không truy vấn database với key giả
		userID, err := cfg.Verifier.Verify(key)
		if err != nil {
			return utils.AuthenticationError("invalid token")
		}

		if cfg.Tokens != nil {
			token, err := cfg.Tokens.Lookup(c.UserContext(), key)
			if errors.Is(err, database.ErrNotFound) {
				return utils.AuthenticationError("invalid token")
			}
			if err != nil {
				return err
			}
			if token.UserID != userID {
				return utils.AuthenticationError("invalid token")
			}
			c.Locals(usernameKey, token.Username)
		}

		c.Locals(userIDKey, userID)
		c.Locals(tokenKey, key)
		return c.Next()
	}
}

func extractKey(c *fiber.Ctx, queryParam string) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if queryParam != "" {
			if key := c.Query(queryParam); key != "" {
				return key, nil
			}
		}
		return "", utils.AuthenticationError("authentication credentials were not provided")
	}

	scheme, key, found := strings.Cut(authHeader, " ")
	if !found || (scheme != "Token" && scheme != "Bearer") || strings.TrimSpace(key) == "" {
		return "", utils.AuthenticationError("invalid token format")
	}
	return strings.TrimSpace(key), nil
}

// UserID trả về ID người dùng đã xác thực
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}

// Username chỉ có giá trị khi Config.Tokens được thiết lập
func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(usernameKey).(string)
	return name
}

// TokenKey trả về key đã dùng để xác thực request
func TokenKey(c *fiber.Ctx) string {
	key, _ := c.Locals(tokenKey).(string)
	return key
}
