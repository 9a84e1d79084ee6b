package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type TokenStore interface {
	GetOrCreate(ctx context.Context, userID int64, newKey func() (string, error)) (*models.AuthToken, error)
	Lookup(ctx context.Context, key string) (*models.AuthToken, error)
	Delete(ctx context.Context, key string, userID int64) (bool, error)
}

type TodoStore interface {
	List(ctx context.Context, ownerID int64, completed *bool) ([]models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Get(ctx context.Context, ownerID, id int64) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, ownerID, id int64) error
	ClearCompleted(ctx context.Context, ownerID int64) (int64, error)
}

type KeyIssuer interface {
	NewKey(userID int64) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	CompareDummy(password string)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Config struct {
	Users  UserStore
	Tokens TokenStore
	Todos  TodoStore
	Issuer KeyIssuer
	Hasher PasswordHasher

	// Hub phục vụ luồng SSE; Events nhận mọi thay đổi todo (mặc định là Hub)
	Hub    *events.Hub
	Events events.Publisher

	// DB dùng cho health check, có thể nil
	DB Pinger
}

// Handler giữ các dependency của mọi endpoint
type Handler struct {
	users  UserStore
	tokens TokenStore
	todos  TodoStore
	issuer KeyIssuer
	hasher PasswordHasher
	hub    *events.Hub
	events events.Publisher
	db     Pinger
}

func New(cfg Config) *Handler {
	h := &Handler{
		users:  cfg.Users,
		tokens: cfg.Tokens,
		todos:  cfg.Todos,
		issuer: cfg.Issuer,
		hasher: cfg.Hasher,
		hub:    cfg.Hub,
		events: cfg.Events,
		db:     cfg.DB,
	}
	if h.hub == nil {
		h.hub = events.NewHub()
	}
	if h.events == nil {
		h.events = h.hub
	}
	return h
}

// ErrorHandler chuyển mọi lỗi trả về từ handler/middleware thành JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr *utils.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Code).JSON(apiErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// HandleHealthCheck godoc
// @Summary  Health check
// @Tags     system
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} map[string]string
// @Router   /health [get]
func (h *Handler) HandleHealthCheck(c *fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			log.Warnf("health check: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.Status(200).JSON(fiber.Map{"status": "ok"})
}
