package handlers

import (
	"errors"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

var errInvalidCredentials = utils.AuthenticationError("invalid credentials")

// RegisterHandler đăng ký người dùng mới
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body models.RegisterRequest true "Registration"
// @Success  201 {object} models.UserSummary
// @Failure  400 {object} utils.APIError
// @Router   /register/ [post]
func (h *Handler) RegisterHandler(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validateRegistration(&req); err != nil {
		return err
	}

	// Hash mật khẩu, password_confirm không bao giờ được lưu
	hashedPassword, err := h.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{Username: req.Username, Email: req.Email, Password: hashedPassword}
	err = h.users.Create(c.UserContext(), user)
	if errors.Is(err, database.ErrUsernameTaken) {
		return utils.ValidationError("invalid input", map[string][]string{
			"username": {"A user with that username already exists."},
		})
	}
	if err != nil {
		return err
	}

	log.Infof("registered user %d (%s)", user.ID, user.Username)
	return c.Status(fiber.StatusCreated).JSON(user.Summary())
}

// LoginHandler trả về token của người dùng, tạo mới nếu chưa có
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body models.LoginRequest true "Credentials"
// @Success  200 {object} models.LoginResponse
// @Failure  400 {object} utils.APIError
// @Failure  401 {object} utils.APIError
// @Router   /login/ [post]
func (h *Handler) LoginHandler(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	// Kiểm tra thông tin người dùng từ database
	user, err := h.users.GetByUsername(c.UserContext(), req.Username)
	if errors.Is(err, database.ErrNotFound) {
		h.hasher.CompareDummy(req.Password)
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}

	// So khớp mật khẩu
	if err := h.hasher.Compare(user.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return errInvalidCredentials
		}
		return err
	}

	token, err := h.tokens.GetOrCreate(c.UserContext(), user.ID, func() (string, error) {
		return h.issuer.NewKey(user.ID)
	})
	if err != nil {
		return err
	}

	return c.Status(200).JSON(models.LoginResponse{User: user.Summary(), Token: token.Key})
}

// LogoutHandler xóa token đang dùng. Gọi lại với token đã xóa trả về 400.
// @Summary   Log out
// @Tags      auth
// @Produce   json
// @Security  TokenAuth
// @Success   200 {object} map[string]string
// @Failure   400 {object} utils.APIError
// @Failure   401 {object} utils.APIError
// @Router    /logout/ [post]
func (h *Handler) LogoutHandler(c *fiber.Ctx) error {
	deleted, err := h.tokens.Delete(c.UserContext(), middleware.TokenKey(c), middleware.UserID(c))
	if err != nil {
		return err
	}
	if !deleted {
		return &utils.APIError{Code: fiber.StatusBadRequest, Message: "token not found"}
	}

	return c.Status(200).JSON(fiber.Map{"message": "Successfully logged out."})
}
