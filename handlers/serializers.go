package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const minPasswordLength = 8

var (
	validate      = newValidator()
	usernameChars = regexp.MustCompile(`^[\w.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Lỗi trả về dùng tên field trong JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameChars.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// bind đọc body (JSON hoặc form) vào out
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return utils.ValidationError("malformed request body", nil)
	}
	return nil
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := map[string][]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], describe(fe))
	}
	return utils.ValidationError("invalid input", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}

// validateRegistration kiểm tra payload đăng ký, bao gồm độ mạnh và xác nhận mật khẩu
func validateRegistration(req *models.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateStruct(req); err != nil {
		return err
	}

	problems := passwordProblems(req.Password, req.Username, req.Email)
	if req.Password != req.PasswordConfirm {
		problems = append(problems, "Password fields didn't match.")
	}
	if len(problems) > 0 {
		return utils.ValidationError("invalid password", map[string][]string{"password": problems})
	}
	return nil
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "11111111": {},
	"abc12345": {}, "abcd1234": {}, "letmein1": {}, "admin123": {}, "welcome1": {},
	"baseball": {}, "football": {}, "sunshine": {}, "princess": {}, "superman": {},
	"trustno1": {}, "passw0rd": {}, "starwars": {}, "whatever": {}, "changeme": {},
}

// passwordProblems áp dụng chính sách mật khẩu: độ dài tối thiểu, không phổ biến,
// không chỉ gồm chữ số, không giống username hoặc phần trước @ của email
func passwordProblems(password, username, email string) []string {
	var problems []string

	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}

	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		problems = append(problems, "This password is too common.")
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}

	if tooSimilar(lower, strings.ToLower(username)) {
		problems = append(problems, "The password is too similar to the username.")
	}
	local, _, _ := strings.Cut(email, "@")
	if tooSimilar(lower, strings.ToLower(local)) {
		problems = append(problems, "The password is too similar to the email address.")
	}
	return problems
}

func tooSimilar(password, attr string) bool {
	if len(attr) < 3 || password == "" {
		return false
	}
	return strings.Contains(password, attr) || strings.Contains(attr, password)
}

func validateTodo(req *models.TodoRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	return validateStruct(req)
}
