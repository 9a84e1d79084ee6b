package config

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/biosecret/go-todo/docs"
)

// AddSwaggerRoutes phục vụ Swagger UI tại /swagger/, đọc tài liệu từ package docs
func AddSwaggerRoutes(app *fiber.App) {
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:        "go-todo API",
		DeepLinking:  true,
		DocExpansion: "list",
	}))
}
