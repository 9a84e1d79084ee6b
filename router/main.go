package router

import (
	"net/http"

	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

type Options struct {
	Verifier middleware.KeyVerifier
	Tokens   middleware.TokenLookup

	// StaticDir thay thế file JS nhúng sẵn trong web.Assets
	StaticDir string
}

func SetupRoutes(app *fiber.App, h *handlers.Handler, opts Options) {
	app.Get("/health", h.HandleHealthCheck)

	// Trang HTML
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/auth/") })
	app.Get("/auth", handlers.HandleAuthPage)
	app.Get("/api/app", handlers.HandleAppPage)
	if opts.StaticDir != "" {
		app.Static("/static", opts.StaticDir)
	} else {
		app.Use("/static", filesystem.New(filesystem.Config{
			Root:       http.FS(web.Assets),
			PathPrefix: "static",
		}))
	}

	api := app.Group("/api")
	api.Post("/register", h.RegisterHandler)
	api.Post("/login", h.LoginHandler)

	// Logout chỉ cần chữ ký hợp lệ để gọi lần hai với token đã xóa trả về 400 thay vì 401
	api.Post("/logout", middleware.TokenAuth(middleware.Config{Verifier: opts.Verifier}), h.LogoutHandler)

	todos := api.Group("/todos")
	todos.Get("/events", middleware.TokenAuth(middleware.Config{
		Verifier:   opts.Verifier,
		Tokens:     opts.Tokens,
		QueryParam: "token",
	}), h.HandleTodoEvents)

	todos.Use(middleware.TokenAuth(middleware.Config{Verifier: opts.Verifier, Tokens: opts.Tokens}))
	todos.Get("/", h.HandleAllTodos)
	todos.Post("/", h.HandleCreateTodo)
	todos.Post("/clear_completed", h.HandleClearCompleted)
	todos.Get("/:id", h.HandleGetOneTodo)
	todos.Put("/:id", h.HandleUpdateTodo)
	todos.Patch("/:id", h.HandlePatchTodo)
	todos.Delete("/:id", h.HandleDeleteTodo)
}
