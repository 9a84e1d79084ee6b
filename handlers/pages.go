package handlers

import (
	"github.com/biosecret/go-todo/web"
	"github.com/gofiber/fiber/v2"
)

// HandleAppPage trả về trang ứng dụng, mọi dữ liệu do JavaScript phía client lấy qua API
func HandleAppPage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(web.AppPage)
}

func HandleAuthPage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(web.AuthPage)
}
