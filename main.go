package main

import (
	"chat_relay_service/internal/api/router"

	"github.com/gofiber/fiber/v2"
)

// 此程式用於 init swagger
// swag init -g main.go -o ./cmd/chat_service/docs
func main() {
	app := fiber.New()

	router.RegisterRoutes(app, router.Handlers{})
}
