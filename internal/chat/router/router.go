package router

import (
	"context"

	"chat_relay_service/internal/chat/app"
	"chat_relay_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册聊天相关的路由 under /chat. The channel authenticates in its own handshake,
// so /chat/ws sits outside the JWT middleware.
func RegisterRoutes(r fiber.Router, chatHandler *app.ChatHandler, chatWebsocket *app.ChatWebsocketHandler, verifier middlewares.TokenVerifier) {
	r.Use("/chat/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/chat/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	chatRoutes := r.Group("/chat", middlewares.JWTMiddleware(verifier))
	chatRoutes.Post("/message", chatHandler.SendMessage)
	chatRoutes.Patch("/message/:id/read", chatHandler.MarkRead)
	chatRoutes.Get("/history/:chat_id", chatHandler.History)
	chatRoutes.Post("/group", chatHandler.CreateGroup)
}
