package router

import (
	"chat_relay_service/internal/api/handlers"
	chatapp "chat_relay_service/internal/chat/app"
	"chat_relay_service/internal/chat/hub"
	chatrouter "chat_relay_service/internal/chat/router"
	memberapp "chat_relay_service/internal/member/app"
	"chat_relay_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Handlers everything RegisterRoutes mounts.
type Handlers struct {
	Member    *memberapp.MemberHandler
	Chat      *chatapp.ChatHandler
	Websocket *chatapp.ChatWebsocketHandler
	Registry  *hub.Registry
	Verifier  middlewares.TokenVerifier
}

// RegisterRoutes 注册所有路由
// @title Chat Relay Service API
// @version 1.0
// @description Real-time chat message relay: auth, one-shot send, read receipts, history and groups
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)
	app.Get("/online", handlers.Online(h.Registry))

	memberRoutes := app.Group("/auth")
	memberRoutes.Post("/register", h.Member.Register)
	memberRoutes.Post("/login", h.Member.Login)
	memberRoutes.Post("/logout", middlewares.JWTMiddleware(h.Verifier), h.Member.Logout)

	chatrouter.RegisterRoutes(app, h.Chat, h.Websocket, h.Verifier)
}
