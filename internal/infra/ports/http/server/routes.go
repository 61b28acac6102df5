package server

import (
	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/config"
	"github.com/dkazarin/molva/internal/infra/ports/http/handlers"
	"github.com/dkazarin/molva/internal/infra/ports/http/middleware"
	"github.com/dkazarin/molva/internal/infra/storage"
)

func New(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	contactHandler *handlers.ContactHandler,
	chatHandler *handlers.ChatHandler,
	messageHandler *handlers.MessageHandler,
	uploadHandler *handlers.UploadHandler,
	rtcHandler *handlers.RTCHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/me", authHandler.GetMe)

			v1.GET("/users/search", authHandler.SearchUsers)
			v1.GET("/users/online", authHandler.GetOnlineUsers)

			v1.POST("/contacts", contactHandler.AddContact)
			v1.GET("/contacts", contactHandler.ListContacts)

			v1.POST("/chats", chatHandler.CreateChat)
			v1.GET("/chats", chatHandler.ListChats)
			v1.GET("/chats/:id/messages", chatHandler.GetMessages)

			v1.DELETE("/messages/:id", messageHandler.DeleteMessage)

			v1.POST("/uploads/audio", uploadHandler.UploadAudio)

			v1.POST("/rtc/token", rtcHandler.Token)

			v1.GET("/ws", wsHandler.Handle)
		}
	}

	// Голосовые сообщения раздаются статикой
	e.Static(storage.PublicPrefix, cfg.UploadDir)

	return e
}
