package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/infra/ports/http/dto"
	"github.com/dkazarin/molva/internal/usecase"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	userUsecase usecase.UserUsecase
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, userUsecase usecase.UserUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase, userUsecase: userUsecase}
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ContactID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "contact_id is required"})
	}

	chatID, created, err := h.chatUsecase.CreateChat(c.Request().Context(), userID, req.ContactID)
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "user is not in your contacts"})
	case err != nil:
		slog.Error("create chat failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create chat"})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return c.JSON(status, dto.CreateChatResponse{ChatID: chatID})
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	chats, err := h.chatUsecase.ListChats(c.Request().Context(), userID)
	if err != nil {
		slog.Error("list chats failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list chats"})
	}

	return c.JSON(http.StatusOK, chats)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
	}

	messages, err := h.chatUsecase.GetMessages(c.Request().Context(), userID, chatID)
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "chat not found"})
	case err != nil:
		slog.Error("get messages failed", slog.Any(constant.Error, err), slog.Any(constant.ChatID, chatID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not get messages"})
	}

	resp := make([]dto.MessageResponse, 0, len(messages))

	// Имена отправителей подтягиваем по одному - в личном чате их два,
	// кэшируем чтобы не ходить в базу на каждое сообщение
	names := make(map[uuid.UUID]string, 2)

	for _, msg := range messages {
		name, ok := names[msg.SenderID]
		if !ok {
			sender, err := h.userUsecase.GetUserByID(c.Request().Context(), msg.SenderID)
			if err != nil {
				continue
			}

			name = sender.Username
			names[msg.SenderID] = name
		}

		resp = append(resp, dto.NewMessageResponse(msg, name))
	}

	return c.JSON(http.StatusOK, resp)
}
