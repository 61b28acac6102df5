package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/usecase"
)

type MessageHandler struct {
	relay usecase.MessageRelay
}

func NewMessageHandler(relay usecase.MessageRelay) *MessageHandler {
	return &MessageHandler{relay: relay}
}

// DeleteMessage удаляет сообщение и рассылает message_deleted комнате
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid message id"})
	}

	err = h.relay.Delete(c.Request().Context(), userID, messageID)
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "message not found"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "cannot delete another user's message"})
	case err != nil:
		slog.Error("delete message failed", slog.Any(constant.Error, err), slog.Any(constant.MessageID, messageID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete message"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "message deleted"})
}
