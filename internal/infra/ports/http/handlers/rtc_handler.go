package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/infra/ports/http/dto"
	"github.com/dkazarin/molva/internal/infra/rtc"
)

type RTCHandler struct {
	tokens *rtc.TokenBuilder
}

func NewRTCHandler(tokens *rtc.TokenBuilder) *RTCHandler {
	return &RTCHandler{tokens: tokens}
}

// Token выдаёт временный токен голосового канала для внешнего провайдера
func (h *RTCHandler) Token(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.RTCTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.ChannelName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "channelName is required"})
	}

	token := h.tokens.Build(req.ChannelName, userID)

	return c.JSON(http.StatusOK, dto.RTCTokenResponse{Token: token})
}
