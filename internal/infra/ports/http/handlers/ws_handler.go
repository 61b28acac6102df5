package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/dkazarin/molva/internal/application/config"
	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/domain/events"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/appctx"
	"github.com/dkazarin/molva/internal/usecase"
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	sessions memory.SessionRegistry
	rooms    memory.RoomRegistry

	relay usecase.MessageRelay
	calls usecase.CallUsecase
}

func NewWebSocketHandler(
	cfg *config.Config,
	sessions memory.SessionRegistry,
	rooms memory.RoomRegistry,
	relay usecase.MessageRelay,
	calls usecase.CallUsecase,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		sessions: sessions,
		rooms:    rooms,
		relay:    relay,
		calls:    calls,
	}
}

// Handle обслуживает соединение: JWT уже проверен в middleware, без
// него до апгрейда дело не доходит. Новое соединение того же
// пользователя вытесняет старое из реестра (newest wins).
func (h *WebSocketHandler) Handle(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return fmt.Errorf("get user id from context")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	h.sessions.Register(userID, ws)
	defer h.teardown(c.Request().Context(), ws)

	err = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	if err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		default:
			_, msg, err := ws.ReadMessage()
			if err != nil {
				h.logReadError(userID, err)
				return nil
			}

			envelope := new(events.Envelope)

			if err = json.Unmarshal(msg, envelope); err != nil {
				slog.Error("unmarshal websocket message", slog.Any(constant.Error, err))
				continue
			}

			if err = h.handleEvent(c.Request().Context(), userID, envelope); err != nil {
				slog.Error(
					"handle event",
					slog.Any(constant.Error, err),
					slog.String(constant.EventType, envelope.Type),
				)
			}
		}
	}
}

// teardown выполняется при любом разрыве: чистим реестр по хендлу
// (no-op если сессию уже вытеснило новое соединение), убираем
// пользователя из комнат и завершаем его звонки.
func (h *WebSocketHandler) teardown(ctx context.Context, ws memory.Conn) {
	userID, ok := h.sessions.Unregister(ws)
	if !ok {
		return
	}

	h.rooms.LeaveAll(userID)
	h.calls.HandleDisconnect(ctx, userID)
}

func (h *WebSocketHandler) handleEvent(ctx context.Context, userID uuid.UUID, envelope *events.Envelope) error {
	switch envelope.Type {
	case events.TypeJoin:
		var ev events.JoinEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal join event: %w", err)
		}

		h.rooms.Join(ev.Room, userID)

	case events.TypeLeave:
		var ev events.LeaveEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal leave event: %w", err)
		}

		h.rooms.Leave(ev.Room, userID)

	case events.TypeSendMessage:
		var ev events.SendMessageEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal send_message event: %w", err)
		}

		if err := h.relay.Submit(ctx, userID, ev); err != nil {
			return fmt.Errorf("handle send_message: %w", err)
		}

	case events.TypeCallUser:
		var ev events.CallUserEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal call_user event: %w", err)
		}

		if err := h.calls.HandleCallUser(ctx, userID, ev); err != nil {
			return fmt.Errorf("handle call_user: %w", err)
		}

	case events.TypeAnswerCall:
		var ev events.AnswerCallEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal answer_call event: %w", err)
		}

		if err := h.calls.HandleAnswerCall(ctx, userID, ev); err != nil {
			return fmt.Errorf("handle answer_call: %w", err)
		}

	case events.TypeHangUp:
		var ev events.HangUpEvent

		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal hang_up event: %w", err)
		}

		if err := h.calls.HandleHangUp(ctx, userID, ev); err != nil {
			return fmt.Errorf("handle hang_up: %w", err)
		}

	default:
		return errors.New("unknown event type")
	}

	return nil
}

func (h *WebSocketHandler) logReadError(userID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("user disconnected from websocket", slog.Any(constant.UserID, userID))
		default:
			slog.Error("websocket close error", slog.Any(constant.Error, err))
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
		)
	}
}
