package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/application/metric"
	"github.com/dkazarin/molva/internal/domain/events"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
)

// CallUsecase - сигналинг голосовых звонков. Сервер пересылает события
// точка-точка через реестр сессий и отслеживает звонок ровно настолько,
// чтобы при обрыве соединения участника синтезировать call_ended
// второму. Оффлайн-адресат - молчаливый дроп, без ретраев и очередей.
type CallUsecase interface {
	HandleCallUser(ctx context.Context, callerID uuid.UUID, ev events.CallUserEvent) error
	HandleAnswerCall(ctx context.Context, calleeID uuid.UUID, ev events.AnswerCallEvent) error
	HandleHangUp(ctx context.Context, userID uuid.UUID, ev events.HangUpEvent) error

	// HandleDisconnect завершает все звонки пользователя при обрыве
	// его транспортного соединения и уведомляет вторую сторону.
	HandleDisconnect(ctx context.Context, userID uuid.UUID)
}

type callUsecase struct {
	userRepo repository.UserRepository

	sessions memory.SessionRegistry
	calls    memory.CallRegistry
}

func NewCallUsecase(
	userRepo repository.UserRepository,
	sessions memory.SessionRegistry,
	calls memory.CallRegistry,
) CallUsecase {
	return &callUsecase{
		userRepo: userRepo,
		sessions: sessions,
		calls:    calls,
	}
}

func (uc *callUsecase) HandleCallUser(ctx context.Context, callerID uuid.UUID, ev events.CallUserEvent) error {
	caller, err := uc.userRepo.GetUserByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("get caller: %w", err)
	}

	if !uc.sessions.IsOnline(ev.TargetUserID) {
		// Адресат не в сети: приглашение молча пропадает, медиа-слой
		// на стороне звонящего отвалится по своему таймауту
		metric.IncrementDeliveryDropped("offline")
		return nil
	}

	uc.calls.Start(callerID, ev.TargetUserID, ev.ChannelName)

	env, err := events.NewEnvelope(events.TypeIncomingCall, events.IncomingCallEvent{
		CallerID:       callerID,
		CallerUsername: caller.Username,
		ChannelName:    ev.ChannelName,
		Token:          ev.Token,
	})
	if err != nil {
		return err
	}

	if !uc.sessions.Write(ev.TargetUserID, env) {
		uc.calls.End(callerID, ev.TargetUserID)
		metric.IncrementDeliveryDropped("offline")

		return nil
	}

	metric.IncrementCallSignal(events.TypeIncomingCall)

	return nil
}

func (uc *callUsecase) HandleAnswerCall(ctx context.Context, calleeID uuid.UUID, ev events.AnswerCallEvent) error {
	if !uc.calls.Answer(ev.CallerID, calleeID) {
		slog.Info(
			"answer for untracked call",
			slog.Any(constant.UserID, calleeID),
		)
	}

	env, err := events.NewEnvelope(events.TypeCallAnswered, events.CallAnsweredEvent{})
	if err != nil {
		return err
	}

	// Звонящий мог отвалиться во время дозвона - тогда молча дропаем
	if !uc.sessions.Write(ev.CallerID, env) {
		uc.calls.End(ev.CallerID, calleeID)
		metric.IncrementDeliveryDropped("offline")

		return nil
	}

	metric.IncrementCallSignal(events.TypeCallAnswered)

	return nil
}

func (uc *callUsecase) HandleHangUp(ctx context.Context, userID uuid.UUID, ev events.HangUpEvent) error {
	// Используется и для отбоя, и для отклонения входящего
	uc.calls.End(userID, ev.OtherUserID)

	env, err := events.NewEnvelope(events.TypeCallEnded, events.CallEndedEvent{})
	if err != nil {
		return err
	}

	if !uc.sessions.Write(ev.OtherUserID, env) {
		metric.IncrementDeliveryDropped("offline")
		return nil
	}

	metric.IncrementCallSignal(events.TypeCallEnded)

	return nil
}

func (uc *callUsecase) HandleDisconnect(ctx context.Context, userID uuid.UUID) {
	ended := uc.calls.EndAllFor(userID)
	if len(ended) == 0 {
		return
	}

	env, err := events.NewEnvelope(events.TypeCallEnded, events.CallEndedEvent{})
	if err != nil {
		return
	}

	for _, call := range ended {
		if !uc.sessions.Write(call.Peer(userID), env) {
			metric.IncrementDeliveryDropped("offline")
			continue
		}

		metric.IncrementCallSignal(events.TypeCallEnded)
	}
}
