package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dkazarin/molva/internal/application/config"
	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/application/metric"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
	"github.com/dkazarin/molva/internal/infra/ports/http/handlers"
	"github.com/dkazarin/molva/internal/infra/ports/http/server"
	"github.com/dkazarin/molva/internal/infra/rtc"
	"github.com/dkazarin/molva/internal/infra/storage"
	"github.com/dkazarin/molva/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	fileStore, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		slog.Error("init file store", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	userRepo := repository.NewUserRepo(dbConn)
	contactRepo := repository.NewContactRepo(dbConn)
	chatRepo := repository.NewChatRepo(dbConn)
	messageRepo := repository.NewMessageRepo(dbConn)

	sessions := memory.NewSessionRegistry()
	rooms := memory.NewRoomRegistry()
	calls := memory.NewCallRegistry()

	rtcTokens := rtc.NewTokenBuilder(cfg.RTC.AppID, cfg.RTC.Secret)

	userUsecase := usecase.NewUserUsecase([]byte(cfg.JWTSecret), userRepo, sessions)
	contactUsecase := usecase.NewContactUsecase(contactRepo, userRepo)
	chatUsecase := usecase.NewChatUsecase(chatRepo, contactRepo, userRepo, messageRepo)
	relay := usecase.NewMessageRelay([]byte(cfg.JWTSecret), messageRepo, userRepo, sessions, rooms, fileStore)
	callUsecase := usecase.NewCallUsecase(userRepo, sessions, calls)

	authHandler := handlers.NewAuthHandler(userUsecase)
	contactHandler := handlers.NewContactHandler(contactUsecase)
	chatHandler := handlers.NewChatHandler(chatUsecase, userUsecase)
	messageHandler := handlers.NewMessageHandler(relay)
	uploadHandler := handlers.NewUploadHandler(fileStore)
	rtcHandler := handlers.NewRTCHandler(rtcTokens)
	wsHandler := handlers.NewWebSocketHandler(cfg, sessions, rooms, relay, callUsecase)

	echoSrv := server.New(cfg, authHandler, contactHandler, chatHandler, messageHandler, uploadHandler, rtcHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	// Ожидаем сигнал завершения или ошибку сервера
	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	// Graceful shutdown
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
