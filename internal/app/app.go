package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncroom/server/internal/controller"
	"github.com/syncroom/server/internal/repository/room/redis"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/ctxlogger"
	"github.com/syncroom/server/pkg/redisclient"
	"github.com/syncroom/server/pkg/ytmeta"
)

type AppConfig struct {
	Host             string `json:"host"`
	Port             int    `json:"port"`
	LogLevel         string `json:"log_level"`
	QueueLimit       int    `json:"queue_limit"`
	DriftThresholdMs int    `json:"drift_threshold_ms"`
	SuppressWindowMs int    `json:"suppress_window_ms"`
	PromoteAttempts  int    `json:"promote_attempts"`
	RedisPort        int    `json:"redis_port"`
	RedisHost        string `json:"redis_host"`
	RedisPassword    string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.QueueLimit < 1 {
		return fmt.Errorf("queue limit must be greater than 0")
	}
	if cfg.DriftThresholdMs < 100 {
		return fmt.Errorf("drift threshold must be at least 100ms")
	}
	if cfg.PromoteAttempts < 1 {
		return fmt.Errorf("promote attempts must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := redis.NewRepo(rc, 24*14*time.Hour)
	metaFetcher := ytmeta.NewFetcher(&http.Client{Timeout: 5 * time.Second})
	roomService := room.NewService(roomRepo, metaFetcher, logger, &room.Config{
		QueueLimit:      cfg.QueueLimit,
		PromoteAttempts: cfg.PromoteAttempts,
		DriftThreshold:  time.Duration(cfg.DriftThresholdMs) * time.Millisecond,
		SuppressWindow:  time.Duration(cfg.SuppressWindowMs) * time.Millisecond,
	})
	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
