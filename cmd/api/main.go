package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/seed"
	"shareit/internal/service"
	"shareit/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	metrics.SubscribeBookingEvents(eventBus)

	svcLogger := logging.Component(logger, "service")
	users := service.NewUserService(db, svcLogger)
	items := service.NewItemService(db, time.Now, svcLogger)

	if err := applySeed(ctx, users, items, logger); err != nil {
		return err
	}

	sinks := initSinks(ctx, cfg, logger)
	if len(sinks) > 0 {
		notifier := worker.NewNotificationWorker(db, sinks, redisClient, worker.DefaultRetryPolicy,
			logging.Component(logger, "notifications"))
		notifier.Subscribe(eventBus)
		go notifier.Start(ctx)
	}

	httpServer := api.NewHTTPServer(cfg.API, api.Services{
		Bookings: service.NewBookingService(db, eventBus, time.Now, svcLogger),
		Items:    items,
		Comments: service.NewCommentService(db, eventBus, time.Now, svcLogger),
		Users:    users,
		Requests: service.NewRequestService(db, time.Now, svcLogger),
		Quota:    initQuota(redisClient, logger),
		Store:    db,
	}, logging.Component(logger, "http"))

	grpcServer, err := api.NewGRPCServer(cfg.API.GRPC, db, logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}
	go grpcServer.WatchStore(ctx, 15*time.Second)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, logging.Component(logger, "backup"))
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func applySeed(ctx context.Context, users *service.UserService, items *service.ItemService, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		return nil
	}
	f, err := seed.Load(seedPath)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("load seed")
		return err
	}
	if _, err := seed.Apply(ctx, f, users, items, logger); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("apply seed")
		return err
	}
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initQuota(redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimitRepository {
	memory := repository.NewMemoryQuotaRepository()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverQuotaRepository(repository.NewRedisQuotaRepository(redisClient), memory,
		logging.Component(logger, "quota"))
}

func initSinks(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) []worker.Sink {
	if !cfg.Notifications.Enabled {
		return nil
	}
	var sinks []worker.Sink

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(tg.BotToken)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without telegram")
		} else {
			bot.Debug = tg.Debug
			logger.Info().Str("bot", bot.Self.UserName).Msg("telegram connected")
			sinks = append(sinks, service.NewTelegramService(bot, tg.ChatID))
		}
	}

	if g := cfg.Notifications.Google; g.CredentialsFile != "" && g.BookingsSpreadsheetID != "" {
		ledger, err := initSheets(ctx, g, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		} else {
			sinks = append(sinks, ledger)
		}
	}
	return sinks
}

func initSheets(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*google.SheetsLedger, error) {
	ledger, err := google.NewSheetsLedger(ctx, cfg.CredentialsFile, cfg.BookingsSpreadsheetID)
	if err != nil {
		return nil, err
	}
	if err := ledger.TestConnection(ctx); err != nil {
		return nil, err
	}
	if err := ledger.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	if err := ledger.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("sheets cache warm-up failed")
	}
	logger.Info().Msg("google sheets connected")
	return ledger, nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	go func() {
		if err := grpcServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Str("grpc_addr", grpcServer.Addr()).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
