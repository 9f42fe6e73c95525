package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/app"
	"github.com/ignatzorin/freelance-marketplace/internal/config"
	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/goroutine"
	httpRouter "github.com/ignatzorin/freelance-marketplace/internal/http/router"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/persistence"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/mirror"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/account"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
	"github.com/ignatzorin/freelance-marketplace/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.IsProduction() {
		logger.Init("info")
	} else {
		logger.Init("debug")
		logger.SetTextFormatter()
	}
	appLog := logger.Component("main")

	if err := validation.RegisterBindingRules(); err != nil {
		appLog.WithError(err).Fatal("Не удалось зарегистрировать правила валидации")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, os.DirFS(cfg.MigrationsPath)); err != nil {
		appLog.WithError(err).Fatal("Ошибка миграций")
	}

	// Кеш: Redis, если доступен, иначе память процесса.
	mem := cache.NewMemory()
	goroutine.SafeGoWithContext(ctx, "cache-cleanup", func(ctx context.Context) {
		mem.RunCleanup(ctx, time.Minute)
	})
	redisCache := cache.NewRedis(ctx, cfg.RedisURL)
	defer func() { _ = redisCache.Close() }()

	var appCache account.Cache = mem
	if redisCache.Available() {
		appCache = redisCache
	}

	media, err := storage.NewMediaStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		appLog.WithError(err).Fatal("Не удалось подготовить файловое хранилище")
	}

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	// Репозитории.
	tx := persistence.NewTransactor(dbConn)
	outbox := persistence.NewOutboxRepositoryAdapter(dbConn)
	repos := app.Repositories{
		Users:       persistence.NewUserRepositoryAdapter(dbConn, tx),
		Freelancers: persistence.NewFreelancerRepositoryAdapter(dbConn),
		Skills:      persistence.NewSkillRepositoryAdapter(dbConn),
		Reviews:     persistence.NewReviewRepositoryAdapter(dbConn),
		Listings:    persistence.NewListingRepositoryAdapter(dbConn, tx),
		Interests:   persistence.NewInterestRepositoryAdapter(dbConn),
		Chats:       persistence.NewChatRepositoryAdapter(dbConn),
		Messages:    persistence.NewMessageRepositoryAdapter(dbConn, tx),
		Outbox:      outbox,
		Tx:          tx,
	}

	handlers := app.NewHandlers(repos, app.Services{
		Hasher:    service.NewPasswordHasher(cfg.BcryptCost),
		Tokens:    tokens,
		Blacklist: cache.NewTokenBlacklist(redisCache, mem),
		Cache:     appCache,
		CacheTTL:  cfg.CacheTTL,
		Media:     media,
		Notifier:  hub,
	})

	checks := map[string]handler.Pinger{"database": dbConn}
	if redisCache.Available() {
		checks["redis"] = handler.PingFunc(redisCache.Ping)
	}
	handlers.Health = handler.NewHealthHandler(checks)
	handlers.WS = handler.NewWSHandler(hub, tokens, cfg.AllowedOrigins)

	if cfg.MirrorEnabled() {
		worker := mirror.NewWorker(outbox, tx, mirror.NewClient(cfg.MirrorBaseURL, cfg.MirrorAPIKey, cfg.MirrorTimeout), mirror.WorkerConfig{
			PollInterval: cfg.MirrorPollInterval,
			MaxAttempts:  cfg.MirrorMaxAttempts,
		})
		worker.Start(ctx)
	} else {
		appLog.Info("MIRROR_BASE_URL не задан, синхронизация с зеркалом выключена")
	}

	engine := httpRouter.SetupRouter(httpRouter.Options{
		Production:      cfg.IsProduction(),
		AllowedOrigins:  cfg.AllowedOrigins,
		MediaRoot:       cfg.MediaStoragePath,
		RateLimitLimit:  cfg.RateLimitLimit,
		RateLimitPeriod: cfg.RateLimitPeriod,
	}, handlers, tokens)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Ошибка остановки http сервера")
		}
	}()

	appLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.WithError(err).Fatal("Сервер завершился с ошибкой")
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Error("Ошибка закрытия базы")
	}
}
