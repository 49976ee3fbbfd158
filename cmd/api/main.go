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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "loan-backoffice/internal/adapter/http"
	"loan-backoffice/internal/adapter/middleware"
	"loan-backoffice/internal/adapter/notify"
	"loan-backoffice/internal/adapter/repository/mysql"
	"loan-backoffice/internal/config"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/notification"
	"loan-backoffice/internal/infrastructure/blob"
	"loan-backoffice/internal/infrastructure/cache"
	"loan-backoffice/internal/infrastructure/db"
	"loan-backoffice/internal/infrastructure/logging"
	"loan-backoffice/internal/usecase"
	"loan-backoffice/internal/usecase/account"
	"loan-backoffice/internal/usecase/application"
	"loan-backoffice/internal/usecase/notifier"
	"loan-backoffice/internal/usecase/purge"
	"loan-backoffice/internal/usecase/restoration"
	"loan-backoffice/internal/usecase/softdelete"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		return err
	}
	if err := mysql.AutoMigrate(gdb); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	blobs, err := blob.NewMinioStore(ctx, blob.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return err
	}

	sender, closeSender, err := newSender(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSender()

	u := mysql.NewGormUoW(gdb)
	deps := usecase.Deps{
		Repos:    u.Repos(),
		UoW:      u,
		Authz:    authz.DefaultPolicy(),
		Notifier: notifier.New(sender, logger),
		Logger:   logger,
	}

	appUC := application.NewUsecase(deps, blobs)
	softUC := softdelete.NewUsecase(deps)
	purgeUC := purge.NewUsecase(deps, blobs)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	// the body limit runs ahead of the group-level idempotency guard
	e.Use(echomw.Recover(), requestLogger(logger), middleware.BodyLimit(cfg.MaxUploadBytes))

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"mysql": db.Pinger(gdb),
			"redis": cache.Pinger(rdb),
		}),
		Applications: httpadp.NewApplicationHandler(appUC, softUC, purgeUC, cfg.MaxUploadBytes),
		Accounts:     httpadp.NewAccountHandler(account.NewUsecase(deps), softUC),
		Restorations: httpadp.NewRestorationHandler(restoration.NewUsecase(deps, cfg.AdminInbox)),
	}, middleware.Idempotency(rdb, cfg.IdempotencyTTL(), logger))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notification.Sender, func(), error) {
	switch cfg.Notifier {
	case config.NotifierSES:
		s, err := notify.NewSESSender(ctx, cfg.SESRegion, cfg.SESFrom)
		return s, func() {}, err
	case config.NotifierKafka:
		w := notify.NewKafkaWriter(cfg.Brokers())
		return notify.NewKafkaSender(w, cfg.KafkaTopic), func() { _ = w.Close() }, nil
	default:
		return notify.NewLogSender(logger), func() {}, nil
	}
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	l := logger.Named("http")
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				l.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			l.Info("request", fields...)
			return nil
		},
	})
}
