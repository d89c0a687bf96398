package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/queue"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/router"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serveCommand,
	}
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return fmt.Errorf("load cache config: %w", err)
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return fmt.Errorf("load rate limit config: %w", err)
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return fmt.Errorf("load redis config: %w", err)
	}
	amqpCfg, err := config.LoadAMQPConfig()
	if err != nil {
		return fmt.Errorf("load amqp config: %w", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		views        *cache.Views
		invalidators service.Invalidators
	)
	rdb := config.NewRedisClient(redisCfg)
	if rdb != nil {
		defer rdb.Close()
		views = cache.NewViews(rdb, cacheCfg.Prefix, cacheCfg.TTL)
		invalidators = append(invalidators, views)
	}
	pub, err := queue.NewPublisher(amqpCfg.URL, amqpCfg.Exchange)
	if err != nil {
		slog.Warn("rabbitmq unavailable, invoice events disabled", "err", err)
	} else {
		defer pub.Close()
		invalidators = append(invalidators, pub)
	}

	svc := service.New(service.Deps{
		Invoices:       repository.NewInvoiceRepo(db),
		Customers:      repository.NewCustomerRepo(db),
		Revenue:        repository.NewRevenueRepo(db),
		Users:          repository.NewUserRepo(db),
		Invalidator:    invalidators,
		Logger:         slog.Default(),
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTTLMin,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), cfg.JWTSecret, rlCfg, rdb)
	router.RegisterDashboard(e, handler.NewDashboardHandler(svc), handler.NewInvoiceHandler(svc), cfg.JWTSecret, cacheCfg, views)
	router.RegisterCustomer(e, handler.NewCustomerHandler(svc), cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
