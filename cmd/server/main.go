package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"stock_backtest/internal/app/di"
	"stock_backtest/internal/app/router"
	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	dividendshandler "stock_backtest/internal/feature/dividends/transport/handler"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/http/handler"
	"stock_backtest/internal/platform/metrics"
)

func main() {
	// .env はローカル開発用。無くてもよい
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not loaded; using environment variables", "error", err)
	}

	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := di.NewDB(cfg)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	// Redis（任意）
	rdb := di.NewRedis(ctx, cfg)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	market, err := di.NewMarket(cfg)
	if err != nil {
		slog.Error("failed to create market client", "error", err)
		os.Exit(1)
	}

	// Usecase
	svc := di.NewServices(gdb, rdb, market, metrics.New(prometheus.DefaultRegisterer), cfg)

	// Handler
	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(
		handler.NewHealthHandler(checks),
		candleshandler.NewCandlesHandler(svc.Candles),
		dividendshandler.NewDividendsHandler(svc.Dividends),
		backtesthandler.NewBacktestHandler(svc.Backtest),
		symbollisthandler.NewSymbolHandler(svc.Symbols),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
