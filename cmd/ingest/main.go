package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"stock_backtest/internal/app/di"
	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"
	symboladapters "stock_backtest/internal/feature/symbollist/adapters"
	symbolusecase "stock_backtest/internal/feature/symbollist/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/shared/coverage"
	"stock_backtest/internal/shared/ratelimiter"
)

// runTimeout は1回の取り込みの上限時間です。
const runTimeout = 30 * time.Minute

// job は有効な銘柄の日足と配当をまとめて取り込みます。
type job struct {
	symbols   *symbolusecase.SymbolUsecase
	candles   *candleusecase.IngestUsecase
	dividends *dividendusecase.IngestUsecase
}

func (j *job) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	codes, err := j.symbols.ActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to load symbols", "error", err)
		return
	}
	slog.Info("ingest started", "symbols", len(codes))
	if err := j.candles.IngestAll(ctx, codes); err != nil {
		slog.Error("candle ingest aborted", "error", err)
		return
	}
	if err := j.dividends.IngestAll(ctx, codes); err != nil {
		slog.Error("dividend ingest aborted", "error", err)
		return
	}
	slog.Info("ingest ok", "symbols", len(codes))
}

// 使い方: ingest [CODE...]
// 引数の銘柄コードは取り込み前に有効な銘柄として登録されます。
func main() {
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

	gdb, err := di.NewDB(cfg)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	// 取り込み時にキャッシュを無効化するため、サーバーと同じ Redis を使う
	rdb := di.NewRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	market, err := di.NewMarket(cfg)
	if err != nil {
		slog.Error("failed to create market client", "error", err)
		os.Exit(1)
	}

	// 株価と配当は同じAPIの枠を共有する
	rl := ratelimiter.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
	lookback := cfg.IngestLookback()

	symbols := symbolusecase.NewSymbolUsecase(symboladapters.NewSymbolRepository(gdb))
	if args := os.Args[1:]; len(args) > 0 {
		if err := symbols.Register(ctx, args); err != nil {
			slog.Error("failed to register symbols", "error", err)
			os.Exit(1)
		}
	}

	cov := coverage.NewStore(gdb)
	j := &job{
		symbols:   symbols,
		candles:   candleusecase.NewIngestUsecase(market, di.NewCandleRepository(gdb, rdb, cfg), cov, rl, lookback),
		dividends: dividendusecase.NewIngestUsecase(market, di.NewDividendRepository(gdb, rdb, cfg), cov, rl, lookback),
	}

	if cfg.IngestSchedule == "" {
		j.run(ctx)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.IngestSchedule, func() { j.run(ctx) }); err != nil {
		slog.Error("invalid INGEST_SCHEDULE", "schedule", cfg.IngestSchedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	slog.Info("ingest scheduler started", "schedule", cfg.IngestSchedule)

	<-ctx.Done()
	// 実行中のジョブの完了を待つ
	<-c.Stop().Done()
	slog.Info("ingest scheduler stopped")
}
