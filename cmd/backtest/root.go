package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stock_backtest/internal/app/di"
	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	candle "stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/db"
)

type options struct {
	ticker    string
	timeframe string
	quantity  int64
	from      string
	to        string
	dbPath    string
	offline   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a buy-the-red-candle backtest with dividend income",
		Long: `backtest buys a fixed quantity at the close of every red candle between
--from and --to, attributes dividend income to the shares held on each
ex-dividend date and prints the result as JSON.

Candles and dividends are read from the local SQLite file given by --db.
Missing data is fetched from Twelve Data unless --offline is set.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ticker, "ticker", "t", "", "ticker symbol, e.g. KO or 7203.T")
	f.StringVar(&opts.timeframe, "timeframe", string(candle.TimeframeDaily), "daily, weekly, monthly, quarterly, semi-annual or annual")
	f.Int64VarP(&opts.quantity, "quantity", "q", 0, "shares bought per red candle (default from DEFAULT_QUANTITY)")
	f.StringVar(&opts.from, "from", "", "start date (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "end date (YYYY-MM-DD)")
	f.StringVar(&opts.dbPath, "db", "backtest.db", "SQLite file used as the local store")
	f.BoolVar(&opts.offline, "offline", false, "use only data already stored in --db")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (o *options) request() (entity.BacktestRequest, error) {
	start, err := time.Parse(time.DateOnly, o.from)
	if err != nil {
		return entity.BacktestRequest{}, fmt.Errorf("invalid --from %q: %w", o.from, err)
	}
	end, err := time.Parse(time.DateOnly, o.to)
	if err != nil {
		return entity.BacktestRequest{}, fmt.Errorf("invalid --to %q: %w", o.to, err)
	}
	return entity.BacktestRequest{
		Symbol:    o.ticker,
		Timeframe: candle.Timeframe(o.timeframe),
		Quantity:  o.quantity,
		Start:     start,
		End:       end,
	}, nil
}

func run(ctx context.Context, o *options, out io.Writer) error {
	req, err := o.request()
	if err != nil {
		return err
	}

	_ = godotenv.Load(".env")
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var provider di.Provider
	if !o.offline {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w (use --offline to run on stored data only)", err)
		}
		market, err := di.NewMarket(cfg)
		if err != nil {
			return err
		}
		provider = market
	}

	gdb, err := db.OpenSQLite(o.dbPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	svc := di.NewServices(gdb, nil, provider, nil, cfg)
	res, err := svc.Backtest.RunBacktest(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.NewBacktestResponse(res))
}
