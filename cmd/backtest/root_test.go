package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candleadapters "stock_backtest/internal/feature/candles/adapters"
	candle "stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/platform/db"
)

func seedCandles(t *testing.T, path string) {
	t.Helper()

	gdb, err := db.OpenSQLite(path)
	require.NoError(t, err)
	repo := candleadapters.NewCandleRepository(gdb)
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.UpsertBatch(context.Background(), []candle.Candle{
		{Symbol: "KO", Interval: candle.TimeframeDaily, Time: day(2), Open: 10, High: 10, Low: 9, Close: 9, Volume: 100},
		{Symbol: "KO", Interval: candle.TimeframeDaily, Time: day(3), Open: 9, High: 11, Low: 9, Close: 11, Volume: 100},
	}))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestRun_Offline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bt.db")
	seedCandles(t, path)

	var out bytes.Buffer
	err := run(context.Background(), &options{
		ticker:    "KO",
		timeframe: "daily",
		quantity:  5,
		from:      "2024-01-01",
		to:        "2024-01-31",
		dbPath:    path,
		offline:   true,
	}, &out)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "KO", got["ticker"])
	assert.Equal(t, float64(5), got["totalShares"])
	assert.Equal(t, "45.00", got["totalInvestment"])
	assert.Equal(t, "10.00", got["pnl"])
	assert.Equal(t, "0.00", got["totalDividendIncome"])
	assert.Len(t, got["transactions"], 1)
}

func TestRun_InvalidDates(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"bad from", "2024/01/01", "2024-01-31"},
		{"bad to", "2024-01-01", "31-01-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), &options{
				ticker:  "KO",
				from:    tt.from,
				to:      tt.to,
				offline: true,
				dbPath:  filepath.Join(t.TempDir(), "bt.db"),
			}, &bytes.Buffer{})
			assert.ErrorContains(t, err, "invalid --")
		})
	}
}

func TestRootCmd_RequiresFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--offline"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "required flag")
}
