package usecase

import (
	"context"
	"testing"
	"time"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/shared/coverage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitCalls int
	Err       error
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return m.Err
}

func TestIngestUsecase_IngestAll(t *testing.T) {
	t.Parallel()

	mockCandles := []entity.Candle{{Time: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), Open: 100, High: 110, Low: 90, Close: 105}}

	tests := []struct {
		name          string
		symbols       []string
		getTimeSeries func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error)
		upsert        func(ctx context.Context, candles []entity.Candle) error
		wantCalls     int
		wantUpserts   int
	}{
		{
			name:    "success: fetch all symbols",
			symbols: []string{"AAPL", "GOOG"},
			getTimeSeries: func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
				return append([]entity.Candle(nil), mockCandles...), nil
			},
			wantCalls:   2,
			wantUpserts: 2,
		},
		{
			name:    "success: empty symbol list",
			symbols: []string{},
			getTimeSeries: func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
				t.Error("GetTimeSeries should not be called")
				return nil, nil
			},
		},
		{
			name:    "success: continues processing even when some symbols fail",
			symbols: []string{"AAPL", "INVALID", "GOOG"},
			getTimeSeries: func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
				if symbol == "INVALID" {
					return nil, ErrMarketAPI
				}
				return append([]entity.Candle(nil), mockCandles...), nil
			},
			wantCalls:   3,
			wantUpserts: 2,
		},
		{
			name:    "success: continues processing even when UpsertBatch fails",
			symbols: []string{"AAPL", "GOOG"},
			getTimeSeries: func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
				return append([]entity.Candle(nil), mockCandles...), nil
			},
			upsert: func(ctx context.Context, candles []entity.Candle) error {
				if candles[0].Symbol == "AAPL" {
					return ErrDB
				}
				return nil
			},
			wantCalls:   2,
			wantUpserts: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			market := &mockMarketRepository{GetTimeSeriesFunc: tc.getTimeSeries}
			repo := &mockCandleRepository{UpsertBatchFunc: func(ctx context.Context, candles []entity.Candle) error {
				for _, c := range candles {
					assert.Equal(t, entity.TimeframeDaily, c.Interval)
					assert.Equal(t, 0, c.Time.Hour(), "candle time should be truncated to the day")
				}
				if tc.upsert != nil {
					return tc.upsert(ctx, candles)
				}
				return nil
			}}
			rl := &mockRateLimiter{}
			cov := newMockCoverage()

			uc := NewIngestUsecase(market, repo, cov, rl, 30*24*time.Hour)
			err := uc.IngestAll(context.Background(), tc.symbols)

			require.NoError(t, err)
			assert.Equal(t, tc.wantCalls, market.GetTimeSeriesCalls)
			assert.Equal(t, tc.wantUpserts, repo.UpsertCalls)
			assert.Equal(t, len(tc.symbols), rl.WaitCalls)
			assert.LessOrEqual(t, cov.SaveCalls, tc.wantUpserts)
		})
	}
}

func TestIngestUsecase_IngestAll_StopsWhenRateLimiterFails(t *testing.T) {
	t.Parallel()

	market := &mockMarketRepository{}
	rl := &mockRateLimiter{Err: context.Canceled}

	uc := NewIngestUsecase(market, &mockCandleRepository{}, nil, rl, 0)
	err := uc.IngestAll(context.Background(), []string{"AAPL", "GOOG"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, market.GetTimeSeriesCalls)
}

func TestIngestUsecase_IngestAll_RecordsCoverage(t *testing.T) {
	t.Parallel()

	market := &mockMarketRepository{
		GetTimeSeriesFunc: func(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
			if symbol == "BAD" {
				return nil, ErrMarketAPI
			}
			return []entity.Candle{{Time: day(2024, 5, 9)}}, nil
		},
	}
	cov := newMockCoverage()
	cov.spans["AAPL"] = coverage.Span{From: day(2024, 1, 1), To: day(2024, 4, 30)}

	uc := NewIngestUsecase(market, &mockCandleRepository{}, cov, &mockRateLimiter{}, 30*24*time.Hour)
	uc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, uc.IngestAll(context.Background(), []string{"AAPL", "BAD"}))

	// 既存の記録と結合され、当日は含めない
	assert.Equal(t, coverage.Span{From: day(2024, 1, 1), To: day(2024, 5, 9)}, cov.spans["AAPL"])
	_, ok := cov.spans["BAD"]
	assert.False(t, ok)
}
