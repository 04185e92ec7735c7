package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRequest はリクエストの入力値が不正な場合のエラーです。
	ErrInvalidRequest = errors.New("invalid backtest request")
	// ErrNoDataAvailable は期間内にローソク足が1本も無い場合のエラーです。
	ErrNoDataAvailable = errors.New("no price data available")
	// ErrProviderFailure は外部データ取得の失敗です。
	ErrProviderFailure = errors.New("data provider failure")
	// ErrTimeout はバックテスト全体の制限時間を超えた場合のエラーです。
	ErrTimeout = errors.New("backtest timed out")
)

// Stage names used in StageError.
const (
	StageValidate       = "validate"
	StageFetchCandles   = "fetch_candles"
	StageFetchDividends = "fetch_dividends"
)

// StageError is returned by RunBacktest and identifies where a run failed.
type StageError struct {
	Stage  string
	Ticker string
	Start  time.Time
	End    time.Time
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("backtest %s [%s..%s] %s: %v",
		e.Ticker, e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly), e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
