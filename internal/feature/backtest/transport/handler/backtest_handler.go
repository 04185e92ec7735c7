// Package handler は backtest フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"stock_backtest/internal/feature/backtest/domain/entity"
	"stock_backtest/internal/feature/backtest/transport/http/dto"
	"stock_backtest/internal/feature/backtest/usecase"
	candle "stock_backtest/internal/feature/candles/domain/entity"

	"github.com/gin-gonic/gin"
)

// BacktestUsecase はバックテスト実行のユースケースです。
type BacktestUsecase interface {
	RunBacktest(ctx context.Context, req entity.BacktestRequest) (*entity.BacktestResult, error)
	SessionTransactions(ctx context.Context, sessionID string) ([]entity.Transaction, error)
}

// BacktestHandler はバックテストのHTTPリクエストを処理します。
type BacktestHandler struct {
	uc BacktestUsecase
}

// NewBacktestHandler は BacktestHandler を生成します。
func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// PostBacktest は JSON ボディで指定されたバックテストを実行します。
//
// POST /backtests
func (h *BacktestHandler) PostBacktest(c *gin.Context) {
	var body dto.BacktestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		slog.Warn("backtest validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	start, err := time.Parse(time.DateOnly, body.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid startDate"})
		return
	}
	end, err := time.Parse(time.DateOnly, body.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid endDate"})
		return
	}

	h.run(c, entity.BacktestRequest{
		Symbol:    body.Ticker,
		Timeframe: candle.Timeframe(body.Timeframe),
		Quantity:  body.Quantity,
		Start:     start,
		End:       end,
	})
}

// GetBacktest はクエリ文字列で指定されたバックテストを実行します。
//
// GET /backtests/:code?timeframe=monthly&quantity=10&from=2023-01-01&to=2024-12-31
func (h *BacktestHandler) GetBacktest(c *gin.Context) {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid from date"})
		return
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid to date"})
		return
	}
	var qty int64
	if q := c.Query("quantity"); q != "" {
		// 不正な値はデフォルト株数にフォールバック
		qty, _ = strconv.ParseInt(q, 10, 64)
	}

	h.run(c, entity.BacktestRequest{
		Symbol:    c.Param("code"),
		Timeframe: candle.Timeframe(c.DefaultQuery("timeframe", string(candle.TimeframeDaily))),
		Quantity:  qty,
		Start:     from,
		End:       to,
	})
}

// GetSessionTransactions は保存済みセッションの取引履歴を返します。
//
// GET /backtests/sessions/:id/transactions
func (h *BacktestHandler) GetSessionTransactions(c *gin.Context) {
	txs, err := h.uc.SessionTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponses(txs))
}

func (h *BacktestHandler) run(c *gin.Context, req entity.BacktestRequest) {
	res, err := h.uc.RunBacktest(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("backtest failed", "symbol", req.Symbol, "error", err)
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewBacktestResponse(res))
}

// statusFor はユースケースのエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, usecase.ErrProviderFailure):
		return http.StatusBadGateway
	case errors.Is(err, usecase.ErrNoDataAvailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
