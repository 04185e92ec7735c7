// Package router はHTTPルーティングを定義します。
package router

import (
	backtesthandler "stock_backtest/internal/feature/backtest/transport/handler"
	candleshandler "stock_backtest/internal/feature/candles/transport/handler"
	dividendshandler "stock_backtest/internal/feature/dividends/transport/handler"
	symbollisthandler "stock_backtest/internal/feature/symbollist/transport/handler"
	"stock_backtest/internal/platform/http/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter は全エンドポイントを登録した gin.Engine を返します。
func NewRouter(health *handler.HealthHandler, candles *candleshandler.CandlesHandler, dividends *dividendshandler.DividendsHandler,
	backtest *backtesthandler.BacktestHandler, symbol *symbollisthandler.SymbolHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/symbols", symbol.List)
	r.POST("/symbols", symbol.Register)
	r.GET("/candles/:code", candles.GetCandlesHandler)
	r.GET("/dividends/:code", dividends.GetDividendsHandler)

	bt := r.Group("/backtests")
	{
		bt.POST("", backtest.PostBacktest)
		bt.GET("/:code", backtest.GetBacktest)
		bt.GET("/sessions/:id/transactions", backtest.GetSessionTransactions)
	}

	return r
}
