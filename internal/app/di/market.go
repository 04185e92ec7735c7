// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"
	"stock_backtest/internal/platform/config"
	"stock_backtest/internal/platform/externalapi/twelvedata"
	infrahttp "stock_backtest/internal/platform/http"
)

// Provider は株価と配当の両方を提供する外部データソースです。
type Provider interface {
	candleusecase.MarketRepository
	dividendusecase.DividendProvider
}

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
// SYMBOL_MAP_PATH が設定されていれば取引所対応表を上書きします。
func NewMarket(cfg config.Config) (*twelvedata.TwelveDataMarket, error) {
	symbols, err := twelvedata.LoadSymbolMap(cfg.SymbolMapPath)
	if err != nil {
		return nil, fmt.Errorf("load symbol map: %w", err)
	}
	tdCfg := twelvedata.ConfigFrom(cfg)
	httpClient := infrahttp.NewHTTPClient(tdCfg.Timeout)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient, symbols), nil
}
