// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"time"

	"stock_backtest/internal/platform/config"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
}

// ConfigFrom はアプリケーション設定から Twelve Data 用の設定を取り出します。
func ConfigFrom(c config.Config) Config {
	return Config{
		TwelveDataAPIKey: c.TwelveDataAPIKey,
		BaseURL:          c.TwelveDataBaseURL,
		Timeout:          c.ProviderTimeout,
	}
}
