// Package entity defines the domain models for the candles feature.
package entity

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for a stock symbol over one period of a timeframe.
type Candle struct {
	Symbol   string    // Stock ticker symbol (e.g., "AAPL", "7203.T")
	Interval Timeframe // Timeframe tag (e.g., "daily", "weekly")
	Time     time.Time // Calendar day; for resampled candles, the latest member's date
	Open     float64   // Opening price
	High     float64   // Highest price during this period
	Low      float64   // Lowest price during this period
	Close    float64   // Closing price
	Volume   int64     // Trading volume
}

// IsRed reports whether the candle closed below its open.
func (c Candle) IsRed() bool {
	return c.Open > c.Close
}
