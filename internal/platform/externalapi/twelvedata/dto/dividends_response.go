package dto

import "github.com/shopspring/decimal"

// Dividend は配当1件です。amount は数値でも文字列でも受け付けます。
type Dividend struct {
	ExDate string          `json:"ex_date"`
	Amount decimal.Decimal `json:"amount"`
}

// DividendsResponse represents the JSON response from the Twelve Data dividends endpoint.
type DividendsResponse struct {
	ErrorFields
	Dividends []Dividend `json:"dividends"`
}
