// Package entity defines the domain models for the backtest feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType は売買区分です。
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// Transaction は1回の売買です。作成後は変更しません。
type Transaction struct {
	SessionID       string
	Symbol          string
	TransactionDate time.Time
	Type            TransactionType
	Quantity        int64
	Price           decimal.Decimal
	TotalCost       decimal.Decimal
}

// SignedQuantity returns the change in shares held: positive for BUY, negative for SELL.
func (t Transaction) SignedQuantity() int64 {
	if t.Type == TransactionSell {
		return -t.Quantity
	}
	return t.Quantity
}
