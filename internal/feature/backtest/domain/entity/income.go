package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeStatus は配当収入の状態です。
type IncomeStatus string

const (
	// IncomeNotEligible は権利落ち日に株式を保有していなかったことを示します。
	IncomeNotEligible IncomeStatus = "not_eligible"
	IncomePaid        IncomeStatus = "paid"
	IncomeUpcoming    IncomeStatus = "upcoming"
	// IncomePending は該当期間に配当イベントが無いことを示します。金額は常に0です。
	IncomePending IncomeStatus = "pending"
)

// DividendIncomeRecord は1回の配当イベントに対する受取額です。
type DividendIncomeRecord struct {
	ExDate         time.Time
	PayDate        *time.Time
	AmountPerShare decimal.Decimal
	SharesOwned    int64
	TotalIncome    decimal.Decimal
	Status         IncomeStatus
	Year           int
	Period         int // 1始まり。月次なら月、四半期なら四半期番号
}

// PeriodIncome は年内の1期間分の配当収入です。
type PeriodIncome struct {
	Period         int
	Label          string
	ExDates        []time.Time
	AmountPerShare decimal.Decimal
	SharesOwned    int64
	TotalIncome    decimal.Decimal
	Status         IncomeStatus
}

// YearIncome は1年分の配当収入の内訳です。
type YearIncome struct {
	Year        int
	TotalIncome decimal.Decimal
	Periods     []PeriodIncome
}
