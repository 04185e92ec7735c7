// Package entity defines the domain models for the dividends feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendEvent is a single dividend declaration for a ticker.
// It is unique per (Symbol, ExDate).
type DividendEvent struct {
	Symbol     string
	ExDate     time.Time
	PayDate    *time.Time
	RecordDate *time.Time
	Amount     decimal.Decimal // per share
}

// Valid reports whether the event can take part in analysis.
func (e DividendEvent) Valid() bool {
	return !e.ExDate.IsZero() && e.Amount.IsPositive()
}

// Frequency is the inferred dividend payment cadence.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyAnnual     Frequency = "annual"
	FrequencyIrregular  Frequency = "irregular"
)

// PaymentsPerYear returns the expected number of payments in a year.
// Irregular payers are assumed to pay quarterly.
func (f Frequency) PaymentsPerYear() int {
	switch f {
	case FrequencyMonthly:
		return 12
	case FrequencySemiAnnual:
		return 2
	case FrequencyAnnual:
		return 1
	default:
		return 4
	}
}

// Confidence grades how regular the observed intervals are.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// FrequencyAnalysis is the result of inferring a dividend cadence.
type FrequencyAnalysis struct {
	Frequency           Frequency
	Confidence          Confidence
	Reason              string
	SampleSize          int
	AverageIntervalDays *float64
}
