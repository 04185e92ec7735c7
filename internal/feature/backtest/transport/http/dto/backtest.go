// Package dto は backtest フィーチャーのHTTPトランスポート層のDTOを定義します。
package dto

// BacktestRequest は POST /backtests のリクエストボディです。
// 日付は YYYY-MM-DD 形式です。quantity は省略時にデフォルト値を使います。
type BacktestRequest struct {
	Ticker    string `json:"ticker" binding:"required"`
	Timeframe string `json:"timeframe"`
	Quantity  int64  `json:"quantity"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// TransactionResponse は取引1件です。
type TransactionResponse struct {
	SessionID       string `json:"sessionId"`
	Ticker          string `json:"ticker"`
	TransactionDate string `json:"transactionDate"`
	Type            string `json:"type"`
	Quantity        int64  `json:"quantity"`
	Price           string `json:"price"`
	TotalCost       string `json:"totalCost"`
}

// DividendDetailResponse は権利落ち日ごとの配当収入です。
type DividendDetailResponse struct {
	ExDate         string  `json:"exDate"`
	PayDate        *string `json:"payDate,omitempty"`
	AmountPerShare string  `json:"amountPerShare"`
	SharesOwned    int64   `json:"sharesOwned"`
	TotalIncome    string  `json:"totalIncome"`
	Status         string  `json:"status"`
	Year           int     `json:"year"`
	Period         int     `json:"period"`
}

// PeriodIncomeResponse は年内の1期間分の配当収入です。
type PeriodIncomeResponse struct {
	Period         int      `json:"period"`
	Label          string   `json:"label"`
	ExDates        []string `json:"exDates"`
	AmountPerShare string   `json:"amountPerShare"`
	SharesOwned    int64    `json:"sharesOwned"`
	TotalIncome    string   `json:"totalIncome"`
	Status         string   `json:"status"`
}

// YearIncomeResponse は1年分の配当収入です。
type YearIncomeResponse struct {
	Year        int                    `json:"year"`
	TotalIncome string                 `json:"totalIncome"`
	Periods     []PeriodIncomeResponse `json:"periods"`
}

// FrequencyResponse は配当頻度の推定結果です。
type FrequencyResponse struct {
	Frequency           string   `json:"frequency"`
	Confidence          string   `json:"confidence"`
	Reason              string   `json:"reason"`
	SampleSize          int      `json:"sampleSize"`
	AverageIntervalDays *float64 `json:"averageIntervalDays,omitempty"`
}

// BacktestResponse はバックテスト結果です。金額と利回りは10進文字列です。
type BacktestResponse struct {
	SessionID   string `json:"sessionId"`
	Ticker      string `json:"ticker"`
	Timeframe   string `json:"timeframe"`
	Quantity    int64  `json:"quantity"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	CandleCount int    `json:"candleCount"`

	TotalShares     int64  `json:"totalShares"`
	TotalInvestment string `json:"totalInvestment"`
	AverageCost     string `json:"averageCost"`
	LastPrice       string `json:"lastPrice"`
	TotalValueToday string `json:"totalValueToday"`

	PnL                     string `json:"pnl"`
	PnLPercent              string `json:"pnlPercent"`
	TotalDividendIncome     string `json:"totalDividendIncome"`
	PnLWithDividends        string `json:"pnlWithDividends"`
	PnLWithDividendsPercent string `json:"pnlWithDividendsPercent"`

	DividendFrequency FrequencyResponse `json:"dividendFrequency"`
	LastDividendYield string            `json:"lastDividendYield"`
	TTMDividendYield  string            `json:"ttmDividendYield"`
	YieldOnCost       string            `json:"yieldOnCost"`

	TotalDividendPeriods int                      `json:"totalDividendPeriods"`
	PeriodsWithIncome    int                      `json:"periodsWithIncome"`
	DividendDetails      []DividendDetailResponse `json:"dividendDetails"`
	DividendHistory      []YearIncomeResponse     `json:"dividendHistory"`
	Transactions         []TransactionResponse    `json:"transactions"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
