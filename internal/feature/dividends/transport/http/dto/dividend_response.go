// Package dto は dividends フィーチャーのHTTPレスポンスDTOを定義します。
package dto

// DividendEventResponse は配当イベント1件のDTOです。
type DividendEventResponse struct {
	ExDate     string  `json:"exDate"`
	PayDate    *string `json:"payDate,omitempty"`
	RecordDate *string `json:"recordDate,omitempty"`
	Amount     string  `json:"amount"` // 1株あたり
}

// FrequencyResponse は支払い頻度の推定結果です。
type FrequencyResponse struct {
	Frequency           string   `json:"frequency"`
	Confidence          string   `json:"confidence"`
	Reason              string   `json:"reason"`
	SampleSize          int      `json:"sampleSize"`
	AverageIntervalDays *float64 `json:"averageIntervalDays,omitempty"`
	PaymentsPerYear     int      `json:"paymentsPerYear"`
}

// DividendsResponse は GET /dividends/:code のレスポンスです。
type DividendsResponse struct {
	Symbol    string                  `json:"symbol"`
	Events    []DividendEventResponse `json:"events"`
	Frequency FrequencyResponse       `json:"frequency"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
