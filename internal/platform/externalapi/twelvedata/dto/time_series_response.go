// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// ErrorFields は全エンドポイントに共通のエラー応答です。
// 成功時は Status が "ok" か空になります。
type ErrorFields struct {
	Status  string `json:"status,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// IsError reports whether the body is an error response.
func (e ErrorFields) IsError() bool {
	return e.Status == "error"
}

// TimeSeriesMeta は time_series 応答のメタ情報です。
type TimeSeriesMeta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
	MICCode  string `json:"mic_code"`
}

// TimeSeriesValue は1本分の OHLCV です。数値はすべて文字列で返されます。
type TimeSeriesValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
type TimeSeriesResponse struct {
	ErrorFields
	Meta   TimeSeriesMeta    `json:"meta"`
	Values []TimeSeriesValue `json:"values"`
}
