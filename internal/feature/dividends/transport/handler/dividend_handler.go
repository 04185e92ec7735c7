// Package handler は dividends フィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"stock_backtest/internal/feature/dividends/transport/http/dto"
	"stock_backtest/internal/feature/dividends/usecase"

	"github.com/gin-gonic/gin"
)

// DividendsUsecase は配当照会のユースケースです。
type DividendsUsecase interface {
	Summarize(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error)
}

// DividendsHandler は配当データのHTTPリクエストを処理します。
type DividendsHandler struct {
	uc DividendsUsecase
}

// NewDividendsHandler は DividendsHandler を生成します。
func NewDividendsHandler(uc DividendsUsecase) *DividendsHandler {
	return &DividendsHandler{uc: uc}
}

// GetDividendsHandler は期間内の配当イベントと支払い頻度の推定を返します。
//
// GET /dividends/:code?from=2024-01-01&to=2024-12-31
func (h *DividendsHandler) GetDividendsHandler(c *gin.Context) {
	code := c.Param("code")
	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid from date"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid to date"})
		return
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from must not be after to"})
		return
	}

	summary, err := h.uc.Summarize(c.Request.Context(), code, from, to)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(code, summary))
}

func toResponse(symbol string, s usecase.Summary) dto.DividendsResponse {
	events := make([]dto.DividendEventResponse, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, dto.DividendEventResponse{
			ExDate:     e.ExDate.Format(time.DateOnly),
			PayDate:    formatOptional(e.PayDate),
			RecordDate: formatOptional(e.RecordDate),
			Amount:     e.Amount.String(),
		})
	}
	return dto.DividendsResponse{
		Symbol: symbol,
		Events: events,
		Frequency: dto.FrequencyResponse{
			Frequency:           string(s.Analysis.Frequency),
			Confidence:          string(s.Analysis.Confidence),
			Reason:              s.Analysis.Reason,
			SampleSize:          s.Analysis.SampleSize,
			AverageIntervalDays: s.Analysis.AverageIntervalDays,
			PaymentsPerYear:     s.Analysis.Frequency.PaymentsPerYear(),
		},
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}
