package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock_backtest/internal/feature/dividends/domain/entity"
	"stock_backtest/internal/feature/dividends/transport/handler"
	"stock_backtest/internal/feature/dividends/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type mockDividendsUsecase struct {
	SummarizeFunc func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error)
}

func (m *mockDividendsUsecase) Summarize(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error) {
	return m.SummarizeFunc(ctx, symbol, from, to)
}

func TestDividendsHandler_GetDividendsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pay := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	avg := 91.0

	tests := []struct {
		name           string
		url            string
		summarize      func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: events and frequency",
			url:  "/dividends/KO?from=2024-01-01&to=2024-12-31",
			summarize: func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error) {
				assert.Equal(t, "KO", symbol)
				assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
				assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), to)
				return usecase.Summary{
					Events: []entity.DividendEvent{
						{Symbol: "KO", ExDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), PayDate: &pay, Amount: decimal.RequireFromString("0.485")},
					},
					Analysis: entity.FrequencyAnalysis{
						Frequency:           entity.FrequencyQuarterly,
						Confidence:          entity.ConfidenceHigh,
						Reason:              "ok",
						SampleSize:          8,
						AverageIntervalDays: &avg,
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"symbol":"KO","events":[{"exDate":"2024-03-14","payDate":"2024-04-01","amount":"0.485"}],
				"frequency":{"frequency":"quarterly","confidence":"high","reason":"ok","sampleSize":8,"averageIntervalDays":91,"paymentsPerYear":4}}`,
		},
		{
			name: "success: no events",
			url:  "/dividends/AMZN",
			summarize: func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error) {
				assert.True(t, from.IsZero())
				assert.True(t, to.IsZero())
				return usecase.Summary{Analysis: entity.FrequencyAnalysis{Frequency: entity.FrequencyQuarterly, Confidence: entity.ConfidenceLow, Reason: "none"}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"AMZN","events":[],"frequency":{"frequency":"quarterly","confidence":"low","reason":"none","sampleSize":0,"paymentsPerYear":4}}`,
		},
		{
			name:           "error: invalid from",
			url:            "/dividends/KO?from=2024-13-01",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid from date"}`,
		},
		{
			name:           "error: invalid to",
			url:            "/dividends/KO?to=yesterday",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid to date"}`,
		},
		{
			name:           "error: reversed range",
			url:            "/dividends/KO?from=2024-02-01&to=2024-01-01",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"from must not be after to"}`,
		},
		{
			name: "error: usecase failure",
			url:  "/dividends/KO",
			summarize: func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error) {
				return usecase.Summary{}, errors.New("provider down")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"provider down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockDividendsUsecase{SummarizeFunc: tt.summarize}
			if mockUC.SummarizeFunc == nil {
				mockUC.SummarizeFunc = func(ctx context.Context, symbol string, from, to time.Time) (usecase.Summary, error) {
					t.Error("Summarize should not be called")
					return usecase.Summary{}, nil
				}
			}
			h := handler.NewDividendsHandler(mockUC)

			router := gin.New()
			router.GET("/dividends/:code", h.GetDividendsHandler)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
