// Package metrics はバックテストと外部API呼び出しの Prometheus メトリクスを提供します。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics は backtest.Recorder を Prometheus で実装します。
type Metrics struct {
	duration         *prometheus.HistogramVec
	runs             *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
}

// New は reg にメトリクスを登録します。
// サーバーでは prometheus.DefaultRegisterer を渡し、/metrics で公開します。
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backtest_duration_seconds",
			Help:    "Duration of backtest runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"timeframe"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Total number of backtest runs by outcome",
		}, []string{"outcome"}),
		providerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_failures_total",
			Help: "Total number of failed market data provider calls",
		}, []string{"source"}),
	}
}

// ObserveBacktest は1回のバックテスト実行を記録します。
func (m *Metrics) ObserveBacktest(timeframe, outcome string, elapsed time.Duration) {
	m.duration.WithLabelValues(timeframe).Observe(elapsed.Seconds())
	m.runs.WithLabelValues(outcome).Inc()
}

// ProviderFailure は外部APIの失敗を source（"candles" / "dividends"）ごとに数えます。
func (m *Metrics) ProviderFailure(source string) {
	m.providerFailures.WithLabelValues(source).Inc()
}
