// Package http は外部API呼び出し用の HTTP クライアントを提供します。
package http

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	// defaultRetries は 429 / 5xx 応答時に再試行する回数です。
	defaultRetries = 2
	// defaultBackoff は最初の再試行までの待ち時間です。以降は倍になります。
	defaultBackoff = 500 * time.Millisecond
	// maxRetryAfter は Retry-After ヘッダーを尊重する上限です。
	maxRetryAfter = 10 * time.Second
)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConns: 最大アイドル接続数
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（再試行を含む）
//
// GET リクエストは 429 と 5xx の応答に対して指数バックオフで再試行します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: NewRetryTransport(t, defaultRetries, defaultBackoff)}
}

// RetryTransport は冪等なリクエストを一時的なエラー応答に対して再試行します。
type RetryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

// NewRetryTransport は next をラップした RetryTransport を返します。
func NewRetryTransport(next http.RoundTripper, retries int, backoff time.Duration) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RetryTransport{next: next, retries: retries, backoff: backoff}
}

// RoundTrip implements http.RoundTripper.
func (rt *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return rt.next.RoundTrip(req)
	}

	wait := rt.backoff
	for attempt := 0; ; attempt++ {
		res, err := rt.next.RoundTrip(req)
		if err != nil || attempt >= rt.retries || !retryable(res.StatusCode) {
			return res, err
		}

		d := wait
		if ra, ok := retryAfter(res); ok {
			d = ra
		}
		_ = res.Body.Close()
		slog.Warn("retrying request", "host", req.URL.Host, "path", req.URL.Path, "status", res.StatusCode, "attempt", attempt+1, "wait", d)

		timer := time.NewTimer(d)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retryAfter は秒数で指定された Retry-After ヘッダーを読み取ります。
func retryAfter(res *http.Response) (time.Duration, bool) {
	v := res.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
