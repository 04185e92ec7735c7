package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	candleentity "stock_backtest/internal/feature/candles/domain/entity"
	candleusecase "stock_backtest/internal/feature/candles/usecase"
	dividendentity "stock_backtest/internal/feature/dividends/domain/entity"
	dividendusecase "stock_backtest/internal/feature/dividends/usecase"
	"stock_backtest/internal/platform/externalapi/twelvedata/dto"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	// maxOutputSize は time_series が1回で返せる最大件数です。
	maxOutputSize = 5000
)

// TwelveDataMarket はTwelve Data外部APIから株価データと配当データを取得します。
type TwelveDataMarket struct {
	cfg     Config
	client  *http.Client
	symbols *SymbolMap
}

// TwelveDataMarketがMarketRepositoryとDividendProviderを実装していることをコンパイル時に検証します。
var (
	_ candleusecase.MarketRepository   = (*TwelveDataMarket)(nil)
	_ dividendusecase.DividendProvider = (*TwelveDataMarket)(nil)
)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// symbols が nil の場合は組み込みの取引所対応表を使用します。
func NewTwelveDataMarket(cfg Config, client *http.Client, symbols *SymbolMap) *TwelveDataMarket {
	if symbols == nil {
		symbols = NewSymbolMap()
	}
	return &TwelveDataMarket{cfg: cfg, client: client, symbols: symbols}
}

// GetTimeSeries はTwelve Data APIから [from, to] の時系列株価データを取得し、
// 日付昇順の entity.Candle のスライスとして返します。
// データが無い場合は空スライスを返します。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol, interval string, from, to time.Time) ([]candleentity.Candle, error) {
	q := t.symbolQuery(symbol)
	q.Set("interval", interval)
	q.Set("start_date", from.Format(dateLayout))
	// end_date は排他的なため翌日を指定する
	q.Set("end_date", to.AddDate(0, 0, 1).Format(dateLayout))
	q.Set("outputsize", strconv.Itoa(maxOutputSize))
	q.Set("order", "ASC")

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if body.IsError() {
		if isNoData(body.ErrorFields) {
			return []candleentity.Candle{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]candleentity.Candle, 0, len(body.Values))
	for _, v := range body.Values {

		// タイムスタンプをパース
		tm, err := time.Parse(dateTimeLayout, v.Datetime)
		if err != nil {
			tm, err = time.Parse(dateLayout, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 指数などは出来高を返さない
		var vol64 int64
		if v.Volume != "" {
			vol64, err = strconv.ParseInt(v.Volume, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		candles = append(candles, candleentity.Candle{
			Symbol: symbol,
			Time:   tm,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol64,
		})
	}
	return candles, nil
}

// GetDividends は [from, to] に権利落ち日がある配当イベントを取得します。
// 配当が無い銘柄では空スライスを返します。
func (t *TwelveDataMarket) GetDividends(ctx context.Context, symbol string, from, to time.Time) ([]dividendentity.DividendEvent, error) {
	q := t.symbolQuery(symbol)
	q.Set("start_date", from.Format(dateLayout))
	q.Set("end_date", to.Format(dateLayout))

	var body dto.DividendsResponse
	if err := t.get(ctx, "dividends", q, &body); err != nil {
		return nil, err
	}
	if body.IsError() {
		if isNoData(body.ErrorFields) {
			return []dividendentity.DividendEvent{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	events := make([]dividendentity.DividendEvent, 0, len(body.Dividends))
	for _, d := range body.Dividends {
		ex, err := time.Parse(dateLayout, d.ExDate)
		if err != nil {
			return nil, fmt.Errorf("parse ex_date %q: %w", d.ExDate, err)
		}
		events = append(events, dividendentity.DividendEvent{
			Symbol: symbol,
			ExDate: ex,
			Amount: d.Amount,
		})
	}
	return events, nil
}

// symbolQuery は銘柄コードを symbol と mic_code に変換し、APIキーを含むクエリを作ります。
func (t *TwelveDataMarket) symbolQuery(ticker string) url.Values {
	sym, mic := t.symbols.Resolve(ticker)
	q := url.Values{}
	q.Set("symbol", sym)
	if mic != "" {
		q.Set("mic_code", mic)
	}
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	return q
}

// get は endpoint にGETリクエストを送り、JSONレスポンスを out にデコードします。
func (t *TwelveDataMarket) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// isNoData は API のエラー応答が「データなし」を意味するかを判定します。
func isNoData(e dto.ErrorFields) bool {
	if e.Code != http.StatusBadRequest && e.Code != http.StatusNotFound {
		return false
	}
	return strings.Contains(strings.ToLower(e.Message), "no data")
}
