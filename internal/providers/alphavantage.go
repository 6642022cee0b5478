package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kodell/finchat/internal/logger"
)

// maxSeriesPoints bounds how many series entries are passed back to the
// model per call. Callers needing more history must request a wider raw
// range upstream.
const maxSeriesPoints = 10

// Quote is a normalized real-time stock quote
type Quote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    string  `json:"change_percent"`
	Volume           int64   `json:"volume"`
	LatestTradingDay string  `json:"latest_trading_day"`
	PreviousClose    float64 `json:"previous_close"`
	Open             float64 `json:"open"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
}

// DailyPoint is one OHLCV entry of a daily series
type DailyPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// TimeSeries is a normalized daily price series, most recent first
type TimeSeries struct {
	Symbol        string       `json:"symbol"`
	LastRefreshed string       `json:"last_refreshed"`
	Points        []DailyPoint `json:"time_series"`
	TotalPoints   int          `json:"total_points"`
}

// IndicatorPoint is one dated value of a technical indicator
type IndicatorPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Indicator is a normalized technical-indicator series
type Indicator struct {
	Symbol     string           `json:"symbol"`
	Indicator  string           `json:"indicator"`
	Interval   string           `json:"interval"`
	TimePeriod int              `json:"time_period"`
	SeriesType string           `json:"series_type"`
	Values     []IndicatorPoint `json:"values"`
}

// ExchangeRate is a normalized currency or crypto exchange rate
type ExchangeRate struct {
	FromCode      string  `json:"from_currency"`
	FromName      string  `json:"from_currency_name"`
	ToCode        string  `json:"to_currency"`
	ToName        string  `json:"to_currency_name"`
	Rate          float64 `json:"exchange_rate"`
	LastRefreshed string  `json:"last_refreshed"`
	Bid           float64 `json:"bid_price"`
	Ask           float64 `json:"ask_price"`
}

// AlphaVantage fetches market data. Every operation hits the single
// /query endpoint, distinguished by the function parameter, and requires
// an API key.
type AlphaVantage struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewAlphaVantage creates an Alpha Vantage adapter
func NewAlphaVantage(baseURL, apiKey, userAgent string, timeout time.Duration) *AlphaVantage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "FinChat/0.1"
	}
	return &AlphaVantage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(apiKey),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// Quote fetches a real-time quote for a symbol
func (p *AlphaVantage) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if p.apiKey == "" {
		return nil, MissingCredentialf("ALPHA_VANTAGE_API_KEY is not configured")
	}
	logger.Info("fetching stock quote for %s", symbol)

	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)

	var resp struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := p.getJSON(ctx, query, &resp); err != nil {
		return nil, err
	}

	if len(resp.GlobalQuote) == 0 {
		return nil, NotFoundf("invalid symbol or no data available for '%s'", symbol)
	}

	quote := resp.GlobalQuote
	return &Quote{
		Symbol:           stringOr(quote["01. symbol"], symbol),
		Price:            parseFloat(quote["05. price"]),
		Change:           parseFloat(quote["09. change"]),
		ChangePercent:    stringOr(quote["10. change percent"], "0%"),
		Volume:           parseInt(quote["06. volume"]),
		LatestTradingDay: quote["07. latest trading day"],
		PreviousClose:    parseFloat(quote["08. previous close"]),
		Open:             parseFloat(quote["02. open"]),
		High:             parseFloat(quote["03. high"]),
		Low:              parseFloat(quote["04. low"]),
	}, nil
}

// DailySeries fetches daily OHLCV data, most recent first
func (p *AlphaVantage) DailySeries(ctx context.Context, symbol, outputsize string) (*TimeSeries, error) {
	if p.apiKey == "" {
		return nil, MissingCredentialf("ALPHA_VANTAGE_API_KEY is not configured")
	}
	logger.Info("fetching daily series for %s (%s)", symbol, outputsize)

	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", outputsize)

	var resp struct {
		MetaData map[string]string            `json:"Meta Data"`
		Series   map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := p.getJSON(ctx, query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Series) == 0 {
		return nil, NotFoundf("invalid symbol or no data available for '%s'", symbol)
	}

	points := make([]DailyPoint, 0, maxSeriesPoints)
	for _, date := range sortedDatesDesc(resp.Series) {
		if len(points) == maxSeriesPoints {
			break
		}
		values := resp.Series[date]
		points = append(points, DailyPoint{
			Date:   date,
			Open:   parseFloat(values["1. open"]),
			High:   parseFloat(values["2. high"]),
			Low:    parseFloat(values["3. low"]),
			Close:  parseFloat(values["4. close"]),
			Volume: parseInt(values["5. volume"]),
		})
	}

	return &TimeSeries{
		Symbol:        stringOr(resp.MetaData["2. Symbol"], symbol),
		LastRefreshed: resp.MetaData["3. Last Refreshed"],
		Points:        points,
		TotalPoints:   len(resp.Series),
	}, nil
}

// SMA fetches the simple-moving-average indicator
func (p *AlphaVantage) SMA(ctx context.Context, symbol, interval string, timePeriod int, seriesType string) (*Indicator, error) {
	return p.indicator(ctx, "SMA", symbol, interval, timePeriod, seriesType)
}

// RSI fetches the relative-strength-index indicator
func (p *AlphaVantage) RSI(ctx context.Context, symbol, interval string, timePeriod int, seriesType string) (*Indicator, error) {
	return p.indicator(ctx, "RSI", symbol, interval, timePeriod, seriesType)
}

// indicator fetches a provider-computed technical indicator series
func (p *AlphaVantage) indicator(ctx context.Context, name, symbol, interval string, timePeriod int, seriesType string) (*Indicator, error) {
	if p.apiKey == "" {
		return nil, MissingCredentialf("ALPHA_VANTAGE_API_KEY is not configured")
	}
	logger.Info("fetching %s for %s", name, symbol)

	query := url.Values{}
	query.Set("function", name)
	query.Set("symbol", symbol)
	query.Set("interval", interval)
	query.Set("time_period", strconv.Itoa(timePeriod))
	query.Set("series_type", seriesType)

	var raw map[string]json.RawMessage
	if err := p.getJSON(ctx, query, &raw); err != nil {
		return nil, err
	}

	var series map[string]map[string]string
	if data, ok := raw["Technical Analysis: "+name]; ok {
		if err := json.Unmarshal(data, &series); err != nil {
			return nil, Unavailablef("failed to parse %s response: %v", name, err)
		}
	}
	if len(series) == 0 {
		return nil, NotFoundf("could not fetch %s data for '%s'", name, symbol)
	}

	var meta map[string]string
	if data, ok := raw["Meta Data"]; ok {
		_ = json.Unmarshal(data, &meta)
	}

	values := make([]IndicatorPoint, 0, maxSeriesPoints)
	for _, date := range sortedDatesDesc(series) {
		if len(values) == maxSeriesPoints {
			break
		}
		values = append(values, IndicatorPoint{
			Date:  date,
			Value: parseFloat(series[date][name]),
		})
	}

	result := &Indicator{
		Symbol:     stringOr(meta["1: Symbol"], symbol),
		Indicator:  name,
		Interval:   stringOr(meta["3: Interval"], interval),
		TimePeriod: timePeriod,
		SeriesType: stringOr(meta["5: Series Type"], seriesType),
		Values:     values,
	}
	if period := parseInt(meta["4: Time Period"]); period > 0 {
		result.TimePeriod = int(period)
	}
	return result, nil
}

// FXRate fetches a real-time foreign exchange rate
func (p *AlphaVantage) FXRate(ctx context.Context, from, to string) (*ExchangeRate, error) {
	return p.exchangeRate(ctx, from, to)
}

// CryptoRate fetches a real-time cryptocurrency rate against a market
// currency. The upstream endpoint is the same as for FX.
func (p *AlphaVantage) CryptoRate(ctx context.Context, symbol, market string) (*ExchangeRate, error) {
	return p.exchangeRate(ctx, symbol, market)
}

func (p *AlphaVantage) exchangeRate(ctx context.Context, from, to string) (*ExchangeRate, error) {
	if p.apiKey == "" {
		return nil, MissingCredentialf("ALPHA_VANTAGE_API_KEY is not configured")
	}
	logger.Info("fetching exchange rate %s/%s", from, to)

	query := url.Values{}
	query.Set("function", "CURRENCY_EXCHANGE_RATE")
	query.Set("from_currency", from)
	query.Set("to_currency", to)

	var resp struct {
		Rate map[string]string `json:"Realtime Currency Exchange Rate"`
	}
	if err := p.getJSON(ctx, query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Rate) == 0 {
		return nil, NotFoundf("could not fetch exchange rate for %s/%s", from, to)
	}

	rate := resp.Rate
	return &ExchangeRate{
		FromCode:      stringOr(rate["1. From_Currency Code"], from),
		FromName:      rate["2. From_Currency Name"],
		ToCode:        stringOr(rate["3. To_Currency Code"], to),
		ToName:        rate["4. To_Currency Name"],
		Rate:          parseFloat(rate["5. Exchange Rate"]),
		LastRefreshed: rate["6. Last Refreshed"],
		Bid:           parseFloat(rate["8. Bid Price"]),
		Ask:           parseFloat(rate["9. Ask Price"]),
	}, nil
}

// getJSON issues a GET against /query with the API key attached
func (p *AlphaVantage) getJSON(ctx context.Context, query url.Values, out interface{}) error {
	query.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/query?"+query.Encode(), nil)
	if err != nil {
		return Unavailablef("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Unavailablef("alpha vantage request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unavailablef("alpha vantage returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Unavailablef("failed to parse alpha vantage response: %v", err)
	}
	return nil
}

// sortedDatesDesc returns map keys sorted most recent first. Alpha
// Vantage date keys sort correctly as strings (YYYY-MM-DD).
func sortedDatesDesc[V any](m map[string]V) []string {
	dates := make([]string, 0, len(m))
	for date := range m {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// parseFloat parses a numeric string, treating absent or malformed
// values as zero to stay resilient to partial upstream schemas
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt parses an integer string, defaulting to zero
func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func stringOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
