package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryServer(t *testing.T, handler func(function string, query map[string]string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)

		values := r.URL.Query()
		require.NotEmpty(t, values.Get("apikey"), "apikey must be attached to every call")

		query := map[string]string{}
		for key := range values {
			query[key] = values.Get(key)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, handler(values.Get("function"), query))
	}))
}

func TestQuote(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "GLOBAL_QUOTE", function)
		assert.Equal(t, "AAPL", query["symbol"])
		return `{"Global Quote":{
			"01. symbol":"AAPL",
			"02. open":"185.50",
			"03. high":"187.20",
			"04. low":"184.90",
			"05. price":"186.75",
			"06. volume":"54321000",
			"07. latest trading day":"2024-05-10",
			"08. previous close":"185.00",
			"09. change":"1.75",
			"10. change percent":"0.9459%"
		}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	quote, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 186.75, quote.Price)
	assert.Equal(t, 1.75, quote.Change)
	assert.Equal(t, "0.9459%", quote.ChangePercent)
	assert.Equal(t, int64(54321000), quote.Volume)
	assert.Equal(t, "2024-05-10", quote.LatestTradingDay)
	assert.Equal(t, 185.0, quote.PreviousClose)
}

func TestQuoteEmptyPayload(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		return `{"Global Quote":{}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	_, err := p.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQuoteMissingCredential(t *testing.T) {
	calls := 0
	server := newQueryServer(t, func(function string, query map[string]string) string {
		calls++
		return `{}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "", "", 5*time.Second)
	_, err := p.Quote(context.Background(), "AAPL")
	require.Error(t, err)

	assert.Equal(t, KindMissingCredential, KindOf(err))
	assert.Equal(t, 0, calls, "no request may be issued without a key")
}

func TestQuoteLenientParsing(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		return `{"Global Quote":{"01. symbol":"AAPL","05. price":"not-a-number"}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	quote, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 0.0, quote.Price)
	assert.Equal(t, int64(0), quote.Volume)
	assert.Equal(t, "0%", quote.ChangePercent)
}

func TestDailySeriesTruncation(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "TIME_SERIES_DAILY", function)
		assert.Equal(t, "compact", query["outputsize"])

		series := ""
		for day := 1; day <= 15; day++ {
			if day > 1 {
				series += ","
			}
			series += fmt.Sprintf(`"2024-05-%02d":{"1. open":"10","2. high":"11","3. low":"9","4. close":"%d","5. volume":"100"}`, day, day)
		}
		return fmt.Sprintf(`{"Meta Data":{"2. Symbol":"IBM","3. Last Refreshed":"2024-05-15"},"Time Series (Daily)":{%s}}`, series)
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	ts, err := p.DailySeries(context.Background(), "IBM", "compact")
	require.NoError(t, err)

	assert.Equal(t, "IBM", ts.Symbol)
	assert.Equal(t, "2024-05-15", ts.LastRefreshed)
	assert.Equal(t, 15, ts.TotalPoints)
	require.Len(t, ts.Points, 10)

	// Most recent first
	assert.Equal(t, "2024-05-15", ts.Points[0].Date)
	assert.Equal(t, "2024-05-06", ts.Points[9].Date)
	assert.Equal(t, 15.0, ts.Points[0].Close)
}

func TestDailySeriesNotFound(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		return `{"Error Message":"Invalid API call"}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	_, err := p.DailySeries(context.Background(), "NOPE", "compact")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSMA(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "SMA", function)
		assert.Equal(t, "daily", query["interval"])
		assert.Equal(t, "20", query["time_period"])
		assert.Equal(t, "close", query["series_type"])
		return `{
			"Meta Data":{"1: Symbol":"MSFT","3: Interval":"daily","4: Time Period":"20","5: Series Type":"close"},
			"Technical Analysis: SMA":{
				"2024-05-10":{"SMA":"410.1234"},
				"2024-05-09":{"SMA":"408.5678"}
			}
		}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	ind, err := p.SMA(context.Background(), "MSFT", "daily", 20, "close")
	require.NoError(t, err)

	assert.Equal(t, "MSFT", ind.Symbol)
	assert.Equal(t, "SMA", ind.Indicator)
	assert.Equal(t, 20, ind.TimePeriod)
	require.Len(t, ind.Values, 2)
	assert.Equal(t, "2024-05-10", ind.Values[0].Date)
	assert.Equal(t, 410.1234, ind.Values[0].Value)
}

func TestRSIEmptySeries(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "RSI", function)
		return `{"Meta Data":{"1: Symbol":"MSFT"},"Technical Analysis: RSI":{}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	_, err := p.RSI(context.Background(), "MSFT", "daily", 14, "close")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestFXRate(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "CURRENCY_EXCHANGE_RATE", function)
		assert.Equal(t, "USD", query["from_currency"])
		assert.Equal(t, "EUR", query["to_currency"])
		return `{"Realtime Currency Exchange Rate":{
			"1. From_Currency Code":"USD",
			"2. From_Currency Name":"United States Dollar",
			"3. To_Currency Code":"EUR",
			"4. To_Currency Name":"Euro",
			"5. Exchange Rate":"0.92340000",
			"6. Last Refreshed":"2024-05-10 16:00:01",
			"8. Bid Price":"0.92330000",
			"9. Ask Price":"0.92350000"
		}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	rate, err := p.FXRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)

	assert.Equal(t, "USD", rate.FromCode)
	assert.Equal(t, "Euro", rate.ToName)
	assert.Equal(t, 0.9234, rate.Rate)
	assert.Equal(t, 0.9233, rate.Bid)
	assert.Equal(t, 0.9235, rate.Ask)
}

func TestCryptoRate(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		assert.Equal(t, "CURRENCY_EXCHANGE_RATE", function)
		assert.Equal(t, "BTC", query["from_currency"])
		assert.Equal(t, "USD", query["to_currency"])
		return `{"Realtime Currency Exchange Rate":{
			"1. From_Currency Code":"BTC",
			"2. From_Currency Name":"Bitcoin",
			"3. To_Currency Code":"USD",
			"5. Exchange Rate":"62000.50000000"
		}}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	rate, err := p.CryptoRate(context.Background(), "BTC", "USD")
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin", rate.FromName)
	assert.Equal(t, 62000.5, rate.Rate)
}

func TestExchangeRateNotFound(t *testing.T) {
	server := newQueryServer(t, func(function string, query map[string]string) string {
		return `{}`
	})
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	_, err := p.FXRate(context.Background(), "XXX", "YYY")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewAlphaVantage(server.URL, "test-key", "", 5*time.Second)
	_, err := p.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestSortedDatesDesc(t *testing.T) {
	m := map[string]string{
		"2024-01-02": "",
		"2023-12-31": "",
		"2024-01-10": "",
	}
	assert.Equal(t, []string{"2024-01-10", "2024-01-02", "2023-12-31"}, sortedDatesDesc(m))
}
