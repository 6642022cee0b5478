package tools

import (
	"context"

	"github.com/kodell/finchat/internal/providers"
)

var intervalEnum = []string{"1min", "5min", "15min", "30min", "60min", "daily", "weekly", "monthly"}

var seriesTypeEnum = []string{"close", "open", "high", "low"}

// StockQuoteTool fetches a real-time stock quote
type StockQuoteTool struct {
	market *providers.AlphaVantage
}

// NewStockQuoteTool creates the stock quote tool
func NewStockQuoteTool(market *providers.AlphaVantage) *StockQuoteTool {
	return &StockQuoteTool{market: market}
}

func (t *StockQuoteTool) Name() string {
	return "get_stock_quote"
}

func (t *StockQuoteTool) Description() string {
	return "Get real-time stock quote for any symbol including price, volume, change, and trading data."
}

func (t *StockQuoteTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "symbol",
			Type:        "string",
			Description: "Stock ticker symbol (e.g., 'AAPL', 'MSFT', 'GOOGL', 'TSLA')",
			Required:    true,
		},
	}
}

func (t *StockQuoteTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol := stringArg(args, "symbol")
	if symbol == "" {
		return "", providers.InvalidArgumentf("missing required parameter: symbol")
	}

	quote, err := t.market.Quote(ctx, symbol)
	if err != nil {
		return "", err
	}
	return encodeRecord(quote)
}

// StockDailyTool fetches daily OHLCV series data
type StockDailyTool struct {
	market *providers.AlphaVantage
}

// NewStockDailyTool creates the daily series tool
func NewStockDailyTool(market *providers.AlphaVantage) *StockDailyTool {
	return &StockDailyTool{market: market}
}

func (t *StockDailyTool) Name() string {
	return "get_stock_daily"
}

func (t *StockDailyTool) Description() string {
	return "Get daily time series data for a stock with OHLCV (Open, High, Low, Close, Volume) values."
}

func (t *StockDailyTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "symbol",
			Type:        "string",
			Description: "Stock ticker symbol",
			Required:    true,
		},
		{
			Name:        "outputsize",
			Type:        "string",
			Description: "'compact' (100 days) or 'full' (20+ years)",
			Enum:        []string{"compact", "full"},
			Default:     "compact",
		},
	}
}

func (t *StockDailyTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol := stringArg(args, "symbol")
	if symbol == "" {
		return "", providers.InvalidArgumentf("missing required parameter: symbol")
	}
	outputsize := stringArg(args, "outputsize")
	if outputsize == "" {
		outputsize = "compact"
	}

	series, err := t.market.DailySeries(ctx, symbol, outputsize)
	if err != nil {
		return "", err
	}
	return encodeRecord(series)
}

// SMATool fetches the provider-computed simple moving average
type SMATool struct {
	market *providers.AlphaVantage
}

// NewSMATool creates the SMA indicator tool
func NewSMATool(market *providers.AlphaVantage) *SMATool {
	return &SMATool{market: market}
}

func (t *SMATool) Name() string {
	return "get_sma"
}

func (t *SMATool) Description() string {
	return "Get Simple Moving Average (SMA) technical indicator for trend analysis."
}

func (t *SMATool) Parameters() []ParameterDef {
	return indicatorParameters(20)
}

func (t *SMATool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol, interval, timePeriod, seriesType, err := indicatorArgs(args, 20)
	if err != nil {
		return "", err
	}

	indicator, err := t.market.SMA(ctx, symbol, interval, timePeriod, seriesType)
	if err != nil {
		return "", err
	}
	return encodeRecord(indicator)
}

// RSITool fetches the provider-computed relative strength index
type RSITool struct {
	market *providers.AlphaVantage
}

// NewRSITool creates the RSI indicator tool
func NewRSITool(market *providers.AlphaVantage) *RSITool {
	return &RSITool{market: market}
}

func (t *RSITool) Name() string {
	return "get_rsi"
}

func (t *RSITool) Description() string {
	return "Get Relative Strength Index (RSI) indicator measuring momentum (0-100, >70 overbought, <30 oversold)."
}

func (t *RSITool) Parameters() []ParameterDef {
	return indicatorParameters(14)
}

func (t *RSITool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol, interval, timePeriod, seriesType, err := indicatorArgs(args, 14)
	if err != nil {
		return "", err
	}

	indicator, err := t.market.RSI(ctx, symbol, interval, timePeriod, seriesType)
	if err != nil {
		return "", err
	}
	return encodeRecord(indicator)
}

// indicatorParameters is shared by the SMA and RSI tools, which differ
// only in their default lookback period
func indicatorParameters(defaultPeriod int) []ParameterDef {
	return []ParameterDef{
		{
			Name:        "symbol",
			Type:        "string",
			Description: "Stock ticker symbol",
			Required:    true,
		},
		{
			Name:        "interval",
			Type:        "string",
			Description: "Time interval between data points",
			Enum:        intervalEnum,
			Default:     "daily",
		},
		{
			Name:        "time_period",
			Type:        "integer",
			Description: "Number of data points in the lookback window",
			Default:     defaultPeriod,
		},
		{
			Name:        "series_type",
			Type:        "string",
			Description: "Price type to compute over",
			Enum:        seriesTypeEnum,
			Default:     "close",
		},
	}
}

func indicatorArgs(args map[string]any, defaultPeriod int) (symbol, interval string, timePeriod int, seriesType string, err error) {
	symbol = stringArg(args, "symbol")
	if symbol == "" {
		return "", "", 0, "", providers.InvalidArgumentf("missing required parameter: symbol")
	}
	interval = stringArg(args, "interval")
	if interval == "" {
		interval = "daily"
	}
	timePeriod = intArg(args, "time_period", defaultPeriod)
	if timePeriod <= 0 {
		return "", "", 0, "", providers.InvalidArgumentf("time_period must be greater than 0")
	}
	seriesType = stringArg(args, "series_type")
	if seriesType == "" {
		seriesType = "close"
	}
	return symbol, interval, timePeriod, seriesType, nil
}

// FXRateTool fetches a real-time foreign exchange rate
type FXRateTool struct {
	market *providers.AlphaVantage
}

// NewFXRateTool creates the FX rate tool
func NewFXRateTool(market *providers.AlphaVantage) *FXRateTool {
	return &FXRateTool{market: market}
}

func (t *FXRateTool) Name() string {
	return "get_fx_rate"
}

func (t *FXRateTool) Description() string {
	return "Get real-time foreign exchange rate between two currencies."
}

func (t *FXRateTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "from_currency",
			Type:        "string",
			Description: "Source currency code (USD, EUR, GBP, JPY, etc.)",
			Required:    true,
		},
		{
			Name:        "to_currency",
			Type:        "string",
			Description: "Target currency code",
			Required:    true,
		},
	}
}

func (t *FXRateTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	from := stringArg(args, "from_currency")
	to := stringArg(args, "to_currency")
	if from == "" || to == "" {
		return "", providers.InvalidArgumentf("both from_currency and to_currency are required")
	}

	rate, err := t.market.FXRate(ctx, from, to)
	if err != nil {
		return "", err
	}
	return encodeRecord(rate)
}

// CryptoRateTool fetches a real-time cryptocurrency rate
type CryptoRateTool struct {
	market *providers.AlphaVantage
}

// NewCryptoRateTool creates the crypto rate tool
func NewCryptoRateTool(market *providers.AlphaVantage) *CryptoRateTool {
	return &CryptoRateTool{market: market}
}

func (t *CryptoRateTool) Name() string {
	return "get_crypto_rate"
}

func (t *CryptoRateTool) Description() string {
	return "Get real-time cryptocurrency exchange rate."
}

func (t *CryptoRateTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "symbol",
			Type:        "string",
			Description: "Crypto symbol (BTC, ETH, DOGE, etc.)",
			Required:    true,
		},
		{
			Name:        "market",
			Type:        "string",
			Description: "Market currency (default USD)",
			Default:     "USD",
		},
	}
}

func (t *CryptoRateTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	symbol := stringArg(args, "symbol")
	if symbol == "" {
		return "", providers.InvalidArgumentf("missing required parameter: symbol")
	}
	market := stringArg(args, "market")
	if market == "" {
		market = "USD"
	}

	rate, err := t.market.CryptoRate(ctx, symbol, market)
	if err != nil {
		return "", err
	}
	return encodeRecord(rate)
}
