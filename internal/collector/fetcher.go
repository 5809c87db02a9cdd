package collector

import "ChartBridge/internal/model"

// Fetcher defines the uniform contract for fetching candle data:
// given a symbol, timeframe code, and row limit, return zero or more bars
// sorted ascending by time, or an error.
type Fetcher interface {
	FetchBars(symbol, timeframe string, limit int) ([]model.OHLCV, error)
	Name() string
}
