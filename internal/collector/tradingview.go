package collector

import (
	"ChartBridge/internal/bridge"
	"ChartBridge/internal/model"
)

// TradingViewFetcher implements Fetcher on top of the subprocess bridge.
type TradingViewFetcher struct {
	Bridge *bridge.Bridge
}

// NewTradingViewFetcher wraps an already-configured bridge.
func NewTradingViewFetcher(b *bridge.Bridge) *TradingViewFetcher {
	return &TradingViewFetcher{Bridge: b}
}

func (f *TradingViewFetcher) Name() string { return "tradingview" }

func (f *TradingViewFetcher) FetchBars(symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	return f.Bridge.Fetch(symbol, timeframe, limit)
}
