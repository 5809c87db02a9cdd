package collector

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ChartBridge/internal/bridge"
	"ChartBridge/internal/logger"
	"ChartBridge/internal/metrics"
	"ChartBridge/internal/model"
	"ChartBridge/internal/store"
)

// Settings controls what a refresh run fetches. Updatable at runtime for
// config hot-reload.
type Settings struct {
	Symbols   []string
	Timeframe string
	Limit     int
}

// Collector orchestrates fetching and caching. Fallback policy lives here:
// the bridge only reports unavailability, and the collector decides to try
// the secondary source.
type Collector struct {
	primary  Fetcher
	fallback Fetcher
	store    store.Store

	mu       sync.Mutex
	settings Settings
}

// New creates a Collector. fallback may be nil.
func New(primary, fallback Fetcher, st store.Store, settings Settings) *Collector {
	if st == nil {
		st = store.NewNoopStore()
	}
	return &Collector{primary: primary, fallback: fallback, store: st, settings: settings}
}

// UpdateSettings swaps the refresh settings; in-flight fetches are unaffected.
func (c *Collector) UpdateSettings(settings Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
}

// Settings returns a copy of the current refresh settings.
func (c *Collector) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.settings
	s.Symbols = append([]string(nil), c.settings.Symbols...)
	return s
}

// Refresh fetches and caches every configured symbol. Per-symbol failures
// are logged and do not stop the run.
func (c *Collector) Refresh() {
	settings := c.Settings()
	for _, symbol := range settings.Symbols {
		bars, err := c.CollectSymbol(symbol, settings.Timeframe, settings.Limit)
		if err != nil {
			logger.Log.Warn("refresh failed",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		logger.Log.Info("refreshed symbol",
			zap.String("symbol", symbol), zap.Int("bars", len(bars)))
	}
}

// CollectSymbol fetches bars for one symbol and persists what it got.
func (c *Collector) CollectSymbol(symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	bars, source, err := c.fetch(symbol, timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", symbol, err)
	}
	metrics.BarsFetched.WithLabelValues(source).Add(float64(len(bars)))

	if err := c.store.SaveBars(symbol, timeframe, bars); err != nil {
		metrics.StoreErrors.Inc()
		logger.Log.Warn("cache bars failed",
			zap.String("symbol", symbol), zap.Error(err))
	}
	return bars, nil
}

func (c *Collector) fetch(symbol, timeframe string, limit int) ([]model.OHLCV, string, error) {
	bars, err := c.timedFetch(c.primary, symbol, timeframe, limit)
	if err == nil {
		return bars, c.primary.Name(), nil
	}
	if !errors.Is(err, bridge.ErrUnavailable) || c.fallback == nil {
		return nil, c.primary.Name(), err
	}

	logger.Log.Debug("primary source unavailable, trying fallback",
		zap.String("primary", c.primary.Name()),
		zap.String("fallback", c.fallback.Name()))
	bars, err = c.timedFetch(c.fallback, symbol, timeframe, limit)
	if err != nil {
		return nil, c.fallback.Name(), err
	}
	return bars, c.fallback.Name(), nil
}

func (c *Collector) timedFetch(f Fetcher, symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	start := time.Now()
	bars, err := f.FetchBars(symbol, timeframe, limit)
	metrics.FetchDuration.WithLabelValues(f.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.FetchTotal.WithLabelValues(f.Name(), "success").Inc()
	case errors.Is(err, bridge.ErrUnavailable):
		metrics.FetchTotal.WithLabelValues(f.Name(), "unavailable").Inc()
	default:
		metrics.FetchTotal.WithLabelValues(f.Name(), "error").Inc()
	}
	return bars, err
}
