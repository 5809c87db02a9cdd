package store

import "ChartBridge/internal/model"

// Store caches fetched candles for the dashboard export and the sanity CLI.
type Store interface {
	SaveBars(symbol, timeframe string, bars []model.OHLCV) error
	Bars(symbol, timeframe string, limit int) ([]model.OHLCV, error)
	Close() error
}

// NoopStore is used when no database is configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveBars(_, _ string, _ []model.OHLCV) error { return nil }

func (n *NoopStore) Bars(_, _ string, _ int) ([]model.OHLCV, error) { return nil, nil }

func (n *NoopStore) Close() error { return nil }
