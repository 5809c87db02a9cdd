package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartBridge/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "candles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func bar(ts int64, close float64) model.OHLCV {
	return model.OHLCV{
		Time:  time.Unix(ts, 0),
		Open:  close - 1,
		High:  close + 1,
		Low:   close - 2,
		Close: close,
	}
}

func TestSaveAndLoadBars(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBars("BTCUSD", "D", []model.OHLCV{bar(100, 10), bar(200, 20)}))

	bars, err := s.Bars("BTCUSD", "D", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Unix(100, 0), bars[0].Time)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 20.0, bars[1].Close)
}

func TestSaveBarsUpserts(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBars("BTCUSD", "D", []model.OHLCV{bar(100, 10)}))
	require.NoError(t, s.SaveBars("BTCUSD", "D", []model.OHLCV{bar(100, 15)}))

	bars, err := s.Bars("BTCUSD", "D", 10)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 15.0, bars[0].Close)
}

func TestBarsLimitKeepsMostRecent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBars("BTCUSD", "D", []model.OHLCV{
		bar(100, 1), bar(200, 2), bar(300, 3),
	}))

	bars, err := s.Bars("BTCUSD", "D", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	// most recent two, still ascending
	assert.Equal(t, time.Unix(200, 0), bars[0].Time)
	assert.Equal(t, time.Unix(300, 0), bars[1].Time)
}

func TestBarsSeparatedByTimeframe(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveBars("BTCUSD", "D", []model.OHLCV{bar(100, 1)}))
	require.NoError(t, s.SaveBars("BTCUSD", "W", []model.OHLCV{bar(100, 2)}))

	daily, err := s.Bars("BTCUSD", "D", 10)
	require.NoError(t, err)
	weekly, err := s.Bars("BTCUSD", "W", 10)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	require.Len(t, weekly, 1)
	assert.Equal(t, 1.0, daily[0].Close)
	assert.Equal(t, 2.0, weekly[0].Close)
}
