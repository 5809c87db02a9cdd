package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChartBridge/internal/model"
)

func barsFromCloses(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i].Close = c
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	ma, err := SMA(bars, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, ma, 1e-9)

	ma, err = SMA(bars, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, ma, 1e-9)
}

func TestSMAErrors(t *testing.T) {
	bars := barsFromCloses(1, 2)

	_, err := SMA(bars, 0)
	assert.Error(t, err)

	_, err = SMA(bars, 3)
	assert.Error(t, err)
}

func TestRSIAllGains(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8)

	rsi, err := RSI(bars, 5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)
}

func TestRSIInsufficientData(t *testing.T) {
	rsi, err := RSI(barsFromCloses(1, 2), 14)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rsi)
}

func TestRSIBalancedMoves(t *testing.T) {
	// alternating equal gains and losses should hover near 50
	bars := barsFromCloses(10, 11, 10, 11, 10, 11, 10, 11, 10, 11)
	rsi, err := RSI(bars, 4)
	require.NoError(t, err)
	assert.Greater(t, rsi, 30.0)
	assert.Less(t, rsi, 70.0)
}
