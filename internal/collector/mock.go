package collector

import (
	"time"

	"ChartBridge/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	FetcherName string
	Price       float64
	Bars        []model.OHLCV
	Err         error
	Calls       int
}

func (m *MockFetcher) Name() string {
	if m.FetcherName != "" {
		return m.FetcherName
	}
	return "mock"
}

func (m *MockFetcher) FetchBars(_, _ string, limit int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, limit), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
