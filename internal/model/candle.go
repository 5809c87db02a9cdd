package model

import (
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
// Bars are constructed once per fetch and never mutated afterwards.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SortBars orders bars ascending by timestamp and drops duplicate
// timestamps, keeping the first occurrence. External tools are not
// trusted to deliver ordered or unique rows.
func SortBars(bars []OHLCV) []OHLCV {
	if len(bars) < 2 {
		return bars
	}
	sorted := make([]OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:1]
	for _, b := range sorted[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
