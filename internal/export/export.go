package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ChartBridge/internal/model"
)

// indicatorScript is the Pine source the dashboard offers for download.
const indicatorScript = `//@version=5
indicator("ChartBridge Dashboard", overlay=true)

ma200 = ta.sma(close, 200)
plot(ma200, color=color.orange, title="MA200", linewidth=2)

rsi = ta.rsi(close, 14)
bgcolor(rsi < 30 ? color.new(color.green, 85) : rsi > 70 ? color.new(color.red, 85) : na)

plotshape(ta.crossover(close, ma200), style=shape.triangleup, location=location.belowbar, color=color.green, size=size.tiny)
plotshape(ta.crossunder(close, ma200), style=shape.triangledown, location=location.abovebar, color=color.red, size=size.tiny)
`

// IndicatorScript returns the Pine indicator source.
func IndicatorScript() string { return indicatorScript }

// WriteCSV writes bars as CSV with an RFC 3339 time column.
func WriteCSV(w io.Writer, bars []model.OHLCV) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(time.RFC3339),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSymbol writes the candle CSV and the indicator script into dir.
func ExportSymbol(dir, symbol string, bars []model.OHLCV) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	csvPath := filepath.Join(dir, fileName(symbol)+".csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, bars); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	scriptPath := filepath.Join(dir, "dashboard_indicator.pine")
	if err := os.WriteFile(scriptPath, []byte(indicatorScript), 0o644); err != nil {
		return fmt.Errorf("write indicator script: %w", err)
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fileName makes a symbol safe for use as a filename (e.g. "BINANCE:BTCEUR").
func fileName(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', ' ':
			return '_'
		}
		return r
	}, symbol)
}
