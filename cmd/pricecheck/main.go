package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ChartBridge/internal/bridge"
	"ChartBridge/internal/collector"
	"ChartBridge/internal/config"
	"ChartBridge/internal/indicator"
	"ChartBridge/internal/model"
)

// pricecheck fetches recent bars for one symbol and prints sanity checks.
// Exit status is non-zero when any check fails.
func main() {
	godotenv.Load()

	symbol := flag.String("symbol", "", "symbol to check (default: first configured symbol)")
	timeframe := flag.String("timeframe", "D", "timeframe code")
	limit := flag.Int("limit", 300, "number of bars to fetch")
	flag.Parse()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *symbol == "" {
		*symbol = cfg.Data.Symbols[0]
	}

	b := bridge.New(bridge.Config{
		Runtime: cfg.Bridge.Runtime,
		Script:  cfg.Bridge.Script,
		Package: cfg.Bridge.Package,
		Timeout: cfg.BridgeTimeout(),
	})
	var fetcher collector.Fetcher = collector.NewTradingViewFetcher(b)
	if !b.Available() {
		fmt.Println("note: tradingview bridge not installed, using yahoo")
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}

	fmt.Printf("fetching %s (%s, %d bars) via %s...\n", *symbol, *timeframe, *limit, fetcher.Name())
	bars, err := fetcher.FetchBars(*symbol, *timeframe, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	check := func(name string, ok bool, detail string) {
		status := "PASS"
		if !ok {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %-28s %s\n", status, name, detail)
	}

	check("bars returned", len(bars) > 0, fmt.Sprintf("%d bars", len(bars)))
	if len(bars) == 0 {
		os.Exit(1)
	}

	latest := bars[len(bars)-1]
	check("latest close positive", latest.Close > 0,
		fmt.Sprintf("close=%.4f at %s", latest.Close, latest.Time.Format("2006-01-02")))

	check("high >= low on every bar", highAboveLow(bars), "")
	check("timestamps ascending", ascending(bars), "")

	if ma, err := indicator.SMA(bars, 200); err == nil {
		rel := "below"
		if latest.Close >= ma {
			rel = "above"
		}
		check("MA200 sane", ma > 0, fmt.Sprintf("ma200=%.4f, price %s", ma, rel))
	} else {
		fmt.Printf("[SKIP] %-28s %v\n", "MA200 sane", err)
	}

	if rsi, err := indicator.RSI(bars, 14); err == nil {
		check("RSI within bounds", rsi >= 0 && rsi <= 100, fmt.Sprintf("rsi=%.2f", rsi))
	}

	if failed > 0 {
		fmt.Printf("%d check(s) failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("all checks passed")
}

func highAboveLow(bars []model.OHLCV) bool {
	for _, b := range bars {
		if b.High < b.Low {
			return false
		}
	}
	return true
}

func ascending(bars []model.OHLCV) bool {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return false
		}
	}
	return true
}
