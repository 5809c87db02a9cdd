package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ChartBridge/internal/bridge"
	"ChartBridge/internal/collector"
	"ChartBridge/internal/config"
	"ChartBridge/internal/export"
	"ChartBridge/internal/logger"
	"ChartBridge/internal/scheduler"
	"ChartBridge/internal/store"
)

func main() {
	// .env written by `keysetup`; absence is fine
	godotenv.Load()

	if err := logger.Init(); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()
	logger.Log.Info("chartbridge starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("config validation", zap.Error(err))
	}

	// Init data sources
	b := bridge.New(bridge.Config{
		Runtime: cfg.Bridge.Runtime,
		Script:  cfg.Bridge.Script,
		Package: cfg.Bridge.Package,
		Timeout: cfg.BridgeTimeout(),
	})
	if !b.Available() {
		logger.Log.Warn("tradingview bridge not installed, fetches will use the fallback source",
			zap.String("script", cfg.Bridge.Script))
	}
	primary := collector.NewTradingViewFetcher(b)
	var fallback collector.Fetcher
	if cfg.Fallback.Enabled {
		fallback = collector.NewYahooFetcher(cfg.Proxy)
	}

	// Init candle store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			logger.Log.Warn("init sqlite store failed, using noop", zap.Error(err))
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init collector
	col := collector.New(primary, fallback, st, collector.Settings{
		Symbols:   cfg.Data.Symbols,
		Timeframe: cfg.Data.Timeframe,
		Limit:     cfg.Data.Limit,
	})

	// Dashboard export job
	var exportJob func()
	if cfg.Export.Dir != "" {
		exportDir := cfg.Export.Dir
		exportJob = func() {
			settings := col.Settings()
			for _, symbol := range settings.Symbols {
				bars, err := st.Bars(symbol, settings.Timeframe, settings.Limit)
				if err != nil {
					logger.Log.Warn("export: load bars", zap.String("symbol", symbol), zap.Error(err))
					continue
				}
				if err := export.ExportSymbol(exportDir, symbol, bars); err != nil {
					logger.Log.Warn("export failed", zap.String("symbol", symbol), zap.Error(err))
				}
			}
		}
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(col.Refresh, exportJob)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ExportCron); err != nil {
		logger.Log.Fatal("register cron jobs", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Config hot-reload
	go func() {
		watcher := config.Watcher{Path: cfgPath}
		if err := watcher.Start(ctx, func(newCfg *config.Config) {
			col.UpdateSettings(collector.Settings{
				Symbols:   newCfg.Data.Symbols,
				Timeframe: newCfg.Data.Timeframe,
				Limit:     newCfg.Data.Limit,
			})
		}); err != nil && ctx.Err() == nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	// Metrics endpoint
	if cfg.Metrics.ListenAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Log.Info("metrics listening", zap.String("addr", cfg.Metrics.ListenAddr))
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				logger.Log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Log.Info("RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	logger.Log.Info("chartbridge is running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Log.Info("shutdown signal received, stopping")
	cancel()
	logger.Log.Info("chartbridge stopped")
}
