package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ChartBridge/internal/bridge"
	"ChartBridge/internal/config"
	"ChartBridge/internal/wizard"
)

func main() {
	godotenv.Load()

	envFile := flag.String("env-file", ".env", "env file to write credentials to")
	noVerify := flag.Bool("no-verify", false, "skip the credential verification probe")
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

	w := &wizard.Wizard{
		In:      os.Stdin,
		Out:     os.Stdout,
		EnvFile: *envFile,
	}
	if !*noVerify {
		w.Probe = func(session, signature string) error {
			return probeFetch(cfg, session, signature)
		}
	}

	if err := w.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
}

// probeFetch checks the pasted credentials by fetching a single bar through
// the bridge. An unavailable bridge is a verification failure, not a reason
// to reject the keys; the wizard only warns on error.
func probeFetch(cfg *config.Config, session, signature string) error {
	b := bridge.New(bridge.Config{
		Runtime: cfg.Bridge.Runtime,
		Script:  cfg.Bridge.Script,
		Package: cfg.Bridge.Package,
		Timeout: cfg.BridgeTimeout(),
		Env: map[string]string{
			"TRADINGVIEW_SESSION":   session,
			"TRADINGVIEW_SIGNATURE": signature,
		},
	})
	_, err := b.Fetch(cfg.Data.Symbols[0], cfg.Data.Timeframe, 1)
	return err
}
