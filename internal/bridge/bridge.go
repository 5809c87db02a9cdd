package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"ChartBridge/internal/model"
)

// Defaults for fetch parameters and process handling.
const (
	DefaultRuntime   = "node"
	DefaultPackage   = "@mathieuc/tradingview"
	DefaultTimeframe = "D"
	DefaultLimit     = 200
	DefaultTimeout   = 20 * time.Second
)

// waitKillDelay bounds how long Fetch waits for I/O after the process is
// killed, so grandchildren holding the output pipe cannot stall the call.
const waitKillDelay = 2 * time.Second

// Canonical credential variables expected by the external tool, and the
// short aliases some setups export instead.
const (
	envSession        = "TRADINGVIEW_SESSION"
	envSignature      = "TRADINGVIEW_SIGNATURE"
	envSessionAlias   = "TV_SESSION"
	envSignatureAlias = "TV_SIGNATURE"
)

// Config holds the bridge settings. Set once at construction, immutable
// thereafter.
type Config struct {
	Runtime string        // external runtime binary resolved on PATH
	Script  string        // path to the invocation script
	Package string        // package dir expected under node_modules next to the script
	Timeout time.Duration // bound on a single invocation
	Env     map[string]string
}

// Bridge fetches OHLCV bars by invoking an external Node-based tool as a
// subprocess. A single call either fully succeeds or fully fails; there are
// no retries and no partial results.
type Bridge struct {
	cfg Config
}

// New creates a Bridge, filling unset config fields with defaults.
func New(cfg Config) *Bridge {
	if cfg.Runtime == "" {
		cfg.Runtime = DefaultRuntime
	}
	if cfg.Package == "" {
		cfg.Package = DefaultPackage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Bridge{cfg: cfg}
}

// Available reports whether the external tool can be invoked: the runtime
// resolves on PATH, the script file exists, and the package directory is
// installed next to it. Evaluated fresh on every call; the environment can
// change between calls, so the result must never be cached.
func (b *Bridge) Available() bool {
	if _, err := exec.LookPath(b.cfg.Runtime); err != nil {
		return false
	}
	if fi, err := os.Stat(b.cfg.Script); err != nil || fi.IsDir() {
		return false
	}
	pkg := filepath.Join(filepath.Dir(b.cfg.Script), "node_modules", b.cfg.Package)
	if fi, err := os.Stat(pkg); err != nil || !fi.IsDir() {
		return false
	}
	return true
}

// chartPayload is the JSON shape the external tool writes to stdout.
type chartPayload struct {
	Periods []period `json:"periods"`
}

type period struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Fetch invokes the external tool for the given symbol and returns the bars
// it produced, sorted ascending by time. An empty payload yields zero rows
// and no error. When the tool is not installed, Fetch returns ErrUnavailable
// without spawning a process.
func (b *Bridge) Fetch(symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if !b.Available() {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.cfg.Runtime, b.cfg.Script,
		"--symbol", symbol,
		"--timeframe", timeframe,
		"--range", strconv.Itoa(limit),
	)
	cmd.Env = buildEnv(os.Environ(), b.cfg.Env)
	cmd.WaitDelay = waitKillDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Only a failed run counts as a timeout; a process that exited
		// cleanly keeps its payload even if the deadline lapsed while the
		// output was being drained.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, b.cfg.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &InvocationError{Stderr: stderr.String(), ExitCode: exitErr.ExitCode()}
		}
		return nil, fmt.Errorf("run bridge: %w", err)
	}

	var payload chartPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(payload.Periods) == 0 {
		return []model.OHLCV{}, nil
	}

	bars := make([]model.OHLCV, len(payload.Periods))
	for i, p := range payload.Periods {
		bars[i] = model.OHLCV{
			Time:   time.Unix(p.Time, 0),
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}
	return model.SortBars(bars), nil
}

// buildEnv merges extra over a copy of base and maps the short credential
// aliases onto the canonical names when only the alias is set. Pure: neither
// input is modified and no ambient state is touched.
func buildEnv(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range extra {
		merged[k] = v
	}

	aliases := [][2]string{
		{envSession, envSessionAlias},
		{envSignature, envSignatureAlias},
	}
	for _, a := range aliases {
		canonical, alias := a[0], a[1]
		if merged[canonical] == "" && merged[alias] != "" {
			merged[canonical] = merged[alias]
		}
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
