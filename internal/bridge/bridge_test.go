package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript installs a fake invocation script plus the package directory
// the availability check looks for. The returned bridge runs the script with
// /bin/sh instead of node so tests exercise the real subprocess path.
func writeScript(t *testing.T, body string, timeout time.Duration) *Bridge {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "tvfetch.js")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	pkg := filepath.Join(dir, "node_modules", DefaultPackage)
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	return New(Config{Runtime: "sh", Script: script, Timeout: timeout})
}

func TestFetchUnavailableWhenScriptMissing(t *testing.T) {
	b := New(Config{Runtime: "sh", Script: filepath.Join(t.TempDir(), "missing.js")})
	require.False(t, b.Available())

	bars, err := b.Fetch("BTCUSD", "D", 10)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, bars)
}

func TestFetchUnavailableWhenPackageMissing(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tvfetch.js")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))

	b := New(Config{Runtime: "sh", Script: script})
	require.False(t, b.Available())

	_, err := b.Fetch("BTCUSD", "", 0)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchUnavailableWhenRuntimeMissing(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[]}'`, 0)
	b.cfg.Runtime = "definitely-not-a-real-runtime"
	require.False(t, b.Available())

	_, err := b.Fetch("BTCUSD", "", 0)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchParsesPayload(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[{"time":1700000000,"open":10,"high":12,"low":9,"close":11,"volume":100}]}'`, 0)
	require.True(t, b.Available())

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Unix(1700000000, 0), bars[0].Time)
	assert.Equal(t, 10.0, bars[0].Open)
	assert.Equal(t, 12.0, bars[0].High)
	assert.Equal(t, 9.0, bars[0].Low)
	assert.Equal(t, 11.0, bars[0].Close)
	assert.Equal(t, 100.0, bars[0].Volume)
}

func TestFetchEmptyPeriodsIsNotAnError(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[]}'`, 0)

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchMissingPeriodsFieldIsNotAnError(t *testing.T) {
	b := writeScript(t, `echo '{}'`, 0)

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchSortsBarsAscending(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[`+
		`{"time":200,"open":2,"high":2,"low":2,"close":2,"volume":2},`+
		`{"time":100,"open":1,"high":1,"low":1,"close":1,"volume":1}]}'`, 0)

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Unix(100, 0), bars[0].Time)
	assert.Equal(t, time.Unix(200, 0), bars[1].Time)
}

func TestFetchDedupesDuplicateTimestamps(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[`+
		`{"time":200,"open":2,"high":2,"low":2,"close":2,"volume":2},`+
		`{"time":100,"open":1,"high":1,"low":1,"close":1,"volume":1},`+
		`{"time":200,"open":9,"high":9,"low":9,"close":9,"volume":9}]}'`, 0)

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Unix(100, 0), bars[0].Time)
	assert.Equal(t, time.Unix(200, 0), bars[1].Time)
	// first occurrence of the duplicated timestamp wins
	assert.Equal(t, 2.0, bars[1].Close)
}

func TestFetchNonZeroExitCarriesStderr(t *testing.T) {
	b := writeScript(t, `echo "boom" >&2; exit 1`, 0)

	_, err := b.Fetch("BTCUSD", "D", 200)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "boom", invErr.Error())
	assert.Equal(t, 1, invErr.ExitCode)
}

func TestFetchNonZeroExitEmptyStderr(t *testing.T) {
	b := writeScript(t, `exit 3`, 0)

	_, err := b.Fetch("BTCUSD", "D", 200)
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "bridge process exited with status 3", invErr.Error())
}

func TestFetchMalformedOutput(t *testing.T) {
	b := writeScript(t, `echo 'not json'`, 0)

	_, err := b.Fetch("BTCUSD", "D", 200)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestFetchTimeout(t *testing.T) {
	b := writeScript(t, `sleep 5 >/dev/null 2>&1; echo '{"periods":[]}'`, 100*time.Millisecond)

	start := time.Now()
	_, err := b.Fetch("BTCUSD", "D", 200)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestFetchSuccessNearDeadlineIsNotTimeout(t *testing.T) {
	// The script exits 0 immediately, but a background child inherits the
	// stdout pipe and holds it open past the deadline, so the run completes
	// after the context has expired. The clean exit must keep its payload.
	b := writeScript(t, `echo '{"periods":[{"time":100,"open":1,"high":1,"low":1,"close":1,"volume":1}]}'
sleep 1 &
exit 0`, 300*time.Millisecond)

	bars, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
	require.Len(t, bars, 1)
}

func TestFetchRejectsEmptySymbol(t *testing.T) {
	b := writeScript(t, `echo '{"periods":[]}'`, 0)

	_, err := b.Fetch("  ", "D", 200)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestFetchChildEnvGetsCanonicalSession(t *testing.T) {
	t.Setenv("TRADINGVIEW_SESSION", "")

	// The script fails unless the canonical variable reached the child.
	b := writeScript(t,
		`[ "$TRADINGVIEW_SESSION" = "sess-123" ] || { echo "session missing" >&2; exit 1; }; echo '{"periods":[]}'`, 0)
	b.cfg.Env = map[string]string{"TV_SESSION": "sess-123"}

	_, err := b.Fetch("BTCUSD", "D", 200)
	require.NoError(t, err)
}

func TestBuildEnvAliasFallback(t *testing.T) {
	env := buildEnv([]string{"PATH=/bin"}, map[string]string{
		"TV_SESSION":   "abc",
		"TV_SIGNATURE": "sig",
	})
	assert.Contains(t, env, "TRADINGVIEW_SESSION=abc")
	assert.Contains(t, env, "TRADINGVIEW_SIGNATURE=sig")
	assert.Contains(t, env, "TV_SESSION=abc")
	assert.Contains(t, env, "PATH=/bin")
}

func TestBuildEnvDoesNotClobberCanonical(t *testing.T) {
	env := buildEnv([]string{"TRADINGVIEW_SESSION=keep"}, map[string]string{"TV_SESSION": "alias"})
	assert.Contains(t, env, "TRADINGVIEW_SESSION=keep")
}

func TestInvocationErrorTrimsStderr(t *testing.T) {
	err := &InvocationError{Stderr: "  boom \n", ExitCode: 1}
	assert.Equal(t, "boom", err.Error())
	assert.False(t, errors.Is(err, ErrUnavailable))
}
