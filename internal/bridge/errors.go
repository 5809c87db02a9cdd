package bridge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable means the external runtime, script, or package is
	// missing. Callers should treat this as a normal outcome, not a failure.
	ErrUnavailable = errors.New("tradingview bridge unavailable")

	// ErrTimeout means the external process exceeded the configured bound.
	ErrTimeout = errors.New("tradingview bridge timed out")
)

// InvocationError is returned when the external process exits non-zero.
type InvocationError struct {
	Stderr   string
	ExitCode int
}

func (e *InvocationError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("bridge process exited with status %d", e.ExitCode)
}

// ParseError is returned when the process output is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse bridge output: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
