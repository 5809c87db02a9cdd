package wizard

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
)

// Wizard collects TradingView session credentials over the console and
// persists them to a .env file, merged over any existing entries.
type Wizard struct {
	In      io.Reader
	Out     io.Writer
	EnvFile string

	// Probe verifies the pasted credentials. A probe failure produces a
	// warning but the keys are still accepted: inability to verify is not
	// rejection. Nil disables verification.
	Probe func(session, signature string) error
}

// Run walks the user through the prompts and writes the env file.
func (w *Wizard) Run() error {
	in := bufio.NewReader(w.In)

	fmt.Fprintln(w.Out, "ChartBridge credential setup")
	fmt.Fprintln(w.Out, "Paste the values from your browser's tradingview.com cookies.")
	fmt.Fprintln(w.Out)

	session, err := w.prompt(in, "sessionid: ")
	if err == io.EOF {
		return fmt.Errorf("input ended before a session id was provided")
	}
	if err != nil {
		return err
	}
	if session == "" {
		return fmt.Errorf("session id is required")
	}

	signature, err := w.prompt(in, "sessionid_sign (optional): ")
	if err != nil && err != io.EOF {
		return err
	}

	if w.Probe != nil {
		if err := w.Probe(session, signature); err != nil {
			fmt.Fprintf(w.Out, "warning: could not verify credentials (%v); saving anyway\n", err)
		} else {
			fmt.Fprintln(w.Out, "credentials verified")
		}
	}

	vars, err := godotenv.Read(w.EnvFile)
	if err != nil {
		vars = map[string]string{}
	}
	vars["TRADINGVIEW_SESSION"] = session
	if signature != "" {
		vars["TRADINGVIEW_SIGNATURE"] = signature
	}
	if err := godotenv.Write(vars, w.EnvFile); err != nil {
		return fmt.Errorf("write %s: %w", w.EnvFile, err)
	}

	fmt.Fprintf(w.Out, "saved credentials to %s\n", w.EnvFile)
	return nil
}

func (w *Wizard) prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w.Out, label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read input: %w", err)
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return strings.TrimSpace(line), nil
}
