// Command clearfolio parses a brokerage statement from a file or stdin and
// prints the normalized portfolio as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clearfolio/clearfolio/internal/app"
	"github.com/clearfolio/clearfolio/internal/common"
	"github.com/clearfolio/clearfolio/internal/ingest"
	"github.com/clearfolio/clearfolio/internal/services/portfolio"
)

func main() {
	// .env is optional; real config comes from TOML and the environment
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("CLEARFOLIO_CONFIG"), "path to config file")
		filePath   = flag.String("file", "", "statement file (CSV, TXT, or PDF); stdin when omitted")
		compact    = flag.Bool("compact", false, "emit compact JSON instead of indented")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(common.GetFullVersion())
		return
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	input, err := readStatement(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		var extractErr *ingest.ExtractionError
		if errors.As(err, &extractErr) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", extractErr.Remediation())
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.Portfolio.ParsePortfolio(ctx, input)
	if err != nil {
		if errors.Is(err, portfolio.ErrNoPositions) {
			fmt.Fprintln(os.Stderr, "No positions found in the statement.")
			fmt.Fprintln(os.Stderr, "Check that the text contains holding rows with a symbol and a quantity.")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to parse statement: %v\n", err)
		}
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

// readStatement loads the statement text from a file or stdin. PDF files go
// through text extraction first.
func readStatement(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ingest.ExtractText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
