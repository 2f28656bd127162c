package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"stockwatch/internal/app/quote"
)

// quoteCmd fetches one quote, mainly to check selectors against a live page.
type quoteCmd struct {
	symbol string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch and print one quote" }
func (*quoteCmd) Usage() string {
	return `quote -symbol AAPL

Fetches the symbol with the configured quote source and prints the
extracted fields. Exits with status 1 when the symbol does not resolve.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol to fetch")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	symbol := strings.ToUpper(strings.TrimSpace(c.symbol))
	if symbol == "" && f.NArg() > 0 {
		symbol = strings.ToUpper(f.Arg(0))
	}
	if symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -symbol is required")
		return subcommands.ExitUsageError
	}

	cfg, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if !printQuote(os.Stdout, fetcher.Fetch(ctx, symbol)) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printQuote writes res in a short human form and reports whether it was found.
func printQuote(w io.Writer, res quote.Result) bool {
	if !res.OK() {
		fmt.Fprintf(w, "%s: %s (%v)\n", res.Symbol, res.Outcome, res.Err)
		return false
	}

	q := res.Quote
	fmt.Fprintf(w, "%s  %s\n  price:  %s\n  change: %s", q.Symbol, q.Name, q.Price, q.PercentIncrease)
	if d := q.Direction(); d != "" {
		fmt.Fprintf(w, " (%s)", d)
	}
	fmt.Fprintln(w)
	return true
}
