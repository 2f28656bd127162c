package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockwatch/internal/pkg/logx"
)

const (
	FormatHTML = "html"
	FormatJSON = "json"

	// maxBodyBytes bounds how much of a quote page is read.
	maxBodyBytes = 4 << 20
)

// Config describes the quote source.
type Config struct {
	// URLTemplate contains one or more {symbol} placeholders.
	URLTemplate string
	Format      string
	Selectors   Selectors
	Timeout     time.Duration
	UserAgent   string
}

// Fetcher retrieves one quote page per call. It neither retries nor caches.
type Fetcher struct {
	client      *http.Client
	urlTemplate string
	userAgent   string
	extractor   Extractor
}

// New builds a Fetcher from explicit parts.
func New(client *http.Client, urlTemplate, userAgent string, extractor Extractor) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:      client,
		urlTemplate: urlTemplate,
		userAgent:   userAgent,
		extractor:   extractor,
	}
}

// NewFromConfig builds a Fetcher with an HTTP client bounded by cfg.Timeout
// and the extractor named by cfg.Format.
func NewFromConfig(cfg Config) (*Fetcher, error) {
	if !strings.Contains(cfg.URLTemplate, "{symbol}") {
		return nil, fmt.Errorf("quote url template %q has no {symbol} placeholder", cfg.URLTemplate)
	}

	var extractor Extractor
	switch cfg.Format {
	case FormatHTML, "":
		extractor = NewHTMLExtractor(cfg.Selectors)
	case FormatJSON:
		extractor = NewJSONExtractor(cfg.Selectors)
	default:
		return nil, fmt.Errorf("unknown quote format %q", cfg.Format)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	return New(client, cfg.URLTemplate, cfg.UserAgent, extractor), nil
}

// URL returns the page address for symbol.
func (f *Fetcher) URL(symbol string) string {
	return strings.ReplaceAll(f.urlTemplate, "{symbol}", url.PathEscape(symbol))
}

// Fetch retrieves and extracts the quote of symbol.
// A 404 or a page without the expected fields is NotFound; transport
// errors and other non-2xx statuses are Failed.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) Result {
	res := Result{Symbol: symbol}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(symbol), nil)
	if err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("build request: %w", err)
		return res
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	httpRes, err := f.client.Do(req)
	if err != nil {
		res.Outcome, res.Err = Failed, fmt.Errorf("fetch %s: %w", symbol, err)
		logx.FromContext(ctx).Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed")
		return res
	}
	defer httpRes.Body.Close()

	logx.FromContext(ctx).Debug().
		Str("symbol", symbol).
		Int("status", httpRes.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Quote page fetched")

	switch {
	case httpRes.StatusCode == http.StatusNotFound:
		res.Outcome, res.Err = NotFound, fmt.Errorf("fetch %s: %s", symbol, httpRes.Status)
		return res
	case httpRes.StatusCode < 200 || httpRes.StatusCode > 299:
		res.Outcome, res.Err = Failed, fmt.Errorf("fetch %s: %s", symbol, httpRes.Status)
		return res
	}

	fields, err := f.extractor.Extract(io.LimitReader(httpRes.Body, maxBodyBytes))
	if err != nil {
		res.Outcome, res.Err = NotFound, err
		if !errors.Is(err, ErrMissingField) {
			logx.FromContext(ctx).Debug().Err(err).Str("symbol", symbol).Msg("Quote page not parseable")
		}
		return res
	}

	res.Outcome = Found
	res.Quote = Quote{
		Name:            fields.Name,
		Symbol:          symbol,
		Price:           fields.Price,
		PercentIncrease: fields.Change,
	}
	return res
}

// Source is anything that can fetch a single quote.
type Source interface {
	Fetch(ctx context.Context, symbol string) Result
}

// FetchSequential fetches symbols from src one after another. Once ctx is
// done the remaining symbols are reported as Failed with the context error.
func FetchSequential(ctx context.Context, src Source, symbols []string) []Result {
	results := make([]Result, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Symbol: symbol, Outcome: Failed, Err: err})
			continue
		}
		results = append(results, src.Fetch(ctx, symbol))
	}
	return results
}
