// Package webpage fetches web pages over HTTP and extracts their visible
// text content for analysis.
package webpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PiyushChall/CogniSynapseRank/internal/config"
)

// Common errors returned by the fetcher.
var (
	// ErrFetchFailed is returned when the page cannot be retrieved
	// (transport failure or non-2xx response).
	ErrFetchFailed = errors.New("failed to fetch page")

	// ErrUnsupportedContent is returned when the response is not HTML.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrEmptyURL is returned when the URL is empty.
	ErrEmptyURL = errors.New("url cannot be empty")
)

// Fetcher retrieves pages and extracts their text content.
type Fetcher struct {
	httpClient   *http.Client
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewFetcher creates a Fetcher with timeouts and body limits from configuration.
func NewFetcher(cfg config.FetchConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.With("component", "webpage_fetcher"),
	}
}

// FetchText retrieves the page at url and returns its visible text with
// normalized whitespace. Script, style, and noscript elements are stripped
// before extraction. Bodies larger than the configured cap are truncated.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	f.logger.Debug("fetching page", "url", url)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") &&
		!strings.Contains(contentType, "application/xhtml") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse HTML: %v", ErrFetchFailed, err)
	}

	doc.Find("script, style, noscript").Remove()

	text := normalizeWhitespace(doc.Text())
	f.logger.Debug("extracted page text", "url", url, "text_length", len(text))

	return text, nil
}

// normalizeWhitespace collapses all runs of whitespace into single spaces
// and trims the result, matching a space-separated, stripped extraction.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
