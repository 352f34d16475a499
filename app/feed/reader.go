package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Reader downloads the feed and turns it into release candidates.
type Reader struct {
	url        string
	httpClient *http.Client
	parser     *Parser
	filterer   *Filterer
	userAgent  string
	timeout    time.Duration
}

func NewReader(url string, httpClient *http.Client, parser *Parser, filterer *Filterer, userAgent string, timeout time.Duration) *Reader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Reader{
		url:        url,
		httpClient: httpClient,
		parser:     parser,
		filterer:   filterer,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (r *Reader) URL() string {
	return r.url
}

// Fetch returns the category-matching items of the feed in feed order.
// Transport failures are FetchErrors, unusable documents are ParseErrors.
func (r *Reader) Fetch(ctx context.Context) ([]Item, error) {
	slog.Debug("Fetching feed", "url", r.url)

	data, err := r.fetchFeed(ctx)
	if err != nil {
		return nil, &FetchError{URL: r.url, Err: err}
	}

	entries, err := r.parser.Run(data)
	if err != nil {
		return nil, err
	}

	items := r.parser.Normalize(r.filterer.Run(entries))

	slog.Info("Fetched feed", "url", r.url, "total", len(entries), "matching", len(items))

	return items, nil
}

func (r *Reader) fetchFeed(ctx context.Context) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
