package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xmer/fitgirl-rss-reader/app/metrics"
)

const (
	DefaultBaseURL = "https://store.steampowered.com"
	DefaultTimeout = 5 * time.Second

	storeAppURL = "https://store.steampowered.com/app/"
	freePrice   = "Free to Play"
)

// Client looks games up in the Steam store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a store client. requestsPerSecond paces every outbound
// request; zero or less disables pacing.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// Lookup finds the best store match for a game name. It returns nil when
// the game is not found or a required stage fails; it never errors.
func (c *Client) Lookup(ctx context.Context, name string) *Entry {
	start := time.Now()
	entry, err := c.lookup(ctx, name)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			slog.Warn("Steam API error", "game", name, "error", err)
		} else {
			slog.Warn("Unexpected error during Steam lookup", "game", name, "error", err)
		}
		metrics.RecordLookup("error", elapsed)
		return nil
	case entry == nil:
		metrics.RecordLookup("not_found", elapsed)
		return nil
	}

	metrics.RecordLookup("found", elapsed)
	return entry
}

func (c *Client) lookup(ctx context.Context, name string) (*Entry, error) {
	appID, found, err := c.search(ctx, name)
	if err != nil {
		return nil, &lookupError{stage: "search", err: err}
	}
	if !found {
		slog.Debug("Game not found on Steam", "game", name)
		return nil, nil
	}

	var (
		details *appDetails
		reviews optional[*reviewsResponse]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := c.details(gctx, appID)
		if err != nil {
			return &lookupError{stage: "details", err: err}
		}
		details = d
		return nil
	})
	g.Go(func() error {
		reviews = c.reviews(gctx, appID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if details == nil {
		slog.Debug("Could not fetch app details", "app_id", appID, "game", name)
		return nil, nil
	}

	if !reviews.ok() {
		slog.Debug("Reviews omitted", "app_id", appID, "error", reviews.err)
	}

	return buildEntry(appID, details, reviews), nil
}

func (c *Client) search(ctx context.Context, name string) (int64, bool, error) {
	query := url.Values{}
	query.Set("term", name)
	query.Set("cc", "us")

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/api/storesearch/?"+query.Encode(), &resp); err != nil {
		return 0, false, err
	}

	if len(resp.Items) == 0 {
		return 0, false, nil
	}

	return resp.Items[0].ID, true, nil
}

// details returns nil without error when the store reports no data for the app.
func (c *Client) details(ctx context.Context, appID int64) (*appDetails, error) {
	id := strconv.FormatInt(appID, 10)

	var resp map[string]detailsEnvelope
	if err := c.getJSON(ctx, c.baseURL+"/api/appdetails?appids="+id, &resp); err != nil {
		return nil, err
	}

	envelope, ok := resp[id]
	if !ok || !envelope.Success || envelope.Data == nil {
		return nil, nil
	}

	return envelope.Data, nil
}

func (c *Client) reviews(ctx context.Context, appID int64) optional[*reviewsResponse] {
	endpoint := fmt.Sprintf("%s/appreviews/%d?json=1&language=all&purchase_type=all", c.baseURL, appID)

	var resp reviewsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return optional[*reviewsResponse]{err: err}
	}

	if resp.Success != 1 || resp.QuerySummary == nil {
		return optional[*reviewsResponse]{err: errReviewsUnavailable}
	}

	return optional[*reviewsResponse]{value: &resp}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Message: "rate limiter wait failed", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &APIError{Message: fmt.Sprintf("request timed out after %s", c.timeout), Err: err}
		}
		return &APIError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected response " + resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to decode response", Err: err}
	}

	return nil
}

func buildEntry(appID int64, d *appDetails, reviews optional[*reviewsResponse]) *Entry {
	entry := &Entry{
		ID:   appID,
		Name: d.Name,
		URL:  storeAppURL + strconv.FormatInt(appID, 10),
		Media: Media{
			HeaderImage: d.HeaderImage,
		},
	}

	if d.ReleaseDate != nil {
		entry.ReleaseDate = d.ReleaseDate.Date
	}

	switch {
	case d.IsFree:
		entry.Price = freePrice
	case d.PriceOverview != nil:
		entry.Price = d.PriceOverview.FinalFormatted
	}

	if reviews.ok() {
		summary := reviews.value.QuerySummary
		entry.Ratings = &Ratings{
			Positive: summary.TotalPositive,
			Negative: summary.TotalNegative,
			Summary:  summary.ReviewScoreDesc,
		}
	}

	for _, category := range d.Categories {
		entry.Categories = append(entry.Categories, category.Description)
	}

	for _, shot := range d.Screenshots {
		entry.Media.Screenshots = append(entry.Media.Screenshots, shot.PathFull)
	}

	for _, movie := range d.Movies {
		video := Video{
			ID:        movie.ID,
			Name:      movie.Name,
			Thumbnail: movie.Thumbnail,
		}
		if movie.Webm != nil {
			video.LowRes = movie.Webm.Low
			video.HighRes = movie.Webm.Max
		}
		entry.Media.Videos = append(entry.Media.Videos, video)
	}

	return entry
}
