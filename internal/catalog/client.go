package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Rate limiting: Jikan allows ~3 requests per second
	rateLimit = 3
	rateBurst = 5
)

// Client handles Jikan API requests with rate limiting. Upstream failures
// are returned as-is; the policy of collapsing them into a single error
// category lives in the Service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a new Jikan API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SearchManga queries /manga with the given parameters.
func (c *Client) SearchManga(ctx context.Context, params url.Values) (*jikanListResponse, error) {
	var response jikanListResponse
	if err := c.doRequest(ctx, "/manga", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search manga: %w", err)
	}
	return &response, nil
}

// GetMangaFull fetches the complete record for one title.
func (c *Client) GetMangaFull(ctx context.Context, id int64) (*jikanDetailResponse, error) {
	var response jikanDetailResponse
	endpoint := fmt.Sprintf("/manga/%d/full", id)
	if err := c.doRequest(ctx, endpoint, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch manga %d: %w", id, err)
	}
	return &response, nil
}

// GetTopManga fetches the ranked top list.
func (c *Client) GetTopManga(ctx context.Context, limit int) (*jikanListResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var response jikanListResponse
	if err := c.doRequest(ctx, "/top/manga", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch top manga: %w", err)
	}
	return &response, nil
}

// doRequest performs a single rate-limited GET. No retries: the upstream has
// no documented rate-limit contract, so failures surface immediately.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
