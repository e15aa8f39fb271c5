package adzuna

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
)

type searchResponse struct {
	Results []any `json:"results"`
	Count   int   `json:"count"`
}

// getPage makes a single GET request with rate limiting and 429 retries.
func (c *Client) getPage(ctx context.Context, pageURL string, q url.Values) (*searchResponse, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", c.UserAgent)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept-Encoding", contentEncoding)
		req.URL.RawQuery = q.Encode()

		c.logger.Debug("make request", zap.String("url", req.URL.String()))

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("rate limited after %d attempts: %s", attempt+1, resp.Status)
			}

			c.logger.Warn("rate limit reached, waiting before retry",
				zap.Duration("delay", c.retryDelay),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.maxRetries+1),
			)

			if err := utils.WaitFor(ctx, c.retryDelay); err != nil {
				return nil, err
			}
			continue
		}

		return c.parseSearchResponse(resp)
	}

	return nil, fmt.Errorf("max retries exceeded")
}

func (c *Client) parseSearchResponse(resp *http.Response) (*searchResponse, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		body = gzipReader
	}

	var response *searchResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}

	// A literal null body decodes without error into a nil response.
	if response == nil {
		return nil, fmt.Errorf("empty search response")
	}

	return response, nil
}
