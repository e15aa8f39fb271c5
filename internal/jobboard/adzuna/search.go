package adzuna

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

// apiListing mirrors a single row of the Adzuna search response.
type apiListing struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Created     string  `json:"created"`
}

// Fetch walks the paged search endpoint until an empty page or the
// max-results cap is reached.
func (c *Client) Fetch(ctx context.Context, params *jobboard.SearchParams) (*jobboard.Listings, error) {
	if params == nil || params.Query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	perPage := params.ResultsPerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("what", params.Query)
	q.Set("results_per_page", strconv.Itoa(perPage))
	q.Set("content-type", contentType)
	if params.Location != "" {
		q.Set("where", params.Location)
	}

	listings := &jobboard.Listings{}

	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s/%s/search/%d", c.APIURL, c.country, page)

		response, err := c.getPage(ctx, pageURL, q)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if len(response.Results) == 0 {
			c.logger.Debug("no more results available", zap.Int("page", page))
			break
		}

		rows, err := decodeListings(response.Results)
		if err != nil {
			return nil, fmt.Errorf("decode page %d: %w", page, err)
		}

		now := time.Now().UTC()
		for _, row := range rows {
			listings.Items = append(listings.Items, normalize(row, now))
		}

		c.logger.Debug("fetched page",
			zap.Int("page", page),
			zap.Int("total", listings.Len()),
			zap.Int("found", response.Count),
		)

		if params.MaxResults > 0 && listings.Len() >= params.MaxResults {
			listings.Items = listings.Items[:params.MaxResults]
			c.logger.Info("reached maximum requested results", zap.Int("max_results", params.MaxResults))
			break
		}
	}

	return listings, nil
}

func decodeListings(items []any) ([]*apiListing, error) {
	var rows []*apiListing

	cfg := &mapstructure.DecoderConfig{
		Result:  &rows,
		TagName: "json",
		// Adzuna returns numeric ids; coerce them to strings.
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, err
	}

	return rows, nil
}

func normalize(row *apiListing, fetchedAt time.Time) *jobboard.Listing {
	return &jobboard.Listing{
		ID:          row.ID,
		Title:       row.Title,
		Company:     row.Company.DisplayName,
		Location:    row.Location.DisplayName,
		Description: row.Description,
		URL:         row.RedirectURL,
		SalaryMin:   row.SalaryMin,
		SalaryMax:   row.SalaryMax,
		CreatedAt:   row.Created,
		Source:      boardName,
		FetchedAt:   fetchedAt,
	}
}
