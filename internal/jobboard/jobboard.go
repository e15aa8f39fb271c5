package jobboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SearchParams describes a search against a job board.
type SearchParams struct {
	Query          string
	Location       string
	MaxResults     int
	ResultsPerPage int
}

// Fetcher is implemented by every job board client.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, params *SearchParams) (*Listings, error)
}

// Manager fans a search out to all registered boards and concatenates
// the results.
type Manager struct {
	fetchers []Fetcher
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger, fetchers ...Fetcher) *Manager {
	return &Manager{
		fetchers: fetchers,
		logger:   logger,
	}
}

// FetchAll runs the search on every board. A failing board does not abort
// the others; an error is returned only when no board produced results.
func (m *Manager) FetchAll(ctx context.Context, params *SearchParams) (*Listings, error) {
	combined := &Listings{}

	var lastErr error
	for _, fetcher := range m.fetchers {
		listings, err := fetcher.Fetch(ctx, params)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", fetcher.Name(), err)
			m.logger.Warn("fetching from board failed",
				zap.String("board", fetcher.Name()),
				zap.Error(err),
			)
			continue
		}

		m.logger.Info("fetched listings from board",
			zap.String("board", fetcher.Name()),
			zap.Int("count", listings.Len()),
		)

		combined.Items = append(combined.Items, listings.Items...)
	}

	if combined.Len() == 0 && lastErr != nil {
		return nil, lastErr
	}

	return combined, nil
}
