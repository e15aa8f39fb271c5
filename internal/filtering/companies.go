package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

type companiesFilter struct {
	companies []string
	logger    *zap.Logger
}

// NewExcludedCompanies creates a filter that removes listings from
// companies configured in the config. Matching is case-insensitive.
func NewExcludedCompanies(companies []string, logger *zap.Logger) Filter {
	return &companiesFilter{
		companies: lowerAll(companies),
		logger:    logger,
	}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error) {
	initial := l.Len()
	if len(f.companies) == 0 {
		return l, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excludedSet := make(map[string]struct{}, len(f.companies))
	for _, company := range f.companies {
		excludedSet[company] = struct{}{}
	}

	kept := make([]*jobboard.Listing, 0, initial)
	var dropped []string
	for _, listing := range l.Items {
		if _, ok := excludedSet[strings.ToLower(listing.Company)]; ok {
			dropped = append(dropped, listing.Key())
			continue
		}
		kept = append(kept, listing)
	}
	l.Items = kept

	if len(dropped) > 0 {
		f.logger.Info("excluding listings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_listings", dropped),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}
