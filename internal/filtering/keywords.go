package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

type keywordsFilter struct {
	dealBreakers  []string
	requiredTerms []string
	logger        *zap.Logger
}

// NewKeywords creates a filter that removes listings containing a
// deal-breaker phrase and, when required terms are configured, listings
// containing none of them. Matching is case-insensitive over title,
// company, location and description.
func NewKeywords(dealBreakers, requiredTerms []string, logger *zap.Logger) Filter {
	return &keywordsFilter{
		dealBreakers:  lowerAll(dealBreakers),
		requiredTerms: lowerAll(requiredTerms),
		logger:        logger,
	}
}

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Disable(string) {}

func (f *keywordsFilter) IsEnabled() bool { return true }

func (f *keywordsFilter) Validate() error { return nil }

func (f *keywordsFilter) Apply(_ context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error) {
	initial := l.Len()
	if len(f.dealBreakers) == 0 && len(f.requiredTerms) == 0 {
		return l, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*jobboard.Listing, 0, initial)
	var dropped []string
	for _, listing := range l.Items {
		text := listingText(listing)

		if phrase := firstMatch(text, f.dealBreakers); phrase != "" {
			dropped = append(dropped, listing.Key())
			f.logger.Debug("excluding listing by deal breaker",
				zap.String("listing_key", listing.Key()),
				zap.String("phrase", phrase),
			)
			continue
		}

		if len(f.requiredTerms) > 0 && firstMatch(text, f.requiredTerms) == "" {
			dropped = append(dropped, listing.Key())
			f.logger.Debug("excluding listing missing required terms",
				zap.String("listing_key", listing.Key()),
			)
			continue
		}

		kept = append(kept, listing)
	}
	l.Items = kept

	if len(dropped) > 0 {
		f.logger.Info("excluding listings by keywords",
			zap.Strings("excluded_listings", dropped),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}

func listingText(l *jobboard.Listing) string {
	return strings.ToLower(strings.Join([]string{
		l.Title, l.Company, l.Location, l.Description,
	}, " "))
}

func firstMatch(text string, phrases []string) string {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return phrase
		}
	}
	return ""
}

func lowerAll(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			result = append(result, item)
		}
	}
	return result
}
