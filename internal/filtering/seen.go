package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

// SeenLister reports the dedup keys already persisted.
type SeenLister interface {
	SeenIDs() (map[string]struct{}, error)
}

type seenFilter struct {
	store  SeenLister
	logger *zap.Logger
}

// NewSeen creates a filter that removes listings already present in the
// store. It runs before the AI step so stored listings are never re-scored.
func NewSeen(store SeenLister, logger *zap.Logger) Filter {
	return &seenFilter{
		store:  store,
		logger: logger,
	}
}

func (f *seenFilter) Name() string { return "seen" }

func (f *seenFilter) Disable(string) {}

func (f *seenFilter) IsEnabled() bool { return true }

func (f *seenFilter) Validate() error {
	if f.store == nil {
		return fmt.Errorf("store is required")
	}
	return nil
}

func (f *seenFilter) Apply(_ context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error) {
	initial := l.Len()

	seen, err := f.store.SeenIDs()
	if err != nil {
		return l, Step{}, fmt.Errorf("reading seen listings: %w", err)
	}

	kept := make([]*jobboard.Listing, 0, initial)
	var dropped []string
	for _, listing := range l.Items {
		if _, ok := seen[listing.Key()]; ok {
			dropped = append(dropped, listing.Key())
			continue
		}
		kept = append(kept, listing)
	}
	l.Items = kept

	if len(dropped) > 0 {
		f.logger.Info("excluding listings already recorded",
			zap.Int("excluded", len(dropped)),
			zap.Int("listings_left", l.Len()),
		)
	}

	return l, Step{Initial: initial, Dropped: len(dropped), Left: l.Len()}, nil
}
