package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

// Filter represents a single filtering step applied to listings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Filtering executes an ordered list of filters.
type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Filtering {
	return &Filtering{
		steps:  steps,
		logger: logger,
	}
}

// Run validates all enabled filters, then applies them sequentially.
func (f *Filtering) Run(ctx context.Context, l *jobboard.Listings) (*jobboard.Listings, error) {
	for _, step := range f.steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, l)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		l = next

		if l.Len() == 0 {
			break
		}
	}

	return l, nil
}
