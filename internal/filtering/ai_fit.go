package filtering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/ai"
	"github.com/kgill/job-radar/internal/jobboard"
	"github.com/kgill/job-radar/internal/logger"
	"github.com/kgill/job-radar/internal/utils"
)

// evaluateDelay paces calls to the AI provider between listings, on top of
// the reactive rate-limit backoff in the client.
const evaluateDelay = time.Second

type aiFitFilter struct {
	enabled bool
	reason  string
	config  *AIFitFilterConfig
	deps    *AIFitFilterDeps
	logger  *zap.Logger
	delay   time.Duration
}

type AIFitFilterDeps struct {
	Logger     *zap.Logger
	Matcher    ai.Matcher
	ResumeText string
}

type AIFitFilterConfig struct {
	Enabled      bool
	Provider     string
	MinimumScore float64
	Model        string
}

// NewAIFit creates the AI-based filtering step.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	var l *zap.Logger
	if deps != nil {
		l = deps.Logger
	}

	return &aiFitFilter{
		enabled: cfg.Enabled,
		config:  cfg,
		deps:    deps,
		logger:  logger.WithAIFields(l, cfg.Provider, cfg.Model),
		delay:   evaluateDelay,
	}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate() error {
	if f.deps == nil || f.deps.Matcher == nil {
		return fmt.Errorf("matcher is required when ai filter is enabled")
	}
	if strings.TrimSpace(f.deps.ResumeText) == "" {
		return fmt.Errorf("resume text is required when ai filter is enabled")
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error) {
	initial := l.Len()
	approved := make([]*jobboard.Listing, 0, initial)

	for i, listing := range l.Items {
		if i > 0 {
			if err := utils.WaitFor(ctx, f.delay); err != nil {
				return l, Step{}, err
			}
		}

		result, err := f.deps.Matcher.Evaluate(ctx, f.deps.ResumeText, listing)
		if err != nil {
			if ctx.Err() != nil {
				return l, Step{}, ctx.Err()
			}

			// Keep the listing with the error recorded so a failed call
			// does not silently drop it.
			f.logger.Warn("AI evaluation failed",
				zap.String("listing_key", listing.Key()),
				zap.Error(err),
			)
			listing.Match = &jobboard.MatchAnnotation{Error: err.Error()}
			approved = append(approved, listing)
			continue
		}

		listing.Match = &jobboard.MatchAnnotation{
			Fit:            result.Fit,
			Score:          result.Score,
			MatchingSkills: result.MatchingSkills,
			MissingSkills:  result.MissingSkills,
			Raw:            result.Raw,
		}

		if !result.Fit {
			f.logger.Info("listing rejected by AI provider",
				zap.String("listing_key", listing.Key()),
				zap.Float64("ai_score", result.Score),
				zap.Strings("missing_skills", result.MissingSkills),
			)
			continue
		}

		f.logger.Info("listing approved by AI",
			zap.String("listing_key", listing.Key()),
			zap.Float64("ai_score", result.Score),
		)

		approved = append(approved, listing)
	}

	l.Items = approved

	f.logger.Info("AI filtering completed",
		zap.Int("initial_listings", initial),
		zap.Int("approved_listings", len(approved)),
	)

	return l, Step{Initial: initial, Dropped: initial - l.Len(), Left: l.Len()}, nil
}
