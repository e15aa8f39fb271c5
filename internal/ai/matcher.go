package ai

import (
	"context"

	"github.com/kgill/job-radar/internal/jobboard"
)

// MatchResult is the outcome of scoring a listing against a resume.
type MatchResult struct {
	Fit            bool
	Score          float64
	MatchingSkills []string
	MissingSkills  []string
	Raw            string
}

type Matcher interface {
	Evaluate(ctx context.Context, resumeText string, listing *jobboard.Listing) (*MatchResult, error)
}
