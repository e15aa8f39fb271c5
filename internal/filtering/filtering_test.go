package filtering

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

type recordingFilter struct {
	name     string
	disabled bool
	applied  *[]string
	validate error
}

func (f *recordingFilter) Name() string    { return f.name }
func (f *recordingFilter) Disable(string)  { f.disabled = true }
func (f *recordingFilter) IsEnabled() bool { return !f.disabled }
func (f *recordingFilter) Validate() error { return f.validate }

func (f *recordingFilter) Apply(_ context.Context, l *jobboard.Listings) (*jobboard.Listings, Step, error) {
	*f.applied = append(*f.applied, f.name)
	return l, Step{Initial: l.Len(), Left: l.Len()}, nil
}

func TestRunAppliesFiltersInOrder(t *testing.T) {
	var applied []string
	steps := []Filter{
		&recordingFilter{name: "first", applied: &applied},
		&recordingFilter{name: "second", applied: &applied},
	}

	listings := &jobboard.Listings{Items: []*jobboard.Listing{{ID: "1"}}}

	if _, err := New(steps, zap.NewNop()).Run(context.Background(), listings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(applied) != 2 || applied[0] != "first" || applied[1] != "second" {
		t.Fatalf("unexpected application order: %v", applied)
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	var applied []string
	disabled := &recordingFilter{name: "disabled", applied: &applied}
	disabled.Disable("not needed")

	steps := []Filter{
		disabled,
		&recordingFilter{name: "enabled", applied: &applied},
	}

	listings := &jobboard.Listings{Items: []*jobboard.Listing{{ID: "1"}}}

	if _, err := New(steps, zap.NewNop()).Run(context.Background(), listings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(applied) != 1 || applied[0] != "enabled" {
		t.Fatalf("unexpected application order: %v", applied)
	}
}

func TestRunValidatesBeforeApplying(t *testing.T) {
	var applied []string
	steps := []Filter{
		&recordingFilter{name: "ok", applied: &applied},
		&recordingFilter{name: "broken", applied: &applied, validate: errors.New("bad config")},
	}

	listings := &jobboard.Listings{Items: []*jobboard.Listing{{ID: "1"}}}

	if _, err := New(steps, zap.NewNop()).Run(context.Background(), listings); err == nil {
		t.Fatalf("expected validation error")
	}

	if len(applied) != 0 {
		t.Fatalf("expected no filter to run after failed validation, got %v", applied)
	}
}
