package jobboard

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type stubFetcher struct {
	name     string
	listings *Listings
	err      error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(context.Context, *SearchParams) (*Listings, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

func TestFetchAllConcatenatesBoards(t *testing.T) {
	manager := NewManager(zap.NewNop(),
		&stubFetcher{name: "a", listings: &Listings{Items: []*Listing{{ID: "1"}}}},
		&stubFetcher{name: "b", listings: &Listings{Items: []*Listing{{ID: "2"}, {ID: "3"}}}},
	)

	listings, err := manager.FetchAll(context.Background(), &SearchParams{Query: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listings.Len() != 3 {
		t.Fatalf("expected 3 listings, got %d", listings.Len())
	}
}

func TestFetchAllToleratesFailingBoard(t *testing.T) {
	manager := NewManager(zap.NewNop(),
		&stubFetcher{name: "broken", err: errors.New("boom")},
		&stubFetcher{name: "ok", listings: &Listings{Items: []*Listing{{ID: "1"}}}},
	)

	listings, err := manager.FetchAll(context.Background(), &SearchParams{Query: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listings.Len() != 1 {
		t.Fatalf("expected 1 listing, got %d", listings.Len())
	}
}

func TestFetchAllFailsWhenNothingFetched(t *testing.T) {
	manager := NewManager(zap.NewNop(),
		&stubFetcher{name: "broken", err: errors.New("boom")},
	)

	if _, err := manager.FetchAll(context.Background(), &SearchParams{Query: "go"}); err == nil {
		t.Fatalf("expected error when all boards fail")
	}
}
