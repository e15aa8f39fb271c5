package jobboard

import (
	"os"
	"strings"
	"testing"
)

func TestKeyPrefersBoardID(t *testing.T) {
	listing := &Listing{
		ID:       "12345",
		Title:    "Go Developer",
		Company:  "Acme",
		Location: "Boston",
	}

	if got := listing.Key(); got != "12345" {
		t.Fatalf("expected board id as key, got %q", got)
	}
}

func TestKeyFallsBackToComposite(t *testing.T) {
	listing := &Listing{
		Title:    "  Machine Learning   Engineer ",
		Company:  "Acme Corp",
		Location: "New York",
	}

	expected := "acme corp|machine learning engineer|new york"
	if got := listing.Key(); got != expected {
		t.Fatalf("expected composite key %q, got %q", expected, got)
	}

	// Whitespace and case differences must not produce distinct keys.
	other := &Listing{
		Title:    "machine learning engineer",
		Company:  "ACME CORP",
		Location: "new york",
	}
	if other.Key() != listing.Key() {
		t.Fatalf("expected normalized keys to match: %q vs %q", other.Key(), listing.Key())
	}
}

func TestReportByCompanyIncludesMatchResults(t *testing.T) {
	listings := &Listings{
		Items: []*Listing{
			{
				ID:       "1",
				Title:    "Go Developer",
				Company:  "Acme",
				Location: "Boston",
				URL:      "https://example.com/1",
				Match: &MatchAnnotation{
					Fit:            true,
					Score:          87,
					MatchingSkills: []string{"Go", "Kubernetes"},
					MissingSkills:  []string{"Rust"},
				},
			},
		},
	}

	report := listings.ReportByCompany()

	entries, ok := report["Acme"]
	if !ok {
		t.Fatalf("expected company key in report")
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry["match_score"] != "87" {
		t.Fatalf("expected match_score 87, got %q", entry["match_score"])
	}
	if entry["matching_skills"] != "Go, Kubernetes" {
		t.Fatalf("unexpected matching_skills: %q", entry["matching_skills"])
	}
	if entry["missing_skills"] != "Rust" {
		t.Fatalf("unexpected missing_skills: %q", entry["missing_skills"])
	}
}

func TestDumpToTmpFileIncludesRawResponse(t *testing.T) {
	listings := &Listings{
		Items: []*Listing{
			{
				ID:    "1",
				Title: "Go Developer",
				Match: &MatchAnnotation{
					Fit:   true,
					Score: 90,
					Raw:   `{"score": 90, "matching_skills": ["Go"]}`,
				},
			},
		},
	}

	name, err := listings.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Remove(name)

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	if !strings.Contains(string(data), `"raw"`) {
		t.Fatalf("expected raw model response in dump: %s", data)
	}
}

func TestReportByCompanyIncludesMatchError(t *testing.T) {
	listings := &Listings{
		Items: []*Listing{
			{
				ID:      "2",
				Title:   "Python Developer",
				Company: "Globex",
				Match:   &MatchAnnotation{Error: "quota exceeded"},
			},
		},
	}

	report := listings.ReportByCompany()
	entries := report["Globex"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["match_error"] != "quota exceeded" {
		t.Fatalf("unexpected match_error: %q", entry["match_error"])
	}
	if _, ok := entry["match_score"]; ok {
		t.Fatalf("did not expect match_score for error case")
	}
}
