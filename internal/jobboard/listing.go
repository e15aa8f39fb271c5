package jobboard

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type Listings struct {
	Items []*Listing
}

// Listing is a job posting normalized from a board API response.
type Listing struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	SalaryMin   float64   `json:"salary_min,omitempty"`
	SalaryMax   float64   `json:"salary_max,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
	Source      string    `json:"source,omitempty"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`

	Match *MatchAnnotation `json:"match,omitempty"`
}

// MatchAnnotation carries the AI assessment attached to a listing.
// Error is set instead of the score fields when the evaluation failed.
// Raw keeps the unparsed model response for the debug dump.
type MatchAnnotation struct {
	Fit            bool     `json:"fit"`
	Score          float64  `json:"score"`
	MatchingSkills []string `json:"matching_skills,omitempty"`
	MissingSkills  []string `json:"missing_skills,omitempty"`
	Error          string   `json:"error,omitempty"`
	Raw            string   `json:"raw,omitempty"`
}

// Key returns the deduplication key for the listing: the board id when the
// board provides one, otherwise a normalized company|title|location
// composite. Redirect URLs are not stable across fetches, so the URL is
// never used as a key.
func (l *Listing) Key() string {
	if id := strings.TrimSpace(l.ID); id != "" {
		return id
	}

	parts := []string{l.Company, l.Title, l.Location}
	for i, part := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(part)), " ")
	}

	return strings.Join(parts, "|")
}

func (l *Listings) Len() int {
	return len(l.Items)
}

// ReportByCompany groups listings per company for human review.
func (l *Listings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, listing := range l.Items {
		entry := map[string]string{
			"title":    listing.Title,
			"url":      listing.URL,
			"location": listing.Location,
		}

		if listing.SalaryMin > 0 || listing.SalaryMax > 0 {
			entry["salary"] = fmt.Sprintf("%.0f-%.0f", listing.SalaryMin, listing.SalaryMax)
		}

		if listing.Match != nil {
			if listing.Match.Error != "" {
				entry["match_error"] = listing.Match.Error
			} else {
				entry["match_score"] = fmt.Sprintf("%g", listing.Match.Score)
				if len(listing.Match.MatchingSkills) > 0 {
					entry["matching_skills"] = strings.Join(listing.Match.MatchingSkills, ", ")
				}
				if len(listing.Match.MissingSkills) > 0 {
					entry["missing_skills"] = strings.Join(listing.Match.MissingSkills, ", ")
				}
			}
		}

		report[listing.Company] = append(report[listing.Company], entry)
	}
	return report
}

func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}
