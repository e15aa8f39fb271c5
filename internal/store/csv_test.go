package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

func testStore(t *testing.T) *CSV {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "job_listings.csv"), zap.NewNop())
}

func sampleListings() *jobboard.Listings {
	return &jobboard.Listings{
		Items: []*jobboard.Listing{
			{
				ID:        "1",
				Title:     "Go Developer",
				Company:   "Acme",
				Location:  "Boston",
				URL:       "https://example.com/1",
				Source:    "adzuna",
				FetchedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
				Match: &jobboard.MatchAnnotation{
					Fit:            true,
					Score:          87.5,
					MatchingSkills: []string{"Go", "Kubernetes"},
					MissingSkills:  []string{"Rust"},
				},
			},
			{
				ID:      "2",
				Title:   "Backend Engineer",
				Company: "Globex",
			},
		},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppendCreatesFileWithHeader(t *testing.T) {
	s := testStore(t)

	written, err := s.Append(sampleListings())
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rows := readRows(t, s.Path())
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "87.5", rows[1][5])
	assert.Equal(t, "Go; Kubernetes", rows[1][6])
	assert.Equal(t, "2024-01-02T03:04:05Z", rows[1][9])
}

func TestAppendIsIdempotent(t *testing.T) {
	s := testStore(t)

	written, err := s.Append(sampleListings())
	require.NoError(t, err)
	require.Equal(t, 2, written)

	// Re-running the pipeline with identical listings must add nothing.
	written, err = s.Append(sampleListings())
	require.NoError(t, err)
	assert.Zero(t, written)

	rows := readRows(t, s.Path())
	assert.Len(t, rows, 3)
}

func TestAppendDeduplicatesWithinBatch(t *testing.T) {
	s := testStore(t)

	listings := &jobboard.Listings{
		Items: []*jobboard.Listing{
			{ID: "1", Title: "Go Developer"},
			{ID: "1", Title: "Go Developer (reposted)"},
		},
	}

	written, err := s.Append(listings)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
}

func TestAppendNeverDuplicatesIDs(t *testing.T) {
	s := testStore(t)

	_, err := s.Append(sampleListings())
	require.NoError(t, err)

	more := &jobboard.Listings{
		Items: []*jobboard.Listing{
			{ID: "2", Title: "Backend Engineer (reposted)"},
			{ID: "3", Title: "SRE"},
		},
	}
	written, err := s.Append(more)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	rows := readRows(t, s.Path())
	ids := make(map[string]int)
	for _, row := range rows[1:] {
		ids[row[0]]++
	}
	for id, count := range ids {
		assert.Equalf(t, 1, count, "id %s appears %d times", id, count)
	}
}

func TestSeenIDs(t *testing.T) {
	s := testStore(t)

	seen, err := s.SeenIDs()
	require.NoError(t, err)
	assert.Empty(t, seen, "missing file yields empty set")

	_, err = s.Append(sampleListings())
	require.NoError(t, err)

	seen, err = s.SeenIDs()
	require.NoError(t, err)
	assert.Contains(t, seen, "1")
	assert.Contains(t, seen, "2")
	assert.Len(t, seen, 2)
}

func TestSeenIDsRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,email\nalice,a@example.com\n"), 0o644))

	s := New(path, zap.NewNop())
	_, err := s.SeenIDs()
	assert.Error(t, err)
}

func TestAppendLeavesNoTempFileBehind(t *testing.T) {
	s := testStore(t)

	_, err := s.Append(sampleListings())
	require.NoError(t, err)

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}
