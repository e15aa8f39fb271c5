package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/kgill/job-radar/internal/jobboard"
)

// header is the stable column schema of the listings file. The id column is
// the dedup key; no two rows ever share one.
var header = []string{
	"id", "title", "company", "location", "url",
	"score", "matching_skills", "missing_skills",
	"source", "fetched_at",
}

const skillsSeparator = "; "

// CSV is an append-only listing store backed by a single CSV file.
type CSV struct {
	path   string
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *CSV {
	return &CSV{
		path:   path,
		logger: logger,
	}
}

func (s *CSV) Path() string { return s.path }

// SeenIDs returns the set of dedup keys already recorded. A missing file
// yields an empty set.
func (s *CSV) SeenIDs() (map[string]struct{}, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			seen[row[0]] = struct{}{}
		}
	}
	return seen, nil
}

// Append writes listings whose key is not yet recorded and returns the
// number of rows added. The whole file is rewritten to a temporary file and
// renamed into place so a failed run never leaves a truncated store behind.
// A lock file guards against concurrent runs interleaving appends.
func (s *CSV) Append(listings *jobboard.Listings) (int, error) {
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return 0, fmt.Errorf("locking store: %w", err)
	}
	defer lock.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		if len(row) > 0 {
			seen[row[0]] = struct{}{}
		}
	}

	var added [][]string
	for _, listing := range listings.Items {
		key := listing.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		added = append(added, toRow(listing))
	}

	if len(added) == 0 {
		s.logger.Info("no new listings to save")
		return 0, nil
	}

	if err := s.writeAll(append(existing, added...)); err != nil {
		return 0, err
	}

	s.logger.Info("saved new listings",
		zap.Int("count", len(added)),
		zap.String("path", s.path),
	)

	return len(added), nil
}

func (s *CSV) readAll() ([][]string, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store header: %w", err)
	}

	if len(head) == 0 || head[0] != header[0] {
		return nil, fmt.Errorf("unexpected store header in %s: %v", s.path, head)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading store rows: %w", err)
	}

	return rows, nil
}

func (s *CSV) writeAll(rows [][]string) error {
	tmpPath := s.path + ".tmp"

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp store: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing store header: %w", err)
	}

	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing store rows: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp store: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store: %w", err)
	}

	return nil
}

func toRow(listing *jobboard.Listing) []string {
	var score, matching, missing string
	if listing.Match != nil && listing.Match.Error == "" {
		score = fmt.Sprintf("%g", listing.Match.Score)
		matching = strings.Join(listing.Match.MatchingSkills, skillsSeparator)
		missing = strings.Join(listing.Match.MissingSkills, skillsSeparator)
	}

	var fetchedAt string
	if !listing.FetchedAt.IsZero() {
		fetchedAt = listing.FetchedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		listing.Key(),
		listing.Title,
		listing.Company,
		listing.Location,
		listing.URL,
		score,
		matching,
		missing,
		listing.Source,
		fetchedAt,
	}
}
