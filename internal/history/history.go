// Package history persists the application record document.
//
// The document is a flat JSON file: a list of applied job IDs plus the full
// application records. It is read once at startup and rewritten after every
// confirmed terminal outcome. Saves are read-merge-write so external edits
// between runs are not lost; the only hard invariant is job-ID uniqueness.
package history

import (
	"fmt"
	"os"
	"sort"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Application status values.
const (
	StatusSubmitted = "submitted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Record is the durable outcome of one job application.
type Record struct {
	JobID     string `json:"job_id"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	URL       string `json:"url"`
}

type document struct {
	JobIDs       []string `json:"job_ids"`
	Applications []Record `json:"applications"`
}

// Store is the in-memory view of the history document. It is mutated only by
// the main flow goroutine, immediately after a confirmed terminal outcome.
type Store struct {
	path   string
	ids    map[string]struct{}
	logger *zap.Logger
}

// Load reads the history document at path. A missing file yields an empty
// store; a corrupt file is an error so a run never silently re-applies.
func Load(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		ids:    make(map[string]struct{}),
		logger: logger.Named("history"),
	}

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	for _, id := range doc.JobIDs {
		s.ids[id] = struct{}{}
	}

	s.logger.Info("Application history loaded",
		zap.Int("applied_jobs", len(s.ids)), zap.String("path", path))
	return s, nil
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history document '%s': %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("history document '%s' is not valid JSON: %w", path, err)
	}
	return &doc, nil
}

// Contains reports whether the job ID has already been recorded.
func (s *Store) Contains(jobID string) bool {
	_, ok := s.ids[jobID]
	return ok
}

// Len returns the number of recorded job IDs.
func (s *Store) Len() int {
	return len(s.ids)
}

// Save records the outcome and rewrites the document. The on-disk copy is
// re-read first and merged with the in-memory set, tolerating concurrent
// external edits between runs.
func (s *Store) Save(rec Record) error {
	if rec.JobID == "" {
		return fmt.Errorf("record is missing a job ID")
	}
	s.ids[rec.JobID] = struct{}{}

	doc, err := readDocument(s.path)
	if err != nil {
		// Do not clobber a document we cannot parse.
		return err
	}
	for _, id := range doc.JobIDs {
		s.ids[id] = struct{}{}
	}

	merged := make([]string, 0, len(s.ids))
	for id := range s.ids {
		merged = append(merged, id)
	}
	sort.Strings(merged)
	doc.JobIDs = merged
	doc.Applications = append(doc.Applications, rec)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history document '%s': %w", s.path, err)
	}

	s.logger.Info("Application recorded",
		zap.String("job_id", rec.JobID),
		zap.String("status", rec.Status),
		zap.String("company", rec.Company),
	)
	return nil
}
