package tracker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	DefaultPath = "/app/data/enrichment-failures.jsonl"

	NotFoundReason = "Game not found on Steam"
)

// Failure is one line of the failure log.
type Failure struct {
	FeedTitle  string    `json:"fitgirl_name"`
	ParsedName string    `json:"parsed_name"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error"`
}

// FailureTracker appends failed catalog lookups to a JSON Lines file.
type FailureTracker struct {
	path       string
	mu         sync.Mutex
	dirEnsured bool
	now        func() time.Time
}

func NewFailureTracker(path string) *FailureTracker {
	if path == "" {
		path = DefaultPath
	}
	return &FailureTracker{
		path: path,
		now:  time.Now,
	}
}

func (t *FailureTracker) Path() string {
	return t.path
}

// Record appends a not-found failure for the given raw and parsed titles.
func (t *FailureTracker) Record(feedTitle, parsedName string) error {
	return t.Append(Failure{
		FeedTitle:  feedTitle,
		ParsedName: parsedName,
		Timestamp:  t.now().UTC(),
		Error:      NotFoundReason,
	})
}

// Append writes one record. The parent directory is created before the
// first write.
func (t *FailureTracker) Append(failure Failure) error {
	line, err := json.Marshal(failure)
	if err != nil {
		return fmt.Errorf("failed to encode failure: %w", err)
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirEnsured {
		if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
			return fmt.Errorf("failed to create failure log directory: %w", err)
		}
		t.dirEnsured = true
	}

	file, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open failure log: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("failed to write failure log: %w", err)
	}

	slog.Debug("Logged enrichment failure", "fitgirl_name", failure.FeedTitle, "parsed_name", failure.ParsedName)

	return nil
}
