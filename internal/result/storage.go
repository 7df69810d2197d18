package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const previewLen = 100

// Store persists runs as run_<id>.json files under a directory. IDs are
// millisecond timestamps, bumped on collision so they stay unique and
// sortable.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runs dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("run_%s.json", id))
}

// Save assigns the run its id and timestamp and writes it. The record is
// immutable once written; Save never overwrites an existing run.
func (s *Store) Save(run *Run) error {
	id := time.Now().UnixMilli()
	for {
		candidate := fmt.Sprintf("%d", id)
		if _, err := os.Stat(s.path(candidate)); os.IsNotExist(err) {
			run.ID = candidate
			break
		}
		id++
	}
	run.Timestamp = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	if err := os.WriteFile(s.path(run.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) Load(id string) (*Run, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run %s: %w", id, err)
	}
	return &run, nil
}

// List returns summaries of stored runs, newest first. Unreadable files are
// skipped.
func (s *Store) List(limit int) ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading runs dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "run_") && strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "run_"), ".json"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	var summaries []Summary
	for _, id := range ids {
		run, err := s.Load(id)
		if err != nil {
			continue
		}
		preview := run.ProblemText
		if len(preview) > previewLen {
			preview = preview[:previewLen] + "..."
		}
		summaries = append(summaries, Summary{
			RunID:          run.ID,
			Timestamp:      run.Timestamp,
			Score:          run.Score,
			Model:          run.Model,
			ProblemPreview: preview,
		})
	}
	return summaries, nil
}

// LoadAll reads every stored run, for reporting.
func (s *Store) LoadAll() ([]*Run, error) {
	summaries, err := s.List(0)
	if err != nil {
		return nil, err
	}
	var runs []*Run
	for _, sum := range summaries {
		run, err := s.Load(sum.RunID)
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}
