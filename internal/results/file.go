package results

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"loan-workers/internal/common/errors"
)

// FileStore keeps one JSON file per application under a directory. It is the
// fallback when no database is configured.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) path(applicationID string) string {
	return filepath.Join(s.root, filepath.Base(applicationID)+".json")
}

func (s *FileStore) Save(_ context.Context, rec *Record) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.NewResultStoreFailedError(rec.ApplicationID, err)
	}

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.NewResultStoreFailedError(rec.ApplicationID, err)
	}
	if err := os.WriteFile(s.path(rec.ApplicationID), body, 0o644); err != nil {
		return errors.NewResultStoreFailedError(rec.ApplicationID, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, applicationID string) (*Record, error) {
	body, err := os.ReadFile(s.path(applicationID))
	if os.IsNotExist(err) {
		return nil, errors.NewResultNotFoundError(applicationID)
	}
	if err != nil {
		return nil, errors.NewResultStoreFailedError(applicationID, err)
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, errors.NewResultStoreFailedError(applicationID, err)
	}
	return &rec, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewResultStoreFailedError("", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := s.Get(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		summaries = append(summaries, rec.summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CompletedAt.After(summaries[j].CompletedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
