package repository

import (
	"cardiostent/internal/model"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type fileSubmissionRepo struct {
	path string
	mu   sync.RWMutex
}

// NewFileSubmissionRepo stores records as one JSON array in path.
// The file is rewritten in full on every append; appends are serialized
// and land through a temp file + rename so a crash never leaves half a file.
func NewFileSubmissionRepo(path string) SubmissionRepo {
	return &fileSubmissionRepo{path: path}
}

func (r *fileSubmissionRepo) Append(ctx context.Context, s *model.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	records = append(records, s)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return storageErr("encode", err)
	}
	return r.writeAtomic(data)
}

func (r *fileSubmissionRepo) LoadAll(ctx context.Context) ([]*model.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.read()
	if err != nil {
		return nil, err
	}
	fillLegacyIDs(records)
	return records, nil
}

func (r *fileSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return findLoaded(records, id), nil
}

func (r *fileSubmissionRepo) Count(ctx context.Context) (int, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// read must be called with mu held
func (r *fileSubmissionRepo) read() ([]*model.Submission, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*model.Submission{}, nil
	}
	if err != nil {
		return nil, storageErr("read", err)
	}

	records := []*model.Submission{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, storageErr("decode", err)
	}

	// drop null entries so callers never see a nil record
	out := records[:0]
	for _, s := range records {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fileSubmissionRepo) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr("write", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return storageErr("write", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageErr("write", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return storageErr("rename", err)
	}
	return nil
}
