package service

import (
	"bytes"
	"cardiostent/internal/model"
	"cardiostent/internal/render"
	"cardiostent/internal/repository"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ArtifactStore persists export files outside the record store
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
}

// ExportService produces the flat CSV export of the store
type ExportService struct {
	repo    repository.SubmissionRepo
	archive ArtifactStore
	clock   Clock
	log     *zap.Logger
}

// NewExportService creates a new export service; archive may be nil
func NewExportService(repo repository.SubmissionRepo, archive ArtifactStore, clock Clock, log *zap.Logger) *ExportService {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		archive: archive,
		clock:   clock,
		log:     log,
	}
}

// CSV renders every record in store order. An empty store is ErrNotFound.
func (s *ExportService) CSV(ctx context.Context) ([]byte, int, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("export: %w", model.ErrNotFound)
	}

	var buf bytes.Buffer
	if err := render.WriteCSV(&buf, records); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(records), nil
}

// Archive uploads the current CSV export to the archive store
func (s *ExportService) Archive(ctx context.Context) (*model.ArchiveResult, error) {
	if s.archive == nil {
		return nil, model.ErrArchiveDisabled
	}

	data, n, err := s.CSV(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/CardioStent_Data-%s.csv", s.clock.Now().UTC().Format("20060102T150405Z"))
	url, err := s.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "text/csv")
	if err != nil {
		s.log.Error("archive upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("archive export: %w", err)
	}
	s.log.Info("export archived", zap.String("key", key), zap.Int("records", n), zap.Int("bytes", len(data)))

	return &model.ArchiveResult{
		Key:     key,
		URL:     url,
		Records: n,
		Bytes:   int64(len(data)),
	}, nil
}
