package service

import (
	"cardiostent/internal/model"
	"cardiostent/internal/repository"
	"context"
	"fmt"
	"strconv"
)

// ReportService looks up single submissions for the detailed analysis report
type ReportService struct {
	repo repository.SubmissionRepo
}

// NewReportService creates a new report service
func NewReportService(repo repository.SubmissionRepo) *ReportService {
	return &ReportService{repo: repo}
}

// Get resolves ref to a submission that carries a full analysis.
// ref is either a zero-based store position (links from older dashboards) or a record id.
func (s *ReportService) Get(ctx context.Context, ref string) (*model.Submission, error) {
	sub, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("submission %q: %w", ref, model.ErrNotFound)
	}
	if !sub.HasAnalysis() {
		return nil, fmt.Errorf("submission %q has no detailed analysis: %w", ref, model.ErrNotFound)
	}
	return sub, nil
}

func (s *ReportService) lookup(ctx context.Context, ref string) (*model.Submission, error) {
	if idx, ok := positionalRef(ref); ok {
		records, err := s.repo.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		if idx >= len(records) {
			return nil, nil
		}
		return records[idx], nil
	}
	return s.repo.FindByID(ctx, ref)
}

// positionalRef reports whether ref is a plain non-negative integer
func positionalRef(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	for _, c := range ref {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, false
	}
	return n, true
}
