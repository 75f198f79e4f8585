package repository

import (
	"cardiostent/internal/model"
	"context"
	"fmt"
	"strings"
)

// SubmissionRepo is the append-only record store
type SubmissionRepo interface {
	// Append adds a record to the end of the store
	Append(ctx context.Context, s *model.Submission) error
	// LoadAll returns every record in insertion order, empty when nothing was stored yet
	LoadAll(ctx context.Context) ([]*model.Submission, error)
	// FindByID returns nil, nil when no record has the id
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	Count(ctx context.Context) (int, error)
}

const legacyIDPrefix = "legacy-"

// legacyID names records written before ids were assigned
func legacyID(index int) string {
	return fmt.Sprintf("%s%d", legacyIDPrefix, index)
}

// isLegacyID reports whether id was derived from a store position
func isLegacyID(id string) bool {
	return strings.HasPrefix(id, legacyIDPrefix)
}

// findLoaded scans records returned by LoadAll
func findLoaded(records []*model.Submission, id string) *model.Submission {
	for _, s := range records {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}

// fillLegacyIDs gives id-less records a position-derived id. Nothing is written back.
func fillLegacyIDs(records []*model.Submission) {
	for i, s := range records {
		if s != nil && s.ID == "" {
			s.ID = legacyID(i)
		}
	}
}

func storageErr(op string, err error) error {
	return &model.StorageError{Op: op, Err: err}
}
