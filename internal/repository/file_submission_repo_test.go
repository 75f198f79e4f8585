package repository

import (
	"cardiostent/internal/model"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(i int) *model.Submission {
	return &model.Submission{
		ID:        fmt.Sprintf("rec-%d", i),
		Timestamp: time.Date(2026, 1, 2, 3, 4, i, 0, time.UTC),
		Cohort:    model.CohortPatient,
		Segment:   fmt.Sprintf("segment %d", i),
		Responses: map[string]any{"pt_exp_out": float64(i % 5)},
	}
}

func TestFileRepo_LoadAllMissingFile(t *testing.T) {
	repo := NewFileSubmissionRepo(filepath.Join(t.TempDir(), "survey_database.json"))

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFileRepo_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "survey_database.json")
	repo := NewFileSubmissionRepo(path)

	const n = 7
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Append(ctx, newRecord(i)))
	}

	records, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, n)
	for i, s := range records {
		assert.Equal(t, fmt.Sprintf("rec-%d", i), s.ID)
		assert.Equal(t, fmt.Sprintf("segment %d", i), s.Segment)
	}

	// a fresh repo on the same file sees the same sequence
	again, err := NewFileSubmissionRepo(path).LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestFileRepo_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := NewFileSubmissionRepo(filepath.Join(t.TempDir(), "db.json"))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, newRecord(i)))
		}(i)
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestFileRepo_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSubmissionRepo(path).LoadAll(context.Background())
	require.Error(t, err)

	var se *model.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "decode", se.Op)
}

func TestFileRepo_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// the parent of the store path is a regular file, so nothing can be created under it
	repo := NewFileSubmissionRepo(filepath.Join(blocker, "db.json"))
	err := repo.Append(context.Background(), newRecord(1))

	var se *model.StorageError
	require.True(t, errors.As(err, &se))
}

func TestFileRepo_LegacyRecordsGetPositionalIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `[
  {"timestamp":"2025-11-03T10:00:00.000Z","cohort":"patient","segment":"A","responses":{"pt_exp_out":1}},
  {"timestamp":"2025-11-04T10:00:00.000Z","cohort":"ic","segment":"B","responses":{"ic_hosp":0},"calculatedScores":{"evidence":80,"experience":40,"economics":55}}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	repo := NewFileSubmissionRepo(path)

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "legacy-0", records[0].ID)
	assert.Equal(t, "legacy-1", records[1].ID)

	ev, ok := records[1].Score(model.ScoreEvidence)
	assert.True(t, ok)
	assert.Equal(t, 80, ev)
	_, ok = records[0].Score(model.ScoreEvidence)
	assert.False(t, ok)

	found, err := repo.FindByID(context.Background(), "legacy-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "B", found.Segment)

	missing, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileRepo_LooselyTypedRecordsStayReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey_database.json")
	legacy := `[
  {"timestamp":1762164000123,"cohort":"patient","segment":null,"responses":{"pt_exp_out":"2"},"calculatedScores":{"evidence":72.5,"economics":"41"}},
  {"timestamp":"","cohort":"ic","segment":"B","responses":{"ic_hosp":0},"calculatedScores":{"evidence":"n/a","experience":null,"economics":63}},
  {"timestamp":"last tuesday","cohort":"patient","segment":7,"responses":[],"calculatedScores":"high","fullAnalysis":{"segment":"S","findings":"none"}},
  "not a record"
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	repo := NewFileSubmissionRepo(path)
	ctx := context.Background()

	records, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, time.UnixMilli(1762164000123).UTC(), first.Timestamp)
	assert.Equal(t, "", first.Segment)
	ev, ok := first.Score(model.ScoreEvidence)
	require.True(t, ok)
	assert.Equal(t, 73, ev)
	econ, ok := first.Score(model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 41, econ)
	_, ok = first.Score(model.ScoreExperience)
	assert.False(t, ok)

	second := records[1]
	assert.True(t, second.Timestamp.IsZero())
	_, ok = second.Score(model.ScoreEvidence)
	assert.False(t, ok)
	econ, ok = second.Score(model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 63, econ)

	third := records[2]
	assert.True(t, third.Timestamp.IsZero())
	assert.Equal(t, "7", third.Segment)
	assert.NotNil(t, third.Responses)
	assert.Empty(t, third.Responses)
	_, ok = third.Score(model.ScoreEconomics)
	assert.False(t, ok)
	assert.Nil(t, third.FullAnalysis)

	assert.Equal(t, "legacy-3", records[3].ID)
	assert.Empty(t, records[3].Cohort)

	// appending rewrites the file in normalized form and keeps every slot
	require.NoError(t, repo.Append(ctx, newRecord(9)))
	again, err := NewFileSubmissionRepo(path).LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, again, 5)
	assert.Equal(t, first.Timestamp, again[0].Timestamp)
	ev, ok = again[0].Score(model.ScoreEvidence)
	require.True(t, ok)
	assert.Equal(t, 73, ev)
	assert.Equal(t, "rec-9", again[4].ID)
}
