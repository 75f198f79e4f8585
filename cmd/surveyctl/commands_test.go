package main

import (
	"bytes"
	"cardiostent/internal/model"
	"cardiostent/internal/repository"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey_database.json")
	repo := repository.NewFileSubmissionRepo(path)
	ctx := context.Background()

	records := []*model.Submission{
		{
			ID: "p1", Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Cohort: model.CohortPatient,
			Segment: "Realist", Responses: map[string]any{"pt_exp_out": 0},
			CalculatedScores: &model.Scores{Economics: intp(45)},
		},
		{
			ID: "i1", Timestamp: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Cohort: model.CohortIC,
			Responses:        map[string]any{"ic_hosp": 0},
			CalculatedScores: &model.Scores{Evidence: intp(75), Economics: intp(50)},
		},
	}
	for _, r := range records {
		require.NoError(t, repo.Append(ctx, r))
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryTable(t *testing.T) {
	path := seedStore(t)

	out, err := execute(t, "summary", "--data-file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Total Captured Profiles: 2")
	assert.Contains(t, out, "Patient Subset: Adherence by Procedural Expectation (1 records)")
	assert.Contains(t, out, "Complete cure")
	assert.Contains(t, out, "HIGH RISK")
	assert.Contains(t, out, "Clinical Superiority")
}

func TestSummaryJSON(t *testing.T) {
	path := seedStore(t)

	out, err := execute(t, "summary", "--json", "--data-file", path)
	require.NoError(t, err)

	var a model.Analytics
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, 2, a.Total)
	require.Len(t, a.Patient.Rows, 1)
	assert.Equal(t, model.StrategyHighRisk, a.Patient.Rows[0].Strategy.Code)
}

func TestExportToStdoutAndFile(t *testing.T) {
	path := seedStore(t)

	out, err := execute(t, "export", "--data-file", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,Cohort,Segment,Evidence,Experience,Economics", lines[0])

	target := filepath.Join(t.TempDir(), "out.csv")
	_, err = execute(t, "export", "--data-file", path, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestExportEmptyStore(t *testing.T) {
	_, err := execute(t, "export", "--data-file", filepath.Join(t.TempDir(), "none.json"))
	assert.EqualError(t, err, "no data found")
}

func TestInvalidPolicyFlag(t *testing.T) {
	_, err := execute(t, "summary", "--data-file", seedStore(t), "--missing-scores", "guess")
	assert.Error(t, err)
}
