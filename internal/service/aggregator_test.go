package service

import (
	"cardiostent/internal/model"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregatePatients(records []*model.Submission, policy model.MissingScorePolicy) []model.AggregatedGroup {
	return AggregateByCategory(records, model.CohortPatient, model.FieldPatientExpectation,
		model.ExpectationLabels, []model.ScoreField{model.ScoreEconomics}, policy)
}

func TestAggregateAverageRounds(t *testing.T) {
	records := []*model.Submission{
		patient(float64(0), intp(50)),
		patient(float64(0), intp(70)),
		patient(float64(0), intp(90)),
	}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 1)
	assert.Equal(t, "Complete cure", groups[0].Label)
	assert.Equal(t, 3, groups[0].Count)

	avg, ok := GroupAverage(groups[0], model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 70, avg)
}

func TestAggregateRoundsHalfUp(t *testing.T) {
	records := []*model.Submission{
		patient(float64(1), intp(60)),
		patient(float64(1), intp(61)),
	}
	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 1)

	avg, ok := GroupAverage(groups[0], model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 61, avg)
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := []*model.Submission{
		patient(float64(0), intp(50)),
		patient(float64(1), intp(80)),
		patient(float64(4), intp(20)),
		patient(float64(0), intp(75)),
		patient(float64(99), intp(33)),
		patient(float64(2), nil),
		patient(float64(1), intp(41)),
	}
	want := aggregatePatients(records, model.MissingScoreExclude)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]*model.Submission(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := aggregatePatients(shuffled, model.MissingScoreExclude)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("aggregation depends on order (-want +got):\n%s", diff)
		}
	}
}

func TestAggregateGroupsInLabelOrderUnknownLast(t *testing.T) {
	records := []*model.Submission{
		patient(float64(99), intp(10)),
		patient(float64(3), intp(10)),
		patient(float64(0), intp(10)),
	}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}
	assert.Equal(t, []string{"Complete cure", "Functional improvement", model.UnknownLabel}, labels)
}

func TestAggregateOutOfRangeIsUnknown(t *testing.T) {
	records := []*model.Submission{
		patient(float64(99), intp(40)),
		patient(float64(-1), intp(60)),
		patient("not a number", intp(80)),
		patient(float64(4), intp(20)),
	}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 2)
	assert.Equal(t, "Unsure", groups[0].Label)
	assert.Equal(t, 1, groups[0].Count)
	assert.Equal(t, model.UnknownLabel, groups[1].Label)
	assert.Equal(t, 3, groups[1].Count)
}

func TestAggregateSkipsMissingCategory(t *testing.T) {
	records := []*model.Submission{
		patient(nil, intp(10)),
		patient(float64(1), intp(90)),
	}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 1)
	assert.Equal(t, "Symptom reduction", groups[0].Label)
	assert.Equal(t, 1, groups[0].Count)
}

func TestAggregateFiltersCohort(t *testing.T) {
	records := []*model.Submission{
		patient(float64(0), intp(10)),
		ic(float64(0), intp(90), intp(90)),
	}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].Count)
}

func TestAggregateEmpty(t *testing.T) {
	groups := aggregatePatients(nil, model.MissingScoreExclude)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestAggregateMissingScorePolicy(t *testing.T) {
	records := []*model.Submission{
		patient(float64(0), intp(80)),
		patient(float64(0), nil),
	}

	excl := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, excl, 1)
	avg, ok := GroupAverage(excl[0], model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 80, avg)

	zero := aggregatePatients(records, model.MissingScoreZero)
	require.Len(t, zero, 1)
	avg, ok = GroupAverage(zero[0], model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 40, avg)
}

func TestAggregateNoSamplesHasNoAverage(t *testing.T) {
	records := []*model.Submission{patient(float64(2), nil)}

	groups := aggregatePatients(records, model.MissingScoreExclude)
	require.Len(t, groups, 1)
	_, ok := GroupAverage(groups[0], model.ScoreEconomics)
	assert.False(t, ok)

	groups = aggregatePatients(records, model.MissingScoreZero)
	avg, ok := GroupAverage(groups[0], model.ScoreEconomics)
	require.True(t, ok)
	assert.Equal(t, 0, avg)
}

func TestResolveLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"float index", float64(1), "Symptom reduction"},
		{"int index", 2, "Secondary prevention"},
		{"bson int32", int32(3), "Functional improvement"},
		{"bson int64", int64(4), "Unsure"},
		{"numeric string", "0", "Complete cure"},
		{"json number", json.Number("1"), "Symptom reduction"},
		{"fractional", 1.5, model.UnknownLabel},
		{"out of range", float64(99), model.UnknownLabel},
		{"negative", float64(-1), model.UnknownLabel},
		{"nil", nil, model.UnknownLabel},
		{"bool", true, model.UnknownLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLabel(tt.raw, model.ExpectationLabels))
		})
	}
}
