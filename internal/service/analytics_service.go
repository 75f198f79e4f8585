package service

import (
	"cardiostent/internal/model"
	"cardiostent/internal/repository"
	"context"

	"go.uber.org/zap"
)

// AnalyticsService builds the cohort analytics behind the admin dashboard.
// Every call re-reads and re-aggregates the whole store.
type AnalyticsService struct {
	repo   repository.SubmissionRepo
	policy model.MissingScorePolicy
	clock  Clock
	log    *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo repository.SubmissionRepo, policy model.MissingScorePolicy, clock Clock, log *zap.Logger) *AnalyticsService {
	if policy == "" {
		policy = model.MissingScoreExclude
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsService{
		repo:   repo,
		policy: policy,
		clock:  clock,
		log:    log,
	}
}

// Analytics aggregates the current store
func (s *AnalyticsService) Analytics(ctx context.Context) (*model.Analytics, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	a := s.Compute(records)
	return &a, nil
}

// Dashboard returns the analytics plus the raw log, newest first
func (s *AnalyticsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	log := make([]*model.Submission, len(records))
	for i, rec := range records {
		log[len(records)-1-i] = rec
	}

	d := &model.Dashboard{
		Analytics: s.Compute(records),
		Log:       log,
	}
	s.log.Debug("dashboard built",
		zap.Int("records", d.Analytics.Total),
		zap.Int("patient_groups", len(d.Analytics.Patient.Rows)),
		zap.Int("ic_groups", len(d.Analytics.IC.Rows)),
	)
	return d, nil
}

// Compute runs both cohort aggregations over records
func (s *AnalyticsService) Compute(records []*model.Submission) model.Analytics {
	return model.Analytics{
		Total:       len(records),
		Patient:     PatientTable(records, s.policy),
		IC:          ICTable(records, s.policy),
		GeneratedAt: s.clock.Now(),
	}
}

// PatientTable groups patients by procedural expectation and rates adherence risk
func PatientTable(records []*model.Submission, policy model.MissingScorePolicy) model.CohortTable {
	groups := AggregateByCategory(records, model.CohortPatient, model.FieldPatientExpectation,
		model.ExpectationLabels, model.AllScoreFields, policy)

	t := model.CohortTable{
		Cohort:       model.CohortPatient,
		Title:        "Patient Subset: Adherence by Procedural Expectation",
		CategoryName: "Patient Expectation",
		Records:      countCohort(records, model.CohortPatient),
		Rows:         make([]model.GroupRow, 0, len(groups)),
	}
	for _, g := range groups {
		row := groupRow(g)
		econ, ok := row.Average(model.ScoreEconomics)
		row.Strategy = ClassifyAdherence(econ, ok)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ICTable groups cardiologists by practice setting and picks the commercial focus
func ICTable(records []*model.Submission, policy model.MissingScorePolicy) model.CohortTable {
	groups := AggregateByCategory(records, model.CohortIC, model.FieldICHospital,
		model.ICHospLabels, model.AllScoreFields, policy)

	t := model.CohortTable{
		Cohort:       model.CohortIC,
		Title:        "IC Subset: Drivers by Practice Setting",
		CategoryName: "Practice Setting",
		Records:      countCohort(records, model.CohortIC),
		Rows:         make([]model.GroupRow, 0, len(groups)),
	}
	for _, g := range groups {
		row := groupRow(g)
		ev, ok := row.Average(model.ScoreEvidence)
		row.Strategy = ClassifyPracticeSetting(row.Label, ev, ok)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func groupRow(g model.AggregatedGroup) model.GroupRow {
	row := model.GroupRow{
		Label:    g.Label,
		Count:    g.Count,
		Averages: make(map[model.ScoreField]int, len(g.Tally)),
	}
	for f := range g.Tally {
		if avg, ok := GroupAverage(g, f); ok {
			row.Averages[f] = avg
		}
	}
	return row
}

func countCohort(records []*model.Submission, c model.Cohort) int {
	n := 0
	for _, r := range records {
		if r != nil && r.Cohort == c {
			n++
		}
	}
	return n
}
