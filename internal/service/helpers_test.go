package service

import (
	"cardiostent/internal/model"
	"context"
	"sync"
	"time"
)

// memRepo is an in-memory SubmissionRepo for service tests
type memRepo struct {
	mu      sync.Mutex
	records []*model.Submission
	err     error
}

func (r *memRepo) Append(_ context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, sub)
	return nil
}

func (r *memRepo) LoadAll(_ context.Context) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*model.Submission, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records), r.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func intp(v int) *int { return &v }

func patient(exp any, economics *int) *model.Submission {
	rec := &model.Submission{
		Cohort:    model.CohortPatient,
		Responses: map[string]any{},
	}
	if exp != nil {
		rec.Responses[model.FieldPatientExpectation] = exp
	}
	if economics != nil {
		rec.CalculatedScores = &model.Scores{Economics: economics}
	}
	return rec
}

func ic(hosp any, evidence, economics *int) *model.Submission {
	return &model.Submission{
		Cohort:           model.CohortIC,
		Responses:        map[string]any{model.FieldICHospital: hosp},
		CalculatedScores: &model.Scores{Evidence: evidence, Economics: economics},
	}
}

type recordedEvent struct {
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *fakeBroadcaster) BroadcastToAdmins(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{msgType, payload})
}
