package service

import (
	"bytes"
	"cardiostent/internal/model"
	"cardiostent/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionService validates and stores questionnaire submissions
type SubmissionService struct {
	repo        repository.SubmissionRepo
	clock       Clock
	log         *zap.Logger
	broadcaster Broadcaster
	newID       func() string
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(repo repository.SubmissionRepo, clock Clock, log *zap.Logger) *SubmissionService {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{
		repo:  repo,
		clock: clock,
		log:   log,
		newID: uuid.NewString,
	}
}

// SetBroadcaster sets the live feed for new submissions
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// submissionPayload is the wire shape of POST /api/submit
type submissionPayload struct {
	Timestamp        json.RawMessage     `json:"timestamp"`
	Cohort           string              `json:"cohort"`
	Segment          *string             `json:"segment"`
	Responses        map[string]any      `json:"responses"`
	CalculatedScores map[string]*float64 `json:"calculatedScores"`
	FullAnalysis     json.RawMessage     `json:"fullAnalysis"`
}

// Submit decodes body, validates it, and appends the record to the store
func (s *SubmissionService) Submit(ctx context.Context, body []byte) (*model.Submission, error) {
	sub, err := s.decode(body)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Append(ctx, sub); err != nil {
		s.log.Error("append submission failed", zap.String("id", sub.ID), zap.Error(err))
		return nil, err
	}
	s.log.Info("submission stored",
		zap.String("id", sub.ID),
		zap.String("cohort", string(sub.Cohort)),
		zap.Bool("analysis", sub.HasAnalysis()),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToAdmins(EventSubmissionReceived, SubmissionEvent{
			ID:          sub.ID,
			Cohort:      string(sub.Cohort),
			Segment:     sub.Segment,
			Timestamp:   sub.Timestamp.Format(time.RFC3339),
			HasAnalysis: sub.HasAnalysis(),
		})
	}
	return sub, nil
}

func (s *SubmissionService) decode(body []byte) (*model.Submission, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &model.ValidationError{Reason: "body must be a JSON object"}
	}

	var p submissionPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &model.ValidationError{Field: typeErr.Field, Reason: "has the wrong type"}
		}
		return nil, &model.ValidationError{Reason: "malformed JSON"}
	}

	cohort := model.Cohort(strings.TrimSpace(p.Cohort))
	if !cohort.Valid() {
		return nil, &model.ValidationError{Field: "cohort", Reason: `must be "patient" or "ic"`}
	}

	ts, err := model.ParseTimestamp(p.Timestamp)
	if err != nil {
		return nil, err
	}
	if ts.IsZero() {
		ts = s.clock.Now().UTC()
	}

	scores, err := parseScores(p.CalculatedScores)
	if err != nil {
		return nil, err
	}

	var analysis *model.FullAnalysis
	if len(p.FullAnalysis) > 0 && !bytes.Equal(p.FullAnalysis, []byte("null")) {
		analysis = &model.FullAnalysis{}
		if err := json.Unmarshal(p.FullAnalysis, analysis); err != nil {
			return nil, &model.ValidationError{Field: "fullAnalysis", Reason: "is malformed"}
		}
	}

	responses := p.Responses
	if responses == nil {
		responses = map[string]any{}
	}
	segment := ""
	if p.Segment != nil {
		segment = *p.Segment
	}

	return &model.Submission{
		ID:               s.newID(),
		Timestamp:        ts,
		Cohort:           cohort,
		Segment:          segment,
		Responses:        responses,
		CalculatedScores: scores,
		FullAnalysis:     analysis,
	}, nil
}

func parseScores(raw map[string]*float64) (*model.Scores, error) {
	if raw == nil {
		return nil, nil
	}

	scores := &model.Scores{}
	targets := map[model.ScoreField]**int{
		model.ScoreEvidence:   &scores.Evidence,
		model.ScoreExperience: &scores.Experience,
		model.ScoreEconomics:  &scores.Economics,
	}
	for field, dst := range targets {
		v, ok := raw[string(field)]
		if !ok || v == nil {
			continue
		}
		if *v != math.Trunc(*v) || *v < 0 || *v > 100 {
			return nil, &model.ValidationError{
				Field:  "calculatedScores." + string(field),
				Reason: "must be an integer between 0 and 100",
			}
		}
		n := int(*v)
		*dst = &n
	}
	return scores, nil
}
