package model

import "time"

// Cohort identifies the respondent population of a submission
type Cohort string

const (
	CohortPatient Cohort = "patient"
	CohortIC      Cohort = "ic" // interventional cardiologist
)

// Valid reports whether c is one of the known cohorts
func (c Cohort) Valid() bool {
	return c == CohortPatient || c == CohortIC
}

// ScoreField names one of the three derived scores
type ScoreField string

const (
	ScoreEvidence   ScoreField = "evidence"
	ScoreExperience ScoreField = "experience"
	ScoreEconomics  ScoreField = "economics"
)

// AllScoreFields lists the derived scores in display order
var AllScoreFields = []ScoreField{ScoreEvidence, ScoreExperience, ScoreEconomics}

// Scores holds the client-computed 0-100 scores. A nil field means the client did not send it.
type Scores struct {
	Evidence   *int `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Experience *int `json:"experience,omitempty" bson:"experience,omitempty"`
	Economics  *int `json:"economics,omitempty" bson:"economics,omitempty"`
}

// Get returns the value of a score and whether it was present
func (s *Scores) Get(f ScoreField) (int, bool) {
	if s == nil {
		return 0, false
	}
	var v *int
	switch f {
	case ScoreEvidence:
		v = s.Evidence
	case ScoreExperience:
		v = s.Experience
	case ScoreEconomics:
		v = s.Economics
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Finding is a single highlighted observation in a detailed analysis
type Finding struct {
	Icon  string `json:"icon" bson:"icon"`
	Title string `json:"title" bson:"title"`
	Body  string `json:"body" bson:"body"`
}

// Gap compares the current and desired state of one dimension
type Gap struct {
	Dim     string `json:"dim" bson:"dim"`
	Current any    `json:"current" bson:"current"`
	Desired any    `json:"desired" bson:"desired"`
	Gap     any    `json:"gap" bson:"gap"`
	Lever   string `json:"lever" bson:"lever"`
}

// Recommendation is a prioritized action item
type Recommendation struct {
	Priority string `json:"priority" bson:"priority"`
	Title    string `json:"title" bson:"title"`
	Body     string `json:"body" bson:"body"`
}

// FullAnalysis is the detailed per-respondent analysis produced by the questionnaire page
type FullAnalysis struct {
	Segment     string           `json:"segment" bson:"segment"`
	SegmentDesc string           `json:"segmentDesc" bson:"segmentDesc"`
	Scores      *Scores          `json:"scores,omitempty" bson:"scores,omitempty"`
	Findings    []Finding        `json:"findings" bson:"findings"`
	Gaps        []Gap            `json:"gaps" bson:"gaps"`
	Recs        []Recommendation `json:"recs" bson:"recs"`
}

// Submission is one respondent's complete questionnaire submission.
// Records are immutable once stored.
type Submission struct {
	ID               string         `json:"id" bson:"id"`
	Timestamp        time.Time      `json:"timestamp" bson:"timestamp"`
	Cohort           Cohort         `json:"cohort" bson:"cohort"`
	Segment          string         `json:"segment" bson:"segment"`
	Responses        map[string]any `json:"responses" bson:"responses"`
	CalculatedScores *Scores        `json:"calculatedScores,omitempty" bson:"calculatedScores,omitempty"`
	FullAnalysis     *FullAnalysis  `json:"fullAnalysis,omitempty" bson:"fullAnalysis,omitempty"`
}

// HasAnalysis reports whether the submission carries a detailed analysis
func (s *Submission) HasAnalysis() bool {
	return s.FullAnalysis != nil
}

// Score is shorthand for CalculatedScores.Get
func (s *Submission) Score(f ScoreField) (int, bool) {
	return s.CalculatedScores.Get(f)
}
