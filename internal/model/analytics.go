package model

import "time"

// UnknownLabel is the group label for out-of-range or unreadable category indexes
const UnknownLabel = "Unknown"

// ExpectationLabels maps the patient question pt_exp_out to its answer labels
var ExpectationLabels = []string{
	"Complete cure",
	"Symptom reduction",
	"Secondary prevention",
	"Functional improvement",
	"Unsure",
}

// ICHospLabels maps the IC question ic_hosp to practice settings
var ICHospLabels = []string{
	"Corporate tertiary",
	"Mid-tier private",
	"Govt/Teaching",
	"Standalone cath lab",
	"Multi-site",
}

// Category keys inside Submission.Responses
const (
	FieldPatientExpectation = "pt_exp_out"
	FieldICHospital         = "ic_hosp"
)

// CorporateTertiary is the practice setting eligible for the clinical superiority strategy
const CorporateTertiary = "Corporate tertiary"

// MissingScorePolicy controls how absent scores enter group averages
type MissingScorePolicy string

const (
	// MissingScoreExclude leaves absent scores out of both sum and denominator
	MissingScoreExclude MissingScorePolicy = "exclude"
	// MissingScoreZero counts absent scores as 0, the way the first dashboard did
	MissingScoreZero MissingScorePolicy = "zero"
)

// ScoreTally is the running sum of one score within a group
type ScoreTally struct {
	Sum     int `json:"sum"`
	Samples int `json:"samples"` // records that actually carried the score
}

// AggregatedGroup is computed per request and never persisted
type AggregatedGroup struct {
	Label  string                    `json:"label"`
	Count  int                       `json:"count"`
	Tally  map[ScoreField]*ScoreTally `json:"tally"`
	Policy MissingScorePolicy        `json:"policy"`
}

// StrategyCode identifies a recommendation produced by the classifier
type StrategyCode string

const (
	StrategyHighRisk              StrategyCode = "high_risk"
	StrategyStable                StrategyCode = "stable"
	StrategyClinicalSuperiority   StrategyCode = "clinical_superiority"
	StrategyOperationalEfficiency StrategyCode = "operational_efficiency"
	StrategyInsufficientData      StrategyCode = "insufficient_data"
)

// Strategy is a discrete recommendation attached to an aggregated group
type Strategy struct {
	Code    StrategyCode `json:"code"`
	Label   string       `json:"label"`
	Message string       `json:"message"`
	Alert   bool         `json:"alert"` // rendered with a warning marker
}

// GroupRow is an aggregated group with its averages and strategy resolved for display
type GroupRow struct {
	Label    string             `json:"label"`
	Count    int                `json:"count"`
	Averages map[ScoreField]int `json:"averages"` // only scores with an average are present
	Strategy Strategy           `json:"strategy"`
}

// Average returns the rounded average for f and whether one exists
func (r GroupRow) Average(f ScoreField) (int, bool) {
	v, ok := r.Averages[f]
	return v, ok
}

// CohortTable is one aggregation table of the dashboard
type CohortTable struct {
	Cohort       Cohort     `json:"cohort"`
	Title        string     `json:"title"`
	CategoryName string     `json:"categoryName"`
	Records      int        `json:"records"` // records of this cohort, grouped or not
	Rows         []GroupRow `json:"rows"`
}

// Analytics is the aggregated view behind the admin dashboard
type Analytics struct {
	Total       int         `json:"total"`
	Patient     CohortTable `json:"patient"`
	IC          CohortTable `json:"ic"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

// Dashboard bundles analytics with the raw log, newest first
type Dashboard struct {
	Analytics Analytics     `json:"analytics"`
	Log       []*Submission `json:"log"`
}
