package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

var jsonNull = []byte("null")

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, jsonNull)
}

// ParseTimestamp accepts an RFC 3339 string or epoch milliseconds.
// Absent, null and "" yield the zero time.
func ParseTimestamp(raw json.RawMessage) (time.Time, error) {
	if isAbsent(raw) {
		return time.Time{}, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return time.Time{}, &ValidationError{Field: "timestamp", Reason: "must be RFC 3339"}
		}
		return t, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	return time.Time{}, &ValidationError{Field: "timestamp", Reason: "must be RFC 3339 or epoch milliseconds"}
}

// storedSubmission mirrors Submission with every field left raw. Stored files
// may hold anything a client ever posted, so each field is decoded on its own.
type storedSubmission struct {
	ID               json.RawMessage `json:"id"`
	Timestamp        json.RawMessage `json:"timestamp"`
	Cohort           json.RawMessage `json:"cohort"`
	Segment          json.RawMessage `json:"segment"`
	Responses        json.RawMessage `json:"responses"`
	CalculatedScores json.RawMessage `json:"calculatedScores"`
	FullAnalysis     json.RawMessage `json:"fullAnalysis"`
}

// UnmarshalJSON decodes a stored record leniently: a field with an
// unexpected shape reads as missing instead of failing the whole store.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw storedSubmission
	if err := json.Unmarshal(data, &raw); err != nil {
		// not an object; keep the slot so positions stay stable
		*s = Submission{Responses: map[string]any{}}
		return nil
	}

	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		ts = time.Time{}
	}

	out := Submission{
		ID:        looseString(raw.ID),
		Timestamp: ts,
		Cohort:    Cohort(looseString(raw.Cohort)),
		Segment:   looseString(raw.Segment),
		Responses: map[string]any{},
	}
	if !isAbsent(raw.Responses) {
		var responses map[string]any
		if json.Unmarshal(raw.Responses, &responses) == nil && responses != nil {
			out.Responses = responses
		}
	}
	if !isAbsent(raw.CalculatedScores) {
		scores := &Scores{}
		if json.Unmarshal(raw.CalculatedScores, scores) == nil {
			out.CalculatedScores = scores
		}
	}
	if !isAbsent(raw.FullAnalysis) {
		analysis := &FullAnalysis{}
		if json.Unmarshal(raw.FullAnalysis, analysis) == nil {
			out.FullAnalysis = analysis
		}
	}

	*s = out
	return nil
}

// UnmarshalJSON reads each score on its own. Fractional values and numeric
// strings are rounded; anything else leaves the score missing.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = Scores{}
		return nil
	}
	*s = Scores{
		Evidence:   looseScore(raw[string(ScoreEvidence)]),
		Experience: looseScore(raw[string(ScoreExperience)]),
		Economics:  looseScore(raw[string(ScoreEconomics)]),
	}
	return nil
}

func looseScore(raw json.RawMessage) *int {
	if isAbsent(raw) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return nil
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

// looseString returns strings as-is, numbers and booleans in their JSON form,
// and "" for everything else
func looseString(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var v any
	if json.Unmarshal(raw, &v) == nil {
		switch v.(type) {
		case float64, bool:
			return string(bytes.TrimSpace(raw))
		}
	}
	return ""
}
