package service

import (
	"cardiostent/internal/model"
	"encoding/json"
	"math"
	"strconv"
)

// AggregateByCategory groups the records of one cohort by the label behind
// responses[field] and tallies the requested scores per group.
//
// Records without the field are skipped entirely. Indexes that cannot be
// mapped into labels land in the "Unknown" group. Groups come back in label
// order with Unknown last; the result is empty, never nil, when nothing matched.
func AggregateByCategory(
	records []*model.Submission,
	cohort model.Cohort,
	field string,
	labels []string,
	scores []model.ScoreField,
	policy model.MissingScorePolicy,
) []model.AggregatedGroup {
	if policy == "" {
		policy = model.MissingScoreExclude
	}

	byLabel := make(map[string]*model.AggregatedGroup)
	for _, rec := range records {
		if rec == nil || rec.Cohort != cohort {
			continue
		}
		raw, ok := rec.Responses[field]
		if !ok {
			continue
		}

		label := ResolveLabel(raw, labels)
		g, ok := byLabel[label]
		if !ok {
			g = &model.AggregatedGroup{
				Label:  label,
				Tally:  make(map[model.ScoreField]*model.ScoreTally, len(scores)),
				Policy: policy,
			}
			for _, f := range scores {
				g.Tally[f] = &model.ScoreTally{}
			}
			byLabel[label] = g
		}

		g.Count++
		for _, f := range scores {
			if v, ok := rec.Score(f); ok {
				g.Tally[f].Sum += v
				g.Tally[f].Samples++
			}
		}
	}

	out := make([]model.AggregatedGroup, 0, len(byLabel))
	for _, l := range labels {
		if g, ok := byLabel[l]; ok {
			out = append(out, *g)
		}
	}
	if g, ok := byLabel[model.UnknownLabel]; ok {
		out = append(out, *g)
	}
	return out
}

// GroupAverage returns the rounded average of f for g. Under the exclude
// policy a group where no record carried f has no average.
func GroupAverage(g model.AggregatedGroup, f model.ScoreField) (int, bool) {
	t, ok := g.Tally[f]
	if !ok || g.Count == 0 {
		return 0, false
	}

	denom := t.Samples
	if g.Policy == model.MissingScoreZero {
		denom = g.Count
	}
	if denom == 0 {
		return 0, false
	}
	return int(math.Round(float64(t.Sum) / float64(denom))), true
}

// ResolveLabel maps a raw categorical answer onto labels
func ResolveLabel(raw any, labels []string) string {
	idx, ok := categoryIndex(raw)
	if !ok || idx < 0 || idx >= len(labels) {
		return model.UnknownLabel
	}
	return labels[idx]
}

// categoryIndex reads an answer index from whatever the decoder produced:
// JSON numbers, BSON integers or numeric strings.
func categoryIndex(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
