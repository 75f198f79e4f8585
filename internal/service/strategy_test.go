package service

import (
	"cardiostent/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAdherence(t *testing.T) {
	tests := []struct {
		name string
		avg  int
		ok   bool
		want model.StrategyCode
	}{
		{"well below threshold", 10, true, model.StrategyHighRisk},
		{"just below threshold", 59, true, model.StrategyHighRisk},
		{"at threshold", 60, true, model.StrategyStable},
		{"above threshold", 95, true, model.StrategyStable},
		{"no average", 0, false, model.StrategyInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAdherence(tt.avg, tt.ok).Code)
		})
	}
}

func TestClassifyAdherenceMessages(t *testing.T) {
	risk := ClassifyAdherence(59, true)
	assert.True(t, risk.Alert)
	assert.Equal(t, "HIGH RISK", risk.Label)
	assert.Equal(t, `Deploy "Residual Risk" reality-check counseling. Shift messaging to maintenance.`, risk.Message)

	stable := ClassifyAdherence(60, true)
	assert.False(t, stable.Alert)
	assert.Equal(t, "STABLE", stable.Label)
	assert.Equal(t, "Standard DAPT SMS reminders.", stable.Message)
}

func TestClassifyPracticeSetting(t *testing.T) {
	tests := []struct {
		name  string
		label string
		avg   int
		ok    bool
		want  model.StrategyCode
	}{
		{"corporate tertiary at minimum", "Corporate tertiary", 70, true, model.StrategyClinicalSuperiority},
		{"corporate tertiary high", "Corporate tertiary", 92, true, model.StrategyClinicalSuperiority},
		{"corporate tertiary below minimum", "Corporate tertiary", 69, true, model.StrategyOperationalEfficiency},
		{"other setting high evidence", "Mid-tier private", 99, true, model.StrategyOperationalEfficiency},
		{"unknown setting", model.UnknownLabel, 80, true, model.StrategyOperationalEfficiency},
		{"no average", "Corporate tertiary", 0, false, model.StrategyInsufficientData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPracticeSetting(tt.label, tt.avg, tt.ok).Code)
		})
	}
}

func TestStrategyRuleTablesEndWithDefault(t *testing.T) {
	for _, rules := range [][]strategyRule{adherenceRules, practiceSettingRules} {
		last := rules[len(rules)-1]
		assert.Equal(t, "default", last.Name)
		assert.True(t, last.Match(ruleInput{}))
	}
}
