package service

import "cardiostent/internal/model"

// Thresholds of the strategy rules
const (
	AdherenceRiskThreshold  = 60 // economics average below this is high risk
	ClinicalEvidenceMinimum = 70 // evidence average at or above this qualifies
)

var (
	strategyHighRisk = model.Strategy{
		Code:    model.StrategyHighRisk,
		Label:   "HIGH RISK",
		Message: `Deploy "Residual Risk" reality-check counseling. Shift messaging to maintenance.`,
		Alert:   true,
	}
	strategyStable = model.Strategy{
		Code:    model.StrategyStable,
		Label:   "STABLE",
		Message: "Standard DAPT SMS reminders.",
	}
	strategyClinicalSuperiority = model.Strategy{
		Code:    model.StrategyClinicalSuperiority,
		Label:   "Clinical Superiority",
		Message: "Deploy HTA dossiers for premium formulary inclusion.",
	}
	strategyOperationalEfficiency = model.Strategy{
		Code:    model.StrategyOperationalEfficiency,
		Label:   "Operational Efficiency",
		Message: "Focus on throughput and supply reliability.",
	}
	strategyInsufficientData = model.Strategy{
		Code:    model.StrategyInsufficientData,
		Label:   "INSUFFICIENT DATA",
		Message: "No scored responses in this group yet.",
	}
)

// ruleInput is what a strategy rule may look at
type ruleInput struct {
	Label   string
	Average int
	HasAvg  bool
}

// strategyRule fires when match returns true; rules are checked in order
type strategyRule struct {
	Name     string
	Match    func(in ruleInput) bool
	Strategy model.Strategy
}

func noAverage(in ruleInput) bool { return !in.HasAvg }
func always(ruleInput) bool { return true }

var adherenceRules = []strategyRule{
	{Name: "no-economics-data", Match: noAverage, Strategy: strategyInsufficientData},
	{Name: "economics-below-60", Match: func(in ruleInput) bool { return in.Average < AdherenceRiskThreshold }, Strategy: strategyHighRisk},
	{Name: "default", Match: always, Strategy: strategyStable},
}

var practiceSettingRules = []strategyRule{
	{Name: "no-evidence-data", Match: noAverage, Strategy: strategyInsufficientData},
	{
		Name: "corporate-tertiary-evidence-70",
		Match: func(in ruleInput) bool {
			return in.Label == model.CorporateTertiary && in.Average >= ClinicalEvidenceMinimum
		},
		Strategy: strategyClinicalSuperiority,
	},
	{Name: "default", Match: always, Strategy: strategyOperationalEfficiency},
}

func classify(rules []strategyRule, in ruleInput) model.Strategy {
	for _, r := range rules {
		if r.Match(in) {
			return r.Strategy
		}
	}
	return strategyInsufficientData
}

// ClassifyAdherence picks the patient messaging strategy from a group's economics average
func ClassifyAdherence(avgEconomics int, ok bool) model.Strategy {
	return classify(adherenceRules, ruleInput{Average: avgEconomics, HasAvg: ok})
}

// ClassifyPracticeSetting picks the IC strategy from the setting label and evidence average
func ClassifyPracticeSetting(label string, avgEvidence int, ok bool) model.Strategy {
	return classify(practiceSettingRules, ruleInput{Label: label, Average: avgEvidence, HasAvg: ok})
}
