// Package recommend maps (resource type, risk level) to an ordered
// list of operator actions. Purely declarative: no randomness, no
// learning. Every pair returns at least one action so downstream
// consumers always have content, even at low risk.
package recommend

import (
	"github.com/havenhealth/ops-engine/pkg/models"
)

type key struct {
	resource models.ResourceType
	risk     models.RiskLevel
}

var catalog = map[key][]string{
	{models.ResourceOxygen, models.RiskCritical}: {
		"Activate backup oxygen supply immediately",
		"Contact supplier for emergency refill",
		"Reduce non-essential oxygen consumption",
		"Prepare patient transfer contingency",
	},
	{models.ResourceOxygen, models.RiskHigh}: {
		"Schedule priority refill within 6 hours",
		"Verify backup reserve pressure",
		"Review high-flow therapy allocations",
	},
	{models.ResourceOxygen, models.RiskMedium}: {
		"Schedule routine refill within 24 hours",
		"Check station flow calibration",
	},
	{models.ResourceOxygen, models.RiskLow}: {
		"Continue monitoring oxygen levels",
	},

	{models.ResourceBeds, models.RiskCritical}: {
		"Activate surge capacity protocol",
		"Expedite pending discharges",
		"Coordinate transfers with partner facilities",
		"Convert day-surgery beds to inpatient use",
	},
	{models.ResourceBeds, models.RiskHigh}: {
		"Prioritize discharge rounds this shift",
		"Accelerate bed turnover and cleaning",
		"Defer elective admissions where safe",
	},
	{models.ResourceBeds, models.RiskMedium}: {
		"Review discharge candidates for tomorrow",
		"Confirm cleaning staff coverage",
	},
	{models.ResourceBeds, models.RiskLow}: {
		"Continue monitoring bed availability",
	},

	{models.ResourceStaff, models.RiskCritical}: {
		"Call in on-call staff immediately",
		"Redistribute workload across departments",
		"Escalate to staffing coordinator",
	},
	{models.ResourceStaff, models.RiskHigh}: {
		"Offer voluntary overtime for next shift",
		"Postpone non-urgent administrative tasks",
	},
	{models.ResourceStaff, models.RiskMedium}: {
		"Review next shift roster for coverage gaps",
	},
	{models.ResourceStaff, models.RiskLow}: {
		"Continue monitoring staff workload",
	},

	{models.ResourceEmergency, models.RiskCritical}: {
		"Activate emergency surge protocol",
		"Request ambulance diversion where appropriate",
		"Open overflow triage area",
	},
	{models.ResourceEmergency, models.RiskHigh}: {
		"Add triage staff to emergency department",
		"Fast-track low-acuity cases",
	},
	{models.ResourceEmergency, models.RiskMedium}: {
		"Brief charge nurse on rising case load",
	},
	{models.ResourceEmergency, models.RiskLow}: {
		"Continue monitoring emergency case load",
	},
}

// Actions returns the ordered actions for a resource/risk pair, most
// urgent first. Unknown pairs fall back to a monitoring message rather
// than an empty list.
func Actions(resource models.ResourceType, risk models.RiskLevel) []string {
	if actions, ok := catalog[key{resource, risk}]; ok {
		out := make([]string, len(actions))
		copy(out, actions)
		return out
	}
	return []string{"Continue monitoring " + string(resource) + " status"}
}
