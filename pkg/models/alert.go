package models

import "time"

// BreachKey is the logical identifier of a threshold violation, used
// to deduplicate alerts: at most one active alert exists per key.
type BreachKey string

func (k BreachKey) String() string { return string(k) }

type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

type AlertCategory string

const (
	CategoryOxygen       AlertCategory = "oxygen"
	CategoryBeds         AlertCategory = "beds"
	CategoryStaff        AlertCategory = "staff"
	CategoryEmergency    AlertCategory = "emergency"
	CategoryPredictive   AlertCategory = "predictive"
	CategoryOptimization AlertCategory = "optimization"
)

// Recommendation is one actionable response attached to an alert.
// Immutable once attached.
type Recommendation struct {
	ID            string   `json:"id"`
	Action        string   `json:"action"`
	Priority      string   `json:"priority"`
	EstimatedTime string   `json:"estimated_time"`
	Impact        string   `json:"impact"`
	Cost          string   `json:"cost"`
	Departments   []string `json:"departments"`
	Automation    bool     `json:"automation"`
	SuccessRate   int      `json:"success_rate"`
}

// Alert is owned exclusively by the alert lifecycle manager; consumers
// only ever receive copies. Lifecycle:
// created -> {acknowledged?} -> resolved (terminal, idempotent).
type Alert struct {
	ID                string           `json:"id"`
	Type              AlertType        `json:"type"`
	Category          AlertCategory    `json:"category"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	Timestamp         time.Time        `json:"timestamp"`
	Priority          int              `json:"priority"`
	Acknowledged      bool             `json:"acknowledged"`
	Resolved          bool             `json:"resolved"`
	Recommendations   []Recommendation `json:"recommendations"`
	AffectedResources []string         `json:"affected_resources"`
	EstimatedImpact   string           `json:"estimated_impact"`
	AutoResolve       bool             `json:"auto_resolve,omitempty"`
}

// Clone returns a deep copy safe to hand to subscribers.
func (a Alert) Clone() Alert {
	out := a
	out.Recommendations = make([]Recommendation, len(a.Recommendations))
	for i, rec := range a.Recommendations {
		out.Recommendations[i] = rec
		out.Recommendations[i].Departments = append([]string(nil), rec.Departments...)
	}
	out.AffectedResources = append([]string(nil), a.AffectedResources...)
	return out
}
