package models

import "errors"

// ErrInvalidResourceType is returned when a caller asks for a resource
// type the engine does not forecast.
var ErrInvalidResourceType = errors.New("invalid resource type")

type ResourceType string

const (
	ResourceOxygen    ResourceType = "oxygen"
	ResourceBeds      ResourceType = "beds"
	ResourceStaff     ResourceType = "staff"
	ResourceEmergency ResourceType = "emergency"
)

func AllResourceTypes() []ResourceType {
	return []ResourceType{ResourceOxygen, ResourceBeds, ResourceStaff, ResourceEmergency}
}

func ParseResourceType(s string) (ResourceType, error) {
	switch ResourceType(s) {
	case ResourceOxygen, ResourceBeds, ResourceStaff, ResourceEmergency:
		return ResourceType(s), nil
	default:
		return "", ErrInvalidResourceType
	}
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity maps risk levels onto an ordinal scale so levels can be
// compared (critical > high > medium > low).
func (r RiskLevel) Severity() int {
	switch r {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)
