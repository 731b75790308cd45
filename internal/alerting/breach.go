package alerting

import (
	"fmt"

	"github.com/havenhealth/ops-engine/pkg/models"
)

// Breach thresholds applied to raw snapshots. Predictive thresholds
// live in the risk assessor; these catch immediate violations.
const (
	oxygenLevelCritical  = 30.0
	bedsAvailableMin     = 5
	staffWorkloadMax     = 90.0
	emergencySurgeCases  = 8
	optimizationFloorDef = 70
)

func oxygenKey(stationID string) models.BreachKey {
	return models.BreachKey("oxygen-" + stationID)
}

func predictiveKey(resource models.ResourceType) models.BreachKey {
	return models.BreachKey("predictive-" + string(resource))
}

const (
	bedsCriticalKey    models.BreachKey = "beds-critical"
	staffOverloadKey   models.BreachKey = "staff-overload"
	emergencySurgeKey  models.BreachKey = "emergency-surge"
	optimizationLowKey models.BreachKey = "optimization-low"
)

func oxygenStationAlert(station models.OxygenStationReading) models.Alert {
	name := station.Name
	if name == "" {
		name = station.StationID
	}
	return models.Alert{
		Type:      models.AlertCritical,
		Category:  models.CategoryOxygen,
		Title:     fmt.Sprintf("Oxygen critical at %s", name),
		Message:   fmt.Sprintf("Station %s oxygen level at %.1f%%, below the %.0f%% safety threshold", name, station.Level, oxygenLevelCritical),
		Priority:  9,
		AffectedResources: []string{
			"oxygen-station-" + station.StationID,
		},
		EstimatedImpact: "Patients on oxygen therapy at risk within 2 hours",
		Recommendations: []models.Recommendation{
			{
				ID:            "switch-backup-supply",
				Action:        "Switch station to backup oxygen supply",
				Priority:      "immediate",
				EstimatedTime: "5 minutes",
				Impact:        "Restores supply while primary is refilled",
				Cost:          "low",
				Departments:   []string{"facilities", "respiratory-therapy"},
				Automation:    true,
				SuccessRate:   92,
			},
			{
				ID:            "emergency-refill",
				Action:        "Request emergency refill from supplier",
				Priority:      "high",
				EstimatedTime: "2 hours",
				Impact:        "Restores primary supply",
				Cost:          "high",
				Departments:   []string{"procurement"},
				Automation:    false,
				SuccessRate:   98,
			},
			{
				ID:            "reduce-consumption",
				Action:        "Reduce non-essential oxygen consumption",
				Priority:      "medium",
				EstimatedTime: "30 minutes",
				Impact:        "Extends remaining supply",
				Cost:          "low",
				Departments:   []string{"nursing"},
				Automation:    false,
				SuccessRate:   75,
			},
		},
	}
}

func bedsCriticalAlert(beds models.BedCounts) models.Alert {
	return models.Alert{
		Type:     models.AlertCritical,
		Category: models.CategoryBeds,
		Title:    "Critical bed shortage",
		Message:  fmt.Sprintf("Only %d beds available, below the minimum of %d", beds.Available, bedsAvailableMin),
		Priority: 8,
		AffectedResources: []string{
			"inpatient-beds",
		},
		EstimatedImpact: "Incoming admissions may be delayed or diverted",
		Recommendations: []models.Recommendation{
			{
				ID:            "expedite-cleaning",
				Action:        "Dispatch cleaning crew to turn over vacated beds",
				Priority:      "immediate",
				EstimatedTime: "45 minutes",
				Impact:        fmt.Sprintf("Returns up to %d beds to service", beds.Cleaning),
				Cost:          "low",
				Departments:   []string{"environmental-services"},
				Automation:    true,
				SuccessRate:   88,
			},
			{
				ID:            "discharge-rounds",
				Action:        "Run expedited discharge rounds for stable patients",
				Priority:      "high",
				EstimatedTime: "2 hours",
				Impact:        "Frees beds held by discharge-ready patients",
				Cost:          "medium",
				Departments:   []string{"nursing", "case-management"},
				Automation:    false,
				SuccessRate:   70,
			},
			{
				ID:            "partner-transfer",
				Action:        "Coordinate transfers with partner facilities",
				Priority:      "medium",
				EstimatedTime: "4 hours",
				Impact:        "Offloads non-acute patients",
				Cost:          "high",
				Departments:   []string{"administration"},
				Automation:    false,
				SuccessRate:   60,
			},
		},
	}
}

func staffOverloadAlert(staff models.StaffReading) models.Alert {
	return models.Alert{
		Type:     models.AlertWarning,
		Category: models.CategoryStaff,
		Title:    "Staff workload overload",
		Message:  fmt.Sprintf("Average staff workload at %.1f%%, above the %.0f%% limit", staff.WorkloadPercent, staffWorkloadMax),
		Priority: 7,
		AffectedResources: []string{
			"clinical-staff",
		},
		EstimatedImpact: "Care quality and response times degrade under sustained overload",
		Recommendations: []models.Recommendation{
			{
				ID:            "page-on-call",
				Action:        "Page on-call staff for immediate support",
				Priority:      "high",
				EstimatedTime: "30 minutes",
				Impact:        "Adds capacity this shift",
				Cost:          "medium",
				Departments:   []string{"staffing-office"},
				Automation:    true,
				SuccessRate:   80,
			},
			{
				ID:            "rebalance-assignments",
				Action:        "Rebalance patient assignments across units",
				Priority:      "medium",
				EstimatedTime: "1 hour",
				Impact:        "Evens out workload peaks",
				Cost:          "low",
				Departments:   []string{"nursing"},
				Automation:    false,
				SuccessRate:   85,
			},
		},
	}
}

func emergencySurgeAlert(emergency models.EmergencyReading) models.Alert {
	return models.Alert{
		Type:     models.AlertCritical,
		Category: models.CategoryEmergency,
		Title:    "Emergency department surge",
		Message:  fmt.Sprintf("%d active emergency cases, above the surge threshold of %d", emergency.ActiveCases, emergencySurgeCases),
		Priority: 9,
		AffectedResources: []string{
			"emergency-department",
		},
		EstimatedImpact: "Triage wait times exceeding safe limits",
		Recommendations: []models.Recommendation{
			{
				ID:            "open-overflow",
				Action:        "Open overflow triage area",
				Priority:      "immediate",
				EstimatedTime: "20 minutes",
				Impact:        "Adds triage throughput",
				Cost:          "medium",
				Departments:   []string{"emergency", "facilities"},
				Automation:    true,
				SuccessRate:   90,
			},
			{
				ID:            "ambulance-diversion",
				Action:        "Request ambulance diversion for non-critical transports",
				Priority:      "high",
				EstimatedTime: "15 minutes",
				Impact:        "Reduces incoming case rate",
				Cost:          "high",
				Departments:   []string{"administration", "ems-liaison"},
				Automation:    false,
				SuccessRate:   95,
			},
		},
	}
}

func predictiveRiskAlert(prediction models.ResourcePrediction) models.Alert {
	return models.Alert{
		Type:     models.AlertWarning,
		Category: models.CategoryPredictive,
		Title:    fmt.Sprintf("Predicted critical risk: %s", prediction.ResourceType),
		Message: fmt.Sprintf(
			"Forecast classifies %s at critical risk over the next %d hours",
			prediction.ResourceType, len(prediction.Predictions),
		),
		Priority: 6,
		AffectedResources: []string{
			string(prediction.ResourceType),
		},
		EstimatedImpact: "Threshold breach expected without intervention",
		AutoResolve:     true,
		Recommendations: recommendationsFromActions(prediction.Recommendations),
	}
}

func optimizationLowAlert(score int, floor int) models.Alert {
	return models.Alert{
		Type:     models.AlertInfo,
		Category: models.CategoryOptimization,
		Title:    "Resource optimization below target",
		Message:  fmt.Sprintf("Overall optimization score %d is below the floor of %d", score, floor),
		Priority: 5,
		AffectedResources: []string{
			"hospital-operations",
		},
		EstimatedImpact: "Resource allocation drifting from targets",
		AutoResolve:     true,
		Recommendations: []models.Recommendation{
			{
				ID:            "review-allocation",
				Action:        "Review resource allocation against forecast targets",
				Priority:      "low",
				EstimatedTime: "1 hour",
				Impact:        "Realigns staffing and supply plans",
				Cost:          "low",
				Departments:   []string{"operations"},
				Automation:    false,
				SuccessRate:   100,
			},
		},
	}
}

// recommendationsFromActions wraps the declarative action strings of a
// prediction into non-automatable recommendation entries.
func recommendationsFromActions(actions []string) []models.Recommendation {
	recs := make([]models.Recommendation, len(actions))
	for i, action := range actions {
		recs[i] = models.Recommendation{
			ID:          fmt.Sprintf("forecast-action-%d", i+1),
			Action:      action,
			Priority:    "medium",
			Impact:      "Mitigates forecast risk",
			Cost:        "varies",
			Departments: []string{"operations"},
			Automation:  false,
			SuccessRate: 100,
		}
	}
	return recs
}
