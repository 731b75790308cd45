package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/recommend"
	"github.com/havenhealth/ops-engine/pkg/models"
)

func TestActions_EveryPairHasContent(t *testing.T) {
	risks := []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical}

	for _, resource := range models.AllResourceTypes() {
		for _, riskLevel := range risks {
			t.Run(string(resource)+"/"+string(riskLevel), func(t *testing.T) {
				actions := recommend.Actions(resource, riskLevel)
				assert.NotEmpty(t, actions)
				for _, a := range actions {
					assert.NotEmpty(t, a)
				}
			})
		}
	}
}

func TestActions_HigherRiskYieldsMoreActions(t *testing.T) {
	for _, resource := range models.AllResourceTypes() {
		low := recommend.Actions(resource, models.RiskLow)
		critical := recommend.Actions(resource, models.RiskCritical)
		assert.Greater(t, len(critical), len(low), "resource %s", resource)
	}
}

func TestActions_ReturnsCopy(t *testing.T) {
	first := recommend.Actions(models.ResourceOxygen, models.RiskCritical)
	require.NotEmpty(t, first)
	first[0] = "mutated"

	second := recommend.Actions(models.ResourceOxygen, models.RiskCritical)
	assert.NotEqual(t, "mutated", second[0])
}

func TestActions_UnknownPairFallsBack(t *testing.T) {
	actions := recommend.Actions(models.ResourceType("ventilators"), models.RiskHigh)
	require.Len(t, actions, 1)
	assert.Contains(t, actions[0], "monitoring")
}
