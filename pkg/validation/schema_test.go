package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byCode(issues []Issue, code string) []Issue {
	var matched []Issue
	for _, issue := range issues {
		if issue.Code == code {
			matched = append(matched, issue)
		}
	}
	return matched
}

func TestValidateSchemaMinimalDocument(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "order-support",
		"name": "Order Support",
	})
	assert.Empty(t, issues)
}

func TestValidateSchemaMissingRequiredFields(t *testing.T) {
	issues := ValidateSchema(map[string]any{})
	assert.Len(t, byCode(issues, CodeMissingField), 2)
}

func TestValidateSchemaEmptyNameIsMissing(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "   ",
	})
	require.Len(t, byCode(issues, CodeMissingField), 1)
	assert.Equal(t, "name", byCode(issues, CodeMissingField)[0].Path)
}

func TestValidateSchemaInvalidID(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "-starts-with-dash",
		"name": "Bad ID",
	})
	assert.Len(t, byCode(issues, CodeInvalidID), 1)
}

func TestValidateSchemaWrongTypes(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":        "s1",
		"name":      42,
		"scenarios": "not an array",
		"problem":   []any{},
	})
	assert.Len(t, byCode(issues, CodeInvalidType), 3)
}

func TestValidateSchemaPhaseEnum(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":    "s1",
		"name":  "Skill",
		"phase": "launched",
	})
	require.Len(t, byCode(issues, CodeInvalidEnum), 1)

	issues = ValidateSchema(map[string]any{
		"id":    "s1",
		"name":  "Skill",
		"phase": "ready",
	})
	assert.Empty(t, issues)
}

func TestValidateSchemaThresholdRange(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"intents": map[string]any{
			"thresholds": map[string]any{"confident": 1.5, "clarify": -0.1},
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidType), 2)
}

func TestValidateSchemaToolRecommendations(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"tools": []any{
			map[string]any{
				"id":     "t1",
				"name":   "lookup_order",
				"output": map[string]any{"type": "object"},
			},
		},
	})
	// Missing description and missing output.description are both advisory.
	recommended := byCode(issues, CodeMissingRecommended)
	require.Len(t, recommended, 2)
	for _, issue := range recommended {
		assert.Equal(t, SeverityWarning, issue.Severity)
	}
}

func TestValidateSchemaToolInputEnum(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"tools": []any{
			map[string]any{
				"id":          "t1",
				"name":        "lookup_order",
				"description": "Look up an order",
				"inputs": []any{
					map[string]any{"name": "order_id", "type": "integer"},
				},
			},
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidEnum), 1)
}

func TestValidateSchemaEngineBounds(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"engine": map[string]any{
			"temperature":    2.5,
			"max_iterations": 0,
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidType), 2)
}

func TestValidateSchemaIdentityEmail(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"identity": map[string]any{
			"display_name": "Order Support",
			"from_email":   "not-an-email",
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidType), 1)
}

func TestValidateSchemaScheduleTriggers(t *testing.T) {
	valid := []string{"P1D", "PT6H", "PT30M", "P1DT12H", "PT1H30M"}
	for _, schedule := range valid {
		issues := ValidateSchema(map[string]any{
			"id":   "s1",
			"name": "Skill",
			"triggers": []any{
				map[string]any{"type": "schedule", "schedule": schedule},
			},
		})
		assert.Empty(t, byCode(issues, CodeInvalidTriggerSchedule), schedule)
	}

	invalid := []string{"every day", "P", "1D"}
	for _, schedule := range invalid {
		issues := ValidateSchema(map[string]any{
			"id":   "s1",
			"name": "Skill",
			"triggers": []any{
				map[string]any{"type": "schedule", "schedule": schedule},
			},
		})
		assert.NotEmpty(t, byCode(issues, CodeInvalidTriggerSchedule), schedule)
	}
}

func TestValidateSchemaEventTriggers(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"triggers": []any{
			map[string]any{"type": "event"},
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidTriggerEvent), 1)

	issues = ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"triggers": []any{
			map[string]any{"type": "event", "event": "order.created", "filter": "status=paid"},
		},
	})
	assert.Len(t, byCode(issues, CodeInvalidTriggerEvent), 1)

	issues = ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"triggers": []any{
			map[string]any{"type": "event", "event": "order.created", "filter": map[string]any{"status": "paid"}},
		},
	})
	assert.Empty(t, issues)
}

func TestValidateSchemaAccessPolicyShape(t *testing.T) {
	issues := ValidateSchema(map[string]any{
		"id":   "s1",
		"name": "Skill",
		"access_policy": map[string]any{
			"rules": []any{
				map[string]any{"effect": "allow"},
			},
		},
	})
	// The tools list is required; the effect enum belongs to the security stage.
	assert.Len(t, byCode(issues, CodeMissingField), 1)
	assert.Empty(t, byCode(issues, CodeInvalidEnum))
}
