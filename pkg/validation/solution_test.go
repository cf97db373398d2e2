package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// supportSuiteDoc is a two-skill composition with a grant flowing over a
// handoff.
func supportSuiteDoc() map[string]any {
	return map[string]any{
		"id":   "support-suite",
		"name": "Support Suite",
		"identity": map[string]any{
			"actor_types":        []any{"customer", "agent"},
			"default_actor_type": "customer",
			"admin_roles":        []any{"agent"},
		},
		"skills": []any{
			map[string]any{"id": "front-desk", "role": "gateway", "entry_channels": []any{"web"}},
			map[string]any{"id": "billing", "role": "worker"},
		},
		"grants": []any{
			map[string]any{
				"key":         "customer_verified",
				"issued_by":   []any{"front-desk"},
				"consumed_by": []any{"billing"},
			},
		},
		"handoffs": []any{
			map[string]any{
				"id":            "h1",
				"from":          "front-desk",
				"to":            "billing",
				"grants_passed": []any{"customer_verified"},
			},
		},
		"routing": map[string]any{"web": "front-desk"},
		"security_contracts": []any{
			map[string]any{
				"consumer":        "billing",
				"provider":        "front-desk",
				"requires_grants": []any{"customer_verified"},
			},
		},
	}
}

func TestValidateSolutionWellFormed(t *testing.T) {
	report, err := ValidateSolution(supportSuiteDoc(), nil)
	require.NoError(t, err)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 2, report.Summary.Skills)
	assert.Equal(t, 1, report.Summary.Grants)
	assert.Equal(t, 1, report.Summary.Handoffs)
	assert.Equal(t, 1, report.Summary.Contracts)
	assert.Empty(t, report.Summary.Orphans)
}

func TestValidateSolutionNilDocument(t *testing.T) {
	_, err := ValidateSolution(nil, nil)
	assert.Error(t, err)
}

func TestSolutionIdentityChecks(t *testing.T) {
	doc := supportSuiteDoc()
	doc["identity"] = map[string]any{
		"actor_types":        []any{"customer"},
		"default_actor_type": "alien",
		"admin_roles":        []any{"supervisor"},
	}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Errors, CodeDefaultActorUnknown), 1)
	assert.Len(t, byCode(report.Warnings, CodeAdminRoleUndeclared), 1)
}

func TestSolutionNoActorTypesShortCircuits(t *testing.T) {
	doc := supportSuiteDoc()
	doc["identity"] = map[string]any{}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Warnings, CodeNoActorTypes), 1)
	assert.Empty(t, byCode(report.Errors, CodeDefaultActorUnknown))
}

func TestSolutionGrantChecks(t *testing.T) {
	doc := supportSuiteDoc()
	doc["grants"] = []any{
		map[string]any{
			"key":         "customer_verified",
			"issued_by":   []any{"nobody"},
			"consumed_by": []any{"billing"},
		},
		map[string]any{
			"key":         "orphan_grant",
			"consumed_by": []any{"billing"},
		},
	}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Errors, CodeGrantUnknownSkill), 1)
	assert.Len(t, byCode(report.Errors, CodeGrantNoIssuer), 1)
}

func TestSolutionContractGrantNotPassed(t *testing.T) {
	doc := supportSuiteDoc()
	handoffs := doc["handoffs"].([]any)
	handoff := handoffs[0].(map[string]any)
	handoff["grants_passed"] = []any{}
	handoff["grants_dropped"] = []any{"customer_verified"}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	missing := byCode(report.Errors, CodeContractGrantMissing)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "customer_verified")
	assert.False(t, report.Valid)
}

func TestSolutionContractNoPath(t *testing.T) {
	doc := supportSuiteDoc()
	doc["handoffs"] = []any{}
	// billing loses its handoff; route it so it is not an orphan too.
	doc["routing"] = map[string]any{"web": "front-desk", "billing-portal": "billing"}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Warnings, CodeContractNoPath), 1)
	assert.Empty(t, byCode(report.Errors, CodeContractGrantMissing))
}

func TestSolutionContractAcrossMultiHopPath(t *testing.T) {
	doc := supportSuiteDoc()
	doc["skills"] = []any{
		map[string]any{"id": "front-desk", "entry_channels": []any{"web"}},
		map[string]any{"id": "triage"},
		map[string]any{"id": "billing"},
	}
	doc["handoffs"] = []any{
		map[string]any{"id": "h1", "from": "front-desk", "to": "triage", "grants_passed": []any{"customer_verified"}},
		map[string]any{"id": "h2", "from": "triage", "to": "billing", "grants_passed": []any{}},
	}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	// The second hop drops the grant the contract requires.
	missing := byCode(report.Errors, CodeContractGrantMissing)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "h2")
}

func TestSolutionRoutingChecks(t *testing.T) {
	doc := supportSuiteDoc()
	doc["routing"] = map[string]any{"email": "ghost-skill"}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Errors, CodeRoutingTargetMissing), 1)
	// front-desk declares entry channel web, which is no longer routed.
	assert.Len(t, byCode(report.Warnings, CodeChannelNotRouted), 1)
}

func TestSolutionMechanismDeclaration(t *testing.T) {
	doc := supportSuiteDoc()
	handoffs := doc["handoffs"].([]any)
	handoff := handoffs[0].(map[string]any)
	handoff["mechanism"] = "teams-connector"

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)
	assert.Len(t, byCode(report.Warnings, CodeMechanismNotDeclared), 1)

	doc["platform_connectors"] = []any{"teams-connector"}
	report, err = ValidateSolution(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, byCode(report.Warnings, CodeMechanismNotDeclared))
}

func TestSolutionInternalMechanismNeedsNoDeclaration(t *testing.T) {
	doc := supportSuiteDoc()
	handoffs := doc["handoffs"].([]any)
	handoff := handoffs[0].(map[string]any)
	handoff["mechanism"] = "internal-message"

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, byCode(report.Warnings, CodeMechanismNotDeclared))
}

func TestSolutionOrphanSkills(t *testing.T) {
	doc := supportSuiteDoc()
	doc["skills"] = []any{
		map[string]any{"id": "front-desk", "entry_channels": []any{"web"}},
		map[string]any{"id": "billing"},
		map[string]any{"id": "lonely"},
	}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	assert.Len(t, byCode(report.Warnings, CodeOrphanSkill), 1)
	assert.Equal(t, []string{"lonely"}, report.Summary.Orphans)
}

func TestSolutionHandoffCycle(t *testing.T) {
	doc := supportSuiteDoc()
	doc["handoffs"] = []any{
		map[string]any{"id": "h1", "from": "front-desk", "to": "billing", "grants_passed": []any{"customer_verified"}},
		map[string]any{"id": "h2", "from": "billing", "to": "front-desk"},
	}
	doc["security_contracts"] = []any{}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)

	cycles := byCode(report.Errors, CodeHandoffCircular)
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0].Message, "billing -> front-desk -> billing")
}

func TestSolutionHandoffUnknownSkill(t *testing.T) {
	doc := supportSuiteDoc()
	doc["handoffs"] = []any{
		map[string]any{"id": "h1", "from": "front-desk", "to": "ghost"},
	}
	doc["security_contracts"] = []any{}

	report, err := ValidateSolution(doc, nil)
	require.NoError(t, err)
	assert.Len(t, byCode(report.Errors, CodeHandoffUnknownSkill), 1)
}
