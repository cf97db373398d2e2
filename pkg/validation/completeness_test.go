package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

func completeSkill() *skill.Skill {
	return &skill.Skill{
		ID:   "order-support",
		Name: "Order Support",
		Problem: &skill.Problem{
			Statement: "Customers cannot check the status of their orders without waiting for a human.",
		},
		Scenarios: []skill.Scenario{
			{ID: "sc1", Title: "Customer asks where their package is"},
		},
		Role: &skill.Role{Name: "Order assistant", Persona: "Helpful and concise"},
		Intents: &skill.Intents{
			Supported: []skill.Intent{
				{ID: "check_order", Description: "Check order status", Examples: []string{"where is my order?"}},
			},
		},
		Tools: []skill.Tool{
			{
				ID:          "t1",
				Name:        "lookup_order",
				Description: "Look up an order by id",
				Output:      &skill.ToolOutput{Type: skill.TypeObject, Description: "Order record"},
				Mock:        &skill.ToolMock{Mode: skill.MockStatic, Status: skill.MockPassed},
			},
		},
		Policy: &skill.Policy{
			Guardrails: &skill.Guardrails{Never: []string{"share another customer's order"}},
		},
		Identity: &skill.Identity{DisplayName: "Order Support", FromEmail: "orders@example.com"},
	}
}

func TestCheckCompletenessAllSections(t *testing.T) {
	c := CheckCompleteness(completeSkill())
	assert.Equal(t, Completeness{
		Problem:     true,
		Scenarios:   true,
		Role:        true,
		Intents:     true,
		Tools:       true,
		Policy:      true,
		Engine:      true,
		MocksTested: true,
		Identity:    true,
		Security:    true,
	}, c)
}

func TestCheckCompletenessEmptySkill(t *testing.T) {
	c := CheckCompleteness(&skill.Skill{})
	// Engine is always complete; security is vacuously complete with no
	// high-risk tools.
	assert.True(t, c.Engine)
	assert.True(t, c.Security)
	assert.False(t, c.Problem)
	assert.False(t, c.Scenarios)
	assert.False(t, c.Role)
	assert.False(t, c.Intents)
	assert.False(t, c.Tools)
	assert.False(t, c.Policy)
	assert.False(t, c.MocksTested)
	assert.False(t, c.Identity)
}

func TestProblemRequiresSubstantialStatement(t *testing.T) {
	s := &skill.Skill{Problem: &skill.Problem{Statement: "short"}}
	assert.False(t, CheckCompleteness(s).Problem)

	s.Problem.Statement = "   padded     "
	assert.False(t, CheckCompleteness(s).Problem)

	s.Problem.Statement = "a statement long enough to mean something"
	assert.True(t, CheckCompleteness(s).Problem)
}

func TestToolsRequireOutputDescription(t *testing.T) {
	s := &skill.Skill{
		Tools: []skill.Tool{
			{ID: "t1", Name: "lookup_order", Description: "Look up an order"},
		},
	}
	assert.False(t, CheckCompleteness(s).Tools)

	s.Tools[0].Output = &skill.ToolOutput{Description: "Order record"}
	assert.True(t, CheckCompleteness(s).Tools)
}

func TestIdentityRequiresEmailAddress(t *testing.T) {
	s := &skill.Skill{Identity: &skill.Identity{DisplayName: "Support", FromEmail: "nope"}}
	assert.False(t, CheckCompleteness(s).Identity)

	s.Identity.FromEmail = "support@example.com"
	assert.True(t, CheckCompleteness(s).Identity)
}

func TestMocksTestedZeroToolsIsFalse(t *testing.T) {
	// No tools means no evidence of testing, unlike the security predicate
	// which is vacuously true.
	assert.False(t, MocksTested(&skill.Skill{}))
}

func TestMocksTestedEveryToolMustPass(t *testing.T) {
	s := &skill.Skill{
		Tools: []skill.Tool{
			{ID: "t1", Name: "a", Mock: &skill.ToolMock{Status: skill.MockPassed}},
			{ID: "t2", Name: "b", Mock: &skill.ToolMock{Status: skill.MockUntested}},
		},
	}
	assert.False(t, MocksTested(s))

	s.Tools[1].Mock.Status = skill.MockFailed
	assert.True(t, MocksTested(s))

	s.Tools[1].Mock = nil
	assert.False(t, MocksTested(s))
}

func TestCompletenessDetailProgress(t *testing.T) {
	report := CompletenessDetail(completeSkill())
	assert.Equal(t, 100, report.OverallProgress)
	assert.Equal(t, 1, report.ScenarioCount)
	assert.Equal(t, 1, report.IntentCount)
	assert.Equal(t, 1, report.ToolCount)
	assert.Equal(t, 1, report.GuardrailCount)
	assert.Equal(t, 1, report.MockedToolCount)

	report = CompletenessDetail(&skill.Skill{})
	assert.Equal(t, 20, report.OverallProgress)
}
