package validation

import (
	"math"
	"strings"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// Completeness holds the per-section "meaningfully filled" flags. Each flag is
// computed by an independent predicate; none of them looks at another section
// except security, which reads the access policy. Engine is always complete
// because engine defaults always apply.
type Completeness struct {
	Problem     bool `json:"problem"`
	Scenarios   bool `json:"scenarios"`
	Role        bool `json:"role"`
	Intents     bool `json:"intents"`
	Tools       bool `json:"tools"`
	Policy      bool `json:"policy"`
	Engine      bool `json:"engine"`
	MocksTested bool `json:"mocks_tested"`
	Identity    bool `json:"identity"`
	Security    bool `json:"security"`
}

// sectionCount is the divisor for the overall progress percentage.
const sectionCount = 10

// CompletenessReport adds raw counts and the aggregate progress percentage
// for UI display.
type CompletenessReport struct {
	Sections        Completeness `json:"sections"`
	ScenarioCount   int          `json:"scenario_count"`
	IntentCount     int          `json:"intent_count"`
	ToolCount       int          `json:"tool_count"`
	GuardrailCount  int          `json:"guardrail_count"`
	WorkflowCount   int          `json:"workflow_count"`
	MockedToolCount int          `json:"mocked_tool_count"`
	OverallProgress int          `json:"overall_progress"`
}

// CheckCompleteness computes the per-section flags for a skill.
func CheckCompleteness(s *skill.Skill) Completeness {
	return Completeness{
		Problem:     problemComplete(s),
		Scenarios:   scenariosComplete(s),
		Role:        roleComplete(s),
		Intents:     intentsComplete(s),
		Tools:       toolsComplete(s),
		Policy:      policyComplete(s),
		Engine:      true,
		MocksTested: MocksTested(s),
		Identity:    identityComplete(s),
		Security:    IsSecurityComplete(s),
	}
}

// CompletenessDetail computes the full report including counts and the
// rounded overall percentage.
func CompletenessDetail(s *skill.Skill) CompletenessReport {
	sections := CheckCompleteness(s)
	report := CompletenessReport{
		Sections:      sections,
		ScenarioCount: len(s.Scenarios),
		ToolCount:     len(s.Tools),
	}
	if s.Intents != nil {
		report.IntentCount = len(s.Intents.Supported)
	}
	if s.Policy != nil {
		report.WorkflowCount = len(s.Policy.Workflows)
		if s.Policy.Guardrails != nil {
			report.GuardrailCount = len(s.Policy.Guardrails.Never) + len(s.Policy.Guardrails.Always)
		}
	}
	for _, tool := range s.Tools {
		if tool.Mock != nil && tool.Mock.Status != "" && tool.Mock.Status != skill.MockUntested {
			report.MockedToolCount++
		}
	}

	complete := 0
	for _, flag := range []bool{
		sections.Problem, sections.Scenarios, sections.Role, sections.Intents,
		sections.Tools, sections.Policy, sections.Engine, sections.MocksTested,
		sections.Identity, sections.Security,
	} {
		if flag {
			complete++
		}
	}
	report.OverallProgress = int(math.Round(float64(complete) / sectionCount * 100))
	return report
}

// MocksTested reports whether every tool's mock has been exercised. A skill
// with zero tools is not considered tested; a tool without mock config counts
// as untested. This deliberately differs from the security predicate's
// vacuous-true convention because mock testing is evidence of work done, not
// the absence of a hazard.
func MocksTested(s *skill.Skill) bool {
	if len(s.Tools) == 0 {
		return false
	}
	for _, tool := range s.Tools {
		if tool.Mock == nil || tool.Mock.Status == "" || tool.Mock.Status == skill.MockUntested {
			return false
		}
	}
	return true
}

func problemComplete(s *skill.Skill) bool {
	return s.Problem != nil && len(strings.TrimSpace(s.Problem.Statement)) >= 10
}

func scenariosComplete(s *skill.Skill) bool {
	for _, scenario := range s.Scenarios {
		if strings.TrimSpace(scenario.Title) != "" {
			return true
		}
	}
	return false
}

func roleComplete(s *skill.Skill) bool {
	return s.Role != nil && strings.TrimSpace(s.Role.Name) != "" && strings.TrimSpace(s.Role.Persona) != ""
}

func intentsComplete(s *skill.Skill) bool {
	if s.Intents == nil {
		return false
	}
	for _, intent := range s.Intents.Supported {
		if strings.TrimSpace(intent.Description) != "" && len(intent.Examples) > 0 {
			return true
		}
	}
	return false
}

func toolsComplete(s *skill.Skill) bool {
	for _, tool := range s.Tools {
		if strings.TrimSpace(tool.Name) == "" || strings.TrimSpace(tool.Description) == "" {
			continue
		}
		if tool.Output != nil && strings.TrimSpace(tool.Output.Description) != "" {
			return true
		}
	}
	return false
}

func policyComplete(s *skill.Skill) bool {
	if s.Policy == nil || s.Policy.Guardrails == nil {
		return false
	}
	return len(s.Policy.Guardrails.Never) > 0 || len(s.Policy.Guardrails.Always) > 0
}

func identityComplete(s *skill.Skill) bool {
	return s.Identity != nil &&
		strings.TrimSpace(s.Identity.DisplayName) != "" &&
		strings.Contains(s.Identity.FromEmail, "@")
}
