package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// fieldPathPattern is the grammar for response filter field paths: dotted
// identifiers with optional numeric or wildcard bracket indices and an
// optional leading "$." JSONPath marker.
var fieldPathPattern = regexp.MustCompile(`^(\$\.)?[A-Za-z_][A-Za-z0-9_]*(\[(\d+|\*)\])?(\.[A-Za-z_][A-Za-z0-9_]*(\[(\d+|\*)\])?)*$`)

// ValidateSecurity checks tool classifications, access policy coverage of
// high-risk tools, response filter field paths, grant mapping tool references
// and access rule shape. Security findings that represent real access-control
// gaps are errors; everything advisory is a warning.
func ValidateSecurity(s *skill.Skill) []Issue {
	var issues []Issue

	matcher := newPolicyMatcher(s)

	for i, tool := range s.Tools {
		path := fmt.Sprintf("tools[%d]", i)

		if tool.Security == nil || tool.Security.Classification == "" {
			issues = append(issues, warningIssue(CodeToolUnclassified, path+".security.classification",
				"tool %q has no security classification", tool.Name).
				withSuggestion("classify the tool so access policy requirements can be enforced"))
			continue
		}

		classification := tool.Security.Classification
		if !classification.Valid() {
			issues = append(issues, errorIssue(CodeInvalidClassification, path+".security.classification",
				"invalid classification %q, allowed values: %s", classification, strings.Join(skill.ClassificationValues(), ", ")))
			continue
		}

		if tool.Security.RiskLevel != "" && !tool.Security.RiskLevel.Valid() {
			issues = append(issues, errorIssue(CodeInvalidRiskLevel, path+".security.risk_level",
				"invalid risk level %q, allowed values: %s", tool.Security.RiskLevel, strings.Join(skill.RiskLevelValues(), ", ")))
		}

		covered := matcher.covers(tool)

		if classification.HighRisk() && !covered {
			issues = append(issues, errorIssue(CodeHighRiskNoPolicy, path,
				"tool %q is classified %s but no access policy rule covers it", tool.Name, classification).
				withSuggestion("add an access_policy rule naming the tool, or a wildcard rule"))
		}

		if classification.PII() && !covered && !hasResponseFilters(s) {
			issues = append(issues, warningIssue(CodePIINoFilter, path,
				"tool %q handles PII but the skill has no response filters and no access policy coverage for it", tool.Name).
				withSuggestion("add response_filters to strip or mask personal fields, or cover the tool with an access policy rule"))
		}

		if tool.DataOwnerField != "" && !dataOwnerConstrained(s, tool) {
			issues = append(issues, warningIssue(CodeDataOwnerNoConstrain, path+".data_owner_field",
				"tool %q declares data owner field %q but no constrain rule or grant mapping captures it", tool.Name, tool.DataOwnerField).
				withSuggestion("add an access_policy constrain rule or a grant mapping on that field"))
		}
	}

	issues = append(issues, validateGrantMappings(s)...)
	issues = append(issues, validateAccessRules(s)...)
	issues = append(issues, validateResponseFilterPaths(s)...)

	return issues
}

// IsSecurityComplete reports whether every high-risk tool is covered by an
// access policy rule. A skill with no high-risk tools is vacuously complete.
func IsSecurityComplete(s *skill.Skill) bool {
	matcher := newPolicyMatcher(s)
	for _, tool := range s.Tools {
		if tool.Security == nil {
			continue
		}
		if tool.Security.Classification.HighRisk() && !matcher.covers(tool) {
			return false
		}
	}
	return true
}

// CoverageReport carries the numeric security posture for UI display.
type CoverageReport struct {
	Tools           int `json:"tools"`
	Classified      int `json:"classified"`
	Unclassified    int `json:"unclassified"`
	HighRisk        int `json:"high_risk"`
	HighRiskCovered int `json:"high_risk_covered"`
	PII             int `json:"pii"`
	PIIFiltered     int `json:"pii_filtered"`
}

// SecurityCoverage computes the classification and coverage counts for a
// skill.
func SecurityCoverage(s *skill.Skill) CoverageReport {
	report := CoverageReport{Tools: len(s.Tools)}
	matcher := newPolicyMatcher(s)
	filtered := hasResponseFilters(s)

	for _, tool := range s.Tools {
		if tool.Security == nil || tool.Security.Classification == "" {
			report.Unclassified++
			continue
		}
		report.Classified++

		classification := tool.Security.Classification
		covered := matcher.covers(tool)
		if classification.HighRisk() {
			report.HighRisk++
			if covered {
				report.HighRiskCovered++
			}
		}
		if classification.PII() {
			report.PII++
			if filtered || covered {
				report.PIIFiltered++
			}
		}
	}
	return report
}

// policyMatcher resolves access rule tool matchers against the skill's tools.
// A matcher may be the wildcard "*", an exact id or name (case-insensitive),
// or a glob pattern such as "orders.*". Patterns that fail to compile fall
// back to exact matching.
type policyMatcher struct {
	rules []compiledRule
}

type compiledRule struct {
	effect   skill.AccessEffect
	field    string
	matchers []toolMatcher
}

type toolMatcher struct {
	raw      string
	wildcard bool
	pattern  glob.Glob
}

func newPolicyMatcher(s *skill.Skill) *policyMatcher {
	m := &policyMatcher{}
	if s.AccessPolicy == nil {
		return m
	}
	for _, rule := range s.AccessPolicy.Rules {
		compiled := compiledRule{effect: rule.Effect, field: rule.Field}
		for _, raw := range rule.Tools {
			tm := toolMatcher{raw: raw, wildcard: raw == "*"}
			if !tm.wildcard {
				if pattern, err := glob.Compile(strings.ToLower(raw)); err == nil {
					tm.pattern = pattern
				}
			}
			compiled.matchers = append(compiled.matchers, tm)
		}
		m.rules = append(m.rules, compiled)
	}
	return m
}

func (tm toolMatcher) matches(tool skill.Tool) bool {
	if tm.wildcard {
		return true
	}
	id := strings.ToLower(tool.ID)
	name := strings.ToLower(tool.Name)
	raw := strings.ToLower(tm.raw)
	if raw == id || raw == name {
		return true
	}
	if tm.pattern != nil {
		return tm.pattern.Match(id) || tm.pattern.Match(name)
	}
	return false
}

// covers reports whether any rule matches the tool, regardless of effect.
func (m *policyMatcher) covers(tool skill.Tool) bool {
	for _, rule := range m.rules {
		for _, tm := range rule.matchers {
			if tm.matches(tool) {
				return true
			}
		}
	}
	return false
}

// constrainsField reports whether a constrain rule matching the tool captures
// the given field.
func (m *policyMatcher) constrainsField(tool skill.Tool, field string) bool {
	for _, rule := range m.rules {
		if rule.effect != skill.EffectConstrain || rule.field != field {
			continue
		}
		for _, tm := range rule.matchers {
			if tm.matches(tool) {
				return true
			}
		}
	}
	return false
}

func dataOwnerConstrained(s *skill.Skill, tool skill.Tool) bool {
	matcher := newPolicyMatcher(s)
	if matcher.constrainsField(tool, tool.DataOwnerField) {
		return true
	}
	for _, mapping := range s.GrantMappings {
		if mapping.Field != tool.DataOwnerField {
			continue
		}
		if strings.EqualFold(mapping.Tool, tool.ID) || strings.EqualFold(mapping.Tool, tool.Name) {
			return true
		}
	}
	return false
}

func hasResponseFilters(s *skill.Skill) bool {
	for _, filter := range s.ResponseFilters {
		if len(filter.StripFields) > 0 || len(filter.MaskFields) > 0 {
			return true
		}
	}
	return false
}

func validateGrantMappings(s *skill.Skill) []Issue {
	var issues []Issue
	for i, mapping := range s.GrantMappings {
		if mapping.Tool == "" {
			continue
		}
		if resolvesAsSkillTool(s, mapping.Tool) {
			continue
		}
		issues = append(issues, errorIssue(CodeGrantToolNotFound, fmt.Sprintf("grant_mappings[%d].tool", i),
			"grant mapping %q references unknown tool %q", mapping.Grant, mapping.Tool))
	}
	return issues
}

func validateAccessRules(s *skill.Skill) []Issue {
	var issues []Issue
	if s.AccessPolicy == nil {
		return issues
	}
	for i, rule := range s.AccessPolicy.Rules {
		path := fmt.Sprintf("access_policy.rules[%d]", i)

		if rule.Effect != "" && !rule.Effect.Valid() {
			issues = append(issues, errorIssue(CodeInvalidEffect, path+".effect",
				"invalid effect %q, allowed values: %s", rule.Effect, strings.Join(skill.AccessEffectValues(), ", ")))
		}

		for j, ref := range rule.Tools {
			if ref == "*" || skill.IsSystemTool(ref) {
				continue
			}
			if accessRuleEntryResolves(s, ref) {
				continue
			}
			issues = append(issues, errorIssue(CodePolicyToolNotFound, fmt.Sprintf("%s.tools[%d]", path, j),
				"access policy rule references unknown tool %q", ref))
		}
	}
	return issues
}

// accessRuleEntryResolves accepts exact id/name matches and glob patterns
// that match at least one declared tool.
func accessRuleEntryResolves(s *skill.Skill, ref string) bool {
	if resolvesAsSkillTool(s, ref) {
		return true
	}
	pattern, err := glob.Compile(strings.ToLower(ref))
	if err != nil {
		return false
	}
	for _, tool := range s.Tools {
		if pattern.Match(strings.ToLower(tool.ID)) || pattern.Match(strings.ToLower(tool.Name)) {
			return true
		}
	}
	return false
}

func resolvesAsSkillTool(s *skill.Skill, ref string) bool {
	if skill.IsSystemTool(ref) {
		return true
	}
	for _, tool := range s.Tools {
		if strings.EqualFold(tool.ID, ref) || strings.EqualFold(tool.Name, ref) {
			return true
		}
	}
	for _, meta := range s.MetaTools {
		if strings.EqualFold(meta.ID, ref) || strings.EqualFold(meta.Name, ref) {
			return true
		}
	}
	return false
}

func validateResponseFilterPaths(s *skill.Skill) []Issue {
	var issues []Issue
	for i, filter := range s.ResponseFilters {
		for j, path := range filter.StripFields {
			if !fieldPathPattern.MatchString(path) {
				issues = append(issues, errorIssue(CodeInvalidFieldPath, fmt.Sprintf("response_filters[%d].strip_fields[%d]", i, j),
					"malformed field path %q", path).
					withSuggestion("use dotted identifiers with optional [n] or [*] indices, e.g. customer.addresses[*].zip"))
			}
		}
		for j, path := range filter.MaskFields {
			if !fieldPathPattern.MatchString(path) {
				issues = append(issues, errorIssue(CodeInvalidFieldPath, fmt.Sprintf("response_filters[%d].mask_fields[%d]", i, j),
					"malformed field path %q", path).
					withSuggestion("use dotted identifiers with optional [n] or [*] indices, e.g. customer.addresses[*].zip"))
			}
		}
	}
	return issues
}
