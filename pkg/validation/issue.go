// Package validation implements the multi-stage skill validator and the
// cross-skill solution validator. Every check appends issues and keeps going;
// nothing here aborts early or returns a Go error for malformed document
// content, so a half-finished draft always yields a complete, actionable
// issue list.
package validation

import "fmt"

// Severity of an issue. Warnings never block validity; they gate export.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Code is the stable machine-readable
// contract; consumers match on Code, never on Message text.
type Issue struct {
	Code       string   `json:"code"`
	Severity   Severity `json:"severity"`
	Path       string   `json:"path"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Skill-level issue codes.
const (
	CodeMissingField           = "MISSING_FIELD"
	CodeInvalidType            = "INVALID_TYPE"
	CodeInvalidEnum            = "INVALID_ENUM"
	CodeInvalidID              = "INVALID_ID"
	CodeMissingRecommended     = "MISSING_RECOMMENDED"
	CodeInvalidTriggerSchedule = "INVALID_TRIGGER_SCHEDULE"
	CodeInvalidTriggerEvent    = "INVALID_TRIGGER_EVENT"
	CodeDuplicateToolID        = "DUPLICATE_TOOL_ID"
	CodeDuplicateToolName      = "DUPLICATE_TOOL_NAME"
	CodeDuplicateWorkflowID    = "DUPLICATE_WORKFLOW_ID"
	CodeDuplicateIntentID      = "DUPLICATE_INTENT_ID"
	CodeDuplicateScenarioID    = "DUPLICATE_SCENARIO_ID"
	CodeToolNotFound           = "TOOL_NOT_FOUND"
	CodeWorkflowNotFound       = "WORKFLOW_NOT_FOUND"
	CodeApprovalToolNotFound   = "APPROVAL_TOOL_NOT_FOUND"
	CodeIntentNoTools          = "INTENT_NO_TOOLS"
	CodeWorkflowCircular       = "WORKFLOW_CIRCULAR"
	CodeToolUnclassified       = "TOOL_UNCLASSIFIED"
	CodeInvalidClassification  = "INVALID_CLASSIFICATION"
	CodeInvalidRiskLevel       = "INVALID_RISK_LEVEL"
	CodeHighRiskNoPolicy       = "HIGH_RISK_NO_POLICY"
	CodePIINoFilter            = "PII_NO_FILTER"
	CodeDataOwnerNoConstrain   = "DATA_OWNER_NO_CONSTRAIN"
	CodeGrantToolNotFound      = "GRANT_TOOL_NOT_FOUND"
	CodePolicyToolNotFound     = "POLICY_TOOL_NOT_FOUND"
	CodeInvalidEffect          = "INVALID_EFFECT"
	CodeInvalidFieldPath       = "INVALID_FIELD_PATH"
)

// Solution-level issue codes.
const (
	CodeNoActorTypes              = "NO_ACTOR_TYPES"
	CodeNoAdminRoles              = "NO_ADMIN_ROLES"
	CodeDefaultActorUnknown       = "DEFAULT_ACTOR_UNKNOWN"
	CodeAdminRoleUndeclared       = "ADMIN_ROLE_UNDECLARED"
	CodeUnknownSkill              = "UNKNOWN_SKILL"
	CodeGrantUnknownSkill         = "GRANT_UNKNOWN_SKILL"
	CodeGrantNoIssuer             = "GRANT_NO_ISSUER"
	CodeHandoffUnknownSkill       = "HANDOFF_UNKNOWN_SKILL"
	CodeHandoffCircular           = "HANDOFF_CIRCULAR"
	CodeContractSkillMissing      = "CONTRACT_SKILL_MISSING"
	CodeContractNoPath            = "CONTRACT_NO_PATH"
	CodeContractGrantMissing      = "CONTRACT_GRANT_NOT_PASSED"
	CodeRoutingTargetMissing      = "ROUTING_TARGET_MISSING"
	CodeChannelNotRouted          = "CHANNEL_NOT_ROUTED"
	CodeMechanismNotDeclared      = "MECHANISM_NOT_DECLARED"
	CodeOrphanSkill               = "ORPHAN_SKILL"
	CodeConnectorNotFound         = "CONNECTOR_NOT_FOUND"
	CodeConnectorSourceMissing    = "CONNECTOR_SOURCE_MISSING"
	CodeDependencyManifestMissing = "DEPENDENCY_MANIFEST_MISSING"
	CodeDependencyUndeclared      = "DEPENDENCY_UNDECLARED"
	CodeDeprecatedConnectorPath   = "DEPRECATED_CONNECTOR_PATH"
	CodeConnectorPathMismatch     = "CONNECTOR_PATH_MISMATCH"
	CodeUITransportInvalid        = "UI_TRANSPORT_INVALID"
	CodeUIToolMissing             = "UI_TOOL_MISSING"
	CodeUIResponseShape           = "UI_RESPONSE_SHAPE"
	CodeUIAssetsMissing           = "UI_ASSETS_MISSING"
)

func errorIssue(code, path, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

func warningIssue(code, path, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (i Issue) withSuggestion(s string) Issue {
	i.Suggestion = s
	return i
}

// Partition splits issues by severity, preserving order.
func Partition(issues []Issue) (errs, warnings []Issue) {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}
	return errs, warnings
}
