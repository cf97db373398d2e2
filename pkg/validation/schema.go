package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// ValidateSchema runs type, shape and enum checks over every section of a raw
// skill document. It operates on the undecoded map form so that wrong-typed
// fields surface as issues instead of decode failures. Sections are checked
// independently; a missing section never blocks checks on the ones present.
func ValidateSchema(doc map[string]any) []Issue {
	c := &schemaChecker{}
	c.checkIdentityFields(doc)
	c.checkProblem(doc)
	c.checkScenarios(doc)
	c.checkRole(doc)
	c.checkIntents(doc)
	c.checkTools(doc)
	c.checkPolicy(doc)
	c.checkEngine(doc)
	c.checkIdentity(doc)
	c.checkGrantMappings(doc)
	c.checkAccessPolicy(doc)
	c.checkResponseFilters(doc)
	c.checkTriggers(doc)
	return c.issues
}

var (
	idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

	// ISO-8601 duration shape for schedule triggers: P(nD)?(T(nH)?(nM)?(nS)?)?
	schedulePattern = regexp.MustCompile(`^P(\d+D)?(T(\d+H)?(\d+M)?(\d+S)?)?$`)
)

type schemaChecker struct {
	issues []Issue
}

func (c *schemaChecker) add(issue Issue) {
	c.issues = append(c.issues, issue)
}

// requireString reports MISSING_FIELD for an absent or empty value and
// INVALID_TYPE for a non-string one. It returns the value when well-formed.
func (c *schemaChecker) requireString(obj map[string]any, key, path string) (string, bool) {
	raw, present := obj[key]
	if !present || raw == nil {
		c.add(errorIssue(CodeMissingField, path, "required field %q is missing", key))
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		c.add(errorIssue(CodeInvalidType, path, "field %q must be a string, got %s", key, typeName(raw)))
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		c.add(errorIssue(CodeMissingField, path, "required field %q is empty", key))
		return "", false
	}
	return s, true
}

// optionalString reports INVALID_TYPE when a present value is not a string.
func (c *schemaChecker) optionalString(obj map[string]any, key, path string) (string, bool) {
	raw, present := obj[key]
	if !present || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		c.add(errorIssue(CodeInvalidType, path, "field %q must be a string, got %s", key, typeName(raw)))
		return "", false
	}
	return s, true
}

func (c *schemaChecker) optionalNumber(obj map[string]any, key, path string) (float64, bool) {
	raw, present := obj[key]
	if !present || raw == nil {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		c.add(errorIssue(CodeInvalidType, path, "field %q must be a number, got %s", key, typeName(raw)))
		return 0, false
	}
}

func (c *schemaChecker) optionalMap(obj map[string]any, key, path string) (map[string]any, bool) {
	raw, present := obj[key]
	if !present || raw == nil {
		return nil, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		c.add(errorIssue(CodeInvalidType, path, "field %q must be an object, got %s", key, typeName(raw)))
		return nil, false
	}
	return m, true
}

func (c *schemaChecker) optionalSlice(obj map[string]any, key, path string) ([]any, bool) {
	raw, present := obj[key]
	if !present || raw == nil {
		return nil, false
	}
	s, ok := raw.([]any)
	if !ok {
		c.add(errorIssue(CodeInvalidType, path, "field %q must be an array, got %s", key, typeName(raw)))
		return nil, false
	}
	return s, true
}

// optionalStringSlice checks that every element of an array field is a string.
func (c *schemaChecker) optionalStringSlice(obj map[string]any, key, path string) {
	items, ok := c.optionalSlice(obj, key, path)
	if !ok {
		return
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			c.add(errorIssue(CodeInvalidType, fmt.Sprintf("%s.%s[%d]", path, key, i), "entries of %q must be strings, got %s", key, typeName(item)))
		}
	}
}

// eachObject iterates an array field, reporting INVALID_TYPE for non-object
// elements and invoking fn with the element path for the rest.
func (c *schemaChecker) eachObject(obj map[string]any, key, path string, fn func(item map[string]any, itemPath string)) {
	items, ok := c.optionalSlice(obj, key, path)
	if !ok {
		return
	}
	for i, raw := range items {
		itemPath := fmt.Sprintf("%s[%d]", key, i)
		if path != "" {
			itemPath = fmt.Sprintf("%s.%s[%d]", path, key, i)
		}
		item, ok := raw.(map[string]any)
		if !ok {
			c.add(errorIssue(CodeInvalidType, itemPath, "entries of %q must be objects, got %s", key, typeName(raw)))
			continue
		}
		fn(item, itemPath)
	}
}

func (c *schemaChecker) checkEnum(value, path, field string, allowed []string) {
	for _, v := range allowed {
		if v == value {
			return
		}
	}
	c.add(errorIssue(CodeInvalidEnum, path, "invalid %s %q, allowed values: %s", field, value, strings.Join(allowed, ", ")))
}

func (c *schemaChecker) checkIdentityFields(doc map[string]any) {
	if id, ok := c.requireString(doc, "id", "id"); ok && !idPattern.MatchString(id) {
		c.add(errorIssue(CodeInvalidID, "id", "id %q must start with a letter or digit and contain only letters, digits, '_', '.' or '-'", id))
	}
	c.requireString(doc, "name", "name")
	if phase, ok := c.optionalString(doc, "phase", "phase"); ok {
		c.checkEnum(phase, "phase", "phase", skill.PhaseValues())
	}
}

func (c *schemaChecker) checkProblem(doc map[string]any) {
	problem, ok := c.optionalMap(doc, "problem", "problem")
	if !ok {
		return
	}
	c.optionalString(problem, "statement", "problem.statement")
	c.optionalString(problem, "context", "problem.context")
	c.optionalStringSlice(problem, "goals", "problem")
}

func (c *schemaChecker) checkScenarios(doc map[string]any) {
	c.eachObject(doc, "scenarios", "", func(item map[string]any, path string) {
		c.requireString(item, "id", path+".id")
		c.requireString(item, "title", path+".title")
		c.optionalStringSlice(item, "steps", path)
	})
}

func (c *schemaChecker) checkRole(doc map[string]any) {
	role, ok := c.optionalMap(doc, "role", "role")
	if !ok {
		return
	}
	c.optionalString(role, "name", "role.name")
	c.optionalString(role, "persona", "role.persona")
	if tone, ok := c.optionalString(role, "tone", "role.tone"); ok {
		c.checkEnum(tone, "role.tone", "tone", skill.ToneValues())
	}
	if verbosity, ok := c.optionalString(role, "verbosity", "role.verbosity"); ok {
		c.checkEnum(verbosity, "role.verbosity", "verbosity", skill.VerbosityValues())
	}
}

func (c *schemaChecker) checkIntents(doc map[string]any) {
	intents, ok := c.optionalMap(doc, "intents", "intents")
	if !ok {
		return
	}

	c.eachObject(intents, "supported", "intents", func(item map[string]any, path string) {
		c.requireString(item, "id", path+".id")
		if _, ok := c.optionalString(item, "description", path+".description"); !ok {
			if _, present := item["description"]; !present {
				c.add(warningIssue(CodeMissingRecommended, path+".description", "intent has no description").
					withSuggestion("describe the intent so classification examples stay on topic"))
			}
		}
		c.optionalStringSlice(item, "examples", path)
		c.optionalString(item, "maps_to_workflow", path+".maps_to_workflow")
		c.optionalStringSlice(item, "entities", path)
	})

	if thresholds, ok := c.optionalMap(intents, "thresholds", "intents.thresholds"); ok {
		if v, ok := c.optionalNumber(thresholds, "confident", "intents.thresholds.confident"); ok && (v < 0 || v > 1) {
			c.add(errorIssue(CodeInvalidType, "intents.thresholds.confident", "confidence threshold must be between 0 and 1, got %v", v))
		}
		if v, ok := c.optionalNumber(thresholds, "clarify", "intents.thresholds.clarify"); ok && (v < 0 || v > 1) {
			c.add(errorIssue(CodeInvalidType, "intents.thresholds.clarify", "confidence threshold must be between 0 and 1, got %v", v))
		}
	}

	if outOfDomain, ok := c.optionalMap(intents, "out_of_domain", "intents.out_of_domain"); ok {
		c.optionalString(outOfDomain, "action", "intents.out_of_domain.action")
		c.optionalString(outOfDomain, "message", "intents.out_of_domain.message")
	}
}

func (c *schemaChecker) checkTools(doc map[string]any) {
	c.eachObject(doc, "tools", "", func(item map[string]any, path string) {
		c.requireString(item, "id", path+".id")
		c.requireString(item, "name", path+".name")

		if _, present := item["description"]; !present {
			c.add(warningIssue(CodeMissingRecommended, path+".description", "tool has no description").
				withSuggestion("describe what the tool does so the model knows when to call it"))
		} else {
			c.optionalString(item, "description", path+".description")
		}

		c.eachObject(item, "inputs", path, func(input map[string]any, inputPath string) {
			c.requireString(input, "name", inputPath+".name")
			if t, ok := c.optionalString(input, "type", inputPath+".type"); ok {
				c.checkEnum(t, inputPath+".type", "data type", skill.DataTypeValues())
			}
			c.optionalString(input, "description", inputPath+".description")
		})

		if output, ok := c.optionalMap(item, "output", path+".output"); ok {
			if t, ok := c.optionalString(output, "type", path+".output.type"); ok {
				c.checkEnum(t, path+".output.type", "data type", skill.DataTypeValues())
			}
			if _, present := output["description"]; !present {
				c.add(warningIssue(CodeMissingRecommended, path+".output.description", "tool output has no description").
					withSuggestion("describe the output shape so downstream steps can consume it"))
			} else {
				c.optionalString(output, "description", path+".output.description")
			}
		}

		if source, ok := c.optionalMap(item, "source", path+".source"); ok {
			c.optionalString(source, "type", path+".source.type")
			c.optionalString(source, "connection_id", path+".source.connection_id")
		}

		if policy, ok := c.optionalMap(item, "policy", path+".policy"); ok {
			if allowed, ok := c.optionalString(policy, "allowed", path+".policy.allowed"); ok {
				c.checkEnum(allowed, path+".policy.allowed", "tool policy", skill.ToolAllowedValues())
			}
		}

		if mock, ok := c.optionalMap(item, "mock", path+".mock"); ok {
			if mode, ok := c.optionalString(mock, "mode", path+".mock.mode"); ok {
				c.checkEnum(mode, path+".mock.mode", "mock mode", skill.MockModeValues())
			}
			if status, ok := c.optionalString(mock, "status", path+".mock.status"); ok {
				c.checkEnum(status, path+".mock.status", "mock status", skill.MockStatusValues())
			}
		}

		// Classification and risk level enums belong to the security stage,
		// which owns INVALID_CLASSIFICATION and INVALID_RISK_LEVEL. Only the
		// shape is checked here.
		if security, ok := c.optionalMap(item, "security", path+".security"); ok {
			c.optionalString(security, "classification", path+".security.classification")
			c.optionalString(security, "risk_level", path+".security.risk_level")
		}

		c.optionalString(item, "data_owner_field", path+".data_owner_field")
	})
}

func (c *schemaChecker) checkPolicy(doc map[string]any) {
	policy, ok := c.optionalMap(doc, "policy", "policy")
	if !ok {
		return
	}

	if guardrails, ok := c.optionalMap(policy, "guardrails", "policy.guardrails"); ok {
		c.optionalStringSlice(guardrails, "never", "policy.guardrails")
		c.optionalStringSlice(guardrails, "always", "policy.guardrails")
	}

	c.eachObject(policy, "workflows", "policy", func(item map[string]any, path string) {
		c.requireString(item, "id", path+".id")
		c.optionalString(item, "trigger", path+".trigger")
		c.optionalStringSlice(item, "steps", path)
	})

	c.eachObject(policy, "approvals", "policy", func(item map[string]any, path string) {
		c.requireString(item, "tool_id", path+".tool_id")
		c.optionalString(item, "condition", path+".condition")
		c.optionalString(item, "approver", path+".approver")
	})
}

func (c *schemaChecker) checkEngine(doc map[string]any) {
	engine, ok := c.optionalMap(doc, "engine", "engine")
	if !ok {
		return
	}

	c.optionalString(engine, "model", "engine.model")
	if v, ok := c.optionalNumber(engine, "temperature", "engine.temperature"); ok && (v < 0 || v > 2) {
		c.add(errorIssue(CodeInvalidType, "engine.temperature", "temperature must be between 0 and 2, got %v", v))
	}
	if v, ok := c.optionalNumber(engine, "max_iterations", "engine.max_iterations"); ok && v < 1 {
		c.add(errorIssue(CodeInvalidType, "engine.max_iterations", "max_iterations must be at least 1, got %v", v))
	}
	if v, ok := c.optionalString(engine, "autonomy", "engine.autonomy"); ok {
		c.checkEnum(v, "engine.autonomy", "autonomy level", skill.AutonomyValues())
	}
	if v, ok := c.optionalString(engine, "on_max_iterations", "engine.on_max_iterations"); ok {
		c.checkEnum(v, "engine.on_max_iterations", "on-max-iterations action", skill.OnMaxIterationsValues())
	}
	if v, ok := c.optionalString(engine, "critic_strictness", "engine.critic_strictness"); ok {
		c.checkEnum(v, "engine.critic_strictness", "critic strictness", skill.CriticStrictnessValues())
	}
	if v, ok := c.optionalString(engine, "on_workflow_deviation", "engine.on_workflow_deviation"); ok {
		c.checkEnum(v, "engine.on_workflow_deviation", "workflow deviation action", skill.WorkflowDeviationValues())
	}
	if recovery, ok := c.optionalMap(engine, "internal_error_recovery", "engine.internal_error_recovery"); ok {
		if v, ok := c.optionalNumber(recovery, "max_retries", "engine.internal_error_recovery.max_retries"); ok && v < 0 {
			c.add(errorIssue(CodeInvalidType, "engine.internal_error_recovery.max_retries", "max_retries must not be negative, got %v", v))
		}
		c.optionalString(recovery, "fallback_message", "engine.internal_error_recovery.fallback_message")
	}
}

func (c *schemaChecker) checkIdentity(doc map[string]any) {
	identity, ok := c.optionalMap(doc, "identity", "identity")
	if !ok {
		return
	}
	c.optionalString(identity, "display_name", "identity.display_name")
	if email, ok := c.optionalString(identity, "from_email", "identity.from_email"); ok {
		if !strings.Contains(email, "@") {
			c.add(errorIssue(CodeInvalidType, "identity.from_email", "from_email %q is not an email address", email))
		}
	}
}

func (c *schemaChecker) checkGrantMappings(doc map[string]any) {
	c.eachObject(doc, "grant_mappings", "", func(item map[string]any, path string) {
		c.requireString(item, "grant", path+".grant")
		c.requireString(item, "tool", path+".tool")
		c.optionalString(item, "field", path+".field")
	})
}

func (c *schemaChecker) checkAccessPolicy(doc map[string]any) {
	accessPolicy, ok := c.optionalMap(doc, "access_policy", "access_policy")
	if !ok {
		return
	}
	// Rule effects belong to the security stage (INVALID_EFFECT); only shape
	// is checked here.
	c.eachObject(accessPolicy, "rules", "access_policy", func(item map[string]any, path string) {
		if _, present := item["tools"]; !present {
			c.add(errorIssue(CodeMissingField, path+".tools", "required field %q is missing", "tools"))
		} else {
			c.optionalStringSlice(item, "tools", path)
		}
		c.optionalString(item, "effect", path+".effect")
		c.optionalString(item, "constraint", path+".constraint")
		c.optionalString(item, "field", path+".field")
	})
}

func (c *schemaChecker) checkResponseFilters(doc map[string]any) {
	c.eachObject(doc, "response_filters", "", func(item map[string]any, path string) {
		c.optionalString(item, "tool", path+".tool")
		c.optionalStringSlice(item, "strip_fields", path)
		c.optionalStringSlice(item, "mask_fields", path)
	})
}

func (c *schemaChecker) checkTriggers(doc map[string]any) {
	c.eachObject(doc, "triggers", "", func(item map[string]any, path string) {
		triggerType, ok := c.requireString(item, "type", path+".type")
		if !ok {
			return
		}
		c.checkEnum(triggerType, path+".type", "trigger type", skill.TriggerTypeValues())

		switch skill.TriggerType(triggerType) {
		case skill.TriggerSchedule:
			schedule, ok := c.optionalString(item, "schedule", path+".schedule")
			if !ok {
				c.add(errorIssue(CodeInvalidTriggerSchedule, path+".schedule", "schedule triggers require a schedule"))
				return
			}
			if !schedulePattern.MatchString(schedule) || schedule == "P" {
				c.add(errorIssue(CodeInvalidTriggerSchedule, path+".schedule", "schedule %q is not an ISO-8601 duration (e.g. P1D, PT6H, PT30M)", schedule))
			}
		case skill.TriggerEvent:
			if event, ok := c.optionalString(item, "event", path+".event"); !ok || strings.TrimSpace(event) == "" {
				c.add(errorIssue(CodeInvalidTriggerEvent, path+".event", "event triggers require a non-empty event name"))
			}
			if raw, present := item["filter"]; present && raw != nil {
				if _, ok := raw.(map[string]any); !ok {
					c.add(errorIssue(CodeInvalidTriggerEvent, path+".filter", "event filter must be an object, got %s", typeName(raw)))
				}
			}
		}
	})
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
