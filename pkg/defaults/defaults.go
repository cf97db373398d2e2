// Package defaults fills missing top-level structure into raw skill and
// solution documents before validation, so the pipeline never sees an absent
// section where an empty one is meant. Filling is a deep merge that only adds:
// existing values are never overwritten, which makes both functions
// idempotent: applying them to an already-complete document is a no-op.
package defaults

import "github.com/google/uuid"

// EnsureSkillDefaults returns the document with every required top-level key
// present. A fresh id is generated only when the document has none. The input
// map is mutated and returned for convenience.
func EnsureSkillDefaults(doc map[string]any) map[string]any {
	if doc == nil {
		doc = make(map[string]any)
	}

	setDefault(doc, "id", func() any { return uuid.NewString() })
	setDefault(doc, "name", func() any { return "" })
	setDefault(doc, "phase", func() any { return "draft" })
	setDefault(doc, "problem", func() any { return map[string]any{"statement": "", "goals": []any{}} })
	setDefault(doc, "scenarios", func() any { return []any{} })
	setDefault(doc, "role", func() any { return map[string]any{"name": "", "persona": ""} })
	setDefault(doc, "tools", func() any { return []any{} })
	setDefault(doc, "response_filters", func() any { return []any{} })

	intents := ensureMap(doc, "intents")
	setDefault(intents, "supported", func() any { return []any{} })
	setDefault(intents, "thresholds", func() any {
		return map[string]any{"confident": 0.8, "clarify": 0.5}
	})
	setDefault(intents, "out_of_domain", func() any {
		return map[string]any{"action": "decline", "message": ""}
	})

	policy := ensureMap(doc, "policy")
	setDefault(policy, "workflows", func() any { return []any{} })
	setDefault(policy, "approvals", func() any { return []any{} })
	guardrails := ensureMap(policy, "guardrails")
	setDefault(guardrails, "never", func() any { return []any{} })
	setDefault(guardrails, "always", func() any { return []any{} })

	engine := ensureMap(doc, "engine")
	setDefault(engine, "temperature", func() any { return 0.2 })
	setDefault(engine, "max_iterations", func() any { return 8.0 })
	setDefault(engine, "autonomy", func() any { return "supervised" })
	setDefault(engine, "on_max_iterations", func() any { return "ask_user" })
	setDefault(engine, "critic_strictness", func() any { return "normal" })
	setDefault(engine, "on_workflow_deviation", func() any { return "warn" })

	accessPolicy := ensureMap(doc, "access_policy")
	setDefault(accessPolicy, "rules", func() any { return []any{} })

	return doc
}

// EnsureSolutionDefaults returns the solution document with every required
// top-level key present.
func EnsureSolutionDefaults(doc map[string]any) map[string]any {
	if doc == nil {
		doc = make(map[string]any)
	}

	setDefault(doc, "id", func() any { return uuid.NewString() })
	setDefault(doc, "name", func() any { return "" })
	setDefault(doc, "skills", func() any { return []any{} })
	setDefault(doc, "grants", func() any { return []any{} })
	setDefault(doc, "handoffs", func() any { return []any{} })
	setDefault(doc, "routing", func() any { return map[string]any{} })
	setDefault(doc, "platform_connectors", func() any { return []any{} })
	setDefault(doc, "security_contracts", func() any { return []any{} })

	identity := ensureMap(doc, "identity")
	setDefault(identity, "actor_types", func() any { return []any{} })
	setDefault(identity, "admin_roles", func() any { return []any{} })

	return doc
}

// setDefault assigns make() only when the key is absent or nil. Values are
// built lazily so id generation does not run when an id already exists.
func setDefault(obj map[string]any, key string, make func() any) {
	if v, present := obj[key]; !present || v == nil {
		obj[key] = make()
	}
}

// ensureMap returns the object at key, creating it when absent. A present
// non-object value is left alone (the schema stage reports it) and an empty
// detached map is returned so callers can proceed.
func ensureMap(obj map[string]any, key string) map[string]any {
	v, present := obj[key]
	if !present || v == nil {
		m := make(map[string]any)
		obj[key] = m
		return m
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return make(map[string]any)
}
