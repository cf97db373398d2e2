package defaults

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSkillDefaultsFillsEmptyDocument(t *testing.T) {
	doc := EnsureSkillDefaults(map[string]any{})

	assert.NotEmpty(t, doc["id"])
	assert.Equal(t, "draft", doc["phase"])
	assert.Equal(t, []any{}, doc["tools"])
	assert.Equal(t, []any{}, doc["scenarios"])

	intents, ok := doc["intents"].(map[string]any)
	require.True(t, ok)
	thresholds, ok := intents["thresholds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.8, thresholds["confident"])
	assert.Equal(t, 0.5, thresholds["clarify"])

	engine, ok := doc["engine"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.2, engine["temperature"])
	assert.Equal(t, "supervised", engine["autonomy"])

	policy, ok := doc["policy"].(map[string]any)
	require.True(t, ok)
	guardrails, ok := policy["guardrails"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, guardrails["never"])
}

func TestEnsureSkillDefaultsNilDocument(t *testing.T) {
	doc := EnsureSkillDefaults(nil)
	require.NotNil(t, doc)
	assert.NotEmpty(t, doc["id"])
}

func TestEnsureSkillDefaultsPreservesExistingValues(t *testing.T) {
	doc := map[string]any{
		"id":    "order-support",
		"name":  "Order Support",
		"phase": "review",
		"tools": []any{map[string]any{"id": "t1"}},
		"engine": map[string]any{
			"temperature": 0.7,
		},
	}

	EnsureSkillDefaults(doc)

	assert.Equal(t, "order-support", doc["id"])
	assert.Equal(t, "review", doc["phase"])
	assert.Len(t, doc["tools"], 1)

	engine := doc["engine"].(map[string]any)
	// Existing values survive; missing siblings are filled.
	assert.Equal(t, 0.7, engine["temperature"])
	assert.Equal(t, "ask_user", engine["on_max_iterations"])
}

func TestEnsureSkillDefaultsIsIdempotent(t *testing.T) {
	doc := EnsureSkillDefaults(map[string]any{})
	id := doc["id"]

	EnsureSkillDefaults(doc)
	assert.Equal(t, id, doc["id"])
}

func TestEnsureSolutionDefaults(t *testing.T) {
	doc := EnsureSolutionDefaults(map[string]any{"name": "Support Suite"})

	assert.NotEmpty(t, doc["id"])
	assert.Equal(t, "Support Suite", doc["name"])
	assert.Equal(t, []any{}, doc["skills"])
	assert.Equal(t, []any{}, doc["grants"])
	assert.Equal(t, map[string]any{}, doc["routing"])

	identity, ok := doc["identity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, identity["actor_types"])
}

func TestEnsureSolutionDefaultsKeepsExistingID(t *testing.T) {
	doc := EnsureSolutionDefaults(map[string]any{"id": "suite-1"})
	assert.Equal(t, "suite-1", doc["id"])
}
