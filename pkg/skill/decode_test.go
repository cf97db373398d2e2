package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSystemTool(t *testing.T) {
	system := []string{"sys.emitUserMessage", "ui.listPlugins", "cp.admin_api", "SYS.sendEmail", "Ui.getPlugin"}
	for _, ref := range system {
		assert.True(t, IsSystemTool(ref), ref)
	}

	plain := []string{"lookup_order", "system_check", "update.customer", "", "sys", "uikit_render"}
	for _, ref := range plain {
		assert.False(t, IsSystemTool(ref), ref)
	}
}

func TestDecodeFullDocument(t *testing.T) {
	doc := map[string]any{
		"id":    "order-support",
		"name":  "Order Support",
		"phase": "tools",
		"problem": map[string]any{
			"statement": "Customers cannot check order status on their own.",
			"goals":     []any{"self-serve status"},
		},
		"tools": []any{
			map[string]any{
				"id":          "t1",
				"name":        "lookup_order",
				"description": "Look up an order",
				"output":      map[string]any{"type": "object", "description": "Order record"},
				"mock":        map[string]any{"mode": "static", "status": "passed"},
				"security":    map[string]any{"classification": "pii_read", "risk_level": "low"},
			},
		},
		"engine": map[string]any{
			"temperature":    0.2,
			"max_iterations": 8,
			"autonomy":       "supervised",
		},
	}

	s, err := Decode(doc)
	require.NoError(t, err)

	assert.Equal(t, "order-support", s.ID)
	assert.Equal(t, PhaseTools, s.Phase)
	require.NotNil(t, s.Problem)
	assert.Equal(t, []string{"self-serve status"}, s.Problem.Goals)

	require.Len(t, s.Tools, 1)
	tool := s.Tools[0]
	assert.Equal(t, "lookup_order", tool.Name)
	require.NotNil(t, tool.Output)
	assert.Equal(t, TypeObject, tool.Output.Type)
	require.NotNil(t, tool.Mock)
	assert.Equal(t, MockPassed, tool.Mock.Status)
	require.NotNil(t, tool.Security)
	assert.Equal(t, ClassPIIRead, tool.Security.Classification)

	require.NotNil(t, s.Engine)
	assert.Equal(t, 8, s.Engine.MaxIterations)
	assert.Equal(t, Autonomy("supervised"), s.Engine.Autonomy)
}

func TestDecodeTolerantOfWrongTypes(t *testing.T) {
	doc := map[string]any{
		"id":    "s1",
		"name":  42,
		"tools": "not an array",
	}

	s, err := Decode(doc)
	// The mismatches are reported but the partial decode is usable.
	assert.Error(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "s1", s.ID)
	assert.Empty(t, s.Tools)
}

func TestDecodeNilDocument(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	s, err := Decode(map[string]any{
		"id":         "s1",
		"name":       "Skill",
		"deprecated": map[string]any{"old": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Skill", s.Name)
}
