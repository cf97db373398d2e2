package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillRoleValid(t *testing.T) {
	for _, role := range SkillRoleValues() {
		assert.True(t, SkillRole(role).Valid(), role)
	}
	for _, role := range []string{"", "admin", "Gateway"} {
		assert.False(t, SkillRole(role).Valid(), role)
	}
}

func TestDecodeFullDocument(t *testing.T) {
	doc := map[string]any{
		"id":   "support-suite",
		"name": "Support Suite",
		"identity": map[string]any{
			"actor_types":        []any{"customer", "agent"},
			"default_actor_type": "customer",
		},
		"skills": []any{
			map[string]any{"id": "front-desk", "role": "gateway", "entry_channels": []any{"web"}},
			map[string]any{"id": "billing", "role": "worker"},
		},
		"grants": []any{
			map[string]any{"key": "customer_verified", "issued_by": []any{"front-desk"}},
		},
		"handoffs": []any{
			map[string]any{"id": "h1", "from": "front-desk", "to": "billing", "grants_passed": []any{"customer_verified"}},
		},
		"routing": map[string]any{"web": "front-desk"},
		"security_contracts": []any{
			map[string]any{"consumer": "front-desk", "provider": "billing", "requires_grants": []any{"customer_verified"}},
		},
	}

	s, err := Decode(doc)
	require.NoError(t, err)

	assert.Equal(t, "support-suite", s.ID)
	require.NotNil(t, s.Identity)
	assert.Equal(t, "customer", s.Identity.DefaultActorType)

	require.Len(t, s.Skills, 2)
	assert.Equal(t, RoleGateway, s.Skills[0].Role)

	require.Len(t, s.Grants, 1)
	assert.Equal(t, []string{"front-desk"}, s.Grants[0].IssuedBy)

	require.Len(t, s.Handoffs, 1)
	assert.Equal(t, []string{"customer_verified"}, s.Handoffs[0].GrantsPassed)

	assert.Equal(t, "front-desk", s.Routing["web"])
	require.Len(t, s.SecurityContracts, 1)
	assert.Equal(t, "billing", s.SecurityContracts[0].Provider)
}

func TestDecodeTolerantOfWrongTypes(t *testing.T) {
	s, err := Decode(map[string]any{
		"id":     "s1",
		"skills": "not an array",
	})
	assert.Error(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "s1", s.ID)
	assert.Empty(t, s.Skills)
}

func TestDecodeNilDocument(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}
