// Package solution defines the multi-skill composition document: shared
// identity, grants flowing between skills, handoffs, channel routing and the
// security contracts the composition must honour.
package solution

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// Solution is a composition of skills with shared wiring.
type Solution struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Identity           *Identity          `json:"identity,omitempty"`
	Skills             []SkillRef         `json:"skills,omitempty"`
	Grants             []Grant            `json:"grants,omitempty"`
	Handoffs           []Handoff          `json:"handoffs,omitempty"`
	Routing            map[string]string  `json:"routing,omitempty"`
	PlatformConnectors []string           `json:"platform_connectors,omitempty"`
	SecurityContracts  []SecurityContract `json:"security_contracts,omitempty"`
}

// Identity is the shared identity model of the solution.
type Identity struct {
	ActorTypes       []string `json:"actor_types,omitempty"`
	DefaultActorType string   `json:"default_actor_type,omitempty"`
	AdminRoles       []string `json:"admin_roles,omitempty"`
}

// SkillRole is the part a skill plays in the composition.
type SkillRole string

// Skill roles.
const (
	RoleGateway      SkillRole = "gateway"
	RoleWorker       SkillRole = "worker"
	RoleOrchestrator SkillRole = "orchestrator"
	RoleApproval     SkillRole = "approval"
)

// SkillRoleValues returns all valid skill roles.
func SkillRoleValues() []string { return []string{"gateway", "worker", "orchestrator", "approval"} }

// Valid reports whether r is a known skill role.
func (r SkillRole) Valid() bool {
	for _, v := range SkillRoleValues() {
		if v == string(r) {
			return true
		}
	}
	return false
}

// SkillRef names a member skill and its place in the composition.
type SkillRef struct {
	ID            string    `json:"id"`
	Role          SkillRole `json:"role,omitempty"`
	EntryChannels []string  `json:"entry_channels,omitempty"`
	Connectors    []string  `json:"connectors,omitempty"`
}

// Grant is a verified claim flowing from issuing skills to consuming skills.
type Grant struct {
	Key         string   `json:"key"`
	IssuedBy    []string `json:"issued_by,omitempty"`
	ConsumedBy  []string `json:"consumed_by,omitempty"`
	SourceTool  string   `json:"source_tool,omitempty"`
	SourceField string   `json:"source_field,omitempty"`
	TTL         string   `json:"ttl,omitempty"`
}

// Handoff transfers an in-progress interaction between skills, carrying a
// subset of grants.
type Handoff struct {
	ID            string   `json:"id"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	GrantsPassed  []string `json:"grants_passed,omitempty"`
	GrantsDropped []string `json:"grants_dropped,omitempty"`
	Mechanism     string   `json:"mechanism,omitempty"`
}

// SecurityContract requires that a consumer only reaches a provider's tools
// with the listed grants in hand.
type SecurityContract struct {
	Consumer       string            `json:"consumer"`
	Provider       string            `json:"provider"`
	RequiresGrants []string          `json:"requires_grants,omitempty"`
	RequiredValues map[string]string `json:"required_values,omitempty"`
	ForTools       []string          `json:"for_tools,omitempty"`
}

// Connector declares how an external tool server is launched.
type Connector struct {
	ID        string   `json:"id"`
	Transport string   `json:"transport,omitempty"`
	Command   string   `json:"command,omitempty"`
	Args      []string `json:"args,omitempty"`
	UICapable bool     `json:"ui_capable,omitempty"`
}

// SourceFile is one file of a connector's source tree.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Context supplies the full cross-skill material needed by the extended
// connector-binding checks. All fields are optional; checks that lack their
// inputs are skipped.
type Context struct {
	Skills     map[string]*skill.Skill `json:"skills,omitempty"`
	Connectors []Connector             `json:"connectors,omitempty"`
	MCPStore   map[string][]SourceFile `json:"mcp_store,omitempty"`
}

// Decode converts a raw JSON document into a typed Solution. As with
// skill.Decode, type mismatches leave fields at their zero values and the
// partially decoded document is always returned.
func Decode(doc map[string]any) (*Solution, error) {
	if doc == nil {
		return nil, errors.New("document must be a non-nil object")
	}

	var s Solution
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &s,
		TagName: "json",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build solution decoder")
	}

	decodeErr := decoder.Decode(doc)
	return &s, decodeErr
}
