package validation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/skillsmith/skillsmith/pkg/solution"
)

// internalMechanism is the built-in handoff transport that never needs a
// platform connector declaration.
const internalMechanism = "internal-message"

// SolutionReport is the outcome of validating a composition of skills.
type SolutionReport struct {
	Valid    bool            `json:"valid"`
	Errors   []Issue         `json:"errors"`
	Warnings []Issue         `json:"warnings"`
	Summary  SolutionSummary `json:"summary"`
}

// SolutionSummary carries headline counts for UI display.
type SolutionSummary struct {
	Skills    int      `json:"skills"`
	Grants    int      `json:"grants"`
	Handoffs  int      `json:"handoffs"`
	Contracts int      `json:"contracts"`
	Orphans   []string `json:"orphans"`
}

// ValidateSolution checks the cross-skill wiring of a solution document:
// identity, grant economy, handoff reachability, routing, platform connector
// declarations, orphan skills and handoff cycles. When ctx supplies full
// skill bodies and connector material, the extended connector-binding checks
// run as well. Every check appends and keeps going.
func ValidateSolution(doc map[string]any, ctx *solution.Context) (*SolutionReport, error) {
	if doc == nil {
		return nil, errors.New("document must be a non-nil object")
	}

	sol, _ := solution.Decode(doc)

	v := &solutionChecker{solution: sol, skillIDs: make(map[string]bool)}
	for _, ref := range sol.Skills {
		if ref.ID != "" {
			v.skillIDs[ref.ID] = true
		}
	}

	v.checkIdentity()
	v.checkGrants()
	v.checkHandoffs()
	v.checkContracts()
	v.checkRouting()
	v.checkMechanisms()
	orphans := v.checkOrphans()
	v.checkHandoffCycles()

	if ctx != nil {
		v.issues = append(v.issues, validateConnectorBindings(ctx)...)
	}

	errs, warnings := Partition(v.issues)
	return &SolutionReport{
		Valid:    len(errs) == 0,
		Errors:   emptyIfNil(errs),
		Warnings: emptyIfNil(warnings),
		Summary: SolutionSummary{
			Skills:    len(sol.Skills),
			Grants:    len(sol.Grants),
			Handoffs:  len(sol.Handoffs),
			Contracts: len(sol.SecurityContracts),
			Orphans:   orphans,
		},
	}, nil
}

type solutionChecker struct {
	solution *solution.Solution
	skillIDs map[string]bool
	issues   []Issue
}

func (v *solutionChecker) add(issue Issue) {
	v.issues = append(v.issues, issue)
}

func (v *solutionChecker) checkIdentity() {
	identity := v.solution.Identity
	if identity == nil || len(identity.ActorTypes) == 0 {
		v.add(warningIssue(CodeNoActorTypes, "identity.actor_types", "solution declares no actor types").
			withSuggestion("declare who interacts with the solution, e.g. customer, agent"))
		return
	}

	if len(identity.AdminRoles) == 0 {
		v.add(warningIssue(CodeNoAdminRoles, "identity.admin_roles", "solution declares actor types but no admin roles"))
	}

	if identity.DefaultActorType != "" && !containsString(identity.ActorTypes, identity.DefaultActorType) {
		v.add(errorIssue(CodeDefaultActorUnknown, "identity.default_actor_type",
			"default actor type %q is not a declared actor type", identity.DefaultActorType))
	}

	for i, role := range identity.AdminRoles {
		if !containsString(identity.ActorTypes, role) {
			v.add(warningIssue(CodeAdminRoleUndeclared, fmt.Sprintf("identity.admin_roles[%d]", i),
				"admin role %q is not a declared actor type", role))
		}
	}
}

func (v *solutionChecker) checkGrants() {
	for i, grant := range v.solution.Grants {
		path := fmt.Sprintf("grants[%d]", i)
		for _, issuer := range grant.IssuedBy {
			if !v.skillIDs[issuer] {
				v.add(errorIssue(CodeGrantUnknownSkill, path+".issued_by",
					"grant %q is issued by unknown skill %q", grant.Key, issuer))
			}
		}
		for _, consumer := range grant.ConsumedBy {
			if !v.skillIDs[consumer] {
				v.add(errorIssue(CodeGrantUnknownSkill, path+".consumed_by",
					"grant %q is consumed by unknown skill %q", grant.Key, consumer))
			}
		}
		if len(grant.ConsumedBy) > 0 && len(grant.IssuedBy) == 0 {
			v.add(errorIssue(CodeGrantNoIssuer, path,
				"grant %q has consumers but no issuer", grant.Key).
				withSuggestion("add at least one issuing skill, or remove the grant"))
		}
	}
}

func (v *solutionChecker) checkHandoffs() {
	for i, handoff := range v.solution.Handoffs {
		path := fmt.Sprintf("handoffs[%d]", i)
		if handoff.From != "" && !v.skillIDs[handoff.From] {
			v.add(errorIssue(CodeHandoffUnknownSkill, path+".from",
				"handoff %q is from unknown skill %q", handoff.ID, handoff.From))
		}
		if handoff.To != "" && !v.skillIDs[handoff.To] {
			v.add(errorIssue(CodeHandoffUnknownSkill, path+".to",
				"handoff %q is to unknown skill %q", handoff.ID, handoff.To))
		}
	}
}

// checkContracts verifies each security contract along one handoff path. The
// path is found by breadth-first search (shortest by hop count, first found);
// every edge on that path must pass each required grant. A provider with no
// path to the consumer is a warning, not an error, because a contract may be
// enforced by means other than direct handoff.
func (v *solutionChecker) checkContracts() {
	for i, contract := range v.solution.SecurityContracts {
		path := fmt.Sprintf("security_contracts[%d]", i)

		missing := false
		if contract.Consumer == "" || !v.skillIDs[contract.Consumer] {
			v.add(errorIssue(CodeContractSkillMissing, path+".consumer",
				"security contract consumer %q is not a skill in the solution", contract.Consumer))
			missing = true
		}
		if contract.Provider == "" || !v.skillIDs[contract.Provider] {
			v.add(errorIssue(CodeContractSkillMissing, path+".provider",
				"security contract provider %q is not a skill in the solution", contract.Provider))
			missing = true
		}
		if missing {
			continue
		}

		hops := v.shortestHandoffPath(contract.Provider, contract.Consumer)
		if hops == nil {
			v.add(warningIssue(CodeContractNoPath, path,
				"no handoff path from provider %q to consumer %q; the contract cannot be verified structurally",
				contract.Provider, contract.Consumer))
			continue
		}

		for _, hop := range hops {
			for _, grant := range contract.RequiresGrants {
				if !containsString(hop.GrantsPassed, grant) {
					v.add(errorIssue(CodeContractGrantMissing, path,
						"handoff %q (%s -> %s) does not pass required grant %q",
						hop.ID, hop.From, hop.To, grant).
						withSuggestion("add the grant to grants_passed on every handoff along the path"))
				}
			}
		}
	}
}

// shortestHandoffPath returns the handoffs along the first shortest path from
// one skill to another, or nil when unreachable.
func (v *solutionChecker) shortestHandoffPath(from, to string) []solution.Handoff {
	if from == to {
		return []solution.Handoff{}
	}

	type hop struct {
		handoff solution.Handoff
		prev    string
	}
	visited := map[string]hop{from: {}}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, handoff := range v.solution.Handoffs {
			if handoff.From != current {
				continue
			}
			if _, seen := visited[handoff.To]; seen {
				continue
			}
			visited[handoff.To] = hop{handoff: handoff, prev: current}
			if handoff.To == to {
				var hops []solution.Handoff
				for node := to; node != from; {
					step := visited[node]
					hops = append([]solution.Handoff{step.handoff}, hops...)
					node = step.prev
				}
				return hops
			}
			queue = append(queue, handoff.To)
		}
	}
	return nil
}

func (v *solutionChecker) checkRouting() {
	for channel, target := range v.solution.Routing {
		if !v.skillIDs[target] {
			v.add(errorIssue(CodeRoutingTargetMissing, "routing."+channel,
				"routing for channel %q targets unknown skill %q", channel, target))
		}
	}

	for i, ref := range v.solution.Skills {
		for _, channel := range ref.EntryChannels {
			if _, routed := v.solution.Routing[channel]; !routed {
				v.add(warningIssue(CodeChannelNotRouted, fmt.Sprintf("skills[%d].entry_channels", i),
					"skill %q declares entry channel %q but routing has no entry for it", ref.ID, channel))
			}
		}
	}
}

func (v *solutionChecker) checkMechanisms() {
	declared := make(map[string]bool)
	for _, connector := range v.solution.PlatformConnectors {
		declared[connector] = true
	}
	for i, handoff := range v.solution.Handoffs {
		if handoff.Mechanism == "" || handoff.Mechanism == internalMechanism {
			continue
		}
		if !declared[handoff.Mechanism] {
			v.add(warningIssue(CodeMechanismNotDeclared, fmt.Sprintf("handoffs[%d].mechanism", i),
				"handoff %q uses mechanism %q which is not a declared platform connector", handoff.ID, handoff.Mechanism))
		}
	}
}

// checkOrphans warns about skills not reachable as a routing target or as
// either end of a handoff.
func (v *solutionChecker) checkOrphans() []string {
	reachable := make(map[string]bool)
	for _, target := range v.solution.Routing {
		reachable[target] = true
	}
	for _, handoff := range v.solution.Handoffs {
		reachable[handoff.From] = true
		reachable[handoff.To] = true
	}

	orphans := []string{}
	for i, ref := range v.solution.Skills {
		if ref.ID == "" || reachable[ref.ID] {
			continue
		}
		orphans = append(orphans, ref.ID)
		v.add(warningIssue(CodeOrphanSkill, fmt.Sprintf("skills[%d]", i),
			"skill %q is not reachable via routing or handoffs", ref.ID).
			withSuggestion("route a channel to it or add a handoff involving it"))
	}
	return orphans
}

func (v *solutionChecker) checkHandoffCycles() {
	edges := make(map[string][]string)
	for _, ref := range v.solution.Skills {
		if ref.ID != "" {
			edges[ref.ID] = nil
		}
	}
	for _, handoff := range v.solution.Handoffs {
		if handoff.From == "" || handoff.To == "" || handoff.From == handoff.To {
			continue
		}
		edges[handoff.From] = append(edges[handoff.From], handoff.To)
	}

	for _, cycle := range detectCycles(edges) {
		v.add(errorIssue(CodeHandoffCircular, "handoffs",
			"circular handoff path: %s", renderCycle(cycle)))
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
