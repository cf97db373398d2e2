package validation

import (
	"fmt"
	"strings"

	"github.com/skillsmith/skillsmith/pkg/skill"
)

// Unresolved collects dangling references by kind, deduplicated in insertion
// order. Unresolved tool or workflow references block export but never
// validity.
type Unresolved struct {
	Tools     []string `json:"tools"`
	Workflows []string `json:"workflows"`
	Intents   []string `json:"intents"`
}

func (u *Unresolved) addTool(ref string) {
	u.Tools = appendUnique(u.Tools, ref)
}

func (u *Unresolved) addWorkflow(ref string) {
	u.Workflows = appendUnique(u.Workflows, ref)
}

func (u *Unresolved) addIntent(ref string) {
	u.Intents = appendUnique(u.Intents, ref)
}

// Empty reports whether nothing is unresolved.
func (u *Unresolved) Empty() bool {
	return len(u.Tools) == 0 && len(u.Workflows) == 0 && len(u.Intents) == 0
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// Resolution is the side table produced by reference resolution. It replaces
// the in-place flag stamping of earlier iterations of this engine: downstream
// stages (completeness, export readiness) read resolution state from here and
// the input document is never mutated.
type Resolution struct {
	// WorkflowSteps maps workflow id to a per-step resolved flag.
	WorkflowSteps map[string][]bool
	// IntentWorkflows maps intent id to whether its maps_to_workflow resolved.
	// Intents with no maps_to_workflow are absent.
	IntentWorkflows map[string]bool
	// ApprovalTools maps approval rule index to whether its tool_id resolved.
	ApprovalTools map[int]bool
}

// IntentResolved reports whether the intent's workflow mapping resolved.
func (r *Resolution) IntentResolved(intentID string) bool {
	return r.IntentWorkflows[intentID]
}

// ResolveReferences checks every cross-reference within one skill: workflow
// steps against tools, meta tools, system tools and sub-workflows; intent
// workflow mappings; approval tool bindings. It also runs duplicate-ID scans,
// the intent connectivity heuristic and workflow cycle detection. Dangling
// references are warnings (export is the hard gate) and are additionally
// collected into unresolved; cycles and duplicates are errors.
func ResolveReferences(s *skill.Skill, unresolved *Unresolved) ([]Issue, *Resolution) {
	if unresolved == nil {
		unresolved = &Unresolved{}
	}

	r := &resolver{
		skill: s,
		resolution: &Resolution{
			WorkflowSteps:   make(map[string][]bool),
			IntentWorkflows: make(map[string]bool),
			ApprovalTools:   make(map[int]bool),
		},
		unresolved:  unresolved,
		toolRefs:    make(map[string]bool),
		workflowIDs: make(map[string]bool),
	}
	r.buildIndexes()
	r.checkDuplicates()
	r.resolveWorkflowSteps()
	r.resolveIntents()
	r.resolveApprovals()
	r.checkIntentConnectivity()
	r.checkWorkflowCycles()

	return r.issues, r.resolution
}

type resolver struct {
	skill      *skill.Skill
	issues     []Issue
	resolution *Resolution
	unresolved *Unresolved

	toolRefs    map[string]bool // lowercased tool and meta-tool ids and names
	workflowIDs map[string]bool
}

func (r *resolver) add(issue Issue) {
	r.issues = append(r.issues, issue)
}

func (r *resolver) buildIndexes() {
	for _, tool := range r.skill.Tools {
		if tool.ID != "" {
			r.toolRefs[strings.ToLower(tool.ID)] = true
		}
		if tool.Name != "" {
			r.toolRefs[strings.ToLower(tool.Name)] = true
		}
	}
	for _, meta := range r.skill.MetaTools {
		if meta.ID != "" {
			r.toolRefs[strings.ToLower(meta.ID)] = true
		}
		if meta.Name != "" {
			r.toolRefs[strings.ToLower(meta.Name)] = true
		}
	}
	if r.skill.Policy != nil {
		for _, workflow := range r.skill.Policy.Workflows {
			if workflow.ID != "" {
				r.workflowIDs[workflow.ID] = true
			}
		}
	}
}

// resolvesAsTool reports whether ref names a tool, a meta tool, or a system
// tool. Tool matching is case-insensitive on both ids and names.
func (r *resolver) resolvesAsTool(ref string) bool {
	if skill.IsSystemTool(ref) {
		return true
	}
	return r.toolRefs[strings.ToLower(ref)]
}

func (r *resolver) checkDuplicates() {
	// Each duplicated value is flagged exactly once, at its first repeat. N
	// tools sharing an id yield one issue, not N-1.
	seenToolIDs := make(map[string]bool)
	flaggedToolIDs := make(map[string]bool)
	seenToolNames := make(map[string]bool)
	flaggedToolNames := make(map[string]bool)
	for i, tool := range r.skill.Tools {
		if tool.ID != "" {
			if seenToolIDs[tool.ID] && !flaggedToolIDs[tool.ID] {
				flaggedToolIDs[tool.ID] = true
				r.add(errorIssue(CodeDuplicateToolID, fmt.Sprintf("tools[%d].id", i), "duplicate tool id %q", tool.ID))
			}
			seenToolIDs[tool.ID] = true
		}
		if tool.Name != "" {
			name := strings.ToLower(tool.Name)
			if seenToolNames[name] && !flaggedToolNames[name] {
				flaggedToolNames[name] = true
				r.add(warningIssue(CodeDuplicateToolName, fmt.Sprintf("tools[%d].name", i), "duplicate tool name %q", tool.Name).
					withSuggestion("tool names are matched case-insensitively by workflow steps; make them distinct"))
			}
			seenToolNames[name] = true
		}
	}

	if r.skill.Policy != nil {
		seen := make(map[string]bool)
		flagged := make(map[string]bool)
		for i, workflow := range r.skill.Policy.Workflows {
			if workflow.ID == "" {
				continue
			}
			if seen[workflow.ID] && !flagged[workflow.ID] {
				flagged[workflow.ID] = true
				r.add(errorIssue(CodeDuplicateWorkflowID, fmt.Sprintf("policy.workflows[%d].id", i), "duplicate workflow id %q", workflow.ID))
			}
			seen[workflow.ID] = true
		}
	}

	if r.skill.Intents != nil {
		seen := make(map[string]bool)
		flagged := make(map[string]bool)
		for i, intent := range r.skill.Intents.Supported {
			if intent.ID == "" {
				continue
			}
			if seen[intent.ID] && !flagged[intent.ID] {
				flagged[intent.ID] = true
				r.add(errorIssue(CodeDuplicateIntentID, fmt.Sprintf("intents.supported[%d].id", i), "duplicate intent id %q", intent.ID))
			}
			seen[intent.ID] = true
		}
	}

	seenScenarios := make(map[string]bool)
	flaggedScenarios := make(map[string]bool)
	for i, scenario := range r.skill.Scenarios {
		if scenario.ID == "" {
			continue
		}
		if seenScenarios[scenario.ID] && !flaggedScenarios[scenario.ID] {
			flaggedScenarios[scenario.ID] = true
			r.add(errorIssue(CodeDuplicateScenarioID, fmt.Sprintf("scenarios[%d].id", i), "duplicate scenario id %q", scenario.ID))
		}
		seenScenarios[scenario.ID] = true
	}
}

func (r *resolver) resolveWorkflowSteps() {
	if r.skill.Policy == nil {
		return
	}
	for wi, workflow := range r.skill.Policy.Workflows {
		resolved := make([]bool, len(workflow.Steps))
		for si, step := range workflow.Steps {
			switch {
			case r.resolvesAsTool(step):
				resolved[si] = true
			case r.workflowIDs[step]:
				// Sub-workflow; cycle checking covers it.
				resolved[si] = true
			default:
				r.add(warningIssue(CodeToolNotFound, fmt.Sprintf("policy.workflows[%d].steps[%d]", wi, si),
					"workflow %q step %q does not match any tool, system tool or workflow", workflow.ID, step).
					withSuggestion("add the tool, or prefix platform capabilities with sys., ui. or cp."))
				r.unresolved.addTool(step)
			}
		}
		r.resolution.WorkflowSteps[workflow.ID] = resolved
	}
}

func (r *resolver) resolveIntents() {
	if r.skill.Intents == nil {
		return
	}
	for i, intent := range r.skill.Intents.Supported {
		if intent.MapsToWorkflow == "" {
			continue
		}
		if r.workflowIDs[intent.MapsToWorkflow] {
			r.resolution.IntentWorkflows[intent.ID] = true
			continue
		}
		r.resolution.IntentWorkflows[intent.ID] = false
		r.add(warningIssue(CodeWorkflowNotFound, fmt.Sprintf("intents.supported[%d].maps_to_workflow", i),
			"intent %q maps to unknown workflow %q", intent.ID, intent.MapsToWorkflow))
		r.unresolved.addWorkflow(intent.MapsToWorkflow)
	}
}

func (r *resolver) resolveApprovals() {
	if r.skill.Policy == nil {
		return
	}
	for i, approval := range r.skill.Policy.Approvals {
		if approval.ToolID == "" {
			continue
		}
		if r.resolvesAsTool(approval.ToolID) {
			r.resolution.ApprovalTools[i] = true
			continue
		}
		r.resolution.ApprovalTools[i] = false
		r.add(warningIssue(CodeApprovalToolNotFound, fmt.Sprintf("policy.approvals[%d].tool_id", i),
			"approval rule references unknown tool %q", approval.ToolID))
		r.unresolved.addTool(approval.ToolID)
	}
}

// checkIntentConnectivity warns about intents that nothing visibly fulfils.
// The check is deliberately fuzzy: an intent passes if a workflow trigger
// equals its id, or if any keyword of its id (split on '_', '-' and '.',
// keeping keywords longer than 2 characters) appears as a substring of the
// concatenated tool names. False positives and false negatives are both
// accepted; authors react to the warning, they are not blocked by it.
func (r *resolver) checkIntentConnectivity() {
	if r.skill.Intents == nil {
		return
	}

	var toolBlob strings.Builder
	for _, tool := range r.skill.Tools {
		toolBlob.WriteString(strings.ToLower(tool.Name))
		toolBlob.WriteString(" ")
	}
	for _, meta := range r.skill.MetaTools {
		toolBlob.WriteString(strings.ToLower(meta.Name))
		toolBlob.WriteString(" ")
	}
	names := toolBlob.String()

	for i, intent := range r.skill.Intents.Supported {
		if intent.ID == "" {
			continue
		}
		if r.resolution.IntentWorkflows[intent.ID] {
			continue
		}
		if r.workflowTriggeredBy(intent.ID) {
			continue
		}

		keywords := strings.FieldsFunc(strings.ToLower(intent.ID), func(ch rune) bool {
			return ch == '_' || ch == '-' || ch == '.'
		})
		connected := false
		for _, keyword := range keywords {
			if len(keyword) > 2 && strings.Contains(names, keyword) {
				connected = true
				break
			}
		}
		if !connected {
			r.add(warningIssue(CodeIntentNoTools, fmt.Sprintf("intents.supported[%d]", i),
				"intent %q has no workflow mapping and no tool appears to serve it", intent.ID).
				withSuggestion("map the intent to a workflow, or add a tool whose name reflects the intent"))
			r.unresolved.addIntent(intent.ID)
		}
	}
}

func (r *resolver) workflowTriggeredBy(intentID string) bool {
	if r.skill.Policy == nil {
		return false
	}
	for _, workflow := range r.skill.Policy.Workflows {
		if workflow.Trigger == intentID {
			return true
		}
	}
	return false
}

// checkWorkflowCycles builds the workflow reference graph (A -> B when a step
// of A names workflow B, self-loops excluded) and reports one error per
// distinct cycle.
func (r *resolver) checkWorkflowCycles() {
	if r.skill.Policy == nil {
		return
	}

	edges := make(map[string][]string)
	for _, workflow := range r.skill.Policy.Workflows {
		if workflow.ID == "" {
			continue
		}
		if _, present := edges[workflow.ID]; !present {
			edges[workflow.ID] = nil
		}
		for _, step := range workflow.Steps {
			if step != workflow.ID && r.workflowIDs[step] {
				edges[workflow.ID] = append(edges[workflow.ID], step)
			}
		}
	}

	for _, cycle := range detectCycles(edges) {
		r.add(errorIssue(CodeWorkflowCircular, "policy.workflows",
			"circular workflow reference: %s", renderCycle(cycle)))
	}
}
