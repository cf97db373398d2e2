// Package skill defines the declarative skill document model: the tools,
// intents, policies and engine configuration an agent builder authors before a
// skill is exported to the runtime. Documents arrive as plain JSON objects and
// are decoded into these types after the schema stage has reported any shape
// problems on the raw form.
package skill

// Skill is a single declarative agent definition.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phase Phase  `json:"phase,omitempty"`

	Problem   *Problem   `json:"problem,omitempty"`
	Scenarios []Scenario `json:"scenarios,omitempty"`
	Role      *Role      `json:"role,omitempty"`
	Intents   *Intents   `json:"intents,omitempty"`
	Tools     []Tool     `json:"tools,omitempty"`
	MetaTools []MetaTool `json:"meta_tools,omitempty"`
	Policy    *Policy    `json:"policy,omitempty"`
	Engine    *Engine    `json:"engine,omitempty"`
	Identity  *Identity  `json:"identity,omitempty"`

	GrantMappings   []GrantMapping   `json:"grant_mappings,omitempty"`
	AccessPolicy    *AccessPolicy    `json:"access_policy,omitempty"`
	ResponseFilters []ResponseFilter `json:"response_filters,omitempty"`
	Triggers        []Trigger        `json:"triggers,omitempty"`
}

// Problem describes what the skill is for.
type Problem struct {
	Statement string   `json:"statement"`
	Context   string   `json:"context,omitempty"`
	Goals     []string `json:"goals,omitempty"`
}

// Scenario is a concrete walkthrough of the skill handling one situation.
type Scenario struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Steps []string `json:"steps,omitempty"`
}

// Role describes the persona the agent adopts.
type Role struct {
	Name      string    `json:"name"`
	Persona   string    `json:"persona"`
	Tone      Tone      `json:"tone,omitempty"`
	Verbosity Verbosity `json:"verbosity,omitempty"`
}

// Intents is the intent classification block.
type Intents struct {
	Supported   []Intent     `json:"supported,omitempty"`
	Thresholds  *Thresholds  `json:"thresholds,omitempty"`
	OutOfDomain *OutOfDomain `json:"out_of_domain,omitempty"`
}

// Intent is one user intent the skill can fulfil.
type Intent struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Examples       []string `json:"examples,omitempty"`
	MapsToWorkflow string   `json:"maps_to_workflow,omitempty"`
	Entities       []string `json:"entities,omitempty"`
}

// Thresholds holds intent classification confidence bounds.
type Thresholds struct {
	Confident float64 `json:"confident,omitempty"`
	Clarify   float64 `json:"clarify,omitempty"`
}

// OutOfDomain configures behaviour for unrecognised requests.
type OutOfDomain struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// Tool is a capability the agent may invoke.
type Tool struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Inputs         []ToolInput   `json:"inputs,omitempty"`
	Output         *ToolOutput   `json:"output,omitempty"`
	Source         *ToolSource   `json:"source,omitempty"`
	Policy         *ToolPolicy   `json:"policy,omitempty"`
	Mock           *ToolMock     `json:"mock,omitempty"`
	Security       *ToolSecurity `json:"security,omitempty"`
	DataOwnerField string        `json:"data_owner_field,omitempty"`
}

// MetaTool is a composite tool assembled from other tools. Workflow steps may
// reference meta tools the same way they reference plain tools.
type MetaTool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tools       []string `json:"tools,omitempty"`
}

// ToolInput is a single declared tool parameter.
type ToolInput struct {
	Name        string   `json:"name"`
	Type        DataType `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
}

// ToolOutput describes what the tool returns.
type ToolOutput struct {
	Type        DataType `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ToolSource binds a tool to the connector that implements it.
type ToolSource struct {
	Type         string `json:"type,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
	Operation    string `json:"operation,omitempty"`
}

// ToolPolicy controls when the agent may call the tool.
type ToolPolicy struct {
	Allowed ToolAllowed `json:"allowed,omitempty"`
}

// ToolMock configures the mocked behaviour used before a tool is wired up.
type ToolMock struct {
	Mode     MockMode   `json:"mode,omitempty"`
	Status   MockStatus `json:"status,omitempty"`
	Response any        `json:"response,omitempty"`
}

// ToolSecurity carries the data classification of a tool.
type ToolSecurity struct {
	Classification Classification `json:"classification,omitempty"`
	RiskLevel      RiskLevel      `json:"risk_level,omitempty"`
}

// Policy is the behavioural policy block: guardrails, workflows and approvals.
type Policy struct {
	Guardrails *Guardrails    `json:"guardrails,omitempty"`
	Workflows  []Workflow     `json:"workflows,omitempty"`
	Approvals  []ApprovalRule `json:"approvals,omitempty"`
}

// Guardrails are hard behavioural rules.
type Guardrails struct {
	Never  []string `json:"never,omitempty"`
	Always []string `json:"always,omitempty"`
}

// Workflow is a named ordered sequence of steps. Each step names a tool, a
// system tool, or another workflow (a sub-workflow).
type Workflow struct {
	ID      string   `json:"id"`
	Trigger string   `json:"trigger,omitempty"`
	Steps   []string `json:"steps,omitempty"`
}

// ApprovalRule requires human sign-off before a tool call proceeds.
type ApprovalRule struct {
	ToolID    string `json:"tool_id"`
	Condition string `json:"condition,omitempty"`
	Approver  string `json:"approver,omitempty"`
}

// Engine configures the model loop.
type Engine struct {
	Model                 string            `json:"model,omitempty"`
	Temperature           float64           `json:"temperature,omitempty"`
	MaxIterations         int               `json:"max_iterations,omitempty"`
	OnMaxIterations       OnMaxIterations   `json:"on_max_iterations,omitempty"`
	Autonomy              Autonomy          `json:"autonomy,omitempty"`
	CriticStrictness      CriticStrictness  `json:"critic_strictness,omitempty"`
	OnWorkflowDeviation   WorkflowDeviation `json:"on_workflow_deviation,omitempty"`
	InternalErrorRecovery *ErrorRecovery    `json:"internal_error_recovery,omitempty"`
}

// ErrorRecovery configures how the engine reacts to internal tool failures.
type ErrorRecovery struct {
	MaxRetries      int    `json:"max_retries,omitempty"`
	FallbackMessage string `json:"fallback_message,omitempty"`
}

// Identity holds the outward-facing identity of the skill.
type Identity struct {
	DisplayName string `json:"display_name"`
	FromEmail   string `json:"from_email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// GrantMapping extracts a verified claim from a tool response field.
type GrantMapping struct {
	Grant string `json:"grant"`
	Tool  string `json:"tool"`
	Field string `json:"field,omitempty"`
}

// AccessPolicy is the tool-level access control block.
type AccessPolicy struct {
	Rules []AccessRule `json:"rules,omitempty"`
}

// AccessRule applies an effect to a set of tools. Entries in Tools may be the
// wildcard "*", an exact tool id or name, or a glob pattern.
type AccessRule struct {
	Tools      []string     `json:"tools"`
	Effect     AccessEffect `json:"effect"`
	Constraint string       `json:"constraint,omitempty"`
	Field      string       `json:"field,omitempty"`
}

// ResponseFilter strips or masks fields from tool responses before they reach
// the model.
type ResponseFilter struct {
	Tool        string   `json:"tool,omitempty"`
	StripFields []string `json:"strip_fields,omitempty"`
	MaskFields  []string `json:"mask_fields,omitempty"`
}

// Trigger is a schedule- or event-driven automation entry point.
type Trigger struct {
	ID       string         `json:"id,omitempty"`
	Type     TriggerType    `json:"type"`
	Schedule string         `json:"schedule,omitempty"`
	Event    string         `json:"event,omitempty"`
	Filter   map[string]any `json:"filter,omitempty"`
	Workflow string         `json:"workflow,omitempty"`
}
