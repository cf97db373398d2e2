package skill

// Enum fields are closed string types. Valid reports membership and the
// Values functions expose the allowed sets for error messages, so validators
// never hand-maintain parallel string lists.

// Phase is the authoring lifecycle stage of a skill.
type Phase string

// Lifecycle phases, in authoring order.
const (
	PhaseDraft     Phase = "draft"
	PhaseProblem   Phase = "problem"
	PhaseScenarios Phase = "scenarios"
	PhaseRole      Phase = "role"
	PhaseIntents   Phase = "intents"
	PhaseTools     Phase = "tools"
	PhasePolicy    Phase = "policy"
	PhaseMocks     Phase = "mocks"
	PhaseReview    Phase = "review"
	PhaseReady     Phase = "ready"
)

// PhaseValues returns all valid phases.
func PhaseValues() []string {
	return []string{"draft", "problem", "scenarios", "role", "intents", "tools", "policy", "mocks", "review", "ready"}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool { return contains(PhaseValues(), string(p)) }

// DataType is the declared type of a tool input or output. "text" is accepted
// as an alias for "string".
type DataType string

// Data types.
const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeObject  DataType = "object"
	TypeArray   DataType = "array"
	TypeText    DataType = "text"
)

// DataTypeValues returns all valid data types.
func DataTypeValues() []string {
	return []string{"string", "number", "boolean", "object", "array", "text"}
}

// Valid reports whether d is a known data type.
func (d DataType) Valid() bool { return contains(DataTypeValues(), string(d)) }

// Tone is the communication tone of the role.
type Tone string

// ToneValues returns all valid tones.
func ToneValues() []string {
	return []string{"friendly", "professional", "casual", "formal", "empathetic"}
}

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool { return contains(ToneValues(), string(t)) }

// Verbosity is how much the role says.
type Verbosity string

// VerbosityValues returns all valid verbosity levels.
func VerbosityValues() []string { return []string{"concise", "balanced", "detailed"} }

// Valid reports whether v is a known verbosity.
func (v Verbosity) Valid() bool { return contains(VerbosityValues(), string(v)) }

// ToolAllowed is the tool invocation policy.
type ToolAllowed string

// ToolAllowedValues returns all valid tool policies.
func ToolAllowedValues() []string { return []string{"always", "with_approval", "never"} }

// Valid reports whether a is a known tool policy.
func (a ToolAllowed) Valid() bool { return contains(ToolAllowedValues(), string(a)) }

// MockMode is how a mocked tool produces responses.
type MockMode string

// Mock modes.
const (
	MockStatic      MockMode = "static"
	MockGenerated   MockMode = "generated"
	MockPassthrough MockMode = "passthrough"
)

// MockModeValues returns all valid mock modes.
func MockModeValues() []string { return []string{"static", "generated", "passthrough"} }

// Valid reports whether m is a known mock mode.
func (m MockMode) Valid() bool { return contains(MockModeValues(), string(m)) }

// MockStatus records whether the mock has been exercised.
type MockStatus string

// Mock statuses.
const (
	MockUntested MockStatus = "untested"
	MockPassed   MockStatus = "passed"
	MockFailed   MockStatus = "failed"
)

// MockStatusValues returns all valid mock statuses.
func MockStatusValues() []string { return []string{"untested", "passed", "failed"} }

// Valid reports whether m is a known mock status.
func (m MockStatus) Valid() bool { return contains(MockStatusValues(), string(m)) }

// TriggerType distinguishes scheduled from event-driven triggers.
type TriggerType string

// Trigger types.
const (
	TriggerSchedule TriggerType = "schedule"
	TriggerEvent    TriggerType = "event"
)

// TriggerTypeValues returns all valid trigger types.
func TriggerTypeValues() []string { return []string{"schedule", "event"} }

// Valid reports whether t is a known trigger type.
func (t TriggerType) Valid() bool { return contains(TriggerTypeValues(), string(t)) }

// Autonomy is how much the engine does without asking.
type Autonomy string

// AutonomyValues returns all valid autonomy levels.
func AutonomyValues() []string { return []string{"supervised", "semi_autonomous", "autonomous"} }

// Valid reports whether a is a known autonomy level.
func (a Autonomy) Valid() bool { return contains(AutonomyValues(), string(a)) }

// OnMaxIterations is what the engine does when the iteration budget runs out.
type OnMaxIterations string

// OnMaxIterationsValues returns all valid actions.
func OnMaxIterationsValues() []string { return []string{"stop", "ask_user", "summarize"} }

// Valid reports whether o is a known action.
func (o OnMaxIterations) Valid() bool { return contains(OnMaxIterationsValues(), string(o)) }

// CriticStrictness controls the internal critic.
type CriticStrictness string

// CriticStrictnessValues returns all valid strictness levels.
func CriticStrictnessValues() []string { return []string{"lenient", "normal", "strict"} }

// Valid reports whether c is a known strictness.
func (c CriticStrictness) Valid() bool { return contains(CriticStrictnessValues(), string(c)) }

// WorkflowDeviation is what happens when the agent strays from a workflow.
type WorkflowDeviation string

// WorkflowDeviationValues returns all valid deviation actions.
func WorkflowDeviationValues() []string { return []string{"allow", "warn", "block"} }

// Valid reports whether w is a known deviation action.
func (w WorkflowDeviation) Valid() bool { return contains(WorkflowDeviationValues(), string(w)) }

// AccessEffect is the effect of an access policy rule.
type AccessEffect string

// Access effects.
const (
	EffectAllow     AccessEffect = "allow"
	EffectDeny      AccessEffect = "deny"
	EffectConstrain AccessEffect = "constrain"
)

// AccessEffectValues returns all valid effects.
func AccessEffectValues() []string { return []string{"allow", "deny", "constrain"} }

// Valid reports whether e is a known effect.
func (e AccessEffect) Valid() bool { return contains(AccessEffectValues(), string(e)) }

// Classification is the data classification of a tool.
type Classification string

// Tool classifications. The high-risk subset mandates access policy coverage.
const (
	ClassPublic      Classification = "public"
	ClassInternal    Classification = "internal"
	ClassPIIRead     Classification = "pii_read"
	ClassPIIWrite    Classification = "pii_write"
	ClassFinancial   Classification = "financial"
	ClassDestructive Classification = "destructive"
)

// ClassificationValues returns all valid classifications.
func ClassificationValues() []string {
	return []string{"public", "internal", "pii_read", "pii_write", "financial", "destructive"}
}

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool { return contains(ClassificationValues(), string(c)) }

// HighRisk reports whether the classification mandates explicit access policy
// coverage before export.
func (c Classification) HighRisk() bool {
	return c == ClassPIIWrite || c == ClassFinancial || c == ClassDestructive
}

// PII reports whether the classification touches personal data.
func (c Classification) PII() bool { return c == ClassPIIRead || c == ClassPIIWrite }

// RiskLevel is the declared operational risk of a tool.
type RiskLevel string

// RiskLevelValues returns all valid risk levels.
func RiskLevelValues() []string { return []string{"low", "medium", "high", "critical"} }

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool { return contains(RiskLevelValues(), string(r)) }

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
