package event

import "time"

// Event is the closed union of normalized client-side events. Every member
// is produced by Normalize and consumed by the state stores; no other code
// sees raw wire shapes.
type Event interface {
	Kind() string
}

type AgentOutput struct {
	AgentID string
	Type    OutputType
	Content string
	Time    time.Time
}

func (AgentOutput) Kind() string { return ChanAgentOutput }

// ToolEvent reports one phase of a tool call. ExecutionMillis is nil when
// the backend did not measure the call.
type ToolEvent struct {
	AgentID         string
	SessionID       string
	Phase           HookPhase
	ToolName        string
	CallID          string
	Input           string
	Response        string
	ErrorMessage    string
	Failed          bool
	ExecutionMillis *int64
	Time            time.Time
}

func (ToolEvent) Kind() string { return ChanAgentTool }

type AgentStatus struct {
	AgentID    string
	Status     AgentState
	WorkingDir string
	Title      string
	GitHubURL  string
	Time       time.Time
}

func (AgentStatus) Kind() string { return ChanAgentStatus }

type AgentActivity struct {
	AgentID    string
	Activity   string
	Processing bool
	Time       time.Time
}

func (AgentActivity) Kind() string { return ChanAgentActivity }

type AgentInputRequired struct {
	AgentID string
	Prompt  string
	Time    time.Time
}

func (AgentInputRequired) Kind() string { return ChanAgentInputRequired }

type AgentStats struct {
	AgentID   string
	CostUSD   float64
	Turns     int
	TokensIn  int64
	TokensOut int64
	Time      time.Time
}

func (AgentStats) Kind() string { return ChanAgentStats }

// AgentNavigate asks the console to focus an agent.
type AgentNavigate struct {
	AgentID string
}

func (AgentNavigate) Kind() string { return ChanAgentNavigate }

type PipelineCreated struct {
	Pipeline Pipeline
}

func (PipelineCreated) Kind() string { return ChanPipelineCreated }

type PipelineStatus struct {
	PipelineID string
	Status     PipelineState
}

func (PipelineStatus) Kind() string { return ChanPipelineStatus }

type PipelinePhase struct {
	PipelineID string
	Phase      string
}

func (PipelinePhase) Kind() string { return ChanPipelinePhase }

type PipelineProgress struct {
	PipelineID string
	StepNumber int
	Status     StepStatus
	AgentID    string
}

func (PipelineProgress) Kind() string { return ChanPipelineProgress }

type AutoPipelineStarted struct {
	RunID    string
	Pipeline Pipeline
	Time     time.Time
}

func (AutoPipelineStarted) Kind() string { return ChanAutoPipelineStarted }

type AutoPipelineStepCompleted struct {
	RunID      string
	PipelineID string
	StepNumber int
	Output     string
	Time       time.Time
}

func (AutoPipelineStepCompleted) Kind() string { return ChanAutoPipelineStepCompleted }

type AutoPipelineCompleted struct {
	RunID      string
	PipelineID string
	Status     PipelineState
	Time       time.Time
}

func (AutoPipelineCompleted) Kind() string { return ChanAutoPipelineCompleted }

type AutoPipelineStepStatus struct {
	RunID      string
	PipelineID string
	StepNumber int
	Status     StepStatus
	AgentID    string
	Time       time.Time
}

func (AutoPipelineStepStatus) Kind() string { return ChanAutoPipelineStepStatus }

type AutoPipelineDecision struct {
	RunID     string
	Decision  string
	Reasoning string
	Time      time.Time
}

func (AutoPipelineDecision) Kind() string { return ChanAutoPipelineDecision }

// OrchestratorToolStart has no call id: the orchestrator's tool channel
// identifies calls by tool name only.
type OrchestratorToolStart struct {
	RunID    string
	ToolName string
	Input    string
	Time     time.Time
}

func (OrchestratorToolStart) Kind() string { return ChanOrchestratorToolStart }

type OrchestratorToolComplete struct {
	RunID    string
	ToolName string
	Output   string
	Err      string
	Time     time.Time
}

func (OrchestratorToolComplete) Kind() string { return ChanOrchestratorToolComplete }

type OrchestratorStateChanged struct {
	RunID string
	From  string
	To    string
	Time  time.Time
}

func (OrchestratorStateChanged) Kind() string { return ChanOrchestratorStateChanged }

type SecurityAlert struct {
	Alert Alert
}

func (SecurityAlert) Kind() string { return ChanSecurityAlert }

type ElevatedCommandRequest struct {
	Request ElevatedCommand
}

func (ElevatedCommandRequest) Kind() string { return ChanElevatedCommand }
