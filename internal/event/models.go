package event

import "time"

type AgentState string

const (
	AgentIdle            AgentState = "idle"
	AgentRunning         AgentState = "running"
	AgentProcessing      AgentState = "processing"
	AgentWaitingForInput AgentState = "waitingForInput"
	AgentStopped         AgentState = "stopped"
	AgentError           AgentState = "error"
)

func (s AgentState) Valid() bool {
	switch s {
	case AgentIdle, AgentRunning, AgentProcessing, AgentWaitingForInput, AgentStopped, AgentError:
		return true
	}
	return false
}

type OutputType string

const (
	OutputText       OutputType = "text"
	OutputToolUse    OutputType = "tool_use"
	OutputToolResult OutputType = "tool_result"
	OutputError      OutputType = "error"
	OutputResult     OutputType = "result"
)

func (t OutputType) Valid() bool {
	switch t {
	case OutputText, OutputToolUse, OutputToolResult, OutputError, OutputResult:
		return true
	}
	return false
}

// HookPhase tags which half of a tool call a tool event reports.
type HookPhase string

const (
	PreToolUse  HookPhase = "PreToolUse"
	PostToolUse HookPhase = "PostToolUse"
)

type ToolStatus string

const (
	ToolPending ToolStatus = "pending"
	ToolSuccess ToolStatus = "success"
	ToolFailed  ToolStatus = "failed"
)

type StepStatus string

const (
	StepPending   StepStatus = "Pending"
	StepRunning   StepStatus = "Running"
	StepCompleted StepStatus = "Completed"
	StepFailed    StepStatus = "Failed"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepRunning, StepCompleted, StepFailed:
		return true
	}
	return false
}

type PipelineState string

const (
	PipelinePending   PipelineState = "pending"
	PipelineRunning   PipelineState = "running"
	PipelineCompleted PipelineState = "completed"
	PipelineFailed    PipelineState = "failed"
)

// Step is one unit of a pipeline. Number is 1-based and is the step's
// identity within its pipeline.
type Step struct {
	Number    int        `json:"step_number"`
	Role      string     `json:"role"`
	Status    StepStatus `json:"status"`
	AgentID   string     `json:"agent_id,omitempty"`
	Output    string     `json:"output,omitempty"`
	ToolCalls int        `json:"tool_calls"`
}

// Pipeline is a whole-snapshot view of one workflow. Steps are replaced
// wholesale or mutated by targeted step updates, never appended piecemeal.
type Pipeline struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	RunID  string        `json:"run_id,omitempty"`
	Auto   bool          `json:"auto"`
	Status PipelineState `json:"status"`
	Phase  string        `json:"phase,omitempty"`
	Steps  []Step        `json:"steps"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
	RequestExpired  RequestStatus = "expired"
)

// Alert is a point-in-time security finding.
type Alert struct {
	ID       string
	AgentID  string
	Severity Severity
	Title    string
	Detail   string
	Time     time.Time
	Read     bool
}

// ElevatedCommand is a request to run a command above the sandbox policy,
// awaiting an operator decision until it expires.
type ElevatedCommand struct {
	ID          string
	AgentID     string
	Command     string
	Risk        Severity
	Status      RequestStatus
	RequestedAt time.Time
	ExpiresAt   time.Time
}
