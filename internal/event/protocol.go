package event

import "encoding/json"

// Envelope is the wire form of every message on the backend channel.
type Envelope struct {
	Channel string          `json:"channel"`
	Seq     int64           `json:"seq"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound channel names. Events within one channel arrive in order;
// no ordering holds across channels.
const (
	ChanAgentOutput        = "agent:output"
	ChanAgentTool          = "agent:tool"
	ChanAgentStatus        = "agent:status"
	ChanAgentActivity      = "agent:activity"
	ChanAgentInputRequired = "agent:input_required"
	ChanAgentStats         = "agent:stats"
	ChanAgentNavigate      = "agent:navigate"

	ChanPipelineCreated  = "pipeline:created"
	ChanPipelineStatus   = "pipeline:status"
	ChanPipelinePhase    = "pipeline:phase"
	ChanPipelineProgress = "pipeline:progress"

	ChanAutoPipelineStarted       = "auto_pipeline:started"
	ChanAutoPipelineStepCompleted = "auto_pipeline:step_completed"
	ChanAutoPipelineCompleted     = "auto_pipeline:completed"
	ChanAutoPipelineStepStatus    = "auto_pipeline:step_status"
	ChanAutoPipelineDecision      = "auto_pipeline:decision"

	ChanOrchestratorToolStart    = "orchestrator:tool_start"
	ChanOrchestratorToolComplete = "orchestrator:tool_complete"
	ChanOrchestratorStateChanged = "orchestrator:state_changed"

	ChanSecurityAlert   = "security:alert"
	ChanElevatedCommand = "security:elevated_command"

	// ChanRequest and ChanResponse carry gateway round-trips, not events.
	ChanRequest  = "request"
	ChanResponse = "response"
)

// Request operations the client issues to the backend.
const (
	OpGetAgentStatistics     = "get_agent_statistics"
	OpGetAutoPipeline        = "get_auto_pipeline"
	OpGetPipelineHistory     = "get_pipeline_history"
	OpGetPoolStats           = "get_pool_stats"
	OpGetDatabaseStats       = "get_database_stats"
	OpApproveElevatedCommand = "approve_elevated_command"
	OpDenyElevatedCommand    = "deny_elevated_command"
)
