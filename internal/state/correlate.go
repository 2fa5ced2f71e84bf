package state

import "github.com/ClancyDennis/claude-commander-sub000/internal/event"

// Correlator joins tool-call completions to pipeline-step identity and to
// the orchestrator's iteration state. It only ever reads the settling
// record handed to it by the apply path; misses are silent no-ops.
type Correlator struct {
	pipelines *PipelineStore
	orch      *OrchestratorLog
}

func NewCorrelator(pipelines *PipelineStore, orch *OrchestratorLog) *Correlator {
	return &Correlator{pipelines: pipelines, orch: orch}
}

// ToolSettled attributes one settled worker tool call to the first pipeline
// step owned by the same agent. Pre-phase events never reach here, so only
// completions increment step counters.
func (c *Correlator) ToolSettled(call ToolCall) {
	c.pipelines.IncrementStepToolCalls(call.AgentID)
}

// OrchestratorToolStart records a direct orchestrator tool call as pending.
func (c *Correlator) OrchestratorToolStart(ev event.OrchestratorToolStart) {
	c.orch.Start(ev.RunID, ev.ToolName, ev.Input, ev.Time)
}

// OrchestratorToolComplete pairs a completion with the oldest pending call
// of the same tool name. The orchestrator channel carries no call id, so
// this is a name heuristic, not identity.
func (c *Correlator) OrchestratorToolComplete(ev event.OrchestratorToolComplete) {
	c.orch.Complete(ev.RunID, ev.ToolName, ev.Output, ev.Err, ev.Time)
}
