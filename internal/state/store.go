package state

import (
	"sync"
	"sync/atomic"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// Store owns all client-side session state. Only Apply (driven by the
// gateway dispatch loop) mutates the stores; every accessor hands out
// copies, so presentation code can never write through a snapshot.
type Store struct {
	Agents       *AgentRegistry
	Outputs      *OutputLog
	ToolCalls    *ToolCallLog
	Stats        *ToolStats
	Pipelines    *PipelineStore
	Orchestrator *OrchestratorLog
	Security     *SecurityStore

	correlator *Correlator

	version atomic.Uint64

	navMu    sync.Mutex
	navigate string
}

func New() *Store {
	s := &Store{
		Agents:       NewAgentRegistry(),
		Outputs:      NewOutputLog(),
		ToolCalls:    NewToolCallLog(),
		Stats:        NewToolStats(),
		Pipelines:    NewPipelineStore(),
		Orchestrator: NewOrchestratorLog(),
		Security:     NewSecurityStore(),
	}
	s.correlator = NewCorrelator(s.Pipelines, s.Orchestrator)
	return s
}

// Apply folds one normalized event into the stores. It is total over the
// event union: no member returns an error or panics, so one event can never
// block delivery of the next.
func (s *Store) Apply(ev event.Event) {
	defer s.version.Add(1)

	switch ev := ev.(type) {
	case event.AgentOutput:
		s.Agents.Touch(ev.AgentID, ev.Time)
		s.Outputs.Append(ev)

	case event.ToolEvent:
		s.Agents.Touch(ev.AgentID, ev.Time)
		call, settled := s.ToolCalls.Record(ev)
		if settled {
			s.Stats.Observe(call)
			s.correlator.ToolSettled(call)
		}

	case event.AgentStatus:
		s.Agents.ApplyStatus(ev)
	case event.AgentActivity:
		s.Agents.ApplyActivity(ev)
	case event.AgentInputRequired:
		s.Agents.ApplyInputRequired(ev)
	case event.AgentStats:
		s.Agents.ApplyStats(ev)
	case event.AgentNavigate:
		s.setNavigate(ev.AgentID)

	case event.PipelineCreated:
		s.Pipelines.Put(ev.Pipeline)
	case event.PipelineStatus:
		s.Pipelines.SetStatus(ev.PipelineID, ev.Status)
	case event.PipelinePhase:
		s.Pipelines.SetPhase(ev.PipelineID, ev.Phase)
	case event.PipelineProgress:
		s.Pipelines.SetStepStatus(ev.PipelineID, ev.StepNumber, ev.Status, ev.AgentID)

	case event.AutoPipelineStarted:
		s.Pipelines.Put(ev.Pipeline)
		s.Orchestrator.StartRun(ev.RunID)
	case event.AutoPipelineStepCompleted:
		s.Pipelines.SetStepStatus(ev.PipelineID, ev.StepNumber, event.StepCompleted, "")
		s.Pipelines.SetStepOutput(ev.PipelineID, ev.StepNumber, ev.Output)
	case event.AutoPipelineCompleted:
		if ev.PipelineID != "" {
			s.Pipelines.SetStatus(ev.PipelineID, ev.Status)
		}
	case event.AutoPipelineStepStatus:
		s.Pipelines.SetStepStatus(ev.PipelineID, ev.StepNumber, ev.Status, ev.AgentID)
	case event.AutoPipelineDecision:
		s.Orchestrator.AppendDecision(ev.RunID, ev.Decision, ev.Reasoning, ev.Time)

	case event.OrchestratorToolStart:
		s.correlator.OrchestratorToolStart(ev)
	case event.OrchestratorToolComplete:
		s.correlator.OrchestratorToolComplete(ev)
	case event.OrchestratorStateChanged:
		s.Orchestrator.AppendState(ev.RunID, ev.From, ev.To, ev.Time)

	case event.SecurityAlert:
		s.Security.AddAlert(ev.Alert)
	case event.ElevatedCommandRequest:
		s.Security.AddRequest(ev.Request)
	}
}

// Version increments on every applied event; cheap change detection for the
// presentation layer.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

func (s *Store) setNavigate(agentID string) {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	s.navigate = agentID
}

// ConsumeNavigate returns and clears the most recent navigation hint.
func (s *Store) ConsumeNavigate() (string, bool) {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	if s.navigate == "" {
		return "", false
	}
	id := s.navigate
	s.navigate = ""
	return id, true
}
