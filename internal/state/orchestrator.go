package state

import (
	"sync"
	"time"
)

// StateChange is one orchestrator state-machine transition.
type StateChange struct {
	From      string
	To        string
	Iteration int
	Time      time.Time
}

// Decision is one recorded orchestrator decision.
type Decision struct {
	Decision  string
	Reasoning string
	Time      time.Time
}

// OrchToolCall is a tool call made directly by the orchestrator. The
// orchestrator channel carries no call id, so calls are identified by tool
// name and paired start → complete by name (see Complete).
type OrchToolCall struct {
	ToolName  string
	Input     string
	Output    string
	Err       string
	Iteration int
	Pending   bool
	StartedAt time.Time
	SettledAt time.Time
}

// OrchestratorLog holds the three append-only activity sequences for the
// current auto-pipeline run. StartRun clears all three; appends carrying a
// stale run id are dropped so late arrivals cannot resurrect a cleared run.
type OrchestratorLog struct {
	mu        sync.Mutex
	runID     string
	iteration int
	states    []StateChange
	decisions []Decision
	toolCalls []OrchToolCall
}

func NewOrchestratorLog() *OrchestratorLog {
	return &OrchestratorLog{}
}

// StartRun resets the log for a new auto-pipeline run.
func (l *OrchestratorLog) StartRun(runID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runID = runID
	l.iteration = 0
	l.states = nil
	l.decisions = nil
	l.toolCalls = nil
}

func (l *OrchestratorLog) RunID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runID
}

// accepts reports whether an event tagged with runID belongs to the current
// run. An empty tag is accepted for backends that omit it.
func (l *OrchestratorLog) accepts(runID string) bool {
	return runID == "" || runID == l.runID
}

func (l *OrchestratorLog) AppendState(runID, from, to string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.accepts(runID) {
		return
	}
	l.iteration++
	l.states = append(l.states, StateChange{From: from, To: to, Iteration: l.iteration, Time: at})
}

func (l *OrchestratorLog) AppendDecision(runID, decision, reasoning string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.accepts(runID) {
		return
	}
	l.decisions = append(l.decisions, Decision{Decision: decision, Reasoning: reasoning, Time: at})
}

// Start records an orchestrator tool call in the pending state.
func (l *OrchestratorLog) Start(runID, toolName, input string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.accepts(runID) {
		return
	}
	l.toolCalls = append(l.toolCalls, OrchToolCall{
		ToolName:  toolName,
		Input:     input,
		Iteration: l.iteration,
		Pending:   true,
		StartedAt: at,
	})
}

// Complete settles the oldest pending call with the same tool name. With no
// call id on this channel, name matching is the only available join; two
// concurrent calls of the same tool can be attributed to the wrong start.
// A complete with no pending counterpart materializes a settled record.
func (l *OrchestratorLog) Complete(runID, toolName, output, errText string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.accepts(runID) {
		return
	}
	for i := range l.toolCalls {
		c := &l.toolCalls[i]
		if c.Pending && c.ToolName == toolName {
			c.Pending = false
			c.Output = output
			c.Err = errText
			c.SettledAt = at
			return
		}
	}
	l.toolCalls = append(l.toolCalls, OrchToolCall{
		ToolName:  toolName,
		Output:    output,
		Err:       errText,
		Iteration: l.iteration,
		StartedAt: at,
		SettledAt: at,
	})
}

func (l *OrchestratorLog) Iteration() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.iteration
}

func (l *OrchestratorLog) States() []StateChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]StateChange, len(l.states))
	copy(out, l.states)
	return out
}

func (l *OrchestratorLog) Decisions() []Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Decision, len(l.decisions))
	copy(out, l.decisions)
	return out
}

func (l *OrchestratorLog) ToolCalls() []OrchToolCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]OrchToolCall, len(l.toolCalls))
	copy(out, l.toolCalls)
	return out
}
