package state

import (
	"sync"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// ToolCall is the single logical record for one tool invocation. A
// PreToolUse and its matching PostToolUse collapse into one record whose
// status moves pending → success/failed.
type ToolCall struct {
	AgentID         string
	SessionID       string
	CallID          string
	ToolName        string
	Input           string
	Response        string
	ErrorMessage    string
	Status          event.ToolStatus
	ExecutionMillis *int64
	StartedAt       time.Time
	SettledAt       time.Time
}

func (c ToolCall) Settled() bool {
	return c.Status != event.ToolPending
}

// ToolCallLog keeps per-agent ordered tool-call records, merged by call id.
// Invariant: at most one record exists per call id no matter how many phase
// events arrived, or in which order.
type ToolCallLog struct {
	mu      sync.Mutex
	byAgent map[string][]*ToolCall
	byCall  map[string]*ToolCall
}

func NewToolCallLog() *ToolCallLog {
	return &ToolCallLog{
		byAgent: make(map[string][]*ToolCall),
		byCall:  make(map[string]*ToolCall),
	}
}

// Record applies one phase event. It returns the record as it stands after
// the merge and whether this event settled it; only a settling Post phase
// reports settled=true, so callers can feed aggregates exactly once per call.
func (l *ToolCallLog) Record(ev event.ToolEvent) (ToolCall, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.byCall[ev.CallID]
	if !ok {
		c = &ToolCall{
			AgentID:   ev.AgentID,
			SessionID: ev.SessionID,
			CallID:    ev.CallID,
			ToolName:  ev.ToolName,
			Input:     ev.Input,
			Status:    event.ToolPending,
			StartedAt: ev.Time,
		}
		l.byCall[ev.CallID] = c
		l.byAgent[ev.AgentID] = append(l.byAgent[ev.AgentID], c)
	}

	switch ev.Phase {
	case event.PreToolUse:
		// A Pre arriving after the Post (cross-channel reorder or replay)
		// must not regress a settled record.
		if c.Settled() {
			return *c, false
		}
		if ev.Input != "" {
			c.Input = ev.Input
		}
		if ev.ToolName != "" {
			c.ToolName = ev.ToolName
		}
		return *c, false

	case event.PostToolUse:
		settling := !c.Settled()
		if ev.ToolName != "" {
			c.ToolName = ev.ToolName
		}
		if ev.Response != "" {
			c.Response = ev.Response
		}
		c.ErrorMessage = ev.ErrorMessage
		if ev.ExecutionMillis != nil {
			c.ExecutionMillis = ev.ExecutionMillis
		}
		if ev.Failed {
			c.Status = event.ToolFailed
		} else {
			c.Status = event.ToolSuccess
		}
		c.SettledAt = ev.Time
		return *c, settling
	}

	return *c, false
}

// Calls returns copies of the ordered records for one agent.
func (l *ToolCallLog) Calls(agentID string) []ToolCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	cs := l.byAgent[agentID]
	out := make([]ToolCall, len(cs))
	for i, c := range cs {
		out[i] = *c
	}
	return out
}

func (l *ToolCallLog) Get(callID string) (ToolCall, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.byCall[callID]
	if !ok {
		return ToolCall{}, false
	}
	return *c, true
}

func (l *ToolCallLog) Len(agentID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byAgent[agentID])
}
