package state

import (
	"sync"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// defaultOutputCap bounds per-agent memory under an unbounded stream; the
// oldest entries are dropped once the cap is reached.
const defaultOutputCap = 5000

// OutputLog is an append-only, per-agent ordered log of output entries.
// Ordering is arrival order. Dropped is the count of entries evicted by the
// retention cap, so the feed can report a stable virtual extent base.
type OutputLog struct {
	mu      sync.Mutex
	cap     int
	entries map[string][]event.AgentOutput
	dropped map[string]int
}

func NewOutputLog() *OutputLog {
	return NewOutputLogWithCap(defaultOutputCap)
}

func NewOutputLogWithCap(cap int) *OutputLog {
	if cap < 1 {
		cap = 1
	}
	return &OutputLog{
		cap:     cap,
		entries: make(map[string][]event.AgentOutput),
		dropped: make(map[string]int),
	}
}

func (l *OutputLog) Append(ev event.AgentOutput) {
	l.mu.Lock()
	defer l.mu.Unlock()
	es := append(l.entries[ev.AgentID], ev)
	if len(es) > l.cap {
		over := len(es) - l.cap
		es = es[over:]
		l.dropped[ev.AgentID] += over
	}
	l.entries[ev.AgentID] = es
}

// Entries returns a copy of the ordered log for one agent; mutating it does
// not affect the store.
func (l *OutputLog) Entries(agentID string) []event.AgentOutput {
	l.mu.Lock()
	defer l.mu.Unlock()
	es := l.entries[agentID]
	out := make([]event.AgentOutput, len(es))
	copy(out, es)
	return out
}

func (l *OutputLog) Len(agentID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[agentID])
}

func (l *OutputLog) Dropped(agentID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped[agentID]
}
