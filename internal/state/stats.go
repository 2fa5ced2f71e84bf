package state

import (
	"sync"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// ToolStats derives counters incrementally from settled tool calls, one
// observation per call. Pending records never reach it, so a call is
// counted exactly once.
type ToolStats struct {
	mu         sync.Mutex
	total      int
	success    int
	failed     int
	byTool     map[string]int
	timedSum   int64
	timedCount int
}

// StatsSnapshot is the derived view handed to presentation code.
type StatsSnapshot struct {
	TotalCalls      int
	SuccessfulCalls int
	FailedCalls     int
	ByTool          map[string]int
	SuccessRate     float64
	AvgExecutionMS  float64
}

func NewToolStats() *ToolStats {
	return &ToolStats{byTool: make(map[string]int)}
}

// Observe folds one newly settled call into the counters. Callers must pass
// each settled record exactly once (ToolCallLog.Record reports settling).
func (s *ToolStats) Observe(c ToolCall) {
	if !c.Settled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if c.Status == event.ToolSuccess {
		s.success++
	} else {
		s.failed++
	}
	if c.ToolName != "" {
		s.byTool[c.ToolName]++
	}
	// Only records that report a time contribute to either side of the
	// average; an untimed record changes nothing.
	if c.ExecutionMillis != nil {
		s.timedSum += *c.ExecutionMillis
		s.timedCount++
	}
}

func (s *ToolStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		TotalCalls:      s.total,
		SuccessfulCalls: s.success,
		FailedCalls:     s.failed,
		ByTool:          make(map[string]int, len(s.byTool)),
	}
	for k, v := range s.byTool {
		snap.ByTool[k] = v
	}
	if s.total > 0 {
		snap.SuccessRate = float64(s.success) / float64(s.total)
	}
	if s.timedCount > 0 {
		snap.AvgExecutionMS = float64(s.timedSum) / float64(s.timedCount)
	}
	return snap
}
