package state_test

import (
	"testing"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

func settledCall(tool string, status event.ToolStatus, ms *int64) state.ToolCall {
	return state.ToolCall{
		AgentID:         "a1",
		CallID:          "c-" + tool,
		ToolName:        tool,
		Status:          status,
		ExecutionMillis: ms,
	}
}

func millis(v int64) *int64 { return &v }

func TestStatsEmpty(t *testing.T) {
	snap := state.NewToolStats().Snapshot()
	if snap.TotalCalls != 0 || snap.SuccessRate != 0 || snap.AvgExecutionMS != 0 {
		t.Errorf("empty snapshot: %+v", snap)
	}
}

func TestStatsSuccessRate(t *testing.T) {
	s := state.NewToolStats()
	s.Observe(settledCall("Bash", event.ToolSuccess, nil))
	s.Observe(settledCall("Read", event.ToolSuccess, nil))
	s.Observe(settledCall("Edit", event.ToolFailed, nil))

	snap := s.Snapshot()
	if snap.TotalCalls != 3 || snap.SuccessfulCalls != 2 || snap.FailedCalls != 1 {
		t.Errorf("counters: %+v", snap)
	}
	if want := 2.0 / 3.0; snap.SuccessRate != want {
		t.Errorf("success rate: got %v, want %v", snap.SuccessRate, want)
	}
}

func TestStatsAverageSkipsUntimed(t *testing.T) {
	s := state.NewToolStats()
	s.Observe(settledCall("a", event.ToolSuccess, millis(120)))
	s.Observe(settledCall("b", event.ToolSuccess, millis(80)))
	s.Observe(settledCall("c", event.ToolSuccess, nil))

	if got := s.Snapshot().AvgExecutionMS; got != 100 {
		t.Errorf("average: got %v, want 100", got)
	}
}

func TestStatsAverageZeroWhenNothingTimed(t *testing.T) {
	s := state.NewToolStats()
	s.Observe(settledCall("a", event.ToolSuccess, nil))
	if got := s.Snapshot().AvgExecutionMS; got != 0 {
		t.Errorf("average: got %v, want 0", got)
	}
}

func TestStatsIgnoresPending(t *testing.T) {
	s := state.NewToolStats()
	s.Observe(state.ToolCall{CallID: "c1", Status: event.ToolPending})
	if got := s.Snapshot().TotalCalls; got != 0 {
		t.Errorf("pending call counted: total %d", got)
	}
}

func TestStatsByTool(t *testing.T) {
	s := state.NewToolStats()
	s.Observe(settledCall("Bash", event.ToolSuccess, nil))
	s.Observe(settledCall("Bash", event.ToolFailed, nil))
	s.Observe(settledCall("Read", event.ToolSuccess, nil))

	byTool := s.Snapshot().ByTool
	if byTool["Bash"] != 2 || byTool["Read"] != 1 {
		t.Errorf("by tool: %v", byTool)
	}
}
