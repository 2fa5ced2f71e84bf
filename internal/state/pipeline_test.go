package state_test

import (
	"testing"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

func twoStepPipeline(id string) event.Pipeline {
	return event.Pipeline{
		ID:     id,
		Name:   "release",
		Status: event.PipelineRunning,
		Steps: []event.Step{
			{Number: 1, Role: "planner", Status: event.StepRunning, AgentID: "a1"},
			{Number: 2, Role: "builder", Status: event.StepPending, AgentID: "a2"},
		},
	}
}

func TestPipelineStepEventBeforeSnapshot(t *testing.T) {
	s := state.NewPipelineStore()

	// The step event materializes a placeholder pipeline.
	s.SetStepStatus("p1", 2, event.StepRunning, "a2")
	p, ok := s.Get("p1")
	if !ok {
		t.Fatal("step event did not materialize pipeline")
	}
	if len(p.Steps) != 1 || p.Steps[0].Number != 2 {
		t.Fatalf("materialized steps: %+v", p.Steps)
	}

	// The later snapshot replaces the placeholder wholesale.
	s.Put(twoStepPipeline("p1"))
	p, _ = s.Get("p1")
	if len(p.Steps) != 2 || p.Name != "release" {
		t.Errorf("snapshot did not replace placeholder: %+v", p)
	}
}

func TestPipelineSnapshotKeepsEarlierToolCallCounts(t *testing.T) {
	s := state.NewPipelineStore()
	s.SetStepStatus("p1", 1, event.StepRunning, "a1")
	for i := 0; i < 3; i++ {
		s.IncrementStepToolCalls("a1")
	}

	// Snapshot arrives late with a stale count; the larger local count wins.
	s.Put(twoStepPipeline("p1"))
	p, _ := s.Get("p1")
	if got := p.Steps[0].ToolCalls; got != 3 {
		t.Errorf("tool calls after snapshot: got %d, want 3", got)
	}
}

func TestPipelineIncrementCreditsFirstMatchingStep(t *testing.T) {
	s := state.NewPipelineStore()
	p := twoStepPipeline("p1")
	p.Steps[1].AgentID = "a1" // same agent on both steps
	s.Put(p)

	if !s.IncrementStepToolCalls("a1") {
		t.Fatal("no step matched")
	}
	got, _ := s.Get("p1")
	if got.Steps[0].ToolCalls != 1 || got.Steps[1].ToolCalls != 0 {
		t.Errorf("counts: %d, %d; want 1, 0", got.Steps[0].ToolCalls, got.Steps[1].ToolCalls)
	}
}

func TestPipelineIncrementNoMatch(t *testing.T) {
	s := state.NewPipelineStore()
	s.Put(twoStepPipeline("p1"))
	if s.IncrementStepToolCalls("nobody") {
		t.Error("increment reported a match for an unknown agent")
	}
	if s.IncrementStepToolCalls("") {
		t.Error("increment reported a match for an empty agent id")
	}
}

func TestPipelineRollup(t *testing.T) {
	s := state.NewPipelineStore()
	s.Put(twoStepPipeline("p1"))

	s.SetStepStatus("p1", 1, event.StepCompleted, "")
	s.SetStepStatus("p1", 2, event.StepCompleted, "")
	p, _ := s.Get("p1")
	if p.Status != event.PipelineCompleted {
		t.Errorf("all steps done: status %q, want completed", p.Status)
	}

	s.SetStepStatus("p1", 2, event.StepFailed, "")
	p, _ = s.Get("p1")
	if p.Status != event.PipelineFailed {
		t.Errorf("failed step: status %q, want failed", p.Status)
	}
}

func TestPipelineListOrderAndIsolation(t *testing.T) {
	s := state.NewPipelineStore()
	s.Put(twoStepPipeline("p1"))
	s.Put(twoStepPipeline("p2"))
	s.Put(twoStepPipeline("p1")) // replay must not reorder

	list := s.List()
	if len(list) != 2 || list[0].ID != "p1" || list[1].ID != "p2" {
		t.Fatalf("order: %+v", list)
	}

	// Snapshots are deep copies; mutating one must not leak into the store.
	list[0].Steps[0].Status = event.StepFailed
	p, _ := s.Get("p1")
	if p.Steps[0].Status == event.StepFailed {
		t.Error("returned snapshot aliases store memory")
	}
}

func TestPipelineIgnoresStepNumberZero(t *testing.T) {
	s := state.NewPipelineStore()
	s.SetStepStatus("p1", 0, event.StepRunning, "a1")
	if s.Len() != 0 {
		t.Error("step number 0 materialized a pipeline")
	}
}
