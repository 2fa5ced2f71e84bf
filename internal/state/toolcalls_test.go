package state_test

import (
	"testing"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

func pre(callID string) event.ToolEvent {
	return event.ToolEvent{
		AgentID:  "a1",
		Phase:    event.PreToolUse,
		ToolName: "Bash",
		CallID:   callID,
		Input:    `{"command":"ls"}`,
		Time:     time.Now(),
	}
}

func post(callID string) event.ToolEvent {
	ms := int64(42)
	return event.ToolEvent{
		AgentID:         "a1",
		Phase:           event.PostToolUse,
		ToolName:        "Bash",
		CallID:          callID,
		Response:        "ok",
		ExecutionMillis: &ms,
		Time:            time.Now(),
	}
}

func TestToolCallPrePostMerge(t *testing.T) {
	log := state.NewToolCallLog()

	c, settled := log.Record(pre("c1"))
	if settled {
		t.Error("pre phase must not settle")
	}
	if c.Status != event.ToolPending {
		t.Errorf("after pre: status %q, want pending", c.Status)
	}

	c, settled = log.Record(post("c1"))
	if !settled {
		t.Error("post phase must settle")
	}
	if c.Status != event.ToolSuccess {
		t.Errorf("after post: status %q, want success", c.Status)
	}
	if c.Input == "" || c.Response != "ok" {
		t.Errorf("merge lost a side: %+v", c)
	}
	if got := log.Len("a1"); got != 1 {
		t.Errorf("records: got %d, want 1", got)
	}
}

func TestToolCallPostWithoutPre(t *testing.T) {
	log := state.NewToolCallLog()
	c, settled := log.Record(post("lonely"))
	if !settled {
		t.Error("post without pre must settle")
	}
	if c.Status != event.ToolSuccess {
		t.Errorf("status %q, want success", c.Status)
	}
	if got := log.Len("a1"); got != 1 {
		t.Errorf("records: got %d, want 1", got)
	}
}

func TestToolCallPreAfterPostDoesNotRegress(t *testing.T) {
	log := state.NewToolCallLog()
	log.Record(post("c1"))

	c, settled := log.Record(pre("c1"))
	if settled {
		t.Error("late pre must not re-settle")
	}
	if c.Status != event.ToolSuccess {
		t.Errorf("late pre regressed status to %q", c.Status)
	}
	if got := log.Len("a1"); got != 1 {
		t.Errorf("records: got %d, want 1", got)
	}
}

func TestToolCallFailure(t *testing.T) {
	log := state.NewToolCallLog()
	log.Record(pre("c1"))

	ev := post("c1")
	ev.Failed = true
	ev.ErrorMessage = "exit status 1"
	c, settled := log.Record(ev)
	if !settled {
		t.Error("failing post must settle")
	}
	if c.Status != event.ToolFailed {
		t.Errorf("status %q, want failed", c.Status)
	}
	if c.ErrorMessage != "exit status 1" {
		t.Errorf("error message %q", c.ErrorMessage)
	}
}

func TestToolCallDuplicatePostSettlesOnce(t *testing.T) {
	log := state.NewToolCallLog()
	if _, settled := log.Record(post("c1")); !settled {
		t.Fatal("first post must settle")
	}
	if _, settled := log.Record(post("c1")); settled {
		t.Error("replayed post must not settle again")
	}
	if got := log.Len("a1"); got != 1 {
		t.Errorf("records: got %d, want 1", got)
	}
}

func TestToolCallsAreOrderedPerAgent(t *testing.T) {
	log := state.NewToolCallLog()
	log.Record(pre("c1"))
	log.Record(pre("c2"))
	log.Record(post("c1"))

	calls := log.Calls("a1")
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].CallID != "c1" || calls[1].CallID != "c2" {
		t.Errorf("order: got %q then %q", calls[0].CallID, calls[1].CallID)
	}
	if !calls[0].Settled() || calls[1].Settled() {
		t.Errorf("settlement: %v %v", calls[0].Settled(), calls[1].Settled())
	}
}
