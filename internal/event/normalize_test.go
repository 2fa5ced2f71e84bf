package event_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

func env(channel, payload string) event.Envelope {
	return event.Envelope{Channel: channel, Payload: json.RawMessage(payload)}
}

func TestNormalizeKeyCasing(t *testing.T) {
	cases := []string{
		`{"agent_id": "a1", "output_type": "text", "content": "hi"}`,
		`{"agentId": "a1", "outputType": "text", "content": "hi"}`,
		`{"AgentID": "a1", "OutputType": "text", "Content": "hi"}`,
	}
	for _, payload := range cases {
		ev, err := event.Normalize(env(event.ChanAgentOutput, payload))
		if err != nil {
			t.Fatalf("normalizing %s: %v", payload, err)
		}
		out, ok := ev.(event.AgentOutput)
		if !ok {
			t.Fatalf("got %T, want AgentOutput", ev)
		}
		if out.AgentID != "a1" || out.Content != "hi" {
			t.Errorf("payload %s: got %+v", payload, out)
		}
	}
}

func TestNormalizeTimestamps(t *testing.T) {
	want := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	cases := map[string]string{
		"epoch millis": `1773480413000`,
		"epoch secs":   `1773480413`,
		"rfc3339":      `"2026-03-14T09:26:53Z"`,
	}
	for name, ts := range cases {
		payload := `{"agent_id": "a1", "status": "running", "timestamp": ` + ts + `}`
		ev, err := event.Normalize(env(event.ChanAgentStatus, payload))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		st := ev.(event.AgentStatus)
		if !st.Time.UTC().Equal(want) {
			t.Errorf("%s: got %v, want %v", name, st.Time.UTC(), want)
		}
	}
}

func TestNormalizeUnknownChannel(t *testing.T) {
	_, err := event.Normalize(env("bogus:channel", `{}`))
	if !errors.Is(err, event.ErrUnknownChannel) {
		t.Errorf("got %v, want ErrUnknownChannel", err)
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	_, err := event.Normalize(env(event.ChanAgentOutput, `{not json`))
	if err == nil {
		t.Error("expected error for malformed payload")
	}

	_, err = event.Normalize(env(event.ChanAgentOutput, `{"content": "orphan"}`))
	if err == nil {
		t.Error("expected error for output without agent_id")
	}
}

func TestNormalizeToolEvent(t *testing.T) {
	payload := `{
		"agent_id": "a1",
		"session_id": "s1",
		"hook_event_name": "PostToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "ls"},
		"tool_call_id": "c1",
		"execution_time_ms": 42,
		"timestamp": 1773480413000
	}`
	ev, err := event.Normalize(env(event.ChanAgentTool, payload))
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	te := ev.(event.ToolEvent)
	if te.Phase != event.PostToolUse {
		t.Errorf("phase: got %q", te.Phase)
	}
	if te.CallID != "c1" || te.ToolName != "Bash" {
		t.Errorf("identity: got %+v", te)
	}
	// Structured tool input survives as compact JSON.
	if te.Input != `{"command":"ls"}` {
		t.Errorf("input: got %q", te.Input)
	}
	if te.ExecutionMillis == nil || *te.ExecutionMillis != 42 {
		t.Errorf("execution time: got %v", te.ExecutionMillis)
	}
	if te.Failed {
		t.Error("no error fields set, call must not be failed")
	}
}

func TestNormalizeToolEventMissingTime(t *testing.T) {
	payload := `{"agent_id": "a1", "hook_event_name": "PostToolUse", "tool_call_id": "c2", "tool_name": "Read"}`
	ev, err := event.Normalize(env(event.ChanAgentTool, payload))
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	if ev.(event.ToolEvent).ExecutionMillis != nil {
		t.Error("absent execution_time_ms must stay nil, not zero")
	}
}

func TestNormalizeToolEventRejectsBadPhase(t *testing.T) {
	payload := `{"agent_id": "a1", "hook_event_name": "MidToolUse", "tool_call_id": "c1"}`
	if _, err := event.Normalize(env(event.ChanAgentTool, payload)); err == nil {
		t.Error("expected error for unknown hook phase")
	}
}

func TestNormalizePipelineSnapshot(t *testing.T) {
	payload := `{
		"id": "p1",
		"name": "release",
		"status": "running",
		"steps": [
			{"stepNumber": 1, "role": "planner", "status": "completed", "agentId": "a1"},
			{"step_number": 2, "role": "builder", "status": "running", "agent_id": "a2"}
		]
	}`
	ev, err := event.Normalize(env(event.ChanPipelineCreated, payload))
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	p := ev.(event.PipelineCreated).Pipeline
	if len(p.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(p.Steps))
	}
	if p.Steps[0].Status != event.StepCompleted || p.Steps[0].AgentID != "a1" {
		t.Errorf("step 1: %+v", p.Steps[0])
	}
	if p.Steps[1].Number != 2 || p.Steps[1].Status != event.StepRunning {
		t.Errorf("step 2: %+v", p.Steps[1])
	}
}

func TestNormalizeAutoPipelineStartedRequiresRun(t *testing.T) {
	payload := `{"id": "p1", "steps": []}`
	if _, err := event.Normalize(env(event.ChanAutoPipelineStarted, payload)); err == nil {
		t.Error("expected error for auto pipeline start without run_id")
	}

	ev, err := event.Normalize(env(event.ChanAutoPipelineStarted, `{"id": "p1", "run_id": "r9"}`))
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	started := ev.(event.AutoPipelineStarted)
	if started.RunID != "r9" || !started.Pipeline.Auto {
		t.Errorf("got %+v", started)
	}
}

func TestNormalizeElevatedCommand(t *testing.T) {
	payload := `{"id": "e1", "agent_id": "a1", "command": "rm -rf build", "risk": "HIGH",
		"timestamp": 1773480413000, "expires_at": 1773480473000}`
	ev, err := event.Normalize(env(event.ChanElevatedCommand, payload))
	if err != nil {
		t.Fatalf("normalizing: %v", err)
	}
	req := ev.(event.ElevatedCommandRequest).Request
	if req.Risk != event.SeverityHigh {
		t.Errorf("risk: got %q", req.Risk)
	}
	if req.Status != event.RequestPending {
		t.Errorf("status: got %q, want pending", req.Status)
	}
	if !req.ExpiresAt.After(req.RequestedAt) {
		t.Errorf("expiry %v not after request %v", req.ExpiresAt, req.RequestedAt)
	}
}
