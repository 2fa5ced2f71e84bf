package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownChannel marks envelopes the client does not recognize. Callers
// log and drop; normalization never reaches the stores with a partial event.
var ErrUnknownChannel = errors.New("unknown channel")

// Normalize converts a raw wire envelope into exactly one member of the
// Event union. Payload keys are matched case- and separator-insensitively
// (agent_id, agentId and AgentID all bind) and timestamps are accepted as
// epoch millis, epoch seconds or RFC 3339. Normalize never panics.
func Normalize(env Envelope) (Event, error) {
	f, err := parsePayload(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Channel, err)
	}

	switch env.Channel {
	case ChanAgentOutput:
		return normalizeAgentOutput(f)
	case ChanAgentTool:
		return normalizeToolEvent(f)
	case ChanAgentStatus:
		return normalizeAgentStatus(f)
	case ChanAgentActivity:
		return AgentActivity{
			AgentID:    f.str("agentid"),
			Activity:   f.str("activity"),
			Processing: f.boolean("processing"),
			Time:       f.timeAt("timestamp"),
		}, requireAgent(f)
	case ChanAgentInputRequired:
		return AgentInputRequired{
			AgentID: f.str("agentid"),
			Prompt:  f.str("prompt"),
			Time:    f.timeAt("timestamp"),
		}, requireAgent(f)
	case ChanAgentStats:
		return AgentStats{
			AgentID:   f.str("agentid"),
			CostUSD:   f.float("costusd"),
			Turns:     f.integer("turns"),
			TokensIn:  f.int64v("tokensin"),
			TokensOut: f.int64v("tokensout"),
			Time:      f.timeAt("timestamp"),
		}, requireAgent(f)
	case ChanAgentNavigate:
		return AgentNavigate{AgentID: f.str("agentid")}, requireAgent(f)

	case ChanPipelineCreated:
		p, err := decodePipeline(f)
		if err != nil {
			return nil, err
		}
		return PipelineCreated{Pipeline: p}, nil
	case ChanPipelineStatus:
		status := PipelineState(f.str("status"))
		return PipelineStatus{PipelineID: f.str("pipelineid"), Status: status}, requirePipeline(f)
	case ChanPipelinePhase:
		return PipelinePhase{PipelineID: f.str("pipelineid"), Phase: f.str("phase")}, requirePipeline(f)
	case ChanPipelineProgress:
		return PipelineProgress{
			PipelineID: f.str("pipelineid"),
			StepNumber: f.integer("stepnumber"),
			Status:     stepStatus(f.str("status")),
			AgentID:    f.str("agentid"),
		}, requirePipeline(f)

	case ChanAutoPipelineStarted:
		p, err := decodePipeline(f)
		if err != nil {
			return nil, err
		}
		p.Auto = true
		runID := f.str("runid")
		if runID == "" {
			return nil, errors.New("missing run_id")
		}
		p.RunID = runID
		return AutoPipelineStarted{RunID: runID, Pipeline: p, Time: f.timeAt("timestamp")}, nil
	case ChanAutoPipelineStepCompleted:
		return AutoPipelineStepCompleted{
			RunID:      f.str("runid"),
			PipelineID: f.str("pipelineid"),
			StepNumber: f.integer("stepnumber"),
			Output:     f.str("output"),
			Time:       f.timeAt("timestamp"),
		}, nil
	case ChanAutoPipelineCompleted:
		return AutoPipelineCompleted{
			RunID:      f.str("runid"),
			PipelineID: f.str("pipelineid"),
			Status:     PipelineState(f.str("status")),
			Time:       f.timeAt("timestamp"),
		}, nil
	case ChanAutoPipelineStepStatus:
		return AutoPipelineStepStatus{
			RunID:      f.str("runid"),
			PipelineID: f.str("pipelineid"),
			StepNumber: f.integer("stepnumber"),
			Status:     stepStatus(f.str("status")),
			AgentID:    f.str("agentid"),
			Time:       f.timeAt("timestamp"),
		}, nil
	case ChanAutoPipelineDecision:
		return AutoPipelineDecision{
			RunID:     f.str("runid"),
			Decision:  f.str("decision"),
			Reasoning: f.str("reasoning"),
			Time:      f.timeAt("timestamp"),
		}, nil

	case ChanOrchestratorToolStart:
		name := f.str("toolname")
		if name == "" {
			return nil, errors.New("missing tool_name")
		}
		return OrchestratorToolStart{
			RunID:    f.str("runid"),
			ToolName: name,
			Input:    f.str("toolinput"),
			Time:     f.timeAt("timestamp"),
		}, nil
	case ChanOrchestratorToolComplete:
		name := f.str("toolname")
		if name == "" {
			return nil, errors.New("missing tool_name")
		}
		return OrchestratorToolComplete{
			RunID:    f.str("runid"),
			ToolName: name,
			Output:   f.str("output"),
			Err:      f.str("error"),
			Time:     f.timeAt("timestamp"),
		}, nil
	case ChanOrchestratorStateChanged:
		return OrchestratorStateChanged{
			RunID: f.str("runid"),
			From:  f.str("from"),
			To:    f.str("to"),
			Time:  f.timeAt("timestamp"),
		}, nil

	case ChanSecurityAlert:
		id := f.str("id")
		if id == "" {
			return nil, errors.New("missing alert id")
		}
		sev := Severity(strings.ToLower(f.str("severity")))
		if !sev.Valid() {
			sev = SeverityMedium
		}
		return SecurityAlert{Alert: Alert{
			ID:       id,
			AgentID:  f.str("agentid"),
			Severity: sev,
			Title:    f.str("title"),
			Detail:   f.str("detail"),
			Time:     f.timeAt("timestamp"),
		}}, nil
	case ChanElevatedCommand:
		id := f.str("id")
		if id == "" {
			return nil, errors.New("missing request id")
		}
		risk := Severity(strings.ToLower(f.str("risk")))
		if !risk.Valid() {
			risk = SeverityHigh
		}
		return ElevatedCommandRequest{Request: ElevatedCommand{
			ID:          id,
			AgentID:     f.str("agentid"),
			Command:     f.str("command"),
			Risk:        risk,
			Status:      RequestPending,
			RequestedAt: f.timeAt("timestamp"),
			ExpiresAt:   f.timeAt("expiresat"),
		}}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, env.Channel)
}

func normalizeAgentOutput(f fields) (Event, error) {
	if err := requireAgent(f); err != nil {
		return nil, err
	}
	typ := OutputType(f.str("outputtype"))
	if !typ.Valid() {
		typ = OutputText
	}
	return AgentOutput{
		AgentID: f.str("agentid"),
		Type:    typ,
		Content: f.str("content"),
		Time:    f.timeAt("timestamp"),
	}, nil
}

func normalizeToolEvent(f fields) (Event, error) {
	if err := requireAgent(f); err != nil {
		return nil, err
	}
	phase := HookPhase(f.str("hookeventname"))
	if phase != PreToolUse && phase != PostToolUse {
		return nil, fmt.Errorf("bad hook_event_name %q", f.str("hookeventname"))
	}
	callID := f.str("toolcallid")
	if callID == "" {
		return nil, errors.New("missing tool_call_id")
	}
	status := f.str("status")
	return ToolEvent{
		AgentID:         f.str("agentid"),
		SessionID:       f.str("sessionid"),
		Phase:           phase,
		ToolName:        f.str("toolname"),
		CallID:          callID,
		Input:           f.str("toolinput"),
		Response:        f.str("toolresponse"),
		ErrorMessage:    f.str("errormessage"),
		Failed:          status == "failed" || status == "error" || f.str("errormessage") != "",
		ExecutionMillis: f.millisPtr("executiontimems"),
		Time:            f.timeAt("timestamp"),
	}, nil
}

func normalizeAgentStatus(f fields) (Event, error) {
	if err := requireAgent(f); err != nil {
		return nil, err
	}
	status := AgentState(f.str("status"))
	if !status.Valid() {
		return nil, fmt.Errorf("bad agent status %q", f.str("status"))
	}
	info, _ := parsePayload(f.raw("info"))
	return AgentStatus{
		AgentID:    f.str("agentid"),
		Status:     status,
		WorkingDir: info.str("workingdir"),
		Title:      info.str("title"),
		GitHubURL:  info.str("githuburl"),
		Time:       f.timeAt("timestamp"),
	}, nil
}

func stepStatus(s string) StepStatus {
	switch strings.ToLower(s) {
	case "pending":
		return StepPending
	case "running":
		return StepRunning
	case "completed":
		return StepCompleted
	case "failed":
		return StepFailed
	}
	return StepPending
}

func requireAgent(f fields) error {
	if f.str("agentid") == "" {
		return errors.New("missing agent_id")
	}
	return nil
}

func requirePipeline(f fields) error {
	if f.str("pipelineid") == "" {
		return errors.New("missing pipeline_id")
	}
	return nil
}

func decodePipeline(f fields) (Pipeline, error) {
	id := f.str("pipelineid")
	if id == "" {
		id = f.str("id")
	}
	if id == "" {
		return Pipeline{}, errors.New("missing pipeline id")
	}
	p := Pipeline{
		ID:     id,
		Name:   f.str("name"),
		Status: PipelineState(f.str("status")),
		Phase:  f.str("phase"),
	}
	if p.Status == "" {
		p.Status = PipelinePending
	}

	var rawSteps []json.RawMessage
	if raw := f.raw("steps"); len(raw) > 0 {
		if err := json.Unmarshal(raw, &rawSteps); err != nil {
			return Pipeline{}, fmt.Errorf("steps: %w", err)
		}
	}
	for i, rs := range rawSteps {
		sf, err := parsePayload(rs)
		if err != nil {
			return Pipeline{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		num := sf.integer("stepnumber")
		if num == 0 {
			num = i + 1
		}
		p.Steps = append(p.Steps, Step{
			Number:    num,
			Role:      sf.str("role"),
			Status:    stepStatus(sf.str("status")),
			AgentID:   sf.str("agentid"),
			Output:    sf.str("output"),
			ToolCalls: sf.integer("toolcalls"),
		})
	}
	return p, nil
}

// fields is a payload with keys folded to lower case with separators
// stripped, so lookups are spelled once in canonical form.
type fields map[string]json.RawMessage

func parsePayload(raw json.RawMessage) (fields, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fields{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	f := make(fields, len(m))
	for k, v := range m {
		f[foldKey(k)] = v
	}
	return f, nil
}

func foldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range k {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicodeLower(r))
	}
	return b.String()
}

func unicodeLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func (f fields) raw(name string) json.RawMessage {
	return f[name]
}

// str reads a string field. Non-string scalars are rendered, objects and
// arrays are kept as compact JSON (tool inputs are often structured).
func (f fields) str(name string) string {
	raw, ok := f[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}

func (f fields) boolean(name string) bool {
	raw, ok := f[name]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return f.str(name) == "true"
}

func (f fields) integer(name string) int {
	return int(f.int64v(name))
}

func (f fields) int64v(name string) int64 {
	raw, ok := f[name]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var fl float64
	if err := json.Unmarshal(raw, &fl); err == nil {
		return int64(fl)
	}
	if n, err := strconv.ParseInt(f.str(name), 10, 64); err == nil {
		return n
	}
	return 0
}

func (f fields) float(name string) float64 {
	raw, ok := f[name]
	if !ok {
		return 0
	}
	var fl float64
	if err := json.Unmarshal(raw, &fl); err == nil {
		return fl
	}
	if fl, err := strconv.ParseFloat(f.str(name), 64); err == nil {
		return fl
	}
	return 0
}

// millisPtr distinguishes "no measurement" from zero.
func (f fields) millisPtr(name string) *int64 {
	raw, ok := f[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	v := f.int64v(name)
	return &v
}

// timeAt accepts epoch millis, epoch seconds or RFC 3339. A missing or
// unreadable timestamp falls back to arrival time.
func (f fields) timeAt(name string) time.Time {
	raw, ok := f[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return time.Now()
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		// Epoch seconds fit well under 1e12; millis do not.
		if num >= 1e12 {
			return time.UnixMilli(int64(num))
		}
		return time.Unix(int64(num), 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now()
}
