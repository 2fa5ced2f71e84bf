package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

const defaultCallTimeout = 15 * time.Second

// AgentStatistics is the backend's snapshot of one agent's tool history.
type AgentStatistics struct {
	AgentID         string  `json:"agent_id"`
	TotalCalls      int     `json:"total_calls"`
	SuccessfulCalls int     `json:"successful_calls"`
	FailedCalls     int     `json:"failed_calls"`
	AvgExecutionMS  float64 `json:"avg_execution_time_ms"`
	CostUSD         float64 `json:"cost_usd"`
}

type PoolStats struct {
	ActiveAgents int     `json:"active_agents"`
	IdleAgents   int     `json:"idle_agents"`
	QueuedTasks  int     `json:"queued_tasks"`
	CostUSD      float64 `json:"cost_usd"`
}

type DatabaseStats struct {
	Events    int64 `json:"events"`
	Agents    int   `json:"agents"`
	Pipelines int   `json:"pipelines"`
	SizeBytes int64 `json:"size_bytes"`
}

type PipelineRun struct {
	RunID      string    `json:"run_id"`
	PipelineID string    `json:"pipeline_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type requestPayload struct {
	ID     string `json:"id"`
	Op     string `json:"op"`
	Params any    `json:"params,omitempty"`
}

type responsePayload struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Client issues request/response round-trips over the event socket. Each
// request carries a uuid; the dispatch loop routes response envelopes back
// through Settle. Responses for unknown ids (a caller that timed out and
// left) are dropped.
type Client struct {
	send    func(event.Envelope) error
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan responsePayload
}

func NewClient(conn *Connector) *Client {
	return newClient(conn.Send)
}

func newClient(send func(event.Envelope) error) *Client {
	return &Client{
		send:    send,
		timeout: defaultCallTimeout,
		pending: make(map[string]chan responsePayload),
	}
}

func (c *Client) call(ctx context.Context, op string, params any) (json.RawMessage, error) {
	id := uuid.NewString()
	ch := make(chan responsePayload, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(requestPayload{ID: id, Op: op, Params: params})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.send(event.Envelope{Channel: event.ChanRequest, Payload: payload}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.timeout):
		return nil, fmt.Errorf("%s: timed out", op)
	case resp := <-ch:
		if !resp.OK {
			return nil, fmt.Errorf("%s: %s", op, resp.Error)
		}
		return resp.Data, nil
	}
}

// Settle delivers a response payload to its waiting caller, if any.
func (c *Client) Settle(raw json.RawMessage) {
	var resp responsePayload
	if err := json.Unmarshal(raw, &resp); err != nil {
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

func callInto[T any](ctx context.Context, c *Client, op string, params any) (T, error) {
	var out T
	data, err := c.call(ctx, op, params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return out, nil
}

func (c *Client) AgentStatistics(ctx context.Context, agentID string) (AgentStatistics, error) {
	return callInto[AgentStatistics](ctx, c, event.OpGetAgentStatistics, map[string]string{"agent_id": agentID})
}

func (c *Client) AutoPipeline(ctx context.Context) (event.Pipeline, error) {
	return callInto[event.Pipeline](ctx, c, event.OpGetAutoPipeline, nil)
}

func (c *Client) PipelineHistory(ctx context.Context) ([]PipelineRun, error) {
	return callInto[[]PipelineRun](ctx, c, event.OpGetPipelineHistory, nil)
}

func (c *Client) PoolStats(ctx context.Context) (PoolStats, error) {
	return callInto[PoolStats](ctx, c, event.OpGetPoolStats, nil)
}

func (c *Client) DatabaseStats(ctx context.Context) (DatabaseStats, error) {
	return callInto[DatabaseStats](ctx, c, event.OpGetDatabaseStats, nil)
}

func (c *Client) ApproveElevatedCommand(ctx context.Context, requestID string) error {
	_, err := c.call(ctx, event.OpApproveElevatedCommand, map[string]string{"id": requestID})
	return err
}

func (c *Client) DenyElevatedCommand(ctx context.Context, requestID string) error {
	_, err := c.call(ctx, event.OpDenyElevatedCommand, map[string]string{"id": requestID})
	return err
}
