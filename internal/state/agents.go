package state

import (
	"sync"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// Agent is the merged view of one supervised worker process. Agents are
// created by the first status event naming them and are never deleted;
// stopped agents stay visible for the rest of the session.
type Agent struct {
	ID           string
	WorkingDir   string
	Title        string
	GitHubURL    string
	Status       event.AgentState
	Activity     string
	Processing   bool
	PendingInput bool
	LastActivity time.Time
	CostUSD      float64
	Turns        int
	TokensIn     int64
	TokensOut    int64
}

// AgentRegistry holds all known agents keyed by id, in first-seen order.
// Creation is an idempotent upsert: a duplicate status event for an existing
// id merges instead of producing a second entry.
type AgentRegistry struct {
	mu     sync.Mutex
	agents map[string]*Agent
	order  []string
}

func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*Agent)}
}

func (r *AgentRegistry) upsert(id string) *Agent {
	a, ok := r.agents[id]
	if !ok {
		a = &Agent{ID: id, Status: event.AgentIdle}
		r.agents[id] = a
		r.order = append(r.order, id)
	}
	return a
}

func (r *AgentRegistry) ApplyStatus(ev event.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.upsert(ev.AgentID)
	a.Status = ev.Status
	if ev.WorkingDir != "" {
		a.WorkingDir = ev.WorkingDir
	}
	if ev.Title != "" {
		a.Title = ev.Title
	}
	if ev.GitHubURL != "" {
		a.GitHubURL = ev.GitHubURL
	}
	if ev.Status != event.AgentWaitingForInput {
		a.PendingInput = false
	}
	a.Processing = ev.Status == event.AgentProcessing
	a.LastActivity = ev.Time
}

func (r *AgentRegistry) ApplyActivity(ev event.AgentActivity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.upsert(ev.AgentID)
	a.Activity = ev.Activity
	a.Processing = ev.Processing
	a.LastActivity = ev.Time
}

func (r *AgentRegistry) ApplyInputRequired(ev event.AgentInputRequired) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.upsert(ev.AgentID)
	a.PendingInput = true
	a.Status = event.AgentWaitingForInput
	a.LastActivity = ev.Time
}

func (r *AgentRegistry) ApplyStats(ev event.AgentStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.upsert(ev.AgentID)
	a.CostUSD = ev.CostUSD
	a.Turns = ev.Turns
	a.TokensIn = ev.TokensIn
	a.TokensOut = ev.TokensOut
}

// Touch records activity for an agent seen on a non-status channel before
// its introducing status event arrived.
func (r *AgentRegistry) Touch(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.upsert(id)
	if at.After(a.LastActivity) {
		a.LastActivity = at
	}
}

func (r *AgentRegistry) Get(id string) (Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

// List returns copies in first-seen order.
func (r *AgentRegistry) List() []Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Agent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.agents[id])
	}
	return out
}

func (r *AgentRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
