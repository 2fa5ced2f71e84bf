package state

import (
	"sync"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// PipelineStore holds pipelines keyed by id in first-seen order. Pipelines
// are replaced by whole snapshots or mutated by targeted step updates; every
// mutation is an idempotent upsert so step events arriving before their
// pipeline snapshot still land.
type PipelineStore struct {
	mu        sync.Mutex
	pipelines map[string]*event.Pipeline
	order     []string
}

func NewPipelineStore() *PipelineStore {
	return &PipelineStore{pipelines: make(map[string]*event.Pipeline)}
}

func (s *PipelineStore) upsert(id string) *event.Pipeline {
	p, ok := s.pipelines[id]
	if !ok {
		p = &event.Pipeline{ID: id, Status: event.PipelinePending}
		s.pipelines[id] = p
		s.order = append(s.order, id)
	}
	return p
}

// Put replaces the stored pipeline with a snapshot.
func (s *PipelineStore) Put(p event.Pipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.upsert(p.ID)
	// Targeted increments may have landed before the snapshot; keep the
	// larger tool-call count per step.
	for i := range p.Steps {
		if old := findStep(cur, p.Steps[i].Number); old != nil && old.ToolCalls > p.Steps[i].ToolCalls {
			p.Steps[i].ToolCalls = old.ToolCalls
		}
	}
	*cur = p
}

func (s *PipelineStore) SetStatus(id string, status event.PipelineState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(id).Status = status
}

func (s *PipelineStore) SetPhase(id, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(id).Phase = phase
}

// SetStepStatus updates one step, materializing the step (and pipeline) if
// the events arrived out of order. Step identity is the 1-based number.
func (s *PipelineStore) SetStepStatus(id string, number int, status event.StepStatus, agentID string) {
	if number < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.upsert(id)
	st := ensureStep(p, number)
	st.Status = status
	if agentID != "" {
		st.AgentID = agentID
	}
	rollup(p)
}

func (s *PipelineStore) SetStepOutput(id string, number int, output string) {
	if number < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ensureStep(s.upsert(id), number)
	st.Output = output
}

// IncrementStepToolCalls credits one settled tool call to the first step
// across all pipelines owned by the given agent. Reports whether a step
// matched; no match is an expected steady state, not an error.
func (s *PipelineStore) IncrementStepToolCalls(agentID string) bool {
	if agentID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		p := s.pipelines[id]
		for i := range p.Steps {
			st := &p.Steps[i]
			if st.AgentID == agentID && st.Number > 0 {
				st.ToolCalls++
				return true
			}
		}
	}
	return false
}

func (s *PipelineStore) Get(id string) (event.Pipeline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pipelines[id]
	if !ok {
		return event.Pipeline{}, false
	}
	return clonePipeline(p), true
}

// List returns deep copies in first-seen order.
func (s *PipelineStore) List() []event.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Pipeline, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clonePipeline(s.pipelines[id]))
	}
	return out
}

func (s *PipelineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func findStep(p *event.Pipeline, number int) *event.Step {
	for i := range p.Steps {
		if p.Steps[i].Number == number {
			return &p.Steps[i]
		}
	}
	return nil
}

func ensureStep(p *event.Pipeline, number int) *event.Step {
	if st := findStep(p, number); st != nil {
		return st
	}
	p.Steps = append(p.Steps, event.Step{Number: number, Status: event.StepPending})
	return &p.Steps[len(p.Steps)-1]
}

// rollup derives the coarse pipeline status from its steps.
func rollup(p *event.Pipeline) {
	if len(p.Steps) == 0 {
		return
	}
	completed := 0
	for i := range p.Steps {
		switch p.Steps[i].Status {
		case event.StepFailed:
			p.Status = event.PipelineFailed
			return
		case event.StepCompleted:
			completed++
		}
	}
	switch completed {
	case len(p.Steps):
		p.Status = event.PipelineCompleted
	case 0:
		if !anyRunning(p) {
			p.Status = event.PipelinePending
			return
		}
		p.Status = event.PipelineRunning
	default:
		p.Status = event.PipelineRunning
	}
}

func anyRunning(p *event.Pipeline) bool {
	for i := range p.Steps {
		if p.Steps[i].Status == event.StepRunning {
			return true
		}
	}
	return false
}

func clonePipeline(p *event.Pipeline) event.Pipeline {
	cp := *p
	cp.Steps = make([]event.Step, len(p.Steps))
	copy(cp.Steps, p.Steps)
	return cp
}
