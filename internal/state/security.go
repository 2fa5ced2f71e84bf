package state

import (
	"sync"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// SecurityStore holds security alerts and elevated-command requests.
// Approval and denial mutate a request in place; records leave the store
// only through an explicit dismiss.
type SecurityStore struct {
	mu           sync.Mutex
	alerts       map[string]*event.Alert
	alertOrder   []string
	requests     map[string]*event.ElevatedCommand
	requestOrder []string
}

func NewSecurityStore() *SecurityStore {
	return &SecurityStore{
		alerts:   make(map[string]*event.Alert),
		requests: make(map[string]*event.ElevatedCommand),
	}
}

// AddAlert upserts by id; a replayed alert does not duplicate and does not
// reset the read flag.
func (s *SecurityStore) AddAlert(a event.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.alerts[a.ID]; ok {
		a.Read = cur.Read
		*cur = a
		return
	}
	cp := a
	s.alerts[a.ID] = &cp
	s.alertOrder = append(s.alertOrder, a.ID)
}

func (s *SecurityStore) MarkRead(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alerts[alertID]; ok {
		a.Read = true
	}
}

func (s *SecurityStore) DismissAlert(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alertID]; !ok {
		return
	}
	delete(s.alerts, alertID)
	s.alertOrder = removeID(s.alertOrder, alertID)
}

func (s *SecurityStore) Alerts() []event.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Alert, 0, len(s.alertOrder))
	for _, id := range s.alertOrder {
		out = append(out, *s.alerts[id])
	}
	return out
}

func (s *SecurityStore) UnreadAlerts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if !a.Read {
			n++
		}
	}
	return n
}

// AddRequest upserts an elevated-command request by id. A replay never
// regresses a settled decision back to pending.
func (s *SecurityStore) AddRequest(r event.ElevatedCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.requests[r.ID]; ok {
		if cur.Status != event.RequestPending {
			r.Status = cur.Status
		}
		*cur = r
		return
	}
	cp := r
	s.requests[r.ID] = &cp
	s.requestOrder = append(s.requestOrder, r.ID)
}

func (s *SecurityStore) Approve(requestID string, at time.Time) bool {
	return s.decide(requestID, event.RequestApproved, at)
}

func (s *SecurityStore) Deny(requestID string, at time.Time) bool {
	return s.decide(requestID, event.RequestDenied, at)
}

func (s *SecurityStore) decide(requestID string, status event.RequestStatus, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.Status != event.RequestPending {
		return false
	}
	if !r.ExpiresAt.IsZero() && at.After(r.ExpiresAt) {
		r.Status = event.RequestExpired
		return false
	}
	r.Status = status
	return true
}

func (s *SecurityStore) DismissRequest(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return
	}
	delete(s.requests, requestID)
	s.requestOrder = removeID(s.requestOrder, requestID)
}

// Requests returns copies in arrival order, with pending-past-expiry records
// reported as expired.
func (s *SecurityStore) Requests(now time.Time) []event.ElevatedCommand {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.ElevatedCommand, 0, len(s.requestOrder))
	for _, id := range s.requestOrder {
		r := *s.requests[id]
		if r.Status == event.RequestPending && !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt) {
			r.Status = event.RequestExpired
		}
		out = append(out, r)
	}
	return out
}

func (s *SecurityStore) PendingRequests(now time.Time) []event.ElevatedCommand {
	var out []event.ElevatedCommand
	for _, r := range s.Requests(now) {
		if r.Status == event.RequestPending {
			out = append(out, r)
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
