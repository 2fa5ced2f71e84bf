package state_test

import (
	"testing"
	"time"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

func request(id string, expiresIn time.Duration) event.ElevatedCommand {
	now := time.Now()
	return event.ElevatedCommand{
		ID:          id,
		AgentID:     "a1",
		Command:     "rm -rf build",
		Risk:        event.SeverityHigh,
		Status:      event.RequestPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(expiresIn),
	}
}

func TestSecurityAlertUpsertKeepsReadFlag(t *testing.T) {
	s := state.NewSecurityStore()
	a := event.Alert{ID: "al1", Severity: event.SeverityHigh, Title: "suspicious write"}
	s.AddAlert(a)
	s.MarkRead("al1")
	s.AddAlert(a) // replay

	alerts := s.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if !alerts[0].Read {
		t.Error("replay reset the read flag")
	}
	if got := s.UnreadAlerts(); got != 0 {
		t.Errorf("unread: got %d, want 0", got)
	}
}

func TestSecurityDismissAlert(t *testing.T) {
	s := state.NewSecurityStore()
	s.AddAlert(event.Alert{ID: "al1"})
	s.DismissAlert("al1")
	s.DismissAlert("al1") // repeat is a no-op
	if n := len(s.Alerts()); n != 0 {
		t.Errorf("alerts after dismiss: %d", n)
	}
}

func TestSecurityApproveInPlace(t *testing.T) {
	s := state.NewSecurityStore()
	s.AddRequest(request("e1", time.Minute))

	if !s.Approve("e1", time.Now()) {
		t.Fatal("approve rejected a pending request")
	}
	reqs := s.Requests(time.Now())
	if len(reqs) != 1 {
		t.Fatalf("approve removed the record: %d requests", len(reqs))
	}
	if reqs[0].Status != event.RequestApproved {
		t.Errorf("status %q, want approved", reqs[0].Status)
	}

	// A second decision on a settled request must not flip it.
	if s.Deny("e1", time.Now()) {
		t.Error("deny succeeded on an approved request")
	}
}

func TestSecurityDecisionAfterExpiry(t *testing.T) {
	s := state.NewSecurityStore()
	s.AddRequest(request("e1", -time.Second))

	if s.Approve("e1", time.Now()) {
		t.Error("approve succeeded after expiry")
	}
	reqs := s.Requests(time.Now())
	if reqs[0].Status != event.RequestExpired {
		t.Errorf("status %q, want expired", reqs[0].Status)
	}
}

func TestSecurityRequestsReportExpiry(t *testing.T) {
	s := state.NewSecurityStore()
	s.AddRequest(request("fresh", time.Minute))
	s.AddRequest(request("stale", time.Second))

	later := time.Now().Add(10 * time.Second)
	byID := map[string]event.RequestStatus{}
	for _, r := range s.Requests(later) {
		byID[r.ID] = r.Status
	}
	if byID["fresh"] != event.RequestPending {
		t.Errorf("fresh: %q", byID["fresh"])
	}
	if byID["stale"] != event.RequestExpired {
		t.Errorf("stale: %q", byID["stale"])
	}

	pending := s.PendingRequests(later)
	if len(pending) != 1 || pending[0].ID != "fresh" {
		t.Errorf("pending: %+v", pending)
	}
}

func TestSecurityRequestReplayKeepsDecision(t *testing.T) {
	s := state.NewSecurityStore()
	s.AddRequest(request("e1", time.Minute))
	s.Deny("e1", time.Now())

	s.AddRequest(request("e1", time.Minute)) // replay arrives pending
	reqs := s.Requests(time.Now())
	if reqs[0].Status != event.RequestDenied {
		t.Errorf("replay regressed decision: %q", reqs[0].Status)
	}
}
