package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/gateway"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

// securityView shows elevated-command requests awaiting a decision and the
// alert feed. Approval and denial are issued to the backend first; the local
// record is settled only after the request round-trips.
type securityView struct {
	cursor int
	width  int
	height int
}

func newSecurityView() securityView {
	return securityView{}
}

func (v *securityView) SetSize(w, h int) {
	v.width = w
	v.height = h
}

func (v *securityView) refresh(store *state.Store) {
	n := len(store.Security.Requests(time.Now())) + len(store.Security.Alerts())
	if v.cursor >= n && n > 0 {
		v.cursor = n - 1
	}
}

func (v securityView) Update(msg tea.Msg, store *state.Store, client *gateway.Client) (securityView, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	requests := store.Security.Requests(time.Now())
	alerts := store.Security.Alerts()
	total := len(requests) + len(alerts)

	switch {
	case key.Matches(keyMsg, keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if v.cursor < total-1 {
			v.cursor++
		}
	case key.Matches(keyMsg, keys.Approve):
		if r, ok := v.selectedRequest(requests); ok && r.Status == event.RequestPending {
			return v, decide(store, client, r.ID, true)
		}
	case key.Matches(keyMsg, keys.Deny):
		if r, ok := v.selectedRequest(requests); ok && r.Status == event.RequestPending {
			return v, decide(store, client, r.ID, false)
		}
	case key.Matches(keyMsg, keys.MarkRead):
		if a, ok := v.selectedAlert(requests, alerts); ok {
			store.Security.MarkRead(a.ID)
		}
	case key.Matches(keyMsg, keys.Dismiss):
		if r, ok := v.selectedRequest(requests); ok {
			store.Security.DismissRequest(r.ID)
		} else if a, ok := v.selectedAlert(requests, alerts); ok {
			store.Security.DismissAlert(a.ID)
		}
	}
	return v, nil
}

func (v securityView) selectedRequest(requests []event.ElevatedCommand) (event.ElevatedCommand, bool) {
	if v.cursor < len(requests) {
		return requests[v.cursor], true
	}
	return event.ElevatedCommand{}, false
}

func (v securityView) selectedAlert(requests []event.ElevatedCommand, alerts []event.Alert) (event.Alert, bool) {
	idx := v.cursor - len(requests)
	if idx >= 0 && idx < len(alerts) {
		return alerts[idx], true
	}
	return event.Alert{}, false
}

// decide sends the verdict to the backend, then settles the local record so
// the row reflects the decision without waiting for a push event.
func decide(store *state.Store, client *gateway.Client, requestID string, approve bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if approve {
			err = client.ApproveElevatedCommand(ctx, requestID)
		} else {
			err = client.DenyElevatedCommand(ctx, requestID)
		}
		if err != nil {
			return errMsg{fmt.Errorf("sending decision: %w", err)}
		}
		if approve {
			store.Security.Approve(requestID, time.Now())
		} else {
			store.Security.Deny(requestID, time.Now())
		}
		return decisionSentMsg{requestID: requestID, approved: approve}
	}
}

func (v securityView) View(store *state.Store, w, h int) string {
	now := time.Now()
	requests := store.Security.Requests(now)
	alerts := store.Security.Alerts()

	if len(requests) == 0 && len(alerts) == 0 {
		return paneStyle.Width(w - 2).Height(h).
			Render(dimStyle.Render("no security activity"))
	}

	var b strings.Builder
	if len(requests) > 0 {
		b.WriteString(headerStyle.Render("Elevated commands"))
		b.WriteString("\n")
		for i, r := range requests {
			b.WriteString(v.requestLine(r, i == v.cursor, now))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(alerts) > 0 {
		b.WriteString(headerStyle.Render("Alerts"))
		b.WriteString("\n")
		for i, a := range alerts {
			b.WriteString(v.alertLine(a, len(requests)+i == v.cursor))
			b.WriteString("\n")
		}
	}

	return paneStyle.Width(w - 2).Height(h).Render(b.String())
}

func (v securityView) requestLine(r event.ElevatedCommand, selected bool, now time.Time) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	status := string(r.Status)
	switch r.Status {
	case event.RequestPending:
		remaining := r.ExpiresAt.Sub(now).Round(time.Second)
		if remaining > 0 {
			status = pendingStyle.Render(fmt.Sprintf("pending (%s)", remaining))
		} else {
			status = pendingStyle.Render("pending")
		}
	case event.RequestApproved:
		status = okStyle.Render(status)
	case event.RequestDenied, event.RequestExpired:
		status = errorStyle.Render(status)
	}
	return fmt.Sprintf("%s%s %s  %s  %s", marker,
		severityStyle(r.Risk).Render("["+string(r.Risk)+"]"),
		r.Command, dimStyle.Render("@"+r.AgentID), status)
}

func (v securityView) alertLine(a event.Alert, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	title := a.Title
	if !a.Read {
		title = unreadStyle.Render(title)
	}
	return fmt.Sprintf("%s%s %s  %s", marker,
		severityStyle(a.Severity).Render("["+string(a.Severity)+"]"),
		title, dimStyle.Render(a.Time.Format("15:04:05")))
}

func severityStyle(s event.Severity) lipgloss.Style {
	switch s {
	case event.SeverityCritical, event.SeverityHigh:
		return alertHighStyle
	case event.SeverityMedium:
		return alertMediumStyle
	default:
		return alertLowStyle
	}
}
