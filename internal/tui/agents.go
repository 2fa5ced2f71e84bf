package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/feed"
	"github.com/ClancyDennis/claude-commander-sub000/internal/gateway"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

type agentItem struct {
	agent state.Agent
}

func (i agentItem) Title() string {
	if i.agent.Title != "" {
		return i.agent.Title
	}
	return i.agent.ID
}

func (i agentItem) Description() string {
	desc := string(i.agent.Status)
	if i.agent.PendingInput {
		desc += " · input required"
	}
	if i.agent.Activity != "" {
		desc += " · " + i.agent.Activity
	}
	return desc
}

func (i agentItem) FilterValue() string {
	return i.agent.ID + " " + i.agent.Title
}

// agentsView is the agent board plus a detail pane feeding the selected
// agent's output log through a render window.
type agentsView struct {
	list       list.Model
	detailOpen bool
	selectedID string

	window  *feed.Window
	lastLen int

	stats *state.Resource[gateway.AgentStatistics]
	spin  spinner.Model

	width  int
	height int
}

func newAgentsView() agentsView {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return agentsView{
		list:   l,
		window: feed.NewWindow(1, 0),
		stats:  state.NewResource[gateway.AgentStatistics](),
		spin:   sp,
	}
}

func (v *agentsView) SetSize(w, h int) {
	v.width = w
	v.height = h
	v.list.SetSize(w/3-2, h-2)
	// A resize-driven layout pass must not trigger auto-follow.
	v.window.SetResizing(true)
	v.window.SetViewportHeight(v.detailHeight())
	v.window.SetResizing(false)
}

func (v *agentsView) detailHeight() int {
	h := v.height - 8 // border, title, stats block
	if h < 1 {
		h = 1
	}
	return h
}

// capturesNav reports whether tab-switch keys should stay with this view
// (the list filter input is active).
func (v agentsView) capturesNav() bool {
	return v.list.FilterState() == list.Filtering
}

func (v *agentsView) focusAgent(id string) {
	v.selectedID = id
	v.detailOpen = true
	v.lastLen = 0
	v.window = feed.NewWindow(1, v.detailHeight())
	for i, item := range v.list.Items() {
		if ai, ok := item.(agentItem); ok && ai.agent.ID == id {
			v.list.Select(i)
			break
		}
	}
}

func (v *agentsView) refresh(store *state.Store) {
	items := make([]list.Item, 0, store.Agents.Len())
	for _, a := range store.Agents.List() {
		items = append(items, agentItem{agent: a})
	}
	v.list.SetItems(items)

	if v.detailOpen && v.selectedID != "" {
		v.window.SetFiltering(v.list.FilterState() == list.Filtering)
		// Track the virtual extent (kept + evicted) so appends keep arriving
		// after the retention cap starts dropping old entries.
		n := store.Outputs.Len(v.selectedID) + store.Outputs.Dropped(v.selectedID)
		if delta := n - v.lastLen; delta > 0 {
			v.window.Append(delta)
		}
		v.lastLen = n
	}
}

func (v agentsView) Update(msg tea.Msg, store *state.Store, client *gateway.Client) (agentsView, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.detailOpen {
			return v.updateDetail(msg)
		}
		switch {
		case key.Matches(msg, keys.Enter):
			if item, ok := v.list.SelectedItem().(agentItem); ok {
				v.focusAgent(item.agent.ID)
				v.refresh(store)
				v.window.ScrollToBottom()
				return v, tea.Batch(v.spin.Tick, v.fetchStats(client))
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v agentsView) updateDetail(msg tea.KeyMsg) (agentsView, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		v.detailOpen = false
		v.selectedID = ""
		return v, nil
	case key.Matches(msg, keys.Up):
		v.window.SetOffset(v.window.Offset() - 1)
		return v, nil
	case key.Matches(msg, keys.Down):
		v.window.SetOffset(v.window.Offset() + 1)
		return v, nil
	case key.Matches(msg, keys.PageUp):
		v.window.SetOffset(v.window.Offset() - v.detailHeight())
		return v, nil
	case key.Matches(msg, keys.PageDown):
		v.window.SetOffset(v.window.Offset() + v.detailHeight())
		return v, nil
	case key.Matches(msg, keys.Bottom):
		v.window.ScrollToBottom()
		return v, nil
	}
	return v, nil
}

// fetchStats refreshes the on-demand statistics snapshot for the open agent.
func (v agentsView) fetchStats(client *gateway.Client) tea.Cmd {
	id := v.selectedID
	res := v.stats
	return func() tea.Msg {
		res.Fetch(context.Background(), func(ctx context.Context) (gateway.AgentStatistics, error) {
			return client.AgentStatistics(ctx, id)
		})
		return statsFetchedMsg{}
	}
}

func (v agentsView) View(store *state.Store, w, h int) string {
	left := paneStyle.Width(w / 3).Height(h).Render(v.list.View())

	rightWidth := w - w/3 - 2
	var right string
	if v.detailOpen && v.selectedID != "" {
		right = focusedPaneStyle.Width(rightWidth).Height(h).
			Render(v.detailView(store, rightWidth-2))
	} else {
		right = paneStyle.Width(rightWidth).Height(h).
			Render(dimStyle.Render("enter: open agent detail"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (v agentsView) detailView(store *state.Store, width int) string {
	agent, ok := store.Agents.Get(v.selectedID)
	if !ok {
		return dimStyle.Render("agent gone")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(agent.ID))
	if agent.WorkingDir != "" {
		b.WriteString(dimStyle.Render("  " + agent.WorkingDir))
	}
	b.WriteString("\n")
	b.WriteString(statusLine(agent))
	b.WriteString("\n")
	b.WriteString(v.statsLine(store))
	b.WriteString("\n\n")
	b.WriteString(v.outputView(store, width))
	return b.String()
}

func statusLine(a state.Agent) string {
	st := agentStatusStyle(a.Status).Render(string(a.Status))
	line := st
	if a.Activity != "" {
		line += dimStyle.Render(" · " + a.Activity)
	}
	if a.CostUSD > 0 {
		line += dimStyle.Render(fmt.Sprintf(" · $%.4f · %d turns", a.CostUSD, a.Turns))
	}
	return line
}

func (v agentsView) statsLine(store *state.Store) string {
	// Live aggregates from the local log, plus the backend snapshot when
	// it has settled.
	snap := store.Stats.Snapshot()
	line := fmt.Sprintf("tools: %d calls  %.0f%% ok  avg %.0fms",
		snap.TotalCalls, snap.SuccessRate*100, snap.AvgExecutionMS)

	res := v.stats.Snapshot()
	switch res.Status {
	case state.ResourceLoading:
		line += dimStyle.Render("  " + v.spin.View() + "fetching history…")
	case state.ResourceError:
		line += errorStyle.Render("  history unavailable (R to retry)")
	case state.ResourceSuccess:
		line += dimStyle.Render(fmt.Sprintf("  lifetime: %d calls $%.4f",
			res.Data.TotalCalls, res.Data.CostUSD))
	}
	return line
}

func (v agentsView) outputView(store *state.Store, width int) string {
	entries := store.Outputs.Entries(v.selectedID)
	// The window works in virtual indexes; shift by the evicted prefix to
	// land in the kept slice.
	dropped := store.Outputs.Dropped(v.selectedID)
	start, end := v.window.Slice()
	start -= dropped
	end -= dropped
	if start < 0 {
		start = 0
	}
	if end > len(entries) {
		end = len(entries)
	}
	if start >= end {
		return dimStyle.Render("no output yet")
	}

	lines := make([]string, 0, end-start)
	for _, e := range entries[start:end] {
		lines = append(lines, renderOutputLine(e, width))
	}
	return strings.Join(lines, "\n")
}

func renderOutputLine(e event.AgentOutput, width int) string {
	content := strings.ReplaceAll(e.Content, "\n", " ")
	if width > 4 && len(content) > width {
		content = content[:width-1] + "…"
	}
	switch e.Type {
	case event.OutputToolUse:
		return processingStyle.Render("⚙ ") + content
	case event.OutputToolResult:
		return dimStyle.Render("↳ ") + content
	case event.OutputError:
		return errorStyle.Render("✗ " + content)
	case event.OutputResult:
		return okStyle.Render("✓ ") + content
	default:
		return content
	}
}

func agentStatusStyle(s event.AgentState) lipgloss.Style {
	switch s {
	case event.AgentRunning:
		return runningStyle
	case event.AgentProcessing:
		return processingStyle
	case event.AgentWaitingForInput:
		return waitingStyle
	case event.AgentStopped:
		return stoppedStyle
	case event.AgentError:
		return errorStyle
	default:
		return dimStyle
	}
}
