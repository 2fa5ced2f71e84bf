package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/gateway"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

// pipelinesView lists live pipelines with their steps, plus the run history
// snapshot fetched on demand.
type pipelinesView struct {
	cursor  int
	history *state.Resource[[]gateway.PipelineRun]
	width   int
	height  int
}

func newPipelinesView() pipelinesView {
	return pipelinesView{
		history: state.NewResource[[]gateway.PipelineRun](),
	}
}

func (v *pipelinesView) SetSize(w, h int) {
	v.width = w
	v.height = h
}

func (v *pipelinesView) refresh(store *state.Store) {
	if n := store.Pipelines.Len(); v.cursor >= n && n > 0 {
		v.cursor = n - 1
	}
}

func (v pipelinesView) fetchHistory(client *gateway.Client) tea.Cmd {
	res := v.history
	return func() tea.Msg {
		res.Fetch(context.Background(), func(ctx context.Context) ([]gateway.PipelineRun, error) {
			return client.PipelineHistory(ctx)
		})
		return statsFetchedMsg{}
	}
}

func (v pipelinesView) Update(msg tea.Msg, store *state.Store) (pipelinesView, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if v.cursor < store.Pipelines.Len()-1 {
			v.cursor++
		}
	}
	return v, nil
}

func (v pipelinesView) View(store *state.Store, w, h int) string {
	pipelines := store.Pipelines.List()
	if len(pipelines) == 0 {
		return paneStyle.Width(w - 2).Height(h).
			Render(dimStyle.Render("no pipelines yet") + "\n\n" + v.historyView())
	}

	var b strings.Builder
	for i, p := range pipelines {
		b.WriteString(v.pipelineLine(p, i == v.cursor))
		b.WriteString("\n")
		if i == v.cursor {
			for _, st := range p.Steps {
				b.WriteString(stepLine(st))
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(v.historyView())

	return paneStyle.Width(w - 2).Height(h).Render(b.String())
}

func (v pipelinesView) pipelineLine(p event.Pipeline, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	name := p.Name
	if name == "" {
		name = p.ID
	}
	kind := ""
	if p.Auto {
		kind = dimStyle.Render(" [auto]")
	}
	line := fmt.Sprintf("%s%s%s  %s", marker, headerStyle.Render(name), kind,
		pipelineStatusStyle(p.Status).Render(string(p.Status)))
	if p.Phase != "" {
		line += dimStyle.Render("  " + p.Phase)
	}
	return line
}

func stepLine(st event.Step) string {
	glyph := stepGlyph(st.Status)
	line := fmt.Sprintf("    %s %d. %s", glyph, st.Number, st.Role)
	if st.AgentID != "" {
		line += dimStyle.Render("  @" + st.AgentID)
	}
	if st.ToolCalls > 0 {
		line += dimStyle.Render(fmt.Sprintf("  (%d tool calls)", st.ToolCalls))
	}
	return line
}

func stepGlyph(s event.StepStatus) string {
	switch s {
	case event.StepRunning:
		return runningStyle.Render("●")
	case event.StepCompleted:
		return okStyle.Render("✓")
	case event.StepFailed:
		return errorStyle.Render("✗")
	default:
		return dimStyle.Render("○")
	}
}

func (v pipelinesView) historyView() string {
	res := v.history.Snapshot()
	switch res.Status {
	case state.ResourceIdle:
		return ""
	case state.ResourceLoading:
		return dimStyle.Render("loading run history…")
	case state.ResourceError:
		return errorStyle.Render("history unavailable: " + res.Err)
	}

	if len(res.Data) == 0 {
		return dimStyle.Render("no previous runs")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent runs"))
	b.WriteString("\n")
	for _, run := range res.Data {
		name := run.Name
		if name == "" {
			name = run.PipelineID
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			run.StartedAt.Format("15:04:05"), name,
			dimStyle.Render(run.Status)))
	}
	return b.String()
}

func pipelineStatusStyle(s event.PipelineState) lipgloss.Style {
	switch s {
	case event.PipelineRunning:
		return runningStyle
	case event.PipelineCompleted:
		return okStyle
	case event.PipelineFailed:
		return errorStyle
	default:
		return dimStyle
	}
}
