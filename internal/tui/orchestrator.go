package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

// orchView shows the current run's orchestrator activity: state changes,
// decisions and direct tool calls interleaved chronologically enough for an
// operator (each sequence is already ordered; they are concatenated by
// section, not merged).
type orchView struct {
	vp      viewport.Model
	follow  bool
	lastRun string
	width   int
	height  int
}

func newOrchView() orchView {
	return orchView{
		vp:     viewport.New(0, 0),
		follow: true,
	}
}

func (v *orchView) SetSize(w, h int) {
	v.width = w
	v.height = h
	v.vp.Width = w - 4
	v.vp.Height = h - 2
}

func (v *orchView) refresh(store *state.Store) {
	runID := store.Orchestrator.RunID()
	if runID != v.lastRun {
		// New run: the sequences were cleared, start following again.
		v.lastRun = runID
		v.follow = true
	}

	wasAtBottom := v.vp.AtBottom()
	v.vp.SetContent(v.content(store))
	if v.follow && wasAtBottom {
		v.vp.GotoBottom()
	}
}

func (v *orchView) content(store *state.Store) string {
	orch := store.Orchestrator
	var b strings.Builder

	if orch.RunID() == "" {
		return dimStyle.Render("no auto-pipeline run active")
	}
	b.WriteString(headerStyle.Render("Run " + orch.RunID()))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  iteration %d", orch.Iteration())))
	b.WriteString("\n\n")

	states := orch.States()
	if len(states) > 0 {
		b.WriteString(headerStyle.Render("State changes"))
		b.WriteString("\n")
		for _, s := range states {
			b.WriteString(fmt.Sprintf("  %s  %s → %s\n",
				s.Time.Format("15:04:05"), dimStyle.Render(s.From), s.To))
		}
		b.WriteString("\n")
	}

	decisions := orch.Decisions()
	if len(decisions) > 0 {
		b.WriteString(headerStyle.Render("Decisions"))
		b.WriteString("\n")
		for _, d := range decisions {
			b.WriteString(fmt.Sprintf("  %s  %s\n", d.Time.Format("15:04:05"), d.Decision))
			if d.Reasoning != "" {
				b.WriteString(dimStyle.Render("          " + d.Reasoning))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	calls := orch.ToolCalls()
	if len(calls) > 0 {
		b.WriteString(headerStyle.Render("Tool calls"))
		b.WriteString("\n")
		for _, c := range calls {
			b.WriteString("  " + orchCallLine(c) + "\n")
		}
	}

	return b.String()
}

func orchCallLine(c state.OrchToolCall) string {
	if c.Pending {
		return pendingStyle.Render("● ") + c.ToolName + dimStyle.Render(" running…")
	}
	if c.Err != "" {
		return errorStyle.Render("✗ ") + c.ToolName + dimStyle.Render("  "+c.Err)
	}
	return okStyle.Render("✓ ") + c.ToolName
}

func (v orchView) Update(msg tea.Msg, store *state.Store) (orchView, tea.Cmd) {
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	// Scrolling away pauses follow; returning to the bottom resumes it.
	v.follow = v.vp.AtBottom()
	return v, cmd
}

func (v orchView) View(w, h int) string {
	return paneStyle.Width(w - 2).Height(h).Render(v.vp.View())
}
