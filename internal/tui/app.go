package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
	"github.com/ClancyDennis/claude-commander-sub000/internal/gateway"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

const defaultPollInterval = 5 * time.Second

type tab int

const (
	tabAgents tab = iota
	tabPipelines
	tabOrchestrator
	tabSecurity
	tabCount
)

var tabTitles = map[tab]string{
	tabAgents:       "Agents",
	tabPipelines:    "Pipelines",
	tabOrchestrator: "Orchestrator",
	tabSecurity:     "Security",
}

// allChannels is every push channel the console listens on. One subscription
// set covers the whole window session; its teardown runs on quit.
var allChannels = []string{
	event.ChanAgentOutput,
	event.ChanAgentTool,
	event.ChanAgentStatus,
	event.ChanAgentActivity,
	event.ChanAgentInputRequired,
	event.ChanAgentStats,
	event.ChanAgentNavigate,
	event.ChanPipelineCreated,
	event.ChanPipelineStatus,
	event.ChanPipelinePhase,
	event.ChanPipelineProgress,
	event.ChanAutoPipelineStarted,
	event.ChanAutoPipelineStepCompleted,
	event.ChanAutoPipelineCompleted,
	event.ChanAutoPipelineStepStatus,
	event.ChanAutoPipelineDecision,
	event.ChanOrchestratorToolStart,
	event.ChanOrchestratorToolComplete,
	event.ChanOrchestratorStateChanged,
	event.ChanSecurityAlert,
	event.ChanElevatedCommand,
}

type notification struct {
	text    string
	expires time.Time
}

type App struct {
	store  *state.Store
	client *gateway.Client
	mgr    *gateway.Manager
	sub    *gateway.Subscription

	// changes coalesces store-changed signals from the dispatch loop; the
	// handler drops signals while one is already queued.
	changes chan struct{}

	width  int
	height int
	ready  bool

	activeTab tab
	showHelp  bool

	agents    agentsView
	pipelines pipelinesView
	orch      orchView
	security  securityView

	poolStats *state.Resource[gateway.PoolStats]
	dbStats   *state.Resource[gateway.DatabaseStats]

	pollInterval time.Duration
	notification *notification
}

// AppOption configures optional App behavior.
type AppOption func(*App)

func WithPollInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

func NewApp(store *state.Store, client *gateway.Client, mgr *gateway.Manager, opts ...AppOption) App {
	a := App{
		store:        store,
		client:       client,
		mgr:          mgr,
		changes:      make(chan struct{}, 1),
		agents:       newAgentsView(),
		pipelines:    newPipelinesView(),
		orch:         newOrchView(),
		security:     newSecurityView(),
		poolStats:    state.NewResource[gateway.PoolStats](),
		dbStats:      state.NewResource[gateway.DatabaseStats](),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(&a)
	}

	handlers := make(map[string]gateway.Handler, len(allChannels))
	for _, ch := range allChannels {
		handlers[ch] = func(event.Event) {
			select {
			case a.changes <- struct{}{}:
			default:
			}
		}
	}
	a.sub = mgr.Subscribe(handlers)

	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.waitForChange(), a.schedulePoll(), a.fetchSnapshots())
}

// waitForChange blocks until the dispatch loop applied at least one event.
func (a App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-a.changes
		return storeChangedMsg{}
	}
}

func (a App) schedulePoll() tea.Cmd {
	return tea.Tick(a.pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// fetchSnapshots refreshes the timer-driven resources. Each Fetch settles
// with stale-response suppression, so an overlapping tick is harmless.
func (a App) fetchSnapshots() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		a.poolStats.Fetch(ctx, func(ctx context.Context) (gateway.PoolStats, error) {
			return a.client.PoolStats(ctx)
		})
		a.dbStats.Fetch(ctx, func(ctx context.Context) (gateway.DatabaseStats, error) {
			return a.client.DatabaseStats(ctx)
		})
		return statsFetchedMsg{}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeViews()
		a.ready = true
		return a, nil

	case storeChangedMsg:
		a.refreshViews()
		cmds := []tea.Cmd{a.waitForChange()}
		if id, ok := a.store.ConsumeNavigate(); ok {
			a.activeTab = tabAgents
			a.agents.focusAgent(id)
			a.agents.refresh(a.store)
		}
		return a, tea.Batch(cmds...)

	case pollTickMsg:
		return a, tea.Batch(a.fetchSnapshots(), a.schedulePoll())

	case statsFetchedMsg:
		return a, nil

	case errMsg:
		return a, a.notify(fmt.Sprintf("Error: %s", msg.err))

	case decisionSentMsg:
		verdict := "denied"
		if msg.approved {
			verdict = "approved"
		}
		return a, a.notify(fmt.Sprintf("Command %s", verdict))

	case notifyMsg:
		a.notification = &notification{
			text:    msg.text,
			expires: time.Now().Add(3 * time.Second),
		}
		return a, scheduleNotificationClear(3 * time.Second)

	case clearNotificationMsg:
		if a.notification != nil && time.Now().After(a.notification.expires) {
			a.notification = nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	return a.updateActiveView(msg)
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		// Releasing the subscription here, not in a defer somewhere, keeps
		// the no-leaked-listeners guarantee tied to the view lifetime.
		a.sub.Teardown()
		return a, tea.Quit
	case key.Matches(msg, keys.NextTab):
		if !a.agents.capturesNav() {
			a.activeTab = (a.activeTab + 1) % tabCount
			return a, a.enterTab()
		}
	case key.Matches(msg, keys.PrevTab):
		if !a.agents.capturesNav() {
			a.activeTab = (a.activeTab + tabCount - 1) % tabCount
			return a, a.enterTab()
		}
	case key.Matches(msg, keys.Help):
		a.showHelp = true
		return a, nil
	case key.Matches(msg, keys.Refresh):
		return a, a.fetchSnapshots()
	}

	return a.updateActiveView(msg)
}

// enterTab triggers the on-demand fetches a tab needs when opened.
func (a App) enterTab() tea.Cmd {
	switch a.activeTab {
	case tabPipelines:
		return a.pipelines.fetchHistory(a.client)
	}
	return nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeTab {
	case tabAgents:
		a.agents, cmd = a.agents.Update(msg, a.store, a.client)
	case tabPipelines:
		a.pipelines, cmd = a.pipelines.Update(msg, a.store)
	case tabOrchestrator:
		a.orch, cmd = a.orch.Update(msg, a.store)
	case tabSecurity:
		a.security, cmd = a.security.Update(msg, a.store, a.client)
	}
	return a, cmd
}

func (a *App) resizeViews() {
	contentHeight := a.height - 4 // tab bar, status bar, help line
	a.agents.SetSize(a.width, contentHeight)
	a.pipelines.SetSize(a.width, contentHeight)
	a.orch.SetSize(a.width, contentHeight)
	a.security.SetSize(a.width, contentHeight)
	a.refreshViews()
}

func (a *App) refreshViews() {
	a.agents.refresh(a.store)
	a.pipelines.refresh(a.store)
	a.orch.refresh(a.store)
	a.security.refresh(a.store)
}

func (a App) View() string {
	if !a.ready {
		return "Connecting..."
	}

	if a.showHelp {
		return a.helpView()
	}

	var body string
	switch a.activeTab {
	case tabAgents:
		body = a.agents.View(a.store, a.width, a.height-4)
	case tabPipelines:
		body = a.pipelines.View(a.store, a.width, a.height-4)
	case tabOrchestrator:
		body = a.orch.View(a.width, a.height-4)
	case tabSecurity:
		body = a.security.View(a.store, a.width, a.height-4)
	}

	statusBar := a.statusBar()
	if a.notification != nil {
		statusBar = notificationStyle.Render(a.notification.text)
	}

	help := helpStyle.Render(" tab:views  j/k:move  enter:open  y/n:approve/deny  G:tail  R:refresh  ?:help  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left, a.tabBar(), body, statusBar, help)
}

func (a App) tabBar() string {
	parts := make([]string, 0, int(tabCount))
	for t := tab(0); t < tabCount; t++ {
		title := tabTitles[t]
		if t == tabSecurity {
			if n := a.store.Security.UnreadAlerts(); n > 0 {
				title = fmt.Sprintf("%s (%d)", title, n)
			}
		}
		if t == a.activeTab {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, tabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) statusBar() string {
	pool := a.poolStats.Snapshot()
	db := a.dbStats.Snapshot()

	poolPart := "pool: —"
	switch pool.Status {
	case state.ResourceLoading:
		poolPart = "pool: …"
	case state.ResourceError:
		poolPart = "pool: unavailable"
	case state.ResourceSuccess:
		poolPart = fmt.Sprintf("pool: %d active / %d queued  $%.2f",
			pool.Data.ActiveAgents, pool.Data.QueuedTasks, pool.Data.CostUSD)
	}

	dbPart := ""
	if db.Status == state.ResourceSuccess {
		dbPart = fmt.Sprintf("  db: %d events", db.Data.Events)
	}

	return statusBarStyle.Render(fmt.Sprintf("  %d agents | %s%s",
		a.store.Agents.Len(), poolPart, dbPart))
}

func (a App) helpView() string {
	help := `Commander - Keyboard Shortcuts

Views:
  tab / shift+tab   Cycle views
  ?                 Toggle help

Navigation:
  j / ↓             Next item
  k / ↑             Previous item
  enter             Open agent detail
  esc               Close detail
  G                 Jump to output tail
  pgup / pgdn       Scroll output

Security:
  y                 Approve elevated command
  n                 Deny elevated command
  r                 Mark alert read
  x                 Dismiss

General:
  R                 Refresh snapshots
  q                 Quit

Press any key to close.`

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		focusedPaneStyle.Render(help))
}

// Command helpers

func (a App) notify(text string) tea.Cmd {
	return func() tea.Msg {
		return notifyMsg{text: text}
	}
}

func scheduleNotificationClear(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}
