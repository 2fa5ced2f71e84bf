package tui

import "github.com/charmbracelet/lipgloss"

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e6b450")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4a9a8a"))

	focusedPaneStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#e6b450"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e6b450"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	notificationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e6b450")).
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	runningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c"))
	processingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd"))
	waitingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#bd93f9"))
	stoppedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))

	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c"))

	alertHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	alertMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e6b450"))
	alertLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8be9fd"))

	unreadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff79c6"))
)
