package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ClancyDennis/claude-commander-sub000/internal/config"
	"github.com/ClancyDennis/claude-commander-sub000/internal/gateway"
	"github.com/ClancyDennis/claude-commander-sub000/internal/journal"
	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
	"github.com/ClancyDennis/claude-commander-sub000/internal/tui"
)

var (
	connectAddr   string
	enableJournal bool
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "commander",
	Short:   "Live console for a multi-agent orchestration backend",
	Long:    "A terminal console that supervises agent processes, pipelines and the orchestrator of a backend over its event channel.",
	Version: Version,
	RunE:    runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&connectAddr, "connect", "", "backend address (overrides config, e.g. 127.0.0.1:8490)")
	rootCmd.PersistentFlags().BoolVar(&enableJournal, "journal", false, "record the session event stream to sqlite")
}

func Execute() error {
	return rootCmd.Execute()
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if connectAddr != "" {
		cfg.Gateway.Addr = connectAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The TUI owns stdout; route the event-loop log to a file.
	logFile, err := tea.LogToFile(filepath.Join(os.TempDir(), "commander.log"), "commander")
	if err == nil {
		defer logFile.Close()
	}

	var recorder gateway.Recorder
	if enableJournal || cfg.Journal.Enabled {
		jrnl, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer jrnl.Close()
		recorder = jrnl
	}

	connector := gateway.NewConnector(cfg.Gateway.Addr, cfg.Gateway.Token)
	if err := connector.ConnectWithRetry(ctx, 5); err != nil {
		return fmt.Errorf("connecting to backend: %w", err)
	}
	defer connector.Close()

	store := state.New()
	client := gateway.NewClient(connector)
	mgr := gateway.NewManager()

	dispatcher := gateway.NewDispatcher(connector.Envelopes, store, mgr, client, recorder)
	go dispatcher.Run(ctx)

	app := tui.NewApp(store, client, mgr,
		tui.WithPollInterval(time.Duration(cfg.UI.PollSeconds)*time.Second))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return nil
}
