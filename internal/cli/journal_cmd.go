package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ClancyDennis/claude-commander-sub000/internal/config"
	"github.com/ClancyDennis/claude-commander-sub000/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect recorded session journals",
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Summarize a session journal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalStats,
}

func init() {
	journalCmd.AddCommand(journalStatsCmd)
	rootCmd.AddCommand(journalCmd)
}

func runJournalStats(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		path = cfg.Journal.Path
	}

	jrnl, err := journal.Open(path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer jrnl.Close()

	stats, err := jrnl.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}

	fmt.Printf("%d events", stats.Events)
	if stats.Events > 0 {
		fmt.Printf(" between %s and %s",
			stats.FirstEvent.Format("2006-01-02 15:04:05"),
			stats.LastEvent.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()

	channels := make([]string, 0, len(stats.ByChannel))
	for ch := range stats.ByChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	for _, ch := range channels {
		fmt.Printf("  %-32s %d\n", ch, stats.ByChannel[ch])
	}
	return nil
}
